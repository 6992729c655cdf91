package extract

import (
	"os"
	"regexp"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// RuleSpec is the serialized form of an extraction rule.
type RuleSpec struct {
	Name    string `yaml:"name"`
	Pattern string `yaml:"pattern"`
	Weight  int    `yaml:"weight"`
}

// Rule is a compiled pattern with its base confidence weight. The first
// capture group is the extracted candidate.
type Rule struct {
	Name    string
	Weight  int
	Pattern *regexp.Regexp
}

// defaultRuleSpecs cover the message formats seen in order-notification
// exports. Ordered by weight; ties during scoring resolve to the earlier
// rule.
var defaultRuleSpecs = []RuleSpec{
	{Name: "labeled_product", Weight: 100, Pattern: `(?i)\b(?:product|item)(?:\s+name)?\s*[:\-]\s*([^.,!\n]+)`},
	{Name: "order_for", Weight: 90, Pattern: `(?i)\border\s+(?:for|of)\s+([^.,!\n]+?)(?:\s+(?:has|have|is|was|will|are)\b|[.,!\n]|$)`},
	{Name: "thanks_for_ordering", Weight: 85, Pattern: `(?i)\bfor\s+(?:ordering|purchasing|buying)\s+([^.,!\n]+)`},
	{Name: "quoted_name", Weight: 80, Pattern: `"([^"]+)"`},
	{Name: "your_item_order", Weight: 75, Pattern: `(?i)\byour\s+(.{3,80}?)\s+order\b`},
	{Name: "confirmed_item", Weight: 70, Pattern: `(?i)\bconfirmed\s*[:\-]\s*([^.,!\n]+)`},
	{Name: "quantity_phrase", Weight: 60, Pattern: `(?i)\b([a-z][a-z\s&'-]{2,60}?\s?\d+\s?(?:ml|ltr|l|kg|gms?|g|mg|pcs?|packs?|tablets?|capsules?))\b`},
}

var defaultRules = mustCompileRules(defaultRuleSpecs)

// DefaultRules returns the built-in rule set.
func DefaultRules() []Rule {
	out := make([]Rule, len(defaultRules))
	copy(out, defaultRules)
	return out
}

// LoadRules reads an extraction rule set from a YAML file, replacing the
// built-in rules entirely.
func LoadRules(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "extract: read rules %s", path)
	}

	// The YAML has a top-level "extraction" key
	var wrapper struct {
		Extraction struct {
			Rules []RuleSpec `yaml:"rules"`
		} `yaml:"extraction"`
	}
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return nil, eris.Wrap(err, "extract: parse rules")
	}

	specs := wrapper.Extraction.Rules
	if len(specs) == 0 {
		return nil, eris.Errorf("extract: %s defines no rules", path)
	}

	return compileRules(specs)
}

func compileRules(specs []RuleSpec) ([]Rule, error) {
	rules := make([]Rule, 0, len(specs))
	for _, spec := range specs {
		if spec.Name == "" {
			return nil, eris.New("extract: rule missing name")
		}
		if spec.Weight < 1 || spec.Weight > 100 {
			return nil, eris.Errorf("extract: rule %s weight %d out of range [1,100]", spec.Name, spec.Weight)
		}
		re, err := regexp.Compile(spec.Pattern)
		if err != nil {
			return nil, eris.Wrapf(err, "extract: rule %s pattern", spec.Name)
		}
		if re.NumSubexp() < 1 {
			return nil, eris.Errorf("extract: rule %s pattern has no capture group", spec.Name)
		}
		rules = append(rules, Rule{Name: spec.Name, Weight: spec.Weight, Pattern: re})
	}
	return rules, nil
}

func mustCompileRules(specs []RuleSpec) []Rule {
	rules, err := compileRules(specs)
	if err != nil {
		panic(err)
	}
	return rules
}
