package clean

import (
	"strings"

	"github.com/sells-group/sheetsync/internal/model"
)

// Alias sets for fuzzy header matching. Headers are normalized (lowercased,
// whitespace stripped) and matched by substring, so "Order Date" and
// "created_at" both land on the Date target.
var (
	dateAliases    = []string{"date", "orderdate", "messagedate", "createdat", "created", "timestamp", "time"}
	phoneAliases   = []string{"phonenumber", "phone", "mobile", "contact", "whatsapp", "msisdn"}
	productAliases = []string{"productname", "product", "itemname", "item", "sku", "description"}

	templateAliases = []string{"templatename", "automationname", "template", "automation", "campaignname", "campaign"}
)

// statusColumnFallbackIndex is the positional fallback for the
// template/automation column when no header matches: the 4th logical column.
const statusColumnFallbackIndex = 3

// Mapping ties the three canonical targets to the source headers they were
// matched from.
type Mapping struct {
	Date    string
	Phone   string
	Product string
}

// normalizeHeaderName lowercases a header and strips every whitespace rune so
// "Phone  Number" matches "phonenumber".
func normalizeHeaderName(h string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(h) {
		switch r {
		case ' ', '\t', '\n', '\r', '_', '-':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func matchHeader(columns []string, aliases []string) (string, bool) {
	for _, col := range columns {
		norm := normalizeHeaderName(col)
		if norm == "" {
			continue
		}
		for _, alias := range aliases {
			if strings.Contains(norm, alias) {
				return col, true
			}
		}
	}
	return "", false
}

// MapColumns resolves the three canonical targets against a file's headers.
// All three must resolve; otherwise the file fails with a
// *model.MissingRequiredColumnsError naming the missing targets.
func MapColumns(file model.FileRows) (Mapping, error) {
	var m Mapping
	var missing []string

	if col, ok := matchHeader(file.Columns, dateAliases); ok {
		m.Date = col
	} else {
		missing = append(missing, model.ColumnDate)
	}
	if col, ok := matchHeader(file.Columns, phoneAliases); ok {
		m.Phone = col
	} else {
		missing = append(missing, model.ColumnPhone)
	}
	if col, ok := matchHeader(file.Columns, productAliases); ok {
		m.Product = col
	} else {
		missing = append(missing, model.ColumnProduct)
	}

	if len(missing) > 0 {
		return Mapping{}, &model.MissingRequiredColumnsError{File: file.Name, Missing: missing}
	}
	return m, nil
}

// FindStatusColumn locates the template/automation-name column used for
// status filtering. Header match first, then the positional fallback when
// the file is wide enough. ok=false means the file has no usable column and
// status filtering is skipped.
func FindStatusColumn(columns []string) (string, bool) {
	if col, ok := matchHeader(columns, templateAliases); ok {
		return col, true
	}
	if len(columns) > statusColumnFallbackIndex {
		return columns[statusColumnFallbackIndex], true
	}
	return "", false
}
