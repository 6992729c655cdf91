package resolve

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/sheetsync/internal/model"
)

var (
	// strictDayFirst is the DD-MM-YYYY form exports use most. Always read
	// day-first: when the day exceeds 12 no other reading is possible, and
	// the convention holds for ambiguous values too.
	strictDayFirst = regexp.MustCompile(`^(\d{1,2})-(\d{1,2})-(\d{4})$`)

	// isoDayStamp tolerates a trailing time component.
	isoDayStamp = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})(?:[T ].*)?$`)

	// lenientDayFirst is the last-ditch row parse: any of -/. separators and
	// 2- or 4-digit years, still day-first.
	lenientDayFirst = regexp.MustCompile(`^(\d{1,2})[-/.](\d{1,2})[-/.](\d{2,4})$`)
)

// Filename pattern families, tried in order. Boundary guards keep a year from
// being carved out of a longer digit run.
var (
	fileDayFirst  = regexp.MustCompile(`(?:^|[^\d])(\d{1,2})[-_](\d{1,2})[-_](\d{4})(?:[^\d]|$)`)
	fileISO       = regexp.MustCompile(`(?:^|[^\d])(\d{4})[-_](\d{1,2})[-_](\d{1,2})(?:[^\d]|$)`)
	fileMonthName = regexp.MustCompile(`(?i)(?:^|[^a-z\d])(\d{1,2})[ _-]+(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*[ _-]+(\d{2,4})(?:[^\d]|$)`)
)

// tabTitleDate matches "<MONTH> <DAY>" or "<MONTH> <DAY1>-<DAY2>" in a tab
// title, with full or abbreviated month names.
var tabTitleDate = regexp.MustCompile(`(?i)\b(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?\s+(\d{1,2})(?:\s*-\s*(\d{1,2}))?`)

var monthsByAbbrev = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

// ParseRowDate parses a single Date-cell value. Parse order: strict
// DD-MM-YYYY, ISO YYYY-MM-DD, then the lenient day-first fallback. Empty and
// placeholder values are skipped quietly (ok=false), never treated as
// errors.
func ParseRowDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "nan" || raw == "NaT" {
		return time.Time{}, false
	}

	if m := strictDayFirst.FindStringSubmatch(raw); m != nil {
		return makeDate(m[3], m[2], m[1])
	}
	if m := isoDayStamp.FindStringSubmatch(raw); m != nil {
		return makeDate(m[1], m[2], m[3])
	}
	if m := lenientDayFirst.FindStringSubmatch(raw); m != nil {
		return makeDate(m[3], m[2], m[1])
	}
	return time.Time{}, false
}

// DatesFromRows extracts every distinct valid date from the rows' date
// column, in row order.
func DatesFromRows(rows []model.RowRecord, column string) []time.Time {
	var out []time.Time
	for _, row := range rows {
		if d, ok := ParseRowDate(row.Get(column)); ok {
			out = append(out, d)
		}
	}
	return dedupeDates(out)
}

// DatesFromFilename extracts dates embedded in a file name. The three
// pattern families are tried in order and the first family with at least one
// valid date wins; later families are not mixed in.
func DatesFromFilename(name string) []time.Time {
	if dates := matchAll(fileDayFirst, name, 1, 2, 3); len(dates) > 0 {
		return dates
	}
	if dates := matchAll(fileISO, name, 3, 2, 1); len(dates) > 0 {
		return dates
	}

	var out []time.Time
	for _, m := range fileMonthName.FindAllStringSubmatch(name, -1) {
		month, ok := monthsByAbbrev[strings.ToLower(m[2])]
		if !ok {
			continue
		}
		day, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		year, err := strconv.Atoi(m[3])
		if err != nil {
			continue
		}
		if d, ok := validDate(normalizeYear(year), int(month), day); ok {
			out = append(out, d)
		}
	}
	return dedupeDates(out)
}

// matchAll collects valid dates from every match of re, reading day, month
// and year from the given capture-group indexes.
func matchAll(re *regexp.Regexp, s string, dayIdx, monthIdx, yearIdx int) []time.Time {
	var out []time.Time
	for _, m := range re.FindAllStringSubmatch(s, -1) {
		if d, ok := makeDate(m[yearIdx], m[monthIdx], m[dayIdx]); ok {
			out = append(out, d)
		}
	}
	return dedupeDates(out)
}

// DateFromTabTitle recovers a date from an existing tab title such as
// "OCT 5-6 Meddeygo". With a day range, the last day wins. Tab titles carry
// no year, so the current calendar year is assumed; this is a known
// approximation kept for compatibility.
func DateFromTabTitle(title string, now time.Time) (time.Time, bool) {
	m := tabTitleDate.FindStringSubmatch(title)
	if m == nil {
		return time.Time{}, false
	}

	month, ok := monthsByAbbrev[strings.ToLower(m[1])]
	if !ok {
		return time.Time{}, false
	}

	dayStr := m[2]
	if m[3] != "" {
		dayStr = m[3]
	}
	day, err := strconv.Atoi(dayStr)
	if err != nil {
		return time.Time{}, false
	}

	return validDate(now.Year(), int(month), day)
}

// Evidence bundles everything the date resolution chain can draw on for one
// company.
type Evidence struct {
	Rows       []model.RowRecord
	DateColumn string
	FileNames  []string
	TabTitle   string
	Now        time.Time
}

// ResolveDates walks the priority chain (row data, then file names, then the
// existing tab title) and returns the first source yielding at least one
// valid date. ok=false means no source had any evidence.
func ResolveDates(ev Evidence) ([]time.Time, model.DateSource, bool) {
	strategies := []struct {
		source model.DateSource
		fn     func() []time.Time
	}{
		{model.DateSourceRows, func() []time.Time {
			return DatesFromRows(ev.Rows, ev.DateColumn)
		}},
		{model.DateSourceFilename, func() []time.Time {
			var out []time.Time
			for _, name := range ev.FileNames {
				out = append(out, DatesFromFilename(name)...)
			}
			return dedupeDates(out)
		}},
		{model.DateSourceTab, func() []time.Time {
			if ev.TabTitle == "" {
				return nil
			}
			if d, ok := DateFromTabTitle(ev.TabTitle, ev.Now); ok {
				return []time.Time{d}
			}
			return nil
		}},
	}

	for _, s := range strategies {
		if dates := s.fn(); len(dates) > 0 {
			zap.L().Debug("resolve: dates found",
				zap.String("source", string(s.source)),
				zap.Int("count", len(dates)),
			)
			return dates, s.source, true
		}
	}
	return nil, "", false
}

func makeDate(yearS, monthS, dayS string) (time.Time, bool) {
	year, err := strconv.Atoi(yearS)
	if err != nil {
		return time.Time{}, false
	}
	month, err := strconv.Atoi(monthS)
	if err != nil {
		return time.Time{}, false
	}
	day, err := strconv.Atoi(dayS)
	if err != nil {
		return time.Time{}, false
	}
	return validDate(normalizeYear(year), month, day)
}

// validDate builds a UTC date and rejects values the calendar would silently
// roll over (Feb 31 and friends).
func validDate(year, month, day int) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if d.Day() != day || d.Month() != time.Month(month) || d.Year() != year {
		return time.Time{}, false
	}
	return d, true
}

// normalizeYear maps 2-digit years onto centuries: below 50 is 2000s,
// 50 and up is 1900s.
func normalizeYear(year int) int {
	if year >= 100 {
		return year
	}
	if year < 50 {
		return 2000 + year
	}
	return 1900 + year
}

func dedupeDates(dates []time.Time) []time.Time {
	if len(dates) < 2 {
		return dates
	}
	seen := make(map[time.Time]bool, len(dates))
	out := dates[:0]
	for _, d := range dates {
		if seen[d] {
			continue
		}
		seen[d] = true
		out = append(out, d)
	}
	return out
}
