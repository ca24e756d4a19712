package intent

import "regexp"

// Relative time windows a query can reference.
const (
	PeriodDay   = "day"
	PeriodWeek  = "week"
	PeriodMonth = "month"
	PeriodYear  = "year"
	PeriodToday = "today"
)

// Pattern families checked in fixed priority order. Each window requires a
// leading qualifier word; "yesterday" counts as a day qualifier on its own.
var temporalPatterns = []struct {
	period string
	re     *regexp.Regexp
}{
	{PeriodDay, regexp.MustCompile(`(?i)(past|last|previous)\s+(day|24\s+hours)|yesterday('s)?`)},
	{PeriodWeek, regexp.MustCompile(`(?i)(past|last|previous)\s+(week|7\s+days)`)},
	{PeriodMonth, regexp.MustCompile(`(?i)(past|last|previous)\s+(month|30\s+days)`)},
	{PeriodYear, regexp.MustCompile(`(?i)(past|last|previous)\s+(year|12\s+months|365\s+days)`)},
}

// DetectTemporal reports whether the query references a relative historical
// window and which one. The first matching family wins; no match returns
// (false, nil).
func DetectTemporal(query string) (bool, *string) {
	for _, p := range temporalPatterns {
		if p.re.MatchString(query) {
			period := p.period
			return true, &period
		}
	}
	return false, nil
}
