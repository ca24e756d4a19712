package intent

import "regexp"

var averagePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(average|avg|mean)\s+(of|for|across|in)\s+(.+)`),
	regexp.MustCompile(`(?i)(.+)\s+(average|avg|mean)`),
	regexp.MustCompile(`(?i)what\s+is\s+the\s+(average|avg|mean)\s+(.+)`),
	regexp.MustCompile(`(?i)latest\s+(average|avg|mean)`),
	regexp.MustCompile(`(?i)today'?s?\s+(average|avg|mean)`),
	regexp.MustCompile(`(?i)current\s+(average|avg|mean)`),
}

var statusPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(node\s+)?status`),
	regexp.MustCompile(`(?i)(is\s+)?(node\s+)?(active|inactive)`),
	regexp.MustCompile(`(?i)node\s+health`),
	regexp.MustCompile(`(?i)(node\s+)?working\s+(condition|state)`),
	regexp.MustCompile(`(?i)(node\s+)?current\s+state`),
}

// IsAverageQuery reports whether the query asks for fleet-wide averages.
// Average intent is checked before status intent by the orchestrator, so a
// query matching both routes to the average path.
func IsAverageQuery(query string) bool {
	for _, re := range averagePatterns {
		if re.MatchString(query) {
			return true
		}
	}
	return false
}

// IsStatusQuery reports whether the query asks about node health or
// operational state.
func IsStatusQuery(query string) bool {
	for _, re := range statusPatterns {
		if re.MatchString(query) {
			return true
		}
	}
	return false
}
