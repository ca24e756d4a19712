package intent

import "regexp"

type parameterAliases struct {
	key     string
	aliases []*regexp.Regexp
}

func wordPattern(alias string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(alias) + `\b`)
}

// Alias table scanned in definition order, not query order. The first alias
// that matches wins for its canonical key.
var parameterTable = []parameterAliases{
	{"temperature", []*regexp.Regexp{wordPattern("temperature"), wordPattern("temp")}},
	{"relative_humidity", []*regexp.Regexp{wordPattern("humidity"), wordPattern("relative humidity"), wordPattern("rh")}},
	{"pm25", []*regexp.Regexp{wordPattern("pm2.5"), wordPattern("pm 2.5"), wordPattern("particulate matter 2.5")}},
	{"pm10", []*regexp.Regexp{wordPattern("pm10"), wordPattern("pm 10"), wordPattern("particulate matter 10")}},
	{"noise", []*regexp.Regexp{wordPattern("noise"), wordPattern("sound level"), wordPattern("decibel")}},
	{"aqi", []*regexp.Regexp{wordPattern("aqi"), wordPattern("air quality index")}},
	{"aql", []*regexp.Regexp{wordPattern("aql"), wordPattern("air quality level")}},
}

// ExtractParameter maps the query text to a canonical sensor parameter key,
// or "" when no alias matches.
func ExtractParameter(query string) string {
	for _, entry := range parameterTable {
		for _, re := range entry.aliases {
			if re.MatchString(query) {
				return entry.key
			}
		}
	}
	return ""
}
