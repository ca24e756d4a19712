package classify

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/smartcity-agent/backend/internal/model"
)

// Recovery ladder patterns. The block patterns deliberately grab the largest
// {...} span so a JSON object wrapped in prose still parses.
var (
	classifiedBlockPattern = regexp.MustCompile(`\{[\s\S]*"classification"\s*:\s*"[^"]+"\s*,\s*"node_ids"\s*:\s*\[[\s\S]*\][\s\S]*\}`)
	nodeIDBlockPattern     = regexp.MustCompile(`\{[\s\S]*"node_ids"\s*:\s*\[[\s\S]*\][\s\S]*\}`)
	isTemporalPattern      = regexp.MustCompile(`(?i)"is_temporal"\s*:\s*(true|false)`)
	timePeriodPattern      = regexp.MustCompile(`"time_period"\s*:\s*"([^"]+)"`)
	classificationPattern  = regexp.MustCompile(`CLASSIFICATION:\s*(SPECIFIC|GENERIC|GENERIC WITH PARAMETER INFERENCE|LIVING_LAB)`)
	bracketedListPattern   = regexp.MustCompile(`\[([^\]]+)\]`)
	quotedStringPattern    = regexp.MustCompile(`"([^"]+)"`)
)

// Extract recovers a ClassificationResult from raw classifier output. It
// never fails: each recovery step is attempted only when the previous one
// produced nothing, and the final fallback scrapes individual fields out of
// free text. Every path returns all four fields, with defaults filling gaps.
func Extract(responseText string) model.ClassificationResult {
	// 1. The whole text is a JSON object carrying node_ids.
	if data, ok := parseObject(responseText); ok {
		if _, hasNodeIDs := data["node_ids"]; hasNodeIDs {
			return fromMap(data)
		}
	}

	// 2. A {...} block with both classification and node_ids, buried in prose.
	if block := classifiedBlockPattern.FindString(responseText); block != "" {
		if data, ok := parseObject(block); ok {
			return fromMap(data)
		}
	}

	// 3. A {...} block with only node_ids.
	if block := nodeIDBlockPattern.FindString(responseText); block != "" {
		if data, ok := parseObject(block); ok {
			return fromMap(data)
		}
	}

	// 4. Field-by-field scrape. Node-id recovery from a bracketed list is
	// best effort only; unrelated bracketed content can be captured.
	isTemporal, timePeriod := extractTemporalInfo(responseText)
	return model.ClassificationResult{
		Classification: extractClassification(responseText),
		NodeIDs:        extractNodeIDs(responseText),
		IsTemporal:     isTemporal,
		TimePeriod:     timePeriod,
	}
}

func parseObject(text string) (map[string]interface{}, bool) {
	var data map[string]interface{}
	if err := json.Unmarshal([]byte(text), &data); err != nil {
		return nil, false
	}
	return data, true
}

func fromMap(data map[string]interface{}) model.ClassificationResult {
	result := model.DefaultClassification()

	if c, ok := data["classification"].(string); ok && c != "" {
		result.Classification = c
	}
	if rawIDs, ok := data["node_ids"].([]interface{}); ok {
		ids := make([]string, 0, len(rawIDs))
		for _, raw := range rawIDs {
			if id, ok := raw.(string); ok {
				ids = append(ids, id)
			}
		}
		result.NodeIDs = ids
	}
	if t, ok := data["is_temporal"].(bool); ok {
		result.IsTemporal = t
	}
	if p, ok := data["time_period"].(string); ok && p != "" {
		result.TimePeriod = &p
	}

	return result
}

func extractTemporalInfo(text string) (bool, *string) {
	isTemporal := false
	if m := isTemporalPattern.FindStringSubmatch(text); m != nil {
		isTemporal = strings.EqualFold(m[1], "true")
	}

	var timePeriod *string
	if m := timePeriodPattern.FindStringSubmatch(text); m != nil {
		timePeriod = &m[1]
	}

	return isTemporal, timePeriod
}

func extractClassification(text string) string {
	if m := classificationPattern.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return model.ClassUnknown
}

func extractNodeIDs(text string) []string {
	m := bracketedListPattern.FindString(text)
	if m == "" {
		return []string{}
	}

	ids := []string{}
	for _, quoted := range quotedStringPattern.FindAllStringSubmatch(m, -1) {
		ids = append(ids, quoted[1])
	}
	return ids
}
