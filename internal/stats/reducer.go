package stats

import (
	"encoding/json"
	"strconv"

	"github.com/smartcity-agent/backend/internal/sensordata"
)

// ErrNoData is the error record value for a node with no usable series.
const ErrNoData = "No data available"

// Fields never treated as numeric parameters.
var excludedFields = map[string]bool{
	"node_id":    true,
	"timestamp":  true,
	"id":         true,
	"name":       true,
	"latitude":   true,
	"longitude":  true,
	"type":       true,
	"created_at": true,
}

// ParameterStats summarizes one parameter's series over a time window. On
// ties the first-occurring extreme keeps its timestamp.
type ParameterStats struct {
	Min            float64 `json:"min"`
	MinTimestamp   string  `json:"min_timestamp"`
	Max            float64 `json:"max"`
	MaxTimestamp   string  `json:"max_timestamp"`
	Avg            float64 `json:"avg"`
	Count          int     `json:"count"`
	FirstTimestamp string  `json:"first_timestamp"`
	LastTimestamp  string  `json:"last_timestamp"`
}

type series struct {
	values     []float64
	timestamps []string
}

// Reduce turns per-node time-ranged series into per-category, per-parameter
// statistics. A node without usable data maps to {"error": "No data
// available"}. The reduction is order-sensitive: identical input sequences
// produce identical output, including tie-break timestamps.
func Reduce(nodeData map[string]sensordata.RangeResult) map[string]interface{} {
	result := make(map[string]interface{}, len(nodeData))

	for nodeID, node := range nodeData {
		if len(node.FilteredData) == 0 {
			result[nodeID] = map[string]interface{}{"error": ErrNoData}
			continue
		}

		nodeStats := make(map[string]map[string]ParameterStats)
		for category, categoryData := range node.FilteredData {
			if len(categoryData.Data) == 0 {
				continue
			}

			params := extractParams(categoryData.Data)
			categoryStats := make(map[string]ParameterStats, len(params.order))
			for _, name := range params.order {
				if s, ok := reduceSeries(params.byName[name]); ok {
					categoryStats[name] = s
				}
			}
			nodeStats[category] = categoryStats
		}

		result[nodeID] = nodeStats
	}

	return result
}

type paramSet struct {
	order  []string
	byName map[string]*series
}

// extractParams collects (value, timestamp) pairs per parameter in arrival
// order. Non-numeric values are skipped silently.
func extractParams(entries []map[string]interface{}) paramSet {
	params := paramSet{byName: make(map[string]*series)}

	for _, entry := range entries {
		timestamp, _ := entry["timestamp"].(string)
		for key, value := range entry {
			if excludedFields[key] {
				continue
			}
			num, ok := toFloat(value)
			if !ok {
				continue
			}
			s, exists := params.byName[key]
			if !exists {
				s = &series{}
				params.byName[key] = s
				params.order = append(params.order, key)
			}
			s.values = append(s.values, num)
			s.timestamps = append(s.timestamps, timestamp)
		}
	}

	return params
}

func reduceSeries(s *series) (ParameterStats, bool) {
	if len(s.values) == 0 {
		return ParameterStats{}, false
	}

	minIdx, maxIdx := 0, 0
	sum := 0.0
	for i, v := range s.values {
		sum += v
		if v < s.values[minIdx] {
			minIdx = i
		}
		if v > s.values[maxIdx] {
			maxIdx = i
		}
	}

	return ParameterStats{
		Min:            s.values[minIdx],
		MinTimestamp:   s.timestamps[minIdx],
		Max:            s.values[maxIdx],
		MaxTimestamp:   s.timestamps[maxIdx],
		Avg:            sum / float64(len(s.values)),
		Count:          len(s.values),
		FirstTimestamp: s.timestamps[0],
		LastTimestamp:  s.timestamps[len(s.timestamps)-1],
	}, true
}

func toFloat(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(v, 64)
		return f, err == nil
	default:
		return 0, false
	}
}
