package respond

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/smartcity-agent/backend/internal/llm"
	"github.com/smartcity-agent/backend/internal/model"
	"github.com/smartcity-agent/backend/internal/prompts"
	"github.com/smartcity-agent/backend/internal/sensordata"
	"github.com/smartcity-agent/backend/internal/stats"
)

const (
	placeholderData       = "{data}"
	placeholderTodayData  = "{today_data}"
	placeholderQuery      = "{query}"
	placeholderTimePeriod = "{time_period}"

	brevityInstruction = "\n\nIMPORTANT: Your response must be ONLY 3-4 lines maximum. Be direct and concise with the most important information."

	querySystemPrompt = "You are a smart city assistant providing extremely concise answers (3-4 lines maximum). " +
		"When analyzing temporal data, include key statistics (min/max/avg) while keeping responses brief. " +
		"Always compare historical data with today's readings when appropriate. " +
		"IMPORTANT: When displaying temperature values, use the proper degree symbol '°C' (Unicode U+00B0) rather than 'Â°C'. " +
		"Format all units correctly in your responses."

	averageSystemPrompt = "You are a smart city assistant providing extremely concise answers (2-3 lines maximum). " +
		"Always format units correctly, especially temperature with the proper degree symbol '°C' (Unicode U+00B0)."

	statusSystemPrompt = "You are a smart city assistant providing a comprehensive yet concise overview of node statuses. " +
		"Include all node details clearly and highlight any significant status variations."
)

// Upstream completions sometimes arrive with the degree sign double-encoded.
var degreeFixer = strings.NewReplacer(
	"Â°C", "°C",
	"Â°F", "°F",
)

// ChatCompleter is the slice of the LLM client the generator needs.
type ChatCompleter interface {
	Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error)
}

// TodayFetcher supplies the midnight-to-now series the temporal mode embeds
// alongside the requested period.
type TodayFetcher interface {
	FetchToday(ctx context.Context, nodeIDs []string) map[string]sensordata.RangeResult
}

// Generator assembles a classification-specific prompt around fetched data
// and asks the LLM for user-facing prose.
type Generator struct {
	llm     ChatCompleter
	lib     *prompts.Library
	fetcher TodayFetcher
}

func NewGenerator(llmClient ChatCompleter, lib *prompts.Library, fetcher TodayFetcher) *Generator {
	return &Generator{
		llm:     llmClient,
		lib:     lib,
		fetcher: fetcher,
	}
}

// FixDegreeSymbols rewrites the mis-encoded degree byte sequence to the
// proper glyph. Already-correct text passes through unchanged.
func FixDegreeSymbols(text string) string {
	return degreeFixer.Replace(text)
}

// GenerateTemporal answers a historical query: it fetches today's series for
// the same nodes, reduces both windows to statistics, and embeds everything
// into the temporal template.
func (g *Generator) GenerateTemporal(ctx context.Context, userQuery, timePeriod string, rangeData map[string]sensordata.RangeResult) (string, error) {
	nodeIDs := make([]string, 0, len(rangeData))
	for nodeID := range rangeData {
		nodeIDs = append(nodeIDs, nodeID)
	}
	todayData := g.fetcher.FetchToday(ctx, nodeIDs)

	formattedData, dataSummary, hasValidData := formatRangeData(rangeData)
	formattedTodayData := formatTodayData(todayData)
	periodStats := stats.Reduce(rangeData)
	todayStats := stats.Reduce(todayData)

	prompt := strings.NewReplacer(
		placeholderQuery, userQuery,
		placeholderData, marshalIndent(formattedData),
		placeholderTodayData, marshalIndent(formattedTodayData),
		placeholderTimePeriod, timePeriod,
	).Replace(g.lib.Temporal)

	prompt += fmt.Sprintf("\n\nStatistics summary for historical period:\n%s\n\n", marshalIndent(periodStats))
	prompt += fmt.Sprintf("\nToday's statistics summary:\n%s\n\n", marshalIndent(todayStats))
	prompt += fmt.Sprintf("\nData availability:\n%s\n\n", marshalIndent(dataSummary))
	prompt += "\nIMPORTANT: Your response must be ONLY 3-4 lines maximum. Include the most important statistics (min, max, avg) for key parameters in this brief response. Be direct and concise."
	if !hasValidData {
		prompt += "\nNOTE: No data found for requested sensors. Explain this briefly in 1-2 sentences."
	}

	return g.complete(ctx, querySystemPrompt, prompt)
}

// GenerateLive answers a non-temporal query from the latest snapshots,
// choosing the template by classification. Unknown labels fall back to the
// generic template.
func (g *Generator) GenerateLive(ctx context.Context, classification, userQuery string, nodeData map[string]interface{}) (string, error) {
	formattedData := marshalIndent(nodeData)

	var prompt string
	switch classification {
	case model.ClassSpecific:
		prompt = substitute(g.lib.Specific, userQuery, formattedData)
	case model.ClassGeneric, model.ClassGenericInference:
		prompt = substitute(g.lib.Generic, userQuery, formattedData)
	case model.ClassLivingLab:
		prompt = strings.ReplaceAll(g.lib.LivingLab, placeholderQuery, userQuery)
	default:
		prompt = substitute(g.lib.Generic, userQuery, formattedData)
	}
	prompt += brevityInstruction

	return g.complete(ctx, querySystemPrompt, prompt)
}

// AverageResponse answers a fleet-average query. When the aggregate fetch
// itself failed, the apology is built locally without an LLM call.
func (g *Generator) AverageResponse(ctx context.Context, userQuery string, avgData map[string]interface{}, parameter string) (string, error) {
	if errMsg, ok := avgData["error"].(string); ok {
		return fmt.Sprintf("Sorry, I couldn't retrieve the average data. %s", errMsg), nil
	}

	prompt := fmt.Sprintf(`
You are a smart city assistant providing extremely concise answers (2-3 lines maximum).
The user has asked about average sensor readings: %q

Here is the current average data across all sensor nodes:
%s
`, userQuery, marshalIndent(avgData))

	if parameter != "" {
		vertical, value, found := findParameter(avgData, parameter)
		if found {
			prompt += fmt.Sprintf("\nThe user specifically asked about the '%s' parameter, which has an average value of %v across all %s nodes. Focus your response on this specific parameter.", parameter, value, vertical)
		} else {
			prompt += fmt.Sprintf("\nThe user asked about the '%s' parameter, but it wasn't found in the data. Mention this in your response.", parameter)
		}
	} else {
		prompt += "\nThe user didn't specify a particular parameter. Provide a brief overview of key parameters from the data."
	}

	prompt += "\nIMPORTANT: Your response must be ONLY 2-3 lines maximum. Be direct and concise with the most important information. Format all units correctly in your response."

	return g.complete(ctx, averageSystemPrompt, prompt)
}

// StatusResponse summarizes per-node health records in 4-5 lines.
func (g *Generator) StatusResponse(ctx context.Context, nodeIDs []string, nodeStatuses map[string]interface{}) (string, error) {
	summary := make([]string, 0, len(nodeIDs))
	for _, nodeID := range nodeIDs {
		status, ok := nodeStatuses[nodeID].(map[string]interface{})
		if !ok {
			continue
		}
		state := stringField(status, "status", "Unknown")
		lastSeen := stringField(status, "last_seen", "N/A")
		summary = append(summary, fmt.Sprintf("%s: %s (Last seen: %s)", nodeID, state, lastSeen))
	}

	prompt := fmt.Sprintf(`
You are a smart city assistant providing a detailed yet concise answer about node statuses.
The user has asked about node status for the following nodes: %v

Detailed Node Status:
%s

Node Status Details:
%s

IMPORTANT:
- Provide a comprehensive overview of all node statuses
- Include the total number of nodes and their current states
- Highlight any nodes with unusual status
- Be clear and informative but remain concise
- Use no more than 4-5 lines in your response
`, nodeIDs, strings.Join(summary, "\n"), marshalIndent(nodeStatuses))

	return g.complete(ctx, statusSystemPrompt, prompt)
}

func (g *Generator) complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	resp, err := g.llm.Complete(ctx, llm.CompletionRequest{
		SystemPrompt: systemPrompt,
		UserPrompt:   userPrompt,
	})
	if err != nil {
		return "", fmt.Errorf("generation call failed: %w", err)
	}

	return FixDegreeSymbols(resp.Content), nil
}

func substitute(template, query, data string) string {
	return strings.NewReplacer(placeholderQuery, query, placeholderData, data).Replace(template)
}

// formatRangeData splits per-node range results into prompt-ready data,
// an availability summary, and a flag telling whether anything came back.
func formatRangeData(rangeData map[string]sensordata.RangeResult) (map[string]interface{}, map[string]interface{}, bool) {
	formatted := make(map[string]interface{}, len(rangeData))
	summary := make(map[string]interface{}, len(rangeData))
	hasValidData := false

	for nodeID, node := range rangeData {
		nodeSummary := map[string]interface{}{
			"type":     nodeType(nodeID),
			"has_data": false,
		}

		switch {
		case len(node.FilteredData) > 0:
			hasValidData = true
			nodeSummary["has_data"] = true
			formatted[nodeID] = node.FilteredData
		case node.Error != "":
			formatted[nodeID] = map[string]interface{}{"error": node.Error}
			nodeSummary["error"] = node.Error
		default:
			formatted[nodeID] = map[string]interface{}{"note": "No data available for this node"}
		}

		summary[nodeID] = nodeSummary
	}

	return formatted, summary, hasValidData
}

func formatTodayData(todayData map[string]sensordata.RangeResult) map[string]interface{} {
	formatted := make(map[string]interface{}, len(todayData))
	for nodeID, node := range todayData {
		if len(node.FilteredData) > 0 {
			formatted[nodeID] = node.FilteredData
		} else {
			formatted[nodeID] = map[string]interface{}{"note": "No data available for today"}
		}
	}
	return formatted
}

// findParameter locates which vertical of the fleet aggregate carries the
// requested parameter.
func findParameter(avgData map[string]interface{}, parameter string) (string, interface{}, bool) {
	for vertical, data := range avgData {
		if values, ok := data.(map[string]interface{}); ok {
			if value, present := values[parameter]; present && value != nil {
				return vertical, value, true
			}
		}
	}
	return "", nil, false
}

func nodeType(nodeID string) string {
	if prefix, _, found := strings.Cut(nodeID, "-"); found {
		return prefix
	}
	return "unknown"
}

func stringField(m map[string]interface{}, key, fallback string) string {
	if v, ok := m[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

func marshalIndent(v interface{}) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(data)
}
