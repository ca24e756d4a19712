package respond

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartcity-agent/backend/internal/llm"
	"github.com/smartcity-agent/backend/internal/model"
	"github.com/smartcity-agent/backend/internal/prompts"
	"github.com/smartcity-agent/backend/internal/sensordata"
)

type fakeCompleter struct {
	lastReq llm.CompletionRequest
	reply   string
	err     error
	calls   int
}

func (f *fakeCompleter) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	f.calls++
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return &llm.CompletionResponse{Content: f.reply}, nil
}

type fakeTodayFetcher struct {
	data map[string]sensordata.RangeResult
}

func (f *fakeTodayFetcher) FetchToday(ctx context.Context, nodeIDs []string) map[string]sensordata.RangeResult {
	return f.data
}

func newTestGenerator(completer *fakeCompleter) *Generator {
	return NewGenerator(completer, prompts.Defaults(), &fakeTodayFetcher{
		data: map[string]sensordata.RangeResult{},
	})
}

func TestFixDegreeSymbols(t *testing.T) {
	assert.Equal(t, "25°C and 77°F", FixDegreeSymbols("25Â°C and 77Â°F"))
	// Already correct text passes through unchanged.
	assert.Equal(t, "25°C", FixDegreeSymbols("25°C"))
	assert.Equal(t, "no units here", FixDegreeSymbols("no units here"))
}

func TestGenerateLiveSubstitutesTemplate(t *testing.T) {
	completer := &fakeCompleter{reply: "It is 24°C at the gate."}
	gen := newTestGenerator(completer)

	resp, err := gen.GenerateLive(context.Background(), model.ClassSpecific,
		"temperature at node AQ-01", map[string]interface{}{"AQ-01": map[string]interface{}{"temperature": 24.0}})

	require.NoError(t, err)
	assert.Equal(t, "It is 24°C at the gate.", resp)
	assert.Contains(t, completer.lastReq.UserPrompt, "temperature at node AQ-01")
	assert.Contains(t, completer.lastReq.UserPrompt, "AQ-01")
	assert.NotContains(t, completer.lastReq.UserPrompt, "{query}")
	assert.NotContains(t, completer.lastReq.UserPrompt, "{data}")
}

func TestGenerateLiveUnknownFallsBackToGeneric(t *testing.T) {
	completer := &fakeCompleter{reply: "ok"}
	gen := newTestGenerator(completer)

	_, err := gen.GenerateLive(context.Background(), "SOMETHING_ELSE", "any query", map[string]interface{}{})

	require.NoError(t, err)
	assert.Equal(t, 1, completer.calls)
	assert.NotContains(t, completer.lastReq.UserPrompt, "{query}")
}

func TestGenerateLiveFixesDegreeEncoding(t *testing.T) {
	completer := &fakeCompleter{reply: "Currently 31Â°C outside."}
	gen := newTestGenerator(completer)

	resp, err := gen.GenerateLive(context.Background(), model.ClassGeneric, "how hot is it", map[string]interface{}{})

	require.NoError(t, err)
	assert.Equal(t, "Currently 31°C outside.", resp)
}

func TestGenerateTemporalEmbedsBothWindows(t *testing.T) {
	completer := &fakeCompleter{reply: "summary"}
	gen := NewGenerator(completer, prompts.Defaults(), &fakeTodayFetcher{
		data: map[string]sensordata.RangeResult{
			"AQ-01": {FilteredData: map[string]sensordata.CategorySeries{
				"aqi": {Data: []map[string]interface{}{
					{"timestamp": "2025-03-15T08:00:00Z", "pm25": 14.0},
				}},
			}},
		},
	})

	rangeData := map[string]sensordata.RangeResult{
		"AQ-01": {FilteredData: map[string]sensordata.CategorySeries{
			"aqi": {Data: []map[string]interface{}{
				{"timestamp": "2025-03-10T08:00:00Z", "pm25": 22.0},
			}},
		}},
	}

	_, err := gen.GenerateTemporal(context.Background(), "pm2.5 last week at AQ-01", "week", rangeData)

	require.NoError(t, err)
	prompt := completer.lastReq.UserPrompt
	assert.Contains(t, prompt, "pm2.5 last week at AQ-01")
	assert.Contains(t, prompt, "week")
	assert.Contains(t, prompt, "Statistics summary for historical period")
	assert.Contains(t, prompt, "Today's statistics summary")
	assert.Contains(t, prompt, "Data availability")
	assert.NotContains(t, prompt, "{time_period}")
	assert.NotContains(t, prompt, "No data found for requested sensors")
}

func TestGenerateTemporalNoDataNote(t *testing.T) {
	completer := &fakeCompleter{reply: "no data"}
	gen := newTestGenerator(completer)

	rangeData := map[string]sensordata.RangeResult{
		"AQ-09": {Error: "Failed to fetch historical data for node AQ-09: unexpected status 502"},
	}

	_, err := gen.GenerateTemporal(context.Background(), "humidity last month", "month", rangeData)

	require.NoError(t, err)
	assert.Contains(t, completer.lastReq.UserPrompt, "No data found for requested sensors")
}

func TestAverageResponseErrorRecordSkipsLLM(t *testing.T) {
	completer := &fakeCompleter{reply: "should not be used"}
	gen := newTestGenerator(completer)

	resp, err := gen.AverageResponse(context.Background(), "average temperature",
		map[string]interface{}{"error": "Failed to fetch average data: timeout"}, "temperature")

	require.NoError(t, err)
	assert.Equal(t, "Sorry, I couldn't retrieve the average data. Failed to fetch average data: timeout", resp)
	assert.Equal(t, 0, completer.calls)
}

func TestAverageResponseParameterFocus(t *testing.T) {
	completer := &fakeCompleter{reply: "The average temperature is 24.2°C."}
	gen := newTestGenerator(completer)

	avgData := map[string]interface{}{
		"weather": map[string]interface{}{"temperature": 24.2, "relative_humidity": 61.0},
	}

	resp, err := gen.AverageResponse(context.Background(), "average temperature", avgData, "temperature")

	require.NoError(t, err)
	assert.Equal(t, "The average temperature is 24.2°C.", resp)
	assert.Contains(t, completer.lastReq.UserPrompt, "'temperature' parameter")
	assert.Contains(t, completer.lastReq.UserPrompt, "weather")
}

func TestAverageResponseMissingParameterMentioned(t *testing.T) {
	completer := &fakeCompleter{reply: "ok"}
	gen := newTestGenerator(completer)

	avgData := map[string]interface{}{
		"weather": map[string]interface{}{"temperature": 24.2},
	}

	_, err := gen.AverageResponse(context.Background(), "average noise", avgData, "noise")

	require.NoError(t, err)
	assert.Contains(t, completer.lastReq.UserPrompt, "wasn't found in the data")
}

func TestStatusResponseSummarizesNodes(t *testing.T) {
	completer := &fakeCompleter{reply: "All nodes active."}
	gen := newTestGenerator(completer)

	statuses := map[string]interface{}{
		"WN-01": map[string]interface{}{"status": "active", "last_seen": "2025-03-15T09:00:00Z"},
		"WN-02": map[string]interface{}{"status": "inactive"},
	}

	resp, err := gen.StatusResponse(context.Background(), []string{"WN-01", "WN-02"}, statuses)

	require.NoError(t, err)
	assert.Equal(t, "All nodes active.", resp)
	assert.Contains(t, completer.lastReq.UserPrompt, "WN-01: active (Last seen: 2025-03-15T09:00:00Z)")
	assert.Contains(t, completer.lastReq.UserPrompt, "WN-02: inactive (Last seen: N/A)")
}

func TestGenerationErrorPropagates(t *testing.T) {
	completer := &fakeCompleter{err: errors.New("circuit breaker is open")}
	gen := newTestGenerator(completer)

	_, err := gen.GenerateLive(context.Background(), model.ClassGeneric, "query", map[string]interface{}{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "generation call failed")
}
