package query

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartcity-agent/backend/internal/model"
	"github.com/smartcity-agent/backend/internal/sensordata"
)

type fakeClassifier struct {
	raw   string
	err   error
	calls int
}

func (f *fakeClassifier) Classify(ctx context.Context, userQuery string) (string, error) {
	f.calls++
	return f.raw, f.err
}

type fakeFetcher struct {
	latest       map[string]interface{}
	ranged       map[string]sensordata.RangeResult
	today        map[string]sensordata.RangeResult
	average      map[string]interface{}
	statuses     map[string]map[string]interface{}
	rangedPeriod string
	latestCalled bool
	rangedCalled bool
}

func (f *fakeFetcher) FetchLatestAll(ctx context.Context, nodeIDs []string) map[string]interface{} {
	f.latestCalled = true
	return f.latest
}

func (f *fakeFetcher) FetchRangeAll(ctx context.Context, nodeIDs []string, period string) map[string]sensordata.RangeResult {
	f.rangedCalled = true
	f.rangedPeriod = period
	return f.ranged
}

func (f *fakeFetcher) FetchToday(ctx context.Context, nodeIDs []string) map[string]sensordata.RangeResult {
	return f.today
}

func (f *fakeFetcher) FetchAverage(ctx context.Context) map[string]interface{} {
	return f.average
}

func (f *fakeFetcher) FetchNodeStatus(ctx context.Context, nodeID string) map[string]interface{} {
	if s, ok := f.statuses[nodeID]; ok {
		return s
	}
	return map[string]interface{}{"error": "Failed to fetch status for node " + nodeID}
}

type fakeGenerator struct {
	temporalResp string
	liveResp     string
	averageResp  string
	statusResp   string
	err          error

	temporalCalled bool
	liveCalled     bool
	averageCalled  bool
	statusCalled   bool
	liveClass      string
}

func (f *fakeGenerator) GenerateTemporal(ctx context.Context, userQuery, timePeriod string, rangeData map[string]sensordata.RangeResult) (string, error) {
	f.temporalCalled = true
	return f.temporalResp, f.err
}

func (f *fakeGenerator) GenerateLive(ctx context.Context, classification, userQuery string, nodeData map[string]interface{}) (string, error) {
	f.liveCalled = true
	f.liveClass = classification
	return f.liveResp, f.err
}

func (f *fakeGenerator) AverageResponse(ctx context.Context, userQuery string, avgData map[string]interface{}, parameter string) (string, error) {
	f.averageCalled = true
	return f.averageResp, f.err
}

func (f *fakeGenerator) StatusResponse(ctx context.Context, nodeIDs []string, nodeStatuses map[string]interface{}) (string, error) {
	f.statusCalled = true
	return f.statusResp, f.err
}

type fakeCache struct {
	store map[string]string
	hits  int
	sets  int
}

func newFakeCache() *fakeCache {
	return &fakeCache{store: map[string]string{}}
}

func (f *fakeCache) GetClassification(ctx context.Context, key string) (string, bool) {
	raw, ok := f.store[key]
	if ok {
		f.hits++
	}
	return raw, ok
}

func (f *fakeCache) SetClassification(ctx context.Context, key, raw string) {
	f.sets++
	f.store[key] = raw
}

func TestProcessQueryEmpty(t *testing.T) {
	engine := NewEngine(&fakeClassifier{}, &fakeFetcher{}, &fakeGenerator{}, nil)

	_, err := engine.ProcessQuery(context.Background(), "   ")

	assert.ErrorIs(t, err, ErrEmptyQuery)
}

func TestProcessQueryAveragePath(t *testing.T) {
	classifier := &fakeClassifier{}
	fetcher := &fakeFetcher{
		average: map[string]interface{}{"weather": map[string]interface{}{"temperature": 24.2}},
	}
	gen := &fakeGenerator{averageResp: "Average temperature is 24.2°C."}
	engine := NewEngine(classifier, fetcher, gen, nil)

	result, err := engine.ProcessQuery(context.Background(), "what is the average temperature")

	require.NoError(t, err)
	assert.Equal(t, model.ClassAverage, result.Classification)
	assert.Equal(t, "Average temperature is 24.2°C.", result.Response)
	assert.Equal(t, "temperature", result.Parameter)
	assert.True(t, gen.averageCalled)
	// The average path never consults the LLM classifier.
	assert.Equal(t, 0, classifier.calls)
}

func TestProcessQueryAverageBeatsStatus(t *testing.T) {
	// "current average ... status" matches both intents; average wins.
	fetcher := &fakeFetcher{average: map[string]interface{}{}}
	gen := &fakeGenerator{averageResp: "ok"}
	engine := NewEngine(&fakeClassifier{}, fetcher, gen, nil)

	result, err := engine.ProcessQuery(context.Background(), "current average status of the air")

	require.NoError(t, err)
	assert.Equal(t, model.ClassAverage, result.Classification)
	assert.True(t, gen.averageCalled)
	assert.False(t, gen.statusCalled)
}

func TestProcessQueryStatusPath(t *testing.T) {
	classifier := &fakeClassifier{
		raw: `{"classification": "SPECIFIC", "node_ids": ["WN-01"], "is_temporal": false, "time_period": null}`,
	}
	fetcher := &fakeFetcher{
		statuses: map[string]map[string]interface{}{
			"WN-01": {"status": "active", "last_seen": "2025-03-15T09:00:00Z"},
		},
	}
	gen := &fakeGenerator{statusResp: "WN-01 is active."}
	engine := NewEngine(classifier, fetcher, gen, nil)

	result, err := engine.ProcessQuery(context.Background(), "is node WN-01 active")

	require.NoError(t, err)
	assert.Equal(t, model.ClassNodeStatus, result.Classification)
	assert.Equal(t, []string{"WN-01"}, result.NodeIDs)
	assert.Equal(t, "WN-01 is active.", result.Response)
	assert.True(t, gen.statusCalled)
}

func TestProcessQueryStatusWithoutNodes(t *testing.T) {
	classifier := &fakeClassifier{
		raw: `{"classification": "GENERIC", "node_ids": [], "is_temporal": false, "time_period": null}`,
	}
	gen := &fakeGenerator{}
	engine := NewEngine(classifier, &fakeFetcher{}, gen, nil)

	result, err := engine.ProcessQuery(context.Background(), "node status please")

	require.NoError(t, err)
	assert.Equal(t, model.ClassNodeStatus, result.Classification)
	assert.Equal(t, noNodesStatusResponse, result.Response)
	assert.False(t, gen.statusCalled)
}

func TestProcessQueryLivePath(t *testing.T) {
	classifier := &fakeClassifier{
		raw: `{"classification": "SPECIFIC", "node_ids": ["AQ-01"], "is_temporal": false, "time_period": null}`,
	}
	fetcher := &fakeFetcher{
		latest: map[string]interface{}{"AQ-01": map[string]interface{}{"temperature": 24.0}},
	}
	gen := &fakeGenerator{liveResp: "It is 24°C."}
	engine := NewEngine(classifier, fetcher, gen, nil)

	result, err := engine.ProcessQuery(context.Background(), "temperature at AQ-01")

	require.NoError(t, err)
	assert.Equal(t, model.ClassSpecific, result.Classification)
	assert.Equal(t, "It is 24°C.", result.Response)
	assert.False(t, result.IsTemporal)
	assert.True(t, fetcher.latestCalled)
	assert.False(t, fetcher.rangedCalled)
	assert.Equal(t, model.ClassSpecific, gen.liveClass)
}

func TestProcessQueryTemporalPath(t *testing.T) {
	classifier := &fakeClassifier{
		raw: `{"classification": "SPECIFIC", "node_ids": ["AQ-01"], "is_temporal": true, "time_period": "week"}`,
	}
	fetcher := &fakeFetcher{
		ranged: map[string]sensordata.RangeResult{
			"AQ-01": {FilteredData: map[string]sensordata.CategorySeries{
				"aqi": {Data: []map[string]interface{}{
					{"timestamp": "2025-03-10T00:00:00Z", "pm25": 18.0},
				}},
			}},
		},
		today: map[string]sensordata.RangeResult{
			"AQ-01": {FilteredData: map[string]sensordata.CategorySeries{}},
		},
	}
	gen := &fakeGenerator{temporalResp: "PM2.5 averaged 18 last week."}
	engine := NewEngine(classifier, fetcher, gen, nil)

	result, err := engine.ProcessQuery(context.Background(), "pm2.5 at AQ-01 over the past week")

	require.NoError(t, err)
	assert.True(t, result.IsTemporal)
	require.NotNil(t, result.TimePeriod)
	assert.Equal(t, "week", *result.TimePeriod)
	assert.Equal(t, "week", fetcher.rangedPeriod)
	assert.Equal(t, "PM2.5 averaged 18 last week.", result.Response)
	assert.Contains(t, result.NodeData, "AQ-01")
	assert.Contains(t, result.TodaysData, "AQ-01")
	assert.True(t, gen.temporalCalled)
	assert.False(t, gen.liveCalled)
}

func TestProcessQueryRegexTemporalMerge(t *testing.T) {
	// Classifier misses the temporal cue; the regex pass adds it.
	classifier := &fakeClassifier{
		raw: `{"classification": "SPECIFIC", "node_ids": ["AQ-01"], "is_temporal": false, "time_period": null}`,
	}
	fetcher := &fakeFetcher{
		ranged: map[string]sensordata.RangeResult{},
		today:  map[string]sensordata.RangeResult{},
	}
	gen := &fakeGenerator{temporalResp: "ok"}
	engine := NewEngine(classifier, fetcher, gen, nil)

	result, err := engine.ProcessQuery(context.Background(), "temperature at AQ-01 yesterday")

	require.NoError(t, err)
	assert.True(t, result.IsTemporal)
	require.NotNil(t, result.TimePeriod)
	assert.Equal(t, "day", *result.TimePeriod)
	assert.Equal(t, "day", fetcher.rangedPeriod)
}

func TestProcessQueryClassifierFailureDegrades(t *testing.T) {
	classifier := &fakeClassifier{err: errors.New("upstream down")}
	fetcher := &fakeFetcher{latest: map[string]interface{}{}}
	gen := &fakeGenerator{liveResp: "best effort answer"}
	engine := NewEngine(classifier, fetcher, gen, nil)

	result, err := engine.ProcessQuery(context.Background(), "temperature at the gate")

	require.NoError(t, err)
	assert.Equal(t, model.ClassUnknown, result.Classification)
	assert.Empty(t, result.NodeIDs)
	assert.Equal(t, "best effort answer", result.Response)
}

func TestProcessQueryGenerationFailureFoldsIntoResponse(t *testing.T) {
	classifier := &fakeClassifier{
		raw: `{"classification": "GENERIC", "node_ids": [], "is_temporal": false, "time_period": null}`,
	}
	gen := &fakeGenerator{err: errors.New("generation call failed: circuit breaker is open")}
	engine := NewEngine(classifier, &fakeFetcher{latest: map[string]interface{}{}}, gen, nil)

	result, err := engine.ProcessQuery(context.Background(), "how is the air today")

	require.NoError(t, err)
	assert.Contains(t, result.Response, "Error:")
	assert.Contains(t, result.Response, "circuit breaker is open")
}

func TestClassificationCacheRoundTrip(t *testing.T) {
	classifier := &fakeClassifier{
		raw: `{"classification": "GENERIC", "node_ids": [], "is_temporal": false, "time_period": null}`,
	}
	cache := newFakeCache()
	fetcher := &fakeFetcher{latest: map[string]interface{}{}}
	gen := &fakeGenerator{liveResp: "ok"}
	engine := NewEngine(classifier, fetcher, gen, cache)

	_, err := engine.ProcessQuery(context.Background(), "how is the air")
	require.NoError(t, err)
	_, err = engine.ProcessQuery(context.Background(), "how is the air")
	require.NoError(t, err)

	assert.Equal(t, 1, classifier.calls)
	assert.Equal(t, 1, cache.sets)
	assert.Equal(t, 1, cache.hits)
}

func TestDebugExposesPipelineArtifacts(t *testing.T) {
	classifier := &fakeClassifier{
		raw: `{"classification": "SPECIFIC", "node_ids": ["AQ-01"], "is_temporal": true, "time_period": "week"}`,
	}
	fetcher := &fakeFetcher{
		ranged: map[string]sensordata.RangeResult{
			"AQ-01": {FilteredData: map[string]sensordata.CategorySeries{
				"aqi": {Data: []map[string]interface{}{
					{"timestamp": "2025-03-10T00:00:00Z", "pm25": 18.0},
				}},
			}},
		},
		today: map[string]sensordata.RangeResult{},
	}
	gen := &fakeGenerator{}
	engine := NewEngine(classifier, fetcher, gen, nil)

	debug, err := engine.Debug(context.Background(), "pm2.5 at AQ-01 over the past week")

	require.NoError(t, err)
	assert.Equal(t, classifier.raw, debug.RawClassificationResponse)
	assert.Equal(t, []string{"AQ-01"}, debug.ParsedResponse.NodeIDs)
	assert.True(t, debug.IsTemporal)
	require.NotNil(t, debug.TimePeriod)
	assert.Equal(t, "week", *debug.TimePeriod)
	assert.True(t, debug.RegexTemporalDetection.IsTemporal)
	assert.Contains(t, debug.NodeData, "AQ-01")
	assert.NotNil(t, debug.Statistics)
	// Debug never generates prose.
	assert.False(t, gen.temporalCalled)
	assert.False(t, gen.liveCalled)
}

func TestDebugEmptyQuery(t *testing.T) {
	engine := NewEngine(&fakeClassifier{}, &fakeFetcher{}, &fakeGenerator{}, nil)

	_, err := engine.Debug(context.Background(), "")

	assert.ErrorIs(t, err, ErrEmptyQuery)
}
