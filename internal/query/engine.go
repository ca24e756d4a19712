package query

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/smartcity-agent/backend/internal/classify"
	"github.com/smartcity-agent/backend/internal/intent"
	"github.com/smartcity-agent/backend/internal/metrics"
	"github.com/smartcity-agent/backend/internal/model"
	"github.com/smartcity-agent/backend/internal/sensordata"
	"github.com/smartcity-agent/backend/internal/stats"
	"github.com/smartcity-agent/backend/pkg/logger"
	"github.com/smartcity-agent/backend/pkg/utils"
)

// ErrEmptyQuery is the only failure that crosses the engine boundary; every
// upstream problem is folded into the returned QueryResult instead.
var ErrEmptyQuery = errors.New("query text must not be empty")

const noNodesStatusResponse = "I couldn't identify specific nodes to check the status for. Please provide specific node IDs."

// Classifier produces the raw classification text for a query.
type Classifier interface {
	Classify(ctx context.Context, userQuery string) (string, error)
}

// Fetcher is the sensor-data access the engine needs. Implementations
// return error-shaped values, never errors.
type Fetcher interface {
	FetchLatestAll(ctx context.Context, nodeIDs []string) map[string]interface{}
	FetchRangeAll(ctx context.Context, nodeIDs []string, period string) map[string]sensordata.RangeResult
	FetchToday(ctx context.Context, nodeIDs []string) map[string]sensordata.RangeResult
	FetchAverage(ctx context.Context) map[string]interface{}
	FetchNodeStatus(ctx context.Context, nodeID string) map[string]interface{}
}

// Generator turns fetched data into user-facing prose.
type Generator interface {
	GenerateTemporal(ctx context.Context, userQuery, timePeriod string, rangeData map[string]sensordata.RangeResult) (string, error)
	GenerateLive(ctx context.Context, classification, userQuery string, nodeData map[string]interface{}) (string, error)
	AverageResponse(ctx context.Context, userQuery string, avgData map[string]interface{}, parameter string) (string, error)
	StatusResponse(ctx context.Context, nodeIDs []string, nodeStatuses map[string]interface{}) (string, error)
}

// ClassificationCache is an optional short-TTL cache of raw classifier
// output keyed by query hash.
type ClassificationCache interface {
	GetClassification(ctx context.Context, key string) (string, bool)
	SetClassification(ctx context.Context, key, raw string)
}

// Engine is the top-level control flow: intent checks, classification,
// data fetch, reduction, and response generation, with per-stage error
// isolation.
type Engine struct {
	classifier Classifier
	fetcher    Fetcher
	generator  Generator
	cache      ClassificationCache
}

func NewEngine(classifier Classifier, fetcher Fetcher, generator Generator, cache ClassificationCache) *Engine {
	return &Engine{
		classifier: classifier,
		fetcher:    fetcher,
		generator:  generator,
		cache:      cache,
	}
}

// ProcessQuery answers one user query. It always returns a well-formed
// QueryResult unless the query text itself is empty.
func (e *Engine) ProcessQuery(ctx context.Context, userQuery string) (*model.QueryResult, error) {
	if strings.TrimSpace(userQuery) == "" {
		return nil, ErrEmptyQuery
	}

	startTime := time.Now()
	queryID := uuid.New().String()

	logger.Info("Processing query",
		zap.String("query_id", queryID),
		zap.String("query", userQuery),
	)

	var result *model.QueryResult
	switch {
	case intent.IsAverageQuery(userQuery):
		result = e.averagePath(ctx, userQuery)
	case intent.IsStatusQuery(userQuery):
		result = e.statusPath(ctx, userQuery)
	default:
		result = e.classifyPath(ctx, userQuery)
	}

	status := "success"
	if strings.HasPrefix(result.Response, "Error:") {
		status = "error"
	}
	metrics.QueryTotal.WithLabelValues(status).Inc()
	metrics.QueryDuration.WithLabelValues(result.Classification).Observe(time.Since(startTime).Seconds())

	logger.Info("Query processed",
		zap.String("query_id", queryID),
		zap.String("classification", result.Classification),
		zap.Bool("is_temporal", result.IsTemporal),
		zap.Duration("latency", time.Since(startTime)),
	)

	return result, nil
}

// averagePath skips LLM classification entirely: fleet aggregate plus an
// optional parameter focus.
func (e *Engine) averagePath(ctx context.Context, userQuery string) *model.QueryResult {
	parameter := intent.ExtractParameter(userQuery)
	avgData := e.fetcher.FetchAverage(ctx)

	response, err := e.generator.AverageResponse(ctx, userQuery, avgData, parameter)
	if err != nil {
		logger.Warn("Average response generation failed", zap.Error(err))
		response = fmt.Sprintf("Error: %v", err)
	}

	return &model.QueryResult{
		Classification: model.ClassAverage,
		NodeIDs:        []string{},
		NodeData:       avgData,
		Response:       response,
		Parameter:      parameter,
	}
}

// statusPath still consults the classifier to resolve node IDs, then reports
// per-node health.
func (e *Engine) statusPath(ctx context.Context, userQuery string) *model.QueryResult {
	parsed := e.classifyQuery(ctx, userQuery)

	nodeIDs := parsed.NodeIDs
	if len(nodeIDs) == 0 {
		return &model.QueryResult{
			Classification: model.ClassNodeStatus,
			NodeIDs:        []string{},
			NodeData:       map[string]interface{}{},
			Response:       noNodesStatusResponse,
		}
	}

	nodeStatuses := make(map[string]interface{}, len(nodeIDs))
	for _, nodeID := range nodeIDs {
		nodeStatuses[nodeID] = e.fetcher.FetchNodeStatus(ctx, nodeID)
	}

	response, err := e.generator.StatusResponse(ctx, nodeIDs, nodeStatuses)
	if err != nil {
		logger.Warn("Status response generation failed", zap.Error(err))
		response = fmt.Sprintf("Error: %v", err)
	}

	return &model.QueryResult{
		Classification: model.ClassNodeStatus,
		NodeIDs:        nodeIDs,
		NodeData:       nodeStatuses,
		Response:       response,
	}
}

// classifyPath is the general route: classifier, extractor, temporal merge,
// fetch, and generation.
func (e *Engine) classifyPath(ctx context.Context, userQuery string) *model.QueryResult {
	parsed := e.classifyQuery(ctx, userQuery)

	isTemporal := parsed.IsTemporal
	timePeriod := parsed.TimePeriod

	// The regex pass only adds temporal detection; it never overrides a
	// positive answer from the classifier.
	if !isTemporal {
		if regexTemporal, regexPeriod := intent.DetectTemporal(userQuery); regexTemporal {
			isTemporal = true
			timePeriod = regexPeriod
		}
	}

	nodeIDs := parsed.NodeIDs

	result := &model.QueryResult{
		Classification: parsed.Classification,
		NodeIDs:        nodeIDs,
		IsTemporal:     isTemporal,
		TimePeriod:     timePeriod,
	}

	if isTemporal && timePeriod != nil {
		metrics.TemporalQueries.Inc()

		rangeData := e.fetcher.FetchRangeAll(ctx, nodeIDs, *timePeriod)
		sensordata.LogFetchSummary(rangeData)

		// Diagnostic reduction; the generator recomputes what it embeds.
		reduced := stats.Reduce(rangeData)
		logger.Debug("Temporal statistics computed", zap.Int("nodes", len(reduced)))

		response, err := e.generator.GenerateTemporal(ctx, userQuery, *timePeriod, rangeData)
		if err != nil {
			logger.Warn("Temporal response generation failed", zap.Error(err))
			response = fmt.Sprintf("Error: %v", err)
		}

		result.NodeData = rangeDataMap(rangeData)
		result.Response = response
		result.TodaysData = rangeDataMap(e.fetcher.FetchToday(ctx, nodeIDs))
		return result
	}

	nodeData := e.fetcher.FetchLatestAll(ctx, nodeIDs)

	response, err := e.generator.GenerateLive(ctx, parsed.Classification, userQuery, nodeData)
	if err != nil {
		logger.Warn("Response generation failed", zap.Error(err))
		response = fmt.Sprintf("Error: %v", err)
	}

	result.NodeData = nodeData
	result.Response = response
	return result
}

// Debug exposes every intermediate pipeline artifact for one query without
// generating a response.
func (e *Engine) Debug(ctx context.Context, userQuery string) (*model.DebugResult, error) {
	if strings.TrimSpace(userQuery) == "" {
		return nil, ErrEmptyQuery
	}

	raw, err := e.classifyRaw(ctx, userQuery)
	if err != nil {
		logger.Warn("Classification failed in debug", zap.Error(err))
		raw = ""
	}
	parsed := classify.Extract(raw)

	regexTemporal, regexPeriod := intent.DetectTemporal(userQuery)

	isTemporal := parsed.IsTemporal || regexTemporal
	timePeriod := parsed.TimePeriod
	if timePeriod == nil {
		timePeriod = regexPeriod
	}

	debug := &model.DebugResult{
		Query:                     userQuery,
		RawClassificationResponse: raw,
		ParsedResponse:            parsed,
		RegexTemporalDetection: model.TemporalDetection{
			IsTemporal: regexTemporal,
			TimePeriod: regexPeriod,
		},
		NodeData:   map[string]interface{}{},
		TodaysData: map[string]interface{}{},
		IsTemporal: isTemporal,
		TimePeriod: timePeriod,
	}

	nodeIDs := parsed.NodeIDs
	if isTemporal && timePeriod != nil && len(nodeIDs) > 0 {
		rangeData := e.fetcher.FetchRangeAll(ctx, nodeIDs, *timePeriod)
		debug.NodeData = rangeDataMap(rangeData)
		debug.TodaysData = rangeDataMap(e.fetcher.FetchToday(ctx, nodeIDs))
		debug.Statistics = stats.Reduce(rangeData)
	} else if len(nodeIDs) > 0 {
		debug.NodeData = e.fetcher.FetchLatestAll(ctx, nodeIDs)
	}

	return debug, nil
}

// classifyQuery runs the gateway and extractor, degrading to the default
// UNKNOWN record when the LLM call fails.
func (e *Engine) classifyQuery(ctx context.Context, userQuery string) model.ClassificationResult {
	raw, err := e.classifyRaw(ctx, userQuery)
	if err != nil {
		logger.Warn("Classification failed, degrading to UNKNOWN", zap.Error(err))
		return model.DefaultClassification()
	}
	return classify.Extract(raw)
}

func (e *Engine) classifyRaw(ctx context.Context, userQuery string) (string, error) {
	key := utils.HashString(userQuery)

	if e.cache != nil {
		if raw, ok := e.cache.GetClassification(ctx, key); ok {
			metrics.CacheHits.WithLabelValues("classification").Inc()
			return raw, nil
		}
		metrics.CacheMisses.WithLabelValues("classification").Inc()
	}

	raw, err := e.classifier.Classify(ctx, userQuery)
	if err != nil {
		return "", err
	}

	if e.cache != nil {
		e.cache.SetClassification(ctx, key, raw)
	}

	return raw, nil
}

func rangeDataMap(rangeData map[string]sensordata.RangeResult) map[string]interface{} {
	out := make(map[string]interface{}, len(rangeData))
	for nodeID, result := range rangeData {
		out[nodeID] = result
	}
	return out
}
