package model

// Classification labels produced by the classifier. The two GENERIC forms
// are distinct upstream labels and must not be collapsed before response
// generation selects a template.
const (
	ClassSpecific         = "SPECIFIC"
	ClassGeneric          = "GENERIC"
	ClassGenericInference = "GENERIC WITH PARAMETER INFERENCE"
	ClassLivingLab        = "LIVING_LAB"
	ClassAverage          = "AVERAGE"
	ClassNodeStatus       = "NODE_STATUS"
	ClassUnknown          = "UNKNOWN"
)

// ClassificationResult is the structured record recovered from the
// classifier's raw output. NodeIDs is never nil and TimePeriod is nil
// unless IsTemporal is true.
type ClassificationResult struct {
	Classification string   `json:"classification"`
	NodeIDs        []string `json:"node_ids"`
	IsTemporal     bool     `json:"is_temporal"`
	TimePeriod     *string  `json:"time_period"`
}

// DefaultClassification returns the record used when nothing could be
// recovered from the classifier output.
func DefaultClassification() ClassificationResult {
	return ClassificationResult{
		Classification: ClassUnknown,
		NodeIDs:        []string{},
		IsTemporal:     false,
		TimePeriod:     nil,
	}
}

// QueryResult is the full answer for one user query. It is built once per
// request and discarded; nothing in it is shared across requests.
type QueryResult struct {
	Classification string                 `json:"classification"`
	NodeIDs        []string               `json:"node_ids"`
	NodeData       map[string]interface{} `json:"node_data"`
	Response       string                 `json:"response"`
	IsTemporal     bool                   `json:"is_temporal"`
	TimePeriod     *string                `json:"time_period"`
	TodaysData     map[string]interface{} `json:"todays_data,omitempty"`
	Parameter      string                 `json:"parameter,omitempty"`
}

// DebugResult mirrors the /debug endpoint payload: every intermediate
// pipeline artifact for one query.
type DebugResult struct {
	Query                     string                 `json:"query"`
	RawClassificationResponse string                 `json:"raw_classification_response"`
	ParsedResponse            ClassificationResult   `json:"parsed_response"`
	RegexTemporalDetection    TemporalDetection      `json:"regex_temporal_detection"`
	NodeData                  map[string]interface{} `json:"node_data"`
	TodaysData                map[string]interface{} `json:"todays_data"`
	Statistics                map[string]interface{} `json:"statistics,omitempty"`
	IsTemporal                bool                   `json:"is_temporal"`
	TimePeriod                *string                `json:"time_period"`
}

// TemporalDetection is the output of the regex temporal pass.
type TemporalDetection struct {
	IsTemporal bool    `json:"is_temporal"`
	TimePeriod *string `json:"time_period"`
}
