package classify

import (
	"encoding/json"
	"strings"
)

// RawPayload is the loosely-typed structure returned by the classification
// service. Every field is optional: the service may omit anything, so
// presence is tracked with pointers and nilable slices. Consumers must not
// trust field presence or numeric range.
type RawPayload struct {
	AuthenticityScore        *float64          `json:"authenticityScore"`
	IsManipulated            *bool             `json:"isManipulated"`
	ManipulationType         []string          `json:"manipulationType"`
	EnsembleData             []RawConsensus    `json:"ensembleData"`
	SemanticMismatchDetected *bool             `json:"semanticMismatchDetected"`
	SemanticAnalysisText     *string           `json:"semanticAnalysisText"`
	Reasoning                *string           `json:"reasoning"`
	SuspiciousRegions        []RawRegion       `json:"suspiciousRegions"`
	Metadata                 map[string]string `json:"metadata"`
}

// RawConsensus mirrors one ensemble verdict as the service shapes it.
type RawConsensus struct {
	ModelName  string  `json:"modelName"`
	Score      float64 `json:"score"`
	Confidence string  `json:"confidence"`
	FocusArea  string  `json:"focusArea"`
}

// RawRegion mirrors one suspicious region as the service shapes it.
type RawRegion struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// DecodePayload parses classifier output into a RawPayload. Models wrap JSON
// in markdown fences or surrounding prose often enough that we extract the
// outermost object before unmarshalling. Malformed JSON yields an empty
// payload rather than an error; the normalizer's defaults take over from
// there.
func DecodePayload(data []byte) RawPayload {
	var payload RawPayload
	text := extractJSONObject(string(data))
	if text == "" {
		return RawPayload{}
	}
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		return RawPayload{}
	}
	return payload
}

func extractJSONObject(text string) string {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end < start {
		return ""
	}
	return text[start : end+1]
}
