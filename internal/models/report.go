package models

// ModelConsensus is one sub-model verdict inside a report's ensemble data.
// Collection order is the order returned by the classification service.
type ModelConsensus struct {
	ModelName  string  `json:"modelName"`
	Score      float64 `json:"score"`
	Confidence string  `json:"confidence"`
	FocusArea  string  `json:"focusArea"`
}

// SuspiciousRegion is a rectangle flagged by the classifier, in percentage
// coordinates (0..100) anchored at the top-left corner.
type SuspiciousRegion struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// ForensicReport is the immutable artifact of one completed analysis run.
// Every field is populated: the normalizer substitutes type-correct defaults
// for anything the classification service omitted, so a published report is
// never partial.
type ForensicReport struct {
	ID                       string             `json:"id"`
	FileName                 string             `json:"fileName"`
	FileType                 MediaKind          `json:"fileType"`
	Timestamp                string             `json:"timestamp"`
	FileHash                 string             `json:"fileHash"`
	AuthenticityScore        float64            `json:"authenticityScore"`
	IsManipulated            bool               `json:"isManipulated"`
	ManipulationType         []string           `json:"manipulationType"`
	EnsembleData             []ModelConsensus   `json:"ensembleData"`
	SemanticMismatchDetected bool               `json:"semanticMismatchDetected"`
	SemanticAnalysisText     string             `json:"semanticAnalysisText"`
	Reasoning                string             `json:"reasoning"`
	SuspiciousRegions        []SuspiciousRegion `json:"suspiciousRegions"`
	Metadata                 map[string]string  `json:"metadata"`
}
