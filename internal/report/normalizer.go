package report

import (
	"strconv"
	"time"

	"github.com/verilens/verilens/internal/classify"
	"github.com/verilens/verilens/internal/models"
)

// FailedReasoning is substituted when the classifier supplied no reasoning.
const FailedReasoning = "Analysis failed."

// Normalizer converts an untrusted raw classification payload into a fully
// populated ForensicReport. Aside from the generated id and timestamp it is
// deterministic: identical inputs produce identical reports.
type Normalizer struct {
	now func() time.Time
}

func NewNormalizer() *Normalizer {
	return &Normalizer{now: time.Now}
}

// NewNormalizerWithClock injects the time source, for tests.
func NewNormalizerWithClock(now func() time.Time) *Normalizer {
	return &Normalizer{now: now}
}

// Normalize builds the report for one run. Missing optional fields become
// type-correct defaults; nothing is left unset. Numeric values from the
// payload pass through without range validation.
func (n *Normalizer) Normalize(raw classify.RawPayload, file models.SourceFile, kind models.MediaKind, hash string) models.ForensicReport {
	now := n.now()

	rep := models.ForensicReport{
		ID:                       strconv.FormatInt(now.UnixNano(), 36),
		FileName:                 file.Name,
		FileType:                 kind,
		Timestamp:                now.UTC().Format(time.RFC3339),
		FileHash:                 hash,
		AuthenticityScore:        0,
		IsManipulated:            false,
		ManipulationType:         []string{},
		EnsembleData:             []models.ModelConsensus{},
		SemanticMismatchDetected: false,
		SemanticAnalysisText:     "",
		Reasoning:                FailedReasoning,
		SuspiciousRegions:        []models.SuspiciousRegion{},
		Metadata:                 map[string]string{},
	}

	if raw.AuthenticityScore != nil {
		rep.AuthenticityScore = *raw.AuthenticityScore
	}
	if raw.IsManipulated != nil {
		rep.IsManipulated = *raw.IsManipulated
	}
	if raw.ManipulationType != nil {
		rep.ManipulationType = append(rep.ManipulationType, raw.ManipulationType...)
	}
	for _, c := range raw.EnsembleData {
		rep.EnsembleData = append(rep.EnsembleData, models.ModelConsensus{
			ModelName:  c.ModelName,
			Score:      c.Score,
			Confidence: c.Confidence,
			FocusArea:  c.FocusArea,
		})
	}
	if raw.SemanticMismatchDetected != nil {
		rep.SemanticMismatchDetected = *raw.SemanticMismatchDetected
	}
	if raw.SemanticAnalysisText != nil {
		rep.SemanticAnalysisText = *raw.SemanticAnalysisText
	}
	if raw.Reasoning != nil {
		rep.Reasoning = *raw.Reasoning
	}
	for _, r := range raw.SuspiciousRegions {
		rep.SuspiciousRegions = append(rep.SuspiciousRegions, models.SuspiciousRegion{
			X:          r.X,
			Y:          r.Y,
			Width:      r.Width,
			Height:     r.Height,
			Label:      r.Label,
			Confidence: r.Confidence,
		})
	}
	for k, v := range raw.Metadata {
		rep.Metadata[k] = v
	}

	// Computed entries win over whatever the classifier claimed.
	rep.Metadata["originalSize"] = models.FormatSizeMB(file.Size)
	rep.Metadata["mimeType"] = file.ContentType

	return rep
}
