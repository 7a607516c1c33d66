package classify

import (
	"context"

	"github.com/verilens/verilens/internal/models"
)

// Service submits media bytes to an external classifier and returns its raw,
// untrusted verdict. Transport and API failures are returned as errors;
// unparseable response bodies are not, they decode to an empty payload.
type Service interface {
	Classify(ctx context.Context, data []byte, kind models.MediaKind, claim models.ContextClaim) (RawPayload, error)
}
