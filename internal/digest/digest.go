package digest

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Service computes a content-addressed hash of a byte blob. Identical input
// must always produce identical output.
type Service interface {
	Digest(data []byte) (string, error)
}

// SHA256Service is the production digest implementation.
type SHA256Service struct{}

func NewSHA256Service() *SHA256Service {
	return &SHA256Service{}
}

func (s *SHA256Service) Digest(data []byte) (string, error) {
	if data == nil {
		return "", fmt.Errorf("no data to digest")
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
