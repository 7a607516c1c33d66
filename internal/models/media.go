package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MediaKind is the declared category of an uploaded file, derived once from
// its content type at selection time.
type MediaKind string

const (
	MediaKindImage   MediaKind = "IMAGE"
	MediaKindVideo   MediaKind = "VIDEO"
	MediaKindAudio   MediaKind = "AUDIO"
	MediaKindUnknown MediaKind = "UNKNOWN"
)

// MediaKindFromContentType maps a declared MIME type to a MediaKind by prefix.
func MediaKindFromContentType(contentType string) MediaKind {
	switch {
	case strings.HasPrefix(contentType, "image"):
		return MediaKindImage
	case strings.HasPrefix(contentType, "video"):
		return MediaKindVideo
	case strings.HasPrefix(contentType, "audio"):
		return MediaKindAudio
	default:
		return MediaKindUnknown
	}
}

// SourceFile is the in-memory media file fed into the analysis pipeline.
type SourceFile struct {
	Name        string
	ContentType string
	Size        int64
	Data        []byte
}

// ContextClaim is the free-text claim accompanying a file. An empty claim the
// user explicitly provided is distinct from no claim at all, so presence is
// tracked alongside the text.
type ContextClaim struct {
	Text     string
	Provided bool
}

// NewContextClaim returns a provided claim, including the empty string.
func NewContextClaim(text string) ContextClaim {
	return ContextClaim{Text: text, Provided: true}
}

// MediaFile is the persisted record of an uploaded file.
type MediaFile struct {
	ID           string
	OriginalName string
	StoredName   string
	ContentType  string
	Size         int64
	Claim        ContextClaim
	UploadTime   time.Time
}

func NewMediaFile(originalName, storedName, contentType string, size int64, claim ContextClaim) *MediaFile {
	return &MediaFile{
		ID:           uuid.New().String(),
		OriginalName: originalName,
		StoredName:   storedName,
		ContentType:  contentType,
		Size:         size,
		Claim:        claim,
		UploadTime:   time.Now(),
	}
}

// FormatSizeMB renders a byte count in megabytes with two decimals,
// e.g. 2097152 -> "2.00 MB".
func FormatSizeMB(size int64) string {
	const mb = 1024 * 1024
	return fmt.Sprintf("%.2f MB", float64(size)/float64(mb))
}
