package file

import (
	"strings"
	"time"
)

// Kind classifies a stored file for projection purposes.
type Kind string

const (
	KindImage Kind = "image"
	KindOther Kind = "other"
)

// KindFromMime derives the file kind from a detected MIME type.
func KindFromMime(mime string) Kind {
	if strings.HasPrefix(mime, "image/") {
		return KindImage
	}
	return KindOther
}

// File represents stored file metadata. The blob itself lives in the
// configured storage backend under StorageKey.
type File struct {
	ID          uint      `json:"-"`
	PublicID    string    `json:"id"`
	Name        string    `json:"name,omitempty"`
	Description *string   `json:"description,omitempty"`
	MimeType    string    `json:"mime_type"`
	Kind        Kind      `json:"kind"`
	SizeBytes   int64     `json:"size_bytes"`
	StorageKey  string    `json:"-"`
	URL         string    `json:"url"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// UploadRequest carries the payload for storing a new file.
type UploadRequest struct {
	Name        string
	Description *string
	Data        []byte
}

// UpdateRequest carries the mutable metadata fields of a file.
type UpdateRequest struct {
	Name        *string
	Description *string
}
