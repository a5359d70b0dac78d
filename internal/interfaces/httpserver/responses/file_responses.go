package responses

import (
	"time"

	"vision-chat/server/internal/domain/file"
)

// FileResponse is the wire shape of stored file metadata.
type FileResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name,omitempty"`
	Description *string   `json:"description,omitempty"`
	MimeType    string    `json:"mime_type"`
	Kind        string    `json:"kind"`
	SizeBytes   int64     `json:"size_bytes"`
	URL         string    `json:"url"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// FileListResponse wraps a file listing.
type FileListResponse struct {
	Object string         `json:"object"`
	Data   []FileResponse `json:"data"`
}

// MapFileToResponse converts a domain file.
func MapFileToResponse(f *file.File) FileResponse {
	return FileResponse{
		ID:          f.PublicID,
		Name:        f.Name,
		Description: f.Description,
		MimeType:    f.MimeType,
		Kind:        string(f.Kind),
		SizeBytes:   f.SizeBytes,
		URL:         f.URL,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
}

// MapFilesToListResponse converts a file slice.
func MapFilesToListResponse(files []file.File) FileListResponse {
	out := FileListResponse{Object: "list", Data: make([]FileResponse, 0, len(files))}
	for i := range files {
		out.Data = append(out.Data, MapFileToResponse(&files[i]))
	}
	return out
}
