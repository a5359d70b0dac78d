package requests

// UpdateFileRequest patches file metadata.
type UpdateFileRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}
