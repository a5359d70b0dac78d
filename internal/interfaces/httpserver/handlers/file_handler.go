package handlers

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"vision-chat/server/internal/domain/file"
	"vision-chat/server/internal/infrastructure/metrics"
	"vision-chat/server/internal/interfaces/httpserver/requests"
	"vision-chat/server/internal/interfaces/httpserver/responses"
	"vision-chat/server/internal/utils/platformerrors"
)

// FileService is the surface of the file domain the handler needs.
type FileService interface {
	Upload(ctx context.Context, req file.UploadRequest) (*file.File, error)
	Get(ctx context.Context, publicID string) (*file.File, error)
	List(ctx context.Context) ([]file.File, error)
	Update(ctx context.Context, publicID string, req file.UpdateRequest) (*file.File, error)
	Delete(ctx context.Context, publicID string) error
	Download(ctx context.Context, publicID string) (io.ReadCloser, *file.File, error)
}

// FileHandler exposes HTTP entrypoints for file upload and retrieval.
type FileHandler struct {
	service FileService
	log     zerolog.Logger
}

// NewFileHandler constructs the handler.
func NewFileHandler(service FileService, log zerolog.Logger) *FileHandler {
	return &FileHandler{
		service: service,
		log:     log.With().Str("handler", "file").Logger(),
	}
}

// Upload handles POST /v1/files as multipart form data. The MIME type and
// kind are derived on the server from the uploaded bytes.
func (h *FileHandler) Upload(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation,
			"multipart field 'file' is required", "1c3e5a7b-9d0f-4a2c-4e6a-8b0d2f4a6c8e")
		return
	}

	src, err := header.Open()
	if err != nil {
		responses.HandleError(c, err, "failed to read upload")
		return
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		responses.HandleError(c, err, "failed to read upload")
		return
	}

	name := c.PostForm("name")
	if name == "" {
		name = header.Filename
	}
	var description *string
	if d := c.PostForm("description"); d != "" {
		description = &d
	}

	stored, err := h.service.Upload(c.Request.Context(), file.UploadRequest{
		Name:        name,
		Description: description,
		Data:        data,
	})
	if err != nil {
		metrics.RecordFileUpload("unknown", "error")
		responses.HandleError(c, err, "failed to store file")
		return
	}

	metrics.RecordFileUpload(string(stored.Kind), "success")
	c.JSON(http.StatusCreated, responses.MapFileToResponse(stored))
}

// List handles GET /v1/files
func (h *FileHandler) List(c *gin.Context) {
	files, err := h.service.List(c.Request.Context())
	if err != nil {
		responses.HandleError(c, err, "failed to list files")
		return
	}
	c.JSON(http.StatusOK, responses.MapFilesToListResponse(files))
}

// Get handles GET /v1/files/:file_id
func (h *FileHandler) Get(c *gin.Context) {
	found, err := h.service.Get(c.Request.Context(), c.Param("file_id"))
	if err != nil {
		responses.HandleError(c, err, "failed to get file")
		return
	}
	c.JSON(http.StatusOK, responses.MapFileToResponse(found))
}

// Update handles PATCH /v1/files/:file_id
func (h *FileHandler) Update(c *gin.Context) {
	var req requests.UpdateFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation,
			"invalid file payload", "3e5a7b9d-0f1a-4c4e-6a8b-0d2f4a6c8e0a")
		return
	}

	updated, err := h.service.Update(c.Request.Context(), c.Param("file_id"), file.UpdateRequest{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		responses.HandleError(c, err, "failed to update file")
		return
	}
	c.JSON(http.StatusOK, responses.MapFileToResponse(updated))
}

// Delete handles DELETE /v1/files/:file_id
func (h *FileHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("file_id")); err != nil {
		responses.HandleError(c, err, "failed to delete file")
		return
	}
	c.Status(http.StatusNoContent)
}

// Download handles GET /v1/files/:file_id/download
func (h *FileHandler) Download(c *gin.Context) {
	rc, meta, err := h.service.Download(c.Request.Context(), c.Param("file_id"))
	if err != nil {
		responses.HandleError(c, err, "failed to download file")
		return
	}
	defer rc.Close()

	c.Header("Content-Type", meta.MimeType)
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, rc); err != nil {
		h.log.Warn().Err(err).Str("file_id", meta.PublicID).Msg("download stream interrupted")
	}
}
