package platformerrors_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"vision-chat/server/internal/utils/platformerrors"
)

func newTestContext(t *testing.T) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c, rec
}

func decodeErrorBody(t *testing.T, rec *httptest.ResponseRecorder) platformerrors.HTTPError {
	t.Helper()
	var body platformerrors.HTTPError
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return body
}

func TestWriteError_PlatformError(t *testing.T) {
	c, rec := newTestContext(t)

	err := platformerrors.NewError(context.Background(), platformerrors.LayerDomain,
		platformerrors.ErrorTypeNotFound, "chat not found", nil, "code-123")
	platformerrors.WriteError(c, err, "failed to get chat")

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if !c.IsAborted() {
		t.Fatal("expected request to be aborted")
	}

	body := decodeErrorBody(t, rec)
	if body.Error != "failed to get chat" {
		t.Errorf("unexpected error field: %q", body.Error)
	}
	if body.Message != "chat not found" {
		t.Errorf("unexpected message field: %q", body.Message)
	}
	if body.Code != "code-123" {
		t.Errorf("unexpected code field: %q", body.Code)
	}
}

func TestWriteError_WrappedPlatformError(t *testing.T) {
	c, rec := newTestContext(t)

	inner := platformerrors.NewError(context.Background(), platformerrors.LayerRepository,
		platformerrors.ErrorTypeValidation, "bad input", nil, "code-456")
	platformerrors.WriteError(c, errors.Join(errors.New("outer"), inner), "failed to create chat")

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if body := decodeErrorBody(t, rec); body.Code != "code-456" {
		t.Errorf("unexpected code field: %q", body.Code)
	}
}

func TestWriteError_PlainError(t *testing.T) {
	c, rec := newTestContext(t)

	platformerrors.WriteError(c, errors.New("boom"), "something went wrong")

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if body := decodeErrorBody(t, rec); body.Error != "something went wrong" {
		t.Errorf("unexpected error field: %q", body.Error)
	}
}

func TestWriteUnauthorized(t *testing.T) {
	c, rec := newTestContext(t)

	platformerrors.WriteUnauthorized(c, "missing bearer token")

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if !c.IsAborted() {
		t.Fatal("expected request to be aborted")
	}

	body := decodeErrorBody(t, rec)
	if body.Error != "unauthorized" {
		t.Errorf("unexpected error field: %q", body.Error)
	}
	if body.Message != "missing bearer token" {
		t.Errorf("unexpected message field: %q", body.Message)
	}
}
