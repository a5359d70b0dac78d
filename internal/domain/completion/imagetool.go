package completion

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"vision-chat/server/internal/domain/file"
	"vision-chat/server/internal/domain/llm"
	"vision-chat/server/internal/infrastructure/metrics"
	"vision-chat/server/internal/utils/platformerrors"
)

// ToolNameGenerateImage is the function name exposed to the model.
const ToolNameGenerateImage = "generateImage"

// FileStore persists generated images as first-class files.
type FileStore interface {
	Upload(ctx context.Context, req file.UploadRequest) (*file.File, error)
}

// ImageTool generates an image for a prompt, stores it through the file
// service and returns the resulting URL.
type ImageTool struct {
	generator llm.ImageGenerator
	files     FileStore
	log       zerolog.Logger
}

func NewImageTool(generator llm.ImageGenerator, files FileStore, log zerolog.Logger) *ImageTool {
	return &ImageTool{
		generator: generator,
		files:     files,
		log:       log.With().Str("component", "image-tool").Logger(),
	}
}

// Definition returns the tool schema advertised to the provider.
func (t *ImageTool) Definition() llm.ToolDefinition {
	return llm.ToolDefinition{
		Type: "function",
		Function: llm.ToolFunction{
			Name:        ToolNameGenerateImage,
			Description: "Given a prompt, generates an image and returns the image URL",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"prompt": map[string]any{
						"type":        "string",
						"description": "The prompt to generate an image",
					},
				},
				"required": []string{"prompt"},
			},
		},
	}
}

// Invoke runs the tool for a raw JSON argument payload and returns the URL of
// the stored image.
func (t *ImageTool) Invoke(ctx context.Context, arguments string) (string, error) {
	var args struct {
		Prompt string `json:"prompt"`
	}
	if err := json.Unmarshal([]byte(arguments), &args); err != nil {
		return "", platformerrors.NewError(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeValidation, "invalid image tool arguments", err,
			"7b1e2d3c-4f5a-6b7c-8d9e-0f1a2b3c4d5e")
	}
	if strings.TrimSpace(args.Prompt) == "" {
		return "", platformerrors.NewError(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeValidation, "image tool requires a prompt", nil,
			"9c8b7a6d-5e4f-3a2b-1c0d-e9f8a7b6c5d4")
	}

	t.log.Debug().Str("prompt", args.Prompt).Msg("generating image")

	data, _, err := t.generator.GenerateImage(ctx, args.Prompt)
	if err != nil {
		metrics.RecordImageGeneration("error")
		return "", platformerrors.NewError(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeProvider,
			fmt.Sprintf("image generation failed for prompt %q", args.Prompt), err,
			"2d4f6a8c-1b3e-5d7f-9a0c-b2d4e6f8a0c1")
	}

	f, err := t.files.Upload(ctx, file.UploadRequest{
		Name: "generated-image",
		Data: data,
	})
	if err != nil {
		metrics.RecordImageGeneration("error")
		return "", err
	}
	metrics.RecordImageGeneration("success")

	t.log.Info().
		Str("file_id", f.PublicID).
		Str("prompt", args.Prompt).
		Msg("image generated and stored")
	return f.URL, nil
}
