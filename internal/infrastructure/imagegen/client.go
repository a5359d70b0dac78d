package imagegen

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"vision-chat/server/internal/config"
	"vision-chat/server/internal/domain/llm"
)

// Client talks to an OpenAI-compatible image generation endpoint and returns
// raw image bytes. The MIME type is detected from the payload since the API
// does not report it.
type Client struct {
	httpClient *resty.Client
	model      string
	log        zerolog.Logger
}

// NewClient creates an image generation client.
func NewClient(cfg *config.Config, log zerolog.Logger) *Client {
	httpClient := resty.New().
		SetBaseURL(cfg.LLMBaseURL).
		SetHeader("Content-Type", "application/json").
		SetTimeout(cfg.ImageTimeout)
	if cfg.LLMAPIKey != "" {
		httpClient.SetHeader("Authorization", "Bearer "+cfg.LLMAPIKey)
	}
	return &Client{
		httpClient: httpClient,
		model:      cfg.ImageModel,
		log:        log.With().Str("component", "imagegen").Logger(),
	}
}

type generationRequest struct {
	Model          string `json:"model"`
	Prompt         string `json:"prompt"`
	N              int    `json:"n"`
	ResponseFormat string `json:"response_format"`
}

type generationResponse struct {
	Data []struct {
		B64JSON string `json:"b64_json"`
	} `json:"data"`
}

// GenerateImage produces one image for the prompt.
func (c *Client) GenerateImage(ctx context.Context, prompt string) ([]byte, string, error) {
	var result generationResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(generationRequest{
			Model:          c.model,
			Prompt:         prompt,
			N:              1,
			ResponseFormat: "b64_json",
		}).
		SetResult(&result).
		Post("/v1/images/generations")
	if err != nil {
		return nil, "", err
	}
	if resp.IsError() {
		return nil, "", fmt.Errorf("image api error: %s", resp.String())
	}
	if len(result.Data) == 0 || result.Data[0].B64JSON == "" {
		return nil, "", fmt.Errorf("image api returned no image data")
	}

	data, err := base64.StdEncoding.DecodeString(result.Data[0].B64JSON)
	if err != nil {
		return nil, "", fmt.Errorf("decode image payload: %w", err)
	}

	mime := mimetype.Detect(data).String()
	c.log.Debug().
		Str("model", c.model).
		Str("mime_type", mime).
		Int("bytes", len(data)).
		Msg("image generated")
	return data, mime, nil
}

// Ensure interface compliance.
var _ llm.ImageGenerator = (*Client)(nil)
