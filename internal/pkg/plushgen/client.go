package plushgen

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/plushify/plushify/internal/pkg/env"
)

// ErrNoImage is returned when the model answered without producing an image.
var ErrNoImage = errors.New("model response contains no image")

// GeneratedImage is the decoded output of one model call.
type GeneratedImage struct {
	Data      []byte
	MediaType string
}

// Generator is the remote generative-model capability. The call must respect
// the context deadline; the orchestrator bounds it with the configured
// generation timeout.
type Generator interface {
	Generate(ctx context.Context, image []byte, mimeType, prompt string) (*GeneratedImage, error)
}

// Client calls an OpenRouter-compatible chat completions API with image
// output modality enabled.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

// NewClient builds a client from environment configuration.
func NewClient() *Client {
	return &Client{
		apiKey:  env.GetEnv("OPENROUTER_API_KEY", ""),
		baseURL: strings.TrimRight(env.GetEnv("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1"), "/"),
		model:   env.GetEnv("GENERATION_MODEL", "google/gemini-2.5-flash-image"),
		// No client-level timeout: the per-request context carries the deadline
		httpClient: &http.Client{},
	}
}

type chatRequest struct {
	Model      string        `json:"model"`
	Modalities []string      `json:"modalities"`
	Messages   []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string        `json:"role"`
	Content []contentPart `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Images []struct {
				Type     string   `json:"type"`
				ImageURL imageURL `json:"image_url"`
			} `json:"images"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Generate sends the source image plus prompt and returns the first image
// in the response. A well-formed response without any image yields ErrNoImage.
func (c *Client) Generate(ctx context.Context, image []byte, mimeType, prompt string) (*GeneratedImage, error) {
	payload := chatRequest{
		Model:      c.model,
		Modalities: []string{"image", "text"},
		Messages: []chatMessage{
			{
				Role: "user",
				Content: []contentPart{
					{Type: "image_url", ImageURL: &imageURL{URL: encodeDataURL(image, mimeType)}},
					{Type: "text", Text: prompt},
				},
			},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post chat completions: %w", err)
	}
	defer resp.Body.Close()

	rawBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("model call failed with status %d: %s", resp.StatusCode, truncate(rawBody, 512))
	}

	var parsed chatResponse
	if err := json.Unmarshal(rawBody, &parsed); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if parsed.Error != nil {
		return nil, fmt.Errorf("model error: %s", parsed.Error.Message)
	}

	for _, choice := range parsed.Choices {
		for _, img := range choice.Message.Images {
			out, err := decodeDataURL(img.ImageURL.URL)
			if err != nil {
				continue
			}
			return out, nil
		}
	}

	return nil, ErrNoImage
}

func encodeDataURL(data []byte, mimeType string) string {
	return fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(data))
}

func decodeDataURL(url string) (*GeneratedImage, error) {
	if !strings.HasPrefix(url, "data:") {
		return nil, fmt.Errorf("not a data url")
	}
	meta, b64, found := strings.Cut(strings.TrimPrefix(url, "data:"), ",")
	if !found {
		return nil, fmt.Errorf("malformed data url")
	}
	mediaType := strings.TrimSuffix(meta, ";base64")
	if !strings.HasPrefix(mediaType, "image/") {
		return nil, fmt.Errorf("data url is not an image: %s", mediaType)
	}
	data, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, fmt.Errorf("decode image payload: %w", err)
	}
	return &GeneratedImage{Data: data, MediaType: mediaType}, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
