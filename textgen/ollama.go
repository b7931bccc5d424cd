package textgen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	ollamaTextModel   = "llama3.2"
	ollamaVisionModel = "llava:7b-v1.6"
	ollamaProbePath   = "/api/tags"
)

// OllamaProvider is the local provider: free and fast when a daemon is
// running, skipped entirely when it is not. It is also the only provider
// that accepts an image payload for image-grounded generation.
type OllamaProvider struct {
	host       string
	httpClient *http.Client
}

func NewOllamaProvider(host string) *OllamaProvider {
	return &OllamaProvider{
		host:       strings.TrimRight(host, "/"),
		httpClient: &http.Client{Timeout: callTimeout},
	}
}

func (p *OllamaProvider) Name() string { return "ollama" }

// Available probes the daemon's tags endpoint with a short timeout. The
// cascade caches the answer for the rest of the process.
func (p *OllamaProvider) Available(ctx context.Context) bool {
	if p.host == "" {
		return false
	}

	probeCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(probeCtx, http.MethodGet, p.host+ollamaProbePath, nil)
	if err != nil {
		return false
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

type ollamaRequest struct {
	Model   string        `json:"model"`
	Prompt  string        `json:"prompt"`
	Images  []string      `json:"images,omitempty"`
	Stream  bool          `json:"stream"`
	Format  string        `json:"format,omitempty"`
	Options ollamaOptions `json:"options"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature"`
}

type ollamaResponse struct {
	Response string `json:"response"`
}

func (p *OllamaProvider) Generate(ctx context.Context, prompt string, opts Options) (string, error) {
	format := ""
	if opts.JSONMode {
		format = "json"
	}
	return p.call(ctx, ollamaRequest{
		Model:   ollamaTextModel,
		Prompt:  prompt,
		Stream:  false,
		Format:  format,
		Options: ollamaOptions{Temperature: opts.Temperature},
	})
}

// GenerateWithImage runs the vision model over a base64-encoded image. Any
// data-URI prefix is stripped before sending.
func (p *OllamaProvider) GenerateWithImage(ctx context.Context, prompt, imageBase64 string) (string, error) {
	if idx := strings.Index(imageBase64, ";base64,"); idx >= 0 {
		imageBase64 = imageBase64[idx+len(";base64,"):]
	}
	return p.call(ctx, ollamaRequest{
		Model:   ollamaVisionModel,
		Prompt:  prompt,
		Images:  []string{imageBase64},
		Stream:  false,
		Options: ollamaOptions{Temperature: 0.5},
	})
}

func (p *OllamaProvider) call(ctx context.Context, reqBody ollamaRequest) (string, error) {
	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal ollama request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.host+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("ollama request: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	if resp.StatusCode != http.StatusOK {
		return "", &StatusError{Provider: "ollama", Code: resp.StatusCode, Body: truncate(string(respBytes), 200)}
	}

	var parsed ollamaResponse
	if err := json.Unmarshal(respBytes, &parsed); err != nil {
		return "", fmt.Errorf("parse ollama response: %w", err)
	}
	if parsed.Response == "" {
		return "", fmt.Errorf("ollama returned empty response")
	}

	return parsed.Response, nil
}
