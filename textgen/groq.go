package textgen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const defaultGroqURL = "https://api.groq.com/openai/v1/chat/completions"

// GroqProvider calls the Groq OpenAI-compatible chat completion API.
type GroqProvider struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// NewGroqProvider builds the hosted low-cost provider. An empty apiKey
// yields a provider that reports itself unavailable.
func NewGroqProvider(apiKey, model string) *GroqProvider {
	return &GroqProvider{
		apiKey:     apiKey,
		model:      model,
		baseURL:    defaultGroqURL,
		httpClient: &http.Client{Timeout: callTimeout},
	}
}

func (p *GroqProvider) Name() string { return "groq" }

func (p *GroqProvider) Available(_ context.Context) bool { return p.apiKey != "" }

type groqRequest struct {
	Model          string          `json:"model"`
	Messages       []groqMessage   `json:"messages"`
	Temperature    float64         `json:"temperature"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type groqMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type groqResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (p *GroqProvider) Generate(ctx context.Context, prompt string, opts Options) (string, error) {
	system := "You are a helpful AI assistant."
	var format *responseFormat
	if opts.JSONMode {
		system = "You are a helpful AI assistant. Output ONLY valid JSON. Do not include markdown code blocks."
		format = &responseFormat{Type: "json_object"}
	}

	reqBody := groqRequest{
		Model: p.model,
		Messages: []groqMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: prompt},
		},
		Temperature:    opts.Temperature,
		ResponseFormat: format,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal groq request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("groq request: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	if resp.StatusCode != http.StatusOK {
		return "", &StatusError{Provider: "groq", Code: resp.StatusCode, Body: truncate(string(respBytes), 200)}
	}

	var parsed groqResponse
	if err := json.Unmarshal(respBytes, &parsed); err != nil {
		return "", fmt.Errorf("parse groq response: %w", err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("groq error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("groq returned no choices")
	}

	return parsed.Choices[0].Message.Content, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
