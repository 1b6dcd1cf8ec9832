package oracle

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

// OllamaRenamer implements Renamer against a local Ollama server. Local
// inference is slow but not rate limited, so no throttle is applied.
type OllamaRenamer struct {
	client        *http.Client
	model         string
	endpoint      string
	promptBuilder *PromptBuilder
}

type ollamaGenerateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type ollamaGenerateResponse struct {
	Response string `json:"response"`
}

func NewOllamaRenamer(model, baseURL string) *OllamaRenamer {
	url := strings.TrimSpace(baseURL)
	if url == "" {
		url = "http://127.0.0.1:11434"
	}
	url = strings.TrimRight(url, "/")
	if !strings.HasSuffix(url, "/api/generate") {
		url += "/api/generate"
	}

	return &OllamaRenamer{
		client: &http.Client{
			Timeout: 5 * time.Minute,
		},
		model:         model,
		endpoint:      url,
		promptBuilder: &PromptBuilder{},
	}
}

func (o *OllamaRenamer) ProposeName(ctx context.Context, identifier string, codeContext string) (string, error) {
	if strings.TrimSpace(o.model) == "" {
		return "", fmt.Errorf("ollama model is required")
	}

	reqBody := ollamaGenerateRequest{
		Model:  o.model,
		Prompt: o.promptBuilder.BuildRenamePrompt(identifier, codeContext),
		Stream: false,
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("ollama request for %s failed: %w", identifier, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("ollama generate request failed (%d): %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var parsed ollamaGenerateResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", err
	}
	name := cleanProposal(parsed.Response)
	if name == "" {
		return "", fmt.Errorf("ollama returned no usable name for %s", identifier)
	}
	return name, nil
}
