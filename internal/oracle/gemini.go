package oracle

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/genai"
)

// GeminiRenamer implements Renamer using the Gemini API.
type GeminiRenamer struct {
	client        *genai.Client
	model         string
	promptBuilder *PromptBuilder
	limiter       *throttle
}

func NewGeminiRenamer(ctx context.Context, apiKey string, modelName string) (*GeminiRenamer, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return &GeminiRenamer{
		client:        client,
		model:         modelName,
		promptBuilder: &PromptBuilder{},
		limiter:       &throttle{min: 500 * time.Millisecond},
	}, nil
}

func (g *GeminiRenamer) ProposeName(ctx context.Context, identifier string, codeContext string) (string, error) {
	if err := g.limiter.wait(ctx); err != nil {
		return "", err
	}

	prompt := g.promptBuilder.BuildRenamePrompt(identifier, codeContext)
	contents := genai.Text(prompt)
	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("gemini request for %s failed: %w", identifier, err)
	}

	name := cleanProposal(resp.Text())
	if name == "" {
		return "", fmt.Errorf("gemini returned no usable name for %s", identifier)
	}
	return name, nil
}
