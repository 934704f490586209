package agent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/genai"

	"github.com/amosWeiskopf/reportsmith/internal/config"
)

// ErrNoAPIKey is returned when no Gemini API key is configured
var ErrNoAPIKey = errors.New("gemini API key not set (GEMINI_API_KEY)")

const defaultModel = "gemini-2.0-flash"

// Completer sends a prompt to a language model and returns its raw reply
type Completer interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// GeminiCompleter implements Completer with the Gemini API in JSON mode
type GeminiCompleter struct {
	client      *genai.Client
	model       string
	temperature float32
	timeout     time.Duration
}

var _ Completer = (*GeminiCompleter)(nil)

// NewGemini creates a Gemini client from the agent configuration
func NewGemini(ctx context.Context, cfg config.AgentConfig) (*GeminiCompleter, error) {
	if cfg.APIKey == "" {
		return nil, ErrNoAPIKey
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	return &GeminiCompleter{
		client:      client,
		model:       model,
		temperature: float32(cfg.Temperature),
		timeout:     cfg.Timeout,
	}, nil
}

// Complete runs one generateContent call and returns the reply text
func (g *GeminiCompleter) Complete(ctx context.Context, system, prompt string) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	cfg := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(g.temperature),
		ResponseMIMEType: "application/json",
	}
	if system != "" {
		cfg.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: system}},
		}
	}

	result, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), cfg)
	if err != nil {
		return "", fmt.Errorf("gemini generation failed: %w", err)
	}
	return result.Text(), nil
}
