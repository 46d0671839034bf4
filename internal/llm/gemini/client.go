package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"visibility-backend/internal/llm"
)

// Client implements llm.Client on the Gemini generative API.
type Client struct {
	apiKey   string
	model    string
	jsonMode bool
}

// NewClient constructs a Gemini client.
func NewClient(apiKey, model string, jsonMode bool) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("GEMINI_API_KEY is required")
	}
	if strings.TrimSpace(model) == "" {
		return nil, errors.New("LLM_MODEL is required for Gemini")
	}
	return &Client{
		apiKey:   strings.TrimSpace(apiKey),
		model:    strings.TrimSpace(model),
		jsonMode: jsonMode,
	}, nil
}

// Complete issues a single GenerateContent call and returns the first text part.
func (c *Client) Complete(ctx context.Context, in llm.CompletionRequest) (string, error) {
	cl, err := genai.NewClient(ctx, option.WithAPIKey(c.apiKey))
	if err != nil {
		return "", fmt.Errorf("gemini client: %w", err)
	}
	defer cl.Close()

	model := c.model
	if strings.TrimSpace(in.Model) != "" {
		model = strings.TrimSpace(in.Model)
	}
	m := cl.GenerativeModel(model)
	if m == nil {
		return "", fmt.Errorf("gemini: model is nil")
	}
	m.GenerationConfig = generationConfig(in, c.jsonMode)
	if strings.TrimSpace(in.System) != "" {
		m.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(in.System)},
		}
	}

	resp, err := m.GenerateContent(ctx, genai.Text(in.User))
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	txt := strings.TrimSpace(firstText(resp))
	if txt == "" {
		return "", fmt.Errorf("gemini: empty response")
	}
	return txt, nil
}

func generationConfig(in llm.CompletionRequest, jsonMode bool) genai.GenerationConfig {
	cfg := genai.GenerationConfig{
		Temperature: ptrFloat32(in.Temperature),
	}
	if in.MaxTokens > 0 {
		cfg.MaxOutputTokens = ptrInt32(int32(in.MaxTokens))
	}
	if in.JSONMode || jsonMode {
		cfg.ResponseMIMEType = "application/json"
	}
	return cfg
}

func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	for _, c := range resp.Candidates {
		if c.Content == nil {
			continue
		}
		for _, p := range c.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				return string(t)
			}
		}
	}
	return ""
}

func ptrFloat32(v float32) *float32 { return &v }

func ptrInt32(v int32) *int32 { return &v }
