package ai

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/zhouzirui/objectchat/backend/internal/config"
)

// vertexProvider runs completions through Vertex AI (Gemini).
type vertexProvider struct {
	client    *genai.Client
	modelName string
}

func newVertexProvider(ctx context.Context, cfg config.AIConfig) (*vertexProvider, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Project:  cfg.GCPProject,
		Location: cfg.GCPLocation,
		Backend:  genai.BackendVertexAI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating vertex client: %w", err)
	}

	return &vertexProvider{client: client, modelName: cfg.Model}, nil
}

func (v *vertexProvider) Complete(ctx context.Context, prompt string, p Params) (string, error) {
	temperature := p.Temperature
	topP := p.TopP

	genCfg := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		TopP:            &topP,
		MaxOutputTokens: int32(p.MaxTokens),
	}

	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}

	res, err := v.client.Models.GenerateContent(ctx, v.modelName, contents, genCfg)
	if err != nil {
		return "", fmt.Errorf("vertex generate content: %w", err)
	}

	text := res.Text()
	if text == "" {
		return "", fmt.Errorf("vertex returned empty text")
	}
	return text, nil
}
