package ai

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/zhouzirui/objectchat/backend/internal/config"
)

// arkProvider runs completions through an Ark-hosted chat model via eino.
type arkProvider struct {
	chatModel model.ChatModel
}

func newArkProvider(ctx context.Context, cfg config.AIConfig) (*arkProvider, error) {
	chatModel, err := ark.NewChatModel(ctx, &ark.ChatModelConfig{
		BaseURL:   cfg.BaseURL,
		Region:    cfg.Region,
		APIKey:    cfg.APIKey,
		AccessKey: cfg.AccessKey,
		SecretKey: cfg.SecretKey,
		Model:     cfg.Model,
	})
	if err != nil {
		return nil, fmt.Errorf("creating ark chat model: %w", err)
	}
	return &arkProvider{chatModel: chatModel}, nil
}

func (a *arkProvider) Complete(ctx context.Context, prompt string, p Params) (string, error) {
	messages := []*schema.Message{schema.UserMessage(prompt)}

	response, err := a.chatModel.Generate(ctx, messages,
		model.WithTemperature(p.Temperature),
		model.WithMaxTokens(p.MaxTokens),
		model.WithTopP(p.TopP),
	)
	if err != nil {
		return "", fmt.Errorf("ark generate: %w", err)
	}
	return response.Content, nil
}
