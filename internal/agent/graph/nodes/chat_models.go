package nodes

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/gemini"
	"google.golang.org/genai"

	"github.com/landover-agents/server/internal/agent/model"
	logx "github.com/landover-agents/server/pkg/logger"
)

// ChatModelConfig holds the configuration for chat model creation
type ChatModelConfig struct {
	APIKey         string
	BaseURL        string
	ResolverConfig *model.ResolverModelConfig
	ComposerConfig *model.ComposerModelConfig
}

// ChatModels holds the resolver and composer chat models plus the shared
// genai client, which the embedder reuses.
type ChatModels struct {
	Resolver          *gemini.ChatModel
	Composer          *gemini.ChatModel
	ResolverModelName string
	ComposerModelName string
	Client            *genai.Client
}

// NewChatModels creates both resolver and composer chat models with the given configuration
func NewChatModels(ctx context.Context, config ChatModelConfig) (*ChatModels, error) {

	clientCfg := &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if config.BaseURL != "" {
		clientCfg.HTTPOptions.BaseURL = config.BaseURL
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		logx.Error().Err(err).Msg("Error creating Gemini client")
		return nil, fmt.Errorf("error creating Gemini client: %w", err)
	}

	// Create resolver chat model
	chatModelResolver, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client:      client,
		Model:       config.ResolverConfig.Model,
		Temperature: &config.ResolverConfig.Temperature,
		MaxTokens:   &config.ResolverConfig.MaxTokens,
		ThinkingConfig: &genai.ThinkingConfig{
			IncludeThoughts: true,
			ThinkingBudget:  genai.Ptr(int32(2000)),
		},
	})
	if err != nil {
		logx.Error().Err(err).Msg("Error creating resolver model")
		return nil, fmt.Errorf("error creating resolver model: %w", err)
	}

	// Create composer chat model
	chatModelComposer, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client:      client,
		Model:       config.ComposerConfig.Model,
		Temperature: &config.ComposerConfig.Temperature,
		MaxTokens:   &config.ComposerConfig.MaxTokens,
		ThinkingConfig: &genai.ThinkingConfig{
			IncludeThoughts: true,
			ThinkingBudget:  genai.Ptr(int32(2000)),
		},
	})
	if err != nil {
		logx.Error().Err(err).Msg("Error creating composer model")
		return nil, fmt.Errorf("error creating composer model: %w", err)
	}

	return &ChatModels{
		Resolver:          chatModelResolver,
		Composer:          chatModelComposer,
		ResolverModelName: config.ResolverConfig.Model,
		ComposerModelName: config.ComposerConfig.Model,
		Client:            client,
	}, nil
}
