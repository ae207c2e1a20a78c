// Package llm provides text generation over langchaingo with
// state-derived sampling parameters and tiered model selection.
package llm

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/bedrock"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/anima-ai/anima/internal/config"
	"github.com/anima-ai/anima/internal/models"
)

// Generator wraps a langchaingo model and applies a GenerationConfig to
// every call: sampling parameters plus the tier's model name.
type Generator struct {
	llm            llms.Model
	baseModel      string
	escalatedModel string
	timeout        time.Duration
	logger         *slog.Logger
}

// NewGenerator creates a generator for the configured provider. The
// context is only used for provider setup (AWS config resolution).
func NewGenerator(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Generator, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var model llms.Model
	var err error

	switch cfg.LLMProvider {
	case config.ProviderOllama:
		model, err = ollama.New(
			ollama.WithModel(cfg.BaseModel),
			ollama.WithServerURL(cfg.OllamaHost),
		)
		if err != nil {
			return nil, fmt.Errorf("create ollama model: %w", err)
		}

	case config.ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OpenAI API key required")
		}
		model, err = openai.New(
			openai.WithToken(cfg.OpenAIAPIKey),
			openai.WithModel(cfg.BaseModel),
		)
		if err != nil {
			return nil, fmt.Errorf("create openai model: %w", err)
		}

	case config.ProviderAnthropic:
		if cfg.AnthropicAPIKey == "" {
			return nil, fmt.Errorf("Anthropic API key required")
		}
		model, err = anthropic.New(
			anthropic.WithToken(cfg.AnthropicAPIKey),
			anthropic.WithModel(cfg.BaseModel),
		)
		if err != nil {
			return nil, fmt.Errorf("create anthropic model: %w", err)
		}

	case config.ProviderBedrock:
		awsCfg, awsErr := awsconfig.LoadDefaultConfig(ctx,
			awsconfig.WithRegion(cfg.BedrockRegion),
		)
		if awsErr != nil {
			return nil, fmt.Errorf("load aws config: %w", awsErr)
		}
		model, err = bedrock.New(
			bedrock.WithClient(bedrockruntime.NewFromConfig(awsCfg)),
			bedrock.WithModel(cfg.BaseModel),
		)
		if err != nil {
			return nil, fmt.Errorf("create bedrock model: %w", err)
		}

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.LLMProvider)
	}

	return &Generator{
		llm:            model,
		baseModel:      cfg.BaseModel,
		escalatedModel: cfg.EscalatedModel,
		timeout:        cfg.GenerateTimeout,
		logger:         logger,
	}, nil
}

// ModelFor resolves the model name of a tier.
func (g *Generator) ModelFor(tier models.ModelTier) string {
	if tier == models.TierEscalated {
		return g.escalatedModel
	}
	return g.baseModel
}

// Generate produces a completion for a single prompt under the given
// sampling configuration.
func (g *Generator) Generate(ctx context.Context, prompt string, cfg models.GenerationConfig) (string, error) {
	return g.GenerateWithSystem(ctx, "", prompt, cfg)
}

// GenerateWithSystem produces a completion with an optional system
// prompt. Errors are classified; quota and credential problems also
// match ErrFatalAPI.
func (g *Generator) GenerateWithSystem(ctx context.Context, systemPrompt, userPrompt string, cfg models.GenerationConfig) (string, error) {
	messages := make([]llms.MessageContent, 0, 2)
	if systemPrompt != "" {
		messages = append(messages, llms.TextParts(llms.ChatMessageTypeSystem, systemPrompt))
	}
	messages = append(messages, llms.TextParts(llms.ChatMessageTypeHuman, userPrompt))

	modelName := g.ModelFor(cfg.Tier)
	opts := []llms.CallOption{
		llms.WithModel(modelName),
		llms.WithTemperature(cfg.Temperature),
		llms.WithTopP(cfg.TopP),
		llms.WithFrequencyPenalty(cfg.FrequencyPenalty),
		llms.WithPresencePenalty(cfg.PresencePenalty),
	}

	callCtx := ctx
	if g.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	g.logger.Debug("generating",
		"model", modelName,
		"tier", cfg.Tier,
		"temperature", cfg.Temperature,
		"top_p", cfg.TopP,
	)

	start := time.Now()
	response, err := g.llm.GenerateContent(callCtx, messages, opts...)
	duration := time.Since(start)

	if err != nil {
		g.logger.Warn("generation failed",
			"model", modelName,
			"duration_ms", duration.Milliseconds(),
			"error", err,
		)
		return "", wrapGenerationError(err)
	}

	if len(response.Choices) == 0 {
		return "", wrapGenerationError(fmt.Errorf("no response choices"))
	}

	g.logger.Debug("generation complete",
		"model", modelName,
		"duration_ms", duration.Milliseconds(),
	)
	return response.Choices[0].Content, nil
}
