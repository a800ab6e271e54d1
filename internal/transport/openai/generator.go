package openai

import (
	"context"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/Dayende-ib/guichet/internal/domain"
	"github.com/Dayende-ib/guichet/internal/domain/search/result"
	"github.com/Dayende-ib/guichet/internal/metrics"
)

// Generator produces grounded French answers via an OpenAI-compatible
// chat-completion API.
type Generator struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
	logger      *zap.Logger
}

// GeneratorConfig holds the generation provider settings.
type GeneratorConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	MaxTokens   int
	Logger      *zap.Logger
}

// NewGenerator creates an OpenAI-compatible chat-completion generator.
func NewGenerator(cfg *GeneratorConfig) *Generator {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = cfg.BaseURL

	return &Generator{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		temperature: float32(cfg.Temperature),
		maxTokens:   cfg.MaxTokens,
		logger:      cfg.Logger,
	}
}

const systemPrompt = "Vous êtes un assistant administratif burkinabè. " +
	"Répondez en français de manière claire et concise."

// Generate builds the citation prompt from the ranked documents and asks
// the model for an answer.
func (g *Generator) Generate(ctx context.Context, question string, docs []result.Result) (string, error) {
	prompt := buildPrompt(question, docs)

	req := openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: g.temperature,
		MaxTokens:   g.maxTokens,
	}

	start := time.Now()

	resp, err := g.client.CreateChatCompletion(ctx, req)

	duration := time.Since(start)

	if err != nil {
		metrics.GenerationRequestsTotal.WithLabelValues(g.model, "error").Inc()
		return "", parseAPIError("generation", err)
	}

	if len(resp.Choices) == 0 {
		metrics.GenerationRequestsTotal.WithLabelValues(g.model, "error").Inc()
		return "", fmt.Errorf("empty completion response: %w", domain.ErrModelUnavailable)
	}

	metrics.GenerationRequestsTotal.WithLabelValues(g.model, "success").Inc()
	metrics.GenerationRequestDuration.WithLabelValues(g.model).Observe(duration.Seconds())

	g.logger.Debug("Generation request completed",
		zap.String("model", g.model),
		zap.Duration("duration", duration),
		zap.Int("context_docs", len(docs)),
		zap.Int("total_tokens", resp.Usage.TotalTokens),
	)

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// buildPrompt frames the question with the retrieved context and the
// citation instructions.
func buildPrompt(question string, docs []result.Result) string {
	blocks := make([]string, 0, len(docs))
	for _, d := range docs {
		p := d.Procedure()
		blocks = append(blocks, fmt.Sprintf(
			"Titre: %s\nDescription: %s\nSource: %s", p.Titre(), p.Description(), p.URL()))
	}
	context := strings.Join(blocks, "\n\n")

	return fmt.Sprintf(`Question: %s

Contexte:
%s

Instructions:
1. Répondez uniquement en français
2. Citez obligatoirement les sources en les mentionnant à la fin de votre réponse
3. Soyez concis et direct dans votre réponse
4. Si le contexte ne contient pas d'informations pertinentes, indiquez-le clairement

Réponse:`, question, context)
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (g *Generator) HealthCheck(ctx context.Context) error {
	if _, err := g.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w: %w", domain.ErrModelUnavailable, err)
	}
	return nil
}
