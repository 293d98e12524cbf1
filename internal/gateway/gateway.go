// Package gateway assembles the model request for each conversation turn
// and calls the configured chat models: the primary tier first, then one
// sequential fallback attempt with a smaller context budget when the
// primary fails. Transport errors never reach the caller; both tiers
// failing surfaces as ErrServiceUnavailable.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/claude"
	"github.com/cloudwego/eino-ext/components/model/gemini"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"google.golang.org/genai"

	"docuchat/internal/config"
	"docuchat/internal/models"
)

// ErrServiceUnavailable is the single user-facing failure of Ask.
var ErrServiceUnavailable = errors.New("ai service is temporarily unavailable")

const systemPrompt = "You are a helpful document assistant. Users upload documents and ask " +
	"questions about them. Answer based on the provided document context when it is " +
	"available, be concise, and use simple markdown (headings, bold, lists) where it " +
	"helps readability. If the answer is not in the document, say so instead of guessing."

// ChatModel is the narrow surface the gateway needs from an eino chat model.
type ChatModel interface {
	Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error)
}

type Gateway struct {
	primary     ChatModel
	fallback    ChatModel
	primaryCfg  config.ModelTier
	fallbackCfg config.ModelTier
}

// New constructs the gateway with both model tiers built from configuration.
func New(cfg *config.Config) (*Gateway, error) {
	primary, err := newChatModel(cfg, cfg.Gateway.Primary)
	if err != nil {
		return nil, fmt.Errorf("init primary model: %w", err)
	}
	fallback, err := newChatModel(cfg, cfg.Gateway.Fallback)
	if err != nil {
		return nil, fmt.Errorf("init fallback model: %w", err)
	}
	return newGateway(primary, fallback, cfg.Gateway), nil
}

func newGateway(primary, fallback ChatModel, cfg config.GatewayConfig) *Gateway {
	return &Gateway{
		primary:     primary,
		fallback:    fallback,
		primaryCfg:  cfg.Primary,
		fallbackCfg: cfg.Fallback,
	}
}

func newChatModel(cfg *config.Config, tier config.ModelTier) (ChatModel, error) {
	provCfg, ok := cfg.Providers[tier.Provider]
	if !ok {
		return nil, fmt.Errorf("provider %s not configured", tier.Provider)
	}
	ctx := context.Background()

	switch tier.Provider {
	case "openai":
		maxTokens := tier.MaxTokens
		temperature := tier.Temperature
		topP := tier.TopP
		frequencyPenalty := tier.FrequencyPenalty
		presencePenalty := tier.PresencePenalty
		return openai.NewChatModel(ctx, &openai.ChatModelConfig{
			BaseURL:          provCfg.BaseURL,
			APIKey:           provCfg.APIKey,
			Model:            tier.Model,
			MaxTokens:        &maxTokens,
			Temperature:      &temperature,
			TopP:             &topP,
			FrequencyPenalty: &frequencyPenalty,
			PresencePenalty:  &presencePenalty,
			Timeout:          tier.Timeout(),
		})
	case "gemini":
		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey: provCfg.APIKey,
		})
		if err != nil {
			return nil, fmt.Errorf("init gemini client: %w", err)
		}
		maxTokens := tier.MaxTokens
		temperature := tier.Temperature
		topP := tier.TopP
		return gemini.NewChatModel(ctx, &gemini.Config{
			Client:      client,
			Model:       tier.Model,
			MaxTokens:   &maxTokens,
			Temperature: &temperature,
			TopP:        &topP,
		})
	case "claude":
		var baseURLPtr *string
		if provCfg.BaseURL != "" {
			baseURLPtr = &provCfg.BaseURL
		}
		temperature := tier.Temperature
		topP := tier.TopP
		return claude.NewChatModel(ctx, &claude.Config{
			APIKey:      provCfg.APIKey,
			Model:       tier.Model,
			BaseURL:     baseURLPtr,
			MaxTokens:   tier.MaxTokens,
			Temperature: &temperature,
			TopP:        &topP,
		})
	default:
		return nil, fmt.Errorf("invalid provider: %s", tier.Provider)
	}
}

// Ask sends the question with trimmed history and truncated document
// context to the primary model, falling back once to the secondary tier.
// history is the conversation before this turn; docText may be empty.
func (g *Gateway) Ask(ctx context.Context, question string, history []*models.Message, docText string) (string, error) {
	reply, err := g.attempt(ctx, g.primary, g.primaryCfg, question, history, docText)
	if err == nil {
		return reply, nil
	}
	log.Printf("primary model %s failed, trying fallback: %v", g.primaryCfg.Model, err)

	reply, err = g.attempt(ctx, g.fallback, g.fallbackCfg, question, history, docText)
	if err != nil {
		log.Printf("fallback model %s failed: %v", g.fallbackCfg.Model, err)
		return "", ErrServiceUnavailable
	}
	return reply, nil
}

func (g *Gateway) attempt(ctx context.Context, chatModel ChatModel, tier config.ModelTier, question string, history []*models.Message, docText string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, tier.Timeout())
	defer cancel()

	resp, err := chatModel.Generate(callCtx, buildMessages(tier, question, history, docText))
	if err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}
	if resp == nil {
		return "", errors.New("nil model response")
	}
	reply := strings.TrimSpace(resp.Content)
	if reply == "" {
		return "", errors.New("empty model response")
	}
	return reply, nil
}

// buildMessages produces the outbound context window: fixed system
// instructions, the tier's tail of the history in original order, and one
// user turn carrying the (budgeted) document context plus the question.
func buildMessages(tier config.ModelTier, question string, history []*models.Message, docText string) []*schema.Message {
	trimmed := history
	if len(trimmed) > tier.HistoryLimit {
		trimmed = trimmed[len(trimmed)-tier.HistoryLimit:]
	}

	messages := make([]*schema.Message, 0, len(trimmed)+2)
	messages = append(messages, &schema.Message{
		Role:    schema.System,
		Content: systemPrompt,
	})
	for _, msg := range trimmed {
		role := schema.User
		if msg.Role == models.RoleAssistant {
			role = schema.Assistant
		}
		messages = append(messages, &schema.Message{
			Role:    role,
			Content: msg.Content,
		})
	}

	content := question
	if docText != "" {
		content = "Document Context:\n" + truncateRunes(docText, tier.DocumentChars) +
			"\n\nUser Question:\n" + question
	}
	return append(messages, &schema.Message{
		Role:    schema.User,
		Content: content,
	})
}

func truncateRunes(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
