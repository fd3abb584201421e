package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hyperjump/rentassist/internal/config"
	"github.com/hyperjump/rentassist/internal/models"
	"github.com/hyperjump/rentassist/pkg/utils"
	openai "github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/openai/openai-go/v2/shared"
	"go.uber.org/zap"
)

// ErrEmptyReply is returned when the service answers without any choice.
var ErrEmptyReply = errors.New("generation returned no choices")

// OpenAIGenerator calls an OpenAI-compatible chat completions endpoint.
type OpenAIGenerator struct {
	client      openai.Client
	model       string
	temperature float64
	timeout     time.Duration
	logger      *zap.Logger
}

// OpenAIOption configures an OpenAIGenerator.
type OpenAIOption func(*openAIOptions)

type openAIOptions struct {
	logger     *zap.Logger
	maxRetries int
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) OpenAIOption {
	return func(o *openAIOptions) { o.logger = l }
}

// WithMaxRetries sets how often a failed request is retried.
func WithMaxRetries(n int) OpenAIOption {
	return func(o *openAIOptions) { o.maxRetries = n }
}

// NewOpenAIGenerator creates a generator from the generation config.
func NewOpenAIGenerator(cfg config.GenerationConfig, opts ...OpenAIOption) *OpenAIGenerator {
	o := openAIOptions{maxRetries: 1}
	for _, opt := range opts {
		opt(&o)
	}
	reqOpts := []option.RequestOption{
		option.WithAPIKey(cfg.ResolveAPIKey()),
		option.WithMaxRetries(o.maxRetries),
	}
	if cfg.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.BaseURL))
	}
	return &OpenAIGenerator{
		client:      openai.NewClient(reqOpts...),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		timeout:     cfg.Timeout(),
		logger:      utils.OrNop(o.logger),
	}
}

// Generate sends the system prompt, history and message as one completion
// request and returns the first choice.
func (g *OpenAIGenerator) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.History)+2)
	if req.System != "" {
		messages = append(messages, openai.SystemMessage(req.System))
	}
	for _, m := range req.History {
		if strings.TrimSpace(m.Content) == "" {
			continue
		}
		if m.Role == models.RoleModel {
			messages = append(messages, openai.AssistantMessage(m.Content))
		} else {
			messages = append(messages, openai.UserMessage(m.Content))
		}
	}
	messages = append(messages, openai.UserMessage(req.Message))

	start := time.Now()
	resp, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages:    messages,
		Model:       shared.ChatModel(g.model),
		Temperature: openai.Float(g.temperature),
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyReply
	}
	g.logger.Debug("generation finished",
		zap.String("model", g.model),
		zap.Int("messages", len(messages)),
		zap.Duration("took", time.Since(start)))
	return resp.Choices[0].Message.Content, nil
}
