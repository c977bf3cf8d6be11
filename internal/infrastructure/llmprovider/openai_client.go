package llmprovider

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"

	"github.com/JAlbertoAlonso/kopi-chatbot/internal/domain/conversation"
	"github.com/JAlbertoAlonso/kopi-chatbot/internal/domain/llm"
	"github.com/JAlbertoAlonso/kopi-chatbot/internal/infrastructure/metrics"
	"github.com/JAlbertoAlonso/kopi-chatbot/internal/infrastructure/observability"
	"github.com/JAlbertoAlonso/kopi-chatbot/internal/utils/platformerrors"
)

const detectionInstruction = `Classify the user's opening message for a debate. Respond with a JSON object ` +
	`with exactly two string fields: "topic", a short lowercase phrase naming the debate subject, and ` +
	`"stance", a short phrase describing the user's position on it. Use "general" and "neutral" when ` +
	`the message does not take a position.`

// Config controls the OpenAI-backed provider.
type Config struct {
	APIKey      string
	Model       string
	Timeout     time.Duration
	Temperature float32
	MaxTokens   int
}

// Client implements llm.Provider on top of the OpenAI chat completions API.
type Client struct {
	api *openai.Client
	cfg Config
	log zerolog.Logger
}

// NewClient builds an OpenAI provider client.
func NewClient(cfg Config, log zerolog.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 300
	}
	return &Client{
		api: openai.NewClient(cfg.APIKey),
		cfg: cfg,
		log: log.With().Str("component", "llmprovider").Logger(),
	}
}

// Complete sends the system instruction plus history and returns the reply.
func (c *Client) Complete(ctx context.Context, system string, history []conversation.Turn) (string, error) {
	ctx, span := observability.StartModelSpan(ctx, c.cfg.Model, "complete")
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	messages := make([]openai.ChatCompletionMessage, 0, len(history)+1)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: system,
	})
	for _, turn := range history {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    string(turn.Role),
			Content: turn.Message,
		})
	}

	start := time.Now()
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.cfg.Model,
		Messages:    messages,
		Temperature: c.cfg.Temperature,
		MaxTokens:   c.cfg.MaxTokens,
	})
	if err != nil {
		metrics.RecordModelCall(c.cfg.Model, "complete", "error", time.Since(start).Seconds())
		observability.RecordError(span, err)
		return "", c.wrapModelError(ctx, err, "chat completion failed")
	}
	metrics.RecordModelCall(c.cfg.Model, "complete", "ok", time.Since(start).Seconds())

	if len(resp.Choices) == 0 {
		return "", platformerrors.NewError(
			ctx,
			platformerrors.LayerInfrastructure,
			platformerrors.ErrorTypeExternal,
			"model returned no choices",
			nil,
			"1b5e7c8d-9f0a-4b1c-e4cd-3f4a5b6c7d8e",
		)
	}
	return resp.Choices[0].Message.Content, nil
}

// DetectTopicStance asks the model for a structured topic/stance reading of
// the first user message.
func (c *Client) DetectTopicStance(ctx context.Context, message string) (llm.TopicStance, error) {
	ctx, span := observability.StartModelSpan(ctx, c.cfg.Model, "detect")
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	start := time.Now()
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.cfg.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: detectionInstruction},
			{Role: openai.ChatMessageRoleUser, Content: message},
		},
		Temperature: 0,
		MaxTokens:   60,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		metrics.RecordModelCall(c.cfg.Model, "detect", "error", time.Since(start).Seconds())
		observability.RecordError(span, err)
		return llm.TopicStance{}, c.wrapModelError(ctx, err, "topic/stance detection failed")
	}
	metrics.RecordModelCall(c.cfg.Model, "detect", "ok", time.Since(start).Seconds())

	if len(resp.Choices) == 0 {
		return llm.TopicStance{}, platformerrors.NewError(
			ctx,
			platformerrors.LayerInfrastructure,
			platformerrors.ErrorTypeExternal,
			"detection returned no choices",
			nil,
			"2c6f8d9e-0a1b-4c2d-f5de-4a5b6c7d8e9f",
		)
	}

	ts, err := parseTopicStance(resp.Choices[0].Message.Content)
	if err != nil {
		observability.RecordError(span, err)
		return llm.TopicStance{}, platformerrors.NewError(
			ctx,
			platformerrors.LayerInfrastructure,
			platformerrors.ErrorTypeExternal,
			"detection returned malformed payload",
			err,
			"3d7a9e0f-1b2c-4d3e-a6ef-5b6c7d8e9f0a",
		)
	}
	return ts, nil
}

// parseTopicStance decodes the structured detection payload. Whitespace-only
// fields come back blank so callers can fall back to the defaults.
func parseTopicStance(raw string) (llm.TopicStance, error) {
	var ts llm.TopicStance
	if err := json.Unmarshal([]byte(raw), &ts); err != nil {
		return llm.TopicStance{}, err
	}
	ts.Topic = strings.TrimSpace(ts.Topic)
	ts.Stance = strings.TrimSpace(ts.Stance)
	return ts, nil
}

func (c *Client) wrapModelError(ctx context.Context, err error, message string) error {
	errorType := platformerrors.ErrorTypeExternal
	if errors.Is(err, context.DeadlineExceeded) {
		errorType = platformerrors.ErrorTypeTimeout
	}
	return platformerrors.NewError(
		ctx,
		platformerrors.LayerInfrastructure,
		errorType,
		message,
		err,
		"4e8b0f1a-2c3d-4e4f-b7fa-6c7d8e9f0a1b",
	)
}
