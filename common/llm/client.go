package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Client drafts issue Markdown from a free-form description.
type Client interface {
	// Generate streams the draft, calling onIncrement with the full text
	// accumulated so far after every event that added content.
	Generate(ctx context.Context, req GenerateRequest, onIncrement IncrementFunc) (*GenerateResult, error)
	// Complete performs the same request without streaming.
	Complete(ctx context.Context, req GenerateRequest) (string, error)
	Model() string
}

type GenerateRequest struct {
	Description string
	ImageCount  int
}

type GenerateResult struct {
	Content       string
	Frames        int // SSE events received
	SkippedFrames int // malformed envelopes tolerated
}

// IncrementFunc receives the full text generated so far, never a delta.
type IncrementFunc func(content string)

type Config struct {
	APIKey      string
	BaseURL     string // Optional: OpenAI-compatible endpoint root, e.g. https://api.siliconflow.cn/v1
	Model       string
	Temperature *float64 // nil = 0.7
	MaxTokens   int      // 0 = 2000
}

type client struct {
	openai      openai.Client
	model       string
	temperature float64
	maxTokens   int
}

func New(cfg Config, opts ...option.RequestOption) (Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(strings.TrimSuffix(cfg.BaseURL, "/")+"/"))
	}
	reqOpts = append(reqOpts, opts...)

	model := cfg.Model
	if model == "" {
		model = "deepseek-ai/DeepSeek-V3"
	}

	temperature := 0.7
	if cfg.Temperature != nil {
		temperature = *cfg.Temperature
	}

	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = 2000
	}

	return &client{
		openai:      openai.NewClient(reqOpts...),
		model:       model,
		temperature: temperature,
		maxTokens:   maxTokens,
	}, nil
}

func (c *client) Model() string {
	return c.model
}

func (c *client) params(req GenerateRequest) openai.ChatCompletionNewParams {
	return openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(SystemPrompt),
			openai.UserMessage(BuildUserMessage(req.Description, req.ImageCount)),
		},
		Temperature: openai.Float(c.temperature),
		MaxTokens:   openai.Int(int64(c.maxTokens)),
	}
}

func (c *client) Complete(ctx context.Context, req GenerateRequest) (string, error) {
	start := time.Now()
	resp, err := c.openai.Chat.Completions.New(ctx, c.params(req))
	if err != nil {
		return "", toRequestFailed(err)
	}

	slog.DebugContext(ctx, "llm completion finished",
		"model", c.model,
		"duration_ms", time.Since(start).Milliseconds(),
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens)

	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

func Temp(t float64) *float64 {
	return &t
}
