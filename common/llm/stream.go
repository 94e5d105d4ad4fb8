package llm

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/ssestream"
)

const doneSentinel = "[DONE]"

func (c *client) Generate(ctx context.Context, req GenerateRequest, onIncrement IncrementFunc) (*GenerateResult, error) {
	start := time.Now()

	// Post with a **http.Response destination leaves the body unread so the
	// stream can be decoded here instead of by the SDK's strict decoder.
	var res *http.Response
	err := c.openai.Post(ctx, "chat/completions", c.params(req), &res,
		option.WithJSONSet("stream", true),
	)
	if err != nil {
		return nil, toRequestFailed(err)
	}
	if res == nil || res.Body == nil {
		return nil, &RequestFailedError{Message: "empty response"}
	}

	// Some OpenAI-compatible servers ignore stream=true and answer in one piece.
	if isJSON(res.Header.Get("Content-Type")) {
		return c.decodeWhole(ctx, res, onIncrement)
	}

	decoder := ssestream.NewDecoder(res)
	defer decoder.Close()

	acc := &Accumulator{}
	for decoder.Next() {
		if acc.Feed(decoder.Event().Data) && onIncrement != nil {
			onIncrement(acc.Content())
		}
	}
	if err := decoder.Err(); err != nil {
		return nil, &RequestFailedError{StatusCode: res.StatusCode, Err: err}
	}

	result := acc.Result()
	slog.DebugContext(ctx, "llm stream finished",
		"model", c.model,
		"duration_ms", time.Since(start).Milliseconds(),
		"frames", result.Frames,
		"skipped_frames", result.SkippedFrames,
		"chars", len(result.Content))

	if result.SkippedFrames > 0 {
		slog.WarnContext(ctx, "llm stream had malformed frames", "skipped_frames", result.SkippedFrames)
	}

	return result, nil
}

func (c *client) decodeWhole(ctx context.Context, res *http.Response, onIncrement IncrementFunc) (*GenerateResult, error) {
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, &RequestFailedError{StatusCode: res.StatusCode, Err: err}
	}

	var completion openai.ChatCompletion
	if err := completion.UnmarshalJSON(body); err != nil {
		return nil, &RequestFailedError{StatusCode: res.StatusCode, Message: "malformed completion response", Err: err}
	}

	content := ""
	if len(completion.Choices) > 0 {
		content = completion.Choices[0].Message.Content
	}
	if content != "" && onIncrement != nil {
		onIncrement(content)
	}

	slog.DebugContext(ctx, "llm answered without streaming", "model", c.model)
	return &GenerateResult{Content: content, Frames: 1}, nil
}

func isJSON(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	return err == nil && mt == "application/json"
}

// Accumulator folds SSE event payloads into the growing draft. Fragments are
// appended in arrival order with no reordering or de-duplication. Payloads
// that are not valid chunk envelopes are counted and skipped.
type Accumulator struct {
	buf     strings.Builder
	frames  int
	skipped int
}

// Feed consumes one event payload, which may hold several lines, and reports
// whether it added text.
func (a *Accumulator) Feed(data []byte) bool {
	a.frames++
	grew := false

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if rest, ok := strings.CutPrefix(line, "data:"); ok {
			line = strings.TrimSpace(rest)
		}
		if line == "" || line == doneSentinel {
			continue
		}

		if !json.Valid([]byte(line)) {
			a.skipped++
			continue
		}
		var chunk openai.ChatCompletionChunk
		if err := chunk.UnmarshalJSON([]byte(line)); err != nil {
			a.skipped++
			continue
		}
		if len(chunk.Choices) == 0 {
			continue
		}
		if fragment := chunk.Choices[0].Delta.Content; fragment != "" {
			a.buf.WriteString(fragment)
			grew = true
		}
	}

	return grew
}

func (a *Accumulator) Content() string {
	return a.buf.String()
}

func (a *Accumulator) Skipped() int {
	return a.skipped
}

func (a *Accumulator) Result() *GenerateResult {
	return &GenerateResult{
		Content:       a.buf.String(),
		Frames:        a.frames,
		SkippedFrames: a.skipped,
	}
}
