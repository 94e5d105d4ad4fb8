package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/openai/openai-go"
)

// RequestFailedError is returned when the completion endpoint is unreachable,
// answers with a non-2xx status, or the stream breaks mid-way.
type RequestFailedError struct {
	StatusCode int    // 0 when no HTTP response was received
	Message    string // server-provided message when present
	Err        error
}

func (e *RequestFailedError) Error() string {
	if e.Message != "" {
		return "completion request failed: " + e.Message
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("completion request failed: %d", e.StatusCode)
	}
	if e.Err != nil {
		return "completion request failed: " + e.Err.Error()
	}
	return "completion request failed"
}

func (e *RequestFailedError) Unwrap() error {
	return e.Err
}

func toRequestFailed(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		msg := messageFromResponse(apiErr.Response)
		if msg == "" {
			msg = apiErr.Message
		}
		return &RequestFailedError{StatusCode: apiErr.StatusCode, Message: msg, Err: err}
	}
	return &RequestFailedError{Err: err}
}

// messageFromResponse accepts both {"message": "..."} and the OpenAI
// {"error": {"message": "..."}} shapes.
func messageFromResponse(res *http.Response) string {
	if res == nil || res.Body == nil {
		return ""
	}
	body, err := io.ReadAll(io.LimitReader(res.Body, 64<<10))
	if err != nil || len(body) == 0 {
		return ""
	}
	return messageFromBody(body)
}

func messageFromBody(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if payload.Message != "" {
		return payload.Message
	}
	if payload.Error != nil {
		return payload.Error.Message
	}
	return ""
}
