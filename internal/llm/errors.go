package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/sashabaranov/go-openai"
)

// GenerationError reports a failed chat-completion call. Retryable is true
// for rate limits and transient server/transport faults; authentication and
// request-validation failures are terminal.
type GenerationError struct {
	StatusCode int
	Message    string
	Retryable  bool
	Err        error
}

func (e *GenerationError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("generation failed (HTTP %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("generation failed: %s", e.Message)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// IsRetryableGeneration reports whether err is a retryable GenerationError.
func IsRetryableGeneration(err error) bool {
	var genErr *GenerationError
	return errors.As(err, &genErr) && genErr.Retryable
}

// classifyError converts a go-openai error into a GenerationError with
// retry guidance. Status codes decide: 429 and 5xx are retryable, other
// 4xx (auth, validation) are not. Transport failures are treated as
// transient; context cancellation is terminal.
func classifyError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return &GenerationError{Message: err.Error(), Retryable: false, Err: err}
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &GenerationError{
			StatusCode: apiErr.HTTPStatusCode,
			Message:    apiErr.Message,
			Retryable:  retryableStatus(apiErr.HTTPStatusCode),
			Err:        err,
		}
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &GenerationError{
			StatusCode: reqErr.HTTPStatusCode,
			Message:    reqErr.Error(),
			Retryable:  retryableStatus(reqErr.HTTPStatusCode),
			Err:        err,
		}
	}

	// Untyped errors are transport-level (connection refused, EOF, DNS).
	return &GenerationError{Message: err.Error(), Retryable: true, Err: err}
}

func retryableStatus(code int) bool {
	switch {
	case code == http.StatusTooManyRequests:
		return true
	case code >= 500:
		return true
	default:
		return false
	}
}
