package anthropic

import (
	"encoding/json"
	"fmt"
)

// APIError is a non-2xx answer from the provider. It wraps the SDK error.
type APIError struct {
	StatusCode int
	Body       string

	err error
}

func (e *APIError) Unwrap() error {
	return e.err
}

func (e *APIError) Error() string {
	if kind, msg := e.Detail(); kind != "" {
		return fmt.Sprintf("anthropic api error (status %d): %s: %s", e.StatusCode, kind, msg)
	}
	return fmt.Sprintf("anthropic api error (status %d)", e.StatusCode)
}

// Detail extracts the error type and message from the provider's error
// envelope, if the body is one.
func (e *APIError) Detail() (kind, message string) {
	var envelope struct {
		Error struct {
			Type    string `json:"type"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal([]byte(e.Body), &envelope) != nil {
		return "", ""
	}
	return envelope.Error.Type, envelope.Error.Message
}
