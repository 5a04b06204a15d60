package llm

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrRateLimited   = errors.New("rate limited")
	ErrModelNotFound = errors.New("model not found")
	ErrUnauthorized  = errors.New("unauthorized")
)

type APIError struct {
	Status  int
	Type    string
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("openai request failed: %s (status %d)", e.Message, e.Status)
	}
	return fmt.Sprintf("openai request failed with status %d", e.Status)
}

func classifyAPIError(apiErr *APIError) error {
	switch apiErr.Status {
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", ErrRateLimited, apiErr)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrModelNotFound, apiErr)
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", ErrUnauthorized, apiErr)
	}
	if apiErr.Type == "model_not_found" {
		return fmt.Errorf("%w: %s", ErrModelNotFound, apiErr)
	}
	return apiErr
}
