package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/dmitrijs2005/storeit/internal/client/session"
	"github.com/dmitrijs2005/storeit/internal/common"
)

var (
	// ErrNoCredential means the call was refused locally because no
	// credential is stored. The backend was not contacted.
	ErrNoCredential = session.ErrNoCredential

	// ErrUnauthorized means the backend answered 401.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrEmptyResponse means a 2xx response arrived without the expected payload.
	ErrEmptyResponse = errors.New("empty response")
)

// User-facing texts for the failure taxonomy.
const (
	MsgNoCredential = "Please sign in to continue."
	MsgUnauthorized = "Invalid Credentials or Unauthorized Access"
	MsgGeneric      = "Something went wrong!"
	MsgUnexpected   = "An unexpected error occurred."
)

// RequestError is a non-2xx response. Message is the backend's own
// "message" field when it sent one.
type RequestError struct {
	Status  int
	Message string
}

func (e *RequestError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("request failed with status code %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("request failed with status code %d", e.Status)
}

func (e *RequestError) Unwrap() error {
	if e.Status == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	return nil
}

// UserMessage converts any error produced below an operation boundary into
// the text shown to the user.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var reqErr *RequestError
	var urlErr *url.Error

	switch {
	case errors.Is(err, ErrNoCredential):
		return MsgNoCredential
	case errors.Is(err, ErrUnauthorized):
		return MsgUnauthorized
	case errors.As(err, &reqErr):
		if reqErr.Message != "" {
			return reqErr.Message
		}
		return MsgGeneric
	case errors.Is(err, ErrEmptyResponse):
		return MsgGeneric
	case errors.Is(err, common.ErrorValidation):
		return err.Error()
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &urlErr):
		return MsgGeneric
	default:
		return MsgUnexpected
	}
}
