package rest

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrRemoteApplication is the cause of every *RemoteError.
var ErrRemoteApplication = errors.New("remote application error")

// RemoteError is an error reported by the remote API, either through the HTTP status or the response envelope.
type RemoteError struct {
	Resource   string
	StatusCode int
	// Code is the API specific error code, like Slack's "channel_not_found".
	Code    string
	Message string
}

func (e *RemoteError) Error() string {
	msg := fmt.Sprintf("%s: status %d", e.Resource, e.StatusCode)
	if e.Code != "" {
		msg += ": " + e.Code
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

func (e *RemoteError) Cause() error {
	return ErrRemoteApplication
}

func (e *RemoteError) Unwrap() error {
	return ErrRemoteApplication
}
