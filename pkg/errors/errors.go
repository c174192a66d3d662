// Package errors defines the error types returned by the Discord OAuth2 client.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrSessionRevoked is returned by operations on a session that has already been revoked.
var ErrSessionRevoked = errors.New("session has been revoked")

// joinParts joins error message parts with the specified separator.
func joinParts(parts []string, sep string) string {
	return strings.Join(parts, sep)
}

// ConfigError indicates a problem with the client configuration or with the
// arguments of a call. It is always returned before any network traffic.
type ConfigError struct {
	// Field contains the name of the configuration field or argument that caused the error
	Field string
	// Message contains the detailed error message
	Message string
}

func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("config error in field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("config error: %s", e.Message)
}

// AuthStateError indicates that an anti-CSRF state was not issued by this
// client, has aged out of the bounded state cache, or was already used.
type AuthStateError struct {
	// State is the rejected state value
	State string
	// Message contains the detailed error message
	Message string
	// Err contains the underlying store error if available
	Err error
}

func (e *AuthStateError) Error() string {
	parts := []string{"auth state error"}
	if e.Message != "" {
		parts = append(parts, e.Message)
	}
	if e.State != "" {
		parts = append(parts, fmt.Sprintf("state: %q", e.State))
	}
	if e.Err != nil {
		parts = append(parts, fmt.Sprintf("err: %v", e.Err))
	}
	if len(parts) == 1 {
		return parts[0]
	}
	return parts[0] + ": " + joinParts(parts[1:], ", ")
}

func (e *AuthStateError) Unwrap() error {
	return e.Err
}

// StateError indicates an operation was attempted on an object that is not
// in a state that allows it, e.g. a user model without a linked session or a
// session without a refresh token.
type StateError struct {
	// Operation is the name of the operation that was attempted
	Operation string
	// Message contains the detailed error message
	Message string
	// Err contains the underlying error if available
	Err error
}

func (e *StateError) Error() string {
	if e.Operation != "" {
		return fmt.Sprintf("state error during %s: %s", e.Operation, e.Message)
	}
	return fmt.Sprintf("state error: %s", e.Message)
}

func (e *StateError) Unwrap() error {
	return e.Err
}

// RequestError indicates a problem with making an API request, such as a
// connection failure or a cancelled context.
type RequestError struct {
	// Operation is the name of the API operation that failed
	Operation string
	// URL is the URL that was being accessed
	URL string
	// Message contains the detailed error message
	Message string
	// Err contains the underlying error if available
	Err error
}

func (e *RequestError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}

	if e.Operation != "" && e.URL != "" {
		return fmt.Sprintf("request error during %s to %s: %s", e.Operation, e.URL, msg)
	} else if e.Operation != "" {
		return fmt.Sprintf("request error during %s: %s", e.Operation, msg)
	}
	return fmt.Sprintf("request error: %s", msg)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// ParseError indicates a response that could not be decoded or that is
// missing a field the API documents as always present.
type ParseError struct {
	// Operation is the name of the API operation where parsing failed
	Operation string
	// Field is the missing or malformed field, if known
	Field string
	// Message contains the detailed error message
	Message string
	// Err contains the underlying error if available
	Err error
}

func (e *ParseError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Field != "" {
		msg = fmt.Sprintf("field %s: %s", e.Field, msg)
	}

	if e.Operation != "" {
		return fmt.Sprintf("parse error during %s: %s", e.Operation, msg)
	}
	return fmt.Sprintf("parse error: %s", msg)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// APIError represents a non-2xx response from the Discord API.
type APIError struct {
	// StatusCode is the HTTP status code
	StatusCode int
	// Method and URL identify the failed request
	Method string
	URL    string
	// Code is Discord's JSON error code, when the body carries one
	Code int
	// Message is the error message from Discord, or the HTTP status text
	Message string
	// Body contains the raw response body
	Body string
}

func (e *APIError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "discord API error (status %d", e.StatusCode)
	if e.Code != 0 {
		fmt.Fprintf(&sb, ", code %d", e.Code)
	}
	sb.WriteString(")")
	if e.Method != "" && e.URL != "" {
		fmt.Fprintf(&sb, " %s %s", e.Method, e.URL)
	}
	if e.Message != "" {
		fmt.Fprintf(&sb, ": %s", e.Message)
	}
	return sb.String()
}
