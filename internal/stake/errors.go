package stake

import (
	"errors"
	"fmt"
	"strings"
)

// Error types reported by the casino in errors[].errorType
const (
	ErrorTypeInsufficientBalance = "insufficientBalance"
	ErrorTypeInsignificantBet    = "insignificantBet"
)

// TransientNetworkError is a connection-level failure, or a 429/5xx status, that
// survived every retry attempt
type TransientNetworkError struct {
	Attempts   int
	StatusCode int
	Cause      error
}

func (e *TransientNetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("transient network error after %d attempt(s): status %d", e.Attempts, e.StatusCode)
	}
	return fmt.Sprintf("transient network error after %d attempt(s): %v", e.Attempts, e.Cause)
}

func (e *TransientNetworkError) Unwrap() error { return e.Cause }

// MalformedResponseError is a response body that was not well-formed JSON on every attempt
type MalformedResponseError struct {
	Attempts   int
	StatusCode int
	Snippet    string
	Cause      error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed response after %d attempt(s) (status %d): %q", e.Attempts, e.StatusCode, e.Snippet)
}

func (e *MalformedResponseError) Unwrap() error { return e.Cause }

// InsufficientBalanceError means the account cannot cover the stake
type InsufficientBalanceError struct {
	Message string
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance: %s", e.Message)
}

// InsignificantBetError means the stake is below the casino minimum
type InsignificantBetError struct {
	Message string
}

func (e *InsignificantBetError) Error() string {
	return fmt.Sprintf("insignificant bet: %s", e.Message)
}

// UnrecognizedResponseShapeError is a well-formed response that matched none of the known shapes
type UnrecognizedResponseShapeError struct {
	Reason string
}

func (e *UnrecognizedResponseShapeError) Error() string {
	return fmt.Sprintf("unrecognized response shape: %s", e.Reason)
}

// APIError is any other error reported by the casino
type APIError struct {
	ErrorType string
	Message   string
}

func (e *APIError) Error() string {
	if e.ErrorType == "" {
		return fmt.Sprintf("stake API error: %s", e.Message)
	}
	return fmt.Sprintf("stake API error: %s (type: %s)", e.Message, e.ErrorType)
}

// ConfigurationError reports credentials that must be set before any request is made
type ConfigurationError struct {
	Missing []string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("missing credentials: %s", strings.Join(e.Missing, ", "))
}

// NewInsufficientBalanceError creates a new insufficient balance error
func NewInsufficientBalanceError(message string) *InsufficientBalanceError {
	return &InsufficientBalanceError{Message: message}
}

// NewInsignificantBetError creates a new insignificant bet error
func NewInsignificantBetError(message string) *InsignificantBetError {
	return &InsignificantBetError{Message: message}
}

// NewUnrecognizedResponseShapeError creates a new unrecognized shape error
func NewUnrecognizedResponseShapeError(format string, args ...interface{}) *UnrecognizedResponseShapeError {
	return &UnrecognizedResponseShapeError{Reason: fmt.Sprintf(format, args...)}
}

// MapAPIError maps a casino error type to its domain error
func MapAPIError(errorType, message string) error {
	switch errorType {
	case ErrorTypeInsufficientBalance:
		return NewInsufficientBalanceError(message)
	case ErrorTypeInsignificantBet:
		return NewInsignificantBetError(message)
	default:
		return &APIError{ErrorType: errorType, Message: message}
	}
}

// IsTerminal reports whether err ends a run. Every error a Client returns is terminal
// for the current call; this distinguishes the ones the casino itself reported.
func IsTerminal(err error) bool {
	var (
		insufficient  *InsufficientBalanceError
		insignificant *InsignificantBetError
		shape         *UnrecognizedResponseShapeError
		api           *APIError
	)
	return errors.As(err, &insufficient) ||
		errors.As(err, &insignificant) ||
		errors.As(err, &shape) ||
		errors.As(err, &api)
}

// ErrorLabel returns a short metric label for err
func ErrorLabel(err error) string {
	var (
		transient     *TransientNetworkError
		malformed     *MalformedResponseError
		insufficient  *InsufficientBalanceError
		insignificant *InsignificantBetError
		shape         *UnrecognizedResponseShapeError
		api           *APIError
		cfg           *ConfigurationError
	)
	switch {
	case errors.As(err, &transient):
		return "transient_network"
	case errors.As(err, &malformed):
		return "malformed_response"
	case errors.As(err, &insufficient):
		return "insufficient_balance"
	case errors.As(err, &insignificant):
		return "insignificant_bet"
	case errors.As(err, &shape):
		return "unrecognized_shape"
	case errors.As(err, &api):
		return "api"
	case errors.As(err, &cfg):
		return "configuration"
	default:
		return "other"
	}
}
