package models

import "fmt"

// ValidationError reports malformed command syntax or an out-of-range
// configuration value. It is surfaced to the invoking user and never fatal.
type ValidationError struct {
	Message string
}

func NewValidationError(message string) *ValidationError {
	return &ValidationError{Message: message}
}

func (e *ValidationError) Error() string {
	return e.Message
}

// FetchError reports an unreachable or unparsable feed source. The poll cycle
// that hit it is aborted and the cursor left untouched.
type FetchError struct {
	Source string
	Err    error
}

func NewFetchError(source string, err error) *FetchError {
	return &FetchError{Source: source, Err: err}
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch from %s failed: %v", e.Source, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// DeliveryError reports a failed post to a destination channel. Transient by
// assumption; the dispatcher retries it within its budget.
type DeliveryError struct {
	ChannelID int64
	Err       error
}

func NewDeliveryError(channelID int64, err error) *DeliveryError {
	return &DeliveryError{ChannelID: channelID, Err: err}
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("delivery to channel %d failed: %v", e.ChannelID, e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

// NotFoundError reports a missing tracked query or channel binding.
type NotFoundError struct {
	Message string
}

func NewNotFoundError(message string) *NotFoundError {
	return &NotFoundError{Message: message}
}

func (e *NotFoundError) Error() string {
	return e.Message
}

// AuthorizationError reports a caller outside the guild allow-list. The user
// message is fixed so nothing about the existing list leaks.
type AuthorizationError struct {
	UserID int64
}

func NewAuthorizationError(userID int64) *AuthorizationError {
	return &AuthorizationError{UserID: userID}
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("user %d is not allowed to command this guild", e.UserID)
}
