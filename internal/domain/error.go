package domain

import (
	"errors"
	"fmt"
)

var (
	// Common domain errors
	ErrNotFound        = errors.New("entity not found")
	ErrInvalidArgument = errors.New("invalid argument")

	// Relay errors
	ErrRelayMiss       = errors.New("reply does not reference a forwarded message")
	ErrSendFailed      = errors.New("send message failed")
	ErrMalformedUpdate = errors.New("malformed update")
	ErrEmptyText       = errors.New("message has no text")
	ErrBadAddress      = errors.New("admin message is not addressed to a user")
)

// ConfigError reports a missing or invalid configuration value. It is fatal at startup.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config %s: %s", e.Field, e.Reason)
}
