package database

import (
	"errors"
	"fmt"
)

// ErrNotFound marks an absent document. Absence is an expected outcome.
var ErrNotFound = errors.New("not found")

// ConfigurationError means the connection settings are missing or unusable.
// Retrying will not help until an operator fixes the environment.
type ConfigurationError struct {
	Key     string
	Message string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error for %v: %v", e.Key, e.Message)
}

// ConnectionError wraps a failed or not yet completed connect attempt. The
// next Connect call starts a fresh attempt.
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("db connection error: %v", e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// ReferenceError is returned when a write points at a document that does not exist.
type ReferenceError struct {
	Entity string
	Id     string
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("%v with id %v does not exist", e.Entity, e.Id)
}
