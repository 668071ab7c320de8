package domain

import (
	"errors"
	"fmt"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrClientExists       = errors.New("client already exists")
	ErrClientNotFound     = errors.New("client not found")
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// Err joins a sentinel error with the underlying cause and an optional
// formatted message so that errors.Is matches the sentinel.
func Err(typedError error, innerErr error, msgTemplate string, args ...any) error {
	if msgTemplate == "" {
		return errors.Join(typedError, innerErr)
	}
	return errors.Join(typedError, innerErr, fmt.Errorf(msgTemplate, args...))
}

// Message returns the most specific human-readable text for err: the
// formatted detail of a joined error when present, otherwise err.Error().
func Message(err error) string {
	var joined interface{ Unwrap() []error }
	if errors.As(err, &joined) {
		errs := joined.Unwrap()
		if len(errs) > 1 {
			return errs[len(errs)-1].Error()
		}
	}
	return err.Error()
}
