// Package apperr defines the error taxonomy shared by the client layers.
// Every failure surfaced to a screen is classified so the presentation layer
// can decide between a blocking prompt (validation) and a transient
// notification (everything else). No kind is fatal to the process.
package apperr

import (
	"errors"
	"fmt"
)

type Kind string

const (
	// KindAuthentication covers bad credentials and rejected logins.
	KindAuthentication Kind = "authentication"
	// KindValidation covers local form checks; these never reach the network.
	KindValidation Kind = "validation"
	// KindNetwork covers connectivity failures where no response arrived.
	KindNetwork Kind = "network"
	// KindServer covers responses received with success=false.
	KindServer Kind = "server"
	// KindStorage covers local credential persistence failures.
	KindStorage Kind = "storage"
)

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf extracts the taxonomy kind from an error chain. Unclassified errors
// report as server errors, the most conservative bucket for display purposes.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindServer
}

// Is reports whether err carries the given kind anywhere in its chain.
func Is(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// UserMessage returns the message intended for display, falling back to the
// raw error text for unclassified errors.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	if err != nil {
		return err.Error()
	}
	return ""
}
