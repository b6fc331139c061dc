package domain

import (
	"errors"
	"fmt"
)

type ErrorKind string

const (
	KindConflict   ErrorKind = "CONFLICT"
	KindNotFound   ErrorKind = "NOT_FOUND"
	KindAuth       ErrorKind = "AUTH"
	KindValidation ErrorKind = "VALIDATION"
	KindStorage    ErrorKind = "STORAGE"
)

// Error is the single error type surfaced by the core. Sentinels below carry no
// message and match any Error of the same kind through errors.Is.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

var (
	ErrConflict   = &Error{Kind: KindConflict}
	ErrNotFound   = &Error{Kind: KindNotFound}
	ErrAuth       = &Error{Kind: KindAuth}
	ErrValidation = &Error{Kind: KindValidation}
	ErrStorage    = &Error{Kind: KindStorage}
)

const (
	MsgUsernameTaken     = "Username already exists"
	MsgUserNotFound      = "User not found"
	MsgWrongPassword     = "Wrong password"
	MsgTaskNotFound      = "Task not found"
	MsgNotLoggedIn       = "Not logged in"
	MsgStorageFailure    = "Something went wrong, please try again"
	MsgRegistrationDone  = "Registration successful"
	MsgCredentialsNeeded = "Username and password are required"
)

func (e *Error) Error() string {
	switch {
	case e.Message != "" && e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	case e.Message != "":
		return e.Message
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	default:
		return string(e.Kind)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)

	if !ok {
		return false
	}

	return t.Kind == e.Kind && t.Message == "" && t.Err == nil
}

func Conflict(message string) error {
	return &Error{Kind: KindConflict, Message: message}
}

func NotFound(message string) error {
	return &Error{Kind: KindNotFound, Message: message}
}

func Auth(message string) error {
	return &Error{Kind: KindAuth, Message: message}
}

func Validation(message string) error {
	return &Error{Kind: KindValidation, Message: message}
}

func Storage(op string, err error) error {
	return &Error{Kind: KindStorage, Message: op, Err: err}
}

// UserMessage returns the text a caller can show for err. Storage failures and
// unclassified errors collapse to a generic message.
func UserMessage(err error) string {
	var de *Error

	if errors.As(err, &de) && de.Kind != KindStorage && de.Message != "" {
		return de.Message
	}

	return MsgStorageFailure
}
