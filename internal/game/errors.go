package game

import (
	"errors"
	"fmt"
)

type ErrorKind int

const (
	ValidationError ErrorKind = iota + 1
	StateError
	SupplyError
	ExternalServiceError
	InternalError
)

func (k ErrorKind) String() string {
	switch k {
	case ValidationError:
		return "validation"
	case StateError:
		return "state"
	case SupplyError:
		return "supply"
	case ExternalServiceError:
		return "external"
	case InternalError:
		return "internal"
	}
	return "unknown"
}

// Acknowledgement codes. CodeOK is the only success value.
const (
	CodeOK               = 0
	CodeValidation       = 1
	CodeNotDrafting      = 2
	CodeAlreadyDrafting  = 3
	CodeNotOwner         = 4
	CodeNotYourTurn      = 5
	CodeNotEnoughPlayers = 6
	CodeSupply           = 7
	CodeExternal         = 8
	CodeInternal         = 99
)

type Error struct {
	Kind    ErrorKind
	Code    int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches on kind and code so sentinels can be compared with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Code == t.Code
}

var (
	ErrNotDrafting      = &Error{Kind: StateError, Code: CodeNotDrafting, Message: "not drafting"}
	ErrAlreadyDrafting  = &Error{Kind: StateError, Code: CodeAlreadyDrafting, Message: "a draft is already running"}
	ErrNotOwner         = &Error{Kind: StateError, Code: CodeNotOwner, Message: "only the session owner can do this"}
	ErrNotYourTurn      = &Error{Kind: StateError, Code: CodeNotYourTurn, Message: "not your turn"}
	ErrNotEnoughPlayers = &Error{Kind: StateError, Code: CodeNotEnoughPlayers, Message: "at least two players are required"}
)

func Validation(format string, args ...interface{}) error {
	return &Error{Kind: ValidationError, Code: CodeValidation, Message: fmt.Sprintf(format, args...)}
}

func State(code int, format string, args ...interface{}) error {
	return &Error{Kind: StateError, Code: code, Message: fmt.Sprintf(format, args...)}
}

func Supply(format string, args ...interface{}) error {
	return &Error{Kind: SupplyError, Code: CodeSupply, Message: fmt.Sprintf(format, args...)}
}

func External(err error, format string, args ...interface{}) error {
	return &Error{Kind: ExternalServiceError, Code: CodeExternal, Message: fmt.Sprintf(format, args...), Err: err}
}

func Internal(err error) error {
	return &Error{Kind: InternalError, Code: CodeInternal, Message: "internal error", Err: err}
}

// CodeOf maps err to an acknowledgement code.
func CodeOf(err error) int {
	if err == nil {
		return CodeOK
	}
	var gameErr *Error
	if errors.As(err, &gameErr) {
		return gameErr.Code
	}
	return CodeInternal
}

// KindOf returns the taxonomy kind of err, InternalError for foreign errors.
func KindOf(err error) ErrorKind {
	var gameErr *Error
	if errors.As(err, &gameErr) {
		return gameErr.Kind
	}
	return InternalError
}
