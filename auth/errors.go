package auth

import (
	"errors"
	"fmt"
)

// Code identifies a failure reported by the identity service or transport.
type Code int

const (
	Unspecified Code = iota
	NotLoggedIn
	InvalidEnvironment
	Offline
	PermissionScopeNoEnvironment
)

var codeNames = map[Code]string{
	Unspecified:                  "Unspecified",
	NotLoggedIn:                  "NotLoggedIn",
	InvalidEnvironment:           "InvalidEnvironment",
	Offline:                      "Offline",
	PermissionScopeNoEnvironment: "PermissionScopeNoEnvironment",
}

// String returns the wire name of the code.
func (c Code) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Code(%d)", int(c))
}

// ParseCode maps a wire name (or numeric string) back to a Code. Unknown
// values map to Unspecified.
func ParseCode(name string) Code {
	for code, candidate := range codeNames {
		if candidate == name {
			return code
		}
	}
	var n int
	if _, err := fmt.Sscanf(name, "%d", &n); err == nil {
		if _, ok := codeNames[Code(n)]; ok {
			return Code(n)
		}
	}
	return Unspecified
}

// Error carries a failure code and a human readable message across the
// token/transport boundary.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Code.String()
	}
	return e.Code.String() + ": " + e.Message
}

// Is matches any *Error with the same code, so errors.Is(err, ErrOffline) works.
func (e *Error) Is(target error) bool {
	var other *Error
	if errors.As(target, &other) {
		return other.Code == e.Code
	}
	return false
}

// NewError creates an Error with the given code and message.
func NewError(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Sentinel values for errors.Is comparisons.
var (
	ErrOffline                      = &Error{Code: Offline}
	ErrNotLoggedIn                  = &Error{Code: NotLoggedIn}
	ErrInvalidEnvironment           = &Error{Code: InvalidEnvironment}
	ErrPermissionScopeNoEnvironment = &Error{Code: PermissionScopeNoEnvironment}
	ErrUnspecified                  = &Error{Code: Unspecified}
)

// CodeOf returns the code carried by err, or Unspecified when err is not an *Error.
func CodeOf(err error) Code {
	var authErr *Error
	if errors.As(err, &authErr) {
		return authErr.Code
	}
	return Unspecified
}
