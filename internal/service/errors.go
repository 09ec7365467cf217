// Package service holds the backend business logic: authentication,
// the user directory and the credential tree, together with the role
// policy that gates them.
package service

import "errors"

// Error kinds. Handlers map each to an HTTP status.
var (
	ErrInvalid      = errors.New("invalid request")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
)

// Error is a business failure whose Message is shown to the user verbatim.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func fail(kind error, msg string) error {
	return &Error{Kind: kind, Message: msg}
}

// User-facing messages.
const (
	MsgRegistered         = "Registration successful! You may now login."
	MsgUsernameTaken      = "Username already exists."
	MsgMissingFields      = "Username and password are required."
	MsgBadLogin           = "Incorrect username or password."
	MsgUnauthorized       = "Unauthorized. Please login again."
	MsgInvalidRequest     = "Invalid request."
	MsgCredentialAdded    = "Credential added successfully."
	MsgCredentialUpdated  = "Credential updated successfully."
	MsgCredentialNotFound = "Credential not found."
	MsgDivisionNotFound   = "Organisational unit or division not found."
	MsgRoleUpdated        = "User role updated successfully."
	MsgAssigned           = "User assigned to division successfully."
	MsgUnassigned         = "User unassigned from division successfully."
	MsgAlreadyAssigned    = "User is already assigned to this division."
	MsgNotAssigned        = "User is not assigned to this division."
	MsgUserNotFound       = "User not found."
	MsgInvalidRole        = "Invalid role."
	MsgNoDivisionAccess   = "You do not have access to this division."
	MsgCannotUpdate       = "Only management and admin users can update credentials."
	MsgCannotChangeRole   = "Only admin users can change user roles."
	MsgCannotManageUsers  = "Only management and admin users can assign or unassign divisions."
)
