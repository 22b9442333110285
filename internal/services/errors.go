package services

import "errors"

// Expected, recoverable outcomes. Handlers match these with errors.Is and turn
// them into user-facing flash messages; anything else is a storage failure and
// surfaces as a 500.
var (
	ErrValidation         = errors.New("invalid input")
	ErrDuplicateUser      = errors.New("username is already taken")
	ErrInvalidCredentials = errors.New("invalid username or PIN")
	ErrNotFound           = errors.New("event not found")
	ErrForbidden          = errors.New("event belongs to another user")
)
