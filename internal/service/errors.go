package service

import "errors"

// ValidationError carries a message that is safe to show to the user.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func newValidationError(message string) *ValidationError {
	return &ValidationError{Message: message}
}

var (
	ErrCredentialsRequired   = newValidationError("Please enter username and password")
	ErrStudentFieldsRequired = newValidationError("Username and password required")
	ErrStudentFieldsTooLong  = newValidationError("Username or password too long")
	ErrReservedUsername      = newValidationError("Cannot use reserved username")
	ErrDuplicateUsername     = newValidationError("Username already taken")
	ErrRecordFieldsRequired  = newValidationError("All fields required")
	ErrInvalidRecord         = newValidationError("Invalid marks or attendance")
	ErrUnknownStudent        = newValidationError("Unknown student")

	// ErrInvalidCredentials is shared by unknown users and wrong passwords.
	ErrInvalidCredentials = errors.New("invalid username or password")
)
