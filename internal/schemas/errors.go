package schemas

import (
	"fmt"
	"net/http"
)

// CustomError is a typed domain error carrying the HTTP status and the
// client-visible message. Handlers and middleware attach these to the gin
// context; the error normalizer is the only code that renders them.
type CustomError struct {
	Status  int
	Message string
}

func (e *CustomError) Error() string {
	return e.Message
}

// NewCustomError builds a CustomError with an explicit status and message.
func NewCustomError(status int, message string) *CustomError {
	return &CustomError{Status: status, Message: message}
}

// Fixed domain errors used across the auth and guard flows. Login failures
// share a single message so a caller cannot tell a missing account from a
// wrong password.
var (
	ErrInvalidCredentials = NewCustomError(http.StatusUnauthorized, "Invalid credentials")
	ErrNotAuthorized      = NewCustomError(http.StatusUnauthorized, "Not authorized to access this route")
	ErrPasswordIncorrect  = NewCustomError(http.StatusUnauthorized, "Password is incorrect")
	ErrNoUserWithEmail    = NewCustomError(http.StatusNotFound, "There is no user with that email")
	ErrInvalidResetToken  = NewCustomError(http.StatusBadRequest, "Invalid token")
	ErrEmailNotSent       = NewCustomError(http.StatusInternalServerError, "Email could not be sent")
	ErrEmailUnreachable   = NewCustomError(http.StatusBadRequest, "Email address could not be verified")
)

// NewResourceNotFound reports a missing or malformed resource identifier.
func NewResourceNotFound(id string) *CustomError {
	return NewCustomError(http.StatusNotFound, fmt.Sprintf("Resource not found with id of %s", id))
}

// NewRoleForbidden reports an authenticated principal whose role is not in
// a route's allowed set.
func NewRoleForbidden(role Role) *CustomError {
	return NewCustomError(http.StatusForbidden, fmt.Sprintf("User role '%s' is not authorized to access this route", role))
}

// InvalidResourceIDError marks a path parameter that failed to parse as an
// id. The error normalizer maps it to the resource-not-found shape, which
// mirrors how a cast failure behaves on lookups by id.
type InvalidResourceIDError struct {
	ID  string
	Err error
}

func (e *InvalidResourceIDError) Error() string {
	return fmt.Sprintf("invalid resource id %q: %v", e.ID, e.Err)
}

func (e *InvalidResourceIDError) Unwrap() error {
	return e.Err
}
