// FilePath: internal/errors/errors.go
package errors

import (
	"fmt"
	"strings"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// Error types
	ErrorTypeAuthInvalid ErrorType = "authentication_invalid"
	ErrorTypePrivileges  ErrorType = "insufficient_privileges"
	ErrorTypeUserInput   ErrorType = "user_input"
	ErrorTypeNotFound    ErrorType = "not_found"
	ErrorTypeUpstream    ErrorType = "upstream"
	ErrorTypeInternal    ErrorType = "internal"
)

// Extension codes surfaced to GraphQL clients. The codes follow the Apollo
// server conventions so existing clients keep working against this gateway.
const (
	CodeUnauthenticated = "UNAUTHENTICATED"
	CodeForbidden       = "FORBIDDEN"
	CodeBadUserInput    = "BAD_USER_INPUT"
	CodeNotFound        = "NOT_FOUND"
	CodeInternal        = "INTERNAL_SERVER_ERROR"
)

// GraphQLError is a structured field-level error. It implements the
// gqlerrors.ExtendedError contract so the engine includes extensions in the
// formatted response.
type GraphQLError struct {
	Type    ErrorType `json:"type"`
	Message string    `json:"message"`
	Code    string    `json:"code"`
	err     error     // internal cause for logging
}

// Error implements the error interface
func (e *GraphQLError) Error() string {
	return e.Message
}

// Unwrap exposes the internal cause
func (e *GraphQLError) Unwrap() error {
	return e.err
}

// Extensions implements gqlerrors.ExtendedError
func (e *GraphQLError) Extensions() map[string]interface{} {
	return map[string]interface{}{"code": e.Code}
}

// NewAuthInvalidError reports that no valid caller identity was present
func NewAuthInvalidError() *GraphQLError {
	return &GraphQLError{
		Type:    ErrorTypeAuthInvalid,
		Message: "Invalid user",
		Code:    CodeUnauthenticated,
	}
}

// NewInsufficientPrivilegesError reports that the caller's role is not in the
// set of roles permitted to perform the action. The message enumerates both
// verbatim and is load-bearing for clients and tests.
func NewInsufficientPrivilegesError(validRoles []string, userRole string) *GraphQLError {
	return &GraphQLError{
		Type: ErrorTypePrivileges,
		Message: fmt.Sprintf(
			"User has insufficient privileges to perform the requested action. User has role %s. Action requires role to be one of {%s}",
			userRole, strings.Join(validRoles, ","),
		),
		Code: CodeForbidden,
	}
}

// NewUserInputError creates a new user input error
func NewUserInputError(msg string) *GraphQLError {
	return &GraphQLError{
		Type:    ErrorTypeUserInput,
		Message: msg,
		Code:    CodeBadUserInput,
	}
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(msg string, err error) *GraphQLError {
	return &GraphQLError{
		Type:    ErrorTypeNotFound,
		Message: msg,
		Code:    CodeNotFound,
		err:     err,
	}
}

// NewUpstreamError wraps a collaborator failure that has no explicit
// translation at the resolver
func NewUpstreamError(msg string, err error) *GraphQLError {
	return &GraphQLError{
		Type:    ErrorTypeUpstream,
		Message: msg,
		Code:    CodeInternal,
		err:     err,
	}
}

// NewInternalError creates a new internal error
func NewInternalError(msg string, err error) *GraphQLError {
	return &GraphQLError{
		Type:    ErrorTypeInternal,
		Message: msg,
		Code:    CodeInternal,
		err:     err,
	}
}

// IsNotFound checks if an error is a NotFound error
func IsNotFound(err error) bool {
	if gqlErr, ok := err.(*GraphQLError); ok {
		return gqlErr.Type == ErrorTypeNotFound
	}
	return false
}

// IsUserInput checks if an error is a UserInput error
func IsUserInput(err error) bool {
	if gqlErr, ok := err.(*GraphQLError); ok {
		return gqlErr.Type == ErrorTypeUserInput
	}
	return false
}

// IsAuth checks if an error is either authentication or authorization related
func IsAuth(err error) bool {
	if gqlErr, ok := err.(*GraphQLError); ok {
		return gqlErr.Type == ErrorTypeAuthInvalid || gqlErr.Type == ErrorTypePrivileges
	}
	return false
}
