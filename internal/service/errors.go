package service

import (
	"errors"
	"fmt"

	"github.com/avelinov/parley/internal/permissions"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrConflict     = errors.New("conflict")
	ErrBadRequest   = errors.New("bad request")
	ErrUnauthorized = errors.New("unauthorized")
	ErrInternal     = errors.New("internal")
)

// ServiceError wraps a sentinel error with a specific code and message for
// the handler to use. The code set is closed; call sites can switch on it
// exhaustively.
type ServiceError struct {
	Err     error
	Code    string
	Message string
}

func (e *ServiceError) Error() string { return e.Message }
func (e *ServiceError) Unwrap() error { return e.Err }

// NewError creates a ServiceError wrapping the given sentinel.
func NewError(sentinel error, code, message string) *ServiceError {
	return &ServiceError{Err: sentinel, Code: code, Message: message}
}

// Convenience constructors for common error types.

func NotFound(code, message string) *ServiceError {
	return NewError(ErrNotFound, code, message)
}

func Forbidden(code, message string) *ServiceError {
	return NewError(ErrForbidden, code, message)
}

func BadRequest(code, message string) *ServiceError {
	return NewError(ErrBadRequest, code, message)
}

func Conflict(code, message string) *ServiceError {
	return NewError(ErrConflict, code, message)
}

func Unauthorized(code, message string) *ServiceError {
	return NewError(ErrUnauthorized, code, message)
}

func Internal(code, message string) *ServiceError {
	return NewError(ErrInternal, code, message)
}

// Domain-specific constructors.

func RoleNotFound() *ServiceError {
	return NotFound("ROLE_NOT_FOUND", "role not found")
}

func GuildNotFound() *ServiceError {
	return NotFound("GUILD_NOT_FOUND", "guild not found")
}

func ChannelNotFound() *ServiceError {
	return NotFound("CHANNEL_NOT_FOUND", "channel not found")
}

func MemberNotFound() *ServiceError {
	return NotFound("MEMBER_NOT_FOUND", "member not found")
}

func CannotModifyEveryone() *ServiceError {
	return Forbidden("CANNOT_MODIFY_EVERYONE", "the @everyone role cannot be deleted or unassigned")
}

func RoleAlreadyAssigned() *ServiceError {
	return Conflict("ROLE_ALREADY_ASSIGNED", "the member already has this role")
}

func RoleNotAssigned() *ServiceError {
	return BadRequest("ROLE_NOT_ASSIGNED", "the member does not have this role")
}

// MissingPermission carries the name of the permission the caller lacked.
func MissingPermission(perm permissions.Permission) *ServiceError {
	return Forbidden("MISSING_PERMISSION",
		fmt.Sprintf("missing permission: %s", permissions.Name(perm)))
}
