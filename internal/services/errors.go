package services

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by services when a requested entity is gone.
var (
	ErrUserNotFound      = errors.New("user not found")
	ErrVehicleNotFound   = errors.New("vehicle not found")
	ErrWorkOrderNotFound = errors.New("work order not found")
	ErrRepairNotFound    = errors.New("repair not found")
	ErrChatRoomNotFound  = errors.New("chat room not found")
	ErrMessageNotFound   = errors.New("message not found")

	ErrInvalidCredentials = errors.New("invalid email or password")
)

// PermissionError describes an action the acting user is not allowed
// to perform on a resource.
type PermissionError struct {
	UserID     uint
	ResourceID uint
	Resource   string
	Action     string
	Reason     string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("user %d cannot %s %s %d: %s", e.UserID, e.Action, e.Resource, e.ResourceID, e.Reason)
}

func NewPermissionError(userID, resourceID uint, resource, action, reason string) *PermissionError {
	return &PermissionError{
		UserID:     userID,
		ResourceID: resourceID,
		Resource:   resource,
		Action:     action,
		Reason:     reason,
	}
}

// IsPermissionError reports whether err is (or wraps) a PermissionError.
func IsPermissionError(err error) bool {
	var pe *PermissionError
	return errors.As(err, &pe)
}

// ConflictError describes a state conflict, such as registering an email
// that is already taken or assigning a mechanic twice.
type ConflictError struct {
	Resource string
	Reason   string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s conflict: %s", e.Resource, e.Reason)
}

func NewConflictError(resource, reason string) *ConflictError {
	return &ConflictError{Resource: resource, Reason: reason}
}

// IsConflictError reports whether err is (or wraps) a ConflictError.
func IsConflictError(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}

// IsNotFoundError reports whether err is one of the service not-found
// sentinels.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrVehicleNotFound) ||
		errors.Is(err, ErrWorkOrderNotFound) ||
		errors.Is(err, ErrRepairNotFound) ||
		errors.Is(err, ErrChatRoomNotFound) ||
		errors.Is(err, ErrMessageNotFound)
}
