// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"errors"
	"fmt"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ClientError represents an error from the backend client.
type ClientError struct {
	Type       ErrorType
	Message    string
	StatusCode int
	Cause      error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// Is matches sentinel errors by type so wrapped errors with extra detail
// still satisfy errors.Is(err, ErrTimeout) and friends.
func (e *ClientError) Is(target error) bool {
	var t *ClientError
	if !errors.As(target, &t) {
		return false
	}
	return t.Type == e.Type && t.Message == sentinelMessage(t.Type)
}

// ErrorType categorizes client errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeUnavailable
	ErrTypeTimeout
	ErrTypeStatus
	ErrTypeDecode
	ErrTypeRequest
)

// String returns the name of the error type.
func (t ErrorType) String() string {
	switch t {
	case ErrTypeUnavailable:
		return "unavailable"
	case ErrTypeTimeout:
		return "timeout"
	case ErrTypeStatus:
		return "status"
	case ErrTypeDecode:
		return "decode"
	case ErrTypeRequest:
		return "request"
	default:
		return "unknown"
	}
}

// Sentinel errors for easy checking.
var (
	ErrUnavailable = &ClientError{Type: ErrTypeUnavailable, Message: sentinelMessage(ErrTypeUnavailable)}
	ErrTimeout     = &ClientError{Type: ErrTypeTimeout, Message: sentinelMessage(ErrTypeTimeout)}
	ErrBadStatus   = &ClientError{Type: ErrTypeStatus, Message: sentinelMessage(ErrTypeStatus)}
	ErrDecode      = &ClientError{Type: ErrTypeDecode, Message: sentinelMessage(ErrTypeDecode)}
)

func sentinelMessage(t ErrorType) string {
	switch t {
	case ErrTypeUnavailable:
		return "backend is not reachable"
	case ErrTypeTimeout:
		return "request timed out"
	case ErrTypeStatus:
		return "unexpected status from backend"
	case ErrTypeDecode:
		return "failed to decode response"
	default:
		return "backend error"
	}
}

func statusError(op string, code int, status string) *ClientError {
	return &ClientError{
		Type:       ErrTypeStatus,
		Message:    fmt.Sprintf("%s failed: %s", op, status),
		StatusCode: code,
		Cause:      ErrBadStatus,
	}
}

// IsTimeout checks if the error is a timeout error.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

// IsUnavailable checks if the error means the backend could not be reached.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable) || errors.Is(err, ErrTimeout)
}
