package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrUnauthorized           = errors.New("unauthorized")
	ErrForbidden              = errors.New("forbidden")
	ErrNotFound               = errors.New("not found")
	ErrConflict               = errors.New("conflict")
	ErrInvalidArgument        = errors.New("invalid argument")
	ErrNotOwner               = errors.New("not owner")
	ErrSoleMember             = errors.New("sole member")
	ErrNotMember              = errors.New("not a member")
	ErrAuthorityUnreachable   = errors.New("authority unreachable")
	ErrAuthorityCommunication = errors.New("authority communication fault")
)

type NotOwnerError struct {
	PlatformID string
}

func (e *NotOwnerError) Error() string {
	return fmt.Sprintf("You do not own the platform with id %s", e.PlatformID)
}

func (e *NotOwnerError) Unwrap() error {
	return ErrNotOwner
}

// ValidationError carries field-level messages keyed as error_<field>.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Fields) == 0 {
		return "validation failed"
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidArgument
}

func (e *ValidationError) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	key := "error_" + field
	if _, exists := e.Fields[key]; exists {
		return
	}
	e.Fields[key] = message
}

func (e *ValidationError) Empty() bool {
	return e == nil || len(e.Fields) == 0
}

// CommunicationError is an authority reply that could not be used. Message is surfaced to callers.
type CommunicationError struct {
	Message string
}

func (e *CommunicationError) Error() string {
	return e.Message
}

func (e *CommunicationError) Unwrap() error {
	return ErrAuthorityCommunication
}

type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindValidation
	KindNotFound
	KindNotOwner
	KindConflict
	KindSoleMember
	KindNotMember
	KindAuthorityUnreachable
	KindAuthorityCommunication
	KindUnauthorized
	KindForbidden
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "VALIDATION_FAILED"
	case KindNotFound:
		return "NOT_FOUND"
	case KindNotOwner:
		return "NOT_OWNER"
	case KindConflict:
		return "CONFLICT"
	case KindSoleMember:
		return "SOLE_MEMBER"
	case KindNotMember:
		return "NOT_MEMBER"
	case KindAuthorityUnreachable:
		return "AUTHORITY_UNREACHABLE"
	case KindAuthorityCommunication:
		return "AUTHORITY_COMMUNICATION"
	case KindUnauthorized:
		return "UNAUTHORIZED"
	case KindForbidden:
		return "FORBIDDEN"
	default:
		return "INTERNAL"
	}
}

func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return KindInternal
	case errors.Is(err, ErrInvalidArgument):
		return KindValidation
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrNotOwner):
		return KindNotOwner
	case errors.Is(err, ErrConflict):
		return KindConflict
	case errors.Is(err, ErrSoleMember):
		return KindSoleMember
	case errors.Is(err, ErrNotMember):
		return KindNotMember
	case errors.Is(err, ErrAuthorityUnreachable):
		return KindAuthorityUnreachable
	case errors.Is(err, ErrAuthorityCommunication):
		return KindAuthorityCommunication
	case errors.Is(err, ErrUnauthorized):
		return KindUnauthorized
	case errors.Is(err, ErrForbidden):
		return KindForbidden
	default:
		return KindInternal
	}
}
