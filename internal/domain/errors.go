package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when the target company or URL is absent.
	ErrNotFound = errors.New("not found")

	// ErrValidation is matched by every *ValidationError.
	ErrValidation = errors.New("validation failed")

	// ErrCannotRemoveLastURL protects the one-URL-per-company invariant.
	ErrCannotRemoveLastURL = errors.New("each company must have at least one URL")

	// ErrAlreadyExists is returned when a derived company id is already taken.
	ErrAlreadyExists = errors.New("company already exists")

	// ErrConfirmationRequired guards destructive imports.
	ErrConfirmationRequired = errors.New("confirmation required")

	// ErrStorageUnavailable wraps failures of the persistence backend.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// Sync path only.
	ErrNetworkUnavailable   = errors.New("network unavailable")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrRemote               = errors.New("remote error")
)

// ValidationError reports which field was rejected and why.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// RemoteError is a non-2xx answer from the sync server.
type RemoteError struct {
	Status  int
	Message string
}

func (e *RemoteError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("remote error: HTTP %d", e.Status)
	}
	return fmt.Sprintf("remote error: HTTP %d: %s", e.Status, e.Message)
}

func (e *RemoteError) Is(target error) bool { return target == ErrRemote }

// URLConflictError is reported when a URL is already tracked under another company.
type URLConflictError struct {
	URL         string
	CompanyID   string
	CompanyName string
}

func (e *URLConflictError) Error() string {
	return fmt.Sprintf("URL %s is already tracked under company %s", e.URL, e.CompanyName)
}

func (e *URLConflictError) Is(target error) bool { return target == ErrAlreadyExists }
