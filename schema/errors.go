package schema

import "errors"

var (
	// ErrInvalidRequest indicates a malformed request payload.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrTabNotFound indicates a requested tab could not be found.
	ErrTabNotFound = errors.New("tab not found")
	// ErrDocumentNotFound indicates a requested document could not be found.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrSettingNotFound indicates no setting carries the requested title.
	ErrSettingNotFound = errors.New("setting not found")
	// ErrTroveLocked indicates another process holds the trove lock.
	ErrTroveLocked = errors.New("trove is locked by another process")
)
