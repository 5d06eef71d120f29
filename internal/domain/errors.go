package domain

import "errors"

// ErrorKind classifies failures so the API layer can map them to status codes
type ErrorKind int

const (
	KindInternal        ErrorKind = iota // Unclassified, reported as a generic server error
	KindUnauthenticated                  // Missing or invalid credentials
	KindForbidden                        // Role or ownership mismatch
	KindNotFound                         // Resource absent
	KindValidation                       // Missing or malformed input
	KindConflict                         // Uniqueness violation
	KindUploadFailed                     // Media storage failure
)

// Error is a typed failure carrying a client-safe message
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error // Underlying cause, never shown to clients
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the kind of err, KindInternal for anything unclassified
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

func UnauthenticatedError(msg string) error { return &Error{Kind: KindUnauthenticated, Message: msg} }
func ForbiddenError(msg string) error       { return &Error{Kind: KindForbidden, Message: msg} }
func NotFoundError(msg string) error        { return &Error{Kind: KindNotFound, Message: msg} }
func ValidationError(msg string) error      { return &Error{Kind: KindValidation, Message: msg} }
func ConflictError(msg string) error        { return &Error{Kind: KindConflict, Message: msg} }

// UploadFailedError wraps a storage failure
func UploadFailedError(err error) error {
	return &Error{Kind: KindUploadFailed, Message: "File upload failed", Err: err}
}

// InternalError wraps an unexpected failure behind a stable message
func InternalError(err error) error {
	return &Error{Kind: KindInternal, Message: "Server error", Err: err}
}
