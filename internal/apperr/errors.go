package apperr

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("conflict")
	ErrAlreadyExists = errors.New("already exists")

	// ErrNotContact marks a document that is outside the contact
	// corpus (missing the contact tag). Schedulers treat it as a
	// silent no-op, never as a failure.
	ErrNotContact = errors.New("not a contact document")

	// ErrMissingName marks a contact document without a title keyword.
	// Fatal for the current call: a reminder is never written with a
	// blank name.
	ErrMissingName = errors.New("contact document has no title")

	// ErrBadPropertyValue marks a property that is present but cannot
	// be parsed (e.g. a malformed birthday date).
	ErrBadPropertyValue = errors.New("malformed property value")
)
