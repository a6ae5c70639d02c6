package domain

import "errors"

// Sentinel errors for the failure modes the API distinguishes. Repositories
// and services wrap these with %w so callers can branch with errors.Is.
var (
	// ErrNotFound is returned whenever a referenced record does not exist.
	// Every lookup must surface this explicitly; no caller may assume a
	// record is present.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateAgreement is returned when a user already has an
	// agreement on file, regardless of its status.
	ErrDuplicateAgreement = errors.New("agreement already exists for user")

	// ErrUnauthorized means the request carried no usable credential.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden means the caller is authenticated but their role does
	// not admit the operation.
	ErrForbidden = errors.New("forbidden")

	// ErrValidation means a required field is missing or malformed.
	ErrValidation = errors.New("validation failed")

	// ErrUpstream wraps failures from the external payment gateway.
	ErrUpstream = errors.New("upstream error")

	// ErrAgreementClosed is returned when accepting or rejecting an
	// agreement that already left the pending state.
	ErrAgreementClosed = errors.New("agreement already decided")
)
