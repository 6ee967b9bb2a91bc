package domain

import "errors"

var (
	// ErrIndexNotFound is returned when an operation targets an unknown index
	ErrIndexNotFound = errors.New("index not found")
	// ErrDocumentNotFound is returned when a document id does not exist in an index
	ErrDocumentNotFound = errors.New("document not found")
	// ErrBadRequest marks invalid client input such as unknown query parameters
	ErrBadRequest = errors.New("bad request")
	// ErrPayload marks a request body that could not be read or decoded
	ErrPayload = errors.New("invalid payload")
	// ErrBackendUnavailable is returned when the update queue cannot accept work
	ErrBackendUnavailable = errors.New("backend unavailable")
	// ErrPrimaryKey marks a missing, conflicting or invalid primary key
	ErrPrimaryKey = errors.New("primary key error")
)
