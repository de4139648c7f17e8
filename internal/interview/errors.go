package interview

import "errors"

var (
	// ErrInvalidReference: creating a session against an unknown
	// candidate or vacancy id.
	ErrInvalidReference = errors.New("invalid candidate or vacancy reference")

	// ErrNotFound: unknown session id.
	ErrNotFound = errors.New("interview not found")

	// ErrAlreadyClosed: opening a session whose status is terminal.
	ErrAlreadyClosed = errors.New("interview already closed")

	// ErrSessionClosed: submitting to a terminal session. The message is
	// rejected, never queued.
	ErrSessionClosed = errors.New("interview session is closed")

	// ErrStoreConflict: the optimistic turn check failed; someone else
	// wrote the session record between our read and write.
	ErrStoreConflict = errors.New("concurrent interview state write")

	// ErrDuplicateScore: a category already holds its write-once score.
	ErrDuplicateScore = errors.New("stage already scored")

	// ErrInsufficientData: aggregation with zero stage scores.
	ErrInsufficientData = errors.New("no stage scores to aggregate")

	// ErrConnectionBusy: the session already has a live connection.
	ErrConnectionBusy = errors.New("interview already has an active connection")
)
