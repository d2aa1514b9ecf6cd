package dbhelper

import "errors"

var (
	// ErrNotFound maps to sql.ErrNoRows for writes, where the driver only
	// reports affected-row counts.
	ErrNotFound = errors.New("record not found")

	// ErrStaleStatus means a compare-and-swap matched zero rows: another
	// writer moved the status first and the caller must re-read.
	ErrStaleStatus = errors.New("status changed by another writer")
)
