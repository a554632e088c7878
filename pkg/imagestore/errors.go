package imagestore

import "errors"

var (
	// ErrStoreClosed is returned by Save after Close.
	ErrStoreClosed = errors.New("imagestore: store closed")
	// ErrInvalidJob is recorded for jobs missing images or paths.
	ErrInvalidJob = errors.New("imagestore: invalid job")
)
