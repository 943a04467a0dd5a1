package storage

import (
	"errors"
	"fmt"
)

var (
	// ErrCapabilityUnavailable marks the non-native branch. It is never returned.
	ErrCapabilityUnavailable = errors.New("native storage unavailable")
	// ErrCopyFailed means both native copy attempts failed
	ErrCopyFailed = errors.New("native copy failed")
	// ErrChunkedWriteFailed means a create or append call failed
	ErrChunkedWriteFailed = errors.New("chunked write failed")
	// ErrURIUnavailable means the bytes were written but no URI could be obtained
	ErrURIUnavailable = errors.New("stored file uri unavailable")
	// ErrScanEntryFailed marks an entry skipped during a scan. Logged, never returned.
	ErrScanEntryFailed = errors.New("scan entry failed")
	// ErrDeleteFailed marks a failed native delete. Logged, never returned.
	ErrDeleteFailed = errors.New("delete failed")
	// ErrNoContent means a save needed bytes but File.Content was nil
	ErrNoContent = errors.New("file has no content")
	// ErrSessionFull means an ephemeral save would exceed the session byte budget
	ErrSessionFull = errors.New("session storage budget exceeded")
)

// StorageWriteFailed is returned by SaveFile when bytes could not be stored
type StorageWriteFailed struct {
	// Kind is ErrCopyFailed, ErrChunkedWriteFailed, ErrURIUnavailable, ErrNoContent
	// or ErrSessionFull
	Kind error
	// Path is the managed destination path
	Path string
	// Chunk is the failing chunk index for chunked writes, -1 otherwise
	Chunk int
	Err   error
}

func (e *StorageWriteFailed) Error() string {
	if e.Chunk >= 0 {
		return fmt.Sprintf("%v: %s (chunk %d): %v", e.Kind, e.Path, e.Chunk, e.Err)
	}
	if e.Err == nil {
		return fmt.Sprintf("%v: %s", e.Kind, e.Path)
	}
	return fmt.Sprintf("%v: %s: %v", e.Kind, e.Path, e.Err)
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As
func (e *StorageWriteFailed) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func writeFailed(kind error, path string, chunk int, err error) *StorageWriteFailed {
	return &StorageWriteFailed{Kind: kind, Path: path, Chunk: chunk, Err: err}
}
