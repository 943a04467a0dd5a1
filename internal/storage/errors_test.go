package storage

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStorageWriteFailedUnwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := error(writeFailed(ErrChunkedWriteFailed, "aurora-files/videos/x.mp4", 2, cause))

	assert.ErrorIs(t, err, ErrChunkedWriteFailed)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrCopyFailed)

	var wf *StorageWriteFailed
	assert.True(t, errors.As(err, &wf))
	assert.Equal(t, 2, wf.Chunk)
	assert.Equal(t, "chunked write failed: aurora-files/videos/x.mp4 (chunk 2): disk full", err.Error())
}

func TestStorageWriteFailedMessages(t *testing.T) {
	assert.Equal(t, "file has no content: p", writeFailed(ErrNoContent, "p", -1, nil).Error())
	assert.Equal(t, "native copy failed: p: boom", writeFailed(ErrCopyFailed, "p", -1, errors.New("boom")).Error())
}
