package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/auroraos/backend/internal/bridge"
	"github.com/auroraos/backend/internal/infrastructure/logging"
	"go.uber.org/zap"
)

// chunkCount returns how many bridge calls a file of size needs; at least one
func chunkCount(size int64, chunkSize int) int {
	if size <= 0 {
		return 1
	}
	cs := int64(chunkSize)
	return int((size + cs - 1) / cs)
}

// writeChunked writes f to dest as one create followed by ordered appends.
// Only one chunk is held in memory at a time. A failure leaves the partial
// file in place.
func (r *Router) writeChunked(ctx context.Context, log *logging.Logger, f File, dest string) error {
	if f.Content == nil && f.Size > 0 {
		return writeFailed(ErrNoContent, dest, -1, nil)
	}

	chunks := chunkCount(f.Size, r.chunkSize)
	bufSize := int64(r.chunkSize)
	if f.Size < bufSize {
		bufSize = max(f.Size, 0)
	}
	buf := make([]byte, bufSize)

	var src io.Reader
	if f.Content != nil {
		src = io.NewSectionReader(f.Content, 0, f.Size)
	}

	remaining := max(f.Size, 0)
	for i := 0; i < chunks; i++ {
		n := min(remaining, int64(len(buf)))
		data := buf[:n]
		if n > 0 {
			if _, err := io.ReadFull(src, data); err != nil {
				return writeFailed(ErrChunkedWriteFailed, dest, i, fmt.Errorf("read chunk: %w", err))
			}
		}
		remaining -= n

		op, err := r.writeChunk(ctx, i, dest, bridge.EncodeChunk(data))
		if err != nil {
			return writeFailed(ErrChunkedWriteFailed, dest, i, err)
		}
		r.metrics.IncChunkWrite(op)
		log.Debug("Chunk written",
			zap.Int("chunk", i),
			zap.Int("chunks", chunks),
			zap.Int64("bytes", n),
		)

		if i < chunks-1 {
			r.yield()
		}
	}
	return nil
}

// writeChunk creates the file for chunk 0 and appends every later chunk
func (r *Router) writeChunk(ctx context.Context, index int, dest, data string) (string, error) {
	if index == 0 {
		return "writeFile", r.bridge.WriteFile(ctx, bridge.WriteOptions{
			Path:      dest,
			Data:      data,
			Directory: bridge.DirectoryData,
			Recursive: true,
		})
	}
	return "appendFile", r.bridge.AppendFile(ctx, bridge.AppendOptions{
		Path:      dest,
		Data:      data,
		Directory: bridge.DirectoryData,
	})
}
