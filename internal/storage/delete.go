package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/auroraos/backend/internal/bridge"
	"github.com/auroraos/backend/internal/shared/paths"
	"go.uber.org/zap"
)

// DeleteResult reports what DeleteFile did
type DeleteResult string

const (
	// DeleteDeleted means a native file was removed
	DeleteDeleted DeleteResult = "deleted"
	// DeleteReleased means an ephemeral handle was released
	DeleteReleased DeleteResult = "released"
	// DeleteSkipped means there was nothing to delete
	DeleteSkipped DeleteResult = "skipped"
	// DeleteFailed means the native delete failed; the failure was logged
	DeleteFailed DeleteResult = "failed"
)

// DeleteFile removes the bytes behind uri. It never fails: unknown, foreign
// and already-deleted references are skipped, and native errors are logged.
func (r *Router) DeleteFile(ctx context.Context, uri string) DeleteResult {
	result := r.deleteFile(ctx, uri)
	r.metrics.IncDelete(string(result))
	return result
}

func (r *Router) deleteFile(ctx context.Context, uri string) DeleteResult {
	if released, usage := r.sessions.release(uri); released {
		r.metrics.SetEphemeral(usage.handles, usage.bytes)
		r.log.Debug("Ephemeral handle released", zap.String("uri", uri))
		return DeleteReleased
	}

	if !r.CapabilityCheck() {
		return DeleteSkipped
	}

	root, err := r.managedRootURI(ctx)
	if err != nil {
		r.log.Warn("Delete failed",
			zap.String("uri", uri),
			zap.Error(fmt.Errorf("%w: resolve managed root: %w", ErrDeleteFailed, err)),
		)
		return DeleteFailed
	}

	rel, ok := paths.RelativeFromURI(uri, root)
	if !ok {
		r.log.Debug("Delete outside managed root ignored", zap.String("uri", uri))
		return DeleteSkipped
	}

	err = r.bridge.DeleteFile(ctx, rel, bridge.DirectoryData)
	switch {
	case err == nil:
		r.log.Info("File deleted", zap.String("path", rel))
		return DeleteDeleted
	case errors.Is(err, bridge.ErrNotFound):
		r.log.Debug("File already gone", zap.String("path", rel))
		return DeleteSkipped
	default:
		r.log.Warn("Delete failed",
			zap.String("path", rel),
			zap.Error(fmt.Errorf("%w: %w", ErrDeleteFailed, err)),
		)
		return DeleteFailed
	}
}

// managedRootURI returns the platform URI of the managed root in DATA.
// Only a successful lookup is cached.
func (r *Router) managedRootURI(ctx context.Context) (string, error) {
	r.rootMu.Lock()
	defer r.rootMu.Unlock()

	if r.rootURI != "" {
		return r.rootURI, nil
	}
	uri, err := r.bridge.GetURI(ctx, paths.Root, bridge.DirectoryData)
	if err != nil {
		return "", err
	}
	r.rootURI = uri
	return uri, nil
}
