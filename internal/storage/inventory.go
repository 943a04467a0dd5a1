package storage

import (
	"context"
	"errors"
	"fmt"
	"path"

	"github.com/auroraos/backend/internal/bridge"
	"github.com/auroraos/backend/internal/shared/paths"
	"go.uber.org/zap"
)

// GetStorageStatistics totals the files under the managed root.
// Without native capability it reports zero.
func (r *Router) GetStorageStatistics(ctx context.Context) Statistics {
	stats := emptyStatistics()
	r.scan(ctx, func(e StorageEntry) {
		stats.Count++
		stats.Size += e.Size

		u := stats.ByCategory[e.Category]
		u.Count++
		u.Size += e.Size
		stats.ByCategory[e.Category] = u
	})
	return stats
}

// ListStorageEntries lists the files under the managed root.
// Without native capability the list is empty.
func (r *Router) ListStorageEntries(ctx context.Context) []StorageEntry {
	entries := []StorageEntry{}
	r.scan(ctx, func(e StorageEntry) {
		entries = append(entries, e)
	})
	return entries
}

// scan visits every regular file in each category directory. Missing
// directories count as empty; unreadable entries are skipped.
func (r *Router) scan(ctx context.Context, visit func(StorageEntry)) {
	if !r.CapabilityCheck() {
		return
	}

	for _, category := range Categories() {
		if ctx.Err() != nil {
			return
		}

		dir := paths.CategoryDir(string(category))
		listing, err := r.bridge.Readdir(ctx, dir, bridge.DirectoryData)
		if err != nil {
			if !errors.Is(err, bridge.ErrNotFound) {
				r.skip(dir, err)
			}
			continue
		}

		for _, de := range listing {
			if de.IsDir {
				continue
			}
			p := path.Join(dir, de.Name)
			st, err := r.bridge.Stat(ctx, p, bridge.DirectoryData)
			if err != nil {
				r.skip(p, err)
				continue
			}
			if st.IsDir {
				continue
			}
			visit(StorageEntry{
				Name:     de.Name,
				Path:     p,
				Category: category,
				Size:     st.Size,
			})
		}
	}
}

func (r *Router) skip(p string, err error) {
	r.metrics.IncScanErrors()
	r.log.Debug("Scan entry skipped",
		zap.String("path", p),
		zap.Error(fmt.Errorf("%w: %w", ErrScanEntryFailed, err)),
	)
}
