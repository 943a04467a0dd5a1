package storage

import (
	"context"
	"errors"
	"io"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/auroraos/backend/internal/bridge"
	"github.com/auroraos/backend/internal/infrastructure/logging"
	"github.com/auroraos/backend/internal/infrastructure/monitoring"
	"github.com/auroraos/backend/internal/shared/id"
	"github.com/auroraos/backend/internal/shared/paths"
	"go.uber.org/zap"
)

// Options configures a Router. Zero values select the defaults.
type Options struct {
	// Threshold for ShouldUseNativeStorage, in bytes
	Threshold int64
	// ChunkSize is the raw size of each chunk of a chunked write
	ChunkSize int
	// SessionBudget caps the bytes held by ephemeral handles
	SessionBudget int64
	// Yield runs between chunks; defaults to runtime.Gosched
	Yield func()
	// Now stamps generated filenames; defaults to time.Now
	Now func() time.Time
	// IDs generates handle IDs and filename suffixes; defaults to id.Default()
	IDs *id.Generator

	Logger  *logging.Logger
	Metrics *monitoring.Metrics
}

// Router decides where saved files live and performs the writes
type Router struct {
	bridge    bridge.Bridge
	threshold int64
	chunkSize int
	yield     func()
	now       func() time.Time
	ids       *id.Generator
	log       *logging.Logger
	metrics   *monitoring.Metrics
	sessions  *sessionStore

	rootMu  sync.Mutex
	rootURI string
}

// New creates a router over b
func New(b bridge.Bridge, opts Options) *Router {
	if opts.Threshold <= 0 {
		opts.Threshold = DefaultThreshold
	}
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = DefaultChunkSize
	}
	if opts.SessionBudget <= 0 {
		opts.SessionBudget = DefaultSessionBudget
	}
	if opts.Yield == nil {
		opts.Yield = runtime.Gosched
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.IDs == nil {
		opts.IDs = id.Default()
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNop()
	}

	return &Router{
		bridge:    b,
		threshold: opts.Threshold,
		chunkSize: opts.ChunkSize,
		yield:     opts.Yield,
		now:       opts.Now,
		ids:       opts.IDs,
		log:       opts.Logger.Named("storage"),
		metrics:   opts.Metrics,
		sessions:  newSessionStore(opts.SessionBudget),
	}
}

// Threshold returns the native storage recommendation threshold
func (r *Router) Threshold() int64 {
	return r.threshold
}

// CapabilityCheck reports whether native storage is available
func (r *Router) CapabilityCheck() bool {
	return r.bridge.IsNativePlatform()
}

// ShouldUseNativeStorage recommends native storage for large files.
// It is advisory; SaveFile does not consult it.
func (r *Router) ShouldUseNativeStorage(size int64) bool {
	return r.CapabilityCheck() && size >= r.threshold
}

// SaveFile stores f and returns a reference to it.
//
// Without native capability the bytes are kept as an ephemeral handle.
// With capability, a SourcePath is copied natively and anything else is
// written in chunks. Once a native write starts it runs to completion
// even if ctx is cancelled.
func (r *Router) SaveFile(ctx context.Context, f File) (*StoredFileReference, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	category := CategoryFor(f.MimeType)
	if !r.CapabilityCheck() {
		return r.saveEphemeral(f, category)
	}

	name, err := generateFilename(f.Name, r.now(), r.ids)
	if err != nil {
		return nil, err
	}
	dest := paths.Managed(string(category), name)

	strategy := StrategyChunked
	if f.SourcePath != "" {
		strategy = StrategyCopy
	}
	log := r.log.With(
		zap.String("strategy", string(strategy)),
		zap.String("path", dest),
		zap.Int64("size", f.Size),
	)
	timer := monitoring.NewTimer(r.metrics, string(strategy))

	ctx = context.WithoutCancel(ctx)
	size := f.Size
	if strategy == StrategyCopy {
		err = r.copyNative(ctx, log, f.SourcePath, dest)
		if err == nil {
			size = r.copiedSize(ctx, log, dest, size)
		}
	} else {
		err = r.writeChunked(ctx, log, f, dest)
	}
	if err != nil {
		timer.Stop("error", size)
		log.Error("Save failed", zap.Error(err))
		return nil, err
	}

	uri, err := r.bridge.GetURI(ctx, dest, bridge.DirectoryData)
	if err != nil {
		timer.Stop("error", size)
		log.Error("Stored file has no uri", zap.Error(err))
		return nil, writeFailed(ErrURIUnavailable, dest, -1, err)
	}

	timer.Stop("success", size)
	log.Info("File saved", zap.String("uri", uri))

	return &StoredFileReference{
		URI:      uri,
		Size:     size,
		MimeType: f.MimeType,
		Path:     dest,
		Category: category,
		Strategy: strategy,
	}, nil
}

func (r *Router) saveEphemeral(f File, category Category) (*StoredFileReference, error) {
	if f.Content == nil && f.Size > 0 {
		r.metrics.RecordSave(string(StrategyEphemeral), "error", 0, f.Size)
		return nil, writeFailed(ErrNoContent, "", -1, ErrCapabilityUnavailable)
	}

	content := f.Content
	if content == nil {
		content = strings.NewReader("")
	}

	handle := id.HandleID(r.ids.GenerateString())
	usage, err := r.sessions.add(handle, &ephemeral{
		name:     f.Name,
		mimeType: f.MimeType,
		size:     f.Size,
		created:  r.now(),
		content:  content,
	})
	if err != nil {
		r.metrics.RecordSave(string(StrategyEphemeral), "error", 0, f.Size)
		return nil, writeFailed(ErrSessionFull, "", -1, err)
	}
	r.metrics.SetEphemeral(usage.handles, usage.bytes)
	r.metrics.RecordSave(string(StrategyEphemeral), "success", 0, f.Size)

	uri := HandleURI(handle)
	r.log.Debug("Ephemeral handle created",
		zap.String("uri", uri),
		zap.Int64("size", f.Size),
		zap.Int("live", usage.handles),
		zap.Int64("session_bytes", usage.bytes),
	)

	return &StoredFileReference{
		URI:       uri,
		Size:      f.Size,
		MimeType:  f.MimeType,
		Category:  category,
		Strategy:  StrategyEphemeral,
		Ephemeral: true,
	}, nil
}

// copyNative copies src into DATA, retrying once with the destination
// resolved against Directory instead of ToDirectory.
func (r *Router) copyNative(ctx context.Context, log *logging.Logger, src, dest string) error {
	first := r.bridge.Copy(ctx, bridge.CopyOptions{
		From:        src,
		To:          dest,
		ToDirectory: bridge.DirectoryData,
	})
	if first == nil {
		return nil
	}
	log.Warn("Native copy failed, retrying with implicit directory", zap.Error(first))

	second := r.bridge.Copy(ctx, bridge.CopyOptions{
		From:      src,
		To:        dest,
		Directory: bridge.DirectoryData,
	})
	if second == nil {
		return nil
	}
	return writeFailed(ErrCopyFailed, dest, -1, errors.Join(first, second))
}

// copiedSize returns the size of the copy at dest. The caller's claim is
// kept when the stat fails.
func (r *Router) copiedSize(ctx context.Context, log *logging.Logger, dest string, claimed int64) int64 {
	st, err := r.bridge.Stat(ctx, dest, bridge.DirectoryData)
	if err != nil {
		log.Warn("Could not stat copied file", zap.Error(err))
		return claimed
	}
	if st.Size != claimed {
		log.Debug("Copied size differs from reported size",
			zap.Int64("reported", claimed),
			zap.Int64("copied", st.Size),
		)
	}
	return st.Size
}

// OpenEphemeral returns a reader over a live ephemeral handle
func (r *Router) OpenEphemeral(uri string) (Ephemeral, bool) {
	e, ok := r.sessions.lookup(uri)
	if !ok {
		return Ephemeral{}, false
	}
	return Ephemeral{
		Name:     e.name,
		MimeType: e.mimeType,
		Size:     e.size,
		Created:  e.created,
		Content:  io.NewSectionReader(e.content, 0, e.size),
	}, true
}

// SessionFits reports whether a save of size bytes fits the session. Native
// saves always fit.
func (r *Router) SessionFits(size int64) bool {
	return r.CapabilityCheck() || r.sessions.fits(size)
}

// ResolvePlaybackURL turns a stored URI into something the shell can render.
// It performs no I/O.
func (r *Router) ResolvePlaybackURL(uri string) string {
	if !r.CapabilityCheck() {
		return uri
	}
	return r.bridge.ConvertFileSrc(uri)
}

// Close ends the session and releases every ephemeral handle
func (r *Router) Close() error {
	released := r.sessions.clear()
	r.metrics.SetEphemeral(0, 0)
	if released > 0 {
		r.log.Info("Session closed", zap.Int("released", released))
	}
	return nil
}
