package bridge

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// DefaultFileHost is the URL prefix the WebView serves local files under
const DefaultFileHost = "http://localhost/_capacitor_file_"

const fileScheme = "file://"

// LocalConfig configures a LocalBridge
type LocalConfig struct {
	// DataDir is the device root; each Directory maps to a subdirectory of it.
	DataDir string
	// FileHost prefixes converted file URIs. Defaults to DefaultFileHost.
	FileHost string
}

// LocalBridge emulates device storage on an afero filesystem.
// Production uses afero.NewOsFs; tests use afero.NewMemMapFs.
type LocalBridge struct {
	fs       afero.Fs
	dirs     map[Directory]string
	fileHost string
}

var _ Bridge = (*LocalBridge)(nil)

// NewLocalBridge creates a bridge whose directories live under cfg.DataDir
func NewLocalBridge(fs afero.Fs, cfg LocalConfig) *LocalBridge {
	root := cfg.DataDir
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}

	return &LocalBridge{
		fs: fs,
		dirs: map[Directory]string{
			DirectoryData:      filepath.Join(root, "files"),
			DirectoryDocuments: filepath.Join(root, "documents"),
			DirectoryCache:     filepath.Join(root, "cache"),
			DirectoryExternal:  filepath.Join(root, "external"),
		},
		fileHost: normalizeHost(cfg.FileHost),
	}
}

// IsNativePlatform reports native capability
func (b *LocalBridge) IsNativePlatform() bool {
	return true
}

// resolve maps a bridge path to a filesystem path.
// Absolute paths and file:// URIs must lie inside one of the device
// directories; relative paths need a directory.
func (b *LocalBridge) resolve(p string, dir Directory) (string, error) {
	if strings.HasPrefix(p, fileScheme) {
		p = strings.TrimPrefix(p, fileScheme)
	}
	if filepath.IsAbs(p) {
		full := filepath.Clean(p)
		for _, base := range b.dirs {
			if within(base, full) {
				return full, nil
			}
		}
		return "", fmt.Errorf("%w: %q is outside the device directories", ErrInvalidPath, p)
	}
	if dir == "" {
		return "", fmt.Errorf("%w: relative path %q without directory", ErrInvalidPath, p)
	}

	base, ok := b.dirs[dir]
	if !ok {
		return "", fmt.Errorf("%w: unknown directory %q", ErrInvalidPath, dir)
	}
	full := filepath.Join(base, filepath.FromSlash(p))
	if !within(base, full) {
		return "", fmt.Errorf("%w: %q escapes %s", ErrInvalidPath, p, dir)
	}
	return full, nil
}

func within(base, full string) bool {
	return full == base || strings.HasPrefix(full, base+string(filepath.Separator))
}

func mapNotExist(err error) error {
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	return err
}

// Copy copies a file, creating the destination's parent directories
func (b *LocalBridge) Copy(ctx context.Context, opts CopyOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	src, err := b.resolve(opts.From, opts.Directory)
	if err != nil {
		return err
	}
	toDir := opts.ToDirectory
	if toDir == "" {
		toDir = opts.Directory
	}
	dst, err := b.resolve(opts.To, toDir)
	if err != nil {
		return err
	}

	in, err := b.fs.Open(src)
	if err != nil {
		return mapNotExist(err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return mapNotExist(err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%w: %s is not a regular file", ErrInvalidPath, opts.From)
	}

	if err := b.fs.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	out, err := b.fs.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy %s: %w", opts.From, err)
	}
	return out.Close()
}

// WriteFile creates or truncates a file
func (b *LocalBridge) WriteFile(ctx context.Context, opts WriteOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p, err := b.resolve(opts.Path, opts.Directory)
	if err != nil {
		return err
	}
	data, err := DecodeChunk(opts.Data)
	if err != nil {
		return err
	}

	parent := filepath.Dir(p)
	if opts.Recursive {
		if err := b.fs.MkdirAll(parent, 0o755); err != nil {
			return fmt.Errorf("create directory: %w", err)
		}
	} else if _, err := b.fs.Stat(parent); err != nil {
		return mapNotExist(err)
	}

	return afero.WriteFile(b.fs, p, data, 0o644)
}

// AppendFile appends to a file, creating it when missing
func (b *LocalBridge) AppendFile(ctx context.Context, opts AppendOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p, err := b.resolve(opts.Path, opts.Directory)
	if err != nil {
		return err
	}
	data, err := DecodeChunk(opts.Data)
	if err != nil {
		return err
	}

	f, err := b.fs.OpenFile(p, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return mapNotExist(err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// GetURI returns the file:// URI of a path
func (b *LocalBridge) GetURI(ctx context.Context, p string, dir Directory) (string, error) {
	full, err := b.resolve(p, dir)
	if err != nil {
		return "", err
	}
	return fileScheme + filepath.ToSlash(full), nil
}

// Readdir lists a directory
func (b *LocalBridge) Readdir(ctx context.Context, p string, dir Directory) ([]DirEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	full, err := b.resolve(p, dir)
	if err != nil {
		return nil, err
	}
	infos, err := afero.ReadDir(b.fs, full)
	if err != nil {
		return nil, mapNotExist(err)
	}

	entries := make([]DirEntry, 0, len(infos))
	for _, info := range infos {
		entries = append(entries, DirEntry{Name: info.Name(), IsDir: info.IsDir()})
	}
	return entries, nil
}

// Stat returns size and type of a path
func (b *LocalBridge) Stat(ctx context.Context, p string, dir Directory) (FileStat, error) {
	if err := ctx.Err(); err != nil {
		return FileStat{}, err
	}

	full, err := b.resolve(p, dir)
	if err != nil {
		return FileStat{}, err
	}
	info, err := b.fs.Stat(full)
	if err != nil {
		return FileStat{}, mapNotExist(err)
	}

	return FileStat{
		IsDir: info.IsDir(),
		Size:  info.Size(),
		MTime: info.ModTime(),
		URI:   fileScheme + filepath.ToSlash(full),
	}, nil
}

// DeleteFile removes a file
func (b *LocalBridge) DeleteFile(ctx context.Context, p string, dir Directory) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	full, err := b.resolve(p, dir)
	if err != nil {
		return err
	}
	info, err := b.fs.Stat(full)
	if err != nil {
		return mapNotExist(err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", ErrInvalidPath, p)
	}
	return mapNotExist(b.fs.Remove(full))
}

// ConvertFileSrc rewrites file:// URIs onto the file host; anything else passes through
func (b *LocalBridge) ConvertFileSrc(uri string) string {
	return convertFileSrc(b.fileHost, uri)
}

func convertFileSrc(host, uri string) string {
	if !strings.HasPrefix(uri, fileScheme) {
		return uri
	}
	return host + strings.TrimPrefix(uri, fileScheme)
}

func normalizeHost(host string) string {
	host = strings.TrimSuffix(host, "/")
	if host == "" {
		return DefaultFileHost
	}
	return host
}
