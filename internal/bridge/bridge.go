package bridge

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when a path does not exist on the device.
	ErrNotFound = errors.New("bridge: no such file or directory")
	// ErrUnavailable is returned by every filesystem call when native storage is absent.
	ErrUnavailable = errors.New("bridge: native storage unavailable")
	// ErrInvalidPath is returned for paths the bridge refuses to resolve.
	ErrInvalidPath = errors.New("bridge: invalid path")
)

// Directory names a well-known device storage location
type Directory string

const (
	DirectoryData      Directory = "DATA"
	DirectoryDocuments Directory = "DOCUMENTS"
	DirectoryCache     Directory = "CACHE"
	DirectoryExternal  Directory = "EXTERNAL"
)

// CopyOptions describes a native-to-native copy.
// When ToDirectory is empty the destination is resolved against Directory.
type CopyOptions struct {
	From        string    `json:"from"`
	To          string    `json:"to"`
	Directory   Directory `json:"directory,omitempty"`
	ToDirectory Directory `json:"toDirectory,omitempty"`
}

// WriteOptions creates or truncates a file with base64 data
type WriteOptions struct {
	Path      string    `json:"path"`
	Data      string    `json:"data"`
	Directory Directory `json:"directory,omitempty"`
	Recursive bool      `json:"recursive"`
}

// AppendOptions appends base64 data to a file
type AppendOptions struct {
	Path      string    `json:"path"`
	Data      string    `json:"data"`
	Directory Directory `json:"directory,omitempty"`
}

// DirEntry is one readdir result
type DirEntry struct {
	Name  string `json:"name"`
	IsDir bool   `json:"isDir"`
}

// FileStat is a stat result
type FileStat struct {
	IsDir bool      `json:"isDir"`
	Size  int64     `json:"size"`
	MTime time.Time `json:"mtime"`
	URI   string    `json:"uri"`
}

// Bridge is the host/native storage capability consumed by the storage router
type Bridge interface {
	IsNativePlatform() bool
	Copy(ctx context.Context, opts CopyOptions) error
	WriteFile(ctx context.Context, opts WriteOptions) error
	AppendFile(ctx context.Context, opts AppendOptions) error
	GetURI(ctx context.Context, path string, dir Directory) (string, error)
	Readdir(ctx context.Context, path string, dir Directory) ([]DirEntry, error)
	Stat(ctx context.Context, path string, dir Directory) (FileStat, error)
	DeleteFile(ctx context.Context, path string, dir Directory) error
	// ConvertFileSrc turns a platform URI into a host-renderable URL. It never performs I/O.
	ConvertFileSrc(uri string) string
}
