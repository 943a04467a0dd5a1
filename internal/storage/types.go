package storage

import (
	"io"

	"github.com/auroraos/backend/internal/shared/paths"
)

const (
	// DefaultThreshold is the size at which native storage is recommended
	DefaultThreshold int64 = 1 << 20
	// DefaultChunkSize is the raw (pre-base64) size of one chunk
	DefaultChunkSize = 1 << 20
	// DefaultSessionBudget caps the bytes held by live ephemeral handles
	DefaultSessionBudget int64 = 256 << 20
)

// Category is a managed subdirectory chosen from the MIME type
type Category string

const (
	CategoryVideos    Category = paths.Videos
	CategoryAudio     Category = paths.Audio
	CategoryImages    Category = paths.Images
	CategoryDocuments Category = paths.Documents
)

// Categories returns every category in scan order
func Categories() []Category {
	dirs := paths.CategoryDirs()
	out := make([]Category, len(dirs))
	for i, d := range dirs {
		out[i] = Category(d)
	}
	return out
}

// Strategy names how a file was stored
type Strategy string

const (
	StrategyEphemeral Strategy = "ephemeral"
	StrategyCopy      Strategy = "copy"
	StrategyChunked   Strategy = "chunked"
)

// File is a file to save. Content is read only by the chunked strategy
// and retained by the ephemeral one; a copy reads from SourcePath instead.
type File struct {
	Name     string
	Size     int64
	MimeType string
	Content  io.ReaderAt
	// SourcePath is a native locator of the same bytes, if the shell has one
	SourcePath string
}

// StoredFileReference identifies saved bytes
type StoredFileReference struct {
	URI      string `json:"uri"`
	Size     int64  `json:"size"`
	MimeType string `json:"mimeType"`

	Path      string   `json:"path,omitempty"`
	Category  Category `json:"category"`
	Strategy  Strategy `json:"strategy"`
	Ephemeral bool     `json:"ephemeral"`
}

// StorageEntry is one file found under the managed root
type StorageEntry struct {
	Name     string   `json:"name"`
	Path     string   `json:"path"`
	Category Category `json:"category"`
	Size     int64    `json:"size"`
}

// Usage is a count and byte total
type Usage struct {
	Count int   `json:"count"`
	Size  int64 `json:"size"`
}

// Statistics summarizes the managed root
type Statistics struct {
	Count      int                `json:"count"`
	Size       int64              `json:"size"`
	ByCategory map[Category]Usage `json:"byCategory"`
}

func emptyStatistics() Statistics {
	stats := Statistics{ByCategory: make(map[Category]Usage, 4)}
	for _, c := range Categories() {
		stats.ByCategory[c] = Usage{}
	}
	return stats
}
