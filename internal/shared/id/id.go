// Package id provides ID generation for the storage backend.
//
// ULIDs identify ephemeral session handles, requests and trace spans. They
// sort by creation time, which keeps handle listings and logs readable.
//
// Stored file names use a separate short base36 suffix (see RandomBase36)
// because their format is fixed by the on-device layout.
package id

import (
	"crypto/rand"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// HandleID identifies an ephemeral in-session file handle
type HandleID string

// RequestID identifies an API request
type RequestID string

// SpanID identifies a traced operation
type SpanID string

const (
	RequestPrefix = "req"
	SpanPrefix    = "span"
)

const base36Alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// Generator generates ULIDs and short random suffixes from one entropy source
type Generator struct {
	entropy   io.Reader
	entropyMu sync.Mutex
}

var (
	defaultGenerator *Generator
	once             sync.Once
)

// Default returns the shared generator backed by crypto/rand
func Default() *Generator {
	once.Do(func() {
		defaultGenerator = NewGenerator()
	})
	return defaultGenerator
}

// NewGenerator creates a new generator with cryptographically secure entropy
func NewGenerator() *Generator {
	return &Generator{entropy: rand.Reader}
}

// NewGeneratorWithEntropy creates a generator with a custom entropy source.
// Useful for deterministic tests.
func NewGeneratorWithEntropy(entropy io.Reader) *Generator {
	return &Generator{entropy: entropy}
}

// Generate creates a new ULID
func (g *Generator) Generate() ulid.ULID {
	g.entropyMu.Lock()
	defer g.entropyMu.Unlock()

	return ulid.MustNew(ulid.Timestamp(time.Now()), g.entropy)
}

// GenerateString creates a new ULID as a string
func (g *Generator) GenerateString() string {
	return g.Generate().String()
}

// GenerateWithPrefix creates a prefixed ULID string
func (g *Generator) GenerateWithPrefix(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, g.GenerateString())
}

// RandomBase36 returns n lowercase base36 characters.
// Bytes >= 252 are rejected so every character is equally likely.
func (g *Generator) RandomBase36(n int) (string, error) {
	g.entropyMu.Lock()
	defer g.entropyMu.Unlock()

	var sb strings.Builder
	sb.Grow(n)
	buf := make([]byte, n)
	for sb.Len() < n {
		if _, err := io.ReadFull(g.entropy, buf); err != nil {
			return "", fmt.Errorf("read entropy: %w", err)
		}
		for _, b := range buf {
			if b >= 252 {
				continue
			}
			sb.WriteByte(base36Alphabet[int(b)%36])
			if sb.Len() == n {
				break
			}
		}
	}
	return sb.String(), nil
}

// NewRequestID generates a new request ID
func NewRequestID() RequestID {
	return RequestID(Default().GenerateWithPrefix(RequestPrefix))
}

// NewSpanID generates a new span ID
func NewSpanID() SpanID {
	return SpanID(Default().GenerateWithPrefix(SpanPrefix))
}

func (id HandleID) String() string  { return string(id) }
func (id RequestID) String() string { return string(id) }
func (id SpanID) String() string    { return string(id) }

// IsValid checks if an ID string is a canonical ULID
func IsValid(id string) bool {
	_, err := ulid.ParseStrict(id)
	return err == nil
}
