package storage

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/auroraos/backend/internal/shared/id"
)

// HandleScheme prefixes every ephemeral handle URI
const HandleScheme = "blob:aurora/"

// HandleURI returns the ephemeral URI for a handle ID
func HandleURI(handle id.HandleID) string {
	return HandleScheme + handle.String()
}

// IsHandleURI reports whether uri looks like an ephemeral handle
func IsHandleURI(uri string) bool {
	return strings.HasPrefix(uri, HandleScheme)
}

// Ephemeral is a read view of a live ephemeral handle
type Ephemeral struct {
	Name     string
	MimeType string
	Size     int64
	Created  time.Time
	Content  *io.SectionReader
}

type ephemeral struct {
	name     string
	mimeType string
	size     int64
	created  time.Time
	content  io.ReaderAt
}

// sessionUsage is the size of a session after a change
type sessionUsage struct {
	handles int
	bytes   int64
}

// sessionStore holds the handles of one session; handle IDs are never reused.
// The bytes held by live handles never exceed budget.
type sessionStore struct {
	mu      sync.Mutex
	handles map[id.HandleID]*ephemeral
	bytes   int64
	budget  int64
}

func newSessionStore(budget int64) *sessionStore {
	return &sessionStore{handles: make(map[id.HandleID]*ephemeral), budget: budget}
}

func (s *sessionStore) add(handle id.HandleID, e *ephemeral) (sessionUsage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e.size > s.budget-s.bytes {
		return s.usageLocked(), fmt.Errorf("%d bytes requested, %d of %d free",
			e.size, s.budget-s.bytes, s.budget)
	}
	s.handles[handle] = e
	s.bytes += e.size
	return s.usageLocked(), nil
}

// fits reports whether size more bytes would stay within the budget
func (s *sessionStore) fits(size int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return size <= s.budget-s.bytes
}

func (s *sessionStore) lookup(uri string) (*ephemeral, bool) {
	if !IsHandleURI(uri) {
		return nil, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.handles[id.HandleID(strings.TrimPrefix(uri, HandleScheme))]
	return e, ok
}

// release drops a handle and closes its content when it is closable
func (s *sessionStore) release(uri string) (bool, sessionUsage) {
	if !IsHandleURI(uri) {
		return false, s.usage()
	}
	handle := id.HandleID(strings.TrimPrefix(uri, HandleScheme))

	s.mu.Lock()
	e, ok := s.handles[handle]
	if ok {
		delete(s.handles, handle)
		s.bytes -= e.size
	}
	usage := s.usageLocked()
	s.mu.Unlock()

	if ok {
		closeContent(e.content)
	}
	return ok, usage
}

func (s *sessionStore) clear() int {
	s.mu.Lock()
	handles := s.handles
	s.handles = make(map[id.HandleID]*ephemeral)
	s.bytes = 0
	s.mu.Unlock()

	for _, e := range handles {
		closeContent(e.content)
	}
	return len(handles)
}

func (s *sessionStore) usage() sessionUsage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.usageLocked()
}

func (s *sessionStore) usageLocked() sessionUsage {
	return sessionUsage{handles: len(s.handles), bytes: s.bytes}
}

func closeContent(r io.ReaderAt) {
	if c, ok := r.(io.Closer); ok {
		_ = c.Close()
	}
}
