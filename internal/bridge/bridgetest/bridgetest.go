// Package bridgetest provides bridge doubles for storage tests.
package bridgetest

import (
	"context"
	"sync"
	"testing"

	"github.com/auroraos/backend/internal/bridge"
	"github.com/stretchr/testify/mock"
)

// MockBridge is a testify mock of bridge.Bridge.
type MockBridge struct {
	mock.Mock
}

var _ bridge.Bridge = (*MockBridge)(nil)

// NewMockBridge creates a native-capable mock whose ConvertFileSrc is the identity.
func NewMockBridge(t *testing.T) *MockBridge {
	t.Helper()
	m := new(MockBridge)

	m.On("IsNativePlatform").Return(true).Maybe()
	m.On("ConvertFileSrc", mock.Anything).Return(func(uri string) string { return uri }).Maybe()

	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// IsNativePlatform mocks the IsNativePlatform method.
func (m *MockBridge) IsNativePlatform() bool {
	return m.Called().Bool(0)
}

// Copy mocks the Copy method.
func (m *MockBridge) Copy(ctx context.Context, opts bridge.CopyOptions) error {
	return m.Called(ctx, opts).Error(0)
}

// WriteFile mocks the WriteFile method.
func (m *MockBridge) WriteFile(ctx context.Context, opts bridge.WriteOptions) error {
	return m.Called(ctx, opts).Error(0)
}

// AppendFile mocks the AppendFile method.
func (m *MockBridge) AppendFile(ctx context.Context, opts bridge.AppendOptions) error {
	return m.Called(ctx, opts).Error(0)
}

// GetURI mocks the GetURI method.
func (m *MockBridge) GetURI(ctx context.Context, path string, dir bridge.Directory) (string, error) {
	args := m.Called(ctx, path, dir)
	return args.String(0), args.Error(1)
}

// Readdir mocks the Readdir method.
func (m *MockBridge) Readdir(ctx context.Context, path string, dir bridge.Directory) ([]bridge.DirEntry, error) {
	args := m.Called(ctx, path, dir)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]bridge.DirEntry), args.Error(1)
}

// Stat mocks the Stat method.
func (m *MockBridge) Stat(ctx context.Context, path string, dir bridge.Directory) (bridge.FileStat, error) {
	args := m.Called(ctx, path, dir)
	return args.Get(0).(bridge.FileStat), args.Error(1)
}

// DeleteFile mocks the DeleteFile method.
func (m *MockBridge) DeleteFile(ctx context.Context, path string, dir bridge.Directory) error {
	return m.Called(ctx, path, dir).Error(0)
}

// ConvertFileSrc mocks the ConvertFileSrc method.
func (m *MockBridge) ConvertFileSrc(uri string) string {
	args := m.Called(uri)
	if fn, ok := args.Get(0).(func(string) string); ok {
		return fn(uri)
	}
	return args.String(0)
}

// Call is one recorded bridge invocation.
type Call struct {
	Op   string
	Path string
	// Data is the base64 payload of writes and appends
	Data string
}

// Recorder wraps a bridge, records every call and can inject failures.
type Recorder struct {
	bridge.Bridge

	mu       sync.Mutex
	calls    []Call
	failures map[string]failure
	counts   map[string]int
}

type failure struct {
	nth int
	err error
}

// NewRecorder wraps inner.
func NewRecorder(inner bridge.Bridge) *Recorder {
	return &Recorder{
		Bridge:   inner,
		failures: map[string]failure{},
		counts:   map[string]int{},
	}
}

// FailOn makes the nth call (1-based) of op return err. nth 0 fails every call.
func (r *Recorder) FailOn(op string, nth int, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures[op] = failure{nth: nth, err: err}
}

// Calls returns the recorded calls in order.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

// Ops returns the recorded operation names in order.
func (r *Recorder) Ops() []string {
	calls := r.Calls()
	ops := make([]string, len(calls))
	for i, c := range calls {
		ops[i] = c.Op
	}
	return ops
}

// Count returns how many times op was called.
func (r *Recorder) Count(op string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counts[op]
}

func (r *Recorder) record(c Call) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.calls = append(r.calls, c)
	r.counts[c.Op]++
	if f, ok := r.failures[c.Op]; ok && (f.nth == 0 || f.nth == r.counts[c.Op]) {
		return f.err
	}
	return nil
}

func (r *Recorder) Copy(ctx context.Context, opts bridge.CopyOptions) error {
	if err := r.record(Call{Op: "copy", Path: opts.To}); err != nil {
		return err
	}
	return r.Bridge.Copy(ctx, opts)
}

func (r *Recorder) WriteFile(ctx context.Context, opts bridge.WriteOptions) error {
	if err := r.record(Call{Op: "writeFile", Path: opts.Path, Data: opts.Data}); err != nil {
		return err
	}
	return r.Bridge.WriteFile(ctx, opts)
}

func (r *Recorder) AppendFile(ctx context.Context, opts bridge.AppendOptions) error {
	if err := r.record(Call{Op: "appendFile", Path: opts.Path, Data: opts.Data}); err != nil {
		return err
	}
	return r.Bridge.AppendFile(ctx, opts)
}

func (r *Recorder) GetURI(ctx context.Context, path string, dir bridge.Directory) (string, error) {
	if err := r.record(Call{Op: "getUri", Path: path}); err != nil {
		return "", err
	}
	return r.Bridge.GetURI(ctx, path, dir)
}

func (r *Recorder) Readdir(ctx context.Context, path string, dir bridge.Directory) ([]bridge.DirEntry, error) {
	if err := r.record(Call{Op: "readdir", Path: path}); err != nil {
		return nil, err
	}
	return r.Bridge.Readdir(ctx, path, dir)
}

func (r *Recorder) Stat(ctx context.Context, path string, dir bridge.Directory) (bridge.FileStat, error) {
	if err := r.record(Call{Op: "stat", Path: path}); err != nil {
		return bridge.FileStat{}, err
	}
	return r.Bridge.Stat(ctx, path, dir)
}

func (r *Recorder) DeleteFile(ctx context.Context, path string, dir bridge.Directory) error {
	if err := r.record(Call{Op: "deleteFile", Path: path}); err != nil {
		return err
	}
	return r.Bridge.DeleteFile(ctx, path, dir)
}
