package bridge

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/auroraos/backend/internal/infrastructure/resilience"
	"github.com/auroraos/backend/internal/infrastructure/tracing"
	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"
)

// RemoteConfig configures a RemoteBridge
type RemoteConfig struct {
	// BaseURL of the native shell's filesystem endpoint, e.g. http://127.0.0.1:8787
	BaseURL string
	// FileHost prefixes converted file URIs. Defaults to DefaultFileHost.
	FileHost string
	// Timeout per bridge call
	Timeout time.Duration
	// OnStateChange observes breaker transitions (logging, metrics)
	OnStateChange func(name string, from, to resilience.State)
}

// RemoteBridge forwards the bridge contract to a native shell over loopback HTTP.
// Every operation is a POST to {BaseURL}/filesystem/{op} with a JSON body.
// Writes and appends are not idempotent, so the transport never retries.
type RemoteBridge struct {
	client   *resty.Client
	breaker  *resilience.Breaker
	fileHost string
}

var _ Bridge = (*RemoteBridge)(nil)

// remoteError is the error body returned by the shell
type remoteError struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

type pathRequest struct {
	Path      string    `json:"path"`
	Directory Directory `json:"directory,omitempty"`
}

type uriResponse struct {
	URI string `json:"uri"`
}

type readdirResponse struct {
	Files []DirEntry `json:"files"`
}

type statResponse struct {
	Type  string `json:"type"`
	Size  int64  `json:"size"`
	MTime int64  `json:"mtime"`
	URI   string `json:"uri"`
}

// NewRemoteBridge creates a bridge talking to the shell at cfg.BaseURL
func NewRemoteBridge(cfg RemoteConfig) *RemoteBridge {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	client := resty.New().
		SetBaseURL(strings.TrimSuffix(cfg.BaseURL, "/")).
		SetTimeout(timeout).
		SetRetryCount(0).
		SetHeader("Content-Type", "application/json").
		SetHeader("User-Agent", "Aurora-Storage/1.0").
		SetJSONMarshaler(sonic.Marshal).
		SetJSONUnmarshaler(sonic.Unmarshal)

	breaker := resilience.New("native-bridge", resilience.Settings{
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     5 * time.Second,
		ReadyToTrip: func(counts resilience.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		// Missing files and rejected paths are answers, not outages
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrNotFound) || errors.Is(err, ErrInvalidPath)
		},
		OnStateChange: cfg.OnStateChange,
	})

	return &RemoteBridge{
		client:   client,
		breaker:  breaker,
		fileHost: normalizeHost(cfg.FileHost),
	}
}

// Breaker exposes the breaker guarding the shell
func (b *RemoteBridge) Breaker() *resilience.Breaker {
	return b.breaker
}

// IsNativePlatform reports native capability
func (b *RemoteBridge) IsNativePlatform() bool {
	return true
}

// call posts body to /filesystem/{op} and decodes a 2xx response into out
func (b *RemoteBridge) call(ctx context.Context, op string, body, out interface{}) error {
	headers := make(map[string]string, 2)
	tracing.InjectTraceContext(ctx, headers)

	err := b.breaker.Execute(func() error {
		req := b.client.R().
			SetContext(ctx).
			SetHeaders(headers).
			SetBody(body).
			SetError(&remoteError{})
		if out != nil {
			req.SetResult(out)
		}

		resp, err := req.Post("/filesystem/" + op)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrUnavailable, op, err)
		}
		return responseError(op, resp)
	})

	if errors.Is(err, resilience.ErrCircuitOpen) || errors.Is(err, resilience.ErrTooManyRequests) {
		return fmt.Errorf("%w: %s: %v", ErrUnavailable, op, err)
	}
	return err
}

func responseError(op string, resp *resty.Response) error {
	if !resp.IsError() {
		return nil
	}

	msg := resp.Status()
	if e, ok := resp.Error().(*remoteError); ok && e.Error != "" {
		msg = e.Error
	}

	switch resp.StatusCode() {
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s: %s", ErrNotFound, op, msg)
	case http.StatusBadRequest:
		return fmt.Errorf("%w: %s: %s", ErrInvalidPath, op, msg)
	case http.StatusServiceUnavailable:
		return fmt.Errorf("%w: %s: %s", ErrUnavailable, op, msg)
	default:
		return fmt.Errorf("bridge %s failed (%d): %s", op, resp.StatusCode(), msg)
	}
}

// Copy copies a file on the device
func (b *RemoteBridge) Copy(ctx context.Context, opts CopyOptions) error {
	return b.call(ctx, "copy", opts, nil)
}

// WriteFile creates or truncates a file
func (b *RemoteBridge) WriteFile(ctx context.Context, opts WriteOptions) error {
	return b.call(ctx, "writeFile", opts, nil)
}

// AppendFile appends to a file
func (b *RemoteBridge) AppendFile(ctx context.Context, opts AppendOptions) error {
	return b.call(ctx, "appendFile", opts, nil)
}

// GetURI asks the shell for the platform URI of a path
func (b *RemoteBridge) GetURI(ctx context.Context, path string, dir Directory) (string, error) {
	var out uriResponse
	if err := b.call(ctx, "getUri", pathRequest{Path: path, Directory: dir}, &out); err != nil {
		return "", err
	}
	return out.URI, nil
}

// Readdir lists a directory
func (b *RemoteBridge) Readdir(ctx context.Context, path string, dir Directory) ([]DirEntry, error) {
	var out readdirResponse
	if err := b.call(ctx, "readdir", pathRequest{Path: path, Directory: dir}, &out); err != nil {
		return nil, err
	}
	return out.Files, nil
}

// Stat returns size and type of a path
func (b *RemoteBridge) Stat(ctx context.Context, path string, dir Directory) (FileStat, error) {
	var out statResponse
	if err := b.call(ctx, "stat", pathRequest{Path: path, Directory: dir}, &out); err != nil {
		return FileStat{}, err
	}
	return FileStat{
		IsDir: out.Type == "directory",
		Size:  out.Size,
		MTime: time.UnixMilli(out.MTime),
		URI:   out.URI,
	}, nil
}

// DeleteFile removes a file
func (b *RemoteBridge) DeleteFile(ctx context.Context, path string, dir Directory) error {
	return b.call(ctx, "deleteFile", pathRequest{Path: path, Directory: dir}, nil)
}

// ConvertFileSrc rewrites file:// URIs onto the file host; anything else passes through
func (b *RemoteBridge) ConvertFileSrc(uri string) string {
	return convertFileSrc(b.fileHost, uri)
}
