package server

import (
	"bytes"
	"compress/gzip"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/auroraos/backend/internal/infrastructure/config"
	"github.com/auroraos/backend/internal/infrastructure/logging"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(bridgeMode string) *config.Config {
	cfg := config.Default()
	cfg.Logging.Development = true
	cfg.RateLimit.Enabled = false
	cfg.Storage.Bridge = bridgeMode
	cfg.Storage.DataDir = "/device"
	return cfg
}

func newTestServer(t *testing.T, cfg *config.Config) (*Server, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	s, err := newServer(cfg, logging.NewTest(t), fs)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, fs
}

func TestNewServerRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig("sideways")
	_, err := newServer(cfg, logging.NewNop(), afero.NewMemMapFs())
	assert.Error(t, err)
}

func TestHealthByBridge(t *testing.T) {
	tests := []struct {
		mode   string
		native bool
	}{
		{mode: config.BridgeLocal, native: true},
		{mode: config.BridgeNone, native: false},
		{mode: config.BridgeRemote, native: true},
	}

	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			s, _ := newTestServer(t, testConfig(tt.mode))
			assert.Equal(t, tt.native, s.Router().CapabilityCheck())

			w := httptest.NewRecorder()
			s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
			assert.Equal(t, http.StatusOK, w.Code)
			assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
		})
	}
}

func TestUploadThroughStack(t *testing.T) {
	s, fs := newTestServer(t, testConfig(config.BridgeLocal))

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "clip.mp4")
	require.NoError(t, err)
	_, err = part.Write([]byte("not really a video"))
	require.NoError(t, err)
	require.NoError(t, mw.WriteField("mime_type", "video/mp4"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/storage/files", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var found []string
	require.NoError(t, afero.Walk(fs, "/device/files/aurora-files", func(path string, info os.FileInfo, err error) error {
		if err == nil && !info.IsDir() {
			found = append(found, path)
		}
		return err
	}))
	assert.Len(t, found, 1)

	w = httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "aurora_storage_saves_total")
	assert.Contains(t, w.Body.String(), `path="/storage/files"`)
}

func TestResponsesAreCompressed(t *testing.T) {
	s, _ := newTestServer(t, testConfig(config.BridgeNone))

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "gzip", w.Header().Get("Content-Encoding"))

	zr, err := gzip.NewReader(w.Body)
	require.NoError(t, err)
	plain, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(plain), "go_goroutines"))
}
