package http

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/auroraos/backend/internal/bridge"
	"github.com/auroraos/backend/internal/infrastructure/logging"
	"github.com/auroraos/backend/internal/storage"
	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type saveResponse struct {
	Success    bool                        `json:"success"`
	Error      string                      `json:"error"`
	File       storage.StoredFileReference `json:"file"`
	URL        string                      `json:"url"`
	SessionURL string                      `json:"session_url"`
}

func setupRouter(t *testing.T, b bridge.Bridge, limits UploadLimits) (*gin.Engine, *storage.Router) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := logging.NewTest(t)
	router := storage.New(b, storage.Options{Logger: logger, ChunkSize: 1024})
	t.Cleanup(func() { _ = router.Close() })

	engine := gin.New()
	NewHandlers(router, limits, logger).Register(engine)
	return engine, router
}

func nativeBridge() (*bridge.LocalBridge, afero.Fs) {
	fs := afero.NewMemMapFs()
	return bridge.NewLocalBridge(fs, bridge.LocalConfig{DataDir: "/device"}), fs
}

func multipartRequest(t *testing.T, fields map[string]string, filename, contentType string, data []byte) *http.Request {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if filename != "" {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
		if contentType != "" {
			h.Set("Content-Type", contentType)
		}
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/storage/files", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func serve(engine *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), v))
}

func TestHealthAndCapability(t *testing.T) {
	engine, _ := setupRouter(t, bridge.Disabled{}, UploadLimits{})

	w := serve(engine, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"healthy","native":false}`, w.Body.String())

	w = serve(engine, httptest.NewRequest(http.MethodGet, "/storage/capability", nil))
	assert.JSONEq(t, `{"success":true,"native":false}`, w.Body.String())
}

func TestPolicy(t *testing.T) {
	b, _ := nativeBridge()
	engine, _ := setupRouter(t, b, UploadLimits{})

	tests := []struct {
		query      string
		wantStatus int
		wantNative bool
	}{
		{query: "size=2097152", wantStatus: http.StatusOK, wantNative: true},
		{query: "size=1024", wantStatus: http.StatusOK, wantNative: false},
		{query: "size=-1", wantStatus: http.StatusBadRequest},
		{query: "size=big", wantStatus: http.StatusBadRequest},
		{query: "", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			w := serve(engine, httptest.NewRequest(http.MethodGet, "/storage/policy?"+tt.query, nil))
			require.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus != http.StatusOK {
				return
			}
			var resp struct {
				Native    bool  `json:"native"`
				Threshold int64 `json:"threshold"`
			}
			decode(t, w, &resp)
			assert.Equal(t, tt.wantNative, resp.Native)
			assert.Equal(t, storage.DefaultThreshold, resp.Threshold)
		})
	}
}

func TestSaveFileNative(t *testing.T) {
	b, fs := nativeBridge()
	engine, _ := setupRouter(t, b, UploadLimits{})
	data := bytes.Repeat([]byte("frame"), 1000)

	w := serve(engine, multipartRequest(t, nil, "clip.mp4", "video/mp4", data))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp saveResponse
	decode(t, w, &resp)
	assert.True(t, resp.Success)
	assert.Equal(t, storage.StrategyChunked, resp.File.Strategy)
	assert.Equal(t, storage.CategoryVideos, resp.File.Category)
	assert.Equal(t, int64(len(data)), resp.File.Size)
	assert.True(t, strings.HasPrefix(resp.URL, bridge.DefaultFileHost))
	assert.Empty(t, resp.SessionURL)

	stored, err := afero.ReadFile(fs, "/device/files/"+resp.File.Path)
	require.NoError(t, err)
	assert.Equal(t, data, stored)
}

func TestSaveFileDetectsMissingMime(t *testing.T) {
	b, _ := nativeBridge()
	engine, _ := setupRouter(t, b, UploadLimits{})
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

	w := serve(engine, multipartRequest(t, nil, "upload", "application/octet-stream", png))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp saveResponse
	decode(t, w, &resp)
	assert.Equal(t, "image/png", resp.File.MimeType)
	assert.Equal(t, storage.CategoryImages, resp.File.Category)
	assert.Regexp(t, `\.bin$`, resp.File.Path)
}

func TestSaveFileSourcePath(t *testing.T) {
	b, fs := nativeBridge()
	require.NoError(t, afero.WriteFile(fs, "/device/external/Music/song.mp3", []byte("id3"), 0o644))
	engine, _ := setupRouter(t, b, UploadLimits{})

	w := serve(engine, multipartRequest(t, map[string]string{
		"source_path": "file:///device/external/Music/song.mp3",
		"mime_type":   "audio/mpeg",
	}, "", "", nil))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp saveResponse
	decode(t, w, &resp)
	assert.Equal(t, storage.StrategyCopy, resp.File.Strategy)
	assert.Regexp(t, `^aurora-files/audio/\d{13}_[a-z0-9]{6}\.mp3$`, resp.File.Path)
	assert.Equal(t, int64(3), resp.File.Size)
}

func TestSaveFileSourcePathOutsideDevice(t *testing.T) {
	b, fs := nativeBridge()
	require.NoError(t, afero.WriteFile(fs, "/etc/shadow", []byte("root:secret"), 0o600))
	engine, _ := setupRouter(t, b, UploadLimits{})

	for _, source := range []string{"/etc/shadow", "file:///etc/shadow", "/device/files/../../etc/shadow", "/dev/zero"} {
		t.Run(source, func(t *testing.T) {
			w := serve(engine, multipartRequest(t, map[string]string{"source_path": source}, "", "", nil))
			assert.Equal(t, http.StatusInternalServerError, w.Code)
			assert.Contains(t, w.Body.String(), "native copy failed")
		})
	}

	stored, err := afero.Exists(fs, "/device/files/aurora-files")
	require.NoError(t, err)
	assert.False(t, stored)
}

func TestSaveFileErrors(t *testing.T) {
	b, _ := nativeBridge()
	engine, _ := setupRouter(t, b, UploadLimits{MaxBytes: 512})

	t.Run("missing file", func(t *testing.T) {
		w := serve(engine, multipartRequest(t, map[string]string{"name": "x"}, "", "", nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("not multipart", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/storage/files", strings.NewReader("{}"))
		req.Header.Set("Content-Type", "application/json")
		assert.Equal(t, http.StatusBadRequest, serve(engine, req).Code)
	})

	t.Run("too large", func(t *testing.T) {
		w := serve(engine, multipartRequest(t, nil, "big.bin", "application/zip", make([]byte, 4096)))
		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	})

	t.Run("copy failure", func(t *testing.T) {
		w := serve(engine, multipartRequest(t, map[string]string{"source_path": "/device/external/none.mp4"}, "", "", nil))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Contains(t, w.Body.String(), "native copy failed")
	})
}

func TestEphemeralRoundTrip(t *testing.T) {
	engine, _ := setupRouter(t, bridge.Disabled{}, UploadLimits{})
	data := []byte("0123456789abcdef")

	w := serve(engine, multipartRequest(t, nil, "notes.txt", "text/plain", data))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp saveResponse
	decode(t, w, &resp)
	assert.True(t, resp.File.Ephemeral)
	assert.True(t, strings.HasPrefix(resp.File.URI, storage.HandleScheme))
	assert.Equal(t, resp.File.URI, resp.URL)
	require.NotEmpty(t, resp.SessionURL)

	w = serve(engine, httptest.NewRequest(http.MethodGet, resp.SessionURL, nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/plain", w.Header().Get("Content-Type"))
	assert.Equal(t, data, w.Body.Bytes())

	req := httptest.NewRequest(http.MethodGet, resp.SessionURL, nil)
	req.Header.Set("Range", "bytes=4-7")
	w = serve(engine, req)
	assert.Equal(t, http.StatusPartialContent, w.Code)
	assert.Equal(t, "4567", w.Body.String())

	del := httptest.NewRequest(http.MethodDelete, "/storage/files?uri="+resp.File.URI, nil)
	w = serve(engine, del)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, string(storage.DeleteReleased), w.Header().Get("X-Storage-Result"))

	w = serve(engine, httptest.NewRequest(http.MethodGet, resp.SessionURL, nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSaveFileSessionBudget(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger := logging.NewTest(t)
	router := storage.New(bridge.Disabled{}, storage.Options{Logger: logger, SessionBudget: 10})
	t.Cleanup(func() { _ = router.Close() })
	engine := gin.New()
	NewHandlers(router, UploadLimits{}, logger).Register(engine)

	w := serve(engine, multipartRequest(t, nil, "big.txt", "text/plain", make([]byte, 16)))
	assert.Equal(t, http.StatusInsufficientStorage, w.Code)
	assert.Contains(t, w.Body.String(), "session storage budget exceeded")

	w = serve(engine, multipartRequest(t, nil, "a.txt", "text/plain", make([]byte, 8)))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var resp saveResponse
	decode(t, w, &resp)

	w = serve(engine, multipartRequest(t, nil, "b.txt", "text/plain", make([]byte, 8)))
	assert.Equal(t, http.StatusInsufficientStorage, w.Code)

	del := httptest.NewRequest(http.MethodDelete, "/storage/files?uri="+resp.File.URI, nil)
	require.Equal(t, http.StatusNoContent, serve(engine, del).Code)

	w = serve(engine, multipartRequest(t, nil, "b.txt", "text/plain", make([]byte, 8)))
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func TestServeSessionRejectsMalformedID(t *testing.T) {
	engine, _ := setupRouter(t, bridge.Disabled{}, UploadLimits{})

	for _, handle := range []string{"not-a-handle", "01H8XGJWBWBAQ1T7ZTGRPW1F5ZZ", "01h8xgjwbwbaq1t7ztgrpw1f5"} {
		w := serve(engine, httptest.NewRequest(http.MethodGet, "/storage/session/"+handle, nil))
		assert.Equal(t, http.StatusBadRequest, w.Code, handle)
	}

	w := serve(engine, httptest.NewRequest(http.MethodGet, "/storage/session/01H8XGJWBWBAQ1T7ZTGRPW1F5Z", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteFile(t *testing.T) {
	b, fs := nativeBridge()
	engine, router := setupRouter(t, b, UploadLimits{})

	ref, err := router.SaveFile(t.Context(), storage.File{
		Name: "a.pdf", Size: 3, MimeType: "application/pdf", Content: bytes.NewReader([]byte("pdf")),
	})
	require.NoError(t, err)

	for _, want := range []storage.DeleteResult{storage.DeleteDeleted, storage.DeleteSkipped} {
		w := serve(engine, httptest.NewRequest(http.MethodDelete, "/storage/files?uri="+ref.URI, nil))
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, string(want), w.Header().Get("X-Storage-Result"))
	}

	exists, err := afero.Exists(fs, "/device/files/"+ref.Path)
	require.NoError(t, err)
	assert.False(t, exists)

	w := serve(engine, httptest.NewRequest(http.MethodDelete, "/storage/files", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestResolveURL(t *testing.T) {
	b, _ := nativeBridge()
	engine, _ := setupRouter(t, b, UploadLimits{})

	w := serve(engine, httptest.NewRequest(http.MethodGet, "/storage/url?uri=file:///device/files/x.mp4", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		URL string `json:"url"`
	}
	decode(t, w, &resp)
	assert.Equal(t, bridge.DefaultFileHost+"/device/files/x.mp4", resp.URL)

	w = serve(engine, httptest.NewRequest(http.MethodGet, "/storage/url", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStatsAndEntries(t *testing.T) {
	b, _ := nativeBridge()
	engine, router := setupRouter(t, b, UploadLimits{})

	for _, f := range []storage.File{
		{Name: "a.mp4", Size: 4, MimeType: "video/mp4", Content: bytes.NewReader([]byte("abcd"))},
		{Name: "b.jpg", Size: 2, MimeType: "image/jpeg", Content: bytes.NewReader([]byte("ab"))},
	} {
		_, err := router.SaveFile(t.Context(), f)
		require.NoError(t, err)
	}

	w := serve(engine, httptest.NewRequest(http.MethodGet, "/storage/stats", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var stats struct {
		Stats storage.Statistics `json:"stats"`
	}
	decode(t, w, &stats)
	assert.Equal(t, 2, stats.Stats.Count)
	assert.Equal(t, int64(6), stats.Stats.Size)
	assert.Equal(t, storage.Usage{Count: 1, Size: 4}, stats.Stats.ByCategory[storage.CategoryVideos])

	w = serve(engine, httptest.NewRequest(http.MethodGet, "/storage/entries", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var entries struct {
		Entries []storage.StorageEntry `json:"entries"`
		Count   int                    `json:"count"`
	}
	decode(t, w, &entries)
	assert.Equal(t, 2, entries.Count)
	assert.Len(t, entries.Entries, 2)
}

func TestEmptyStatsInBrowserMode(t *testing.T) {
	engine, _ := setupRouter(t, bridge.Disabled{}, UploadLimits{})

	w := serve(engine, httptest.NewRequest(http.MethodGet, "/storage/entries", nil))
	require.Equal(t, http.StatusOK, w.Code)
	body, err := io.ReadAll(w.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true,"entries":[],"count":0}`, string(body))
}
