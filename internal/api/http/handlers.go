package http

import (
	"bytes"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"path"
	"strconv"

	"github.com/auroraos/backend/internal/api/middleware"
	"github.com/auroraos/backend/internal/infrastructure/logging"
	"github.com/auroraos/backend/internal/shared/id"
	"github.com/auroraos/backend/internal/storage"
	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const octetStream = "application/octet-stream"

// UploadLimits bounds multipart uploads
type UploadLimits struct {
	// MaxBytes caps the whole request body
	MaxBytes int64
	// MemoryBytes is kept in memory before parts spill to temp files
	MemoryBytes int64
}

// Handlers serves the storage API
type Handlers struct {
	router *storage.Router
	limits UploadLimits
	logger *logging.Logger
}

// NewHandlers creates handlers for router
func NewHandlers(router *storage.Router, limits UploadLimits, logger *logging.Logger) *Handlers {
	if limits.MaxBytes <= 0 {
		limits.MaxBytes = 2 << 30
	}
	if limits.MemoryBytes <= 0 {
		limits.MemoryBytes = 32 << 20
	}
	return &Handlers{router: router, limits: limits, logger: logger.Named("http")}
}

// Register mounts the routes on r
func (h *Handlers) Register(r gin.IRouter) {
	r.GET("/health", h.Health)

	s := r.Group("/storage")
	s.GET("/capability", h.Capability)
	s.GET("/policy", h.Policy)
	s.POST("/files", h.SaveFile)
	s.DELETE("/files", h.DeleteFile)
	s.GET("/url", h.ResolveURL)
	s.GET("/stats", h.Statistics)
	s.GET("/entries", h.Entries)
	s.GET("/session/:id", h.ServeSession)
	s.HEAD("/session/:id", h.ServeSession)
}

// Health reports liveness
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"native": h.router.CapabilityCheck(),
	})
}

// Capability reports native storage availability
func (h *Handlers) Capability(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"native":  h.router.CapabilityCheck(),
	})
}

// Policy recommends a storage tier for a file size
func (h *Handlers) Policy(c *gin.Context) {
	size, err := strconv.ParseInt(c.Query("size"), 10, 64)
	if err != nil || size < 0 {
		badRequest(c, "size must be a non-negative integer")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"size":      size,
		"native":    h.router.ShouldUseNativeStorage(size),
		"threshold": h.router.Threshold(),
	})
}

// SaveFile stores an uploaded file
func (h *Handlers) SaveFile(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.limits.MaxBytes)
	if err := c.Request.ParseMultipartForm(h.limits.MemoryBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{
				"success": false,
				"error":   "upload exceeds " + strconv.FormatInt(tooLarge.Limit, 10) + " bytes",
			})
			return
		}
		badRequest(c, "invalid multipart form: "+err.Error())
		return
	}

	file, err := h.fileFromForm(c)
	if errors.Is(err, storage.ErrSessionFull) {
		sessionFull(c, err)
		return
	}
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	if closer, ok := file.Content.(io.Closer); ok {
		defer closer.Close()
	}

	ref, err := h.router.SaveFile(c.Request.Context(), file)
	if errors.Is(err, storage.ErrSessionFull) {
		sessionFull(c, err)
		return
	}
	if err != nil {
		h.logger.Error("Save failed",
			zap.String("request_id", middleware.GetRequestID(c)),
			zap.String("name", file.Name),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	resp := gin.H{
		"success": true,
		"file":    ref,
		"url":     h.router.ResolvePlaybackURL(ref.URI),
	}
	if ref.Ephemeral {
		resp["session_url"] = sessionPath(ref.URI)
	}
	c.JSON(http.StatusCreated, resp)
}

// fileFromForm builds a storage.File from the "file" part and form fields.
// A "source_path" alone is enough for a native copy.
func (h *Handlers) fileFromForm(c *gin.Context) (storage.File, error) {
	sourcePath := c.PostForm("source_path")

	header, err := c.FormFile("file")
	if err != nil {
		if sourcePath == "" {
			return storage.File{}, errors.New("file is required")
		}
		size, _ := strconv.ParseInt(c.PostForm("size"), 10, 64)
		name := c.DefaultPostForm("name", path.Base(sourcePath))
		return storage.File{
			Name:       name,
			Size:       max(size, 0),
			MimeType:   c.DefaultPostForm("mime_type", octetStream),
			SourcePath: sourcePath,
		}, nil
	}

	part, err := header.Open()
	if err != nil {
		return storage.File{}, err
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" || mimeType == octetStream {
		if detected, err := mimetype.DetectReader(io.NewSectionReader(part, 0, header.Size)); err == nil {
			mimeType = detected.String()
		}
	}

	content, err := h.content(part, header.Size)
	if err != nil {
		return storage.File{}, err
	}

	return storage.File{
		Name:       header.Filename,
		Size:       header.Size,
		MimeType:   mimeType,
		Content:    content,
		SourcePath: sourcePath,
	}, nil
}

// content keeps the multipart part for native saves, which finish within
// the request. Ephemeral handles outlive the request, so their bytes are
// copied out of the part first, once they fit the session budget.
func (h *Handlers) content(part multipart.File, size int64) (io.ReaderAt, error) {
	if h.router.CapabilityCheck() {
		return part, nil
	}
	defer part.Close()

	if !h.router.SessionFits(size) {
		return nil, storage.ErrSessionFull
	}

	data, err := io.ReadAll(part)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(data), nil
}

// DeleteFile removes a stored file. It answers 204 whatever the outcome.
func (h *Handlers) DeleteFile(c *gin.Context) {
	uri := c.Query("uri")
	if uri == "" {
		badRequest(c, "uri is required")
		return
	}

	result := h.router.DeleteFile(c.Request.Context(), uri)
	c.Header(middleware.HeaderStorageResult, string(result))
	c.Status(http.StatusNoContent)
}

// ResolveURL converts a stored URI to a playback URL
func (h *Handlers) ResolveURL(c *gin.Context) {
	uri := c.Query("uri")
	if uri == "" {
		badRequest(c, "uri is required")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"uri":     uri,
		"url":     h.router.ResolvePlaybackURL(uri),
	})
}

// Statistics reports count and size of stored files
func (h *Handlers) Statistics(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"stats":   h.router.GetStorageStatistics(c.Request.Context()),
	})
}

// Entries lists stored files
func (h *Handlers) Entries(c *gin.Context) {
	entries := h.router.ListStorageEntries(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"entries": entries,
		"count":   len(entries),
	})
}

// ServeSession streams the bytes of an ephemeral handle
func (h *Handlers) ServeSession(c *gin.Context) {
	handle := c.Param("id")
	if !id.IsValid(handle) {
		badRequest(c, "invalid handle id")
		return
	}

	eph, ok := h.router.OpenEphemeral(storage.HandleURI(id.HandleID(handle)))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   "handle not found",
		})
		return
	}

	if eph.MimeType != "" {
		c.Header("Content-Type", eph.MimeType)
	}
	c.Header("Cache-Control", "private, no-store")
	http.ServeContent(c.Writer, c.Request, eph.Name, eph.Created, eph.Content)
}

func sessionPath(uri string) string {
	return "/storage/session/" + uri[len(storage.HandleScheme):]
}

func sessionFull(c *gin.Context, err error) {
	c.JSON(http.StatusInsufficientStorage, gin.H{
		"success": false,
		"error":   err.Error(),
	})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"error":   msg,
	})
}
