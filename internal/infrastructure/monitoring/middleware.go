package monitoring

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// Middleware creates a Gin middleware for metrics collection
func Middleware(metrics *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		method := c.Request.Method

		reqSize := c.Request.ContentLength
		if reqSize < 0 {
			reqSize = 0
		}

		c.Next()

		// Route template keeps label cardinality bounded
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		status := strconv.Itoa(c.Writer.Status())
		respSize := int64(c.Writer.Size())
		if respSize < 0 {
			respSize = 0
		}

		metrics.RecordHTTPRequest(method, path, status, time.Since(start), reqSize, respSize)
	}
}

// Timer measures save duration
type Timer struct {
	start    time.Time
	metrics  *Metrics
	strategy string
}

// NewTimer creates a new timer
func NewTimer(metrics *Metrics, strategy string) *Timer {
	return &Timer{
		start:    time.Now(),
		metrics:  metrics,
		strategy: strategy,
	}
}

// Stop stops the timer and records the save
func (t *Timer) Stop(status string, size int64) {
	t.metrics.RecordSave(t.strategy, status, time.Since(t.start), size)
}
