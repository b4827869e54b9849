package mw

import (
	"bytes"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
)

type cachedResponse struct {
	status  int
	headers http.Header
	body    []byte
}

type recordingWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w recordingWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w recordingWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// ResponseCache keeps successful GET responses in memory under a key chosen
// per request. Invalidate drops every entry; a response computed while an
// invalidation happened is not stored.
type ResponseCache struct {
	entries    *cache.Cache
	ttl        time.Duration
	generation atomic.Uint64
}

// NewResponseCache creates a cache whose entries live for ttl. A non-positive
// ttl disables it.
func NewResponseCache(ttl time.Duration) *ResponseCache {
	return &ResponseCache{entries: cache.New(ttl, 2*ttl), ttl: ttl}
}

// Invalidate discards all cached responses.
func (rc *ResponseCache) Invalidate() {
	rc.generation.Add(1)
	rc.entries.Flush()
}

// Handler serves GET requests from the cache, keyed by key(c).
func (rc *ResponseCache) Handler(key func(c *gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rc.ttl <= 0 || c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		k := key(c)
		if v, found := rc.entries.Get(k); found {
			cached := v.(cachedResponse)
			for name, values := range cached.headers {
				c.Writer.Header()[name] = values
			}
			c.Writer.Header().Set("X-Cache", "HIT")
			c.Writer.WriteHeader(cached.status)
			c.Writer.Write(cached.body)
			c.Abort()
			return
		}

		gen := rc.generation.Load()
		rw := &recordingWriter{body: bytes.NewBuffer(nil), ResponseWriter: c.Writer}
		c.Writer = rw

		c.Next()

		status := rw.Status()
		if status < 200 || status >= 300 || rc.generation.Load() != gen {
			return
		}
		rc.entries.Set(k, cachedResponse{
			status:  status,
			headers: rw.Header().Clone(),
			body:    bytes.Clone(rw.body.Bytes()),
		}, rc.ttl)
	}
}
