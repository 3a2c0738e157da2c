package mw

import (
	"bytes"
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
)

// CachedResponse is a replayable GET response.
type CachedResponse struct {
	Status  int         `json:"status"`
	Headers http.Header `json:"headers"`
	Body    []byte      `json:"body"`
}

// ResponseCache stores CachedResponses by request URI.
type ResponseCache interface {
	Get(ctx context.Context, key string) (*CachedResponse, bool)
	Set(ctx context.Context, key string, resp *CachedResponse, ttl time.Duration)
	// Invalidate drops every entry whose key starts with prefix.
	Invalidate(ctx context.Context, prefix string)
}

// MemoryCache is the in-process ResponseCache.
type MemoryCache struct {
	store *cache.Cache
}

// NewMemoryCache creates a go-cache backed cache whose janitor runs every cleanup.
func NewMemoryCache(ttl, cleanup time.Duration) *MemoryCache {
	return &MemoryCache{store: cache.New(ttl, cleanup)}
}

func (m *MemoryCache) Get(_ context.Context, key string) (*CachedResponse, bool) {
	v, found := m.store.Get(key)
	if !found {
		return nil, false
	}
	resp, ok := v.(*CachedResponse)
	return resp, ok
}

func (m *MemoryCache) Set(_ context.Context, key string, resp *CachedResponse, ttl time.Duration) {
	m.store.Set(key, resp, ttl)
}

func (m *MemoryCache) Invalidate(_ context.Context, prefix string) {
	for key := range m.store.Items() {
		if strings.HasPrefix(key, prefix) {
			m.store.Delete(key)
		}
	}
}

type bodyCacheWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w bodyCacheWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w bodyCacheWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// Cache is a middleware caching successful GET responses for duration.
func Cache(store ResponseCache, duration time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		key := c.Request.RequestURI
		if cached, found := store.Get(ctx, key); found {
			for k, v := range cached.Headers {
				if k == HeaderRequestID {
					continue
				}
				c.Writer.Header()[k] = v
			}
			c.Writer.Header().Set("X-Cache", "HIT")
			c.Writer.WriteHeader(cached.Status)
			c.Writer.Write(cached.Body)
			c.Abort()
			return
		}

		blw := &bodyCacheWriter{body: bytes.NewBuffer(nil), ResponseWriter: c.Writer}
		c.Writer = blw

		c.Next()

		// Only cache successful responses
		if blw.Status() >= 200 && blw.Status() < 300 {
			headers := blw.Header().Clone()
			headers.Del(HeaderRequestID)
			store.Set(ctx, key, &CachedResponse{
				Status:  blw.Status(),
				Headers: headers,
				Body:    blw.body.Bytes(),
			}, duration)
		}
	}
}

// InvalidateOnSuccess drops cached entries under prefix once the handler
// has answered 2xx.
func InvalidateOnSuccess(store ResponseCache, prefix string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if status := c.Writer.Status(); status >= 200 && status < 300 {
			store.Invalidate(c.Request.Context(), prefix)
		}
	}
}
