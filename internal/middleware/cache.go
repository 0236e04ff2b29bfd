package middleware

import (
	"bytes"
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/mealplanner/backend/internal/cache"
	"github.com/pageza/mealplanner/backend/internal/metrics"
)

// Scopes whose data is visible to every user. Writes to them drop all
// users' cached responses.
var sharedScopes = map[string]bool{"recipes": true}

type cachedResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

type bodyRecorder struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *bodyRecorder) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *bodyRecorder) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// ResponseCache stores successful GET responses per user and request URI.
type ResponseCache struct {
	cache  *cache.Cache
	logger *zap.Logger
}

func NewResponseCache(c *cache.Cache, logger *zap.Logger) *ResponseCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResponseCache{cache: c, logger: logger}
}

func scopePrefix(scope string) string {
	return "resp:" + scope + ":"
}

func userPrefix(scope string, c *gin.Context) string {
	user := "anonymous"
	if id, ok := UserID(c); ok {
		user = id.String()
	}
	return scopePrefix(scope) + user + ":"
}

// Cache serves GET requests of scope from the cache when possible.
func (rc *ResponseCache) Cache(scope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rc.cache.Enabled() || c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		key := userPrefix(scope, c) + c.Request.URL.RequestURI()

		var hit cachedResponse
		found, err := rc.cache.Get(ctx, key, &hit)
		if err != nil {
			rc.logger.Warn("response cache read failed", zap.String("key", key), zap.Error(err))
		}
		if found {
			metrics.CacheLookups.WithLabelValues("hit").Inc()
			c.Header("X-Cache", "HIT")
			c.Data(hit.Status, hit.ContentType, hit.Body)
			c.Abort()
			return
		}
		metrics.CacheLookups.WithLabelValues("miss").Inc()
		c.Header("X-Cache", "MISS")

		rec := &bodyRecorder{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
		c.Writer = rec
		c.Next()

		if rec.Status() != http.StatusOK {
			return
		}
		entry := cachedResponse{
			Status:      rec.Status(),
			ContentType: rec.Header().Get("Content-Type"),
			Body:        rec.body.Bytes(),
		}
		if err := rc.cache.Set(ctx, key, entry); err != nil {
			rc.logger.Warn("response cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
}

// Invalidate drops cached responses of scopes after a successful write.
func (rc *ResponseCache) Invalidate(scopes ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if !rc.cache.Enabled() || c.Request.Method == http.MethodGet || c.Writer.Status() >= http.StatusBadRequest {
			return
		}
		rc.Drop(c, scopes...)
	}
}

// Drop removes the current user's cached responses of scopes.
func (rc *ResponseCache) Drop(c *gin.Context, scopes ...string) {
	ctx := context.WithoutCancel(c.Request.Context())
	for _, scope := range scopes {
		prefix := userPrefix(scope, c)
		if sharedScopes[scope] {
			prefix = scopePrefix(scope)
		}
		if err := rc.cache.InvalidatePrefix(ctx, prefix); err != nil {
			rc.logger.Warn("response cache invalidation failed", zap.String("prefix", prefix), zap.Error(err))
		}
	}
}
