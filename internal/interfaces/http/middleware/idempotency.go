package middleware

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	domainerrors "wrapchain.backend/internal/domain/errors"
	"wrapchain.backend/internal/interfaces/http/response"
	"wrapchain.backend/pkg/logger"
	"wrapchain.backend/pkg/redis"
)

const (
	IdempotencyHeader = "Idempotency-Key"
	// LockDuration is the time we hold the key while processing
	LockDuration = 30 * time.Second
	// RetentionDuration is how long we keep the response
	RetentionDuration = 24 * time.Hour

	processingMarker = "processing"
)

var (
	redisGet   = redis.Get
	redisSet   = redis.Set
	redisSetNX = redis.SetNX
	redisDel   = redis.Del
)

// cachedResponse is the replayed outcome of a completed request
type cachedResponse struct {
	Status int             `json:"status"`
	Body   json.RawMessage `json:"body"`
}

type responseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w responseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// idempotencyKey scopes a client key to the principal and the concrete target,
// so one key reused on two different requests never replays the first outcome.
func idempotencyKey(principal, method, path, key string) string {
	return fmt.Sprintf("idempotency:%s:%s:%s:%s", principal, method, path, key)
}

// IdempotencyMiddleware replays the stored response of a mutating request
// resubmitted to the same path with the same Idempotency-Key by the same
// principal. Keys are optional; requests without one pass through.
func IdempotencyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyHeader)
		if key == "" {
			c.Next()
			return
		}

		principal, _ := GetPrincipal(c)
		storageKey := idempotencyKey(principal.Hex(), c.Request.Method, c.Request.URL.Path, key)
		ctx := c.Request.Context()

		val, err := redisGet(ctx, storageKey)
		switch {
		case err == nil:
			if val == processingMarker {
				response.Error(c, domainerrors.NewAppError(http.StatusConflict, "IDEMPOTENCY_CONFLICT", "request already in progress", nil))
				c.Abort()
				return
			}
			var cached cachedResponse
			if err := json.Unmarshal([]byte(val), &cached); err != nil {
				logger.Warn(ctx, "discarding unreadable idempotent response", zap.Error(err))
				_ = redisDel(ctx, storageKey)
				break
			}
			c.Header("X-Idempotency-Hit", "true")
			c.Data(cached.Status, "application/json; charset=utf-8", cached.Body)
			c.Abort()
			return
		case !redis.IsNil(err):
			// fail open; the record locks still serialize the mutation
			logger.Warn(ctx, "idempotency lookup failed", zap.Error(err))
			c.Next()
			return
		}

		acquired, err := redisSetNX(ctx, storageKey, processingMarker, LockDuration)
		if err != nil || !acquired {
			response.Error(c, domainerrors.NewAppError(http.StatusConflict, "IDEMPOTENCY_CONFLICT", "request already in progress", nil))
			c.Abort()
			return
		}

		w := &responseWriter{body: &bytes.Buffer{}, ResponseWriter: c.Writer}
		c.Writer = w

		c.Next()

		status := c.Writer.Status()
		if status >= 200 && status < 300 {
			payload, _ := json.Marshal(cachedResponse{Status: status, Body: w.body.Bytes()})
			_ = redisSet(ctx, storageKey, string(payload), RetentionDuration)
			return
		}
		// failed requests may be retried with the same key
		_ = redisDel(ctx, storageKey)
	}
}
