package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"sportsadmin.backend/internal/interfaces/http/response"
	"sportsadmin.backend/pkg/logger"
	"sportsadmin.backend/pkg/redis"
)

const (
	IdempotencyHeader    = "Idempotency-Key"
	IdempotencyHitHeader = "X-Idempotency-Hit"
	// LockDuration is how long the in-flight marker lives
	LockDuration = 30 * time.Second
	// RetentionDuration is how long a completed response is replayed
	RetentionDuration = 24 * time.Hour

	processingMarker = "processing"
	maxKeyLength     = 128
	// MaxFingerprintBody caps the JSON body buffered for fingerprinting
	MaxFingerprintBody = 1 << 20
)

var (
	redisGet   = redis.Get
	redisSet   = redis.Set
	redisSetNX = redis.SetNX
	redisDel   = redis.Del
)

// capturingWriter tees the response body so it can be stored for replay.
type capturingWriter struct {
	gin.ResponseWriter
	buf bytes.Buffer
}

func (w *capturingWriter) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

type replay struct {
	Fingerprint string          `json:"fp"`
	Status      int             `json:"status"`
	Body        json.RawMessage `json:"body"`
}

// IdempotencyMiddleware replays the stored 2xx response when the same actor
// repeats a request with the same Idempotency-Key and body. Reusing a key with
// a different body is rejected. Must run after AuthMiddleware.
func IdempotencyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyHeader)
		if key == "" {
			c.Next()
			return
		}
		if len(key) > maxKeyLength {
			response.ErrorWithStatus(c, http.StatusBadRequest, response.CodeValidation, "Idempotency-Key is too long")
			c.Abort()
			return
		}

		fp, err := fingerprint(c)
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				response.ErrorWithStatus(c, http.StatusRequestEntityTooLarge, response.CodeValidation, "Request body is too large")
			} else {
				response.ErrorWithStatus(c, http.StatusBadRequest, response.CodeValidation, "Unreadable request body")
			}
			c.Abort()
			return
		}

		actorID, _ := GetUserID(c)
		storeKey := "idempotency:" + actorID.String() + ":" + key
		ctx := c.Request.Context()

		raw, err := redisGet(ctx, storeKey)
		switch {
		case errors.Is(err, goredis.Nil):
		case err != nil:
			logger.Warn(ctx, "Idempotency store unavailable, proceeding unprotected", zap.Error(err))
			c.Next()
			return
		case raw == processingMarker:
			inProgress(c)
			return
		default:
			var prev replay
			if jsonErr := json.Unmarshal([]byte(raw), &prev); jsonErr != nil {
				logger.Warn(ctx, "Discarding unreadable idempotency entry", zap.String("key", storeKey), zap.Error(jsonErr))
				_ = redisDel(ctx, storeKey)
				break
			}
			if prev.Fingerprint != "" && prev.Fingerprint != fp {
				response.ErrorWithStatus(c, http.StatusUnprocessableEntity, response.CodeConflict, "Idempotency-Key was already used with a different request")
				c.Abort()
				return
			}
			c.Header(IdempotencyHitHeader, "true")
			if len(prev.Body) == 0 || string(prev.Body) == "null" {
				c.AbortWithStatus(prev.Status)
				return
			}
			c.Data(prev.Status, "application/json; charset=utf-8", prev.Body)
			c.Abort()
			return
		}

		ok, err := redisSetNX(ctx, storeKey, processingMarker, LockDuration)
		if err != nil {
			logger.Warn(ctx, "Idempotency store unavailable, proceeding unprotected", zap.Error(err))
			c.Next()
			return
		}
		if !ok {
			inProgress(c)
			return
		}

		w := &capturingWriter{ResponseWriter: c.Writer}
		c.Writer = w
		c.Next()

		status := w.Status()
		if status < 200 || status >= 300 {
			// failed attempts may be retried with the same key
			_ = redisDel(ctx, storeKey)
			return
		}
		body := w.buf.Bytes()
		if !json.Valid(body) {
			body = []byte("null")
		}
		payload, _ := json.Marshal(replay{Fingerprint: fp, Status: status, Body: body})
		if err := redisSet(ctx, storeKey, string(payload), RetentionDuration); err != nil {
			logger.Warn(ctx, "Failed to store idempotent response", zap.Error(err))
		}
	}
}

func inProgress(c *gin.Context) {
	response.ErrorWithStatus(c, http.StatusConflict, response.CodeConflict, "Request already in progress")
	c.Abort()
}

// fingerprint hashes method, path and body, then restores the body for the handler.
// Multipart uploads are not buffered; only the route identifies them.
func fingerprint(c *gin.Context) (string, error) {
	h := sha256.New()
	h.Write([]byte(c.Request.Method + " " + c.Request.URL.Path + "\n"))
	if c.Request.Body != nil && !isMultipart(c) {
		body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, MaxFingerprintBody))
		if err != nil {
			return "", err
		}
		_ = c.Request.Body.Close()
		c.Request.Body = io.NopCloser(bytes.NewReader(body))
		h.Write(body)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func isMultipart(c *gin.Context) bool {
	return c.ContentType() == "multipart/form-data"
}
