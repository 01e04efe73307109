package middleware

import (
	"bytes"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/star-temple/starprint/internal/domain/entity"
	"github.com/star-temple/starprint/internal/domain/repository"
	"github.com/star-temple/starprint/internal/presentation/http/dto/response"
	"github.com/star-temple/starprint/pkg/apperror"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	// IdempotencyKeyHeader is the HTTP header for idempotency keys
	IdempotencyKeyHeader = "Idempotency-Key"
	// IdempotencyKeyTTL is how long keys are valid
	IdempotencyKeyTTL = 24 * time.Hour
)

// IdempotencyConfig holds configuration for the idempotency middleware
type IdempotencyConfig struct {
	Repo repository.IdempotencyRepository
	Log  *zap.Logger
}

// responseWriter wraps gin.ResponseWriter to capture the response body
type responseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w responseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// storedResponse is what one flight of a keyed request produced.
type storedResponse struct {
	endpoint string
	code     int
	body     []byte
	handled  bool // false when the response came from the repository
}

// Idempotency replays the stored response of a print request that carried
// the same Idempotency-Key from the same station. Only 2xx responses are
// stored, so a job that failed at the printer can be retried with the same key.
//
// Requests with the same key that arrive while the first is still running
// wait for it and receive its response instead of printing again. A key
// reused against a different endpoint is rejected with 422.
func Idempotency(config IdempotencyConfig) gin.HandlerFunc {
	log := config.Log
	if log == nil {
		log = zap.NewNop()
	}
	var inflight singleflight.Group

	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		idempotencyKey := c.GetHeader(IdempotencyKeyHeader)
		station := GetStation(c)
		if idempotencyKey == "" || station == "" {
			c.Next()
			return
		}
		endpoint := c.Request.Method + " " + c.FullPath()

		ran := false
		v, _, _ := inflight.Do(station+"\x00"+idempotencyKey, func() (interface{}, error) {
			ran = true

			existing, err := config.Repo.GetByKey(c.Request.Context(), idempotencyKey, station)
			if err != nil {
				log.Warn("Idempotency lookup failed", zap.String("station", station), zap.Error(err))
			} else if existing != nil && !existing.IsExpired() {
				return &storedResponse{
					endpoint: existing.Endpoint,
					code:     existing.ResponseCode,
					body:     []byte(existing.ResponseBody),
				}, nil
			}

			// Capture the response
			blw := &responseWriter{body: bytes.NewBufferString(""), ResponseWriter: c.Writer}
			c.Writer = blw

			c.Next()

			res := &storedResponse{
				endpoint: endpoint,
				code:     c.Writer.Status(),
				body:     blw.body.Bytes(),
				handled:  true,
			}
			if res.code < 200 || res.code >= 300 {
				return res, nil
			}

			ikey := &entity.IdempotencyKey{
				Key:          idempotencyKey,
				Station:      station,
				Endpoint:     endpoint,
				ResponseCode: res.code,
				ResponseBody: string(res.body),
				ExpiresAt:    time.Now().Add(IdempotencyKeyTTL),
			}
			if err := config.Repo.Create(c.Request.Context(), ikey); err != nil {
				log.Warn("Failed to store idempotency key", zap.String("station", station), zap.Error(err))
			}
			return res, nil
		})
		res := v.(*storedResponse)
		if res.endpoint != endpoint {
			response.Error(c, apperror.ErrIdempotencyKeyReused)
			c.Abort()
			return
		}
		if ran && res.handled {
			return
		}

		c.Header("X-Idempotency-Replayed", "true")
		c.Data(res.code, "application/json; charset=utf-8", res.body)
		c.Abort()
	}
}
