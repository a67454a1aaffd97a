package middleware

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/hotel-booking/internal/config"
)

// HeaderIdempotencyKey names the request header that makes a write
// replayable.
const HeaderIdempotencyKey = "Idempotency-Key"

// captureWriter records status and body while forwarding to the client.
type captureWriter struct {
	http.ResponseWriter
	status int
	buf    bytes.Buffer
	size   int64
	limit  int64
}

func (cw *captureWriter) WriteHeader(code int) {
	cw.status = code
	cw.ResponseWriter.WriteHeader(code)
}

func (cw *captureWriter) Write(b []byte) (int, error) {
	if cw.limit <= 0 {
		cw.buf.Write(b)
	} else if remain := cw.limit - cw.size; remain > 0 {
		if int64(len(b)) <= remain {
			cw.buf.Write(b)
		} else {
			cw.buf.Write(b[:remain])
		}
	}
	cw.size += int64(len(b))
	return cw.ResponseWriter.Write(b)
}

// truncated reports whether the body exceeded the capture limit.
func (cw *captureWriter) truncated() bool {
	return cw.limit > 0 && cw.size > cw.limit
}

// idempotencyKey scopes the client key to the caller and route so two
// users cannot replay each other's responses.
func idempotencyKey(prefix, subject, route, clientKey string) string {
	sum := sha1.Sum([]byte(subject + "\x00" + route + "\x00" + clientKey))
	return fmt.Sprintf("%s:%x", prefix, sum[:])
}

// encodePayload packs [4 bytes status][4 bytes headerLen][headerJSON][body].
func encodePayload(status int, header http.Header, body []byte) ([]byte, error) {
	hdrJSON, err := json.Marshal(header)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 8+len(hdrJSON)+len(body))
	binary.BigEndian.PutUint32(out[0:4], uint32(status))
	binary.BigEndian.PutUint32(out[4:8], uint32(len(hdrJSON)))
	copy(out[8:8+len(hdrJSON)], hdrJSON)
	copy(out[8+len(hdrJSON):], body)
	return out, nil
}

func decodePayload(bs []byte) (status int, header http.Header, body []byte, ok bool) {
	if len(bs) < 8 {
		return 0, nil, nil, false
	}
	status = int(binary.BigEndian.Uint32(bs[0:4]))
	hlen := int(binary.BigEndian.Uint32(bs[4:8]))
	if hlen < 0 || 8+hlen > len(bs) {
		return 0, nil, nil, false
	}
	header = make(http.Header)
	if hlen > 0 {
		if err := json.Unmarshal(bs[8:8+hlen], &header); err != nil {
			return 0, nil, nil, false
		}
	}
	return status, header, bs[8+hlen:], true
}

// inflightMarker is stored under the key while the first request runs.
var inflightMarker = []byte("inflight")

// NewIdempotency replays the stored response of an earlier request that
// carried the same Idempotency-Key.  Only 2xx responses are stored; any
// other outcome releases the key so the client may retry.  Requests
// without the header, or any request when redis is unavailable, pass
// straight through.
func NewIdempotency(cfg config.IdempotencyConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return passThrough
	}
	maxBody := int64(cfg.MaxBodyBytes)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			clientKey := strings.TrimSpace(c.Request().Header.Get(HeaderIdempotencyKey))
			if clientKey == "" {
				return next(c)
			}
			ctx := c.Request().Context()
			key := idempotencyKey(cfg.Prefix, rateSubject(c), c.Request().Method+" "+c.Path(), clientKey)

			acquired, err := rdb.SetNX(ctx, key, inflightMarker, cfg.LockTTL).Result()
			if err != nil {
				c.Logger().Warnf("idempotency: redis error for key=%s: %v", key, err)
				return next(c)
			}
			if !acquired {
				return replay(c, rdb, key)
			}

			cw := &captureWriter{ResponseWriter: c.Response().Writer, status: http.StatusOK, limit: maxBody}
			c.Response().Writer = cw

			herr := next(c)
			// Replays must not depend on the request context, which may
			// already be cancelled.
			store := context.Background()
			if herr != nil || cw.status < 200 || cw.status >= 300 || cw.truncated() {
				_ = rdb.Del(store, key).Err()
				return herr
			}
			hdr := c.Response().Header().Clone()
			hdr.Del(echo.HeaderContentLength)
			payload, err := encodePayload(cw.status, hdr, cw.buf.Bytes())
			if err != nil {
				_ = rdb.Del(store, key).Err()
				return nil
			}
			if err := rdb.Set(store, key, payload, cfg.TTL).Err(); err != nil {
				c.Logger().Warnf("idempotency: store key=%s: %v", key, err)
			}
			return nil
		}
	}
}

func replay(c echo.Context, rdb *redis.Client, key string) error {
	bs, err := rdb.Get(c.Request().Context(), key).Bytes()
	if errors.Is(err, redis.Nil) || bytes.Equal(bs, inflightMarker) {
		return c.JSON(http.StatusConflict, echo.Map{"error": "a request with this Idempotency-Key is still in progress"})
	}
	if err != nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "idempotency store unavailable"})
	}
	status, hdr, body, ok := decodePayload(bs)
	if !ok {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "corrupt idempotent response"})
	}
	for k, vals := range hdr {
		for _, v := range vals {
			c.Response().Header().Add(k, v)
		}
	}
	c.Response().Header().Set("Idempotent-Replayed", "true")
	c.Response().WriteHeader(status)
	if len(body) > 0 {
		_, _ = c.Response().Write(body)
	}
	return nil
}
