package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-user-service/pkg/response"
)

// KeyFunc builds a rate-limit key from the request
type KeyFunc func(c *gin.Context) string

// KeyByIP limits by client IP only
func KeyByIP() KeyFunc {
	return func(c *gin.Context) string {
		return "rl:ip:" + ipFromCtx(c)
	}
}

// KeyByIPAndMethod gives writes and reads separate buckets per client.
func KeyByIPAndMethod() KeyFunc {
	return func(c *gin.Context) string {
		return "rl:" + strings.ToLower(c.Request.Method) + ":ip:" + ipFromCtx(c)
	}
}

// atomic INCR + PEXPIRE on first hit
var incrExpireScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return {current, redis.call("PTTL", KEYS[1])}
`)

type AllowFunc func(*gin.Context) bool // return true to bypass the limit

type RateLimitOptions struct {
	Max    int
	Window time.Duration
	Key    KeyFunc
	Allow  AllowFunc
	Logger *logrus.Logger
}

// RateLimit is a fixed-window limiter backed by Redis.
// Redis failures let the request through.
func RateLimit(rdb *redis.Client, opts RateLimitOptions) gin.HandlerFunc {
	if rdb == nil || opts.Max <= 0 || opts.Window <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	if opts.Key == nil {
		opts.Key = KeyByIP()
	}
	return func(c *gin.Context) {
		if opts.Allow != nil && opts.Allow(c) {
			c.Next()
			return
		}
		if strings.EqualFold(c.Request.Method, http.MethodOptions) {
			c.Next()
			return
		}

		key := opts.Key(c)
		res, err := incrExpireScript.Run(c.Request.Context(), rdb, []string{key}, opts.Window.Milliseconds()).Int64Slice()
		if err != nil || len(res) != 2 {
			if opts.Logger != nil {
				opts.Logger.WithError(err).WithField("key", key).Warn("rate limiter unavailable")
			}
			c.Next()
			return
		}
		count, pttl := int(res[0]), res[1]

		resetSec := 0
		if pttl > 0 {
			resetSec = int((time.Duration(pttl)*time.Millisecond + time.Second - 1) / time.Second)
		}
		remaining := opts.Max - count
		if remaining < 0 {
			remaining = 0
		}

		// https://datatracker.ietf.org/doc/html/rfc6585#section-4
		c.Header("X-RateLimit-Limit", strconv.Itoa(opts.Max))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.Itoa(resetSec))

		if count > opts.Max {
			if resetSec > 0 {
				c.Header("Retry-After", strconv.Itoa(resetSec))
			}
			response.Error(c, http.StatusTooManyRequests, response.CodeRateLimited, "Too many requests", nil)
			return
		}
		c.Next()
	}
}
