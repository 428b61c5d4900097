package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/go-ddd-ecommerce/pkg/response"
)

// ipFromCtx returns the address resolved by RealIP, then gin's view, then "unknown".
func ipFromCtx(c *gin.Context) string {
	if ip := c.GetString("real_ip"); ip != "" {
		return ip
	}
	if ip := c.ClientIP(); ip != "" {
		return ip
	}
	return "unknown"
}

func routeOf(c *gin.Context) string {
	if fp := c.FullPath(); fp != "" {
		return fp
	}
	return c.Request.URL.Path
}

// KeyFunc builds the counter key for a request.
type KeyFunc func(c *gin.Context) string

func KeyByIP() KeyFunc {
	return func(c *gin.Context) string {
		return "rl:ip:" + ipFromCtx(c)
	}
}

// KeyByIPAndPath keeps a separate budget per route, so login attempts do not eat the register budget.
func KeyByIPAndPath() KeyFunc {
	return func(c *gin.Context) string {
		return "rl:path:" + routeOf(c) + ":ip:" + ipFromCtx(c)
	}
}

// KeyByUserID limits authenticated callers by user and anonymous ones by IP.
func KeyByUserID() KeyFunc {
	return func(c *gin.Context) string {
		uid := c.GetString(CtxUserIDKey)
		if uid == "" {
			return "rl:user:anon:ip:" + ipFromCtx(c)
		}
		return "rl:user:" + uid
	}
}

// Fixed window counter. Returns {hits, remaining ttl in ms} in one round trip.
var windowScript = redis.NewScript(`
local hits = redis.call("INCR", KEYS[1])
if hits == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return {hits, redis.call("PTTL", KEYS[1])}
`)

// Limit is a fixed-window policy: at most Max requests per Window for each Key.
// Requests for which Allow returns true are not counted.
type Limit struct {
	Max    int
	Window time.Duration
	Key    KeyFunc
	Allow  AllowFunc
}

// PerMinute is the common policy shape used by route modules.
func PerMinute(max int, key KeyFunc) Limit {
	return Limit{Max: max, Window: time.Minute, Key: key}
}

// WithAllow returns a copy of l that lets allow-listed requests through uncounted.
func (l Limit) WithAllow(allow AllowFunc) Limit {
	l.Allow = allow
	return l
}

// RateLimit enforces l against Redis. A nil client or an invalid policy disables the limit,
// and Redis errors fail open.
func RateLimit(rdb *redis.Client, l Limit) gin.HandlerFunc {
	if rdb == nil || l.Max <= 0 || l.Window <= 0 || l.Key == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions || (l.Allow != nil && l.Allow(c)) {
			c.Next()
			return
		}

		res, err := windowScript.Run(c.Request.Context(), rdb, []string{l.Key(c)}, l.Window.Milliseconds()).Int64Slice()
		if err != nil || len(res) != 2 {
			c.Next()
			return
		}
		hits, resetSec := int(res[0]), resetSeconds(res[1])

		c.Header("X-RateLimit-Limit", strconv.Itoa(l.Max))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining(l.Max, hits)))
		c.Header("X-RateLimit-Reset", strconv.Itoa(resetSec))

		if hits > l.Max {
			if resetSec > 0 {
				c.Header("Retry-After", strconv.Itoa(resetSec))
			}
			response.AbortWithError(c, http.StatusTooManyRequests, "rate limit exceeded", nil)
			return
		}
		c.Next()
	}
}

func remaining(max, hits int) int {
	if hits >= max {
		return 0
	}
	return max - hits
}

// resetSeconds rounds a PTTL reply up to whole seconds; negative replies mean no expiry.
func resetSeconds(pttlMs int64) int {
	if pttlMs <= 0 {
		return 0
	}
	return int((pttlMs + 999) / 1000)
}
