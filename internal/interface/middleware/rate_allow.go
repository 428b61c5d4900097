package middleware

import (
	"net/netip"

	"github.com/gin-gonic/gin"
)

// AllowFunc reports whether a request skips rate limiting.
type AllowFunc func(*gin.Context) bool

// AllowPrivateIP lets loopback and RFC 1918 / ULA clients through, e.g. in-cluster scrapers.
func AllowPrivateIP() AllowFunc {
	return func(c *gin.Context) bool {
		addr, err := netip.ParseAddr(ipFromCtx(c))
		if err != nil {
			return false
		}
		addr = addr.Unmap()
		return addr.IsLoopback() || addr.IsPrivate()
	}
}

// AllowAdmin lets requests carrying an admin token through. It needs Auth earlier in the chain.
func AllowAdmin() AllowFunc {
	return func(c *gin.Context) bool {
		return c.GetBool(CtxIsAdminKey)
	}
}

// AllowAny combines allow lists; nil entries are ignored.
func AllowAny(fns ...AllowFunc) AllowFunc {
	return func(c *gin.Context) bool {
		for _, fn := range fns {
			if fn != nil && fn(c) {
				return true
			}
		}
		return false
	}
}
