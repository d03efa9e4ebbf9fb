package middleware

import (
	"net"
	"strings"

	"github.com/gin-gonic/gin"
)

// RealIP sets the client IP into the Gin context under CtxRealIP.
// With trustHeaders, priority is:
// 1) CF-Connecting-IP (Cloudflare)
// 2) X-Forwarded-For (left-most)
// 3) the socket peer address
// Without it only the peer address is used, so clients cannot pick their own rate-limit bucket.
func RealIP(trustHeaders bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(CtxRealIP, resolveIP(c, trustHeaders))
		c.Next()
	}
}

func resolveIP(c *gin.Context, trustHeaders bool) string {
	if trustHeaders {
		if cf := strings.TrimSpace(c.GetHeader("CF-Connecting-IP")); cf != "" {
			if ip := net.ParseIP(cf); ip != nil {
				return ip.String()
			}
		}
		if xff := c.GetHeader("X-Forwarded-For"); xff != "" {
			first, _, _ := strings.Cut(xff, ",")
			if ip := net.ParseIP(strings.TrimSpace(first)); ip != nil {
				return ip.String()
			}
		}
	}
	return c.RemoteIP()
}
