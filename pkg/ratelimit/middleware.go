package ratelimit

import (
	"fmt"
	"net"
	"net/http"
	"strings"

	"tickethub/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
)

// Middleware applies a per-IP sliding-window budget chosen by route category.
func Middleware(rateLimiter *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientIP := getClientIP(c)
		limitType := getRateLimitType(c.FullPath())

		result, err := rateLimiter.IsAllowed(c.Request.Context(), clientIP, limitType)
		if err != nil {
			response.RespondJSON(c, "error", http.StatusInternalServerError,
				"Rate limit check failed", nil, nil)
			c.Abort()
			return
		}

		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", result.Limit))
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", result.Remaining))
		c.Header("X-RateLimit-Reset", fmt.Sprintf("%d", result.ResetTime))

		if !result.Allowed {
			response.RespondJSON(c, "error", http.StatusTooManyRequests,
				"Rate limit exceeded", nil, map[string]interface{}{
					"limit":      result.Limit,
					"reset_time": result.ResetTime,
				})
			c.Abort()
			return
		}

		c.Next()
	}
}

func getRateLimitType(path string) RateLimitType {
	switch {
	// Health/monitoring endpoints
	case strings.HasPrefix(path, "/health"),
		strings.HasPrefix(path, "/ping"),
		strings.HasPrefix(path, "/metrics"):
		return RateLimitTypeHealth

	// Organizer/admin management surface
	case strings.Contains(path, "/discount-codes"),
		strings.Contains(path, "/ticket-types"):
		return RateLimitTypeAdmin

	// Gate scanning
	case strings.Contains(path, "/check-in"),
		strings.Contains(path, "/undo-check-in"),
		strings.Contains(path, "/credential"):
		return RateLimitTypeCheckIn

	// Ownership transfers
	case strings.Contains(path, "/transfer"):
		return RateLimitTypeTransfer

	// Checkout flow: creation, cancellation, payment callbacks
	case strings.Contains(path, "/bookings"),
		strings.Contains(path, "/webhooks/payments"),
		strings.Contains(path, "/payments"):
		return RateLimitTypeCheckout

	// Public browsing
	case strings.Contains(path, "/events"),
		strings.Contains(path, "/availability"):
		return RateLimitTypePublic

	default:
		return RateLimitTypeDefault
	}
}

// getClientIP extracts the real client IP behind proxies.
func getClientIP(c *gin.Context) string {
	xForwardedFor := c.GetHeader("X-Forwarded-For")
	if xForwardedFor != "" {
		ips := strings.Split(xForwardedFor, ",")
		if len(ips) > 0 {
			ip := strings.TrimSpace(ips[0])
			if net.ParseIP(ip) != nil {
				return ip
			}
		}
	}

	xRealIP := c.GetHeader("X-Real-IP")
	if xRealIP != "" {
		if net.ParseIP(xRealIP) != nil {
			return xRealIP
		}
	}

	ip, _, err := net.SplitHostPort(c.Request.RemoteAddr)
	if err != nil {
		return c.Request.RemoteAddr
	}
	return ip
}
