package shared

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
)

// ClientIP resolves the caller's partition key. Proxies are trusted as-is: the first
// X-Forwarded-For entry wins, then X-Real-IP, otherwise the "unknown" sentinel.
// The result is copied out of the request buffer so it can outlive the request.
func ClientIP(c *fiber.Ctx) string {
	forwarded := c.Get(fiber.HeaderXForwardedFor)
	if forwarded != "" {
		ips := strings.Split(forwarded, ",")
		if ip := strings.TrimSpace(ips[0]); ip != "" {
			return utils.CopyString(ip)
		}
	}

	if realIP := strings.TrimSpace(c.Get("X-Real-IP")); realIP != "" {
		return utils.CopyString(realIP)
	}

	return UnknownClientIP
}

// IsLocalAddress reports addresses that never leave the host and have no meaningful location.
func IsLocalAddress(ip string) bool {
	return ip == "" || ip == UnknownClientIP || ip == "127.0.0.1" || ip == "::1"
}
