package httpapi

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"stars-bot/internal/metrics"
)

const adminIDKey = "adminID"

// isAllowedIP reports whether ip falls inside one of the CIDR blocks.
func isAllowedIP(ip string, blocks []*net.IPNet) bool {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return false
	}
	for _, block := range blocks {
		if block.Contains(parsed) {
			return true
		}
	}
	return false
}

func parseCIDRs(cidrs []string, log *logrus.Entry) []*net.IPNet {
	blocks := make([]*net.IPNet, 0, len(cidrs))
	for _, cidr := range cidrs {
		_, block, err := net.ParseCIDR(cidr)
		if err != nil {
			log.WithField("cidr", cidr).Warn("Skipping invalid CIDR")
			continue
		}
		blocks = append(blocks, block)
	}
	return blocks
}

// AllowCIDRs rejects clients outside the allowed networks.
func AllowCIDRs(cidrs []string, log *logrus.Entry) gin.HandlerFunc {
	blocks := parseCIDRs(cidrs, log)
	return func(c *gin.Context) {
		if !isAllowedIP(c.ClientIP(), blocks) {
			log.WithField("ip", c.ClientIP()).Warn("Admin API request from disallowed address")
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}

// AdminJWT accepts only bearer tokens signed with secret for adminID.
func AdminJWT(secret string, adminID int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid Authorization header"})
			return
		}
		claims, err := ParseAdminToken(strings.TrimPrefix(header, "Bearer "), secret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}
		if claims.AdminID != adminID {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			return
		}
		c.Set(adminIDKey, claims.AdminID)
		c.Next()
	}
}

// requestLogger logs each request and counts it by route and status.
func requestLogger(log *logrus.Entry) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		metrics.HTTPRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()

		entry := log.WithFields(logrus.Fields{
			"method":   c.Request.Method,
			"route":    route,
			"status":   status,
			"duration": time.Since(start).String(),
			"ip":       c.ClientIP(),
		})
		if status >= http.StatusInternalServerError {
			entry.Error("Request failed")
			return
		}
		entry.Debug("Request served")
	}
}
