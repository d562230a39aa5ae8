package middleware

import (
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// SwaggerConfig controls access to the /swagger UI
type SwaggerConfig struct {
	Enabled     bool
	RequireAuth bool
	AllowedIPs  []string // addresses or CIDRs; empty allows every client
}

// SwaggerProtection hides the API docs unless enabled, then applies the IP
// allow list and, with RequireAuth, the bearer token check of auth.
// Disabled or refused requests get 404 so the endpoint is not advertised.
func SwaggerProtection(cfg SwaggerConfig, auth gin.HandlerFunc) gin.HandlerFunc {
	allowed := parseAllowList(cfg.AllowedIPs)

	return func(c *gin.Context) {
		if !cfg.Enabled {
			c.AbortWithStatus(http.StatusNotFound)
			return
		}
		if len(allowed) > 0 && !allowed.contains(net.ParseIP(c.ClientIP())) {
			c.AbortWithStatus(http.StatusNotFound)
			return
		}
		if cfg.RequireAuth && auth != nil {
			auth(c)
			if c.IsAborted() {
				return
			}
		}
		c.Next()
	}
}

type allowList []*net.IPNet

func parseAllowList(entries []string) allowList {
	var list allowList
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if !strings.Contains(entry, "/") {
			ip := net.ParseIP(entry)
			if ip == nil {
				continue
			}
			bits := 32
			if ip.To4() == nil {
				bits = 128
			}
			entry = ip.String() + "/" + strconv.Itoa(bits)
		}
		if _, network, err := net.ParseCIDR(entry); err == nil {
			list = append(list, network)
		}
	}
	return list
}

func (l allowList) contains(ip net.IP) bool {
	if ip == nil {
		return false
	}
	for _, network := range l {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}
