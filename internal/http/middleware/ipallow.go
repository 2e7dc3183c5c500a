package middleware

import (
	"fmt"
	"net/http"
	"net/netip"

	"github.com/gin-gonic/gin"
)

// DashboardGate restricts dashboard access to configured network origins.
// Denials are opaque: a blocked origin sees the same 404 as an unknown path.
type DashboardGate struct {
	prefixes []netip.Prefix
}

// NewDashboardGate parses the configured CIDR ranges. Bare addresses are
// accepted as single-address ranges.
func NewDashboardGate(cidrs []string) (*DashboardGate, error) {
	prefixes := make([]netip.Prefix, 0, len(cidrs))
	for _, cidr := range cidrs {
		prefix, err := netip.ParsePrefix(cidr)
		if err != nil {
			addr, addrErr := netip.ParseAddr(cidr)
			if addrErr != nil {
				return nil, fmt.Errorf("invalid dashboard CIDR %q: %w", cidr, err)
			}
			prefix = netip.PrefixFrom(addr.Unmap(), addr.Unmap().BitLen())
		}
		prefixes = append(prefixes, netip.PrefixFrom(prefix.Addr().Unmap(), prefix.Bits()).Masked())
	}
	return &DashboardGate{prefixes: prefixes}, nil
}

// Allowed reports whether the source address falls inside any configured
// range, boundary addresses included.
func (g *DashboardGate) Allowed(source string) bool {
	addr, err := netip.ParseAddr(source)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, prefix := range g.prefixes {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}

// Gate returns the gin middleware enforcing the origin policy
func (g *DashboardGate) Gate() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !g.Allowed(c.ClientIP()) {
			// Byte-identical to gin's unknown-path response so a denied
			// origin cannot tell the route exists.
			c.String(http.StatusNotFound, "404 page not found")
			c.Abort()
			return
		}
		c.Next()
	}
}
