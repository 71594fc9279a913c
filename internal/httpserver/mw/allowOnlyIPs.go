package mw

import (
	"net/http"
	"strings"

	"github.com/MrSnakeDoc/toolshelf/internal/logger"
	"github.com/MrSnakeDoc/toolshelf/internal/utils"
)

// AllowOnlyCIDRS guards admin routes (reload, readiness) with an IP/CIDR
// allow-list. An empty list disables the filter. Entries that parse as
// neither are dropped with a warning.
func AllowOnlyCIDRS(allowed []string, trustProxy bool, log logger.Logger) func(http.Handler) http.Handler {
	m := utils.NewIPMatcher(allowed)
	if bad := m.Invalid(); len(bad) > 0 {
		log.Warn("ignoring invalid admin CIDR entries", logger.String("entries", strings.Join(bad, ",")))
	}
	if m.IsEmpty() {
		log.Debug("AllowOnlyCIDRS: no rules, passthrough mode")
		return func(next http.Handler) http.Handler { return next }
	}

	log.Debug("AllowOnlyCIDRS: initialized",
		logger.Int("rules", m.Len()),
		logger.Bool("trust_proxy", trustProxy))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := utils.ClientIP(r, trustProxy)
			if m.Allow(ip) {
				next.ServeHTTP(w, r)
				return
			}
			log.Warn("admin route rejected",
				logger.String("method", r.Method),
				logger.String("path", r.URL.Path),
				logger.String("client_ip", ip))
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		})
	}
}
