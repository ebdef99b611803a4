package middleware

import (
	"net"
	"net/http"
	"net/url"
	"strconv"

	"github.com/heartmarshall/glossync/internal/config"
)

// OriginLoopback in CORSConfig.AllowedOrigins admits any localhost or
// loopback-IP origin, whatever its port.
const OriginLoopback = "loopback"

// exposed lets browser clients read where a proxied response came from.
const exposed = "X-Cache, " + RequestIDHeader

// CORS returns middleware for browser clients of the loopback API. It
// answers preflight requests itself. It returns nil when no origin is
// allowed; Chain skips it.
func CORS(cfg config.CORSConfig) Middleware {
	origins := config.SplitList(cfg.AllowedOrigins)
	if len(origins) == 0 {
		return nil
	}
	maxAge := strconv.Itoa(cfg.MaxAge)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Add("Vary", "Origin")

			origin := r.Header.Get("Origin")
			allowed := origin != "" && isAllowedOrigin(origin, origins)
			if allowed {
				h.Set("Access-Control-Allow-Origin", origin)
				h.Set("Access-Control-Expose-Headers", exposed)
				if cfg.AllowCredentials {
					h.Set("Access-Control-Allow-Credentials", "true")
				}
			}

			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				if allowed {
					h.Set("Access-Control-Allow-Methods", cfg.AllowedMethods)
					h.Set("Access-Control-Allow-Headers", cfg.AllowedHeaders)
					h.Set("Access-Control-Max-Age", maxAge)
				}
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func isAllowedOrigin(origin string, allowed []string) bool {
	for _, a := range allowed {
		switch a {
		case "*", origin:
			return true
		case OriginLoopback:
			if IsLoopbackOrigin(origin) {
				return true
			}
		}
	}
	return false
}

// IsLoopbackOrigin reports whether an Origin header names this device.
func IsLoopbackOrigin(origin string) bool {
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return false
	}
	host := u.Hostname()
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
