// Package cache intercepts read requests to the backend, applies a freshness
// policy per route and mirrors successful responses into the durable store.
package cache

import (
	"regexp"
	"time"

	"github.com/heartmarshall/glossync/internal/config"
	"github.com/heartmarshall/glossync/internal/domain"
)

// Policy decides where a read is served from.
type Policy string

const (
	// PolicyStaleWhileRevalidate serves the network when reachable, otherwise
	// the last cached response, and refreshes in the background.
	PolicyStaleWhileRevalidate Policy = "stale-while-revalidate"
	// PolicyNetworkFirst is stale-while-revalidate without the background refresh.
	PolicyNetworkFirst Policy = "network-first"
	// PolicyCacheFirst serves a fresh cached response before trying the network.
	PolicyCacheFirst Policy = "cache-first"
	// PolicyNetworkOnly never caches.
	PolicyNetworkOnly Policy = "network-only"
)

// Mirror converts a response body into cached entities. match holds the
// route pattern submatches for the request path.
type Mirror func(match []string, body []byte, now time.Time, expiresAt *time.Time) ([]domain.CachedEntity, error)

// Route applies a policy to GET requests whose path matches Pattern.
type Route struct {
	Name    string
	Pattern *regexp.Regexp
	Policy  Policy
	MaxAge  time.Duration
	Mirror  Mirror
}

// DefaultRoutes returns the routes for the glossary read endpoints.
func DefaultRoutes(cfg config.CacheConfig) []Route {
	return []Route{
		{
			Name:    "term-comments",
			Pattern: regexp.MustCompile(`^/api/terms/([^/]+)/comments/?$`),
			Policy:  PolicyStaleWhileRevalidate,
			MaxAge:  cfg.CommentsTTL,
			Mirror:  mirrorComments,
		},
		{
			Name:    "term",
			Pattern: regexp.MustCompile(`^/api/terms/([^/]+)/?$`),
			Policy:  PolicyStaleWhileRevalidate,
			MaxAge:  cfg.TermsTTL,
			Mirror:  mirrorTerm,
		},
		{
			Name:    "terms",
			Pattern: regexp.MustCompile(`^/api/terms/?$`),
			Policy:  PolicyStaleWhileRevalidate,
			MaxAge:  cfg.TermsTTL,
			Mirror:  mirrorTerms,
		},
		{
			Name:    "user-xp",
			Pattern: regexp.MustCompile(`^/api/users/([^/]+)/xp/?$`),
			Policy:  PolicyNetworkFirst,
			MaxAge:  cfg.XPTTL,
			Mirror:  mirrorXP,
		},
		{
			Name:    "profile",
			Pattern: regexp.MustCompile(`^/api/users/([^/]+)/?$`),
			Policy:  PolicyCacheFirst,
			MaxAge:  cfg.ProfilesTTL,
			Mirror:  mirrorProfile,
		},
	}
}

func matchRoute(routes []Route, path string) (*Route, []string) {
	for i := range routes {
		if m := routes[i].Pattern.FindStringSubmatch(path); m != nil {
			return &routes[i], m
		}
	}
	return nil, nil
}
