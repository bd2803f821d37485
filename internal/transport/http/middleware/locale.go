package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// policyPathKey stores the locale-stripped path that access decisions run on.
const policyPathKey = "policy_path"

// bypassPrefixes are served without locale rewriting or access evaluation:
// operational endpoints, static assets, the JSON API, and the identity
// provider callback.
var bypassPrefixes = []string{
	"/healthz",
	"/readyz",
	"/metrics",
	"/assets",
	"/static",
	"/favicon.ico",
	"/api",
	"/auth/callback",
}

// IsBypassPath reports whether the path skips locale and gateway handling.
func IsBypassPath(path string) bool {
	for _, prefix := range bypassPrefixes {
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return true
		}
	}
	return false
}

// Locale redirects requests missing a locale prefix to the default-locale
// equivalent, and strips a recognised prefix so policy evaluation and
// handlers see locale-neutral paths. Runs before any auth evaluation.
func Locale(defaultLocale string, supported []string) gin.HandlerFunc {
	supportedSet := make(map[string]bool, len(supported))
	for _, locale := range supported {
		supportedSet[locale] = true
	}
	if defaultLocale == "" {
		defaultLocale = "id"
	}
	supportedSet[defaultLocale] = true

	return func(c *gin.Context) {
		path := c.Request.URL.Path

		if IsBypassPath(path) {
			c.Next()
			return
		}

		locale, rest := splitLocale(path)
		if !supportedSet[locale] {
			target := "/" + defaultLocale + path
			if raw := c.Request.URL.RawQuery; raw != "" {
				target += "?" + raw
			}
			c.Redirect(http.StatusFound, target)
			c.Abort()
			return
		}

		c.Set(LocaleKey, locale)
		c.Set(policyPathKey, rest)

		c.Next()
	}
}

// GetPolicyPath returns the locale-stripped path for the request, falling
// back to the raw URL path when the locale middleware did not run.
func GetPolicyPath(c *gin.Context) string {
	if val, exists := c.Get(policyPathKey); exists {
		if path, ok := val.(string); ok && path != "" {
			return path
		}
	}
	return c.Request.URL.Path
}

func splitLocale(path string) (locale, rest string) {
	trimmed := strings.TrimPrefix(path, "/")
	if trimmed == "" {
		return "", "/"
	}

	if idx := strings.IndexByte(trimmed, '/'); idx >= 0 {
		return trimmed[:idx], trimmed[idx:]
	}
	return trimmed, "/"
}
