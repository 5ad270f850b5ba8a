package observability

import (
	"strings"
	"unicode"
)

// Rune caps for values copied from the request into log fields.
const (
	routeLimit  = 180
	methodLimit = 10
	userLimit   = 64
)

// clip drops control characters and keeps at most limit runes.
func clip(value string, limit int) string {
	var b strings.Builder
	kept := 0
	for _, r := range value {
		if kept == limit {
			break
		}
		if unicode.IsControl(r) {
			continue
		}
		b.WriteRune(r)
		kept++
	}
	return b.String()
}

// SanitizeRoute makes a route or path safe to log; an empty route logs as "/".
func SanitizeRoute(route string) string {
	if route = clip(route, routeLimit); route == "" {
		return "/"
	}
	return route
}

func SanitizeMethod(method string) string {
	return strings.ToUpper(clip(method, methodLimit))
}

// SanitizeUserID caps the signed-in user's id.
func SanitizeUserID(uid string) string {
	return clip(uid, userLimit)
}
