package middleware

import (
	"net/http"
	"strings"
)

// Cookie names the access gate reads. AccessCookie is set on OTP verify;
// CancelledCookie is set by the client when the subscription lapses.
const (
	AccessCookie    = "pc_access"
	CancelledCookie = "pc_sub_cancelled"
)

// protectedPrefixes are paths that require a verified session.
var protectedPrefixes = []string{
	"/dashboard",
	"/readings",
	"/birth-chart",
	"/compatibility",
	"/manage-subscription",
}

// cancelledAllowList are paths a cancelled subscriber may still reach.
var cancelledAllowList = map[string]bool{
	"/manage-subscription": true,
	"/login":               true,
	"/welcome":             true,
}

// Access gates protected pages on cookie presence. Unauthenticated visitors
// land on /welcome; cancelled subscribers are funneled to
// /manage-subscription until they resume or leave.
func Access(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !isProtected(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		if c, err := r.Cookie(AccessCookie); err != nil || c.Value == "" {
			http.Redirect(w, r, "/welcome", http.StatusFound)
			return
		}

		if c, err := r.Cookie(CancelledCookie); err == nil && c.Value == "1" {
			if !cancelledAllowList[basePath(r.URL.Path)] {
				http.Redirect(w, r, "/manage-subscription", http.StatusFound)
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}

func isProtected(path string) bool {
	for _, p := range protectedPrefixes {
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}

func basePath(path string) string {
	if i := strings.Index(path[1:], "/"); i >= 0 {
		return path[:i+1]
	}
	return path
}
