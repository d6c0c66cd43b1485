package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func runAccess(t *testing.T, path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	Access(next).ServeHTTP(rec, req)
	return rec
}

func TestAccess_PublicPathPassesThrough(t *testing.T) {
	rec := runAccess(t, "/welcome")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAccess_ProtectedPathWithoutCookieRedirectsToWelcome(t *testing.T) {
	rec := runAccess(t, "/dashboard")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/welcome", rec.Header().Get("Location"))
}

func TestAccess_ProtectedSubPathAlsoGated(t *testing.T) {
	rec := runAccess(t, "/readings/abc123")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/welcome", rec.Header().Get("Location"))
}

func TestAccess_ProtectedPathWithCookiePasses(t *testing.T) {
	rec := runAccess(t, "/dashboard", &http.Cookie{Name: AccessCookie, Value: "u1"})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAccess_CancelledSubscriberFunneledToManage(t *testing.T) {
	rec := runAccess(t, "/dashboard",
		&http.Cookie{Name: AccessCookie, Value: "u1"},
		&http.Cookie{Name: CancelledCookie, Value: "1"})
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/manage-subscription", rec.Header().Get("Location"))
}

func TestAccess_CancelledSubscriberMayReachManagePage(t *testing.T) {
	rec := runAccess(t, "/manage-subscription",
		&http.Cookie{Name: AccessCookie, Value: "u1"},
		&http.Cookie{Name: CancelledCookie, Value: "1"})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAccess_CancelledFlagZeroIsIgnored(t *testing.T) {
	rec := runAccess(t, "/dashboard",
		&http.Cookie{Name: AccessCookie, Value: "u1"},
		&http.Cookie{Name: CancelledCookie, Value: "0"})
	assert.Equal(t, http.StatusOK, rec.Code)
}
