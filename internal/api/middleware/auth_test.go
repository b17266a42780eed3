package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Datle-2003/video-subtitle-generator/internal/auth"
)

func newAuthedHandler(t *testing.T) (http.Handler, string) {
	t.Helper()
	jwtService := auth.NewJWTService("test-secret")
	token, err := jwtService.GenerateToken(1, "admin", "admin")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	handler := AuthMiddleware(jwtService)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := GetClaims(r)
		if claims == nil {
			t.Error("claims missing from request context")
			return
		}
		w.Write([]byte(claims.Username))
	}))
	return handler, token
}

func TestAuthMiddlewareBearerHeader(t *testing.T) {
	handler, token := newAuthedHandler(t)

	req := httptest.NewRequest("GET", "/api/jobs", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if rec.Body.String() != "admin" {
		t.Errorf("claims username = %q", rec.Body.String())
	}
}

func TestAuthMiddlewareQueryToken(t *testing.T) {
	// Download links are plain browser navigations; the token rides in the
	// query string there.
	handler, token := newAuthedHandler(t)

	req := httptest.NewRequest("GET", "/api/subtitle/download/abc/source?token="+token, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestAuthMiddlewareRejects(t *testing.T) {
	handler, token := newAuthedHandler(t)

	cases := map[string]*http.Request{
		"no credentials": httptest.NewRequest("GET", "/api/jobs", nil),
		"bad scheme":     httptest.NewRequest("GET", "/api/jobs", nil),
		"garbage token":  httptest.NewRequest("GET", "/api/jobs?token=not-a-jwt", nil),
	}
	cases["bad scheme"].Header.Set("Authorization", "Basic "+token)

	for name, req := range cases {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s: status = %d, want 401", name, rec.Code)
		}
	}
}
