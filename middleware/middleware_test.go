package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/tcp_snm/arena/internal/service"
	"github.com/tcp_snm/arena/middleware"
)

func TestJWTMiddleware(t *testing.T) {
	auth := middleware.JWTAuth{Secret: []byte("test-secret")}
	userID := uuid.New()

	valid, err := auth.IssueToken(service.UserCredentialClaims{UserId: userID, UserName: "alice"}, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	expired, err := auth.IssueToken(service.UserCredentialClaims{UserId: userID, UserName: "alice"}, -time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	forged, err := middleware.JWTAuth{Secret: []byte("other-secret")}.IssueToken(
		service.UserCredentialClaims{UserId: userID, UserName: "alice"}, time.Hour,
	)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name       string
		prepare    func(r *http.Request)
		wantStatus int
	}{
		{"cookie", func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: middleware.KeyJwtSessionCookieName, Value: valid})
		}, http.StatusOK},
		{"bearer header", func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer "+valid)
		}, http.StatusOK},
		{"no token", func(r *http.Request) {}, http.StatusUnauthorized},
		{"basic auth header", func(r *http.Request) {
			r.Header.Set("Authorization", "Basic "+valid)
		}, http.StatusUnauthorized},
		{"expired token", func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer "+expired)
		}, http.StatusUnauthorized},
		{"token signed with another secret", func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: middleware.KeyJwtSessionCookieName, Value: forged})
		}, http.StatusUnauthorized},
		{"garbage token", func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer not.a.token")
		}, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got service.UserCredentialClaims
			handler := auth.JWTMiddleware(func(w http.ResponseWriter, r *http.Request) {
				claims, err := service.GetClaimsFromContext(r.Context())
				if err != nil {
					t.Errorf("claims missing from context: %v", err)
				}
				got = claims
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			tt.prepare(req)
			rec := httptest.NewRecorder()
			handler(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %v, want %v", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusOK && (got.UserId != userID || got.UserName != "alice") {
				t.Errorf("unexpected claims %+v", got)
			}
		})
	}
}
