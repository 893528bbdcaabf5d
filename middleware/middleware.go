package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	log "github.com/sirupsen/logrus"
	"github.com/tcp_snm/arena/internal/service"
)

const (
	KeyJwtSessionCookieName = "jwt_session"
	bearerPrefix            = "Bearer "
)

type JWTAuth struct {
	Secret []byte
}

// JWTMiddleware reads the session token from the jwt_session cookie or the
// Authorization header and puts its claims into the request context.
func (a JWTAuth) JWTMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := tokenFromRequest(r)
		if token == "" {
			http.Error(w, "missing session token", http.StatusUnauthorized)
			return
		}

		claims, err := a.ParseToken(token)
		if err != nil {
			log.Warnf("rejected session token from %s, %v", r.RemoteAddr, err)
			http.Error(w, "invalid session token", http.StatusUnauthorized)
			return
		}

		next(w, r.WithContext(service.WithClaims(r.Context(), claims)))
	}
}

func (a JWTAuth) ParseToken(tokenString string) (service.UserCredentialClaims, error) {
	var claims service.UserCredentialClaims
	token, err := jwt.ParseWithClaims(
		tokenString,
		&claims,
		func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return a.Secret, nil
		},
	)
	if err != nil {
		return service.UserCredentialClaims{}, err
	}
	if !token.Valid {
		return service.UserCredentialClaims{}, errors.New("token is not valid")
	}
	return claims, nil
}

// IssueToken signs claims for the given user, used by tooling and tests
func (a JWTAuth) IssueToken(claims service.UserCredentialClaims, ttl time.Duration) (string, error) {
	now := time.Now()
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.Secret)
}

func tokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(KeyJwtSessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, bearerPrefix) {
		return strings.TrimPrefix(header, bearerPrefix)
	}
	return ""
}
