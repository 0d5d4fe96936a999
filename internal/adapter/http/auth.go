package httpadapter

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"echopub/internal/core/domain"
)

// Claims are the JWT claims issued by the identity service.
type Claims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// Authenticator validates HS256 bearer tokens and turns them into a
// domain.Principal.
type Authenticator struct {
	secret []byte
	issuer string
}

func NewAuthenticator(secret, issuer string) *Authenticator {
	return &Authenticator{secret: []byte(secret), issuer: issuer}
}

func (a *Authenticator) keyFunc(*jwt.Token) (any, error) {
	return a.secret, nil
}

// Principal parses and validates a token string.
func (a *Authenticator) Principal(tokenStr string) (domain.Principal, error) {
	if len(a.secret) == 0 {
		return domain.Principal{}, errors.New("authentication not configured")
	}
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired()}
	if a.issuer != "" {
		opts = append(opts, jwt.WithIssuer(a.issuer))
	}
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, a.keyFunc, opts...)
	if err != nil {
		return domain.Principal{}, fmt.Errorf("token validation failed: %w", err)
	}
	if !token.Valid {
		return domain.Principal{}, errors.New("invalid token")
	}
	if claims.Subject == "" {
		return domain.Principal{}, errors.New("token subject is required")
	}
	role := domain.Role(claims.Role)
	switch role {
	case domain.RoleAmbassador, domain.RoleAdvertiser, domain.RoleAdmin:
	default:
		return domain.Principal{}, fmt.Errorf("unsupported role %q", claims.Role)
	}
	return domain.Principal{ID: claims.Subject, Role: role}, nil
}

// Middleware rejects requests without a valid bearer token.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		scheme, tokenStr, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || tokenStr == "" {
			writeJSONError(w, http.StatusUnauthorized, "unauthorized", "missing or malformed Authorization header")
			return
		}
		p, err := a.Principal(tokenStr)
		if err != nil {
			writeJSONError(w, http.StatusUnauthorized, "unauthorized", "invalid or expired token")
			return
		}
		next.ServeHTTP(w, r.WithContext(withPrincipal(r.Context(), p)))
	})
}

type principalKey struct{}

func withPrincipal(ctx context.Context, p domain.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

func principalFrom(ctx context.Context) domain.Principal {
	p, _ := ctx.Value(principalKey{}).(domain.Principal)
	return p
}
