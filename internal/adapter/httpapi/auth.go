package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/eslsoft/hebcorpus/internal/adapter/mapping"
)

// RoleAdmin is the only role allowed to use the ingestion API.
const RoleAdmin = "admin"

// devActor is recorded as the actor when authentication is disabled.
const devActor = "dev"

type actorKey struct{}

// Claims carries the caller identity in the subject and its role.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Authenticator verifies HS256 bearer tokens.
type Authenticator struct {
	secret   []byte
	disabled bool
}

func NewAuthenticator(secret string, disabled bool) *Authenticator {
	return &Authenticator{secret: []byte(secret), disabled: disabled}
}

// RequireAdmin rejects requests without a valid admin token. Missing or
// invalid tokens yield 401, a valid token with another role yields 403.
func (a *Authenticator) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.disabled {
			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), devActor)))
			return
		}

		raw := bearerToken(r)
		if raw == "" {
			respondError(w, http.StatusUnauthorized, mapping.CodeUnauthorized, "missing bearer token")
			return
		}
		claims, err := a.parse(raw)
		if err != nil {
			respondError(w, http.StatusUnauthorized, mapping.CodeUnauthorized, "invalid token")
			return
		}
		if claims.Role != RoleAdmin {
			respondError(w, http.StatusForbidden, mapping.CodeForbidden, "admin role required")
			return
		}
		next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), claims.Subject)))
	})
}

// IssueToken signs a token for subject with role, valid for ttl.
func (a *Authenticator) IssueToken(subject, role string, ttl time.Duration) (string, error) {
	if len(a.secret) == 0 {
		return "", errors.New("jwt secret is not configured")
	}
	now := time.Now()
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

func (a *Authenticator) parse(raw string) (*Claims, error) {
	if len(a.secret) == 0 {
		return nil, errors.New("jwt secret is not configured")
	}
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("token is not valid")
	}
	return claims, nil
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

// WithActor stores the authenticated caller in ctx.
func WithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFromContext returns the authenticated caller, or "".
func ActorFromContext(ctx context.Context) string {
	actor, _ := ctx.Value(actorKey{}).(string)
	return actor
}
