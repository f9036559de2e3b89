package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"apivro/internal/config"
	"apivro/internal/domain"
)

// ===== Dashboard session tokens =====

type SessionClaims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// SessionManager mints and verifies the HS256 bearer tokens the dashboard sends.
// The subject claim is the profile id.
type SessionManager struct {
	secret []byte
	issuer string
	now    func() time.Time
}

func NewSessionManager(cfg config.AuthConfig) (*SessionManager, error) {
	if len(cfg.JWTSecret) < 16 {
		return nil, fmt.Errorf("auth.jwt_secret must be at least 16 characters")
	}
	return &SessionManager{secret: []byte(cfg.JWTSecret), issuer: cfg.Issuer, now: time.Now}, nil
}

func (m *SessionManager) Mint(userID, email string, ttl time.Duration) (string, error) {
	if userID == "" {
		return "", domain.ErrInvalidArgument
	}
	now := m.now()
	claims := SessionClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

func (m *SessionManager) Parse(tok string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
	}
	if m.issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.issuer))
	}
	tkn, err := jwt.ParseWithClaims(tok, claims, func(t *jwt.Token) (any, error) {
		return m.secret, nil
	}, opts...)
	if err != nil || !tkn.Valid || claims.Subject == "" {
		return nil, domain.ErrUnauthorized
	}
	return claims, nil
}

// ParseFromRequest reads "Authorization: Bearer <jwt>".
func (m *SessionManager) ParseFromRequest(r *http.Request) (*SessionClaims, error) {
	hdr := r.Header.Get("Authorization")
	if len(hdr) < 7 || !strings.EqualFold(hdr[:7], "bearer ") {
		return nil, errors.Join(domain.ErrUnauthorized, errors.New("missing bearer token"))
	}
	return m.Parse(strings.TrimSpace(hdr[7:]))
}

type sessionCtxKey struct{}

func WithSession(ctx context.Context, c *SessionClaims) context.Context {
	return context.WithValue(ctx, sessionCtxKey{}, c)
}

// SessionUserID returns the authenticated dashboard user, or "".
func SessionUserID(ctx context.Context) string {
	if c, ok := ctx.Value(sessionCtxKey{}).(*SessionClaims); ok {
		return c.Subject
	}
	return ""
}
