//go:build !integration

package api_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"apivro/internal/config"
	"apivro/internal/domain"
	"apivro/internal/infra/api"
)

func newSessions(t *testing.T, secret string) *api.SessionManager {
	t.Helper()
	m, err := api.NewSessionManager(config.AuthConfig{JWTSecret: secret, Issuer: "apivro"})
	require.NoError(t, err)
	return m
}

func TestSessionManager(t *testing.T) {
	sessions := newSessions(t, "0123456789abcdef0123")

	t.Run("should round-trip a minted token", func(t *testing.T) {
		tok, err := sessions.Mint("user-1", "a@b.c", time.Hour)
		require.NoError(t, err)

		claims, err := sessions.Parse(tok)
		require.NoError(t, err)
		assert.Equal(t, "user-1", claims.Subject)
		assert.Equal(t, "a@b.c", claims.Email)
	})

	t.Run("should reject expired tokens", func(t *testing.T) {
		tok, err := sessions.Mint("user-1", "", -time.Minute)
		require.NoError(t, err)

		_, err = sessions.Parse(tok)
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("should reject tokens signed with another secret", func(t *testing.T) {
		other := newSessions(t, "another-secret-of-16+")
		tok, _ := other.Mint("user-1", "", time.Hour)

		_, err := sessions.Parse(tok)
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("should read the bearer header", func(t *testing.T) {
		tok, _ := sessions.Mint("user-9", "", time.Hour)
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Authorization", "Bearer "+tok)

		claims, err := sessions.ParseFromRequest(r)
		require.NoError(t, err)
		assert.Equal(t, "user-9", claims.Subject)

		ctx := api.WithSession(context.Background(), claims)
		assert.Equal(t, "user-9", api.SessionUserID(ctx))
	})

	t.Run("should reject a missing header", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		_, err := sessions.ParseFromRequest(r)
		assert.True(t, errors.Is(err, domain.ErrUnauthorized))
		assert.Equal(t, "", api.SessionUserID(context.Background()))
	})

	t.Run("should refuse a short secret", func(t *testing.T) {
		_, err := api.NewSessionManager(config.AuthConfig{JWTSecret: "short"})
		assert.Error(t, err)
	})
}
