package jwtx_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/openlms/auth/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func accessClaims(subject, username, email string, roles []string) *jwtx.Claims {
	return &jwtx.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
		TokenType: "access",
		Username:  username,
		Email:     email,
		Roles:     roles,
	}
}

func TestNewTokenInfo(t *testing.T) {
	t.Run("complete access payload", func(t *testing.T) {
		info := jwtx.NewTokenInfo(accessClaims("u1", "alice", "alice@example.com", []string{"student"}), false)
		require.Equal(t, jwtx.KindAccess, info.Kind)
		require.True(t, info.IsAccess())
		require.True(t, info.HasPayload)
		require.False(t, info.Expired)
		require.Equal(t, "u1", info.Subject)
		require.Equal(t, "alice", info.Username)
		require.Equal(t, "alice@example.com", info.Email)
		require.Equal(t, []string{"student"}, info.Roles)
	})

	t.Run("access token missing roles fails roles-present", func(t *testing.T) {
		info := jwtx.NewTokenInfo(accessClaims("u1", "alice", "alice@example.com", nil), false)
		require.Equal(t, jwtx.KindAccess, info.Kind)
		require.False(t, info.HasPayload)
		require.Equal(t, "roles-present", info.FailedCheck)
	})

	t.Run("access token with unshaped email fails email-shaped", func(t *testing.T) {
		info := jwtx.NewTokenInfo(accessClaims("u1", "alice", "not-an-email", []string{"student"}), false)
		require.False(t, info.HasPayload)
		require.Equal(t, "email-shaped", info.FailedCheck)
	})

	t.Run("access token missing username fails username-present", func(t *testing.T) {
		info := jwtx.NewTokenInfo(accessClaims("u1", "", "alice@example.com", []string{"student"}), false)
		require.False(t, info.HasPayload)
		require.Equal(t, "username-present", info.FailedCheck)
	})

	t.Run("refresh token needs only a subject", func(t *testing.T) {
		c := &jwtx.Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "u1",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
			TokenType: "refresh",
		}
		info := jwtx.NewTokenInfo(c, false)
		require.True(t, info.IsRefresh())
		require.True(t, info.HasPayload)
		require.Empty(t, info.Username)
	})

	t.Run("refresh token without subject is incomplete", func(t *testing.T) {
		c := &jwtx.Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
			TokenType: "refresh",
		}
		info := jwtx.NewTokenInfo(c, false)
		require.False(t, info.HasPayload)
		require.Equal(t, "subject-present", info.FailedCheck)
	})

	t.Run("unknown declared type short-circuits to undefined", func(t *testing.T) {
		c := accessClaims("u1", "alice", "alice@example.com", []string{"student"})
		c.TokenType = "session"
		info := jwtx.NewTokenInfo(c, false)
		require.Equal(t, jwtx.KindUndefined, info.Kind)
		require.False(t, info.HasPayload)
		require.Empty(t, info.Subject, "no field of an undefined token is trusted")
	})

	t.Run("nil claims mean nothing was recovered", func(t *testing.T) {
		info := jwtx.NewTokenInfo(nil, false)
		require.Equal(t, jwtx.KindUndefined, info.Kind)
		require.False(t, info.Expired)
	})

	t.Run("missing exp counts as expired", func(t *testing.T) {
		c := accessClaims("u1", "alice", "alice@example.com", []string{"student"})
		c.ExpiresAt = nil
		info := jwtx.NewTokenInfo(c, false)
		require.True(t, info.Expired)
	})
}

func TestDecodeInfo(t *testing.T) {
	codec := newTestCodec(t)

	t.Run("signed access token round trips", func(t *testing.T) {
		raw, err := codec.SignAccess(testPrincipal())
		require.NoError(t, err)

		info := codec.DecodeInfo(raw)
		require.True(t, info.IsAccess())
		require.True(t, info.HasPayload)
		require.False(t, info.Expired)
		require.Equal(t, testPrincipal().ID, info.Subject)
	})

	t.Run("expired token keeps subject and kind", func(t *testing.T) {
		codec.Now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
		raw, err := codec.SignRefresh(testPrincipal())
		require.NoError(t, err)
		codec.Now = nil

		info := codec.DecodeInfo(raw)
		require.True(t, info.IsRefresh())
		require.True(t, info.Expired)
		require.Equal(t, testPrincipal().ID, info.Subject)
	})

	t.Run("forged token is undefined", func(t *testing.T) {
		other := newTestCodec(t)
		raw, err := other.SignAccess(testPrincipal())
		require.NoError(t, err)

		info := codec.DecodeInfo(raw)
		require.Equal(t, jwtx.KindUndefined, info.Kind)
	})

	t.Run("service token passes decode but lacks role payload", func(t *testing.T) {
		raw, err := codec.SignService()
		require.NoError(t, err)

		info := codec.DecodeInfo(raw)
		require.True(t, info.IsAccess())
		require.Equal(t, jwtx.ServiceSubject, info.Subject)
		require.False(t, info.HasPayload)
		require.Equal(t, "roles-present", info.FailedCheck)
	})
}
