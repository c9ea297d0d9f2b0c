package service

import (
	"testing"
	"time"

	"github.com/aureliov/medicall/internal/domain"
	"github.com/stretchr/testify/require"
)

func TestAuthServiceRoundTrip(t *testing.T) {
	req := require.New(t)
	auth := NewAuthService("test-secret", time.Hour, nil)

	token, err := auth.GenerateToken("Doctor@Example.com", domain.RoleDoctor, 42)
	req.NoError(err)

	identity, err := auth.IdentityFromToken(token)
	req.NoError(err)
	req.Equal("doctor@example.com", identity.Email)
	req.Equal(domain.RoleDoctor, identity.Role)
	req.Equal(int64(42), identity.DoctorID)
}

func TestAuthServiceRoleDefaultsToUser(t *testing.T) {
	req := require.New(t)
	auth := NewAuthService("test-secret", time.Hour, nil)

	token, err := auth.GenerateToken("patient@example.com", "", 0)
	req.NoError(err)

	identity, err := auth.IdentityFromToken(token)
	req.NoError(err)
	req.Equal(domain.RoleUser, identity.Role)
}

func TestAuthServiceRejections(t *testing.T) {
	req := require.New(t)
	auth := NewAuthService("test-secret", time.Hour, nil)

	_, err := auth.IdentityFromToken("")
	req.ErrorIs(err, ErrUnauthorized)

	_, err = auth.IdentityFromToken("not-a-token")
	req.ErrorIs(err, ErrUnauthorized)

	// Signed with a different secret.
	other := NewAuthService("other-secret", time.Hour, nil)
	token, err := other.GenerateToken("patient@example.com", domain.RoleUser, 0)
	req.NoError(err)
	_, err = auth.IdentityFromToken(token)
	req.ErrorIs(err, ErrUnauthorized)

	// Expired.
	expired := NewAuthService("test-secret", -time.Hour, nil)
	token, err = expired.GenerateToken("patient@example.com", domain.RoleUser, 0)
	req.NoError(err)
	_, err = auth.IdentityFromToken(token)
	req.ErrorIs(err, ErrUnauthorized)
}
