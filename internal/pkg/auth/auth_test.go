package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/eticaret/storefront/internal/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	cfg := testutil.NewConfig(t)
	j := NewJWTManager(cfg)

	token, err := j.GenerateAccessToken(12, "ayse@example.com", true)
	require.NoError(t, err)

	claims, err := j.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(12), claims.UserID)
	assert.Equal(t, "ayse@example.com", claims.Email)
	assert.True(t, claims.IsAdmin)
	assert.Equal(t, "user:12", claims.Subject)
}

func TestAccessTokenRejected(t *testing.T) {
	cfg := testutil.NewConfig(t)
	j := NewJWTManager(cfg)

	token, err := j.GenerateAccessToken(12, "ayse@example.com", false)
	require.NoError(t, err)

	other := testutil.NewConfig(t)
	other.JWT.Secret = "another-secret-another-secret-another-secret"
	_, err = NewJWTManager(other).ValidateAccessToken(token)
	assert.True(t, errors.Is(err, ErrInvalidToken))

	j.now = func() time.Time { return time.Now().Add(cfg.JWT.AccessTokenExpiry + time.Hour) }
	_, err = j.ValidateAccessToken(token)
	assert.True(t, errors.Is(err, ErrInvalidToken))

	_, err = j.ValidateAccessToken("not-a-jwt")
	assert.True(t, errors.Is(err, ErrInvalidToken))
}

func TestExtractTokenFromHeader(t *testing.T) {
	assert.Equal(t, "abc.def", ExtractTokenFromHeader("Bearer abc.def"))
	assert.Equal(t, "abc.def", ExtractTokenFromHeader("bearer abc.def"))
	assert.Empty(t, ExtractTokenFromHeader("Basic abc"))
	assert.Empty(t, ExtractTokenFromHeader("Bearer "))
}

func TestPasswordHashing(t *testing.T) {
	cfg := testutil.NewConfig(t)
	cfg.Security.BcryptCost = bcrypt.MinCost
	p := NewPasswordManager(cfg)

	hash, err := p.HashPassword("kirmizi2024")
	require.NoError(t, err)
	assert.NotEqual(t, "kirmizi2024", hash)
	assert.NoError(t, p.VerifyPassword("kirmizi2024", hash))
	assert.Error(t, p.VerifyPassword("kirmizi2025", hash))
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		password string
		valid    bool
	}{
		{"kisa1", false},
		{"sadeceharf", false},
		{"1234567890", false},
		{"harfvesayi1", true},
	}

	for _, tt := range tests {
		t.Run(tt.password, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
