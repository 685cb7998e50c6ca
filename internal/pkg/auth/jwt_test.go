package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestJWT(now time.Time) *JWTService {
	s := NewJWTService(JWTConfig{
		SecretKey:       "test-secret",
		AccessTokenExp:  15 * time.Minute,
		RefreshTokenExp: 24 * time.Hour,
		TokenIssuer:     "alumni-test",
	})
	s.now = func() time.Time { return now }
	return s
}

func TestTokenRoundTrip(t *testing.T) {
	now := time.Now()
	s := newTestJWT(now)
	id := uuid.New()

	pair, err := s.GenerateTokenPair(Subject{UserID: id, Email: "a@example.com", Role: "ALUMNI"})
	require.NoError(t, err)
	assert.Equal(t, 900, pair.ExpiresIn)
	assert.NotEmpty(t, pair.RefreshToken)

	claims, err := s.ValidateAndExtractClaims(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, id, claims.UserID)
	assert.Equal(t, "ALUMNI", claims.Role)
	assert.Equal(t, id.String(), claims.Subject)
}

func TestExpiredToken(t *testing.T) {
	issued := time.Now().Add(-time.Hour)
	pair, err := newTestJWT(issued).GenerateTokenPair(Subject{UserID: uuid.New(), Role: "ALUMNI"})
	require.NoError(t, err)

	_, err = newTestJWT(time.Now()).ValidateToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestTokenSignedWithOtherKey(t *testing.T) {
	now := time.Now()
	other := NewJWTService(JWTConfig{SecretKey: "other", AccessTokenExp: time.Minute, TokenIssuer: "alumni-test"})
	other.now = func() time.Time { return now }
	pair, err := other.GenerateTokenPair(Subject{UserID: uuid.New(), Role: "ALUMNI"})
	require.NoError(t, err)

	_, err = newTestJWT(now).ValidateToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestExtractBearerToken(t *testing.T) {
	tok, err := ExtractBearerToken("Bearer abc.def")
	require.NoError(t, err)
	assert.Equal(t, "abc.def", tok)

	tok, err = ExtractBearerToken("raw")
	require.NoError(t, err)
	assert.Equal(t, "raw", tok)

	_, err = ExtractBearerToken("")
	assert.ErrorIs(t, err, ErrInvalidFormat)
	_, err = ExtractBearerToken("Bearer   ")
	assert.ErrorIs(t, err, ErrInvalidFormat)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPasswordWithCost("s3cret!", bcrypt.MinCost)
	require.NoError(t, err)
	assert.True(t, CheckPassword(hash, "s3cret!"))
	assert.False(t, CheckPassword(hash, "wrong"))
}
