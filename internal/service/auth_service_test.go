package service

import (
	"strings"
	"testing"
	"time"

	"tasklists/internal/domain"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestAuth(t *testing.T, secret string) *AuthService {
	t.Helper()
	a, err := NewAuthService(secret)
	require.NoError(t, err)
	return a.WithBcryptCost(bcrypt.MinCost)
}

func TestNewAuthServiceRequiresSecret(t *testing.T) {
	_, err := NewAuthService("")
	require.ErrorIs(t, err, ErrEmptySecret)
}

func TestHashPasswordUsesCost12ByDefault(t *testing.T) {
	a, err := NewAuthService("secret")
	require.NoError(t, err)

	hash, err := a.HashPassword("hunter22")
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, BcryptCost, cost)
	assert.True(t, a.VerifyPassword("hunter22", hash))
}

func TestVerifyPassword(t *testing.T) {
	a := newTestAuth(t, "secret")

	hash, err := a.HashPassword("correct horse")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", hash)

	assert.True(t, a.VerifyPassword("correct horse", hash))
	assert.False(t, a.VerifyPassword("wrong", hash))
	assert.False(t, a.VerifyPassword("correct horse", "not-a-bcrypt-hash"))
	assert.False(t, a.VerifyPassword("", ""))
}

func TestHashPasswordLengthLimit(t *testing.T) {
	a := newTestAuth(t, "secret")

	hash, err := a.HashPassword(strings.Repeat("a", MaxPasswordBytes))
	require.NoError(t, err)
	assert.True(t, a.VerifyPassword(strings.Repeat("a", MaxPasswordBytes), hash))

	_, err = a.HashPassword(strings.Repeat("a", MaxPasswordBytes+1))
	require.ErrorIs(t, err, ErrPasswordTooLong)
}

func TestHashPasswordSalts(t *testing.T) {
	a := newTestAuth(t, "secret")

	h1, err := a.HashPassword("same")
	require.NoError(t, err)
	h2, err := a.HashPassword("same")
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)
}

func TestGenerateAndVerifyToken(t *testing.T) {
	a := newTestAuth(t, "secret")
	u := &domain.User{ID: 42, Email: "a@x.com"}

	token, err := a.GenerateToken(u)
	require.NoError(t, err)

	claims, ok := a.VerifyToken(token)
	require.True(t, ok)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "a@x.com", claims.Email)
	require.NotNil(t, claims.ExpiresAt)
	require.NotNil(t, claims.IssuedAt)
	assert.Equal(t, TokenTTL, claims.ExpiresAt.Sub(claims.IssuedAt.Time))
}

func TestVerifyTokenWrongSecret(t *testing.T) {
	issuer := newTestAuth(t, "secret-one")
	verifier := newTestAuth(t, "secret-two")

	token, err := issuer.GenerateToken(&domain.User{ID: 1, Email: "a@x.com"})
	require.NoError(t, err)

	claims, ok := verifier.VerifyToken(token)
	assert.False(t, ok)
	assert.Nil(t, claims)
}

func TestVerifyTokenExpired(t *testing.T) {
	a := newTestAuth(t, "secret")
	issuedAt := time.Now().Add(-8 * 24 * time.Hour)
	a.now = func() time.Time { return issuedAt }

	token, err := a.GenerateToken(&domain.User{ID: 1, Email: "a@x.com"})
	require.NoError(t, err)

	a.now = time.Now
	_, ok := a.VerifyToken(token)
	assert.False(t, ok)
}

func TestVerifyTokenNotYetValid(t *testing.T) {
	a := newTestAuth(t, "secret")
	a.now = func() time.Time { return time.Now().Add(time.Hour) }

	token, err := a.GenerateToken(&domain.User{ID: 1, Email: "a@x.com"})
	require.NoError(t, err)

	a.now = time.Now
	_, ok := a.VerifyToken(token)
	assert.False(t, ok)
}

func TestVerifyTokenRejectsGarbageAndOtherAlgorithms(t *testing.T) {
	a := newTestAuth(t, "secret")

	for _, raw := range []string{"", "abc", "a.b.c", "Bearer xyz"} {
		_, ok := a.VerifyToken(raw)
		assert.False(t, ok, raw)
	}

	now := time.Now()
	claims := Claims{
		UserID: 1,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, ok := a.VerifyToken(none)
	assert.False(t, ok, "alg none")

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("secret"))
	require.NoError(t, err)
	_, ok = a.VerifyToken(hs512)
	assert.False(t, ok, "HS512")
}

func TestVerifyTokenRequiresExpiry(t *testing.T) {
	a := newTestAuth(t, "secret")

	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{UserID: 1}).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, ok := a.VerifyToken(raw)
	assert.False(t, ok)
}

func TestExtractTokenFromHeader(t *testing.T) {
	cases := []struct {
		header string
		want   string
		ok     bool
	}{
		{"Bearer xyz", "xyz", true},
		{"Bearer a.b.c", "a.b.c", true},
		{"Basic abc", "", false},
		{"bearer xyz", "", false},
		{"Bearer ", "", false},
		{"Bearer", "", false},
		{"", "", false},
	}

	for _, tc := range cases {
		got, ok := ExtractTokenFromHeader(tc.header)
		assert.Equal(t, tc.ok, ok, tc.header)
		assert.Equal(t, tc.want, got, tc.header)
	}
}
