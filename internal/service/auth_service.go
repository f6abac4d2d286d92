package service

import (
	"errors"
	"strings"
	"time"

	"tasklists/internal/domain"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	BcryptCost = 12
	TokenTTL   = 7 * 24 * time.Hour

	// MaxPasswordBytes is the longest input bcrypt hashes.
	MaxPasswordBytes = 72

	bearerPrefix = "Bearer "
)

var (
	ErrEmptySecret     = errors.New("jwt secret is empty")
	ErrPasswordTooLong = errors.New("password exceeds 72 bytes")
)

// Claims is the token payload. user_id and email identify the subject;
// exp, iat and nbf come from the registered claims.
type Claims struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// AuthService hashes passwords and issues/verifies tokens. It holds no
// mutable state and is safe for concurrent use.
type AuthService struct {
	secret []byte
	cost   int
	ttl    time.Duration
	now    func() time.Time
}

func NewAuthService(secret string) (*AuthService, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	return &AuthService{
		secret: []byte(secret),
		cost:   BcryptCost,
		ttl:    TokenTTL,
		now:    time.Now,
	}, nil
}

// WithBcryptCost returns a copy using cost for new hashes. Existing hashes
// keep verifying since bcrypt stores the cost in the hash.
func (s *AuthService) WithBcryptCost(cost int) *AuthService {
	cp := *s
	cp.cost = cost
	return &cp
}

func (s *AuthService) HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), s.cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", ErrPasswordTooLong
	}
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword reports whether plain matches hash. A malformed hash is
// a mismatch.
func (s *AuthService) VerifyPassword(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

func (s *AuthService) GenerateToken(u *domain.User) (string, error) {
	now := s.now()
	claims := Claims{
		UserID: u.ID,
		Email:  u.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// VerifyToken returns the claims of a valid token. Every failure (bad
// signature, expiry, malformed input, unexpected algorithm) yields false.
func (s *AuthService) VerifyToken(raw string) (*Claims, bool) {
	if raw == "" {
		return nil, false
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return nil, false
	}
	if claims.UserID == 0 {
		return nil, false
	}
	return claims, true
}

// ExtractTokenFromHeader strips a case-sensitive "Bearer " prefix.
func ExtractTokenFromHeader(header string) (string, bool) {
	token, ok := strings.CutPrefix(header, bearerPrefix)
	if !ok || token == "" {
		return "", false
	}
	return token, true
}
