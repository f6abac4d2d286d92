package service

import (
	"context"
	"errors"
	"fmt"

	"tasklists/internal/db"
	"tasklists/internal/domain"
	"tasklists/internal/logger"
	"tasklists/internal/repository"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// AccountService implements registration and login on top of the user
// repository and AuthService. The querier is passed per call so requests
// can run on their own store session.
type AccountService struct {
	auth *AuthService

	// compared against when the email is unknown so both paths cost one
	// bcrypt comparison
	dummyHash string
}

func NewAccountService(auth *AuthService) (*AccountService, error) {
	dummy, err := auth.HashPassword("not-a-real-password")
	if err != nil {
		return nil, fmt.Errorf("prepare dummy hash: %w", err)
	}
	return &AccountService{auth: auth, dummyHash: dummy}, nil
}

func (s *AccountService) Auth() *AuthService {
	return s.auth
}

// Register creates the user and issues a token.
func (s *AccountService) Register(ctx context.Context, q db.Querier, email, password string) (*domain.User, string, error) {
	hash, err := s.auth.HashPassword(password)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	u, err := repository.NewUserRepository(q).CreateUser(ctx, email, hash)
	if errors.Is(err, db.ErrUniqueViolation) {
		return nil, "", ErrEmailTaken
	}
	if err != nil {
		return nil, "", err
	}

	token, err := s.auth.GenerateToken(u)
	if err != nil {
		return nil, "", fmt.Errorf("generate token: %w", err)
	}

	logger.Info("user registered", "user_id", u.ID)
	return u, token, nil
}

// Login checks the credentials and issues a token. Unknown email and wrong
// password both return ErrInvalidCredentials.
func (s *AccountService) Login(ctx context.Context, q db.Querier, email, password string) (*domain.User, string, error) {
	u, err := repository.NewUserRepository(q).FindUserByEmail(ctx, email)
	if err != nil {
		return nil, "", err
	}
	if u == nil {
		s.auth.VerifyPassword(password, s.dummyHash)
		return nil, "", ErrInvalidCredentials
	}
	if !s.auth.VerifyPassword(password, u.PasswordHash) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.auth.GenerateToken(u)
	if err != nil {
		return nil, "", fmt.Errorf("generate token: %w", err)
	}
	return u, token, nil
}
