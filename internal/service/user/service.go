package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/iamasit07/game-records/internal/domain"
	"github.com/iamasit07/game-records/pkg/auth"
	"github.com/sirupsen/logrus"
)

// UserRepository returns (nil, nil) from lookups that match nothing.
type UserRepository interface {
	CreateUser(ctx context.Context, u domain.User) (string, error)
	GetUserByID(ctx context.Context, id string) (*domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
}

type TokenIssuer interface {
	GenerateAccessToken(userID, username string) (string, error)
}

type Service struct {
	repo   UserRepository
	tokens TokenIssuer
	log    logrus.FieldLogger
}

func NewService(repo UserRepository, tokens TokenIssuer, logger logrus.FieldLogger) *Service {
	return &Service{
		repo:   repo,
		tokens: tokens,
		log:    logger.WithField("component", "users"),
	}
}

// Register creates a user with a bcrypt-hashed password and signs it in.
func (s *Service) Register(ctx context.Context, input domain.RegisterInput) (string, *domain.User, error) {
	input.Normalize()
	if err := input.Validate(); err != nil {
		return "", nil, err
	}

	existing, err := s.repo.GetUserByUsername(ctx, input.Username)
	if err != nil {
		s.log.WithError(err).Error("failed to look up username")
		return "", nil, err
	}
	if existing != nil {
		return "", nil, fmt.Errorf("username %q already taken: %w", input.Username, domain.ErrConflict)
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return "", nil, fmt.Errorf("failed to hash password: %w", err)
	}

	u := domain.User{
		Username:     input.Username,
		Nome:         input.Nome,
		Picture:      input.Picture,
		PasswordHash: hash,
	}
	id, err := s.repo.CreateUser(ctx, u)
	if err != nil {
		if !errors.Is(err, domain.ErrConflict) {
			s.log.WithError(err).Error("failed to create user")
		}
		return "", nil, err
	}

	created, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		return "", nil, err
	}
	if created == nil {
		u.ID = id
		created = &u
	}

	token, err := s.tokens.GenerateAccessToken(created.ID, created.Username)
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate token: %w", err)
	}
	s.log.WithField("user_id", id).Info("user registered")
	return token, created, nil
}

// Login checks the credentials and issues an access token.
func (s *Service) Login(ctx context.Context, username, password string) (string, *domain.User, error) {
	u, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		s.log.WithError(err).Error("failed to look up username")
		return "", nil, err
	}
	if u == nil || !auth.CheckPasswordHash(password, u.PasswordHash) {
		return "", nil, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
	}

	token, err := s.tokens.GenerateAccessToken(u.ID, u.Username)
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return token, u, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*domain.User, error) {
	u, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
	}
	return u, nil
}
