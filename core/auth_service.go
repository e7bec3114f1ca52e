package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// LoginResult is what a successful code exchange yields: a session token
// and the resolved local user.
type LoginResult struct {
	Token string
	User  *User
}

type AuthService struct {
	repo     Repository
	provider IdentityProvider
	config   *Config
}

func NewAuthService(repo Repository, provider IdentityProvider, config *Config) *AuthService {
	return &AuthService{
		repo:     repo,
		provider: provider,
		config:   config,
	}
}

// Login exchanges an authorization code for verified identity claims,
// finds or creates the local user keyed by subject id, and issues a
// session token. Codes are single-use by provider contract, so nothing
// here is retried; a failed exchange requires a fresh code.
func (s *AuthService) Login(ctx context.Context, code string) (*LoginResult, error) {
	if code == "" {
		return nil, fmt.Errorf("%w: empty authorization code", ErrExchangeFailed)
	}

	claims, err := s.provider.Exchange(ctx, code)
	if err != nil {
		return nil, err
	}

	user, err := s.resolveUser(ctx, claims)
	if err != nil {
		return nil, err
	}

	token, err := IssueSessionToken(user, s.config)
	if err != nil {
		return nil, fmt.Errorf("failed to issue session token: %w", err)
	}

	return &LoginResult{Token: token, User: user}, nil
}

// resolveUser finds the user for the claimed subject id, creating it on
// first login. A concurrent creation race surfaces as ErrAlreadyExists
// from the store's uniqueness constraint; the loser re-reads so both
// callers converge on the single surviving record.
func (s *AuthService) resolveUser(ctx context.Context, claims *IdentityClaims) (*User, error) {
	user, err := s.repo.FindBySubjectID(ctx, claims.SubjectID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("%w: %v", ErrDirectoryUnavailable, err)
	}

	now := time.Now()
	user = &User{
		ID:        uuid.New(),
		SubjectID: claims.SubjectID,
		Email:     claims.Email,
		Name:      claims.Name,
		Picture:   claims.Picture,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if !errors.Is(err, ErrAlreadyExists) {
			return nil, fmt.Errorf("%w: %v", ErrDirectoryUnavailable, err)
		}
		user, err = s.repo.FindBySubjectID(ctx, claims.SubjectID)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDirectoryUnavailable, err)
		}
	}

	return user, nil
}

// Authenticate verifies a session token and re-resolves its embedded user
// id against the directory. A structurally valid token whose user no
// longer exists is rejected as invalid, not authenticated.
func (s *AuthService) Authenticate(ctx context.Context, rawToken string) (uuid.UUID, error) {
	claims, err := VerifySessionToken(rawToken, s.config)
	if err != nil {
		return uuid.Nil, err
	}

	user, err := s.repo.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return uuid.Nil, ErrInvalidToken
		}
		return uuid.Nil, fmt.Errorf("%w: %v", ErrDirectoryUnavailable, err)
	}

	return user.ID, nil
}
