package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"account_service/internal/apperror"
	"account_service/internal/auth"
	"account_service/internal/observability"
)

type SignupCommand struct {
	ID       uuid.UUID
	Email    string
	Username string
	Password string
}

type SignupResult struct {
	ID         uuid.UUID
	Email      string
	Username   string
	CreateTime time.Time
	UpdateTime time.Time
}

type LoginCommand struct {
	Email    string
	Password string
}

type LoginResult struct {
	ID         uuid.UUID
	Email      string
	Username   string
	CreateTime time.Time
	UpdateTime time.Time
}

type UserService struct {
	repo    UserRepositoryInterface
	hasher  auth.PasswordHasher
	metrics *observability.Metrics
}

type UserServiceInterface interface {
	Signup(ctx context.Context, cmd SignupCommand) (*SignupResult, error)
	Login(ctx context.Context, cmd LoginCommand) (*LoginResult, error)
}

// NewUserService builds the registration service. metrics may be nil;
// signup counters and hash timings are then skipped.
func NewUserService(repo UserRepositoryInterface, hasher auth.PasswordHasher, metrics *observability.Metrics) UserServiceInterface {
	return &UserService{repo: repo, hasher: hasher, metrics: metrics}
}

// Signup registers a new account. The password is hashed before any
// transaction is opened so the CPU-bound work never holds a database
// connection. A lost uniqueness race is reported as a typed conflict
// error; no retry is attempted.
func (s *UserService) Signup(ctx context.Context, cmd SignupCommand) (*SignupResult, error) {
	start := time.Now()
	hash, err := s.hasher.Hash(cmd.Password)
	if err != nil {
		s.metrics.CountSignup(observability.SignupOutcomeError)
		return nil, fmt.Errorf("hash password: %w", err)
	}
	s.metrics.ObservePasswordHash(time.Since(start))
	now := time.Now().UTC()

	result, err := s.repo.Create(ctx, CreateUserCommand{
		ID:         cmd.ID,
		Email:      cmd.Email,
		Username:   cmd.Username,
		Password:   hash,
		CreateTime: now,
		UpdateTime: now,
	})
	if err != nil {
		s.metrics.CountSignup(observability.SignupOutcomeError)
		return nil, err
	}

	if result.Conflict {
		// Email is checked before id: when both collide, the email
		// conflict is the one reported.
		switch {
		case cmd.Email == result.User.Email:
			s.metrics.CountSignup(observability.SignupOutcomeEmailConflict)
			return nil, apperror.New(apperror.EmailAlreadyExists)
		case cmd.ID == result.User.ID:
			s.metrics.CountSignup(observability.SignupOutcomeIDConflict)
			return nil, apperror.New(apperror.ResourceIDAlreadyExists)
		default:
			s.metrics.CountSignup(observability.SignupOutcomeError)
			return nil, fmt.Errorf("conflicting row %s matches neither id nor email of signup %s",
				result.User.ID, cmd.ID)
		}
	}

	s.metrics.CountSignup(observability.SignupOutcomeCreated)
	return &SignupResult{
		ID:         cmd.ID,
		Email:      cmd.Email,
		Username:   cmd.Username,
		CreateTime: now,
		UpdateTime: now,
	}, nil
}

// Login authenticates by email and password. A missing user and a wrong
// password are reported identically.
func (s *UserService) Login(ctx context.Context, cmd LoginCommand) (*LoginResult, error) {
	u, err := s.repo.GetByEmail(ctx, cmd.Email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, apperror.New(apperror.AuthenticationFail)
		}
		return nil, err
	}

	ok, err := s.hasher.Verify(cmd.Password, u.Password)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return nil, apperror.New(apperror.AuthenticationFail)
	}

	if rehash, err := s.hasher.NeedsRehash(u.Password); err == nil && rehash {
		logrus.WithField("user_id", u.ID).Warn("Stored password hash uses outdated parameters")
	}

	return &LoginResult{
		ID:         u.ID,
		Email:      u.Email,
		Username:   u.Username,
		CreateTime: u.CreateTime,
		UpdateTime: u.UpdateTime,
	}, nil
}
