package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/RubachokBoss/exam-eligibility/internal/models"
	"github.com/RubachokBoss/exam-eligibility/internal/repository"
	"github.com/RubachokBoss/exam-eligibility/pkg/hash"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type AuthService interface {
	Login(ctx context.Context, req *models.LoginRequest) (*models.Session, error)
	CreateSession(ctx context.Context, userID int64, username string, role models.Role) (*models.Session, error)
	// ResolveSession returns nil for a missing, unknown or expired token.
	ResolveSession(ctx context.Context, token string) *models.Session
	DestroySession(ctx context.Context, token string) error
	PurgeExpired(ctx context.Context) (int64, error)
	EnsureTeacher(ctx context.Context, username, password string) error
}

type authService struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	hasher      hash.PasswordHasher
	sessionTTL  time.Duration
	now         func() time.Time
	logger      zerolog.Logger

	dummyOnce sync.Once
	dummyHash string
}

func NewAuthService(
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	hasher hash.PasswordHasher,
	sessionTTL time.Duration,
	logger zerolog.Logger,
) AuthService {
	return &authService{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		hasher:      hasher,
		sessionTTL:  sessionTTL,
		now:         time.Now,
		logger:      logger,
	}
}

func (s *authService) Login(ctx context.Context, req *models.LoginRequest) (*models.Session, error) {
	req.Username = strings.TrimSpace(req.Username)
	if err := validate.Struct(req); err != nil {
		return nil, validationFailure(err, ErrCredentialsRequired, ErrCredentialsRequired)
	}

	user, err := s.userRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		s.equalizeTiming(req.Password)
		s.logger.Info().Str("username", req.Username).Msg("Login rejected: unknown user")
		return nil, ErrInvalidCredentials
	}

	ok, err := s.hasher.Verify(req.Password, user.PasswordHash)
	if err != nil {
		s.logger.Error().Err(err).Int64("user_id", user.ID).Msg("Stored password hash is unreadable")
		return nil, ErrInvalidCredentials
	}
	if !ok {
		s.logger.Info().Int64("user_id", user.ID).Msg("Login rejected: wrong password")
		return nil, ErrInvalidCredentials
	}

	session, err := s.CreateSession(ctx, user.ID, user.Username, user.Role)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("user_id", user.ID).
		Str("role", user.Role.String()).
		Msg("Login successful")

	return session, nil
}

func (s *authService) CreateSession(ctx context.Context, userID int64, username string, role models.Role) (*models.Session, error) {
	now := s.now()
	session := &models.Session{
		Token:     uuid.NewString(),
		UserID:    userID,
		Username:  username,
		Role:      role,
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionTTL),
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return session, nil
}

func (s *authService) ResolveSession(ctx context.Context, token string) *models.Session {
	if token == "" {
		return nil
	}

	session, err := s.sessionRepo.GetByToken(ctx, token)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to load session")
		return nil
	}
	if session == nil {
		return nil
	}

	if session.ExpiredAt(s.now()) {
		if err := s.sessionRepo.Delete(ctx, token); err != nil {
			s.logger.Warn().Err(err).Int64("user_id", session.UserID).Msg("Failed to delete expired session")
		}
		return nil
	}

	return session
}

func (s *authService) DestroySession(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.sessionRepo.Delete(ctx, token); err != nil {
		return fmt.Errorf("failed to destroy session: %w", err)
	}
	return nil
}

func (s *authService) PurgeExpired(ctx context.Context) (int64, error) {
	removed, err := s.sessionRepo.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("failed to purge expired sessions: %w", err)
	}
	return removed, nil
}

// EnsureTeacher creates a teacher account when the username is free and
// leaves an existing account untouched.
func (s *authService) EnsureTeacher(ctx context.Context, username, password string) error {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return ErrCredentialsRequired
	}

	existing, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return fmt.Errorf("failed to check teacher %q: %w", username, err)
	}
	if existing != nil {
		if existing.Role != models.RoleTeacher {
			s.logger.Warn().
				Str("username", username).
				Str("role", existing.Role.String()).
				Msg("Bootstrap teacher name is taken by another role")
		}
		return nil
	}

	hashed, err := s.hasher.Hash(password)
	if err != nil {
		return err
	}

	teacher := &models.User{
		Username:     username,
		PasswordHash: hashed,
		Role:         models.RoleTeacher,
	}
	if err := s.userRepo.Create(ctx, teacher); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil
		}
		return fmt.Errorf("failed to create teacher %q: %w", username, err)
	}

	s.logger.Info().Int64("user_id", teacher.ID).Str("username", username).Msg("Teacher account provisioned")
	return nil
}

// equalizeTiming spends one hash comparison so unknown usernames take as long
// as wrong passwords.
func (s *authService) equalizeTiming(password string) {
	s.dummyOnce.Do(func() {
		hashed, err := s.hasher.Hash("timing-equalizer")
		if err != nil {
			s.logger.Error().Err(err).Msg("Failed to prepare dummy hash")
			return
		}
		s.dummyHash = hashed
	})
	if s.dummyHash != "" {
		_, _ = s.hasher.Verify(password, s.dummyHash)
	}
}
