// Package auth implements credential authentication and session tokens.
package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/catometrics/server/internal/domain/audit"
	"github.com/catometrics/server/internal/model"
	"github.com/catometrics/server/internal/shared/metrics"
)

// TokenPair is the result of a successful login or refresh.
type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Config holds auth service configuration.
type Config struct {
	LoginRateLimit  int
	LoginRateWindow time.Duration
}

// Service implements authentication and session management.
type Service struct {
	users    UserRepository
	tokens   RefreshTokenRepository
	limiter  RateLimiter
	jwt      *JWTManager
	recorder *audit.Recorder
	cfg      Config
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// NewService creates a new auth service.
func NewService(
	users UserRepository,
	tokens RefreshTokenRepository,
	limiter RateLimiter,
	jwtManager *JWTManager,
	recorder *audit.Recorder,
	cfg Config,
	m *metrics.Metrics,
	logger *zap.Logger,
) *Service {
	if cfg.LoginRateLimit <= 0 {
		cfg.LoginRateLimit = 5
	}
	if cfg.LoginRateWindow <= 0 {
		cfg.LoginRateWindow = time.Minute
	}
	return &Service{
		users:    users,
		tokens:   tokens,
		limiter:  limiter,
		jwt:      jwtManager,
		recorder: recorder,
		cfg:      cfg,
		metrics:  m,
		logger:   logger,
	}
}

// Register creates a new user with a password credential.
func (s *Service) Register(ctx context.Context, email, name, password string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil && err != ErrUserNotFound {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if existing != nil {
		return nil, ErrEmailAlreadyExists
	}

	if password == "" {
		return nil, ErrPasswordRequired
	}
	if len(password) < 8 {
		return nil, ErrPasswordTooShort
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	hashStr := string(hash)
	u := &model.User{
		ID:           uuid.New(),
		Email:        email,
		Name:         name,
		PasswordHash: &hashStr,
		IsActive:     true,
	}

	if err := s.users.Create(ctx, u); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("user registered",
		zap.String("user_id", u.ID.String()),
		zap.String("email", email),
	)
	return u, nil
}

// Login authenticates a user by email and password and issues a token pair.
func (s *Service) Login(ctx context.Context, email, password, ipAddress, userAgent string) (*TokenPair, *model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	if s.limiter != nil {
		key := "login:" + email + ":" + ipAddress
		allowed, err := s.limiter.Allow(ctx, key, s.cfg.LoginRateLimit, s.cfg.LoginRateWindow)
		if err != nil {
			// A broken limiter must not lock everyone out.
			s.logger.Warn("login rate limiter unavailable", zap.Error(err))
		} else if !allowed {
			s.recordEvent("login", "rate_limited")
			return nil, nil, ErrRateLimited
		}
	}

	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if err == ErrUserNotFound {
			s.recordEvent("login", "invalid_credentials")
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, fmt.Errorf("find user: %w", err)
	}

	if !u.CanLogin() {
		s.recordEvent("login", "disabled")
		return nil, nil, ErrAccountDisabled
	}

	if !u.HasPassword() {
		s.recordEvent("login", "invalid_credentials")
		return nil, nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(*u.PasswordHash), []byte(password)); err != nil {
		s.recordEvent("login", "invalid_credentials")
		return nil, nil, ErrInvalidCredentials
	}

	now := time.Now()
	if err := s.users.RecordLogin(ctx, u.ID, now); err != nil {
		// last_login is informational; a failed update does not block login.
		s.logger.Warn("record last login failed", zap.Error(err))
	}

	pair, err := s.issueTokens(ctx, u, ipAddress, userAgent)
	if err != nil {
		return nil, nil, err
	}

	s.recordEvent("login", "success")
	s.recorder.Record(ctx, audit.Entry{
		UserID:     u.ID,
		Action:     model.AuditActionLogin,
		EntityType: "user",
		EntityID:   &u.ID,
		Details:    map[string]any{"email": u.Email},
		IPAddress:  ipAddress,
	})

	return pair, u, nil
}

// Refresh rotates a refresh token and re-derives the access-token claims
// from the persisted user record, so name/email/superadmin changes
// converge within one refresh interval. If the user record is gone or
// deactivated, the session is invalidated.
func (s *Service) Refresh(ctx context.Context, rawRefreshToken, ipAddress, userAgent string) (*TokenPair, error) {
	stored, err := s.tokens.FindByHash(ctx, s.jwt.HashRefreshToken(rawRefreshToken))
	if err != nil {
		if err == ErrInvalidToken {
			s.recordEvent("refresh", "invalid_token")
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("find refresh token: %w", err)
	}

	if stored.IsRevoked() {
		s.recordEvent("refresh", "revoked")
		return nil, ErrTokenRevoked
	}
	if stored.IsExpired() {
		s.recordEvent("refresh", "expired")
		return nil, ErrTokenExpired
	}

	u, err := s.users.FindByID(ctx, stored.UserID)
	if err != nil {
		if err == ErrUserNotFound {
			s.invalidate(ctx, stored.ID)
			s.recordEvent("refresh", "invalidated")
			return nil, ErrSessionInvalidated
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	if !u.IsActive {
		s.invalidate(ctx, stored.ID)
		s.recordEvent("refresh", "invalidated")
		return nil, ErrSessionInvalidated
	}

	// Rotate: the old token is revoked before the new pair is issued.
	if err := s.tokens.Revoke(ctx, stored.ID); err != nil {
		return nil, fmt.Errorf("revoke refresh token: %w", err)
	}

	pair, err := s.issueTokens(ctx, u, ipAddress, userAgent)
	if err != nil {
		return nil, err
	}

	s.recordEvent("refresh", "success")
	return pair, nil
}

// Logout revokes the refresh token for the current session.
func (s *Service) Logout(ctx context.Context, actorID uuid.UUID, rawRefreshToken, ipAddress string) error {
	stored, err := s.tokens.FindByHash(ctx, s.jwt.HashRefreshToken(rawRefreshToken))
	if err != nil {
		if err == ErrInvalidToken {
			return ErrInvalidToken
		}
		return fmt.Errorf("find refresh token: %w", err)
	}

	if err := s.tokens.Revoke(ctx, stored.ID); err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}

	s.recordEvent("logout", "success")
	s.recorder.Record(ctx, audit.Entry{
		UserID:     actorID,
		Action:     model.AuditActionLogout,
		EntityType: "user",
		EntityID:   &actorID,
		IPAddress:  ipAddress,
	})
	return nil
}

// GetUser returns the user record for the given id.
func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return s.users.FindByID(ctx, id)
}

func (s *Service) issueTokens(ctx context.Context, u *model.User, ipAddress, userAgent string) (*TokenPair, error) {
	access, expiresAt, err := s.jwt.GenerateAccessToken(Claims{
		UserID:       u.ID,
		Name:         u.Name,
		Email:        u.Email,
		IsSuperAdmin: u.IsSuperAdmin,
	})
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	raw, hash, refreshExpiry, err := s.jwt.GenerateRefreshToken()
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}

	if err := s.tokens.Create(ctx, &model.RefreshToken{
		ID:        uuid.New(),
		UserID:    u.ID,
		TokenHash: hash,
		ExpiresAt: refreshExpiry,
		UserAgent: userAgent,
		IPAddress: ipAddress,
	}); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: raw,
		ExpiresAt:    expiresAt,
	}, nil
}

func (s *Service) invalidate(ctx context.Context, tokenID uuid.UUID) {
	if err := s.tokens.Revoke(ctx, tokenID); err != nil {
		s.logger.Warn("invalidate refresh token failed",
			zap.String("token_id", tokenID.String()),
			zap.Error(err),
		)
	}
}

func (s *Service) recordEvent(event, outcome string) {
	if s.metrics != nil {
		s.metrics.RecordAuthEvent(event, outcome)
	}
}
