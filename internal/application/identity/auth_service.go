package identity

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/auth"
	"go.uber.org/zap"
)

// LoginLimiter throttles failed login attempts per (client, email) key
type LoginLimiter interface {
	TooManyAttempts(key string) (bool, time.Duration)
	RecordFailure(key string)
	Reset(key string)
}

// LoginMetrics receives login outcomes. Implemented by the telemetry
// layer; a nil value disables recording.
type LoginMetrics interface {
	RecordLoginFailure(ctx context.Context)
	RecordLoginThrottled(ctx context.Context)
}

// AuthService handles authentication operations
type AuthService struct {
	userRepo   identity.UserRepository
	jwtService *auth.JWTService
	blacklist  auth.TokenBlacklist
	limiter    LoginLimiter
	logger     *zap.Logger
	metrics    LoginMetrics
}

// NewAuthService creates a new authentication service
func NewAuthService(
	userRepo identity.UserRepository,
	jwtService *auth.JWTService,
	blacklist auth.TokenBlacklist,
	limiter LoginLimiter,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		jwtService: jwtService,
		blacklist:  blacklist,
		limiter:    limiter,
		logger:     logger,
	}
}

// WithMetrics attaches login metrics recording
func (s *AuthService) WithMetrics(metrics LoginMetrics) *AuthService {
	s.metrics = metrics
	return s
}

// Register creates a customer account and signs it in
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	exists, err := s.userRepo.ExistsByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "An account with this email already exists")
	}

	user, err := identity.NewUser(input.Name, input.Email, input.Password)
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("Account registered",
		zap.String("user_id", user.ID.String()),
		zap.String("email", user.Email))

	return s.issueToken(user)
}

// Login authenticates a user and returns an access token.
// Failed attempts are throttled per (client address, email); a wrong
// password and an unknown email consume the budget identically so the
// response does not leak which emails exist.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	key := auth.Key(input.ClientAddr, input.Email)

	if blocked, retryAfter := s.limiter.TooManyAttempts(key); blocked {
		if s.metrics != nil {
			s.metrics.RecordLoginThrottled(ctx)
		}
		s.logger.Warn("Login throttled",
			zap.String("email", input.Email),
			zap.String("client", input.ClientAddr),
			zap.Duration("retry_after", retryAfter))
		return nil, &RateLimitedError{RetryAfter: retryAfter}
	}

	user, err := s.userRepo.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.limiter.RecordFailure(key)
			if s.metrics != nil {
				s.metrics.RecordLoginFailure(ctx)
			}
			s.logger.Warn("Login for unknown email", zap.String("email", input.Email))
			return nil, shared.ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.VerifyPassword(input.Password) {
		s.limiter.RecordFailure(key)
		if s.metrics != nil {
			s.metrics.RecordLoginFailure(ctx)
		}
		s.logger.Warn("Invalid password attempt",
			zap.String("user_id", user.ID.String()))
		return nil, shared.ErrInvalidCredentials
	}

	s.limiter.Reset(key)

	s.logger.Info("User logged in",
		zap.String("user_id", user.ID.String()))

	return s.issueToken(user)
}

// Logout revokes the presented token by blacklisting its JTI for the
// remainder of its lifetime
func (s *AuthService) Logout(ctx context.Context, input LogoutInput) error {
	if input.JTI == "" {
		return nil
	}

	ttl := input.TokenTTL
	if ttl <= 0 {
		return nil // already expired
	}

	if err := s.blacklist.AddToBlacklist(ctx, input.JTI, ttl); err != nil {
		s.logger.Error("Failed to blacklist token", zap.Error(err))
		return err
	}

	s.logger.Info("User logged out", zap.String("user_id", input.UserID.String()))
	return nil
}

// GetCurrentUser retrieves the authenticated user's profile
func (s *AuthService) GetCurrentUser(ctx context.Context, userID uuid.UUID) (*UserInfo, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	info := ToUserInfo(user)
	return &info, nil
}

// issueToken signs an access token for the user
func (s *AuthService) issueToken(user *identity.User) (*AuthResult, error) {
	token, err := s.jwtService.GenerateToken(auth.GenerateTokenInput{
		UserID: user.ID,
		Email:  user.Email,
		Role:   string(user.Role),
	})
	if err != nil {
		s.logger.Error("Failed to generate token", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to generate authentication token")
	}

	return &AuthResult{
		AccessToken: token.AccessToken,
		TokenType:   token.TokenType,
		ExpiresAt:   token.ExpiresAt,
		User:        ToUserInfo(user),
	}, nil
}
