package identity

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/wzledger/backend/internal/domain/identity"
	"github.com/wzledger/backend/internal/domain/shared"
	"github.com/wzledger/backend/internal/infrastructure/auth"
	"github.com/wzledger/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// Error codes produced by authentication
const (
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeTokenExpired       = "TOKEN_EXPIRED"
	CodeTokenInvalid       = "TOKEN_INVALID"
	CodeTokenRevoked       = "TOKEN_REVOKED"
	CodeTokenMaxRefresh    = "TOKEN_MAX_REFRESH"
	CodeUserNotFound       = "USER_NOT_FOUND"
	CodeInternal           = "INTERNAL_ERROR"
)

// AuthService handles registration and token lifecycle
type AuthService struct {
	userRepo   identity.UserRepository
	jwtService *auth.JWTService
	blacklist  auth.TokenBlacklist
	logger     *zap.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(
	userRepo identity.UserRepository,
	jwtService *auth.JWTService,
	blacklist auth.TokenBlacklist,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		jwtService: jwtService,
		blacklist:  blacklist,
		logger:     logger,
	}
}

// Register creates an account and logs it in
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*AuthResult, error) {
	user, err := identity.NewUser(req.Name, req.Email, req.Password)
	if err != nil {
		return nil, err
	}

	exists, err := s.userRepo.ExistsByEmail(ctx, user.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, emailTaken()
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return nil, emailTaken()
		}
		return nil, err
	}

	logger.L(ctx, s.logger).Info("User registered", zap.String("user_id", user.ID.String()))

	return s.authenticate(ctx, user)
}

// Login verifies the credentials and issues a token pair
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResult, error) {
	user, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			logger.L(ctx, s.logger).Warn("Login attempt for unknown email")
			return nil, invalidCredentials()
		}
		return nil, err
	}

	if !user.VerifyPassword(req.Password) {
		logger.L(ctx, s.logger).Warn("Invalid password attempt", zap.String("user_id", user.ID.String()))
		return nil, invalidCredentials()
	}

	logger.L(ctx, s.logger).Info("User logged in", zap.String("user_id", user.ID.String()))

	return s.authenticate(ctx, user)
}

// Refresh rotates a refresh token. The old one is revoked.
func (s *AuthService) Refresh(ctx context.Context, req RefreshRequest) (*TokenResponse, error) {
	claims, err := s.jwtService.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		logger.L(ctx, s.logger).Warn("Refresh token validation failed", zap.Error(err))
		return nil, mapTokenError(err)
	}

	if err := s.ensureNotRevoked(ctx, claims.ID); err != nil {
		return nil, err
	}

	userID, err := claims.GetUserUUID()
	if err != nil {
		return nil, shared.NewDomainError(CodeTokenInvalid, "Invalid user ID in token")
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError(CodeUserNotFound, "User not found")
		}
		return nil, err
	}

	pair, err := s.jwtService.RefreshTokenPair(req.RefreshToken, user.Email)
	if err != nil {
		logger.L(ctx, s.logger).Warn("Token refresh failed", zap.Error(err))
		return nil, mapTokenError(err)
	}

	if err := s.blacklist.AddToBlacklist(ctx, claims.ID, claims.GetRemainingTTL()); err != nil {
		logger.L(ctx, s.logger).Error("Failed to revoke rotated refresh token", zap.Error(err))
	}

	logger.L(ctx, s.logger).Info("Token refreshed", zap.String("user_id", userID.String()))

	response := toTokenResponse(pair)
	return &response, nil
}

// Logout revokes the access token and, when given, the refresh token
func (s *AuthService) Logout(ctx context.Context, input LogoutInput) error {
	if input.TokenJTI != "" {
		if err := s.blacklist.AddToBlacklist(ctx, input.TokenJTI, input.TokenTTL); err != nil {
			logger.L(ctx, s.logger).Error("Failed to revoke access token", zap.Error(err))
			return shared.NewDomainErrorWithCause(CodeInternal, "Failed to log out", err)
		}
	}

	if input.RefreshToken != "" {
		claims, err := s.jwtService.ValidateRefreshToken(input.RefreshToken)
		if err == nil && claims.UserID == input.UserID.String() {
			if err := s.blacklist.AddToBlacklist(ctx, claims.ID, claims.GetRemainingTTL()); err != nil {
				logger.L(ctx, s.logger).Error("Failed to revoke refresh token", zap.Error(err))
				return shared.NewDomainErrorWithCause(CodeInternal, "Failed to log out", err)
			}
		}
	}

	logger.L(ctx, s.logger).Info("User logged out", zap.String("user_id", input.UserID.String()))
	return nil
}

// Me returns the current user's profile
func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (*UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError(CodeUserNotFound, "User not found")
		}
		return nil, err
	}

	response := ToUserResponse(user)
	return &response, nil
}

// IsRevoked reports whether a token JTI has been revoked
func (s *AuthService) IsRevoked(ctx context.Context, jti string) (bool, error) {
	return s.blacklist.IsBlacklisted(ctx, jti)
}

func (s *AuthService) ensureNotRevoked(ctx context.Context, jti string) error {
	revoked, err := s.blacklist.IsBlacklisted(ctx, jti)
	if err != nil {
		logger.L(ctx, s.logger).Error("Failed to check token blacklist", zap.Error(err))
		return shared.NewDomainErrorWithCause(CodeInternal, "Failed to validate refresh token", err)
	}
	if revoked {
		return shared.NewDomainError(CodeTokenRevoked, "Refresh token has been revoked")
	}
	return nil
}

func (s *AuthService) authenticate(ctx context.Context, user *identity.User) (*AuthResult, error) {
	pair, err := s.jwtService.GenerateTokenPair(user.ID, user.Email)
	if err != nil {
		logger.L(ctx, s.logger).Error("Failed to generate token pair", zap.Error(err))
		return nil, shared.NewDomainErrorWithCause(CodeInternal, "Failed to generate authentication tokens", err)
	}

	return &AuthResult{
		Token: toTokenResponse(pair),
		User:  ToUserResponse(user),
	}, nil
}

func mapTokenError(err error) *shared.DomainError {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return shared.NewDomainError(CodeTokenExpired, "Refresh token has expired")
	case errors.Is(err, auth.ErrMaxRefreshExceeded):
		return shared.NewDomainError(CodeTokenMaxRefresh, "Maximum token refresh count exceeded. Please log in again")
	default:
		return shared.NewDomainError(CodeTokenInvalid, "Invalid refresh token")
	}
}

func invalidCredentials() *shared.DomainError {
	return shared.NewDomainError(CodeInvalidCredentials, "Invalid email or password")
}

func emailTaken() *shared.DomainError {
	return shared.NewDomainError(shared.ErrAlreadyExists.Code, "An account with this email already exists")
}
