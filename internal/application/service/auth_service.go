package service

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sangkips/dentalbill-api/internal/domain/entity"
	"github.com/sangkips/dentalbill-api/internal/domain/repository"
	"github.com/sangkips/dentalbill-api/pkg/apperror"
	"github.com/sangkips/dentalbill-api/pkg/oauth"
	"github.com/sangkips/dentalbill-api/pkg/utils"
)

const minPasswordLength = 8

// GoogleAuthenticator exchanges a Google authorization code for the
// signed-in account
type GoogleAuthenticator interface {
	IsConfigured() bool
	AuthURL(state string) string
	Authenticate(ctx context.Context, code string) (*oauth.GoogleUserInfo, error)
}

// AuthService handles authentication-related operations
type AuthService struct {
	userRepo   repository.UserRepository
	jwtManager *utils.JWTManager
	google     GoogleAuthenticator
	now        func() time.Time
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo repository.UserRepository,
	jwtManager *utils.JWTManager,
	google GoogleAuthenticator,
) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		jwtManager: jwtManager,
		google:     google,
		now:        time.Now,
	}
}

// LoginInput represents the login input
type LoginInput struct {
	Email    string
	Password string
}

// LoginOutput represents the login output
type LoginOutput struct {
	User         *entity.User
	AccessToken  string
	RefreshToken string
}

var errAccountDisabled = apperror.NewAppError(http.StatusForbidden, "Account is disabled")

// Login authenticates a staff member and returns tokens
func (s *AuthService) Login(ctx context.Context, input *LoginInput) (*LoginOutput, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.TrimSpace(input.Email))
	if err != nil {
		return nil, err
	}
	if user == nil || user.Password == "" {
		return nil, apperror.ErrInvalidCredentials
	}

	if !utils.CheckPasswordHash(input.Password, user.Password) {
		return nil, apperror.ErrInvalidCredentials
	}
	if !user.Active {
		return nil, errAccountDisabled
	}

	return s.signIn(ctx, user)
}

// signIn records the login and issues a token pair
func (s *AuthService) signIn(ctx context.Context, user *entity.User) (*LoginOutput, error) {
	now := s.now()
	user.LastLoginAt = &now
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetWithRoles(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.ErrInvalidCredentials
	}

	return s.issueTokens(user)
}

func (s *AuthService) issueTokens(user *entity.User) (*LoginOutput, error) {
	accessToken, err := s.jwtManager.GenerateAccessToken(user.ID, user.Email, user.RoleNames(), user.GetPermissions())
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.jwtManager.GenerateRefreshToken(user.ID)
	if err != nil {
		return nil, err
	}

	return &LoginOutput{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// RefreshToken generates new tokens from a refresh token
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*LoginOutput, error) {
	userID, err := s.jwtManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, apperror.ErrInvalidToken
	}

	user, err := s.userRepo.GetWithRoles(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.ErrInvalidToken
	}
	if !user.Active {
		return nil, errAccountDisabled
	}

	return s.issueTokens(user)
}

// GoogleAuthURL returns the consent page URL for the given state
func (s *AuthService) GoogleAuthURL(state string) (string, error) {
	if !s.google.IsConfigured() {
		return "", apperror.NewAppError(http.StatusServiceUnavailable, oauth.ErrOAuthNotConfigured.Error())
	}
	return s.google.AuthURL(state), nil
}

// GoogleLogin signs in an existing staff member with their Google account.
// Unknown emails are refused; accounts are only created by an admin.
func (s *AuthService) GoogleLogin(ctx context.Context, code string) (*LoginOutput, error) {
	info, err := s.google.Authenticate(ctx, code)
	if err != nil {
		switch {
		case errors.Is(err, oauth.ErrOAuthNotConfigured):
			return nil, apperror.NewAppError(http.StatusServiceUnavailable, err.Error())
		case errors.Is(err, oauth.ErrUnverifiedEmail):
			return nil, apperror.NewAppError(http.StatusForbidden, err.Error())
		}
		return nil, apperror.NewAppError(http.StatusUnauthorized, err.Error())
	}

	user, err := s.userRepo.GetByEmail(ctx, info.Email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.NewAppError(http.StatusForbidden, "No staff account exists for this Google account")
	}
	if !user.Active {
		return nil, errAccountDisabled
	}

	if user.ProviderID == nil {
		providerID := info.ID
		user.ProviderID = &providerID
		user.Provider = "google"
	}

	return s.signIn(ctx, user)
}

// GetCurrentUser returns the current user by ID
func (s *AuthService) GetCurrentUser(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	user, err := s.userRepo.GetWithRoles(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.NewNotFoundError("User")
	}
	return user, nil
}

// ChangePasswordInput represents the change password input
type ChangePasswordInput struct {
	UserID          uuid.UUID
	CurrentPassword string
	NewPassword     string
}

// ChangePassword changes the user's password. Accounts that only ever signed
// in with Google may set a first password without a current one.
func (s *AuthService) ChangePassword(ctx context.Context, input *ChangePasswordInput) error {
	user, err := s.userRepo.GetByID(ctx, input.UserID)
	if err != nil {
		return err
	}
	if user == nil {
		return apperror.NewNotFoundError("User")
	}

	if user.Password != "" && !utils.CheckPasswordHash(input.CurrentPassword, user.Password) {
		return apperror.NewValidationError([]apperror.FieldError{
			{Field: "current_password", Message: "Current password is incorrect"},
		})
	}
	if len(input.NewPassword) < minPasswordLength {
		return apperror.NewValidationError([]apperror.FieldError{
			{Field: "new_password", Message: "Password must be at least 8 characters"},
		})
	}

	hashedPassword, err := utils.HashPassword(input.NewPassword)
	if err != nil {
		return err
	}

	user.Password = hashedPassword
	return s.userRepo.Update(ctx, user)
}
