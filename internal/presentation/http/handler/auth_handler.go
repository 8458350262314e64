package handler

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/sangkips/dentalbill-api/internal/application/service"
	"github.com/sangkips/dentalbill-api/internal/config"
	"github.com/sangkips/dentalbill-api/internal/domain/entity"
	"github.com/sangkips/dentalbill-api/internal/presentation/http/dto/request"
	"github.com/sangkips/dentalbill-api/internal/presentation/http/dto/response"
	"github.com/sangkips/dentalbill-api/pkg/apperror"
	"github.com/sangkips/dentalbill-api/pkg/utils"
)

const (
	oauthStateCookie = "oauth_state"
	oauthStateMaxAge = 600
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	authService   *service.AuthService
	oauth         config.OAuthConfig
	secureCookies bool
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService, oauth config.OAuthConfig, secureCookies bool) *AuthHandler {
	return &AuthHandler{authService: authService, oauth: oauth, secureCookies: secureCookies}
}

func userPayload(u *entity.User) gin.H {
	return gin.H{
		"id":            u.ID,
		"name":          u.Name,
		"email":         u.Email,
		"provider":      u.Provider,
		"active":        u.Active,
		"roles":         u.RoleNames(),
		"permissions":   u.GetPermissions(),
		"last_login_at": u.LastLoginAt,
	}
}

func tokenPayload(output *service.LoginOutput) gin.H {
	return gin.H{
		"user":          userPayload(output.User),
		"access_token":  output.AccessToken,
		"refresh_token": output.RefreshToken,
		"token_type":    "Bearer",
	}
}

// Login handles staff login
// @Summary Login
// @Tags auth
// @Accept json
// @Produce json
// @Param request body request.LoginRequest true "Login credentials"
// @Success 200 {object} response.APIResponse
// @Failure 401 {object} response.APIResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req request.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	output, err := h.authService.Login(c.Request.Context(), &service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Login successful", tokenPayload(output))
}

// RefreshToken handles token refresh
// @Summary Refresh Token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body request.RefreshTokenRequest true "Refresh token"
// @Success 200 {object} response.APIResponse
// @Failure 401 {object} response.APIResponse
// @Router /auth/refresh [post]
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req request.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	output, err := h.authService.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Token refreshed successfully", gin.H{
		"access_token":  output.AccessToken,
		"refresh_token": output.RefreshToken,
		"token_type":    "Bearer",
	})
}

// Logout handles user logout
// @Summary Logout
// @Tags auth
// @Security BearerAuth
// @Success 200 {object} response.APIResponse
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	// JWT is stateless, the client discards its tokens
	response.OK(c, "Logged out successfully", nil)
}

// GoogleRedirect sends the browser to the Google consent page
// @Summary Google sign-in
// @Tags auth
// @Success 302
// @Failure 503 {object} response.APIResponse
// @Router /auth/google [get]
func (h *AuthHandler) GoogleRedirect(c *gin.Context) {
	state, err := utils.RandomState()
	if err != nil {
		response.InternalServerError(c, "Failed to start Google sign-in")
		return
	}

	authURL, err := h.authService.GoogleAuthURL(state)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(oauthStateCookie, state, oauthStateMaxAge, "/", "", h.secureCookies, true)
	c.Redirect(http.StatusFound, authURL)
}

// GoogleCallback completes Google sign-in. When a frontend URL is configured
// the tokens are handed over in the URL fragment, otherwise they are
// returned as JSON.
// @Summary Google sign-in callback
// @Tags auth
// @Produce json
// @Param state query string true "OAuth state"
// @Param code query string true "Authorization code"
// @Success 200 {object} response.APIResponse
// @Router /auth/google/callback [get]
func (h *AuthHandler) GoogleCallback(c *gin.Context) {
	expected, _ := c.Cookie(oauthStateCookie)
	c.SetCookie(oauthStateCookie, "", -1, "/", "", h.secureCookies, true)

	if expected == "" || c.Query("state") != expected {
		h.googleFailed(c, apperror.NewBadRequestError("Invalid OAuth state"))
		return
	}
	code := c.Query("code")
	if code == "" {
		h.googleFailed(c, apperror.NewBadRequestError("Missing authorization code"))
		return
	}

	output, err := h.authService.GoogleLogin(c.Request.Context(), code)
	if err != nil {
		h.googleFailed(c, err)
		return
	}

	if h.oauth.FrontendSuccessURL != "" {
		fragment := url.Values{}
		fragment.Set("access_token", output.AccessToken)
		fragment.Set("refresh_token", output.RefreshToken)
		fragment.Set("token_type", "Bearer")
		c.Redirect(http.StatusFound, h.oauth.FrontendSuccessURL+"#"+fragment.Encode())
		return
	}

	response.OK(c, "Login successful", tokenPayload(output))
}

func (h *AuthHandler) googleFailed(c *gin.Context, err error) {
	if h.oauth.FrontendErrorURL == "" {
		response.Error(c, err)
		return
	}
	message := "Google sign-in failed"
	if appErr := apperror.GetAppError(err); appErr != nil {
		message = appErr.Message
	}
	q := url.Values{}
	q.Set("error", message)
	c.Redirect(http.StatusFound, h.oauth.FrontendErrorURL+"?"+q.Encode())
}

// GetProfile handles fetching current user profile
// @Summary Get Profile
// @Tags profile
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.APIResponse
// @Router /profile [get]
func (h *AuthHandler) GetProfile(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	user, err := h.authService.GetCurrentUser(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	payload := userPayload(user)
	payload["created_at"] = user.CreatedAt
	payload["updated_at"] = user.UpdatedAt
	response.OK(c, "Profile retrieved successfully", gin.H{"user": payload})
}

// ChangePassword handles password change
// @Summary Change Password
// @Tags profile
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body request.ChangePasswordRequest true "Password change data"
// @Success 200 {object} response.APIResponse
// @Failure 422 {object} response.APIResponse
// @Router /profile/password [put]
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req request.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	err := h.authService.ChangePassword(c.Request.Context(), &service.ChangePasswordInput{
		UserID:          userID,
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Password changed successfully", nil)
}
