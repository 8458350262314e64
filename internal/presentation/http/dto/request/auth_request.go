package request

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshTokenRequest represents a token refresh request
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// ChangePasswordRequest represents a password change request
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password" binding:"required,min=8"`
	ConfirmPassword string `json:"confirm_password" binding:"required,eqfield=NewPassword"`
}

// CreateUserRequest represents a staff account creation request
type CreateUserRequest struct {
	Name     string   `json:"name" binding:"required,min=2,max=255"`
	Email    string   `json:"email" binding:"required,email"`
	Password string   `json:"password" binding:"omitempty,min=8"`
	Roles    []string `json:"roles" binding:"required,min=1"`
}

// UpdateUserRolesRequest replaces the roles of a staff account
type UpdateUserRolesRequest struct {
	Roles []string `json:"roles" binding:"required,min=1"`
}
