package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/sangkips/dentalbill-api/internal/domain/entity"
	"github.com/sangkips/dentalbill-api/internal/domain/repository"
	"github.com/sangkips/dentalbill-api/pkg/apperror"
	"github.com/sangkips/dentalbill-api/pkg/pagination"
	"github.com/sangkips/dentalbill-api/pkg/utils"
)

// UserService handles staff account management
type UserService struct {
	userRepo repository.UserRepository
	roleRepo repository.RoleRepository
}

// NewUserService creates a new user service
func NewUserService(userRepo repository.UserRepository, roleRepo repository.RoleRepository) *UserService {
	return &UserService{
		userRepo: userRepo,
		roleRepo: roleRepo,
	}
}

// ListUsersInput represents the input for listing users
type ListUsersInput struct {
	Page    int
	PerPage int
	Search  string
}

// ListUsers returns a paginated list of users with their roles
func (s *UserService) ListUsers(ctx context.Context, input *ListUsersInput) (*pagination.PaginatedResult[entity.User], error) {
	params := &pagination.PaginationParams{
		Page:    input.Page,
		PerPage: input.PerPage,
	}
	params.Validate()

	users, total, err := s.userRepo.List(ctx, params, strings.TrimSpace(input.Search))
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(params.Page, params.PerPage, total)
	return pagination.NewPaginatedResult(users, pag), nil
}

// GetUser returns a user by ID with roles and permissions
func (s *UserService) GetUser(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	user, err := s.userRepo.GetWithRoles(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.NewNotFoundError("User")
	}
	return user, nil
}

// resolveRoles maps role names to IDs, failing on the first unknown name
func (s *UserService) resolveRoles(ctx context.Context, names []string) ([]uint, error) {
	ids := make([]uint, 0, len(names))
	seen := make(map[uint]bool, len(names))
	for _, name := range names {
		role, err := s.roleRepo.GetByName(ctx, strings.TrimSpace(name))
		if err != nil {
			return nil, err
		}
		if role == nil {
			return nil, apperror.NewValidationError([]apperror.FieldError{
				{Field: "roles", Message: "Unknown role: " + name},
			})
		}
		if !seen[role.ID] {
			seen[role.ID] = true
			ids = append(ids, role.ID)
		}
	}
	return ids, nil
}

// CreateUserInput represents the input for creating a staff account
type CreateUserInput struct {
	Name     string
	Email    string
	Password string
	Roles    []string
}

// CreateUser creates a staff account. An empty password leaves the account
// usable through Google sign-in only.
func (s *UserService) CreateUser(ctx context.Context, input *CreateUserInput) (*entity.User, error) {
	name := strings.TrimSpace(input.Name)
	email := strings.ToLower(strings.TrimSpace(input.Email))

	var verr apperror.ValidationErrors
	if name == "" {
		verr.Add("name", "Name is required")
	}
	if email == "" {
		verr.Add("email", "Email is required")
	}
	if input.Password != "" && len(input.Password) < minPasswordLength {
		verr.Add("password", "Password must be at least 8 characters")
	}
	if len(input.Roles) == 0 {
		verr.Add("roles", "At least one role is required")
	}
	if err := verr.Err(); err != nil {
		return nil, err
	}

	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperror.NewConflictError("Email already registered")
	}

	roleIDs, err := s.resolveRoles(ctx, input.Roles)
	if err != nil {
		return nil, err
	}

	user := &entity.User{
		Name:     name,
		Email:    email,
		Provider: "local",
		Active:   true,
	}
	if input.Password != "" {
		hashed, err := utils.HashPassword(input.Password)
		if err != nil {
			return nil, err
		}
		user.Password = hashed
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	if err := s.userRepo.SyncRoles(ctx, user.ID, roleIDs); err != nil {
		return nil, err
	}

	return s.userRepo.GetWithRoles(ctx, user.ID)
}

// UpdateUserRolesInput represents the input for updating user roles
type UpdateUserRolesInput struct {
	ActorID uuid.UUID
	UserID  uuid.UUID
	Roles   []string
}

// UpdateUserRoles replaces the roles assigned to a user. Admins cannot drop
// their own admin role.
func (s *UserService) UpdateUserRoles(ctx context.Context, input *UpdateUserRolesInput) (*entity.User, error) {
	user, err := s.userRepo.GetByID(ctx, input.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.NewNotFoundError("User")
	}

	if input.ActorID == input.UserID {
		keepsAdmin := false
		for _, name := range input.Roles {
			if strings.TrimSpace(name) == entity.RoleAdmin {
				keepsAdmin = true
			}
		}
		if !keepsAdmin {
			return nil, apperror.NewBadRequestError("You cannot remove your own admin role")
		}
	}

	roleIDs, err := s.resolveRoles(ctx, input.Roles)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.SyncRoles(ctx, input.UserID, roleIDs); err != nil {
		return nil, err
	}

	return s.userRepo.GetWithRoles(ctx, input.UserID)
}

// ListRoles returns all available roles
func (s *UserService) ListRoles(ctx context.Context) ([]entity.Role, error) {
	return s.roleRepo.List(ctx)
}
