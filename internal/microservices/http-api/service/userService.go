package service

import (
	"context"
	"errors"
	"strings"

	"bloghub/internal/authz"
	"bloghub/internal/microservices/http-api/dto"
	"bloghub/internal/microservices/http-api/models"
	"bloghub/internal/microservices/http-api/repository"
)

type UserService interface {
	Me(ctx context.Context, p authz.Principal) (*models.User, error)
	Permissions(ctx context.Context, p authz.Principal) (*dto.PermissionsResponse, error)
	List(ctx context.Context, p authz.Principal) ([]models.User, error)
	Show(ctx context.Context, p authz.Principal, id string) (*models.User, error)
	AssignRole(ctx context.Context, p authz.Principal, id string, req dto.UpdateUserRequest) (*models.User, error)
	Delete(ctx context.Context, p authz.Principal, id string) error
}

type userService struct {
	users repository.UserRepository
	roles repository.RoleRepository
	gate  *authz.Gate
}

func NewUserService(users repository.UserRepository, roles repository.RoleRepository, gate *authz.Gate) UserService {
	return &userService{users: users, roles: roles, gate: gate}
}

func (s *userService) Me(ctx context.Context, p authz.Principal) (*models.User, error) {
	if p.UserID == "" {
		return nil, authz.ErrForbidden
	}
	return s.users.FindByID(ctx, p.UserID)
}

// Permissions reports the caller's current role and its permission titles.
func (s *userService) Permissions(ctx context.Context, p authz.Principal) (*dto.PermissionsResponse, error) {
	user, err := s.Me(ctx, p)
	if err != nil {
		return nil, err
	}
	perms, err := s.gate.Permissions(ctx, p)
	if err != nil {
		return nil, err
	}
	resp := &dto.PermissionsResponse{Permissions: perms}
	if user.Role != nil {
		resp.Role = user.Role.Title
	}
	if resp.Permissions == nil {
		resp.Permissions = []string{}
	}
	return resp, nil
}

func (s *userService) List(ctx context.Context, p authz.Principal) ([]models.User, error) {
	if err := s.gate.Authorize(ctx, p, authz.AccessUsers); err != nil {
		return nil, err
	}
	return s.users.List(ctx)
}

func (s *userService) Show(ctx context.Context, p authz.Principal, id string) (*models.User, error) {
	if err := s.gate.Authorize(ctx, p, authz.AccessUsers); err != nil {
		return nil, err
	}
	return s.users.FindByID(ctx, id)
}

// AssignRole replaces the user's role; the change applies to the next gate check.
func (s *userService) AssignRole(ctx context.Context, p authz.Principal, id string, req dto.UpdateUserRequest) (*models.User, error) {
	if err := s.gate.Authorize(ctx, p, authz.EditUsers); err != nil {
		return nil, err
	}
	role, err := s.resolveRole(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := s.users.AssignRole(ctx, id, role.ID); err != nil {
		return nil, err
	}
	return s.users.FindByID(ctx, id)
}

func (s *userService) resolveRole(ctx context.Context, req dto.UpdateUserRequest) (*models.Role, error) {
	var (
		role *models.Role
		err  error
	)
	switch {
	case req.RoleID > 0:
		role, err = s.roles.FindByID(ctx, req.RoleID)
	case strings.TrimSpace(req.RoleTitle) != "":
		role, err = s.roles.FindByTitle(ctx, strings.TrimSpace(req.RoleTitle))
	default:
		return nil, invalidField("role", "is required")
	}
	if errors.Is(err, repository.ErrNotFound) {
		return nil, invalidField("role", "does not name an existing role")
	}
	return role, err
}

func (s *userService) Delete(ctx context.Context, p authz.Principal, id string) error {
	if err := s.gate.Authorize(ctx, p, authz.DeleteUsers); err != nil {
		return err
	}
	return s.users.Delete(ctx, id)
}
