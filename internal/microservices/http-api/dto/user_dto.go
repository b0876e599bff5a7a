package dto

import (
	"time"

	"bloghub/internal/microservices/http-api/models"
)

// UpdateUserRequest: role is either a role id or a role title.
type UpdateUserRequest struct {
	RoleID    int64  `json:"role_id" binding:"omitempty,gt=0"`
	RoleTitle string `json:"role" binding:"omitempty,max=255"`
}

type UserSummary struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	LastName string `json:"last_name"`
}

type UserResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Phone     *string   `json:"phone,omitempty"`
	Role      string    `json:"role"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
}

type PermissionsResponse struct {
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
}

func toUserSummary(user *models.User) *UserSummary {
	if user == nil {
		return nil
	}
	return &UserSummary{ID: user.ID, Name: user.Name, LastName: user.LastName}
}

func FromModelToUserResponse(user *models.User) *UserResponse {
	resp := &UserResponse{
		ID:        user.ID,
		Name:      user.Name,
		LastName:  user.LastName,
		Email:     user.Email,
		Phone:     user.Phone,
		IsAdmin:   user.IsAdmin(),
		CreatedAt: user.CreatedAt,
	}
	if user.Role != nil {
		resp.Role = user.Role.Title
	}
	return resp
}

func FromModelsToUserResponses(users []models.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for i := range users {
		out = append(out, *FromModelToUserResponse(&users[i]))
	}
	return out
}
