package dto

import (
	"time"

	"bloghub/internal/microservices/http-api/models"
)

type CategoryRequest struct {
	Title       string  `json:"title" binding:"required,max=255"`
	Description *string `json:"description" binding:"omitempty,max=1000"`
	Slug        string  `json:"slug" binding:"omitempty,max=255"`
}

type CategorySummary struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	Slug  string `json:"slug"`
}

type CategoryResponse struct {
	ID          int64          `json:"id"`
	Title       string         `json:"title"`
	Description *string        `json:"description"`
	Slug        string         `json:"slug"`
	User        *UserSummary   `json:"user,omitempty"`
	Posts       []PostResponse `json:"posts"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

func FromModelToCategoryResponse(category *models.Category) *CategoryResponse {
	return &CategoryResponse{
		ID:          category.ID,
		Title:       category.Title,
		Description: category.Description,
		Slug:        category.Slug,
		User:        toUserSummary(category.User),
		Posts:       FromModelsToPostResponses(category.Posts),
		CreatedAt:   category.CreatedAt,
		UpdatedAt:   category.UpdatedAt,
	}
}

func FromModelsToCategoryResponses(categories []models.Category) []CategoryResponse {
	out := make([]CategoryResponse, 0, len(categories))
	for i := range categories {
		out = append(out, *FromModelToCategoryResponse(&categories[i]))
	}
	return out
}
