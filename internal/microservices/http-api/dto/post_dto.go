package dto

import (
	"encoding/json"
	"time"

	"bloghub/internal/microservices/http-api/models"
)

type CreatePostRequest struct {
	Title       string     `json:"title" binding:"required,max=255"`
	Body        string     `json:"body" binding:"required"`
	Slug        string     `json:"slug" binding:"omitempty,max=255"`
	PublishedAt *time.Time `json:"published_at"`
	Categories  []int64    `json:"categories" binding:"omitempty,dive,gt=0"`
}

// UpdatePostRequest is a partial update: a nil field keeps the stored value.
// A nil Categories leaves the links untouched, an empty list clears them.
type UpdatePostRequest struct {
	Title       *string      `json:"title" binding:"omitempty,max=255"`
	Body        *string      `json:"body"`
	Slug        *string      `json:"slug" binding:"omitempty,max=255"`
	PublishedAt OptionalTime `json:"published_at,omitzero"`
	Categories  []int64      `json:"categories" binding:"omitempty,dive,gt=0"`
}

// OptionalTime tells an absent key apart from an explicit null.
type OptionalTime struct {
	Set   bool
	Value *time.Time
}

func SetTime(t *time.Time) OptionalTime {
	return OptionalTime{Set: true, Value: t}
}

func (o *OptionalTime) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}
	var t time.Time
	if err := json.Unmarshal(data, &t); err != nil {
		return err
	}
	o.Value = &t
	return nil
}

func (o OptionalTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.Value)
}

type PostSummary struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	Slug  string `json:"slug"`
}

type PostResponse struct {
	ID          int64             `json:"id"`
	Title       string            `json:"title"`
	Body        string            `json:"body"`
	Slug        string            `json:"slug"`
	PublishedAt *time.Time        `json:"published_at"`
	Author      *UserSummary      `json:"author,omitempty"`
	Categories  []CategorySummary `json:"categories"`
	Comments    []CommentResponse `json:"comments,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

func FromModelToPostResponse(post *models.Post) *PostResponse {
	resp := &PostResponse{
		ID:          post.ID,
		Title:       post.Title,
		Body:        post.Body,
		Slug:        post.Slug,
		PublishedAt: post.PublishedAt,
		Author:      toUserSummary(post.Author),
		Categories:  make([]CategorySummary, 0, len(post.Categories)),
		CreatedAt:   post.CreatedAt,
		UpdatedAt:   post.UpdatedAt,
	}
	for _, c := range post.Categories {
		resp.Categories = append(resp.Categories, CategorySummary{ID: c.ID, Title: c.Title, Slug: c.Slug})
	}
	if len(post.Comments) > 0 {
		resp.Comments = FromModelsToCommentResponses(post.Comments)
	}
	return resp
}

func FromModelsToPostResponses(posts []models.Post) []PostResponse {
	out := make([]PostResponse, 0, len(posts))
	for i := range posts {
		out = append(out, *FromModelToPostResponse(&posts[i]))
	}
	return out
}
