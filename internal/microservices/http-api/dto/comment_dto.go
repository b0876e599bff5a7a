package dto

import (
	"time"

	"bloghub/internal/microservices/http-api/models"
)

// CreateCommentRequest carries no author or confirmation fields; the server stamps them.
type CreateCommentRequest struct {
	Body   string `json:"body" binding:"required,max=1000"`
	PostID int64  `json:"post_id" binding:"required,gt=0"`
}

type UpdateCommentRequest struct {
	Body string `json:"body" binding:"required,max=1000"`
}

type CommentResponse struct {
	ID          int64        `json:"id"`
	Body        string       `json:"body"`
	PostID      int64        `json:"post_id"`
	User        *UserSummary `json:"user,omitempty"`
	ConfirmedBy *UserSummary `json:"confirmed_by,omitempty"`
	ConfirmedAt *time.Time   `json:"confirmed_at"`
	Confirmed   bool         `json:"confirmed"`
	Post        *PostSummary `json:"post,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
	DeletedAt   *time.Time   `json:"deleted_at,omitempty"`
}

// FromModelToCommentResponse converts a Comment model to CommentResponse DTO
func FromModelToCommentResponse(comment *models.Comment) *CommentResponse {
	resp := &CommentResponse{
		ID:          comment.ID,
		Body:        comment.Body,
		PostID:      comment.PostID,
		User:        toUserSummary(comment.User),
		ConfirmedBy: toUserSummary(comment.ConfirmedBy),
		ConfirmedAt: comment.ConfirmedAt,
		Confirmed:   comment.IsConfirmed(),
		CreatedAt:   comment.CreatedAt,
		UpdatedAt:   comment.UpdatedAt,
	}
	if comment.Post != nil {
		resp.Post = &PostSummary{ID: comment.Post.ID, Title: comment.Post.Title, Slug: comment.Post.Slug}
	}
	if comment.DeletedAt.Valid {
		t := comment.DeletedAt.Time
		resp.DeletedAt = &t
	}
	return resp
}

func FromModelsToCommentResponses(comments []models.Comment) []CommentResponse {
	out := make([]CommentResponse, 0, len(comments))
	for i := range comments {
		out = append(out, *FromModelToCommentResponse(&comments[i]))
	}
	return out
}
