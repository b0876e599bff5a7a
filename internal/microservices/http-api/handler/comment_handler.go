package handler

import (
	"net/http"

	"bloghub/internal/microservices/http-api/dto"
	"bloghub/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

type CommentHandler struct {
	commentService service.CommentService
	createLimit    gin.HandlerFunc
}

// NewCommentHandler: createLimit guards comment creation and may be nil.
func NewCommentHandler(commentService service.CommentService, createLimit gin.HandlerFunc) *CommentHandler {
	return &CommentHandler{
		commentService: commentService,
		createLimit:    createLimit,
	}
}

// RegisterRoutes registers comment routes (authenticated by the parent group)
func (h *CommentHandler) RegisterRoutes(router *gin.RouterGroup) {
	create := []gin.HandlerFunc{h.Create}
	if h.createLimit != nil {
		create = append([]gin.HandlerFunc{h.createLimit}, create...)
	}

	comments := router.Group("/comments")
	{
		comments.GET("", h.List)
		comments.POST("", create...)
		comments.GET("/:id", h.Show)
		comments.PUT("/:id", h.Update)
		comments.DELETE("/:id", h.Delete)
		comments.POST("/:id/confirm", h.Confirm)
	}
	router.GET("/get-unconfirmed-comments", h.Unconfirmed)
	router.GET("/get-related-comments", h.Related)
}

// List returns every comment, newest first
// GET /api/comments
func (h *CommentHandler) List(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	comments, err := h.commentService.List(ctx, principal(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromModelsToCommentResponses(comments))
}

// GET /api/comments/:id
func (h *CommentHandler) Show(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	comment, err := h.commentService.Show(ctx, principal(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromModelToCommentResponse(comment))
}

// Create posts a comment; admins' comments come back already confirmed
// POST /api/comments
func (h *CommentHandler) Create(c *gin.Context) {
	var req dto.CreateCommentRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	comment, err := h.commentService.Create(ctx, principal(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.FromModelToCommentResponse(comment))
}

// PUT /api/comments/:id
func (h *CommentHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateCommentRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	comment, err := h.commentService.Update(ctx, principal(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromModelToCommentResponse(comment))
}

// DELETE /api/comments/:id
func (h *CommentHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.commentService.Delete(ctx, principal(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Confirm approves a pending comment; a second confirm answers 409
// POST /api/comments/:id/confirm
func (h *CommentHandler) Confirm(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	comment, err := h.commentService.Confirm(ctx, principal(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromModelToCommentResponse(comment))
}

// GET /api/get-unconfirmed-comments
func (h *CommentHandler) Unconfirmed(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	comments, err := h.commentService.Unconfirmed(ctx, principal(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromModelsToCommentResponses(comments))
}

// Related returns the caller's own comments, deleted ones included
// GET /api/get-related-comments
func (h *CommentHandler) Related(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	comments, err := h.commentService.Related(ctx, principal(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromModelsToCommentResponses(comments))
}
