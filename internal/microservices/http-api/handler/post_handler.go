package handler

import (
	"net/http"

	"bloghub/internal/microservices/http-api/dto"
	"bloghub/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

type PostHandler struct {
	postService service.PostService
}

func NewPostHandler(postService service.PostService) *PostHandler {
	return &PostHandler{postService: postService}
}

// RegisterRoutes registers post routes (authenticated by the parent group)
func (h *PostHandler) RegisterRoutes(router *gin.RouterGroup) {
	posts := router.Group("/posts")
	{
		posts.GET("", h.List)
		posts.POST("", h.Create)
		posts.GET("/:slug", h.Show)
		posts.PUT("/:id", h.Update)
		posts.DELETE("/:id", h.Delete)
	}
	router.GET("/get-related-posts", h.Related)
}

// List returns published posts, newest first
// GET /api/posts
func (h *PostHandler) List(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	posts, err := h.postService.Latest(ctx, principal(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromModelsToPostResponses(posts))
}

// Show returns a post in any state with its comments
// GET /api/posts/:slug
func (h *PostHandler) Show(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	post, err := h.postService.Show(ctx, principal(c), c.Param("slug"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromModelToPostResponse(post))
}

// Related returns the caller's own posts
// GET /api/get-related-posts
func (h *PostHandler) Related(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	posts, err := h.postService.Related(ctx, principal(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromModelsToPostResponses(posts))
}

// POST /api/posts
func (h *PostHandler) Create(c *gin.Context) {
	var req dto.CreatePostRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	post, err := h.postService.Create(ctx, principal(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.FromModelToPostResponse(post))
}

// PUT /api/posts/:id
func (h *PostHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdatePostRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	post, err := h.postService.Update(ctx, principal(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromModelToPostResponse(post))
}

// DELETE /api/posts/:id
func (h *PostHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.postService.Delete(ctx, principal(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
