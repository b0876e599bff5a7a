package handler

import (
	"net/http"

	"bloghub/internal/microservices/http-api/dto"
	"bloghub/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userService service.UserService
}

func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// RegisterRoutes registers the current-user and user administration routes
func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/user", h.Me)
	router.GET("/user/permissions", h.Permissions)

	users := router.Group("/users")
	{
		users.GET("", h.List)
		users.GET("/:id", h.Show)
		users.PUT("/:id", h.Update)
		users.DELETE("/:id", h.Delete)
	}
}

// GET /api/user
func (h *UserHandler) Me(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	user, err := h.userService.Me(ctx, principal(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromModelToUserResponse(user))
}

// Permissions lists the caller's permission titles for the frontend store
// GET /api/user/permissions
func (h *UserHandler) Permissions(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	perms, err := h.userService.Permissions(ctx, principal(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, perms)
}

// GET /api/users
func (h *UserHandler) List(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	users, err := h.userService.List(ctx, principal(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromModelsToUserResponses(users))
}

// GET /api/users/:id
func (h *UserHandler) Show(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	user, err := h.userService.Show(ctx, principal(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromModelToUserResponse(user))
}

// Update changes the user's role, the only editable attribute
// PUT /api/users/:id
func (h *UserHandler) Update(c *gin.Context) {
	var req dto.UpdateUserRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	user, err := h.userService.AssignRole(ctx, principal(c), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromModelToUserResponse(user))
}

// DELETE /api/users/:id
func (h *UserHandler) Delete(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.userService.Delete(ctx, principal(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
