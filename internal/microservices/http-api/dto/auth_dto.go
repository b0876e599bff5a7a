package dto

// Data Transfer Objects for authentication requests and responses

// RegisterRequest: payload for user registration
type RegisterRequest struct {
	Name     string  `json:"name" binding:"required,max=255"`
	LastName string  `json:"last_name" binding:"max=255"`
	Email    string  `json:"email" binding:"required,email,max=255"`
	Password string  `json:"password" binding:"required,min=8,max=72"`
	Phone    *string `json:"phone" binding:"omitempty,max=32"`
}

// LoginRequest: payload for user login
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse: response payload after successful authentication
type AuthResponse struct {
	AccessToken string        `json:"access_token"`
	TokenType   string        `json:"token_type"` // always "Bearer"
	ExpiresIn   int64         `json:"expires_in"` // seconds
	User        *UserResponse `json:"user"`
}
