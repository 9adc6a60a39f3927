package transport

type LoginRequest struct {
	Username string `form:"username" json:"username"`
	Password string `form:"password" json:"password"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type RegisterRequest struct {
	Username string  `json:"username"  validate:"required"`
	Password string  `json:"password"  validate:"required"`
	Email    *string `json:"email"     validate:"omitempty,email"`
	FullName *string `json:"full_name"`
}

type RoleUpdateRequest struct {
	Role string `json:"role" validate:"required"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
