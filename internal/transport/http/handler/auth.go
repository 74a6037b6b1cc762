package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/talgatov/auth-api/internal/domain"
	"github.com/talgatov/auth-api/internal/response"
	"github.com/talgatov/auth-api/internal/transport/http/middleware"
)

// authUsecaser is the subset of AuthUsecase the handler needs.
// Defined here (point of use) so tests can inject a fake.
type authUsecaser interface {
	Register(ctx context.Context, name, email, password string) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*domain.User, string, error)
	Logout(ctx context.Context, tokenHash string) error
	Me(ctx context.Context, userID string) (*domain.User, error)
	VerifyEmail(ctx context.Context, signed string) error
}

type AuthHandler struct {
	authUsecase authUsecaser
	mapper      *response.Mapper
	logger      *slog.Logger
}

func NewAuthHandler(authUsecase authUsecaser, mapper *response.Mapper, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authUsecase: authUsecase,
		mapper:      mapper,
		logger:      logger.With("component", "auth_handler"),
	}
}

type registerRequest struct {
	Name                 string `json:"name"                  binding:"required,max=255"`
	Email                string `json:"email"                 binding:"required,email,not_disposable"`
	Password             string `json:"password"              binding:"required,min=8"`
	PasswordConfirmation string `json:"password_confirmation" binding:"required,eqfield=Password"`
}

type loginRequest struct {
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// userResponse is the only serialized view of a user. The password
// hash has no tag here and can never leak.
type userResponse struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Email           string     `json:"email"`
	EmailVerifiedAt *time.Time `json:"email_verified_at"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func newUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:              u.ID,
		Name:            u.Name,
		Email:           u.Email,
		EmailVerifiedAt: u.EmailVerifiedAt,
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
	}
}

type loginResponse struct {
	User  userResponse `json:"user"`
	Token string       `json:"token"`
}

// POST /api/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.mapper.RenderValidation(c, err)
		return
	}

	user, err := h.authUsecase.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		h.mapper.Render(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Ok(msgRegistered, newUserResponse(user)))
}

// POST /api/login
// The failure envelope is identical for unknown email and wrong
// password: 401 "Invalid credentials".
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.mapper.RenderValidation(c, err)
		return
	}

	user, plainToken, err := h.authUsecase.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.mapper.Render(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Ok(msgLoggedIn, loginResponse{
		User:  newUserResponse(user),
		Token: plainToken,
	}))
}

// POST /api/logout
// Revokes the presented session only; the user's other devices stay
// logged in.
func (h *AuthHandler) Logout(c *gin.Context) {
	tokenHash, ok := middleware.SessionTokenHash(c)
	if !ok {
		h.mapper.Render(c, domain.ErrUnauthenticated)
		return
	}

	if err := h.authUsecase.Logout(c.Request.Context(), tokenHash); err != nil {
		h.mapper.Render(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Message(msgLoggedOut))
}

// GET /api/me
func (h *AuthHandler) Me(c *gin.Context) {
	current, ok := middleware.CurrentUser(c)
	if !ok {
		h.mapper.Render(c, domain.ErrUnauthenticated)
		return
	}

	user, err := h.authUsecase.Me(c.Request.Context(), current.ID)
	if err != nil {
		h.mapper.Render(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Ok(msgUserRetrieved, newUserResponse(user)))
}

// GET /api/verify-email?token=<signed>
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	signed := c.Query("token")
	if signed == "" {
		h.mapper.Render(c, domain.ErrTokenInvalid)
		return
	}

	if err := h.authUsecase.VerifyEmail(c.Request.Context(), signed); err != nil {
		h.mapper.Render(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Message(msgEmailVerified))
}
