package httptransport

import (
	"fmt"
	"log/slog"

	"github.com/gin-gonic/gin"
	sloggin "github.com/samber/slog-gin"
	"github.com/talgatov/auth-api/internal/domain"
	"github.com/talgatov/auth-api/internal/response"
	"github.com/talgatov/auth-api/internal/transport/http/handler"
	"github.com/talgatov/auth-api/internal/transport/http/middleware"
	"github.com/talgatov/auth-api/internal/validation"
)

// NewRouter assembles the gin engine. Every failure path — panics,
// unknown routes, wrong methods, handler errors — renders through the
// same response.Mapper so the envelope shape never varies.
func NewRouter(logger *slog.Logger, mapper *response.Mapper, authHandler *handler.AuthHandler, tokens middleware.TokenResolver) (*gin.Engine, error) {
	if err := validation.Register(); err != nil {
		return nil, fmt.Errorf("register validation rules: %w", err)
	}

	r := gin.New()
	r.Use(gin.CustomRecovery(func(c *gin.Context, recovered any) {
		mapper.Render(c, fmt.Errorf("panic: %v", recovered))
	}))
	r.Use(middleware.RequestID())
	r.Use(middleware.Security())
	r.Use(sloggin.New(logger))
	r.Use(middleware.Metrics())

	r.HandleMethodNotAllowed = true
	r.NoRoute(func(c *gin.Context) { mapper.Render(c, domain.ErrNotFound) })
	r.NoMethod(func(c *gin.Context) { mapper.Render(c, domain.ErrMethodNotAllowed) })

	api := r.Group("/api", middleware.AcceptJSON())

	// Public routes
	api.POST("/register", authHandler.Register)
	api.POST("/login", authHandler.Login)
	api.GET("/verify-email", authHandler.VerifyEmail)

	// Protected routes
	authMW := middleware.Auth(tokens, mapper)
	api.POST("/logout", authMW, authHandler.Logout)
	api.GET("/me", authMW, authHandler.Me)

	return r, nil
}
