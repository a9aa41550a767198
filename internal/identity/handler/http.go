// Package handler exposes the auth service over REST.
package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"task-manager/backend/internal/apperror"
	"task-manager/backend/internal/identity/service"
)

// AuthAPI is the part of the auth service the handler needs.
type AuthAPI interface {
	Register(ctx context.Context, name, email, password string) (*service.AuthResult, error)
	Login(ctx context.Context, email, password string) (*service.AuthResult, error)
}

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthHandler serves registration and login.
type AuthHandler struct {
	auth AuthAPI
}

// NewAuthHandler returns an AuthHandler backed by auth.
func NewAuthHandler(auth AuthAPI) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Mount registers the auth routes on r (typically the /api group).
func (h *AuthHandler) Mount(r fiber.Router) {
	g := r.Group("/auth")
	g.Post("/register", h.Register)
	g.Post("/login", h.Login)
}

// Register handles POST /auth/register and responds with {token, user}.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperror.Validation("invalid request body")
	}
	res, err := h.auth.Register(c.UserContext(), req.Name, req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(res)
}

// Login handles POST /auth/login and responds with {token, user}.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperror.Auth(service.MsgInvalidCredentials)
	}
	res, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(res)
}
