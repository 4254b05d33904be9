package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"tournament-platform/apperrors"
	"tournament-platform/middleware"
	"tournament-platform/models"
	"tournament-platform/services"
)

type AuthHandler struct {
	Users  *services.UserService
	Tokens *services.TokenIssuer
}

func SetupAuthRoutes(router fiber.Router, h *AuthHandler, authenticate fiber.Handler) {
	router.Post("/signup", h.Signup)
	router.Post("/login", h.Login)
	router.Post("/check-username", h.CheckUsername)
	router.Post("/check-email", h.CheckEmail)

	router.Post("/logout", authenticate, h.Logout)
	router.Get("/me", authenticate, h.Me)
}

type authResponse struct {
	User      *models.User `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
}

func (h *AuthHandler) issue(c *fiber.Ctx, status int, message string, user *models.User) error {
	token, expiresAt, err := h.Tokens.Issue(user.ID)
	if err != nil {
		return err
	}
	return respond(c, status, message, authResponse{User: user, Token: token, ExpiresAt: expiresAt})
}

func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var in services.SignupInput
	if err := parseBody(c, &in); err != nil {
		return err
	}
	user, err := h.Users.Signup(c.UserContext(), in)
	if err != nil {
		return err
	}
	return h.issue(c, fiber.StatusCreated, "account created", user)
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var in struct {
		Identifier string `json:"identifier"`
		Email      string `json:"email"`
		Username   string `json:"username"`
		Password   string `json:"password"`
	}
	if err := parseBody(c, &in); err != nil {
		return err
	}
	identifier := in.Identifier
	if identifier == "" {
		identifier = in.Email
	}
	if identifier == "" {
		identifier = in.Username
	}

	user, err := h.Users.Login(c.UserContext(), identifier, in.Password)
	if err != nil {
		return err
	}
	return h.issue(c, fiber.StatusOK, "logged in", user)
}

// Logout is stateless: the client drops its token.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	return respond(c, fiber.StatusOK, "logged out", nil)
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	return respond(c, fiber.StatusOK, "", middleware.CurrentUser(c))
}

func (h *AuthHandler) CheckUsername(c *fiber.Ctx) error {
	var in struct {
		Username string `json:"username"`
	}
	if err := parseBody(c, &in); err != nil {
		return err
	}
	ok, err := h.Users.IsUsernameAvailable(c.UserContext(), in.Username)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "", fiber.Map{"available": ok})
}

func (h *AuthHandler) CheckEmail(c *fiber.Ctx) error {
	var in struct {
		Email string `json:"email"`
	}
	if err := parseBody(c, &in); err != nil {
		return err
	}
	if in.Email == "" {
		return apperrors.Validation("email is required", apperrors.FieldError{Field: "email", Message: "email is required"})
	}
	ok, err := h.Users.IsEmailAvailable(c.UserContext(), in.Email)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "", fiber.Map{"available": ok})
}
