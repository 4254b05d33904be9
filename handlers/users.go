package handlers

import (
	"github.com/gofiber/fiber/v2"

	"tournament-platform/middleware"
	"tournament-platform/services"
)

type UserHandler struct {
	Users *services.UserService
}

func SetupUserRoutes(router fiber.Router, h *UserHandler, authenticate fiber.Handler) {
	router.Get("/search", h.Search)

	router.Get("/profile", authenticate, h.Profile)
	router.Put("/profile", authenticate, h.UpdateProfile)
	router.Put("/change-password", authenticate, h.ChangePassword)
	router.Delete("/account", authenticate, h.DeleteAccount)

	router.Get("/:username", h.PublicProfile)
}

func (h *UserHandler) Profile(c *fiber.Ctx) error {
	return respond(c, fiber.StatusOK, "", middleware.CurrentUser(c))
}

func (h *UserHandler) UpdateProfile(c *fiber.Ctx) error {
	var in services.ProfileInput
	if err := parseBody(c, &in); err != nil {
		return err
	}
	user, err := h.Users.UpdateProfile(c.UserContext(), middleware.CurrentUser(c).ID, in)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "profile updated", user)
}

func (h *UserHandler) ChangePassword(c *fiber.Ctx) error {
	var in struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
		ConfirmPassword string `json:"confirm_password"`
	}
	if err := parseBody(c, &in); err != nil {
		return err
	}
	err := h.Users.ChangePassword(c.UserContext(), middleware.CurrentUser(c).ID,
		in.CurrentPassword, in.NewPassword, in.ConfirmPassword)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "password changed", nil)
}

func (h *UserHandler) DeleteAccount(c *fiber.Ctx) error {
	if err := h.Users.Deactivate(c.UserContext(), middleware.CurrentUser(c).ID); err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "account deactivated", nil)
}

func (h *UserHandler) PublicProfile(c *fiber.Ctx) error {
	user, err := h.Users.GetByUsername(c.UserContext(), c.Params("username"))
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "", user.Public())
}

func (h *UserHandler) Search(c *fiber.Ctx) error {
	users, err := h.Users.Search(c.UserContext(), c.Query("q"), c.QueryInt("limit", 50))
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "", users)
}
