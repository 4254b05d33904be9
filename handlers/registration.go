package handlers

import (
	"github.com/gofiber/fiber/v2"

	"tournament-platform/apperrors"
	"tournament-platform/middleware"
	"tournament-platform/services"
)

type RegistrationHandler struct {
	Registrations *services.RegistrationService
}

func SetupRegistrationRoutes(router fiber.Router, h *RegistrationHandler, authenticate fiber.Handler) {
	router.Use(authenticate)

	router.Get("/:id", h.Get)
	router.Post("/:id/cancel", middleware.RequireParticipant(), h.Cancel)

	requireHost := middleware.RequireHost()
	router.Put("/:id", requireHost, h.Update)
	router.Post("/:id/check-in", requireHost, h.CheckIn)
	router.Post("/:id/payment", requireHost, h.MarkPaid)
	router.Post("/:id/result", requireHost, h.SetResult)
}

func (h *RegistrationHandler) Register(c *fiber.Ctx) error {
	var req services.RegisterRequest
	if len(c.Body()) > 0 {
		if err := parseBody(c, &req); err != nil {
			return err
		}
	}
	reg, err := h.Registrations.Register(c.UserContext(), c.Params("id"), middleware.CurrentUser(c).ID, req)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusCreated, "registration submitted", reg)
}

func (h *RegistrationHandler) MyRegistrations(c *fiber.Ctx) error {
	regs, pagination, err := h.Registrations.ListForParticipant(c.UserContext(),
		middleware.CurrentUser(c).ID, c.Query("status"), pageRequest(c))
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "", fiber.Map{"registrations": regs, "pagination": pagination})
}

func (h *RegistrationHandler) ListForTournament(c *fiber.Ctx) error {
	regs, pagination, err := h.Registrations.ListForTournament(c.UserContext(),
		middleware.CurrentUser(c).ID, c.Params("id"), c.Query("status"), pageRequest(c))
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "", fiber.Map{"registrations": regs, "pagination": pagination})
}

func (h *RegistrationHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.Registrations.Stats(c.UserContext(), middleware.CurrentUser(c).ID, c.Params("id"))
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "", stats)
}

func (h *RegistrationHandler) Get(c *fiber.Ctx) error {
	reg, err := h.Registrations.Get(c.UserContext(), middleware.CurrentUser(c).ID, c.Params("id"))
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "", reg)
}

// Update is the host decision endpoint: {"action": "approve"|"reject", "notes": "..."}.
func (h *RegistrationHandler) Update(c *fiber.Ctx) error {
	var in struct {
		Action string `json:"action"`
		Notes  string `json:"notes"`
	}
	if err := parseBody(c, &in); err != nil {
		return err
	}

	hostID := middleware.CurrentUser(c).ID
	var (
		reg any
		err error
	)
	switch in.Action {
	case "approve":
		reg, err = h.Registrations.Approve(c.UserContext(), hostID, c.Params("id"), in.Notes)
	case "reject":
		reg, err = h.Registrations.Reject(c.UserContext(), hostID, c.Params("id"), in.Notes)
	default:
		return apperrors.Validation("invalid action",
			apperrors.FieldError{Field: "action", Message: "action must be approve or reject"})
	}
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "registration "+in.Action+"d", reg)
}

func (h *RegistrationHandler) Cancel(c *fiber.Ctx) error {
	var in struct {
		Notes string `json:"notes"`
	}
	if len(c.Body()) > 0 {
		if err := parseBody(c, &in); err != nil {
			return err
		}
	}
	reg, err := h.Registrations.Cancel(c.UserContext(), middleware.CurrentUser(c).ID, c.Params("id"), in.Notes)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "registration cancelled", reg)
}

func (h *RegistrationHandler) CheckIn(c *fiber.Ctx) error {
	reg, err := h.Registrations.CheckIn(c.UserContext(), middleware.CurrentUser(c).ID, c.Params("id"))
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "checked in", reg)
}

func (h *RegistrationHandler) MarkPaid(c *fiber.Ctx) error {
	var in struct {
		Proof string `json:"proof"`
	}
	if len(c.Body()) > 0 {
		if err := parseBody(c, &in); err != nil {
			return err
		}
	}
	reg, err := h.Registrations.MarkPaid(c.UserContext(), middleware.CurrentUser(c).ID, c.Params("id"), in.Proof)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "payment recorded", reg)
}

func (h *RegistrationHandler) SetResult(c *fiber.Ctx) error {
	var in struct {
		FinalRank int     `json:"final_rank"`
		Prize     float64 `json:"prize"`
	}
	if err := parseBody(c, &in); err != nil {
		return err
	}
	reg, err := h.Registrations.SetResult(c.UserContext(), middleware.CurrentUser(c).ID, c.Params("id"), in.FinalRank, in.Prize)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "result recorded", reg)
}
