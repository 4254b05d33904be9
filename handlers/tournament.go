package handlers

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"tournament-platform/apperrors"
	"tournament-platform/middleware"
	"tournament-platform/services"
)

type TournamentHandler struct {
	Tournaments *services.TournamentService
}

func SetupTournamentRoutes(router fiber.Router, h *TournamentHandler, r *RegistrationHandler, authenticate fiber.Handler) {
	host := []fiber.Handler{authenticate, middleware.RequireHost()}
	participant := []fiber.Handler{authenticate, middleware.RequireParticipant()}

	// 🔓 Public
	router.Get("/", h.List)

	// 🔐 Static paths first so they are not captured by /:id
	router.Get("/host/mine", append(host, h.ListMine)...)
	router.Get("/my-registrations", append(participant, r.MyRegistrations)...)

	router.Get("/:id", h.Get)

	// 🔐 Host
	router.Post("/", append(host, h.Create)...)
	router.Put("/:id", append(host, h.Update)...)
	router.Patch("/:id/status", append(host, h.UpdateStatus)...)
	router.Delete("/:id", append(host, h.Delete)...)
	router.Post("/:id/images", append(host, h.UploadImage)...)
	router.Get("/:id/registrations", append(host, r.ListForTournament)...)
	router.Get("/:id/registrations/stats", append(host, r.Stats)...)

	// 🔐 Participant
	router.Post("/:id/register", append(participant, r.Register)...)
}

func (h *TournamentHandler) List(c *fiber.Ctx) error {
	filter, err := parseFilter(c)
	if err != nil {
		return err
	}
	tournaments, pagination, err := h.Tournaments.List(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "", fiber.Map{"tournaments": tournaments, "pagination": pagination})
}

func (h *TournamentHandler) ListMine(c *fiber.Ctx) error {
	tournaments, pagination, err := h.Tournaments.ListByHost(c.UserContext(),
		middleware.CurrentUser(c).ID, c.Query("status"), pageRequest(c))
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "", fiber.Map{"tournaments": tournaments, "pagination": pagination})
}

func (h *TournamentHandler) Get(c *fiber.Ctx) error {
	t, err := h.Tournaments.View(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "", t)
}

func (h *TournamentHandler) Create(c *fiber.Ctx) error {
	var in services.TournamentInput
	if err := parseBody(c, &in); err != nil {
		return err
	}
	t, err := h.Tournaments.Create(c.UserContext(), middleware.CurrentUser(c).ID, in)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusCreated, "tournament created", t)
}

func (h *TournamentHandler) Update(c *fiber.Ctx) error {
	var in services.TournamentInput
	if err := parseBody(c, &in); err != nil {
		return err
	}
	t, err := h.Tournaments.Update(c.UserContext(), middleware.CurrentUser(c).ID, c.Params("id"), in)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "tournament updated", t)
}

func (h *TournamentHandler) UpdateStatus(c *fiber.Ctx) error {
	var in struct {
		Status string `json:"status"`
	}
	if err := parseBody(c, &in); err != nil {
		return err
	}
	t, err := h.Tournaments.UpdateStatus(c.UserContext(), middleware.CurrentUser(c).ID, c.Params("id"), in.Status)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "tournament status updated", t)
}

func (h *TournamentHandler) Delete(c *fiber.Ctx) error {
	if err := h.Tournaments.Delete(c.UserContext(), middleware.CurrentUser(c).ID, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// UploadImage accepts a multipart form with a "banner" or "logo" file.
func (h *TournamentHandler) UploadImage(c *fiber.Ctx) error {
	kind := "banner"
	file, err := c.FormFile("banner")
	if err != nil {
		kind = "logo"
		if file, err = c.FormFile("logo"); err != nil {
			return apperrors.Validation("image file is required",
				apperrors.FieldError{Field: "banner", Message: "upload a banner or logo file"})
		}
	}
	t, err := h.Tournaments.UploadImage(c.UserContext(), middleware.CurrentUser(c).ID, c.Params("id"), kind, file)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, kind+" uploaded", t)
}

func pageRequest(c *fiber.Ctx) services.PageRequest {
	return services.PageRequest{Page: c.QueryInt("page", 1), Limit: c.QueryInt("limit", services.DefaultPageLimit)}
}

// parseFilter reads the listing query string. Dates accept RFC 3339 or YYYY-MM-DD.
func parseFilter(c *fiber.Ctx) (services.TournamentFilter, error) {
	filter := services.TournamentFilter{
		Category:    c.Query("category"),
		Game:        c.Query("game"),
		Status:      c.Query("status"),
		Format:      c.Query("format"),
		Location:    c.Query("location"),
		Search:      c.Query("search"),
		Type:        c.Query("type"),
		PageRequest: pageRequest(c),
	}

	var f apperrors.FieldErrors
	if raw := c.Query("maxEntryFee", c.Query("max_entry_fee")); raw != "" {
		fee, err := strconv.ParseFloat(raw, 64)
		f.Check(err == nil, "max_entry_fee", "max entry fee must be a number")
		filter.MaxEntryFee = &fee
	}
	for _, d := range []struct {
		field string
		raw   string
		dest  **time.Time
	}{
		{"date_from", c.Query("dateFrom", c.Query("date_from")), &filter.DateFrom},
		{"date_to", c.Query("dateTo", c.Query("date_to")), &filter.DateTo},
	} {
		if d.raw == "" {
			continue
		}
		t, err := parseDate(d.raw)
		if err != nil {
			f.Add(d.field, "date must be RFC 3339 or YYYY-MM-DD")
			continue
		}
		*d.dest = &t
	}
	return filter, f.Err("invalid tournament filter")
}

func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse(time.DateOnly, raw)
}
