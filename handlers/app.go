package handlers

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	fiberutils "github.com/gofiber/fiber/v2/utils"

	"tournament-platform/apperrors"
	"tournament-platform/config"
	"tournament-platform/middleware"
	"tournament-platform/services"
)

type AppOptions struct {
	Config        config.Config
	Users         *services.UserService
	Tokens        *services.TokenIssuer
	Tournaments   *services.TournamentService
	Registrations *services.RegistrationService
	// UploadDir is served under /uploads when set.
	UploadDir string
	// AccessLog turns on the fiber request logger.
	AccessLog bool
}

// NewApp builds the fiber app with every route mounted under /api.
func NewApp(o AppOptions) *fiber.App {
	cfg := o.Config
	app := fiber.New(fiber.Config{
		AppName:      "tournament-platform",
		BodyLimit:    cfg.BodyLimit,
		ErrorHandler: errorHandler(cfg.IsDevelopment()),
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	if o.AccessLog {
		app.Use(logger.New(logger.Config{
			Format: "${time} ${locals:requestid} ${status} ${method} ${path} ${latency}\n",
		}))
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(cfg.AllowedOrigins, ","),
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID",
		ExposeHeaders:    "Content-Length, Content-Type, X-Request-ID",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "time": time.Now().UTC()})
	})
	if o.UploadDir != "" {
		app.Static("/uploads", o.UploadDir)
	}

	api := app.Group("/api")
	authenticate := middleware.Authenticate(o.Tokens, o.Users)

	authGroup := api.Group("/auth")
	if cfg.AuthRateLimit > 0 {
		authGroup.Use(limiter.New(limiter.Config{
			Max:        cfg.AuthRateLimit,
			Expiration: time.Minute,
			LimitReached: func(c *fiber.Ctx) error {
				return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
					"success": false,
					"error":   "RATE_LIMITED",
					"message": "too many requests, try again later",
				})
			},
		}))
	}

	SetupAuthRoutes(authGroup, &AuthHandler{Users: o.Users, Tokens: o.Tokens}, authenticate)
	SetupUserRoutes(api.Group("/users"), &UserHandler{Users: o.Users}, authenticate)
	registrations := &RegistrationHandler{Registrations: o.Registrations}
	SetupTournamentRoutes(api.Group("/tournaments"), &TournamentHandler{Tournaments: o.Tournaments}, registrations, authenticate)
	SetupRegistrationRoutes(api.Group("/registrations"), registrations, authenticate)

	return app
}

// respond writes the success envelope.
func respond(c *fiber.Ctx, status int, message string, data any) error {
	body := fiber.Map{"success": true}
	if message != "" {
		body["message"] = message
	}
	if data != nil {
		body["data"] = data
	}
	return c.Status(status).JSON(body)
}

// errorHandler renders every returned error as the failure envelope.
// Internal causes are only exposed in development.
func errorHandler(dev bool) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var appErr *apperrors.Error
		if !errors.As(err, &appErr) {
			var fiberErr *fiber.Error
			if errors.As(err, &fiberErr) {
				return c.Status(fiberErr.Code).JSON(fiber.Map{
					"success": false,
					"error":   codeForStatus(fiberErr.Code),
					"message": fiberErr.Message,
				})
			}
			appErr = apperrors.Internal("internal server error", err)
		}

		body := fiber.Map{
			"success": false,
			"error":   appErr.Code,
			"message": appErr.Message,
		}
		if len(appErr.Fields) > 0 {
			body["errors"] = appErr.Fields
		}
		if appErr.Code == apperrors.CodeInternal {
			log.Printf("❌ [API] %s %s: %s: %v", c.Method(), c.Path(), appErr.Message, appErr.Cause)
			if dev && appErr.Cause != nil {
				body["cause"] = appErr.Cause.Error()
			} else {
				body["message"] = "internal server error"
			}
		}
		return c.Status(appErr.Code.HTTPStatus()).JSON(body)
	}
}

func codeForStatus(status int) apperrors.Code {
	switch status {
	case fiber.StatusNotFound:
		return apperrors.CodeNotFound
	case fiber.StatusUnauthorized:
		return apperrors.CodeUnauthorized
	case fiber.StatusForbidden:
		return apperrors.CodeForbidden
	case fiber.StatusBadRequest, fiber.StatusRequestEntityTooLarge, fiber.StatusUnprocessableEntity:
		return apperrors.CodeValidation
	default:
		if status >= 500 {
			return apperrors.CodeInternal
		}
		return apperrors.Code(strings.ToUpper(strings.ReplaceAll(fiberutils.StatusMessage(status), " ", "_")))
	}
}

// parseBody decodes the JSON body into dest.
func parseBody(c *fiber.Ctx, dest any) error {
	if err := c.BodyParser(dest); err != nil {
		return apperrors.Validation("invalid request body",
			apperrors.FieldError{Field: "body", Message: err.Error()})
	}
	return nil
}
