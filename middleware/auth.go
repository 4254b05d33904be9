package middleware

import (
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"

	"tournament-platform/apperrors"
	"tournament-platform/models"
	"tournament-platform/services"
)

const userKey = "user"

// Authenticate verifies the bearer token and loads the account behind it.
// Unknown and deactivated accounts are rejected even with a valid token.
func Authenticate(tokens *services.TokenIssuer, users *services.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			return apperrors.Unauthorized("access token required")
		}

		userID, err := tokens.Parse(strings.TrimSpace(token))
		if err != nil {
			return err
		}

		user, err := users.GetByID(c.UserContext(), userID)
		if err != nil {
			if apperrors.CodeOf(err) == apperrors.CodeNotFound {
				log.Printf("❌ [AUTH] Token for unknown user %s | Path: %s", userID, c.Path())
				return apperrors.Unauthorized("invalid token")
			}
			return err
		}
		if !user.IsActive {
			return apperrors.Unauthorized("account is deactivated")
		}

		c.Locals(userKey, user)
		return c.Next()
	}
}

// RequireHost lets only host accounts through. Must run after Authenticate.
func RequireHost() fiber.Handler {
	return requireAccount(models.AccountHost, "only hosts can do this")
}

// RequireParticipant lets only participant accounts through. Must run after Authenticate.
func RequireParticipant() fiber.Handler {
	return requireAccount(models.AccountParticipant, "only participants can do this")
}

func requireAccount(accountType, message string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		if user == nil {
			return apperrors.Unauthorized("access token required")
		}
		if user.AccountType != accountType {
			return apperrors.Forbidden(message)
		}
		return c.Next()
	}
}

// CurrentUser returns the authenticated account, or nil outside Authenticate.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(userKey).(*models.User)
	return user
}
