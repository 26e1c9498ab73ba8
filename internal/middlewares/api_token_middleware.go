package middlewares

import (
	"strings"

	"github.com/agencyflow/agencyflow/internal/auth"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"
)

const ClaimsLocalKey = "apiClaims"

// APITokenMiddleware requires a valid bearer token on every request of the
// group it is installed on.
func APITokenMiddleware(verifier *auth.APITokenVerifier) fiber.Handler {
	return func(c fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)

		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Missing bearer token",
			})
		}

		claims, err := verifier.Verify(strings.TrimSpace(token))
		if err != nil {
			log.Warn().Err(err).Str("path", c.Path()).Msg("Rejected API token")

			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid bearer token",
			})
		}

		c.Locals(ClaimsLocalKey, claims)

		return c.Next()
	}
}
