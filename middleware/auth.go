// Package middleware provides authentication, logging, and rate-limiting
// middleware for the application.
package middleware

import (
	"devconnector/auth"
	"devconnector/models"

	"github.com/gofiber/fiber/v2"
)

// TokenHeader is the request header carrying the identity token.
const TokenHeader = "x-auth-token"

// AuthRequired returns the authentication gate. Every identity-scoped
// route runs through it: the token comes from the x-auth-token header,
// is verified, and the resolved user ID is stored in the request context.
func AuthRequired(tokens *auth.TokenService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := c.Get(TokenHeader)
		if tokenString == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("No token, authorization denied"))
		}

		userID, err := tokens.Verify(tokenString)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Token is not valid"))
		}

		c.Locals("userID", userID)
		return c.Next()
	}
}
