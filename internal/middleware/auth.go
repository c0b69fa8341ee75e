package middleware

import (
	"context"
	"errors"
	"strings"

	"savornshare/internal/models"
	"savornshare/internal/repository"
	"savornshare/internal/token"

	"github.com/gofiber/fiber/v2"
)

// SessionCookie is the name of the cookie carrying the session token.
const SessionCookie = "token"

// AuthRequired returns middleware that resolves the caller's identity from a
// session token and rejects the request otherwise.
//
// Token sources are checked in fixed priority order: the "token" cookie
// first (federated login sets it), then the Authorization Bearer header.
// On success the user is loaded from the store (stale tokens referencing a
// deleted user are rejected) and attached to the request via locals
// "userID" and "user".
func AuthRequired(tokens *token.Service, users repository.UserRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := c.Cookies(SessionCookie)
		if raw == "" {
			authHeader := c.Get(fiber.HeaderAuthorization)
			if authHeader != "" {
				parts := strings.SplitN(authHeader, " ", 2)
				if len(parts) == 2 && parts[0] == "Bearer" {
					raw = parts[1]
				}
			}
		}

		if raw == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Unauthorized. No token provided"))
		}

		claims, err := tokens.Verify(raw)
		if err != nil {
			msg := "Unauthorized. Invalid token"
			if errors.Is(err, token.ErrExpired) {
				msg = "Unauthorized. Token expired"
			}
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError(msg))
		}

		user, err := users.GetByID(c.Context(), claims.UserID)
		if err != nil {
			var appErr *models.AppError
			if errors.As(err, &appErr) && appErr.Code == "NOT_FOUND" {
				// Stale token referencing a deleted user.
				return models.RespondWithError(c, fiber.StatusUnauthorized,
					models.NewUnauthorizedError("Unauthorized. User not found"))
			}
			return models.RespondWithError(c, fiber.StatusInternalServerError, err)
		}

		c.Locals("userID", user.ID)
		c.Locals("user", user)

		// Sync to UserContext for logging and downstream services.
		ctx := context.WithValue(c.UserContext(), UserIDKey, user.ID)
		c.SetUserContext(ctx)

		return c.Next()
	}
}
