package server

import (
	"crypto/rand"
	"encoding/base64"
	"log/slog"
	"time"

	"savornshare/internal/middleware"
	"savornshare/internal/models"
	"savornshare/internal/token"

	"github.com/gofiber/fiber/v2"
)

const stateCookie = "oauth_state"

func newOAuthState() (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// GoogleRedirect starts the OAuth flow by sending the browser to Google's
// consent screen. The state nonce is pinned in a short-lived cookie.
func (s *Server) GoogleRedirect(c *fiber.Ctx) error {
	state, err := newOAuthState()
	if err != nil {
		return fail(c, models.NewInternalError(err))
	}

	c.Cookie(&fiber.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/",
		Expires:  time.Now().Add(10 * time.Minute),
		HTTPOnly: true,
		Secure:   s.config.IsProduction(),
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	return c.Redirect(s.googleOAuth.AuthCodeURL(state), fiber.StatusTemporaryRedirect)
}

// GoogleCallback finishes the OAuth flow: it checks the state nonce,
// exchanges the authorization code, verifies the ID token and establishes a
// local session before bouncing back to the frontend.
func (s *Server) GoogleCallback(c *fiber.Ctx) error {
	state := c.Query("state")
	if state == "" || state != c.Cookies(stateCookie) {
		return fail(c, models.NewUnauthorizedError("Invalid OAuth state."))
	}
	c.ClearCookie(stateCookie)

	code := c.Query("code")
	if code == "" {
		return fail(c, models.NewUnauthorizedError("Missing authorization code."))
	}

	rawIDToken, err := s.googleOAuth.ExchangeCode(c.UserContext(), code)
	if err != nil {
		return fail(c, models.NewUnauthorizedError("Code exchange failed."))
	}

	identity, err := s.google.VerifyIDToken(c.UserContext(), rawIDToken)
	if err != nil {
		return fail(c, models.NewUnauthorizedError("Invalid Google token."))
	}

	user, tok, err := s.bridge.Establish(c.UserContext(), identity)
	if err != nil {
		return fail(c, err)
	}
	s.setSessionCookie(c, tok, token.FederatedTTL)

	middleware.Logger.InfoContext(c.UserContext(), "google login",
		slog.Uint64("user_id", uint64(user.ID)))

	redirect := s.config.FrontendURL
	if redirect == "" {
		redirect = "/"
	}
	return c.Redirect(redirect, fiber.StatusTemporaryRedirect)
}

type googleTokenRequest struct {
	Token string `json:"token"`
}

// GoogleTokenLogin accepts an ID token the client obtained itself (the
// one-tap / mobile flow), verifies it and establishes a session.
func (s *Server) GoogleTokenLogin(c *fiber.Ctx) error {
	var req googleTokenRequest
	if err := c.BodyParser(&req); err != nil || req.Token == "" {
		return fail(c, models.NewValidationError("Missing token."))
	}

	identity, err := s.google.VerifyIDToken(c.UserContext(), req.Token)
	if err != nil {
		return fail(c, models.NewUnauthorizedError("Invalid Google token."))
	}

	user, tok, err := s.bridge.Establish(c.UserContext(), identity)
	if err != nil {
		return fail(c, err)
	}
	s.setSessionCookie(c, tok, token.FederatedTTL)

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"token": tok,
		"user":  user,
	})
}
