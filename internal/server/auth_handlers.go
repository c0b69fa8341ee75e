package server

import (
	"log/slog"

	"savornshare/internal/middleware"
	"savornshare/internal/models"
	"savornshare/internal/service"
	"savornshare/internal/token"

	"github.com/gofiber/fiber/v2"
)

// Register handles new account creation. The form is multipart so an avatar
// can be attached alongside the text fields.
func (s *Server) Register(c *fiber.Ctx) error {
	avatar, avatarType, err := readFormFile(c, "avatar")
	if err != nil {
		return fail(c, err)
	}

	user, err := s.userService.Register(c.UserContext(), service.RegisterInput{
		Name:              c.FormValue("name"),
		Email:             c.FormValue("email"),
		Password:          c.FormValue("password"),
		Password2:         c.FormValue("password2"),
		Avatar:            avatar,
		AvatarContentType: avatarType,
	})
	if err != nil {
		return fail(c, err)
	}

	tok, err := s.tokens.Issue(user.ID, user.Name, token.LoginTTL)
	if err != nil {
		return fail(c, models.NewInternalError(err))
	}
	s.setSessionCookie(c, tok, token.LoginTTL)

	middleware.Logger.InfoContext(c.UserContext(), "user registered",
		slog.Uint64("user_id", uint64(user.ID)))

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"token": tok,
		"user":  user,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login checks credentials and establishes a session.
func (s *Server) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, models.NewValidationError("Invalid request body."))
	}

	user, err := s.userService.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return fail(c, err)
	}

	tok, err := s.tokens.Issue(user.ID, user.Name, token.LoginTTL)
	if err != nil {
		return fail(c, models.NewInternalError(err))
	}
	s.setSessionCookie(c, tok, token.LoginTTL)

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"token": tok,
		"id":    user.ID,
		"name":  user.Name,
	})
}

// Logout clears the session cookie. The token itself stays valid until it
// expires; there is no server-side revocation list.
func (s *Server) Logout(c *fiber.Ctx) error {
	s.clearSessionCookie(c)
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Logged out.",
	})
}
