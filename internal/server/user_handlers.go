package server

import (
	"savornshare/internal/cache"
	"savornshare/internal/models"
	"savornshare/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetMe returns the authenticated user's own profile.
func (s *Server) GetMe(c *fiber.Ctx) error {
	user, ok := c.Locals("user").(*models.User)
	if !ok {
		return fail(c, models.NewUnauthorizedError("No session."))
	}
	return c.Status(fiber.StatusOK).JSON(user)
}

// GetUser returns a public profile by id. Accounts that predate avatar
// handling fall back to the legacy default asset.
func (s *Server) GetUser(c *fiber.Ctx) error {
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}

	var user *models.User
	err = cache.Aside(c.UserContext(), cache.UserKey(id), &user, cache.UserTTL, func() error {
		u, err := s.userService.GetByID(c.UserContext(), id)
		if err != nil {
			return err
		}
		user = u
		return nil
	})
	if err != nil {
		return fail(c, err)
	}
	if user.ProfileImage == "" {
		user.ProfileImage = models.LegacyFallbackAvatarURL
	}
	return c.Status(fiber.StatusOK).JSON(user)
}

// GetAuthors lists all registered users.
func (s *Server) GetAuthors(c *fiber.Ctx) error {
	p := parsePagination(c, 50)

	users, err := s.userService.List(c.UserContext(), p.Limit, p.Offset)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(users)
}

// ChangeAvatar replaces the authenticated user's profile picture.
func (s *Server) ChangeAvatar(c *fiber.Ctx) error {
	data, contentType, err := readFormFile(c, "avatar")
	if err != nil {
		return fail(c, err)
	}

	user, err := s.userService.ChangeAvatar(c.UserContext(), currentUserID(c), data, contentType)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(user)
}

// EditUser updates the authenticated user's name, email and password, with
// an optional new avatar.
func (s *Server) EditUser(c *fiber.Ctx) error {
	avatar, avatarType, err := readFormFile(c, "avatar")
	if err != nil {
		return fail(c, err)
	}

	user, err := s.userService.EditUser(c.UserContext(), service.EditUserInput{
		UserID:             currentUserID(c),
		Name:               c.FormValue("name"),
		Email:              c.FormValue("email"),
		CurrentPassword:    c.FormValue("currentPassword"),
		NewPassword:        c.FormValue("newPassword"),
		ConfirmNewPassword: c.FormValue("confirmNewPassword"),
		Avatar:             avatar,
		AvatarContentType:  avatarType,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(user)
}
