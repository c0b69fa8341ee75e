// Package service implements the application's business rules on top of the
// repositories and the media store.
package service

import (
	"context"
	"strings"

	"savornshare/internal/media"
	"savornshare/internal/models"
	"savornshare/internal/repository"
	"savornshare/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

// UserService owns registration, login and profile management.
type UserService struct {
	users   repository.UserRepository
	uploads *media.Service
}

// NewUserService creates a UserService.
func NewUserService(users repository.UserRepository, uploads *media.Service) *UserService {
	return &UserService{users: users, uploads: uploads}
}

// RegisterInput carries the registration form fields. Avatar is optional.
type RegisterInput struct {
	Name              string
	Email             string
	Password          string
	Password2         string
	Avatar            []byte
	AvatarContentType string
}

// Register creates a new account. Passwords are stored as bcrypt hashes.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if in.Name == "" || in.Email == "" || in.Password == "" {
		return nil, models.NewValidationError("Fill in all fields.")
	}
	if err := validation.Password(in.Password); err != nil {
		return nil, err
	}
	if in.Password != in.Password2 {
		return nil, models.NewValidationError("Passwords do not match.")
	}

	email := strings.ToLower(strings.TrimSpace(in.Email))
	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.NewConflictError("Email already exists.")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	profileImage := models.DefaultAvatarURL
	if len(in.Avatar) > 0 {
		url, err := s.uploads.UploadAvatar(ctx, in.Avatar, in.AvatarContentType)
		if err != nil {
			return nil, err
		}
		profileImage = url
	}

	user := &models.User{
		Name:         in.Name,
		Email:        email,
		Password:     string(hashed),
		ProfileImage: profileImage,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login checks credentials and returns the user. Unknown email and wrong
// password are indistinguishable to the caller.
func (s *UserService) Login(ctx context.Context, email, password string) (*models.User, error) {
	if email == "" || password == "" {
		return nil, models.NewValidationError("Fill in all fields.")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil || user.Password == "" {
		return nil, models.NewUnauthorizedError("Invalid Credentials.")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, models.NewUnauthorizedError("Invalid Credentials.")
	}
	return user, nil
}

// GetByID returns the user without its credential.
func (s *UserService) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.users.GetByID(ctx, id)
}

// List returns all users.
func (s *UserService) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	return s.users.List(ctx, limit, offset)
}

// ChangeAvatar replaces the user's profile picture. The previous stored
// object is deleted best-effort after the new reference is committed.
func (s *UserService) ChangeAvatar(ctx context.Context, userID uint, data []byte, contentType string) (*models.User, error) {
	if len(data) == 0 {
		return nil, models.NewValidationError("No image uploaded.")
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	url, err := s.uploads.UploadAvatar(ctx, data, contentType)
	if err != nil {
		return nil, err
	}

	old := user.ProfileImage
	user.ProfileImage = url
	if err := s.users.Update(ctx, user); err != nil {
		s.uploads.Remove(ctx, url)
		return nil, err
	}
	s.uploads.Remove(ctx, old)

	return user, nil
}

// EditUserInput carries the profile edit form. All text fields are required;
// the avatar is optional.
type EditUserInput struct {
	UserID             uint
	Name               string
	Email              string
	CurrentPassword    string
	NewPassword        string
	ConfirmNewPassword string
	Avatar             []byte
	AvatarContentType  string
}

// EditUser updates name, email, password and optionally the avatar.
func (s *UserService) EditUser(ctx context.Context, in EditUserInput) (*models.User, error) {
	if in.Name == "" || in.Email == "" || in.CurrentPassword == "" ||
		in.NewPassword == "" || in.ConfirmNewPassword == "" {
		return nil, models.NewValidationError("Fill in all fields.")
	}

	user, err := s.users.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(in.Email))
	if existing, err := s.users.GetByEmail(ctx, email); err != nil {
		return nil, err
	} else if existing != nil && existing.ID != in.UserID {
		return nil, models.NewConflictError("Email already exists.")
	}

	if user.Password == "" {
		return nil, models.NewValidationError("Federated accounts have no password to change.")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.CurrentPassword)); err != nil {
		return nil, models.NewValidationError("Invalid current password.")
	}
	if err := validation.Password(in.NewPassword); err != nil {
		return nil, err
	}
	if in.NewPassword != in.ConfirmNewPassword {
		return nil, models.NewValidationError("New passwords do not match.")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	oldImage := ""
	if len(in.Avatar) > 0 {
		url, err := s.uploads.UploadAvatar(ctx, in.Avatar, in.AvatarContentType)
		if err != nil {
			return nil, err
		}
		oldImage = user.ProfileImage
		user.ProfileImage = url
	}

	user.Name = in.Name
	user.Email = email
	user.Password = string(hashed)

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	if oldImage != "" {
		s.uploads.Remove(ctx, oldImage)
	}

	return user, nil
}
