package service

import (
	"context"
	"log/slog"

	"savornshare/internal/media"
	"savornshare/internal/models"
	"savornshare/internal/repository"
)

// minDescriptionLen is the floor for post descriptions on create and edit.
const minDescriptionLen = 12

// PostService owns post CRUD, ownership checks and the per-author post
// counter.
type PostService struct {
	posts   repository.PostRepository
	users   repository.UserRepository
	uploads *media.Service
}

// NewPostService creates a PostService.
func NewPostService(posts repository.PostRepository, users repository.UserRepository, uploads *media.Service) *PostService {
	return &PostService{posts: posts, users: users, uploads: uploads}
}

func validatePostFields(title, category, description string) error {
	if title == "" || category == "" || description == "" {
		return models.NewValidationError("Fill in all fields.")
	}
	if !models.IsValidCategory(category) {
		return models.NewValidationError("Unknown category.")
	}
	if len(description) < minDescriptionLen {
		return models.NewValidationError("Description must be at least 12 characters long.")
	}
	return nil
}

// CreatePostInput carries the create form. The thumbnail is required.
type CreatePostInput struct {
	CreatorID            uint
	Title                string
	Category             string
	Description          string
	Thumbnail            []byte
	ThumbnailContentType string
}

// CreatePost validates the form, stores the thumbnail, creates the post and
// bumps the author's post counter. A failed counter bump is logged, not
// rolled back.
func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if err := validatePostFields(in.Title, in.Category, in.Description); err != nil {
		return nil, err
	}
	if len(in.Thumbnail) == 0 {
		return nil, models.NewValidationError("Please choose an image.")
	}

	url, err := s.uploads.UploadThumbnail(ctx, in.Thumbnail, in.ThumbnailContentType)
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		Title:       in.Title,
		Category:    in.Category,
		Description: in.Description,
		CreatorID:   in.CreatorID,
		ImageURL:    url,
	}
	if err := s.posts.Create(ctx, post); err != nil {
		s.uploads.Remove(ctx, url)
		return nil, err
	}

	if err := s.users.AdjustPostCount(ctx, in.CreatorID, 1); err != nil {
		slog.Warn("post counter increment failed", "user_id", in.CreatorID, "error", err)
	}

	return post, nil
}

// UpdatePostInput carries the edit form. The thumbnail is optional; when
// absent the existing image is kept.
type UpdatePostInput struct {
	ActorID              uint
	PostID               uint
	Title                string
	Category             string
	Description          string
	Thumbnail            []byte
	ThumbnailContentType string
}

// UpdatePost edits a post the actor owns. A replaced thumbnail's old object
// is deleted best-effort after the new reference is committed.
func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	post, err := s.posts.GetByID(ctx, in.PostID)
	if err != nil {
		return nil, err
	}
	if post.CreatorID != in.ActorID {
		return nil, models.NewForbiddenError("You are not allowed to edit this post.")
	}
	if err := validatePostFields(in.Title, in.Category, in.Description); err != nil {
		return nil, err
	}

	oldImage := ""
	if len(in.Thumbnail) > 0 {
		url, err := s.uploads.UploadThumbnail(ctx, in.Thumbnail, in.ThumbnailContentType)
		if err != nil {
			return nil, err
		}
		oldImage = post.ImageURL
		post.ImageURL = url
	}

	post.Title = in.Title
	post.Category = in.Category
	post.Description = in.Description

	if err := s.posts.Update(ctx, post); err != nil {
		return nil, err
	}
	if oldImage != "" {
		s.uploads.Remove(ctx, oldImage)
	}

	return post, nil
}

// DeletePost removes a post the actor owns, then deletes its thumbnail
// best-effort and decrements the author's counter. Counter and media
// failures are logged, never surfaced.
func (s *PostService) DeletePost(ctx context.Context, actorID, postID uint) error {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post.CreatorID != actorID {
		return models.NewForbiddenError("You are not allowed to delete this post.")
	}

	if err := s.posts.Delete(ctx, postID); err != nil {
		return err
	}

	s.uploads.Remove(ctx, post.ImageURL)

	if err := s.users.AdjustPostCount(ctx, post.CreatorID, -1); err != nil {
		slog.Warn("post counter decrement failed", "user_id", post.CreatorID, "error", err)
	}

	return nil
}

// GetPost returns a single post by id.
func (s *PostService) GetPost(ctx context.Context, id uint) (*models.Post, error) {
	return s.posts.GetByID(ctx, id)
}

// ListPosts returns posts ordered by last update, newest first.
func (s *PostService) ListPosts(ctx context.Context, limit, offset int) ([]models.Post, error) {
	return s.posts.List(ctx, limit, offset)
}

// ListByCategory returns posts in a category, newest first.
func (s *PostService) ListByCategory(ctx context.Context, category string, limit, offset int) ([]models.Post, error) {
	if !models.IsValidCategory(category) {
		return nil, models.NewValidationError("Unknown category.")
	}
	return s.posts.ListByCategory(ctx, category, limit, offset)
}

// ListByCreator returns a user's posts, newest first. The user must exist.
func (s *PostService) ListByCreator(ctx context.Context, creatorID uint, limit, offset int) ([]models.Post, error) {
	if _, err := s.users.GetByID(ctx, creatorID); err != nil {
		return nil, err
	}
	return s.posts.ListByCreator(ctx, creatorID, limit, offset)
}
