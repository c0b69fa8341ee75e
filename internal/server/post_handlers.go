package server

import (
	"savornshare/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetPosts lists posts, most recently touched first.
func (s *Server) GetPosts(c *fiber.Ctx) error {
	p := parsePagination(c, 20)

	posts, err := s.postService.ListPosts(c.UserContext(), p.Limit, p.Offset)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(posts)
}

// GetPost returns a single post.
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}

	post, err := s.postService.GetPost(c.UserContext(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(post)
}

// GetPostsByCategory lists posts in one category, newest first.
func (s *Server) GetPostsByCategory(c *fiber.Ctx) error {
	p := parsePagination(c, 20)

	posts, err := s.postService.ListByCategory(c.UserContext(), c.Params("category"), p.Limit, p.Offset)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(posts)
}

// GetUserPosts lists one author's posts, newest first.
func (s *Server) GetUserPosts(c *fiber.Ctx) error {
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}

	p := parsePagination(c, 20)
	posts, err := s.postService.ListByCreator(c.UserContext(), id, p.Limit, p.Offset)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(posts)
}

// CreatePost creates a post from a multipart form. The thumbnail file is
// required.
func (s *Server) CreatePost(c *fiber.Ctx) error {
	thumbnail, thumbnailType, err := readFormFile(c, "thumbnail")
	if err != nil {
		return fail(c, err)
	}

	post, err := s.postService.CreatePost(c.UserContext(), service.CreatePostInput{
		CreatorID:            currentUserID(c),
		Title:                c.FormValue("title"),
		Category:             c.FormValue("category"),
		Description:          c.FormValue("description"),
		Thumbnail:            thumbnail,
		ThumbnailContentType: thumbnailType,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// EditPost updates a post the caller owns. The thumbnail is optional; when
// omitted the existing image stays.
func (s *Server) EditPost(c *fiber.Ctx) error {
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}

	thumbnail, thumbnailType, err := readFormFile(c, "thumbnail")
	if err != nil {
		return fail(c, err)
	}

	post, err := s.postService.UpdatePost(c.UserContext(), service.UpdatePostInput{
		ActorID:              currentUserID(c),
		PostID:               id,
		Title:                c.FormValue("title"),
		Category:             c.FormValue("category"),
		Description:          c.FormValue("description"),
		Thumbnail:            thumbnail,
		ThumbnailContentType: thumbnailType,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(post)
}

// DeletePost removes a post the caller owns.
func (s *Server) DeletePost(c *fiber.Ctx) error {
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}

	if err := s.postService.DeletePost(c.UserContext(), currentUserID(c), id); err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Post deleted.",
	})
}
