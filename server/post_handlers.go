package server

import (
	"devconnector/models"

	"github.com/gofiber/fiber/v2"
)

// GetPosts handles GET /api/posts (newest first)
func (s *Server) GetPosts(c *fiber.Ctx) error {
	posts, err := s.postRepo.List(c.Context())
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(posts)
}

// GetPost handles GET /api/posts/:id
func (s *Server) GetPost(c *fiber.Ctx) error {
	post, err := s.loadPost(c)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(post)
}

// CreatePost handles POST /api/posts. The author's name and avatar are
// snapshotted onto the post at creation time.
func (s *Server) CreatePost(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)

	var req struct {
		Text string `json:"text"`
	}
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, models.NewValidationError("Invalid request body"))
	}
	if req.Text == "" {
		return respondError(c, models.NewValidationError("Text is required"))
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return respondError(c, err)
	}

	post := &models.Post{
		AuthorID:     userID,
		Text:         req.Text,
		AuthorName:   user.Name,
		AuthorAvatar: user.Avatar,
		Likes:        []models.Like{},
		Comments:     []models.Comment{},
	}

	if err := s.postRepo.Create(ctx, post); err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(post)
}

// DeletePost handles DELETE /api/posts/:id. Existence is checked before
// ownership, and only the author may delete.
func (s *Server) DeletePost(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	post, err := s.loadPost(c)
	if err != nil {
		return respondError(c, err)
	}

	if post.AuthorID != userID {
		return respondError(c, models.NewForbiddenError("User not authorized"))
	}

	if err := s.postRepo.Delete(c.Context(), post.ID); err != nil {
		return respondError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// LikePost handles PUT /api/posts/like/:id
func (s *Server) LikePost(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	post, err := s.loadPost(c)
	if err != nil {
		return respondError(c, err)
	}

	if err := post.AddLike(userID); err != nil {
		return respondError(c, err)
	}

	if err := s.postRepo.Save(c.Context(), post); err != nil {
		return respondError(c, err)
	}

	return c.JSON(post.Likes)
}

// UnlikePost handles PUT /api/posts/unlike/:id
func (s *Server) UnlikePost(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	post, err := s.loadPost(c)
	if err != nil {
		return respondError(c, err)
	}

	if err := post.RemoveLike(userID); err != nil {
		return respondError(c, err)
	}

	if err := s.postRepo.Save(c.Context(), post); err != nil {
		return respondError(c, err)
	}

	return c.JSON(post.Likes)
}

// CreateComment handles POST /api/posts/comment/:id. Any authenticated
// user may comment; the comment is owned by its author, not the post's.
func (s *Server) CreateComment(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)

	post, err := s.loadPost(c)
	if err != nil {
		return respondError(c, err)
	}

	var req struct {
		Text string `json:"text"`
	}
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, models.NewValidationError("Invalid request body"))
	}
	if req.Text == "" {
		return respondError(c, models.NewValidationError("Text is required"))
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return respondError(c, err)
	}

	post.AddComment(models.Comment{
		AuthorID:     userID,
		Text:         req.Text,
		AuthorName:   user.Name,
		AuthorAvatar: user.Avatar,
	})

	if err := s.postRepo.Save(ctx, post); err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(post.Comments)
}

// DeleteComment handles DELETE /api/posts/comment/:id/:commentId. The
// aggregate enforces existence-before-ownership and author-only removal.
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	post, err := s.loadPost(c)
	if err != nil {
		return respondError(c, err)
	}

	if err := post.RemoveComment(c.Params("commentId"), userID); err != nil {
		return respondError(c, err)
	}

	if err := s.postRepo.Save(c.Context(), post); err != nil {
		return respondError(c, err)
	}

	return c.JSON(post.Comments)
}

// loadPost resolves the :id route parameter to a post.
func (s *Server) loadPost(c *fiber.Ctx) (*models.Post, error) {
	id, err := c.ParamsInt("id")
	if err != nil {
		return nil, models.NewValidationError("Invalid post ID")
	}

	post, err := s.postRepo.GetByID(c.Context(), uint(id))
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, models.NewNotFoundError("Post not found")
	}
	return post, nil
}
