package server

import (
	"fmt"
	"testing"
	"time"

	"devconnector/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePost(t *testing.T) {
	app, _ := newTestServer(t)
	token := registerUser(t, app, "Alice", "alice@example.com")

	resp := request(t, app, "POST", "/api/posts", token, map[string]string{"text": "hello world"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var post models.Post
	decodeBody(t, resp, &post)
	assert.Equal(t, "hello world", post.Text)
	assert.Equal(t, uint(1), post.AuthorID)
	// Author details are snapshotted onto the post
	assert.Equal(t, "Alice", post.AuthorName)
	assert.Contains(t, post.AuthorAvatar, "gravatar.com/avatar/")
	assert.Empty(t, post.Likes)
	assert.Empty(t, post.Comments)
}

func TestCreatePostRequiresText(t *testing.T) {
	app, _ := newTestServer(t)
	token := registerUser(t, app, "Alice", "alice@example.com")

	resp := request(t, app, "POST", "/api/posts", token, map[string]string{})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestGetPostsNewestFirst(t *testing.T) {
	app, s := newTestServer(t)
	token := registerUser(t, app, "Alice", "alice@example.com")

	firstID := createPost(t, app, token, "first")
	secondID := createPost(t, app, token, "second")

	// Force distinct creation order in the listing even when both inserts
	// land in the same timestamp tick.
	s.db.Model(&models.Post{}).Where("id = ?", firstID).
		Update("created_at", time.Now().Add(-time.Second))

	resp := request(t, app, "GET", "/api/posts", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var posts []models.Post
	decodeBody(t, resp, &posts)
	require.Len(t, posts, 2)
	assert.Equal(t, secondID, posts[0].ID)
	assert.Equal(t, firstID, posts[1].ID)
}

func TestGetPostNotFound(t *testing.T) {
	app, _ := newTestServer(t)
	token := registerUser(t, app, "Alice", "alice@example.com")

	resp := request(t, app, "GET", "/api/posts/999", token, nil)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	var body models.ErrorResponse
	decodeBody(t, resp, &body)
	assert.Equal(t, "Post not found", body.Error)
}

func TestDeletePostOwnership(t *testing.T) {
	app, _ := newTestServer(t)
	alice := registerUser(t, app, "Alice", "alice@example.com")
	bob := registerUser(t, app, "Bob", "bob@example.com")

	postID := createPost(t, app, alice, "alice's post")
	path := fmt.Sprintf("/api/posts/%d", postID)

	// Only the author may delete
	resp := request(t, app, "DELETE", path, bob, nil)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	var body models.ErrorResponse
	decodeBody(t, resp, &body)
	assert.Equal(t, "User not authorized", body.Error)

	resp = request(t, app, "DELETE", path, alice, nil)
	require.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	// Once deleted, not-found wins over not-authorized for everyone
	resp = request(t, app, "DELETE", path, bob, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	resp = request(t, app, "DELETE", path, alice, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestLikeUnlikeRoundTrip(t *testing.T) {
	app, _ := newTestServer(t)
	alice := registerUser(t, app, "Alice", "alice@example.com")
	bob := registerUser(t, app, "Bob", "bob@example.com")

	postID := createPost(t, app, alice, "like me")
	likePath := fmt.Sprintf("/api/posts/like/%d", postID)
	unlikePath := fmt.Sprintf("/api/posts/unlike/%d", postID)

	resp := request(t, app, "PUT", likePath, bob, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var likes []models.Like
	decodeBody(t, resp, &likes)
	require.Len(t, likes, 1)
	assert.Equal(t, uint(2), likes[0].UserID)

	// Liking twice is rejected
	resp = request(t, app, "PUT", likePath, bob, nil)
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)

	var body models.ErrorResponse
	decodeBody(t, resp, &body)
	assert.Equal(t, "Post already liked", body.Error)

	// Unlike restores the pre-like state
	resp = request(t, app, "PUT", unlikePath, bob, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &likes)
	assert.Empty(t, likes)

	// Unliking again (or a never-liked post) is not-found
	resp = request(t, app, "PUT", unlikePath, bob, nil)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	decodeBody(t, resp, &body)
	assert.Equal(t, "Post has not yet been liked", body.Error)
}

func TestCommentLifecycle(t *testing.T) {
	app, _ := newTestServer(t)
	alice := registerUser(t, app, "Alice", "alice@example.com")
	bob := registerUser(t, app, "Bob", "bob@example.com")

	postID := createPost(t, app, alice, "discuss")
	commentPath := fmt.Sprintf("/api/posts/comment/%d", postID)

	// Any authenticated user may comment on any post
	resp := request(t, app, "POST", commentPath, bob, map[string]string{"text": "nice post"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var comments []models.Comment
	decodeBody(t, resp, &comments)
	require.Len(t, comments, 1)
	assert.Equal(t, uint(2), comments[0].AuthorID)
	assert.Equal(t, "Bob", comments[0].AuthorName)
	require.NotEmpty(t, comments[0].ID)

	deletePath := fmt.Sprintf("/api/posts/comment/%d/%s", postID, comments[0].ID)

	// The post's author does not own the comment
	resp = request(t, app, "DELETE", deletePath, alice, nil)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	var body models.ErrorResponse
	decodeBody(t, resp, &body)
	assert.Equal(t, "User not authorized", body.Error)

	// The comment's author does
	resp = request(t, app, "DELETE", deletePath, bob, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &comments)
	assert.Empty(t, comments)

	// Repeating the delete finds nothing
	resp = request(t, app, "DELETE", deletePath, bob, nil)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	decodeBody(t, resp, &body)
	assert.Equal(t, "Comment does not exist", body.Error)
}

func TestCommentOrdering(t *testing.T) {
	app, _ := newTestServer(t)
	alice := registerUser(t, app, "Alice", "alice@example.com")

	postID := createPost(t, app, alice, "discuss")
	commentPath := fmt.Sprintf("/api/posts/comment/%d", postID)

	request(t, app, "POST", commentPath, alice, map[string]string{"text": "first"})
	resp := request(t, app, "POST", commentPath, alice, map[string]string{"text": "second"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var comments []models.Comment
	decodeBody(t, resp, &comments)
	require.Len(t, comments, 2)
	assert.Equal(t, "second", comments[0].Text)
	assert.Equal(t, "first", comments[1].Text)
}

func TestPostRoutesRequireAuth(t *testing.T) {
	app, _ := newTestServer(t)

	resp := request(t, app, "GET", "/api/posts", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp = request(t, app, "POST", "/api/posts", "", map[string]string{"text": "hi"})
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
