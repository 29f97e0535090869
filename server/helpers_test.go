package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"devconnector/auth"
	"devconnector/config"
	"devconnector/database"
	"devconnector/repository"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// newTestServer creates a server backed by an in-memory SQLite database,
// without Redis, and a Fiber app with the full route table.
func newTestServer(t *testing.T) (*fiber.App, *Server) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	cfg := &config.Config{
		JWTSecret:       "test-secret-key",
		TokenTTLSeconds: 3600,
	}

	s := &Server{
		config:      cfg,
		db:          db,
		tokens:      auth.NewTokenService(cfg.JWTSecret, cfg.TokenTTL()),
		userRepo:    repository.NewUserRepository(db),
		profileRepo: repository.NewProfileRepository(db),
		postRepo:    repository.NewPostRepository(db),
		github:      NewGithubClient(""),
	}

	app := fiber.New()
	s.SetupRoutes(app)
	return app, s
}

// request performs a JSON request against the test app. token, when
// non-empty, is sent in the x-auth-token header.
func request(t *testing.T, app *fiber.App, method, path, token string, body any) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("x-auth-token", token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}

// registerUser signs up a user and returns the issued token.
func registerUser(t *testing.T, app *fiber.App, name, email string) string {
	t.Helper()

	resp := request(t, app, "POST", "/api/users", "", map[string]string{
		"name":     name,
		"email":    email,
		"password": "password123",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Token string `json:"token"`
	}
	decodeBody(t, resp, &body)
	require.NotEmpty(t, body.Token)
	return body.Token
}

// createProfile creates a minimal profile for the token's user.
func createProfile(t *testing.T, app *fiber.App, token string) {
	t.Helper()

	resp := request(t, app, "POST", "/api/profile", token, map[string]string{
		"status": "Developer",
		"skills": "go",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
}

// createPost creates a post and returns its ID.
func createPost(t *testing.T, app *fiber.App, token, text string) uint {
	t.Helper()

	resp := request(t, app, "POST", "/api/posts", token, map[string]string{"text": text})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var post struct {
		ID uint `json:"id"`
	}
	decodeBody(t, resp, &post)
	require.NotZero(t, post.ID)
	return post.ID
}
