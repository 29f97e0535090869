package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"devconnector/cache"
	"devconnector/models"

	"github.com/gofiber/fiber/v2"
)

const githubCacheTTL = 10 * time.Minute

// GithubClient fetches a user's public repositories from the GitHub API.
type GithubClient struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

// NewGithubClient creates a client for api.github.com. The token is
// optional; without it requests count against the unauthenticated quota.
func NewGithubClient(token string) *GithubClient {
	return &GithubClient{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    "https://api.github.com",
		token:      token,
	}
}

// ListRepos returns the five most recently created repositories for a
// GitHub username, as raw JSON documents.
func (g *GithubClient) ListRepos(ctx context.Context, username string) ([]json.RawMessage, error) {
	endpoint := fmt.Sprintf("%s/users/%s/repos?per_page=5&sort=created", g.baseURL, url.PathEscape(username))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	req.Header.Set("User-Agent", "devconnector")
	if g.token != "" {
		req.Header.Set("Authorization", "Bearer "+g.token)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, models.NewUpstreamError("Github request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, models.NewNotFoundError("No Github profile found")
	}

	var repos []json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&repos); err != nil {
		return nil, models.NewUpstreamError("Github response could not be decoded")
	}
	return repos, nil
}

// GetGithubRepos handles GET /api/profile/github/:username (public,
// cached per username).
func (s *Server) GetGithubRepos(c *fiber.Ctx) error {
	ctx := c.Context()
	username := c.Params("username")

	var repos []json.RawMessage
	err := cache.CacheAside(ctx, s.redis, "github:repos:"+username, &repos, githubCacheTTL, func() error {
		var ferr error
		repos, ferr = s.github.ListRepos(ctx, username)
		return ferr
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(repos)
}
