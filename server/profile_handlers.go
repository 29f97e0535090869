package server

import (
	"time"

	"devconnector/cache"
	"devconnector/models"
	"devconnector/validation"

	"github.com/gofiber/fiber/v2"
)

const profileListCacheKey = "profiles:all"

// parseDate accepts the date-only form used by clients as well as full
// RFC 3339 timestamps.
func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, value)
}

func parseOptionalDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := parseDate(value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// GetProfiles handles GET /api/profile (public, cached)
func (s *Server) GetProfiles(c *fiber.Ctx) error {
	ctx := c.Context()

	var profiles []models.Profile
	err := cache.CacheAside(ctx, s.redis, profileListCacheKey, &profiles, 30*time.Second, func() error {
		var ferr error
		profiles, ferr = s.profileRepo.List(ctx)
		return ferr
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(profiles)
}

// GetMyProfile handles GET /api/profile/me
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	profile, err := s.profileRepo.GetByUserID(c.Context(), userID)
	if err != nil {
		return respondError(c, err)
	}
	if profile == nil {
		return respondError(c, models.NewNotFoundError("There is no profile for this user"))
	}

	return c.JSON(profile)
}

// GetProfileByUserID handles GET /api/profile/:userId (public)
func (s *Server) GetProfileByUserID(c *fiber.Ctx) error {
	userID, err := c.ParamsInt("userId")
	if err != nil {
		return respondError(c, models.NewValidationError("Invalid user ID"))
	}

	profile, err := s.profileRepo.GetByUserID(c.Context(), uint(userID))
	if err != nil {
		return respondError(c, err)
	}
	if profile == nil {
		return respondError(c, models.NewNotFoundError("There is no profile for this user"))
	}

	return c.JSON(profile)
}

type profileRequest struct {
	Status         string `json:"status"`
	Skills         string `json:"skills"`
	Company        string `json:"company"`
	Website        string `json:"website"`
	Location       string `json:"location"`
	Bio            string `json:"bio"`
	GithubUsername string `json:"githubusername"`
	Youtube        string `json:"youtube"`
	Twitter        string `json:"twitter"`
	Facebook       string `json:"facebook"`
	Linkedin       string `json:"linkedin"`
	Instagram      string `json:"instagram"`
}

func (r *profileRequest) social() map[string]string {
	social := map[string]string{}
	for network, link := range map[string]string{
		"youtube":   r.Youtube,
		"twitter":   r.Twitter,
		"facebook":  r.Facebook,
		"linkedin":  r.Linkedin,
		"instagram": r.Instagram,
	} {
		if link != "" {
			social[network] = link
		}
	}
	return social
}

// UpsertProfile handles POST /api/profile: update-if-exists, else create.
// On update, fields absent from the request keep their stored values, and
// the experience/education histories are never touched.
func (s *Server) UpsertProfile(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)

	var req profileRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, models.NewValidationError("Invalid request body"))
	}

	profile, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		return respondError(c, err)
	}

	created := profile == nil
	if created {
		if req.Status == "" {
			return respondError(c, models.NewValidationError("Status is required"))
		}
		if req.Skills == "" {
			return respondError(c, models.NewValidationError("Skills is required"))
		}
		profile = &models.Profile{
			UserID:     userID,
			Experience: []models.Experience{},
			Education:  []models.Education{},
		}
	}

	if req.Status != "" {
		profile.Status = req.Status
	}
	if req.Skills != "" {
		profile.Skills = validation.SplitSkills(req.Skills)
	}
	if req.Company != "" {
		profile.Company = req.Company
	}
	if req.Website != "" {
		profile.Website = req.Website
	}
	if req.Location != "" {
		profile.Location = req.Location
	}
	if req.Bio != "" {
		profile.Bio = req.Bio
	}
	if req.GithubUsername != "" {
		profile.GithubUsername = req.GithubUsername
	}
	// Social links merge per network so an update that sends only one
	// link leaves the others in place, like every other optional field.
	if social := req.social(); len(social) > 0 {
		if profile.Social == nil {
			profile.Social = map[string]string{}
		}
		for network, link := range social {
			profile.Social[network] = link
		}
	}

	if err := s.profileRepo.Save(ctx, profile); err != nil {
		return respondError(c, err)
	}

	cache.Invalidate(ctx, s.redis, profileListCacheKey)

	if created {
		return c.Status(fiber.StatusCreated).JSON(profile)
	}
	return c.JSON(profile)
}

// loadOwnProfile fetches the acting user's profile for a sub-list
// mutation, translating absence into the canonical not-found error.
func (s *Server) loadOwnProfile(c *fiber.Ctx) (*models.Profile, error) {
	userID := c.Locals("userID").(uint)

	profile, err := s.profileRepo.GetByUserID(c.Context(), userID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, models.NewNotFoundError("There is no profile for this user")
	}
	return profile, nil
}

// AddExperience handles PUT /api/profile/experience
func (s *Server) AddExperience(c *fiber.Ctx) error {
	var req struct {
		Title       string `json:"title"`
		Company     string `json:"company"`
		Location    string `json:"location"`
		From        string `json:"from"`
		To          string `json:"to"`
		Current     bool   `json:"current"`
		Description string `json:"description"`
	}
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, models.NewValidationError("Invalid request body"))
	}

	if req.Title == "" {
		return respondError(c, models.NewValidationError("Title is required"))
	}
	if req.Company == "" {
		return respondError(c, models.NewValidationError("Company is required"))
	}
	if req.From == "" {
		return respondError(c, models.NewValidationError("From date is required"))
	}
	from, err := parseDate(req.From)
	if err != nil {
		return respondError(c, models.NewValidationError("Invalid from date"))
	}
	to, err := parseOptionalDate(req.To)
	if err != nil {
		return respondError(c, models.NewValidationError("Invalid to date"))
	}

	profile, err := s.loadOwnProfile(c)
	if err != nil {
		return respondError(c, err)
	}

	profile.AddExperience(models.Experience{
		Title:       req.Title,
		Company:     req.Company,
		Location:    req.Location,
		From:        from,
		To:          to,
		Current:     req.Current,
		Description: req.Description,
	})

	if err := s.profileRepo.Save(c.Context(), profile); err != nil {
		return respondError(c, err)
	}

	cache.Invalidate(c.Context(), s.redis, profileListCacheKey)

	return c.JSON(profile)
}

// DeleteExperience handles DELETE /api/profile/experience/:id
func (s *Server) DeleteExperience(c *fiber.Ctx) error {
	profile, err := s.loadOwnProfile(c)
	if err != nil {
		return respondError(c, err)
	}

	if err := profile.RemoveExperience(c.Params("id")); err != nil {
		return respondError(c, err)
	}

	if err := s.profileRepo.Save(c.Context(), profile); err != nil {
		return respondError(c, err)
	}

	cache.Invalidate(c.Context(), s.redis, profileListCacheKey)

	return c.JSON(profile)
}

// AddEducation handles PUT /api/profile/education
func (s *Server) AddEducation(c *fiber.Ctx) error {
	var req struct {
		School       string `json:"school"`
		Degree       string `json:"degree"`
		FieldOfStudy string `json:"fieldofstudy"`
		From         string `json:"from"`
		To           string `json:"to"`
		Current      bool   `json:"current"`
		Description  string `json:"description"`
	}
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, models.NewValidationError("Invalid request body"))
	}

	if req.School == "" {
		return respondError(c, models.NewValidationError("School is required"))
	}
	if req.Degree == "" {
		return respondError(c, models.NewValidationError("Degree is required"))
	}
	if req.FieldOfStudy == "" {
		return respondError(c, models.NewValidationError("Field of study is required"))
	}
	if req.From == "" {
		return respondError(c, models.NewValidationError("From date is required"))
	}
	from, err := parseDate(req.From)
	if err != nil {
		return respondError(c, models.NewValidationError("Invalid from date"))
	}
	to, err := parseOptionalDate(req.To)
	if err != nil {
		return respondError(c, models.NewValidationError("Invalid to date"))
	}

	profile, err := s.loadOwnProfile(c)
	if err != nil {
		return respondError(c, err)
	}

	profile.AddEducation(models.Education{
		School:       req.School,
		Degree:       req.Degree,
		FieldOfStudy: req.FieldOfStudy,
		From:         from,
		To:           to,
		Current:      req.Current,
		Description:  req.Description,
	})

	if err := s.profileRepo.Save(c.Context(), profile); err != nil {
		return respondError(c, err)
	}

	cache.Invalidate(c.Context(), s.redis, profileListCacheKey)

	return c.JSON(profile)
}

// DeleteEducation handles DELETE /api/profile/education/:id
func (s *Server) DeleteEducation(c *fiber.Ctx) error {
	profile, err := s.loadOwnProfile(c)
	if err != nil {
		return respondError(c, err)
	}

	if err := profile.RemoveEducation(c.Params("id")); err != nil {
		return respondError(c, err)
	}

	if err := s.profileRepo.Save(c.Context(), profile); err != nil {
		return respondError(c, err)
	}

	cache.Invalidate(c.Context(), s.redis, profileListCacheKey)

	return c.JSON(profile)
}

// DeleteAccount handles DELETE /api/profile: removes the user's posts,
// profile, and account as one unit.
func (s *Server) DeleteAccount(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)

	if err := s.userRepo.DeleteCascade(ctx, userID); err != nil {
		return respondError(c, err)
	}

	cache.Invalidate(ctx, s.redis, profileListCacheKey)

	return c.SendStatus(fiber.StatusNoContent)
}
