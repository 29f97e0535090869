package models

import (
	"time"

	"github.com/google/uuid"
)

// Experience is an entry in a profile's work history. Entries live inside
// the profile row as a JSON column; their IDs are assigned at insertion.
type Experience struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Company     string     `json:"company"`
	Location    string     `json:"location,omitempty"`
	From        time.Time  `json:"from"`
	To          *time.Time `json:"to,omitempty"`
	Current     bool       `json:"current"`
	Description string     `json:"description,omitempty"`
}

// Education is an entry in a profile's education history.
type Education struct {
	ID           string     `json:"id"`
	School       string     `json:"school"`
	Degree       string     `json:"degree"`
	FieldOfStudy string     `json:"fieldofstudy"`
	From         time.Time  `json:"from"`
	To           *time.Time `json:"to,omitempty"`
	Current      bool       `json:"current"`
	Description  string     `json:"description,omitempty"`
}

// Profile holds a user's developer profile. Exactly one profile exists per
// user. Skills, social links and the experience/education histories are
// embedded JSON columns, so every mutation rewrites the whole row.
type Profile struct {
	ID             uint              `gorm:"primaryKey" json:"id"`
	UserID         uint              `gorm:"uniqueIndex;not null" json:"user_id"`
	User           User              `gorm:"foreignKey:UserID" json:"user"`
	Status         string            `gorm:"not null" json:"status"`
	Skills         []string          `gorm:"serializer:json" json:"skills"`
	Company        string            `json:"company,omitempty"`
	Website        string            `json:"website,omitempty"`
	Location       string            `json:"location,omitempty"`
	Bio            string            `json:"bio,omitempty"`
	GithubUsername string            `json:"githubusername,omitempty"`
	Social         map[string]string `gorm:"serializer:json" json:"social,omitempty"`
	Experience     []Experience      `gorm:"serializer:json" json:"experience"`
	Education      []Education       `gorm:"serializer:json" json:"education"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

// AddExperience assigns a fresh ID and prepends the entry, keeping the
// history most-recent-first.
func (p *Profile) AddExperience(exp Experience) Experience {
	exp.ID = uuid.NewString()
	p.Experience = append([]Experience{exp}, p.Experience...)
	return exp
}

// RemoveExperience removes exactly one entry by ID. Removing an ID that is
// not present fails, so a repeated removal of the same entry errors.
func (p *Profile) RemoveExperience(id string) error {
	for i, exp := range p.Experience {
		if exp.ID == id {
			p.Experience = append(p.Experience[:i], p.Experience[i+1:]...)
			return nil
		}
	}
	return NewNotFoundError("Experience entry does not exist")
}

// AddEducation assigns a fresh ID and prepends the entry.
func (p *Profile) AddEducation(edu Education) Education {
	edu.ID = uuid.NewString()
	p.Education = append([]Education{edu}, p.Education...)
	return edu
}

// RemoveEducation removes exactly one entry by ID.
func (p *Profile) RemoveEducation(id string) error {
	for i, edu := range p.Education {
		if edu.ID == id {
			p.Education = append(p.Education[:i], p.Education[i+1:]...)
			return nil
		}
	}
	return NewNotFoundError("Education entry does not exist")
}
