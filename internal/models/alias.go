package models

import (
	"time"

	"github.com/google/uuid"
)

// Alias groups several author mails under one canonical identity
type Alias struct {
	ID                string    `json:"id"`
	ProjectID         string    `json:"project_id"`
	Name              *string   `json:"name"`               // Canonical author name, nil keeps the original
	Mails             []string  `json:"mails"`              // Mails that belong to this identity
	AuthoritativeMail *string   `json:"authoritative_mail"` // Canonical mail, nil keeps the original
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// NewAlias creates a new alias with a generated UUID
func NewAlias(projectID string, name *string, mails []string, authoritativeMail *string) *Alias {
	return &Alias{
		ID:                uuid.New().String(),
		ProjectID:         projectID,
		Name:              name,
		Mails:             mails,
		AuthoritativeMail: authoritativeMail,
		CreatedAt:         time.Now(),
		UpdatedAt:         time.Now(),
	}
}

// HasMail reports whether the mail belongs to this alias
func (a *Alias) HasMail(mail string) bool {
	for _, m := range a.Mails {
		if m == mail {
			return true
		}
	}
	return false
}

// CanonicalName returns the name to apply and whether one is set
func (a *Alias) CanonicalName() (string, bool) {
	if a.Name == nil || *a.Name == "" {
		return "", false
	}
	return *a.Name, true
}

// CanonicalMail returns the authoritative mail and whether one is set
func (a *Alias) CanonicalMail() (string, bool) {
	if a.AuthoritativeMail == nil || *a.AuthoritativeMail == "" {
		return "", false
	}
	return *a.AuthoritativeMail, true
}
