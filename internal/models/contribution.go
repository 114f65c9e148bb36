package models

import "time"

// Contribution represents a single authored change taken from a history
type Contribution struct {
	Author   string    `json:"author"`
	Mail     string    `json:"mail"`
	Date     time.Time `json:"date"`
	Revision string    `json:"revision"`
	Message  string    `json:"message"`
}

// NewContribution creates a new Contribution
func NewContribution(author, mail string, date time.Time, revision, message string) Contribution {
	return Contribution{
		Author:   author,
		Mail:     mail,
		Date:     date,
		Revision: revision,
		Message:  message,
	}
}

// WithIdentity returns a copy of the contribution carrying the given author and mail
func (c Contribution) WithIdentity(author, mail string) Contribution {
	c.Author = author
	c.Mail = mail
	return c
}
