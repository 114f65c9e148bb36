package services

import "github.com/alimgiray/copyrite/internal/models"

// FindAlias returns the first alias whose mails contain the contribution's mail.
// Overlapping mail sets are not checked, list order decides.
func FindAlias(aliases []models.Alias, contribution models.Contribution) *models.Alias {
	for i := range aliases {
		if aliases[i].HasMail(contribution.Mail) {
			return &aliases[i]
		}
	}
	return nil
}

// ApplyAlias rewrites the contribution's author and mail according to the alias.
// A nil alias leaves the contribution as it is.
func ApplyAlias(contribution models.Contribution, alias *models.Alias) models.Contribution {
	if alias == nil {
		return contribution
	}

	author := contribution.Author
	if name, ok := alias.CanonicalName(); ok {
		author = name
	}

	mail := contribution.Mail
	if canonical, ok := alias.CanonicalMail(); ok {
		mail = canonical
	}

	return contribution.WithIdentity(author, mail)
}

// ApplyAliases resolves every contribution against the aliases.
// The result has the same length and order as the input, duplicates included.
func ApplyAliases(contributions []models.Contribution, aliases []models.Alias) []models.Contribution {
	resolved := make([]models.Contribution, len(contributions))
	for i, contribution := range contributions {
		resolved[i] = ApplyAlias(contribution, FindAlias(aliases, contribution))
	}
	return resolved
}
