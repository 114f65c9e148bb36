package services

import (
	"fmt"
	"strings"

	"github.com/alimgiray/copyrite/internal/models"
	"github.com/alimgiray/copyrite/internal/repositories"
	"github.com/alimgiray/copyrite/pkg/logger"
	"github.com/sirupsen/logrus"
)

type AliasService struct {
	aliasRepo *repositories.AliasRepository
}

func NewAliasService(aliasRepo *repositories.AliasRepository) *AliasService {
	return &AliasService{
		aliasRepo: aliasRepo,
	}
}

// CreateAlias creates a new alias at the end of the project's alias list
func (s *AliasService) CreateAlias(projectID string, name *string, mails []string, authoritativeMail *string) (*models.Alias, error) {
	mails, err := NormalizeMails(mails)
	if err != nil {
		return nil, err
	}

	alias := models.NewAlias(projectID, name, mails, authoritativeMail)
	if err := s.aliasRepo.Create(alias); err != nil {
		return nil, fmt.Errorf("failed to create alias: %w", err)
	}

	logger.WithFields(logrus.Fields{
		"project_id": projectID,
		"alias_id":   alias.ID,
		"mails":      len(mails),
	}).Info("Alias created")

	return alias, nil
}

// GetAliasByID retrieves an alias by ID
func (s *AliasService) GetAliasByID(id string) (*models.Alias, error) {
	return s.aliasRepo.GetByID(id)
}

// GetAliasesByProjectID retrieves all aliases for a project in resolution order
func (s *AliasService) GetAliasesByProjectID(projectID string) ([]*models.Alias, error) {
	return s.aliasRepo.GetByProjectID(projectID)
}

// FindAliasByMail returns the alias of a project that a contribution with this mail resolves to
func (s *AliasService) FindAliasByMail(projectID, mail string) (*models.Alias, error) {
	return s.aliasRepo.FindByMail(projectID, strings.TrimSpace(mail))
}

// UpdateAlias updates an existing alias
func (s *AliasService) UpdateAlias(alias *models.Alias) error {
	mails, err := NormalizeMails(alias.Mails)
	if err != nil {
		return err
	}
	alias.Mails = mails

	if err := s.aliasRepo.Update(alias); err != nil {
		return err
	}

	logger.WithFields(logrus.Fields{
		"project_id": alias.ProjectID,
		"alias_id":   alias.ID,
	}).Info("Alias updated")

	return nil
}

// ClearAliases removes every alias of a project
func (s *AliasService) ClearAliases(projectID string) error {
	if err := s.aliasRepo.DeleteByProjectID(projectID); err != nil {
		return fmt.Errorf("failed to clear aliases: %w", err)
	}

	logger.WithField("project_id", projectID).Info("Aliases cleared")
	return nil
}

// DeleteAlias deletes an alias by ID
func (s *AliasService) DeleteAlias(id string) error {
	return s.aliasRepo.Delete(id)
}

// ImportAliases replaces the aliases of a project with the given list, keeping its order
func (s *AliasService) ImportAliases(projectID string, aliases []models.Alias) error {
	toStore := make([]*models.Alias, 0, len(aliases))
	for i := range aliases {
		alias := aliases[i]
		toStore = append(toStore, models.NewAlias(projectID, alias.Name, alias.Mails, alias.AuthoritativeMail))
	}

	if err := s.aliasRepo.ReplaceForProject(projectID, toStore); err != nil {
		return fmt.Errorf("failed to import aliases: %w", err)
	}

	logOverlaps(projectID, aliases)
	logger.WithFields(logrus.Fields{
		"project_id": projectID,
		"aliases":    len(aliases),
	}).Info("Aliases imported")

	return nil
}

// ResolveContributions applies the project's aliases to the contributions
func (s *AliasService) ResolveContributions(projectID string, contributions []models.Contribution) ([]models.Contribution, error) {
	stored, err := s.aliasRepo.GetByProjectID(projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to load aliases: %w", err)
	}

	aliases := make([]models.Alias, len(stored))
	for i, alias := range stored {
		aliases[i] = *alias
	}

	logger.WithFields(logrus.Fields{
		"project_id":    projectID,
		"aliases":       len(aliases),
		"contributions": len(contributions),
	}).Debug("Resolving contributions")

	return ApplyAliases(contributions, aliases), nil
}

// logOverlaps warns about mails claimed by several aliases; the first alias wins for those
func logOverlaps(projectID string, aliases []models.Alias) {
	for _, mail := range OverlappingMails(aliases) {
		logger.WithFields(logrus.Fields{
			"project_id": projectID,
			"mail":       mail,
		}).Warn("Mail belongs to more than one alias")
	}
}
