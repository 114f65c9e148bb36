package services

import (
	"testing"

	"github.com/alimgiray/copyrite/internal/models"
	"github.com/alimgiray/copyrite/internal/repositories"
	"github.com/alimgiray/copyrite/pkg/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAliasService(t *testing.T) *AliasService {
	t.Helper()

	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewAliasService(repositories.NewAliasRepository(db))
}

func TestAliasServiceResolveContributions(t *testing.T) {
	service := newTestAliasService(t)

	_, err := service.CreateAlias("project-1", strPtr("Jane Doe"), []string{"jane@x.com", "j@y.com"}, strPtr("jane@x.com"))
	require.NoError(t, err)
	_, err = service.CreateAlias("project-2", strPtr("Other"), []string{"j@y.com"}, nil)
	require.NoError(t, err)

	contributions := []models.Contribution{
		contribution("jdoe", "j@y.com"),
		contribution("bob", "bob@x.com"),
	}

	resolved, err := service.ResolveContributions("project-1", contributions)
	require.NoError(t, err)
	require.Len(t, resolved, 2)
	assert.Equal(t, contribution("Jane Doe", "jane@x.com"), resolved[0])
	assert.Equal(t, contribution("bob", "bob@x.com"), resolved[1])

	resolved, err = service.ResolveContributions("empty-project", contributions)
	require.NoError(t, err)
	assert.Equal(t, contributions, resolved)
}

func TestAliasServiceImportAliases(t *testing.T) {
	service := newTestAliasService(t)

	_, err := service.CreateAlias("project-1", strPtr("Stale"), []string{"x@x.com"}, nil)
	require.NoError(t, err)

	loaded, err := ParseAliases([]byte(sampleAliases))
	require.NoError(t, err)
	require.NoError(t, service.ImportAliases("project-1", loaded))

	aliases, err := service.GetAliasesByProjectID("project-1")
	require.NoError(t, err)
	require.Len(t, aliases, 3)
	assert.Equal(t, "Jane Doe", *aliases[0].Name)
	assert.Equal(t, "project-1", aliases[0].ProjectID)

	resolved, err := service.ResolveContributions("project-1", []models.Contribution{contribution("x", "x@x.com")})
	require.NoError(t, err)
	assert.Equal(t, "x", resolved[0].Author)
}

func TestAliasServiceRejectsAliasWithoutMails(t *testing.T) {
	service := newTestAliasService(t)

	_, err := service.CreateAlias("project-1", strPtr("Ghost"), nil, nil)
	assert.ErrorIs(t, err, ErrAliasWithoutMails)

	alias, err := service.CreateAlias("project-1", nil, []string{"a@x.com"}, nil)
	require.NoError(t, err)

	alias.Mails = nil
	assert.ErrorIs(t, service.UpdateAlias(alias), ErrAliasWithoutMails)

	require.NoError(t, service.DeleteAlias(alias.ID))
	_, err = service.GetAliasByID(alias.ID)
	assert.ErrorIs(t, err, repositories.ErrAliasNotFound)
}

func TestAliasServiceNormalizesMails(t *testing.T) {
	service := newTestAliasService(t)

	_, err := service.CreateAlias("project-1", strPtr("Ghost"), []string{"  ", ""}, nil)
	assert.ErrorIs(t, err, ErrAliasWithoutMails)

	alias, err := service.CreateAlias("project-1", nil, []string{" a@x.com ", " "}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"a@x.com"}, alias.Mails)

	alias.Mails = []string{"\t"}
	assert.ErrorIs(t, service.UpdateAlias(alias), ErrAliasWithoutMails)

	alias.Mails = []string{"a@x.com", " alice@y.com"}
	require.NoError(t, service.UpdateAlias(alias))

	found, err := service.FindAliasByMail("project-1", " alice@y.com ")
	require.NoError(t, err)
	assert.Equal(t, alias.ID, found.ID)
	assert.Equal(t, []string{"a@x.com", "alice@y.com"}, found.Mails)
}

func TestAliasServiceClearAliases(t *testing.T) {
	service := newTestAliasService(t)

	_, err := service.CreateAlias("project-1", nil, []string{"a@x.com"}, nil)
	require.NoError(t, err)
	kept, err := service.CreateAlias("project-2", nil, []string{"a@x.com"}, nil)
	require.NoError(t, err)

	require.NoError(t, service.ClearAliases("project-1"))

	aliases, err := service.GetAliasesByProjectID("project-1")
	require.NoError(t, err)
	assert.Empty(t, aliases)

	_, err = service.FindAliasByMail("project-1", "a@x.com")
	assert.ErrorIs(t, err, repositories.ErrAliasNotFound)

	found, err := service.FindAliasByMail("project-2", "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, kept.ID, found.ID)
}
