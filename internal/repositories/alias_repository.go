package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/alimgiray/copyrite/internal/models"
)

// ErrAliasNotFound is returned when no alias matches the lookup
var ErrAliasNotFound = errors.New("alias not found")

type AliasRepository struct {
	db *sql.DB
}

func NewAliasRepository(db *sql.DB) *AliasRepository {
	return &AliasRepository{db: db}
}

// Create appends a new alias after the existing aliases of its project
func (r *AliasRepository) Create(alias *models.Alias) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := createAlias(tx, alias); err != nil {
		return err
	}

	return tx.Commit()
}

// ReplaceForProject removes all aliases of a project and stores the given ones in order
func (r *AliasRepository) ReplaceForProject(projectID string, aliases []*models.Alias) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM aliases WHERE project_id = ?`, projectID); err != nil {
		return err
	}

	for _, alias := range aliases {
		alias.ProjectID = projectID
		if err := createAlias(tx, alias); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func createAlias(tx *sql.Tx, alias *models.Alias) error {
	var position int
	err := tx.QueryRow(
		`SELECT COALESCE(MAX(position), 0) + 1 FROM aliases WHERE project_id = ?`,
		alias.ProjectID,
	).Scan(&position)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO aliases (id, project_id, position, name, authoritative_mail, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err = tx.Exec(query,
		alias.ID, alias.ProjectID, position, alias.Name, alias.AuthoritativeMail,
		alias.CreatedAt, alias.UpdatedAt,
	)
	if err != nil {
		return err
	}

	return insertMails(tx, alias)
}

func insertMails(tx *sql.Tx, alias *models.Alias) error {
	for i, mail := range alias.Mails {
		_, err := tx.Exec(
			`INSERT OR IGNORE INTO alias_mails (alias_id, mail, position) VALUES (?, ?, ?)`,
			alias.ID, mail, i,
		)
		if err != nil {
			return fmt.Errorf("failed to store mail %q: %w", mail, err)
		}
	}
	return nil
}

// GetByID retrieves an alias by ID
func (r *AliasRepository) GetByID(id string) (*models.Alias, error) {
	query := `
		SELECT id, project_id, name, authoritative_mail, created_at, updated_at
		FROM aliases WHERE id = ?
	`

	alias, err := scanAlias(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, ErrAliasNotFound
	}
	if err != nil {
		return nil, err
	}

	if alias.Mails, err = r.getMails(alias.ID); err != nil {
		return nil, err
	}

	return alias, nil
}

// GetByProjectID retrieves all aliases of a project in resolution order
func (r *AliasRepository) GetByProjectID(projectID string) ([]*models.Alias, error) {
	query := `
		SELECT id, project_id, name, authoritative_mail, created_at, updated_at
		FROM aliases WHERE project_id = ?
		ORDER BY position ASC
	`

	rows, err := r.db.Query(query, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var aliases []*models.Alias
	for rows.Next() {
		alias, err := scanAlias(rows)
		if err != nil {
			return nil, err
		}
		aliases = append(aliases, alias)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, alias := range aliases {
		if alias.Mails, err = r.getMails(alias.ID); err != nil {
			return nil, err
		}
	}

	return aliases, nil
}

// FindByMail returns the first alias of a project whose mails contain mail
func (r *AliasRepository) FindByMail(projectID, mail string) (*models.Alias, error) {
	query := `
		SELECT a.id FROM aliases a
		JOIN alias_mails m ON m.alias_id = a.id
		WHERE a.project_id = ? AND m.mail = ?
		ORDER BY a.position ASC
		LIMIT 1
	`

	var id string
	err := r.db.QueryRow(query, projectID, mail).Scan(&id)
	if err == sql.ErrNoRows {
		return nil, ErrAliasNotFound
	}
	if err != nil {
		return nil, err
	}

	return r.GetByID(id)
}

// Update updates an existing alias and replaces its mails
func (r *AliasRepository) Update(alias *models.Alias) error {
	alias.UpdatedAt = time.Now()

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		UPDATE aliases SET
			name = ?, authoritative_mail = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := tx.Exec(query, alias.Name, alias.AuthoritativeMail, alias.UpdatedAt, alias.ID)
	if err != nil {
		return err
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return ErrAliasNotFound
	}

	if _, err := tx.Exec(`DELETE FROM alias_mails WHERE alias_id = ?`, alias.ID); err != nil {
		return err
	}
	if err := insertMails(tx, alias); err != nil {
		return err
	}

	return tx.Commit()
}

// Delete deletes an alias by ID
func (r *AliasRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM aliases WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return ErrAliasNotFound
	}
	return nil
}

// DeleteByProjectID deletes all aliases of a project
func (r *AliasRepository) DeleteByProjectID(projectID string) error {
	_, err := r.db.Exec(`DELETE FROM aliases WHERE project_id = ?`, projectID)
	return err
}

func (r *AliasRepository) getMails(aliasID string) ([]string, error) {
	rows, err := r.db.Query(
		`SELECT mail FROM alias_mails WHERE alias_id = ? ORDER BY position ASC`,
		aliasID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	mails := []string{}
	for rows.Next() {
		var mail string
		if err := rows.Scan(&mail); err != nil {
			return nil, err
		}
		mails = append(mails, mail)
	}

	return mails, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAlias(row rowScanner) (*models.Alias, error) {
	alias := &models.Alias{}
	var name, authoritativeMail sql.NullString

	err := row.Scan(
		&alias.ID, &alias.ProjectID, &name, &authoritativeMail,
		&alias.CreatedAt, &alias.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if name.Valid {
		alias.Name = &name.String
	}
	if authoritativeMail.Valid {
		alias.AuthoritativeMail = &authoritativeMail.String
	}

	return alias, nil
}
