// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"themehub/internal/identity"
	"themehub/internal/models"
)

// ErrDuplicateContent is returned by Create when another theme already
// claims the same content hash. The uniqueness constraint makes this
// race-safe: two concurrent uploads of identical bytes cannot both commit.
var ErrDuplicateContent = errors.New("theme content already exists")

// publicIDRetries bounds the retry loop on a public id collision. With
// 128-bit random ids a single retry is already astronomically unlikely.
const publicIDRetries = 3

// ThemeStore handles all theme-related database operations.
type ThemeStore struct {
	db *sql.DB
}

// NewThemeStore creates a new ThemeStore with the given database connection.
func NewThemeStore(db *sql.DB) *ThemeStore {
	return &ThemeStore{db: db}
}

// themeColumns lists the columns selected in theme queries.
const themeColumns = `id, public_id, owner_id, name, description, visibility,
	content_key, content_hash, preview_key, created_at`

// scanTheme scans a theme row from the result set.
func scanTheme(scanner interface{ Scan(...any) error }) (*models.Theme, error) {
	var t models.Theme
	err := scanner.Scan(
		&t.ID, &t.PublicID, &t.OwnerID, &t.Name, &t.Description, &t.Visibility,
		&t.ContentKey, &t.ContentHash, &t.PreviewKey, &t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Create inserts a new theme with a freshly generated public id and
// returns it with the generated serial id. Fails with ErrDuplicateContent
// if the content hash is already stored, regardless of owner.
func (s *ThemeStore) Create(t *models.Theme) (*models.Theme, error) {
	for attempt := 0; attempt < publicIDRetries; attempt++ {
		publicID := identity.NewPublicID()
		err := s.db.QueryRow(`
			INSERT INTO themes (public_id, owner_id, name, description,
				visibility, content_key, content_hash, preview_key)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING `+themeColumns,
			publicID, t.OwnerID, t.Name, t.Description,
			t.Visibility, t.ContentKey, t.ContentHash, t.PreviewKey,
		).Scan(
			&t.ID, &t.PublicID, &t.OwnerID, &t.Name, &t.Description, &t.Visibility,
			&t.ContentKey, &t.ContentHash, &t.PreviewKey, &t.CreatedAt,
		)
		if isUniqueViolation(err, "themes_content_hash_key") {
			return nil, ErrDuplicateContent
		}
		if isUniqueViolation(err, "themes_public_id_key") {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("create theme: %w", err)
		}
		return t, nil
	}
	return nil, fmt.Errorf("create theme: exhausted public id retries")
}

// HashExists reports whether any theme, by any owner, already stores
// content with this hash. Used for the early dedup check; Create remains
// the authoritative race-safe barrier.
func (s *ThemeStore) HashExists(contentHash string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(`
		SELECT EXISTS (SELECT 1 FROM themes WHERE content_hash = $1)
	`, contentHash).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("hash exists: %w", err)
	}
	return exists, nil
}

// CountThemesOwnedBy returns the number of themes owned by the user.
func (s *ThemeStore) CountThemesOwnedBy(ownerID string) (int, error) {
	var count int
	err := s.db.QueryRow(`
		SELECT COUNT(*) FROM themes WHERE owner_id = $1
	`, ownerID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count themes: %w", err)
	}
	return count, nil
}

// ListThemesOwnedBy returns the user's themes, most recent first.
func (s *ThemeStore) ListThemesOwnedBy(ownerID string) ([]models.Theme, error) {
	rows, err := s.db.Query(`
		SELECT `+themeColumns+`
		FROM themes
		WHERE owner_id = $1
		ORDER BY created_at DESC, id DESC
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list owned themes: %w", err)
	}
	defer rows.Close()

	var themes []models.Theme
	for rows.Next() {
		t, err := scanTheme(rows)
		if err != nil {
			return nil, fmt.Errorf("scan theme: %w", err)
		}
		themes = append(themes, *t)
	}
	return themes, rows.Err()
}

// GetThemeByID retrieves a theme by its serial id. Returns nil if not found.
func (s *ThemeStore) GetThemeByID(id int64) (*models.Theme, error) {
	row := s.db.QueryRow(`SELECT `+themeColumns+` FROM themes WHERE id = $1`, id)
	t, err := scanTheme(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get theme by id: %w", err)
	}
	return t, nil
}

// GetThemeByPublicID retrieves a theme by its share identifier, regardless
// of visibility — private themes are link-accessible by design. Returns
// nil if not found.
func (s *ThemeStore) GetThemeByPublicID(publicID string) (*models.Theme, error) {
	row := s.db.QueryRow(`SELECT `+themeColumns+` FROM themes WHERE public_id = $1`, publicID)
	t, err := scanTheme(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get theme by public id: %w", err)
	}
	return t, nil
}

// DeleteTheme removes a theme only if the caller owns it. The deleted row
// is returned so the caller can clean up the stored artifact and preview;
// nil means nothing was removed (wrong owner or no such theme).
func (s *ThemeStore) DeleteTheme(id int64, ownerID string) (*models.Theme, error) {
	row := s.db.QueryRow(`
		DELETE FROM themes WHERE id = $1 AND owner_id = $2
		RETURNING `+themeColumns, id, ownerID)
	t, err := scanTheme(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("delete theme: %w", err)
	}
	return t, nil
}

// AdminDeleteTheme removes a theme unconditionally, without an ownership
// check. Returns the deleted row, or nil if no such theme exists.
func (s *ThemeStore) AdminDeleteTheme(id int64) (*models.Theme, error) {
	row := s.db.QueryRow(`
		DELETE FROM themes WHERE id = $1
		RETURNING `+themeColumns, id)
	t, err := scanTheme(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("admin delete theme: %w", err)
	}
	return t, nil
}

// SetVisibility updates a theme's visibility, scoped to the owner.
// Returns whether a row matched; setting the current value again counts
// as a match.
func (s *ThemeStore) SetVisibility(id int64, ownerID string, v models.Visibility) (bool, error) {
	res, err := s.db.Exec(`
		UPDATE themes SET visibility = $1 WHERE id = $2 AND owner_id = $3
	`, v, id, ownerID)
	if err != nil {
		return false, fmt.Errorf("set visibility: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("set visibility rows: %w", err)
	}
	return n > 0, nil
}

// ListPublicThemes returns a page of the public catalog, most recent
// first, joined with each owner's display name.
func (s *ThemeStore) ListPublicThemes(offset, limit int) ([]models.PublicTheme, error) {
	rows, err := s.db.Query(`
		SELECT t.id, t.public_id, t.name, t.description, u.display_name, t.preview_key
		FROM themes t
		JOIN users u ON t.owner_id = u.id
		WHERE t.visibility = 'public'
		ORDER BY t.created_at DESC, t.id DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list public themes: %w", err)
	}
	defer rows.Close()

	var themes []models.PublicTheme
	for rows.Next() {
		var t models.PublicTheme
		if err := rows.Scan(&t.ID, &t.PublicID, &t.Name, &t.Description, &t.OwnerName, &t.PreviewKey); err != nil {
			return nil, fmt.Errorf("scan public theme: %w", err)
		}
		themes = append(themes, t)
	}
	return themes, rows.Err()
}

// CountPublicThemes returns the total number of publicly listed themes.
func (s *ThemeStore) CountPublicThemes() (int, error) {
	var count int
	err := s.db.QueryRow(`
		SELECT COUNT(*) FROM themes WHERE visibility = 'public'
	`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count public themes: %w", err)
	}
	return count, nil
}

// isUniqueViolation reports whether err is a PostgreSQL unique constraint
// violation on the named constraint.
func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == "23505" && pgErr.ConstraintName == constraint
}
