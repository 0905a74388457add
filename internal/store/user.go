// Package store provides database access methods for the theme service's
// entities. Each store struct wraps a *sql.DB and exposes typed query methods.
package store

import (
	"database/sql"
	"fmt"

	"themehub/internal/models"
)

// UserStore handles all user-related database operations.
type UserStore struct {
	db *sql.DB
}

// NewUserStore creates a new UserStore with the given database connection.
func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

// UpsertUser creates the user on first interaction. If the row already
// exists nothing is touched — in particular an existing quota or ban state
// is never reset. Safe to call on every inbound request.
func (s *UserStore) UpsertUser(id, displayName string) error {
	_, err := s.db.Exec(`
		INSERT INTO users (id, display_name)
		VALUES ($1, $2)
		ON CONFLICT (id) DO NOTHING
	`, id, displayName)
	if err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}
	return nil
}

// GetUser retrieves a user by their account id. Returns nil if not found.
func (s *UserStore) GetUser(id string) (*models.User, error) {
	u := &models.User{}
	err := s.db.QueryRow(`
		SELECT id, display_name, theme_slots, is_banned, created_at
		FROM users WHERE id = $1
	`, id).Scan(&u.ID, &u.DisplayName, &u.ThemeSlots, &u.IsBanned, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// SetBanStatus bans or unbans a user.
func (s *UserStore) SetBanStatus(id string, banned bool) error {
	_, err := s.db.Exec(`UPDATE users SET is_banned = $1 WHERE id = $2`, banned, id)
	if err != nil {
		return fmt.Errorf("set ban status: %w", err)
	}
	return nil
}

// IsBanned reports whether the user is banned. Unknown users are not banned.
func (s *UserStore) IsBanned(id string) (bool, error) {
	var banned bool
	err := s.db.QueryRow(`SELECT is_banned FROM users WHERE id = $1`, id).Scan(&banned)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("is banned: %w", err)
	}
	return banned, nil
}

// GrantSlots adds count theme slots to the user's quota. Additive, no
// upper bound — invoked by the billing collaborator on confirmed payment.
func (s *UserStore) GrantSlots(id string, count int) error {
	_, err := s.db.Exec(`
		UPDATE users SET theme_slots = theme_slots + $1 WHERE id = $2
	`, count, id)
	if err != nil {
		return fmt.Errorf("grant slots: %w", err)
	}
	return nil
}
