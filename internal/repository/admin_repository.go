package repository

import (
	"context"
	"database/sql"
	"errors"
)

// ErrNoCredential is returned when the admin credential row has not been
// seeded yet.  Logins are impossible in that state.
var ErrNoCredential = errors.New("admin credential not set")

// credentialID is the fixed primary key of the single admin credential row.
// There is exactly one administrative identity for the whole system.
const credentialID = 1

// AdminRepo manages the single-row admin_credential table.
type AdminRepo struct{ db *sql.DB }

// NewAdminRepo constructs an AdminRepo with the given DB handle.
func NewAdminRepo(db *sql.DB) *AdminRepo { return &AdminRepo{db: db} }

// GetHash returns the stored bcrypt hash of the admin password.
func (r *AdminRepo) GetHash(ctx context.Context) (string, error) {
	const q = "SELECT password_hash FROM admin_credential WHERE id = ?"
	var hash string
	err := r.db.QueryRowContext(ctx, q, credentialID).Scan(&hash)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNoCredential
	}
	if err != nil {
		return "", err
	}
	return hash, nil
}

// SetHash replaces the stored hash, inserting the row if necessary.
func (r *AdminRepo) SetHash(ctx context.Context, hash string) error {
	const q = `INSERT INTO admin_credential (id, password_hash) VALUES (?, ?)
	           ON DUPLICATE KEY UPDATE password_hash = VALUES(password_hash)`
	_, err := r.db.ExecContext(ctx, q, credentialID, hash)
	return err
}

// Seed stores the hash only when no credential exists yet.  Used at startup
// so a configured initial password never overwrites a later rotation.
func (r *AdminRepo) Seed(ctx context.Context, hash string) error {
	if _, err := r.GetHash(ctx); err == nil {
		return nil
	} else if !errors.Is(err, ErrNoCredential) {
		return err
	}
	const q = "INSERT INTO admin_credential (id, password_hash) VALUES (?, ?)"
	_, err := r.db.ExecContext(ctx, q, credentialID, hash)
	if isDuplicateKey(err) {
		return nil
	}
	return err
}
