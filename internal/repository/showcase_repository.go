// Package repository contains data access logic separated from HTTP handlers.
// This file defines the Showcase model and repository methods for CRUD and
// lookup operations. A Showcase is the top level display container of the
// collection and can hold multiple shelves.
package repository

import (
	"context"      // context allows passing deadlines and cancellation signals to DB operations
	"database/sql" // sql provides generic database operations and drivers
	"errors"       // errors is used to define custom error values
	"time"         // time holds row timestamps
)

// Showcase represents a showcase entity persisted in the database. The Code
// field is the human assigned identifier printed on the physical case and is
// unique across all showcases. The ID field is the primary key and is
// auto-incremented by the DB.
type Showcase struct {
	ID          uint64         // ID is the unique identifier of the showcase
	Code        string         // Code is the unique human-assigned label (e.g. "V1")
	Name        string         // Name is the human-friendly name of the showcase
	Location    sql.NullString // Location describes where the showcase stands (nullable)
	Description sql.NullString // Description is optional text about the showcase (nullable)
	ImageRef    sql.NullString // ImageRef points at a stored image file (nullable)
	CreatedAt   time.Time      // CreatedAt stores when the row was created
}

// ShowcaseWithCounts augments a Showcase with aggregate numbers for listing
// views: how many shelves it holds and how many minerals sit on those
// shelves. The counts are computed per query so they never go stale.
type ShowcaseWithCounts struct {
	Showcase
	ShelfCount   int64 // number of shelves directly inside this showcase
	MineralCount int64 // number of minerals on any shelf of this showcase
}

// ErrShowcaseNotFound is returned when a showcase cannot be found in the DB.
var ErrShowcaseNotFound = errors.New("showcase not found")

// ShowcaseRepo encapsulates all database queries related to showcases.  It
// depends on a sql.DB connection which should be configured elsewhere.
type ShowcaseRepo struct {
	db *sql.DB // db is the underlying database connection pool
}

// NewShowcaseRepo constructs a ShowcaseRepo with the provided DB handle.
// This function allows dependency injection of the database in tests and at
// startup.  There is no initialization logic beyond assigning the field.
func NewShowcaseRepo(db *sql.DB) *ShowcaseRepo {
	return &ShowcaseRepo{db: db}
}

// Create inserts a new showcase into the database.  On success the
// showcase's ID field will be populated with the auto‑generated value.
// After the insert, a SELECT is executed to populate the CreatedAt field so
// that callers receive a fully populated record.  A code collision yields
// ErrDuplicateCode, either from the explicit pre-check or from the unique
// key when two creates race.
func (r *ShowcaseRepo) Create(ctx context.Context, s *Showcase) error {
	const qExists = "SELECT EXISTS(SELECT 1 FROM showcases WHERE code = ?)"
	var exists bool
	if err := r.db.QueryRowContext(ctx, qExists, s.Code).Scan(&exists); err != nil {
		return err
	}
	if exists {
		return ErrDuplicateCode
	}

	const qInsert = `INSERT INTO showcases (code, name, location, description, image_ref)
	                 VALUES (?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, qInsert, s.Code, s.Name, s.Location, s.Description, s.ImageRef)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicateCode
		}
		return err // propagate DB errors to the caller
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)

	// Perform a follow‑up SELECT to populate the default created_at value.
	const qSelect = "SELECT created_at FROM showcases WHERE id = ?"
	return r.db.QueryRowContext(ctx, qSelect, s.ID).Scan(&s.CreatedAt)
}

// GetByID fetches a showcase by its ID.  It returns ErrShowcaseNotFound if
// no row is found.
func (r *ShowcaseRepo) GetByID(ctx context.Context, id uint64) (*Showcase, error) {
	const q = `SELECT id, code, name, location, description, image_ref, created_at
	           FROM showcases WHERE id = ?`
	var s Showcase
	if err := r.db.QueryRowContext(ctx, q, id).
		Scan(&s.ID, &s.Code, &s.Name, &s.Location, &s.Description, &s.ImageRef, &s.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrShowcaseNotFound
		}
		return nil, err
	}
	return &s, nil
}

// List returns all showcases ordered by code, each carrying its shelf count
// and the transitive mineral count.  The counts come from correlated
// subqueries so membership changes are reflected immediately.
func (r *ShowcaseRepo) List(ctx context.Context) ([]*ShowcaseWithCounts, error) {
	const q = `SELECT c.id, c.code, c.name, c.location, c.description, c.image_ref, c.created_at,
	                  (SELECT COUNT(*) FROM shelves s WHERE s.showcase_id = c.id) AS shelf_count,
	                  (SELECT COUNT(*) FROM minerals m
	                     JOIN shelves s ON s.id = m.shelf_id
	                    WHERE s.showcase_id = c.id) AS mineral_count
	           FROM showcases c
	           ORDER BY c.code`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*ShowcaseWithCounts
	for rows.Next() {
		c := new(ShowcaseWithCounts)
		if err := rows.Scan(&c.ID, &c.Code, &c.Name, &c.Location, &c.Description, &c.ImageRef,
			&c.CreatedAt, &c.ShelfCount, &c.MineralCount); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Update rewrites the mutable fields of a showcase.  The uniqueness check on
// the code excludes the row being updated itself, so saving a showcase with
// an unchanged code succeeds.  Callers are expected to have loaded the row
// via GetByID first, which also gives them the previous image reference for
// cleanup.
func (r *ShowcaseRepo) Update(ctx context.Context, s *Showcase) error {
	const qExists = "SELECT EXISTS(SELECT 1 FROM showcases WHERE code = ? AND id <> ?)"
	var exists bool
	if err := r.db.QueryRowContext(ctx, qExists, s.Code, s.ID).Scan(&exists); err != nil {
		return err
	}
	if exists {
		return ErrDuplicateCode
	}

	const q = `UPDATE showcases
	           SET code = ?, name = ?, location = ?, description = ?, image_ref = ?
	           WHERE id = ?`
	_, err := r.db.ExecContext(ctx, q, s.Code, s.Name, s.Location, s.Description, s.ImageRef, s.ID)
	if isDuplicateKey(err) {
		return ErrDuplicateCode
	}
	return err
}

// Delete removes a showcase together with all of its shelves inside a single
// transaction. Minerals assigned to those shelves are detached (shelf_id set
// to NULL) and never deleted. The order inside the transaction matters:
// minerals are detached before the shelves disappear so a reader can never
// observe a mineral pointing at a deleted shelf. The image references of the
// showcase and its shelves are collected before deletion and returned so the
// caller can remove the files best effort.
func (r *ShowcaseRepo) Delete(ctx context.Context, id uint64) (imageRefs []string, err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	// Verify the showcase exists and remember its image for cleanup.
	var caseImage sql.NullString
	if err = tx.QueryRowContext(ctx, `SELECT image_ref FROM showcases WHERE id = ?`, id).Scan(&caseImage); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = ErrShowcaseNotFound
		}
		return nil, err
	}
	if caseImage.Valid {
		imageRefs = append(imageRefs, caseImage.String)
	}

	// Collect shelf images before the shelves are removed.
	rows, err := tx.QueryContext(ctx,
		`SELECT image_ref FROM shelves WHERE showcase_id = ? AND image_ref IS NOT NULL`, id)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var ref string
		if err = rows.Scan(&ref); err != nil {
			rows.Close()
			return nil, err
		}
		imageRefs = append(imageRefs, ref)
	}
	rows.Close()
	if err = rows.Err(); err != nil {
		return nil, err
	}

	// Detach minerals from every shelf under this showcase.
	if _, err = tx.ExecContext(ctx,
		`UPDATE minerals m
		   JOIN shelves s ON s.id = m.shelf_id
		    SET m.shelf_id = NULL
		  WHERE s.showcase_id = ?`, id); err != nil {
		return nil, err
	}
	// Delete the shelves of this showcase.
	if _, err = tx.ExecContext(ctx, `DELETE FROM shelves WHERE showcase_id = ?`, id); err != nil {
		return nil, err
	}
	// Finally delete the showcase itself.
	if _, err = tx.ExecContext(ctx, `DELETE FROM showcases WHERE id = ?`, id); err != nil {
		return nil, err
	}
	return imageRefs, nil
}
