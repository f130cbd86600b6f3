package repository // repository holds data access logic for domain entities

import (
	"context"      // context is used to manage deadlines and cancellation
	"database/sql" // sql provides DB primitives
	"errors"       // errors package allows sentinel error definitions
	"time"         // time holds row timestamps
)

// Shelf represents a single shelf inside a showcase.  Shelf codes are only
// unique within their showcase; the label printed on the physical shelf is
// the full code, showcase code and shelf code joined with a dash.
type Shelf struct {
	ID            uint64         // ID is the primary key of the shelf
	ShowcaseID    uint64         // ShowcaseID references the parent showcase
	Code          string         // Code is the shelf label, unique per showcase (e.g. "01")
	Name          string         // Name is a human readable label for the shelf
	Description   sql.NullString // Description is optional text about the shelf
	PositionOrder int32          // PositionOrder controls display ordering, defaults to 0
	ImageRef      sql.NullString // ImageRef points at a stored image file (nullable)
	CreatedAt     time.Time      // CreatedAt stores the creation timestamp
}

// ShelfWithCounts augments a Shelf with its derived full code, the code of
// its parent showcase and the number of minerals currently assigned to it.
type ShelfWithCounts struct {
	Shelf
	ShowcaseCode string // code of the owning showcase
	FullCode     string // showcase code + "-" + shelf code
	MineralCount int64  // number of minerals directly on this shelf
}

// ErrShelfNotFound is returned when a shelf lookup fails.
var ErrShelfNotFound = errors.New("shelf not found")

// ShelfRepo provides methods to create and retrieve shelves.  It embeds a
// database handle to perform queries and commands.
type ShelfRepo struct {
	db *sql.DB // db is the underlying database connection
}

// NewShelfRepo constructs a ShelfRepo with the given DB handle.
func NewShelfRepo(db *sql.DB) *ShelfRepo {
	return &ShelfRepo{db: db}
}

// Create inserts a new shelf into the database.  The parent showcase must
// exist (ErrShowcaseNotFound otherwise) and the (showcase, code) pair must
// be free (ErrDuplicateCode otherwise).  After insert the ID and CreatedAt
// fields of the shelf will be set.
func (r *ShelfRepo) Create(ctx context.Context, s *Shelf) error {
	const qParent = "SELECT EXISTS(SELECT 1 FROM showcases WHERE id = ?)"
	var parentExists bool
	if err := r.db.QueryRowContext(ctx, qParent, s.ShowcaseID).Scan(&parentExists); err != nil {
		return err
	}
	if !parentExists {
		return ErrShowcaseNotFound
	}

	const qDup = "SELECT EXISTS(SELECT 1 FROM shelves WHERE showcase_id = ? AND code = ?)"
	var dup bool
	if err := r.db.QueryRowContext(ctx, qDup, s.ShowcaseID, s.Code).Scan(&dup); err != nil {
		return err
	}
	if dup {
		return ErrDuplicateCode
	}

	const qInsert = `INSERT INTO shelves (showcase_id, code, name, description, position_order, image_ref)
	                 VALUES (?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, qInsert,
		s.ShowcaseID, s.Code, s.Name, s.Description, s.PositionOrder, s.ImageRef)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicateCode
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)

	// Read the row back so created_at carries the DB-assigned value.
	const qSelect = "SELECT created_at FROM shelves WHERE id = ?"
	return r.db.QueryRowContext(ctx, qSelect, s.ID).Scan(&s.CreatedAt)
}

// GetByID retrieves a shelf by its ID.  It returns ErrShelfNotFound when no
// row is found.
func (r *ShelfRepo) GetByID(ctx context.Context, id uint64) (*Shelf, error) {
	const q = `SELECT id, showcase_id, code, name, description, position_order, image_ref, created_at
	           FROM shelves WHERE id = ?`
	var s Shelf
	err := r.db.QueryRowContext(ctx, q, id).
		Scan(&s.ID, &s.ShowcaseID, &s.Code, &s.Name, &s.Description, &s.PositionOrder, &s.ImageRef, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrShelfNotFound
		}
		return nil, err
	}
	return &s, nil
}

// ListByShowcase returns all shelves inside a showcase ordered by their
// position and code, each carrying its full code and current mineral count.
// Useful for GET /v1/showcases/:id/shelves.
func (r *ShelfRepo) ListByShowcase(ctx context.Context, showcaseID uint64) ([]*ShelfWithCounts, error) {
	const q = `SELECT s.id, s.showcase_id, s.code, s.name, s.description, s.position_order,
	                  s.image_ref, s.created_at,
	                  c.code AS showcase_code,
	                  CONCAT(c.code, '-', s.code) AS full_code,
	                  (SELECT COUNT(*) FROM minerals m WHERE m.shelf_id = s.id) AS mineral_count
	           FROM shelves s
	           JOIN showcases c ON c.id = s.showcase_id
	           WHERE s.showcase_id = ?
	           ORDER BY s.position_order, s.code`
	rows, err := r.db.QueryContext(ctx, q, showcaseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*ShelfWithCounts
	for rows.Next() {
		s := new(ShelfWithCounts)
		if err := rows.Scan(&s.ID, &s.ShowcaseID, &s.Code, &s.Name, &s.Description, &s.PositionOrder,
			&s.ImageRef, &s.CreatedAt, &s.ShowcaseCode, &s.FullCode, &s.MineralCount); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Update rewrites the mutable fields of a shelf.  When the shelf is moved to
// a different showcase the new parent must exist, and the (showcase, code)
// uniqueness check always excludes the row being updated so saving with an
// unchanged code succeeds.
func (r *ShelfRepo) Update(ctx context.Context, s *Shelf) error {
	const qParent = "SELECT EXISTS(SELECT 1 FROM showcases WHERE id = ?)"
	var parentExists bool
	if err := r.db.QueryRowContext(ctx, qParent, s.ShowcaseID).Scan(&parentExists); err != nil {
		return err
	}
	if !parentExists {
		return ErrShowcaseNotFound
	}

	const qDup = "SELECT EXISTS(SELECT 1 FROM shelves WHERE showcase_id = ? AND code = ? AND id <> ?)"
	var dup bool
	if err := r.db.QueryRowContext(ctx, qDup, s.ShowcaseID, s.Code, s.ID).Scan(&dup); err != nil {
		return err
	}
	if dup {
		return ErrDuplicateCode
	}

	const q = `UPDATE shelves
	           SET showcase_id = ?, code = ?, name = ?, description = ?, position_order = ?, image_ref = ?
	           WHERE id = ?`
	_, err := r.db.ExecContext(ctx, q,
		s.ShowcaseID, s.Code, s.Name, s.Description, s.PositionOrder, s.ImageRef, s.ID)
	if isDuplicateKey(err) {
		return ErrDuplicateCode
	}
	return err
}

// Delete removes a shelf inside a transaction. Minerals referencing the
// shelf are detached first (shelf_id set to NULL) so the reference can never
// dangle; the minerals themselves always survive. ErrShelfNotFound is
// returned when the shelf does not exist.
func (r *ShelfRepo) Delete(ctx context.Context, id uint64) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	var exists bool
	if err = tx.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM shelves WHERE id = ?)", id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return ErrShelfNotFound
	}

	if _, err = tx.ExecContext(ctx,
		`UPDATE minerals SET shelf_id = NULL WHERE shelf_id = ?`, id); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM shelves WHERE id = ?`, id); err != nil {
		return err
	}
	return nil
}
