package repository // repository holds data access logic for domain entities

import (
	"context"      // context is used to manage deadlines and cancellation
	"database/sql" // sql provides DB primitives
	"errors"       // errors package allows sentinel error definitions
	"strings"      // strings provides trimming for catalog numbers
	"time"         // time holds row timestamps
)

// Mineral represents a specimen record.  The Number field is the catalog
// number written on the physical specimen and is unique across the entire
// collection, independent of which shelf the specimen sits on.  A mineral
// may be unassigned, in which case ShelfID is nil.
type Mineral struct {
	ID               uint64          // ID is the primary key of the mineral
	Number           string          // Number is the globally unique catalog number (e.g. "M-100")
	Name             string          // Name is the mineral's display name
	Color            sql.NullString  // Color is the dominant color (nullable)
	Description      sql.NullString  // Description is optional free text
	Location         sql.NullString  // Location is the geological find-site (nullable)
	Latitude         sql.NullFloat64 // Latitude of the find-site; null when unknown
	Longitude        sql.NullFloat64 // Longitude of the find-site; null when unknown
	PurchaseLocation sql.NullString  // PurchaseLocation records where the specimen was bought
	RockType         sql.NullString  // RockType classifies the specimen (nullable)
	ShelfID          *uint64         // ShelfID references the shelf holding the specimen; nil when unassigned
	ImageRef         sql.NullString  // ImageRef points at a stored image file (nullable)
	CreatedAt        time.Time       // CreatedAt stores the creation timestamp
}

// MineralRef is the compact summary returned by the catalog number probe.
// It identifies the record a candidate number would collide with.
type MineralRef struct {
	ID     uint64 `json:"id"`     // id of the conflicting mineral
	Name   string `json:"name"`   // name of the conflicting mineral
	Number string `json:"number"` // its catalog number
}

// ErrMineralNotFound is returned when a mineral lookup fails.
var ErrMineralNotFound = errors.New("mineral not found")

// MineralRepo provides methods to create, retrieve, update and delete
// minerals.  Listing with filters lives in mineral_search.go.
type MineralRepo struct {
	db *sql.DB // db is the underlying database connection
}

// NewMineralRepo constructs a MineralRepo with the given DB handle.
func NewMineralRepo(db *sql.DB) *MineralRepo {
	return &MineralRepo{db: db}
}

// mineralColumns is the column list shared by the single-row queries below.
const mineralColumns = `id, number, name, color, description, location, latitude, longitude,
	purchase_location, rock_type, shelf_id, image_ref, created_at`

// Create inserts a new mineral.  The catalog number is trimmed and checked
// for uniqueness across the whole collection (ErrDuplicateNumber on
// collision).  When a shelf is assigned it must exist (ErrShelfNotFound
// otherwise); a dangling shelf id is rejected rather than stored.  After
// insert the ID and CreatedAt fields will be set.
func (r *MineralRepo) Create(ctx context.Context, m *Mineral) error {
	m.Number = strings.TrimSpace(m.Number)

	const qDup = "SELECT EXISTS(SELECT 1 FROM minerals WHERE number = ?)"
	var dup bool
	if err := r.db.QueryRowContext(ctx, qDup, m.Number).Scan(&dup); err != nil {
		return err
	}
	if dup {
		return ErrDuplicateNumber
	}

	if m.ShelfID != nil {
		const qShelf = "SELECT EXISTS(SELECT 1 FROM shelves WHERE id = ?)"
		var shelfExists bool
		if err := r.db.QueryRowContext(ctx, qShelf, *m.ShelfID).Scan(&shelfExists); err != nil {
			return err
		}
		if !shelfExists {
			return ErrShelfNotFound
		}
	}

	const qInsert = `INSERT INTO minerals
	    (number, name, color, description, location, latitude, longitude, purchase_location, rock_type, shelf_id, image_ref)
	    VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, qInsert,
		m.Number, m.Name, m.Color, m.Description, m.Location, m.Latitude, m.Longitude,
		m.PurchaseLocation, m.RockType, m.ShelfID, m.ImageRef)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicateNumber
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	m.ID = uint64(id)

	const qSelect = "SELECT created_at FROM minerals WHERE id = ?"
	return r.db.QueryRowContext(ctx, qSelect, m.ID).Scan(&m.CreatedAt)
}

// GetByID fetches a mineral by its ID.  It returns ErrMineralNotFound when
// no row is found.
func (r *MineralRepo) GetByID(ctx context.Context, id uint64) (*Mineral, error) {
	const q = "SELECT " + mineralColumns + " FROM minerals WHERE id = ?"
	var m Mineral
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&m.ID, &m.Number, &m.Name, &m.Color, &m.Description, &m.Location,
		&m.Latitude, &m.Longitude, &m.PurchaseLocation, &m.RockType,
		&m.ShelfID, &m.ImageRef, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMineralNotFound
		}
		return nil, err
	}
	return &m, nil
}

// Update rewrites the mutable fields of a mineral.  The number uniqueness
// check excludes the row being updated itself, so saving a mineral with an
// unchanged number succeeds.  A shelf assignment is validated the same way
// as in Create.
func (r *MineralRepo) Update(ctx context.Context, m *Mineral) error {
	m.Number = strings.TrimSpace(m.Number)

	const qDup = "SELECT EXISTS(SELECT 1 FROM minerals WHERE number = ? AND id <> ?)"
	var dup bool
	if err := r.db.QueryRowContext(ctx, qDup, m.Number, m.ID).Scan(&dup); err != nil {
		return err
	}
	if dup {
		return ErrDuplicateNumber
	}

	if m.ShelfID != nil {
		const qShelf = "SELECT EXISTS(SELECT 1 FROM shelves WHERE id = ?)"
		var shelfExists bool
		if err := r.db.QueryRowContext(ctx, qShelf, *m.ShelfID).Scan(&shelfExists); err != nil {
			return err
		}
		if !shelfExists {
			return ErrShelfNotFound
		}
	}

	const q = `UPDATE minerals
	           SET number = ?, name = ?, color = ?, description = ?, location = ?,
	               latitude = ?, longitude = ?, purchase_location = ?, rock_type = ?,
	               shelf_id = ?, image_ref = ?
	           WHERE id = ?`
	_, err := r.db.ExecContext(ctx, q,
		m.Number, m.Name, m.Color, m.Description, m.Location, m.Latitude, m.Longitude,
		m.PurchaseLocation, m.RockType, m.ShelfID, m.ImageRef, m.ID)
	if isDuplicateKey(err) {
		return ErrDuplicateNumber
	}
	return err
}

// Delete removes a mineral row.  Deleting a mineral never touches its
// container.  ErrMineralNotFound is returned when no row was affected.
func (r *MineralRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM minerals WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrMineralNotFound
	}
	return nil
}

// FindByNumber looks up the mineral carrying the given catalog number
// (trimmed, exact match) and returns a compact summary, or nil when the
// number is free.  This backs the live validation probe; the authoritative
// check remains the unique key enforced during Create/Update.
func (r *MineralRepo) FindByNumber(ctx context.Context, number string) (*MineralRef, error) {
	number = strings.TrimSpace(number)
	const q = "SELECT id, name, number FROM minerals WHERE number = ? LIMIT 1"
	var ref MineralRef
	err := r.db.QueryRowContext(ctx, q, number).Scan(&ref.ID, &ref.Name, &ref.Number)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ref, nil
}
