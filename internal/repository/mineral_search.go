package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"
)

// MineralQuery defines the filters and sort key for listing minerals.  All
// filters compose conjunctively; empty fields are ignored.
type MineralQuery struct {
	Search   string // case-insensitive substring over name and number
	Color    string // exact match on color
	Location string // exact match on find-site
	RockType string // exact match on rock type
	Sort     string // name (default) | number | color
}

// MineralListRow is one row of the public mineral listing.  Every mineral is
// left-joined to its shelf and that shelf's showcase so the row carries both
// container codes; all three are null when the specimen is unassigned.
type MineralListRow struct {
	ID           uint64   `json:"id"`
	Number       string   `json:"number"`
	Name         string   `json:"name"`
	Color        *string  `json:"color"`
	Location     *string  `json:"location"`
	RockType     *string  `json:"rock_type"`
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
	ShelfID      *uint64  `json:"shelf_id"`
	ShelfCode    *string  `json:"shelf_code"`
	ShowcaseCode *string  `json:"showcase_code"`
	ImageRef     *string  `json:"image_ref"`
}

// FilterOptions lists the distinct non-empty values currently present in the
// collection, used to populate the filter dropdowns.  Each list is
// alphabetically ordered and reflects only live rows, so deleting the last
// mineral of a color removes that color from the next response.
type FilterOptions struct {
	Colors    []string `json:"colors"`
	Locations []string `json:"locations"`
	RockTypes []string `json:"rock_types"`
}

// CollectionStats carries the four homepage summary numbers.
type CollectionStats struct {
	TotalMinerals     int64 `json:"total_minerals"`
	DistinctLocations int64 `json:"distinct_locations"`
	DistinctColors    int64 `json:"distinct_colors"`
	TotalShelves      int64 `json:"total_shelves"`
}

// sortColumn maps the requested sort key to an ORDER BY column.  Unknown
// keys fall back to the name column; the value is never interpolated from
// user input.
func sortColumn(key string) string {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "number":
		return "m.number"
	case "color":
		return "m.color"
	default:
		return "m.name"
	}
}

// escapeLike escapes the LIKE wildcard characters in a user supplied search
// term so that "50%" matches a literal percent sign.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	s = strings.ReplaceAll(s, "_", `\_`)
	return s
}

// buildMineralFilter turns a MineralQuery into a WHERE condition and its
// bind arguments.  The search term matches name or number as a
// case-insensitive substring; the remaining filters are exact matches.
func buildMineralFilter(q MineralQuery) (string, []any) {
	where := []string{}
	args := []any{}

	if s := strings.TrimSpace(q.Search); s != "" {
		where = append(where, "(LOWER(m.name) LIKE ? OR LOWER(m.number) LIKE ?)")
		pat := "%" + escapeLike(strings.ToLower(s)) + "%"
		args = append(args, pat, pat)
	}
	if q.Color != "" {
		where = append(where, "m.color = ?")
		args = append(args, q.Color)
	}
	if q.Location != "" {
		where = append(where, "m.location = ?")
		args = append(args, q.Location)
	}
	if q.RockType != "" {
		where = append(where, "m.rock_type = ?")
		args = append(args, q.RockType)
	}

	cond := "1=1"
	if len(where) > 0 {
		cond = strings.Join(where, " AND ")
	}
	return cond, args
}

// Search returns the filtered, sorted mineral listing.  Ordering is
// ascending on the selected key only; ties keep whatever order the store
// returns.
func (r *MineralRepo) Search(ctx context.Context, q MineralQuery) ([]MineralListRow, error) {
	cond, args := buildMineralFilter(q)

	dataSQL := `SELECT
			m.id,
			m.number,
			m.name,
			m.color,
			m.location,
			m.rock_type,
			m.latitude,
			m.longitude,
			m.shelf_id,
			s.code AS shelf_code,
			c.code AS showcase_code,
			m.image_ref
		FROM minerals m
		LEFT JOIN shelves s   ON s.id = m.shelf_id
		LEFT JOIN showcases c ON c.id = s.showcase_id
		WHERE ` + cond + `
		ORDER BY ` + sortColumn(q.Sort) + ` ASC`

	rows, err := r.db.QueryContext(ctx, dataSQL, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]MineralListRow, 0, 32)
	for rows.Next() {
		var d MineralListRow
		if err := rows.Scan(
			&d.ID,
			&d.Number,
			&d.Name,
			&d.Color,
			&d.Location,
			&d.RockType,
			&d.Latitude,
			&d.Longitude,
			&d.ShelfID,
			&d.ShelfCode,
			&d.ShowcaseCode,
			&d.ImageRef,
		); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// FilterOptions enumerates the distinct non-empty values for the three
// filterable mineral fields.  Computed fresh on every call.
func (r *MineralRepo) FilterOptions(ctx context.Context) (*FilterOptions, error) {
	opts := &FilterOptions{
		Colors:    []string{},
		Locations: []string{},
		RockTypes: []string{},
	}
	for _, f := range []struct {
		column string
		dest   *[]string
	}{
		{"color", &opts.Colors},
		{"location", &opts.Locations},
		{"rock_type", &opts.RockTypes},
	} {
		q := `SELECT DISTINCT ` + f.column + ` FROM minerals
		      WHERE ` + f.column + ` IS NOT NULL AND ` + f.column + ` <> ''
		      ORDER BY ` + f.column
		rows, err := r.db.QueryContext(ctx, q)
		if err != nil {
			return nil, err
		}
		for rows.Next() {
			var v string
			if err := rows.Scan(&v); err != nil {
				rows.Close()
				return nil, err
			}
			*f.dest = append(*f.dest, v)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return nil, err
		}
	}
	return opts, nil
}

// Stats computes the homepage summary numbers in a single round trip.
func (r *MineralRepo) Stats(ctx context.Context) (*CollectionStats, error) {
	const q = `SELECT
		(SELECT COUNT(*) FROM minerals),
		(SELECT COUNT(DISTINCT location) FROM minerals WHERE location IS NOT NULL AND location <> ''),
		(SELECT COUNT(DISTINCT color) FROM minerals WHERE color IS NOT NULL AND color <> ''),
		(SELECT COUNT(*) FROM shelves)`
	var st CollectionStats
	if err := r.db.QueryRowContext(ctx, q).
		Scan(&st.TotalMinerals, &st.DistinctLocations, &st.DistinctColors, &st.TotalShelves); err != nil {
		return nil, err
	}
	return &st, nil
}

// LastChange returns the most recent creation timestamp across showcases,
// shelves and minerals.  An entirely empty catalog yields the current time.
func (r *MineralRepo) LastChange(ctx context.Context) (time.Time, error) {
	const q = `SELECT MAX(ts) FROM (
			SELECT MAX(created_at) AS ts FROM showcases
			UNION ALL SELECT MAX(created_at) FROM shelves
			UNION ALL SELECT MAX(created_at) FROM minerals
		) AS latest`
	var ts sql.NullTime
	if err := r.db.QueryRowContext(ctx, q).Scan(&ts); err != nil {
		return time.Time{}, err
	}
	if !ts.Valid {
		return time.Now().UTC(), nil
	}
	return ts.Time, nil
}
