package handler // handler defines http handlers

import (
	"context"       // context carries deadlines for the audit publisher
	"database/sql"  // sql.Null types for optional columns
	"errors"        // errors defines the fixed validation error values
	"io"            // io reads the uploaded file body
	"strconv"       // strconv converts form strings to numeric types
	"strings"       // strings provides trimming helpers
	"time"          // time stamps audit events

	"github.com/labstack/echo/v4" // echo defines request context types

	"github.com/jsteinbach/mineral-catalog/internal/queue"             // queue defines audit event payloads
	"github.com/jsteinbach/mineral-catalog/internal/repository"        // repository holds data access layer
	queue_publisher "github.com/jsteinbach/mineral-catalog/internal/service" // publisher for audit events
	"github.com/jsteinbach/mineral-catalog/internal/storage"           // storage persists uploaded images
)

// maxImageBytes caps uploaded image size at 10 MiB.
const maxImageBytes = 10 << 20

// AdminHandler bundles the repositories and the image store used by the
// admin-gated CRUD endpoints.  Every route using these handlers sits behind
// the AdminAuth middleware, so authorization has already happened by the
// time any method here runs.
type AdminHandler struct {
	ShowcaseRepo *repository.ShowcaseRepo // showcase persistence
	ShelfRepo    *repository.ShelfRepo    // shelf persistence
	MineralRepo  *repository.MineralRepo  // mineral persistence
	Images       *storage.ImageStore      // image blob storage
}

// NewAdminHandler constructs a new AdminHandler and panics if any dependency is nil
func NewAdminHandler(showcaseRepo *repository.ShowcaseRepo, shelfRepo *repository.ShelfRepo, mineralRepo *repository.MineralRepo, images *storage.ImageStore) *AdminHandler {
	if showcaseRepo == nil || shelfRepo == nil || mineralRepo == nil || images == nil {
		panic("nil dependency passed to NewAdminHandler")
	}
	return &AdminHandler{
		ShowcaseRepo: showcaseRepo,
		ShelfRepo:    shelfRepo,
		MineralRepo:  mineralRepo,
		Images:       images,
	}
}

// readImageFile extracts the optional "image" upload from a multipart form.
// A request without an image (or without a multipart body at all) is not an
// error; ok is simply false.  Read failures of a present file are reported.
func readImageFile(c echo.Context) (data []byte, name string, ok bool, err error) {
	fh, err := c.FormFile("image")
	if err != nil {
		// Covers http.ErrMissingFile, non-multipart bodies and echo's own
		// wrapping of both: a request without an image part is not an error.
		return nil, "", false, nil
	}
	if fh.Size > maxImageBytes {
		return nil, "", false, errImageTooLarge
	}
	f, err := fh.Open()
	if err != nil {
		return nil, "", false, err
	}
	defer f.Close()
	data, err = io.ReadAll(io.LimitReader(f, maxImageBytes+1))
	if err != nil {
		return nil, "", false, err
	}
	if len(data) > maxImageBytes {
		return nil, "", false, errImageTooLarge
	}
	return data, fh.Filename, true, nil
}

// errImageTooLarge rejects uploads above maxImageBytes.
var errImageTooLarge = errors.New("image too large")

// nullStr converts a trimmed form value into a sql.NullString, mapping the
// empty string to NULL.
func nullStr(s string) sql.NullString {
	s = strings.TrimSpace(s)
	return sql.NullString{String: s, Valid: s != ""}
}

// parseCoords parses the optional latitude/longitude form fields.  Both must
// be present or both absent; "no location" is stored as NULL/NULL, never as
// 0,0.  A lone or malformed value yields an error for a 422 response.
func parseCoords(latStr, lonStr string) (lat, lon sql.NullFloat64, err error) {
	latStr = strings.TrimSpace(latStr)
	lonStr = strings.TrimSpace(lonStr)
	if latStr == "" && lonStr == "" {
		return sql.NullFloat64{}, sql.NullFloat64{}, nil
	}
	if latStr == "" || lonStr == "" {
		return lat, lon, errors.New("latitude and longitude must be provided together")
	}
	latVal, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return lat, lon, errors.New("invalid latitude")
	}
	lonVal, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return lat, lon, errors.New("invalid longitude")
	}
	if latVal < -90 || latVal > 90 || lonVal < -180 || lonVal > 180 {
		return lat, lon, errors.New("coordinates out of range")
	}
	return sql.NullFloat64{Float64: latVal, Valid: true}, sql.NullFloat64{Float64: lonVal, Valid: true}, nil
}

// nullable flattens a sql.NullString into a *string for JSON responses.
func nullable(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	return &v.String
}

// nullableFloat flattens a sql.NullFloat64 into a *float64 for JSON responses.
func nullableFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	return &v.Float64
}

// publishChange emits an audit event for a successful mutation.  Publishing
// is best effort: the mutation already committed, so a broker failure is
// logged inside the publisher and otherwise ignored.
func publishChange(entity, action string, id uint64, code, name string) {
	ev := queue.CatalogChangedEvent{
		Entity:     entity,
		Action:     action,
		EntityID:   id,
		Code:       code,
		Name:       name,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = queue_publisher.PublishCatalogChanged(ctx, ev)
}
