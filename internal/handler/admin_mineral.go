package handler // handler package contains admin mineral handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/jsteinbach/mineral-catalog/internal/repository"
)

// CreateMineral handles POST /v1/minerals.  The catalog number must be
// unique across the whole collection regardless of shelf or showcase.  A
// shelf assignment is optional; when given, the shelf must exist.
func (h *AdminHandler) CreateMineral(c echo.Context) error {
	m, err := mineralFromForm(c, 0)
	if err != nil {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": err.Error()})
	}

	data, filename, hasImage, err := readImageFile(c)
	if err != nil {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": err.Error()})
	}
	if hasImage {
		ref, err := h.Images.Store(data, filename)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not store image"})
		}
		m.ImageRef.String, m.ImageRef.Valid = ref, true
	}

	if err := h.MineralRepo.Create(c.Request().Context(), m); err != nil {
		if m.ImageRef.Valid {
			h.Images.Delete(m.ImageRef.String)
		}
		switch err {
		case repository.ErrDuplicateNumber:
			return c.JSON(http.StatusConflict, echo.Map{"error": "catalog number already exists"})
		case repository.ErrShelfNotFound:
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "shelf does not exist"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create mineral"})
		}
	}

	publishChange("mineral", "created", m.ID, m.Number, m.Name)
	return c.JSON(http.StatusCreated, mineralJSON(m))
}

// UpdateMineral handles PUT /v1/minerals/:id.  Saving an unchanged number
// succeeds because the uniqueness check in the repository excludes the row
// being updated.
func (h *AdminHandler) UpdateMineral(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	existing, err := h.MineralRepo.GetByID(c.Request().Context(), id)
	if err != nil {
		if err == repository.ErrMineralNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "mineral not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}

	m, err := mineralFromForm(c, id)
	if err != nil {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": err.Error()})
	}
	m.ImageRef = existing.ImageRef // keep the current image unless replaced
	m.CreatedAt = existing.CreatedAt

	data, filename, hasImage, err := readImageFile(c)
	if err != nil {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": err.Error()})
	}
	if hasImage {
		ref, err := h.Images.Store(data, filename)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not store image"})
		}
		m.ImageRef.String, m.ImageRef.Valid = ref, true
	}

	if err := h.MineralRepo.Update(c.Request().Context(), m); err != nil {
		if hasImage {
			h.Images.Delete(m.ImageRef.String)
		}
		switch err {
		case repository.ErrDuplicateNumber:
			return c.JSON(http.StatusConflict, echo.Map{"error": "catalog number already exists"})
		case repository.ErrShelfNotFound:
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "shelf does not exist"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
		}
	}

	if hasImage && existing.ImageRef.Valid && existing.ImageRef.String != m.ImageRef.String {
		if !h.Images.Delete(existing.ImageRef.String) {
			c.Logger().Warnf("could not delete superseded image %s", existing.ImageRef.String)
		}
	}

	publishChange("mineral", "updated", m.ID, m.Number, m.Name)
	return c.JSON(http.StatusOK, mineralJSON(m))
}

// DeleteMineral handles DELETE /v1/minerals/:id.  Deleting a mineral never
// touches its container.
func (h *AdminHandler) DeleteMineral(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	existing, err := h.MineralRepo.GetByID(c.Request().Context(), id)
	if err != nil {
		if err == repository.ErrMineralNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "mineral not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}

	if err := h.MineralRepo.Delete(c.Request().Context(), id); err != nil {
		if err == repository.ErrMineralNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "mineral not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}

	if existing.ImageRef.Valid && !h.Images.Delete(existing.ImageRef.String) {
		c.Logger().Warnf("could not delete image %s of removed mineral", existing.ImageRef.String)
	}

	publishChange("mineral", "deleted", id, existing.Number, existing.Name)
	return c.NoContent(http.StatusNoContent)
}

// mineralFromForm builds a Mineral from the posted form fields.  The id is
// zero for creates.  Validation failures are returned as plain errors for a
// 422 response.
func mineralFromForm(c echo.Context, id uint64) (*repository.Mineral, error) {
	name := strings.TrimSpace(c.FormValue("name"))
	number := strings.TrimSpace(c.FormValue("number"))
	if name == "" || number == "" {
		return nil, errMissingNameNumber
	}

	lat, lon, err := parseCoords(c.FormValue("latitude"), c.FormValue("longitude"))
	if err != nil {
		return nil, err
	}

	m := &repository.Mineral{
		ID:               id,
		Number:           number,
		Name:             name,
		Color:            nullStr(c.FormValue("color")),
		Description:      nullStr(c.FormValue("description")),
		Location:         nullStr(c.FormValue("location")),
		Latitude:         lat,
		Longitude:        lon,
		PurchaseLocation: nullStr(c.FormValue("purchase_location")),
		RockType:         nullStr(c.FormValue("rock_type")),
	}

	if raw := strings.TrimSpace(c.FormValue("shelf_id")); raw != "" {
		shelfID, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return nil, errInvalidShelfID
		}
		m.ShelfID = &shelfID
	}
	return m, nil
}

var (
	errMissingNameNumber = errors.New("name and number are required")
	errInvalidShelfID    = errors.New("invalid shelf_id")
)

// mineralJSON shapes a repository row for API responses.
func mineralJSON(m *repository.Mineral) echo.Map {
	return echo.Map{
		"id":                m.ID,
		"number":            m.Number,
		"name":              m.Name,
		"color":             nullable(m.Color),
		"description":       nullable(m.Description),
		"location":          nullable(m.Location),
		"latitude":          nullableFloat(m.Latitude),
		"longitude":         nullableFloat(m.Longitude),
		"purchase_location": nullable(m.PurchaseLocation),
		"rock_type":         nullable(m.RockType),
		"shelf_id":          m.ShelfID,
		"image_ref":         nullable(m.ImageRef),
		"created_at":        m.CreatedAt,
	}
}
