package handler // handler package contains admin shelf handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/jsteinbach/mineral-catalog/internal/repository"
)

// CreateShelf handles POST /v1/shelves.  A shelf always belongs to exactly
// one showcase; the shelf code only needs to be unique inside that showcase.
// position_order is optional and defaults to 0.
func (h *AdminHandler) CreateShelf(c echo.Context) error {
	name := strings.TrimSpace(c.FormValue("name"))
	code := strings.TrimSpace(c.FormValue("code"))
	if name == "" || code == "" {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "name and code are required"})
	}
	showcaseID, err := strconv.ParseUint(strings.TrimSpace(c.FormValue("showcase_id")), 10, 64)
	if err != nil {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "showcase_id is required"})
	}
	position, err := parsePosition(c.FormValue("position_order"))
	if err != nil {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "invalid position_order"})
	}

	s := &repository.Shelf{
		ShowcaseID:    showcaseID,
		Code:          code,
		Name:          name,
		Description:   nullStr(c.FormValue("description")),
		PositionOrder: position,
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
		s.ImageRef.String, s.ImageRef.Valid = ref, true
	}

	if err := h.ShelfRepo.Create(c.Request().Context(), s); err != nil {
		if s.ImageRef.Valid {
			h.Images.Delete(s.ImageRef.String)
		}
		switch err {
		case repository.ErrShowcaseNotFound:
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "showcase does not exist"})
		case repository.ErrDuplicateCode:
			return c.JSON(http.StatusConflict, echo.Map{"error": "shelf code already exists in this showcase"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create shelf"})
		}
	}

	publishChange("shelf", "created", s.ID, s.Code, s.Name)
	return c.JSON(http.StatusCreated, shelfJSON(s))
}

// UpdateShelf handles PUT /v1/shelves/:id and rewrites all mutable fields,
// including moving the shelf to another showcase.
func (h *AdminHandler) UpdateShelf(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	existing, err := h.ShelfRepo.GetByID(c.Request().Context(), id)
	if err != nil {
		if err == repository.ErrShelfNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "shelf not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}

	name := strings.TrimSpace(c.FormValue("name"))
	code := strings.TrimSpace(c.FormValue("code"))
	if name == "" || code == "" {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "name and code are required"})
	}
	showcaseID, err := strconv.ParseUint(strings.TrimSpace(c.FormValue("showcase_id")), 10, 64)
	if err != nil {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "showcase_id is required"})
	}
	position, err := parsePosition(c.FormValue("position_order"))
	if err != nil {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "invalid position_order"})
	}

	s := &repository.Shelf{
		ID:            id,
		ShowcaseID:    showcaseID,
		Code:          code,
		Name:          name,
		Description:   nullStr(c.FormValue("description")),
		PositionOrder: position,
		ImageRef:      existing.ImageRef,
		CreatedAt:     existing.CreatedAt,
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
		s.ImageRef.String, s.ImageRef.Valid = ref, true
	}

	if err := h.ShelfRepo.Update(c.Request().Context(), s); err != nil {
		if hasImage {
			h.Images.Delete(s.ImageRef.String)
		}
		switch err {
		case repository.ErrShowcaseNotFound:
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "showcase does not exist"})
		case repository.ErrDuplicateCode:
			return c.JSON(http.StatusConflict, echo.Map{"error": "shelf code already exists in this showcase"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
		}
	}

	if hasImage && existing.ImageRef.Valid && existing.ImageRef.String != s.ImageRef.String {
		if !h.Images.Delete(existing.ImageRef.String) {
			c.Logger().Warnf("could not delete superseded image %s", existing.ImageRef.String)
		}
	}

	publishChange("shelf", "updated", s.ID, s.Code, s.Name)
	return c.JSON(http.StatusOK, shelfJSON(s))
}

// DeleteShelf handles DELETE /v1/shelves/:id.  Minerals on the shelf are
// detached, never deleted.  Returns 204 on success and 404 when absent.
func (h *AdminHandler) DeleteShelf(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	// Load first: the image reference is needed for cleanup after the row
	// is gone.
	existing, err := h.ShelfRepo.GetByID(c.Request().Context(), id)
	if err != nil {
		if err == repository.ErrShelfNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "shelf not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}

	if err := h.ShelfRepo.Delete(c.Request().Context(), id); err != nil {
		if err == repository.ErrShelfNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "shelf not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}

	if existing.ImageRef.Valid && !h.Images.Delete(existing.ImageRef.String) {
		c.Logger().Warnf("could not delete image %s of removed shelf", existing.ImageRef.String)
	}

	publishChange("shelf", "deleted", id, existing.Code, existing.Name)
	return c.NoContent(http.StatusNoContent)
}

// parsePosition parses the optional position_order form value; absence means 0.
func parsePosition(raw string) (int32, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		return 0, err
	}
	return int32(n), nil
}

// shelfJSON shapes a repository row for API responses.
func shelfJSON(s *repository.Shelf) echo.Map {
	return echo.Map{
		"id":             s.ID,
		"showcase_id":    s.ShowcaseID,
		"code":           s.Code,
		"name":           s.Name,
		"description":    nullable(s.Description),
		"position_order": s.PositionOrder,
		"image_ref":      nullable(s.ImageRef),
		"created_at":     s.CreatedAt,
	}
}
