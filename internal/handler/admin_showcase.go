package handler // handler package contains admin showcase handlers

import (
	"net/http" // http provides status code constants
	"strconv"  // strconv parses string identifiers to numeric types
	"strings"  // strings offers trimming utilities

	"github.com/labstack/echo/v4" // echo is the web framework used for handlers

	"github.com/jsteinbach/mineral-catalog/internal/repository" // repository holds database models
)

// CreateShowcase handles POST /v1/showcases and creates a new showcase.
// The body is a form (optionally multipart with an "image" part).  The image
// is persisted before the row is written; if the row write fails the stored
// file is removed again so no orphan remains.
func (h *AdminHandler) CreateShowcase(c echo.Context) error {
	name := strings.TrimSpace(c.FormValue("name"))
	code := strings.TrimSpace(c.FormValue("code"))
	if name == "" || code == "" {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "name and code are required"})
	}

	sc := &repository.Showcase{
		Code:        code,
		Name:        name,
		Location:    nullStr(c.FormValue("location")),
		Description: nullStr(c.FormValue("description")),
	}

	// Persist the image first: a row must never reference a file that was
	// never stored.
	data, filename, hasImage, err := readImageFile(c)
	if err != nil {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": err.Error()})
	}
	if hasImage {
		ref, err := h.Images.Store(data, filename)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not store image"})
		}
		sc.ImageRef.String, sc.ImageRef.Valid = ref, true
	}

	if err := h.ShowcaseRepo.Create(c.Request().Context(), sc); err != nil {
		if sc.ImageRef.Valid {
			h.Images.Delete(sc.ImageRef.String) // compensate: row write failed
		}
		if err == repository.ErrDuplicateCode {
			return c.JSON(http.StatusConflict, echo.Map{"error": "showcase code already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create showcase"})
	}

	publishChange("showcase", "created", sc.ID, sc.Code, sc.Name)
	return c.JSON(http.StatusCreated, showcaseJSON(sc))
}

// UpdateShowcase handles PUT /v1/showcases/:id.  All mutable fields are
// rewritten from the form.  When a replacement image is supplied the old
// file is deleted after the row update succeeds; a failed file deletion is
// logged and never fails the request.
func (h *AdminHandler) UpdateShowcase(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	existing, err := h.ShowcaseRepo.GetByID(c.Request().Context(), id)
	if err != nil {
		if err == repository.ErrShowcaseNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "showcase not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}

	name := strings.TrimSpace(c.FormValue("name"))
	code := strings.TrimSpace(c.FormValue("code"))
	if name == "" || code == "" {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "name and code are required"})
	}

	sc := &repository.Showcase{
		ID:          id,
		Code:        code,
		Name:        name,
		Location:    nullStr(c.FormValue("location")),
		Description: nullStr(c.FormValue("description")),
		ImageRef:    existing.ImageRef, // keep the current image unless replaced
		CreatedAt:   existing.CreatedAt,
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
		sc.ImageRef.String, sc.ImageRef.Valid = ref, true
	}

	if err := h.ShowcaseRepo.Update(c.Request().Context(), sc); err != nil {
		if hasImage {
			h.Images.Delete(sc.ImageRef.String) // compensate: row write failed
		}
		if err == repository.ErrDuplicateCode {
			return c.JSON(http.StatusConflict, echo.Map{"error": "showcase code already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}

	// The row now points at the new image; removing the superseded file is
	// best effort.
	if hasImage && existing.ImageRef.Valid && existing.ImageRef.String != sc.ImageRef.String {
		if !h.Images.Delete(existing.ImageRef.String) {
			c.Logger().Warnf("could not delete superseded image %s", existing.ImageRef.String)
		}
	}

	publishChange("showcase", "updated", sc.ID, sc.Code, sc.Name)
	return c.JSON(http.StatusOK, showcaseJSON(sc))
}

// DeleteShowcase handles DELETE /v1/showcases/:id. The repository removes
// the showcase and its shelves in one transaction, detaching all minerals
// that sat on those shelves; the handler then deletes the now-orphaned image
// files best effort. A successful deletion returns 204 No Content.
func (h *AdminHandler) DeleteShowcase(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	refs, err := h.ShowcaseRepo.Delete(c.Request().Context(), id)
	if err != nil {
		if err == repository.ErrShowcaseNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "showcase not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	for _, ref := range refs {
		if !h.Images.Delete(ref) {
			c.Logger().Warnf("could not delete image %s of removed showcase", ref)
		}
	}
	publishChange("showcase", "deleted", id, "", "")
	return c.NoContent(http.StatusNoContent)
}

// showcaseJSON shapes a repository row for API responses, flattening the
// sql.Null wrappers into nullable JSON fields.
func showcaseJSON(s *repository.Showcase) echo.Map {
	return echo.Map{
		"id":          s.ID,
		"code":        s.Code,
		"name":        s.Name,
		"location":    nullable(s.Location),
		"description": nullable(s.Description),
		"image_ref":   nullable(s.ImageRef),
		"created_at":  s.CreatedAt,
	}
}
