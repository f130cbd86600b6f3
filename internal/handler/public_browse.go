// Package handler also exposes the public, read-only browse endpoints.
// These serve sanitized catalog data to unauthenticated visitors: the
// showcase overview with live counts, shelf listings with their full codes,
// the filterable mineral list, the filter dropdown options, the homepage
// statistics and the catalog number probe used for live form validation.
package handler

import (
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/jsteinbach/mineral-catalog/internal/repository"
	"github.com/jsteinbach/mineral-catalog/internal/storage"
)

// PublicHandler bundles the read-only dependencies of the browse endpoints.
type PublicHandler struct {
	ShowcaseRepo *repository.ShowcaseRepo
	ShelfRepo    *repository.ShelfRepo
	MineralRepo  *repository.MineralRepo
	Images       *storage.ImageStore
}

func NewPublicHandler(showcaseRepo *repository.ShowcaseRepo, shelfRepo *repository.ShelfRepo, mineralRepo *repository.MineralRepo, images *storage.ImageStore) *PublicHandler {
	if showcaseRepo == nil || shelfRepo == nil || mineralRepo == nil || images == nil {
		panic("nil dependency passed to NewPublicHandler")
	}
	return &PublicHandler{ShowcaseRepo: showcaseRepo, ShelfRepo: shelfRepo, MineralRepo: mineralRepo, Images: images}
}

// ListShowcases handles GET /v1/showcases.  Every row carries its shelf
// count and the transitive mineral count, computed fresh per request.
func (h *PublicHandler) ListShowcases(c echo.Context) error {
	items, err := h.ShowcaseRepo.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	out := make([]echo.Map, 0, len(items))
	for _, sc := range items {
		row := showcaseJSON(&sc.Showcase)
		row["shelf_count"] = sc.ShelfCount
		row["mineral_count"] = sc.MineralCount
		out = append(out, row)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// GetShowcase handles GET /v1/showcases/:id.
func (h *PublicHandler) GetShowcase(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	sc, err := h.ShowcaseRepo.GetByID(c.Request().Context(), id)
	if err != nil {
		if err == repository.ErrShowcaseNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "showcase not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, showcaseJSON(sc))
}

// ListShelvesByShowcase handles GET /v1/showcases/:id/shelves.  Shelves come
// back in display order with their full codes and mineral counts.
func (h *PublicHandler) ListShelvesByShowcase(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	// Resolve the showcase first so an unknown id yields 404 instead of an
	// empty list.
	if _, err := h.ShowcaseRepo.GetByID(c.Request().Context(), id); err != nil {
		if err == repository.ErrShowcaseNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "showcase not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	items, err := h.ShelfRepo.ListByShowcase(c.Request().Context(), id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	out := make([]echo.Map, 0, len(items))
	for _, s := range items {
		row := shelfJSON(&s.Shelf)
		row["showcase_code"] = s.ShowcaseCode
		row["full_code"] = s.FullCode
		row["mineral_count"] = s.MineralCount
		out = append(out, row)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// GetShelf handles GET /v1/shelves/:id.
func (h *PublicHandler) GetShelf(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	s, err := h.ShelfRepo.GetByID(c.Request().Context(), id)
	if err != nil {
		if err == repository.ErrShelfNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "shelf not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, shelfJSON(s))
}

// ListMinerals handles GET /v1/minerals with the optional query parameters
// search, color, location, rock_type and sort.  Filters combine with AND;
// unknown sort keys fall back to name.
func (h *PublicHandler) ListMinerals(c echo.Context) error {
	q := repository.MineralQuery{
		Search:   c.QueryParam("search"),
		Color:    c.QueryParam("color"),
		Location: c.QueryParam("location"),
		RockType: c.QueryParam("rock_type"),
		Sort:     c.QueryParam("sort"),
	}
	items, err := h.MineralRepo.Search(c.Request().Context(), q)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// GetMineral handles GET /v1/minerals/:id.
func (h *PublicHandler) GetMineral(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	m, err := h.MineralRepo.GetByID(c.Request().Context(), id)
	if err != nil {
		if err == repository.ErrMineralNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "mineral not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, mineralJSON(m))
}

// GetFilterOptions handles GET /v1/minerals/filter-options and returns the
// distinct values currently present for color, location and rock type.
// Values disappear from the lists as soon as their last mineral is gone.
func (h *PublicHandler) GetFilterOptions(c echo.Context) error {
	opts, err := h.MineralRepo.FilterOptions(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, opts)
}

// GetStats handles GET /v1/stats: the four homepage numbers plus the most
// recent change timestamp across the whole catalog.
func (h *PublicHandler) GetStats(c echo.Context) error {
	st, err := h.MineralRepo.Stats(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	last, err := h.MineralRepo.LastChange(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"total_minerals":     st.TotalMinerals,
		"distinct_locations": st.DistinctLocations,
		"distinct_colors":    st.DistinctColors,
		"total_shelves":      st.TotalShelves,
		"last_change":        last.UTC().Format(time.RFC3339),
	})
}

// CheckNumber handles GET /v1/minerals/check-number?number=...  It reports
// whether the trimmed candidate number is already taken and by which record.
// The response is advisory; the unique key in the store remains the
// authoritative check at creation time.
func (h *PublicHandler) CheckNumber(c echo.Context) error {
	number := c.QueryParam("number")
	if number == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "number is required"})
	}
	ref, err := h.MineralRepo.FindByNumber(c.Request().Context(), number)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	if ref == nil {
		return c.JSON(http.StatusOK, echo.Map{"exists": false})
	}
	return c.JSON(http.StatusOK, echo.Map{"exists": true, "conflict": ref})
}

// GetImage handles GET /v1/images/:ref and serves a stored image file.  The
// reference is validated against path traversal before it touches the
// filesystem.
func (h *PublicHandler) GetImage(c echo.Context) error {
	path, err := h.Images.Path(c.Param("ref"))
	if err != nil {
		if err == storage.ErrInvalidRef {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid image reference"})
		}
		if os.IsNotExist(err) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "image not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not read image"})
	}
	return c.File(path)
}
