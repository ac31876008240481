package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/adboard/adboard/internal/middleware"
	"github.com/adboard/adboard/internal/model"
	"github.com/adboard/adboard/internal/permission"
	"github.com/adboard/adboard/internal/repository"
)

// Listing page defaults mirror the public site: four ads per page, client
// may raise it up to a cap.
const (
	defaultPageSize = 4
	maxPageSize     = 100
)

// AdHandler serves the ad CRUD endpoints.  Reads are public; writes
// require an authenticated actor who passes the row-level permission
// check.
type AdHandler struct {
	Ads *repository.AdRepo
}

func NewAdHandler(ads *repository.AdRepo) *AdHandler { return &AdHandler{Ads: ads} }

type adReq struct {
	Title       string `json:"title"`
	Price       uint64 `json:"price"`
	Description string `json:"description"`
}

func (r *adReq) validate() string {
	r.Title = strings.TrimSpace(r.Title)
	r.Description = strings.TrimSpace(r.Description)
	if r.Title == "" {
		return "title is required"
	}
	if r.Description == "" {
		return "description is required"
	}
	return ""
}

// List handles GET /ads/ with pagination (?page, ?page_size), exact title
// filtering (?title) and substring search (?search).
func (h *AdHandler) List(c echo.Context) error {
	page := 1
	if v, err := strconv.Atoi(c.QueryParam("page")); err == nil && v > 0 {
		page = v
	}
	size := defaultPageSize
	if v, err := strconv.Atoi(c.QueryParam("page_size")); err == nil && v > 0 {
		size = v
	}
	if size > maxPageSize {
		size = maxPageSize
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	ads, total, err := h.Ads.List(ctx, repository.AdFilter{
		Title:    strings.TrimSpace(c.QueryParam("title")),
		Search:   strings.TrimSpace(c.QueryParam("search")),
		Page:     page,
		PageSize: size,
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}

	results := make([]adPart, 0, len(ads))
	for _, a := range ads {
		results = append(results, projectAd(a))
	}
	return c.JSON(http.StatusOK, echo.Map{"count": total, "results": results})
}

// Create handles POST /ads/create/.  The author is always the
// authenticated actor, never a client-supplied value.
func (h *AdHandler) Create(c echo.Context) error {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req adReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	owner := actor.ID
	a := &model.Ad{
		Title:       req.Title,
		Price:       req.Price,
		Description: req.Description,
		AuthorID:    actor.ID,
		OwnerID:     &owner,
	}

	ctx, cancel := dbCtx(c)
	defer cancel()
	if err := h.Ads.Create(ctx, a); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create ad failed"})
	}
	return c.JSON(http.StatusCreated, projectAd(a))
}

// Get handles GET /ads/upd/:id/.
func (h *AdHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	a, err := h.Ads.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrAdNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "ad not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, projectAd(a))
}

// Update handles PUT /ads/upd/:id/.  Write access: owner, author or staff.
func (h *AdHandler) Update(c echo.Context) error {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req adReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	a, err := h.Ads.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrAdNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "ad not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	if !permission.CanWrite(actor, permission.Resource{AuthorID: a.AuthorID, OwnerID: a.OwnerID}) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	if err := h.Ads.Update(ctx, id, req.Title, req.Price, req.Description); err != nil {
		if errors.Is(err, repository.ErrAdNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "ad not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	a.Title, a.Price, a.Description = req.Title, req.Price, req.Description
	return c.JSON(http.StatusOK, projectAd(a))
}

// Delete handles DELETE /ads/upd/:id/.  Reviews under the ad go with it
// via the FK cascade.
func (h *AdHandler) Delete(c echo.Context) error {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	a, err := h.Ads.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrAdNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "ad not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	if !permission.CanWrite(actor, permission.Resource{AuthorID: a.AuthorID, OwnerID: a.OwnerID}) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	if err := h.Ads.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrAdNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "ad not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
