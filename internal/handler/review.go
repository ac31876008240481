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

// ReviewHandler serves review CRUD under /ads/reviews/.  It needs the ad
// repository to reject reviews pointing at ads that do not exist.
type ReviewHandler struct {
	Reviews *repository.ReviewRepo
	Ads     *repository.AdRepo
}

func NewReviewHandler(reviews *repository.ReviewRepo, ads *repository.AdRepo) *ReviewHandler {
	return &ReviewHandler{Reviews: reviews, Ads: ads}
}

type reviewCreateReq struct {
	Text string `json:"text"`
	Ad   uint64 `json:"ad"`
}

type reviewUpdateReq struct {
	Text string `json:"text"`
}

// List handles GET /ads/reviews/ with an optional ?ad= filter.
func (h *ReviewHandler) List(c echo.Context) error {
	var adID *uint64
	if s := c.QueryParam("ad"); s != "" {
		v, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ad filter"})
		}
		adID = &v
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	reviews, err := h.Reviews.List(ctx, adID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	out := make([]reviewPart, 0, len(reviews))
	for _, rv := range reviews {
		out = append(out, projectReview(rv))
	}
	return c.JSON(http.StatusOK, out)
}

// Create handles POST /ads/reviews/.  The ad must exist; the author is the
// authenticated actor.
func (h *ReviewHandler) Create(c echo.Context) error {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req reviewCreateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Text = strings.TrimSpace(req.Text)
	if req.Text == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "text is required"})
	}
	if req.Ad == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "ad is required"})
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	if _, err := h.Ads.GetByID(ctx, req.Ad); err != nil {
		if errors.Is(err, repository.ErrAdNotFound) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "ad not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}

	owner := actor.ID
	rv := &model.Review{
		Text:     req.Text,
		AuthorID: actor.ID,
		AdID:     req.Ad,
		OwnerID:  &owner,
	}
	if err := h.Reviews.Create(ctx, rv); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create review failed"})
	}
	return c.JSON(http.StatusCreated, projectReview(rv))
}

// Get handles GET /ads/reviews/:id/.
func (h *ReviewHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	rv, err := h.Reviews.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrReviewNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "review not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, projectReview(rv))
}

// Update handles PUT /ads/reviews/:id/.  For reviews the author relation
// is the one that matters, but owner and staff pass the same composed
// check.
func (h *ReviewHandler) Update(c echo.Context) error {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req reviewUpdateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Text = strings.TrimSpace(req.Text)
	if req.Text == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "text is required"})
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	rv, err := h.Reviews.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrReviewNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "review not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	if !permission.CanWrite(actor, permission.Resource{AuthorID: rv.AuthorID, OwnerID: rv.OwnerID}) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	if err := h.Reviews.UpdateText(ctx, id, req.Text); err != nil {
		if errors.Is(err, repository.ErrReviewNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "review not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	rv.Text = req.Text
	return c.JSON(http.StatusOK, projectReview(rv))
}

// Delete handles DELETE /ads/reviews/:id/.
func (h *ReviewHandler) Delete(c echo.Context) error {
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

	rv, err := h.Reviews.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrReviewNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "review not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	if !permission.CanWrite(actor, permission.Resource{AuthorID: rv.AuthorID, OwnerID: rv.OwnerID}) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	if err := h.Reviews.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrReviewNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "review not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
