package handler

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/adboard/adboard/internal/model"
)

// dbCtx bounds repository calls so a stuck database cannot hold request
// goroutines forever.
func dbCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), 5*time.Second)
}

// userPart is the public projection of a user.  The password hash never
// appears in any response shape.
type userPart struct {
	ID        uint64 `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone,omitempty"`
	Role      string `json:"role"`
	Avatar    string `json:"avatar,omitempty"`
}

func projectUser(u *model.User) userPart {
	return userPart{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Phone:     u.Phone,
		Role:      u.Role,
		Avatar:    u.Avatar,
	}
}

// adPart mirrors the ad row for responses; author and owner are exposed as
// bare user ids.
type adPart struct {
	ID          uint64    `json:"id"`
	Title       string    `json:"title"`
	Price       uint64    `json:"price"`
	Description string    `json:"description"`
	Author      uint64    `json:"author"`
	Owner       *uint64   `json:"owner"`
	CreatedAt   time.Time `json:"created_at"`
}

func projectAd(a *model.Ad) adPart {
	return adPart{
		ID:          a.ID,
		Title:       a.Title,
		Price:       a.Price,
		Description: a.Description,
		Author:      a.AuthorID,
		Owner:       a.OwnerID,
		CreatedAt:   a.CreatedAt,
	}
}

type reviewPart struct {
	ID        uint64    `json:"id"`
	Text      string    `json:"text"`
	Author    uint64    `json:"author"`
	Ad        uint64    `json:"ad"`
	Owner     *uint64   `json:"owner"`
	CreatedAt time.Time `json:"created_at"`
}

func projectReview(r *model.Review) reviewPart {
	return reviewPart{
		ID:        r.ID,
		Text:      r.Text,
		Author:    r.AuthorID,
		Ad:        r.AdID,
		Owner:     r.OwnerID,
		CreatedAt: r.CreatedAt,
	}
}
