package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/adboard/adboard/internal/model"
)

// AdRepo encapsulates all queries against the `ads` table.
type AdRepo struct{ DB *sql.DB }

func NewAdRepo(db *sql.DB) *AdRepo { return &AdRepo{DB: db} }

// AdFilter narrows and pages the ad listing.  Title is an exact match,
// Search is a substring match over title and description.  Page is
// 1-based; PageSize is clamped by the handler.
type AdFilter struct {
	Title    string
	Search   string
	Page     int
	PageSize int
}

// Create inserts an ad and populates its ID and CreatedAt.  AuthorID and
// OwnerID must already be set from the authenticated actor.
func (r *AdRepo) Create(ctx context.Context, a *model.Ad) error {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO ads (title, price, description, author_id, owner_id, created_at)
		 VALUES (?,?,?,?,?,UTC_TIMESTAMP())`,
		a.Title, a.Price, a.Description, a.AuthorID, a.OwnerID)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	a.ID = uint64(id)
	return r.DB.QueryRowContext(ctx,
		"SELECT created_at FROM ads WHERE id=?", a.ID).Scan(&a.CreatedAt)
}

// GetByID fetches an ad or ErrAdNotFound.
func (r *AdRepo) GetByID(ctx context.Context, id uint64) (*model.Ad, error) {
	var (
		a     model.Ad
		owner sql.NullInt64
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,title,price,description,author_id,owner_id,created_at FROM ads WHERE id=? LIMIT 1", id).
		Scan(&a.ID, &a.Title, &a.Price, &a.Description, &a.AuthorID, &owner, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAdNotFound
		}
		return nil, err
	}
	if owner.Valid {
		v := uint64(owner.Int64)
		a.OwnerID = &v
	}
	return &a, nil
}

// List returns one page of ads, newest first, plus the total row count for
// the applied filter so handlers can report pagination metadata.
func (r *AdRepo) List(ctx context.Context, f AdFilter) ([]*model.Ad, int, error) {
	var (
		conds []string
		args  []any
	)
	if f.Title != "" {
		conds = append(conds, "title=?")
		args = append(args, f.Title)
	}
	if f.Search != "" {
		conds = append(conds, "(title LIKE ? OR description LIKE ?)")
		like := "%" + f.Search + "%"
		args = append(args, like, like)
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM ads"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	offset := (f.Page - 1) * f.PageSize
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,title,price,description,author_id,owner_id,created_at FROM ads"+
			where+" ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?",
		append(args, f.PageSize, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*model.Ad
	for rows.Next() {
		var (
			a     model.Ad
			owner sql.NullInt64
		)
		if err := rows.Scan(&a.ID, &a.Title, &a.Price, &a.Description,
			&a.AuthorID, &owner, &a.CreatedAt); err != nil {
			return nil, 0, err
		}
		if owner.Valid {
			v := uint64(owner.Int64)
			a.OwnerID = &v
		}
		out = append(out, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// Update rewrites the mutable fields of an ad.  Author and owner are
// immutable after creation.
func (r *AdRepo) Update(ctx context.Context, id uint64, title string, price uint64, description string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE ads SET title=?, price=?, description=? WHERE id=?",
		title, price, description, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// Distinguish "gone" from "unchanged": an update writing identical
		// values also affects zero rows, so re-check existence.
		var exists bool
		if err := r.DB.QueryRowContext(ctx,
			"SELECT EXISTS(SELECT 1 FROM ads WHERE id=?)", id).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrAdNotFound
		}
	}
	return nil
}

// Delete removes an ad.  Reviews under it are removed by the FK cascade.
func (r *AdRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM ads WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrAdNotFound
	}
	return nil
}
