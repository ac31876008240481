package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/adboard/adboard/internal/model"
)

// ReviewRepo encapsulates all queries against the `reviews` table.
type ReviewRepo struct{ DB *sql.DB }

func NewReviewRepo(db *sql.DB) *ReviewRepo { return &ReviewRepo{DB: db} }

const reviewColumns = "id,text,author_id,ad_id,owner_id,created_at"

// Create inserts a review and populates its ID and CreatedAt.
func (r *ReviewRepo) Create(ctx context.Context, rv *model.Review) error {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO reviews (text, author_id, ad_id, owner_id, created_at)
		 VALUES (?,?,?,?,UTC_TIMESTAMP())`,
		rv.Text, rv.AuthorID, rv.AdID, rv.OwnerID)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rv.ID = uint64(id)
	return r.DB.QueryRowContext(ctx,
		"SELECT created_at FROM reviews WHERE id=?", rv.ID).Scan(&rv.CreatedAt)
}

// GetByID fetches a review or ErrReviewNotFound.
func (r *ReviewRepo) GetByID(ctx context.Context, id uint64) (*model.Review, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+reviewColumns+" FROM reviews WHERE id=? LIMIT 1", id)
	rv, err := scanReview(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReviewNotFound
		}
		return nil, err
	}
	return rv, nil
}

// List returns reviews, optionally restricted to a single ad, oldest first.
func (r *ReviewRepo) List(ctx context.Context, adID *uint64) ([]*model.Review, error) {
	q := "SELECT " + reviewColumns + " FROM reviews"
	var args []any
	if adID != nil {
		q += " WHERE ad_id=?"
		args = append(args, *adID)
	}
	q += " ORDER BY id"
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Review
	for rows.Next() {
		rv, err := scanReview(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateText replaces the review body.
func (r *ReviewRepo) UpdateText(ctx context.Context, id uint64, text string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE reviews SET text=? WHERE id=?", text, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var exists bool
		if err := r.DB.QueryRowContext(ctx,
			"SELECT EXISTS(SELECT 1 FROM reviews WHERE id=?)", id).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrReviewNotFound
		}
	}
	return nil
}

// Delete removes a review.
func (r *ReviewRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM reviews WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrReviewNotFound
	}
	return nil
}

func scanReview(scan func(...any) error) (*model.Review, error) {
	var (
		rv    model.Review
		owner sql.NullInt64
	)
	if err := scan(&rv.ID, &rv.Text, &rv.AuthorID, &rv.AdID, &owner, &rv.CreatedAt); err != nil {
		return nil, err
	}
	if owner.Valid {
		v := uint64(owner.Int64)
		rv.OwnerID = &v
	}
	return &rv, nil
}
