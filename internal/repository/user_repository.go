package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/adboard/adboard/internal/model"
)

const duplicateEntry = 1062 // MySQL error number for unique constraint violations

// UserRepo encapsulates all queries against the `users` table.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id,email,password_hash,first_name,last_name,phone,role,avatar,is_active,is_staff,is_superuser,last_login,date_joined"

// Create inserts a user and populates its ID and DateJoined.  The caller is
// responsible for hashing the password; this layer never sees plaintext.
// Duplicate emails surface as ErrEmailExists.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO users (email, password_hash, first_name, last_name, phone, role, avatar, is_active, is_staff, is_superuser, date_joined)
		 VALUES (?,?,?,?,?,?,?,?,?,?,UTC_TIMESTAMP())`,
		u.Email, u.PasswordHash, u.FirstName, u.LastName,
		nullString(u.Phone), u.Role, nullString(u.Avatar),
		u.IsActive, u.IsStaff, u.IsSuperuser)
	if err != nil {
		var me *mysql.MySQLError
		if errors.As(err, &me) && me.Number == duplicateEntry {
			return ErrEmailExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	u.ID = uint64(id)
	return r.DB.QueryRowContext(ctx,
		"SELECT date_joined FROM users WHERE id=?", u.ID).Scan(&u.DateJoined)
}

// GetByEmail fetches a user by normalized email.  Returns ErrUserNotFound
// when no row matches.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.getWhere(ctx, "email=?", email)
}

// GetByID fetches a user by primary key.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (*model.User, error) {
	return r.getWhere(ctx, "id=?", id)
}

func (r *UserRepo) getWhere(ctx context.Context, where string, arg any) (*model.User, error) {
	var (
		u         model.User
		phone     sql.NullString
		avatar    sql.NullString
		lastLogin sql.NullTime
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE "+where+" LIMIT 1", arg).
		Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName,
			&phone, &u.Role, &avatar, &u.IsActive, &u.IsStaff, &u.IsSuperuser,
			&lastLogin, &u.DateJoined)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	u.Phone = phone.String
	u.Avatar = avatar.String
	if lastLogin.Valid {
		t := lastLogin.Time
		u.LastLogin = &t
	}
	return &u, nil
}

// UpdatePassword persists a new password hash.  The write is committed
// before this method returns, which is what invalidates previously issued
// reset tokens for the user.
func (r *UserRepo) UpdatePassword(ctx context.Context, id uint64, hash string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET password_hash=? WHERE id=?", hash, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrUserNotFound
	}
	return nil
}

// UpdateLastLogin records a successful login timestamp.
func (r *UserRepo) UpdateLastLogin(ctx context.Context, id uint64, at time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET last_login=? WHERE id=?", at.UTC(), id)
	return err
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
