package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/adboard/adboard/internal/model"
)

var adColumns = []string{"id", "title", "price", "description", "author_id", "owner_id", "created_at"}

func TestAdRepoCreate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	owner := uint64(1)
	mock.ExpectExec("INSERT INTO ads").
		WithArgs("Bike", uint64(100), "A fine bike", uint64(1), &owner).
		WillReturnResult(sqlmock.NewResult(5, 1))
	mock.ExpectQuery("SELECT created_at FROM ads").
		WithArgs(uint64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))

	a := &model.Ad{Title: "Bike", Price: 100, Description: "A fine bike", AuthorID: 1, OwnerID: &owner}
	if err := NewAdRepo(db).Create(context.Background(), a); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if a.ID != 5 {
		t.Fatalf("ID = %d, want 5", a.ID)
	}
}

func TestAdRepoListSearch(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM ads WHERE`).
		WithArgs("%bike%", "%bike%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery("SELECT (.+) FROM ads WHERE (.+) ORDER BY created_at DESC").
		WithArgs("%bike%", "%bike%", 4, 0).
		WillReturnRows(sqlmock.NewRows(adColumns).
			AddRow(2, "Bike two", 200, "newer", 1, nil, now).
			AddRow(1, "Bike one", 100, "older", 1, 1, now.Add(-time.Hour)))

	ads, total, err := NewAdRepo(db).List(context.Background(), AdFilter{
		Search: "bike", Page: 1, PageSize: 4,
	})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 2 || len(ads) != 2 {
		t.Fatalf("total=%d len=%d, want 2/2", total, len(ads))
	}
	if ads[0].ID != 2 {
		t.Fatalf("order not preserved: first id = %d", ads[0].ID)
	}
	if ads[0].OwnerID != nil {
		t.Fatalf("expected nil owner for first row")
	}
	if ads[1].OwnerID == nil || *ads[1].OwnerID != 1 {
		t.Fatalf("expected owner 1 for second row")
	}
}

func TestAdRepoListSecondPage(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM ads`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(10))
	mock.ExpectQuery("SELECT (.+) FROM ads ORDER BY created_at DESC").
		WithArgs(4, 4). // page 2 of size 4
		WillReturnRows(sqlmock.NewRows(adColumns))

	_, total, err := NewAdRepo(db).List(context.Background(), AdFilter{Page: 2, PageSize: 4})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 10 {
		t.Fatalf("total = %d, want 10", total)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAdRepoGetByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT (.+) FROM ads WHERE id=").
		WithArgs(uint64(99)).
		WillReturnRows(sqlmock.NewRows(adColumns))

	if _, err := NewAdRepo(db).GetByID(context.Background(), 99); !errors.Is(err, ErrAdNotFound) {
		t.Fatalf("GetByID = %v, want ErrAdNotFound", err)
	}
}

func TestAdRepoDeleteNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("DELETE FROM ads WHERE id=").
		WithArgs(uint64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := NewAdRepo(db).Delete(context.Background(), 99); !errors.Is(err, ErrAdNotFound) {
		t.Fatalf("Delete = %v, want ErrAdNotFound", err)
	}
}
