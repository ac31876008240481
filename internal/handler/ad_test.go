package handler_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/adboard/adboard/internal/utils"
)

var adTestColumns = []string{"id", "title", "price", "description", "author_id", "owner_id", "created_at"}

func accessFor(t *testing.T, userID uint64, staff bool) string {
	t.Helper()
	role := "user"
	if staff {
		role = "admin"
	}
	tok, err := utils.NewAccessToken(testSecret, userID, role, staff, 15)
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}
	return tok
}

func TestAdList(t *testing.T) {
	v := newEnv(t)
	v.mock.ExpectQuery(`SELECT COUNT\(\*\) FROM ads`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	v.mock.ExpectQuery("SELECT (.+) FROM ads ORDER BY created_at DESC").
		WithArgs(4, 0).
		WillReturnRows(sqlmock.NewRows(adTestColumns).
			AddRow(1, "Bike", 100, "A fine bike", 2, 2, time.Now()))

	rec := v.do(http.MethodGet, "/ads/", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["count"] != float64(1) {
		t.Fatalf("count = %v", body["count"])
	}
	results, _ := body["results"].([]any)
	if len(results) != 1 {
		t.Fatalf("results = %v", body["results"])
	}
}

func TestAdCreate(t *testing.T) {
	v := newEnv(t)
	v.mock.ExpectExec("INSERT INTO ads").
		WithArgs("Bike", sqlmock.AnyArg(), "A fine bike", uint64(9), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(3, 1))
	v.mock.ExpectQuery("SELECT created_at FROM ads").
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))

	rec := v.do(http.MethodPost, "/ads/create/",
		`{"title":"Bike","price":100,"description":"A fine bike"}`, accessFor(t, 9, false))
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["author"] != float64(9) {
		t.Fatalf("author must be the actor, got %v", body["author"])
	}
	if body["owner"] != float64(9) {
		t.Fatalf("owner must default to the actor, got %v", body["owner"])
	}
}

func TestAdCreateRequiresAuth(t *testing.T) {
	v := newEnv(t)
	rec := v.do(http.MethodPost, "/ads/create/",
		`{"title":"Bike","price":100,"description":"A fine bike"}`, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestAdGetNotFound(t *testing.T) {
	v := newEnv(t)
	v.mock.ExpectQuery("SELECT (.+) FROM ads WHERE id=").
		WillReturnRows(sqlmock.NewRows(adTestColumns))

	rec := v.do(http.MethodGet, "/ads/upd/99/", "", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if decodeBody(t, rec)["error"] != "ad not found" {
		t.Fatalf("body = %s", rec.Body.String())
	}
}

func TestAdUpdateForbiddenForStranger(t *testing.T) {
	v := newEnv(t)
	v.mock.ExpectQuery("SELECT (.+) FROM ads WHERE id=").
		WillReturnRows(sqlmock.NewRows(adTestColumns).
			AddRow(1, "Bike", 100, "A fine bike", 2, 2, time.Now()))

	rec := v.do(http.MethodPut, "/ads/upd/1/",
		`{"title":"Stolen","price":1,"description":"mine now"}`, accessFor(t, 9, false))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
	if err := v.mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("forbidden update must not touch the row: %v", err)
	}
}

func TestAdUpdateByAuthor(t *testing.T) {
	v := newEnv(t)
	v.mock.ExpectQuery("SELECT (.+) FROM ads WHERE id=").
		WillReturnRows(sqlmock.NewRows(adTestColumns).
			AddRow(1, "Bike", 100, "A fine bike", 9, 9, time.Now()))
	v.mock.ExpectExec("UPDATE ads SET").
		WithArgs("Bike v2", sqlmock.AnyArg(), "Even finer", uint64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	rec := v.do(http.MethodPut, "/ads/upd/1/",
		`{"title":"Bike v2","price":150,"description":"Even finer"}`, accessFor(t, 9, false))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if decodeBody(t, rec)["title"] != "Bike v2" {
		t.Fatalf("body = %s", rec.Body.String())
	}
}

func TestAdDeleteByStaff(t *testing.T) {
	v := newEnv(t)
	v.mock.ExpectQuery("SELECT (.+) FROM ads WHERE id=").
		WillReturnRows(sqlmock.NewRows(adTestColumns).
			AddRow(1, "Bike", 100, "A fine bike", 2, 2, time.Now()))
	v.mock.ExpectExec("DELETE FROM ads WHERE id=").
		WillReturnResult(sqlmock.NewResult(0, 1))

	// Staff may delete rows they neither own nor authored.
	rec := v.do(http.MethodDelete, "/ads/upd/1/", "", accessFor(t, 99, true))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
}

func TestReviewCreateMissingAd(t *testing.T) {
	v := newEnv(t)
	v.mock.ExpectQuery("SELECT (.+) FROM ads WHERE id=").
		WillReturnRows(sqlmock.NewRows(adTestColumns))

	rec := v.do(http.MethodPost, "/ads/reviews/",
		`{"text":"great","ad":42}`, accessFor(t, 9, false))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if decodeBody(t, rec)["error"] != "ad not found" {
		t.Fatalf("body = %s", rec.Body.String())
	}
}

func TestReviewCreate(t *testing.T) {
	v := newEnv(t)
	v.mock.ExpectQuery("SELECT (.+) FROM ads WHERE id=").
		WillReturnRows(sqlmock.NewRows(adTestColumns).
			AddRow(42, "Bike", 100, "A fine bike", 2, 2, time.Now()))
	v.mock.ExpectExec("INSERT INTO reviews").
		WillReturnResult(sqlmock.NewResult(5, 1))
	v.mock.ExpectQuery("SELECT created_at FROM reviews").
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))

	rec := v.do(http.MethodPost, "/ads/reviews/",
		`{"text":"great","ad":42}`, accessFor(t, 9, false))
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["author"] != float64(9) || body["ad"] != float64(42) {
		t.Fatalf("body = %s", rec.Body.String())
	}
}
