package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/pagecast/pagecast/internal/models"
)

const pageUpsertPattern = `INSERT INTO pages.*ON CONFLICT \(user_id, page_id\).*access_token = EXCLUDED\.access_token.*RETURNING id`

func TestPageUpsertRefreshesTokenOnReselect(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	repo := NewPageRepository(db)

	page := &models.Page{
		UserID:       42,
		ConnectionID: 7,
		PageID:       "page-1",
		PageName:     "First Page",
		AccessToken:  "enc-a",
	}

	mock.ExpectQuery(pageUpsertPattern).
		WithArgs(int64(42), int64(7), "page-1", "First Page", "enc-a").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(3)))

	first, err := repo.Upsert(context.Background(), nil, page)
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	page.AccessToken = "enc-b"
	mock.ExpectQuery(pageUpsertPattern).
		WithArgs(int64(42), int64(7), "page-1", "First Page", "enc-b").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(3)))

	second, err := repo.Upsert(context.Background(), nil, page)
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	if first != second {
		t.Fatalf("reselect produced ids %d and %d, want the same row", first, second)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestSetDefaultClearsSiblingsFirst(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	repo := NewPageRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE pages SET is_default = FALSE.*WHERE user_id = \$1 AND is_default = TRUE`).
		WithArgs(int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(`UPDATE pages SET is_default = TRUE.*WHERE user_id = \$1 AND page_id = \$2`).
		WithArgs(int64(42), "page-2").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := repo.SetDefault(context.Background(), 42, "page-2"); err != nil {
		t.Fatalf("SetDefault: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestSetDefaultUnknownPageRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	repo := NewPageRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE pages SET is_default = FALSE`).
		WithArgs(int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE pages SET is_default = TRUE`).
		WithArgs(int64(42), "page-404").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err = repo.SetDefault(context.Background(), 42, "page-404")
	if err == nil || err.Error() != "page not found" {
		t.Fatalf("got %v, want page not found", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}
