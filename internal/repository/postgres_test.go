package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"evinburada/internal/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var listingColumnNames = []string{
	"id", "title", "price", "province", "district", "neighborhood", "room_count", "area",
	"deal_type", "in_site", "source_name", "source_url", "description", "image_url", "created_at",
}

func newMockRepository(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresRepositoryFromDB(sqlx.NewDb(db, "postgres")), mock
}

func sampleListing(id string) model.Listing {
	return model.Listing{
		ID:           id,
		Title:        "Moda'da site içinde 2+1",
		Price:        30000,
		Province:     "İstanbul",
		District:     "Kadıköy",
		Neighborhood: "Moda",
		RoomCount:    "2+1",
		Area:         95,
		DealType:     model.DealRental,
		InSite:       true,
		SourceName:   model.SourceEmlakjet,
		SourceURL:    "https://www.emlakjet.com",
		Description:  "Denize yakın",
		ImageURL:     "https://picsum.photos/seed/501/800/600",
		CreatedAt:    time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func listingRow(rows *sqlmock.Rows, l model.Listing) *sqlmock.Rows {
	return rows.AddRow(l.ID, l.Title, l.Price, l.Province, l.District, l.Neighborhood, l.RoomCount, l.Area,
		string(l.DealType), l.InSite, string(l.SourceName), l.SourceURL, l.Description, l.ImageURL, l.CreatedAt)
}

func TestLoadListings(t *testing.T) {
	repo, mock := newMockRepository(t)

	want := []model.Listing{sampleListing("listing-1"), sampleListing("listing-2")}
	rows := sqlmock.NewRows(listingColumnNames)
	for _, l := range want {
		rows = listingRow(rows, l)
	}
	mock.ExpectQuery(`SELECT .* FROM listings ORDER BY created_at DESC`).WillReturnRows(rows)

	got, err := repo.LoadListings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadListings_Error(t *testing.T) {
	repo, mock := newMockRepository(t)
	mock.ExpectQuery(`SELECT .* FROM listings`).WillReturnError(errors.New("relation does not exist"))

	_, err := repo.LoadListings(context.Background())
	assert.ErrorContains(t, err, "failed to load listings")
}

func TestEnsureSchema(t *testing.T) {
	repo, mock := newMockRepository(t)
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS listings`).WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestImportListings(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectBegin()
	prep := mock.ExpectPrepare(`INSERT INTO listings`)
	prep.ExpectExec().WillReturnResult(sqlmock.NewResult(0, 1))
	prep.ExpectExec().WillReturnError(errors.New("duplicate key"))
	mock.ExpectCommit()

	n, errs := repo.ImportListings(context.Background(), []model.Listing{sampleListing("a"), sampleListing("b")})
	assert.Equal(t, 1, n)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "listing b")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLogTurn(t *testing.T) {
	repo, mock := newMockRepository(t)

	district := "Kadıköy"
	rec := &model.TurnRecord{
		SessionID:      "s1",
		Utterance:      "Kadıköy'de kiralık",
		Intent:         model.IntentFilterUpdate,
		Filters:        &model.SearchFilters{District: &district},
		ResultCount:    2,
		ListingIDs:     []string{"listing-1", "listing-2"},
		ResponseTimeMs: 12,
	}

	mock.ExpectExec(`INSERT INTO turn_logs`).
		WithArgs("s1", "Kadıköy'de kiralık", "filter_update", []byte(`{"district":"Kadıköy"}`), 2, "{\"listing-1\",\"listing-2\"}", false, 12).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.LogTurn(context.Background(), rec))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLogFeedback(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectExec(`INSERT INTO feedback_logs`).
		WithArgs("s1", "listing-1", "contact").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`INSERT INTO feedback_logs`).
		WillReturnError(errors.New("connection reset"))

	require.NoError(t, repo.LogFeedback(context.Background(), "s1", "listing-1", "contact"))
	assert.ErrorContains(t, repo.LogFeedback(context.Background(), "s1", "listing-2", "click"), "failed to log feedback")
	assert.NoError(t, mock.ExpectationsWereMet())
}
