package repository

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"time"

	"evinburada/internal/model"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

//go:embed schema.sql
var schema string

const listingColumns = `
	id, title, price, province, district, neighborhood, room_count, area,
	deal_type, in_site, source_name, source_url, description, image_url, created_at`

// PostgresRepository handles database operations
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(dsn string, maxConn, maxIdleConn int) (*PostgresRepository, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(maxConn)
	db.SetMaxIdleConns(maxIdleConn)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(2 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresRepository{db: db}, nil
}

// NewPostgresRepositoryFromDB wraps an existing handle.
func NewPostgresRepositoryFromDB(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Close closes the database connection
func (r *PostgresRepository) Close() error {
	return r.db.Close()
}

// EnsureSchema creates the catalog and log tables when missing.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// LoadListings reads the whole catalog. The catalog is loaded once at startup
// and matched in memory.
func (r *PostgresRepository) LoadListings(ctx context.Context) ([]model.Listing, error) {
	query := fmt.Sprintf(`SELECT %s FROM listings ORDER BY created_at DESC, id`, listingColumns)

	var listings []model.Listing
	if err := r.db.SelectContext(ctx, &listings, query); err != nil {
		return nil, fmt.Errorf("failed to load listings: %w", err)
	}
	return listings, nil
}

// ImportListings upserts listings in one transaction and reports how many
// were written along with per-listing errors.
func (r *PostgresRepository) ImportListings(ctx context.Context, listings []model.Listing) (int, []string) {
	success := 0
	var errs []string

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		errs = append(errs, fmt.Sprintf("failed to start transaction: %v", err))
		return success, errs
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareNamedContext(ctx, `
		INSERT INTO listings (`+listingColumns+`)
		VALUES (
			:id, :title, :price, :province, :district, :neighborhood, :room_count, :area,
			:deal_type, :in_site, :source_name, :source_url, :description, :image_url, :created_at)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title, price = EXCLUDED.price, deal_type = EXCLUDED.deal_type,
			description = EXCLUDED.description, image_url = EXCLUDED.image_url`)
	if err != nil {
		errs = append(errs, fmt.Sprintf("failed to prepare statement: %v", err))
		return success, errs
	}
	defer stmt.Close()

	for _, l := range listings {
		if _, err := stmt.ExecContext(ctx, l); err != nil {
			errs = append(errs, fmt.Sprintf("listing %s: %v", l.ID, err))
			continue
		}
		success++
	}

	if err := tx.Commit(); err != nil {
		errs = append(errs, fmt.Sprintf("failed to commit transaction: %v", err))
		return 0, errs
	}

	return success, errs
}

// LogTurn logs a completed conversational turn
func (r *PostgresRepository) LogTurn(ctx context.Context, rec *model.TurnRecord) error {
	filters, err := json.Marshal(rec.Filters)
	if err != nil {
		return fmt.Errorf("failed to encode filters: %w", err)
	}

	query := `
		INSERT INTO turn_logs (session_id, utterance, intent, filters, result_count, listing_ids, failed, response_time_ms)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err = r.db.ExecContext(ctx, query,
		rec.SessionID, rec.Utterance, string(rec.Intent), filters,
		rec.ResultCount, pq.Array(rec.ListingIDs), rec.Failed, rec.ResponseTimeMs)
	if err != nil {
		return fmt.Errorf("failed to log turn: %w", err)
	}
	return nil
}

// LogFeedback logs user feedback/action
func (r *PostgresRepository) LogFeedback(ctx context.Context, sessionID, listingID, action string) error {
	query := `
		INSERT INTO feedback_logs (session_id, listing_id, action)
		VALUES ($1, $2, $3)
	`
	_, err := r.db.ExecContext(ctx, query, sessionID, listingID, action)
	if err != nil {
		return fmt.Errorf("failed to log feedback: %w", err)
	}
	return nil
}
