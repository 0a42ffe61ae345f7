// Package store persists finished assessments in PostgreSQL.
//
// Persistence is optional: the engine accepts a nil recorder and skips the
// write. The store keeps the full per-word scoring as JSONB so that history
// queries can replay an assessment without re-running the pipeline.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/twilight39/IPA-Navigator/internal/assess"
	"github.com/twilight39/IPA-Navigator/pkg/provider/g2p"
)

// Schema is the SQL DDL for the assessments table. Execute it via
// [PostgresStore.Migrate] or apply it manually during deployment.
const Schema = `
CREATE TABLE IF NOT EXISTS assessments (
    id                 UUID PRIMARY KEY,
    transcript         TEXT NOT NULL,
    accent             TEXT NOT NULL,
    overall_accuracy   DOUBLE PRECISION NOT NULL,
    overall_confidence DOUBLE PRECISION NOT NULL,
    total_words        INTEGER NOT NULL,
    word_results       JSONB NOT NULL DEFAULT '[]',
    created_at         TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_assessments_created ON assessments(created_at DESC);
`

// defaultListLimit bounds List when the caller passes a non-positive limit.
const defaultListLimit = 50

// DB is the database interface used by [PostgresStore]. Both *pgxpool.Pool
// and *pgx.Conn satisfy this interface.
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresStore persists assessments in a PostgreSQL database. The per-word
// results are serialised as JSONB.
type PostgresStore struct {
	db DB
}

// Compile-time interface check.
var _ assess.Recorder = (*PostgresStore)(nil)

// NewPostgresStore creates a new [PostgresStore] that uses the given database
// connection or pool. The caller is responsible for calling
// [PostgresStore.Migrate] to ensure the schema exists before issuing queries.
func NewPostgresStore(db DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate executes the [Schema] DDL against the database, creating the
// assessments table and index if they do not already exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.db.Exec(ctx, Schema)
	if err != nil {
		return fmt.Errorf("store: migrate: %w", err)
	}
	return nil
}

// SaveAssessment inserts one finished assessment. The result's ID must be a
// UUID; duplicate IDs are rejected.
func (s *PostgresStore) SaveAssessment(ctx context.Context, res *assess.Result) error {
	if _, err := uuid.Parse(res.ID); err != nil {
		return fmt.Errorf("store: assessment id %q is not a UUID: %w", res.ID, err)
	}

	wordsJSON, err := json.Marshal(emptyWords(res.Words))
	if err != nil {
		return fmt.Errorf("store: marshal word_results: %w", err)
	}

	const query = `
		INSERT INTO assessments (
			id, transcript, accent,
			overall_accuracy, overall_confidence, total_words,
			word_results, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`

	_, err = s.db.Exec(ctx, query,
		res.ID, res.Transcript, string(res.Accent),
		res.OverallAccuracy, res.OverallConfidence, res.TotalWords,
		wordsJSON, res.CreatedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("store: assessment %q already exists", res.ID)
		}
		return fmt.Errorf("store: save: %w", err)
	}
	return nil
}

// Get retrieves an assessment by ID. It returns (nil, nil) if no assessment
// with the given ID exists; a non-UUID id cannot exist and is treated the
// same way.
func (s *PostgresStore) Get(ctx context.Context, id string) (*assess.Result, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}

	const query = `
		SELECT id, transcript, accent,
		       overall_accuracy, overall_confidence, total_words,
		       word_results, created_at
		FROM assessments
		WHERE id = $1`

	var (
		res       assess.Result
		accent    string
		wordsJSON []byte
	)
	err := s.db.QueryRow(ctx, query, id).Scan(
		&res.ID, &res.Transcript, &accent,
		&res.OverallAccuracy, &res.OverallConfidence, &res.TotalWords,
		&wordsJSON, &res.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("store: get %q: %w", id, err)
	}

	res.Accent = g2p.Locale(accent)
	if err := json.Unmarshal(wordsJSON, &res.Words); err != nil {
		return nil, fmt.Errorf("store: unmarshal word_results: %w", err)
	}
	return &res, nil
}

// List returns the most recent assessments, newest first. A non-positive
// limit falls back to the default page size.
func (s *PostgresStore) List(ctx context.Context, limit int) ([]assess.Result, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	const query = `
		SELECT id, transcript, accent,
		       overall_accuracy, overall_confidence, total_words,
		       word_results, created_at
		FROM assessments
		ORDER BY created_at DESC
		LIMIT $1`

	rows, err := s.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("store: list: %w", err)
	}
	defer rows.Close()

	var results []assess.Result
	for rows.Next() {
		var (
			res       assess.Result
			accent    string
			wordsJSON []byte
		)
		if err := rows.Scan(
			&res.ID, &res.Transcript, &accent,
			&res.OverallAccuracy, &res.OverallConfidence, &res.TotalWords,
			&wordsJSON, &res.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("store: list scan: %w", err)
		}

		res.Accent = g2p.Locale(accent)
		if err := json.Unmarshal(wordsJSON, &res.Words); err != nil {
			return nil, fmt.Errorf("store: unmarshal word_results: %w", err)
		}
		results = append(results, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: list: %w", err)
	}
	return results, nil
}

// emptyWords returns w if non-nil, otherwise an empty non-nil slice. This
// ensures JSON marshalling produces "[]" instead of "null".
func emptyWords(w []assess.WordResult) []assess.WordResult {
	if w == nil {
		return []assess.WordResult{}
	}
	return w
}

// isDuplicateKeyError checks whether a PostgreSQL error is a unique-violation
// (SQLSTATE 23505).
func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
