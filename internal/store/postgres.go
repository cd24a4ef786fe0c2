package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"financefirst/risk-api/internal/domain"
)

// Postgres is a durable EvaluationStore backed by pgx. Evaluations are
// stored as jsonb payloads with the query columns promoted; webhooks get a
// plain relational table.
type Postgres struct {
	pool *pgxpool.Pool
}

// Connect opens a pooled connection and verifies it with a ping.
func Connect(ctx context.Context, databaseURL string) (*Postgres, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing database URL: %w", err)
	}
	cfg.MaxConns = 10
	cfg.HealthCheckPeriod = 30 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return &Postgres{pool: pool}, nil
}

// Close releases the connection pool.
func (s *Postgres) Close() { s.pool.Close() }

// EnsureSchema creates the tables if they do not exist.
func (s *Postgres) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS evaluations (
			id          TEXT PRIMARY KEY,
			customer_id TEXT NOT NULL,
			status      TEXT NOT NULL,
			created_at  TIMESTAMPTZ NOT NULL,
			payload     JSONB NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_evaluations_customer ON evaluations (customer_id, created_at DESC);
		CREATE INDEX IF NOT EXISTS idx_evaluations_created ON evaluations (created_at);

		CREATE TABLE IF NOT EXISTS webhooks (
			id         TEXT PRIMARY KEY,
			url        TEXT NOT NULL,
			threshold  DOUBLE PRECISION NOT NULL,
			active     BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL
		);
	`)
	return err
}

// ─── Evaluations ──────────────────────────────────────────────────────────────

func (s *Postgres) SaveEvaluation(ctx context.Context, eval *domain.Evaluation) error {
	payload, err := json.Marshal(eval)
	if err != nil {
		return fmt.Errorf("encoding evaluation: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO evaluations (id, customer_id, status, created_at, payload)
		VALUES ($1, $2, $3, $4, $5)
	`, eval.ID, eval.CustomerID, eval.Status, eval.CreatedAt, payload)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicate
	}
	return err
}

func (s *Postgres) GetEvaluation(ctx context.Context, id string) (*domain.Evaluation, error) {
	var payload []byte
	err := s.pool.QueryRow(ctx, `SELECT payload FROM evaluations WHERE id = $1`, id).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return decodeEvaluation(payload)
}

func (s *Postgres) ListByCustomer(ctx context.Context, customerID string) ([]*domain.Evaluation, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT payload FROM evaluations
		WHERE customer_id = $1
		ORDER BY created_at DESC
	`, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectEvaluations(rows)
}

func (s *Postgres) ListSince(ctx context.Context, since time.Time) ([]*domain.Evaluation, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT payload FROM evaluations
		WHERE created_at >= $1
	`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectEvaluations(rows)
}

func collectEvaluations(rows pgx.Rows) ([]*domain.Evaluation, error) {
	var result []*domain.Evaluation
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		eval, err := decodeEvaluation(payload)
		if err != nil {
			return nil, err
		}
		result = append(result, eval)
	}
	return result, rows.Err()
}

func decodeEvaluation(payload []byte) (*domain.Evaluation, error) {
	var eval domain.Evaluation
	if err := json.Unmarshal(payload, &eval); err != nil {
		return nil, fmt.Errorf("decoding evaluation payload: %w", err)
	}
	return &eval, nil
}

// ─── Webhooks ─────────────────────────────────────────────────────────────────

func (s *Postgres) SaveWebhook(ctx context.Context, hook *domain.WebhookConfig) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO webhooks (id, url, threshold, active, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET url = EXCLUDED.url, threshold = EXCLUDED.threshold, active = EXCLUDED.active
	`, hook.ID, hook.URL, hook.Threshold, hook.Active, hook.CreatedAt)
	return err
}

func (s *Postgres) ListWebhooks(ctx context.Context) ([]*domain.WebhookConfig, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, url, threshold, active, created_at FROM webhooks`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*domain.WebhookConfig
	for rows.Next() {
		var hook domain.WebhookConfig
		if err := rows.Scan(&hook.ID, &hook.URL, &hook.Threshold, &hook.Active, &hook.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, &hook)
	}
	return result, rows.Err()
}

func (s *Postgres) DeleteWebhook(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM webhooks WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
