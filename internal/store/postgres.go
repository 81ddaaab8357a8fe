package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bizlens/bizcalc/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository stores records in the shared analyses table (Supabase).
// Parameters and results are JSONB; ids are generated by the database.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository connects to databaseURL and creates the table if needed.
func NewPostgresRepository(ctx context.Context, databaseURL string) (*PostgresRepository, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable not set")
	}
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}
	repo := &PostgresRepository{pool: pool}
	if err := repo.Migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return repo, nil
}

// NewPostgresRepositoryFromPool wraps an existing pool without migrating.
func NewPostgresRepositoryFromPool(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Migrate creates the analyses table and its tenant index.
func (r *PostgresRepository) Migrate(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS analyses (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			tenant_id TEXT NOT NULL,
			analysis_type TEXT NOT NULL CHECK (analysis_type IN ('npv_irr', 'payback', 'roi', 'sensitivity')),
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			parameters JSONB NOT NULL,
			results JSONB NOT NULL,
			recommendation TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'completed',
			approved_by TEXT,
			approved_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_analyses_tenant ON analyses (tenant_id, created_at DESC);
	`
	if _, err := r.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to migrate analyses table: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Save(ctx context.Context, rec *domain.AnalysisRecord) (string, error) {
	if r.pool == nil {
		return "", fmt.Errorf("database pool not configured")
	}
	query := `
		INSERT INTO analyses (
			tenant_id, analysis_type, title, description,
			parameters, results, recommendation, status,
			approved_by, approved_at, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id::text
	`
	var id string
	err := r.pool.QueryRow(ctx, query,
		rec.TenantID, string(rec.AnalysisType), rec.Title, rec.Description,
		[]byte(rec.Parameters), []byte(rec.Results), rec.Recommendation, rec.Status,
		rec.ApprovedBy, rec.ApprovedAt, rec.CreatedAt,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("failed to save analysis: %w", err)
	}
	rec.ID = id
	return id, nil
}

const postgresSelect = `
	SELECT id::text, tenant_id, analysis_type, title, description,
		parameters, results, recommendation, status,
		approved_by, approved_at, created_at
	FROM analyses`

func (r *PostgresRepository) Get(ctx context.Context, id string) (*domain.AnalysisRecord, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	rec, err := scanPostgresRecord(r.pool.QueryRow(ctx, postgresSelect+` WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return rec, err
}

func (r *PostgresRepository) List(ctx context.Context, tenantID string, analysisType domain.AnalysisType, limit int) ([]*domain.AnalysisRecord, error) {
	rows, err := r.pool.Query(ctx,
		postgresSelect+` WHERE tenant_id = $1 AND ($2 = '' OR analysis_type = $2) ORDER BY created_at DESC LIMIT $3`,
		tenantID, string(analysisType), normalizeLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to list analyses: %w", err)
	}
	defer rows.Close()

	var out []*domain.AnalysisRecord
	for rows.Next() {
		rec, err := scanPostgresRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) Approve(ctx context.Context, id, approver string, at time.Time) (*domain.AnalysisRecord, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	tag, err := r.pool.Exec(ctx,
		`UPDATE analyses SET approved_by = $2, approved_at = $3 WHERE id = $1 AND approved_by IS NULL`,
		id, approver, at.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to approve analysis: %w", err)
	}
	if tag.RowsAffected() == 0 {
		if _, err := r.Get(ctx, id); err != nil {
			return nil, err
		}
		return nil, ErrAlreadyApproved
	}
	return r.Get(ctx, id)
}

func (r *PostgresRepository) Close() error {
	if r.pool != nil {
		r.pool.Close()
	}
	return nil
}

func scanPostgresRecord(row rowScanner) (*domain.AnalysisRecord, error) {
	var (
		rec             domain.AnalysisRecord
		analysisType    string
		params, results []byte
	)
	err := row.Scan(&rec.ID, &rec.TenantID, &analysisType, &rec.Title, &rec.Description,
		&params, &results, &rec.Recommendation, &rec.Status,
		&rec.ApprovedBy, &rec.ApprovedAt, &rec.CreatedAt)
	if err != nil {
		return nil, err
	}
	rec.AnalysisType = domain.AnalysisType(analysisType)
	rec.Parameters = params
	rec.Results = results
	rec.CreatedAt = rec.CreatedAt.UTC()
	if rec.ApprovedAt != nil {
		at := rec.ApprovedAt.UTC()
		rec.ApprovedAt = &at
	}
	return &rec, nil
}
