package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bizlens/bizcalc/internal/domain"
	_ "modernc.org/sqlite"
)

// Fixed-width so that text ordering matches time ordering.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z"

// SQLiteRepository keeps the local analysis history of the CLI.
type SQLiteRepository struct {
	db   *sql.DB
	path string
}

// NewSQLiteRepository opens (or creates) the database at path and migrates it.
func NewSQLiteRepository(path string) (*SQLiteRepository, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// sqlite allows a single writer
	db.SetMaxOpenConns(1)

	repo := &SQLiteRepository{db: db, path: path}
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return repo, nil
}

func (r *SQLiteRepository) migrate() error {
	statements := []string{`
	CREATE TABLE IF NOT EXISTS analyses (
		id TEXT PRIMARY KEY,
		tenant_id TEXT NOT NULL,
		analysis_type TEXT NOT NULL,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		parameters TEXT NOT NULL,
		results TEXT NOT NULL,
		recommendation TEXT NOT NULL,
		status TEXT NOT NULL,
		approved_by TEXT,
		approved_at TEXT,
		created_at TEXT NOT NULL
	)`,
		`CREATE INDEX IF NOT EXISTS idx_analyses_tenant ON analyses(tenant_id, created_at)`,
	}
	for _, stmt := range statements {
		if _, err := r.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to migrate %s: %w", r.path, err)
		}
	}
	return nil
}

func (r *SQLiteRepository) Save(ctx context.Context, rec *domain.AnalysisRecord) (string, error) {
	if rec.ID == "" {
		rec.ID = newID()
	}
	var approvedAt sql.NullString
	if rec.ApprovedAt != nil {
		approvedAt = sql.NullString{String: rec.ApprovedAt.UTC().Format(sqliteTimeLayout), Valid: true}
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO analyses (
			id, tenant_id, analysis_type, title, description,
			parameters, results, recommendation, status,
			approved_by, approved_at, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.TenantID, string(rec.AnalysisType), rec.Title, rec.Description,
		string(rec.Parameters), string(rec.Results), rec.Recommendation, rec.Status,
		rec.ApprovedBy, approvedAt, rec.CreatedAt.UTC().Format(sqliteTimeLayout),
	)
	if err != nil {
		return "", fmt.Errorf("failed to save analysis: %w", err)
	}
	return rec.ID, nil
}

const sqliteSelect = `
	SELECT id, tenant_id, analysis_type, title, description,
		parameters, results, recommendation, status,
		approved_by, approved_at, created_at
	FROM analyses`

func (r *SQLiteRepository) Get(ctx context.Context, id string) (*domain.AnalysisRecord, error) {
	rec, err := scanSQLiteRecord(r.db.QueryRowContext(ctx, sqliteSelect+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return rec, err
}

func (r *SQLiteRepository) List(ctx context.Context, tenantID string, analysisType domain.AnalysisType, limit int) ([]*domain.AnalysisRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		sqliteSelect+` WHERE tenant_id = ? AND (? = '' OR analysis_type = ?) ORDER BY created_at DESC, rowid DESC LIMIT ?`,
		tenantID, string(analysisType), string(analysisType), normalizeLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to list analyses: %w", err)
	}
	defer rows.Close()

	var out []*domain.AnalysisRecord
	for rows.Next() {
		rec, err := scanSQLiteRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) Approve(ctx context.Context, id, approver string, at time.Time) (*domain.AnalysisRecord, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE analyses SET approved_by = ?, approved_at = ? WHERE id = ? AND approved_by IS NULL`,
		approver, at.UTC().Format(sqliteTimeLayout), id)
	if err != nil {
		return nil, fmt.Errorf("failed to approve analysis: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		if _, err := r.Get(ctx, id); err != nil {
			return nil, err
		}
		return nil, ErrAlreadyApproved
	}
	return r.Get(ctx, id)
}

func (r *SQLiteRepository) Close() error { return r.db.Close() }

func scanSQLiteRecord(row rowScanner) (*domain.AnalysisRecord, error) {
	var (
		rec             domain.AnalysisRecord
		analysisType    string
		params, results string
		approvedBy      sql.NullString
		approvedAt      sql.NullString
		createdAt       string
	)
	err := row.Scan(&rec.ID, &rec.TenantID, &analysisType, &rec.Title, &rec.Description,
		&params, &results, &rec.Recommendation, &rec.Status,
		&approvedBy, &approvedAt, &createdAt)
	if err != nil {
		return nil, err
	}
	rec.AnalysisType = domain.AnalysisType(analysisType)
	rec.Parameters = []byte(params)
	rec.Results = []byte(results)
	if rec.CreatedAt, err = time.Parse(sqliteTimeLayout, createdAt); err != nil {
		return nil, fmt.Errorf("bad created_at %q: %w", createdAt, err)
	}
	if approvedBy.Valid {
		by := approvedBy.String
		rec.ApprovedBy = &by
	}
	if approvedAt.Valid {
		at, err := time.Parse(sqliteTimeLayout, approvedAt.String)
		if err != nil {
			return nil, fmt.Errorf("bad approved_at %q: %w", approvedAt.String, err)
		}
		rec.ApprovedAt = &at
	}
	return &rec, nil
}
