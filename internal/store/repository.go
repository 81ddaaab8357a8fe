// Package store persists analysis records. Every backend implements
// Repository with the same semantics: ids are assigned on Save, List returns
// newest first, and a record can be approved exactly once.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/bizlens/bizcalc/internal/domain"
	"github.com/google/uuid"
)

var (
	ErrNotFound        = errors.New("analysis not found")
	ErrAlreadyApproved = errors.New("analysis already approved")
)

// DefaultListLimit caps List when the caller passes a non-positive limit.
const DefaultListLimit = 50

// Repository is the persistence collaborator of the analysis service.
type Repository interface {
	// Save stores rec, assigns rec.ID and returns it.
	Save(ctx context.Context, rec *domain.AnalysisRecord) (string, error)
	Get(ctx context.Context, id string) (*domain.AnalysisRecord, error)
	// List returns a tenant's records newest first. An empty analysisType
	// matches every type.
	List(ctx context.Context, tenantID string, analysisType domain.AnalysisType, limit int) ([]*domain.AnalysisRecord, error)
	Approve(ctx context.Context, id, approver string, at time.Time) (*domain.AnalysisRecord, error)
	Close() error
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	return limit
}

func newID() string { return uuid.NewString() }

// rowScanner is satisfied by *sql.Row, *sql.Rows and pgx.Row.
type rowScanner interface {
	Scan(dest ...any) error
}

func cloneRecord(rec *domain.AnalysisRecord) *domain.AnalysisRecord {
	c := *rec
	c.Parameters = append([]byte(nil), rec.Parameters...)
	c.Results = append([]byte(nil), rec.Results...)
	if rec.ApprovedBy != nil {
		by := *rec.ApprovedBy
		c.ApprovedBy = &by
	}
	if rec.ApprovedAt != nil {
		at := *rec.ApprovedAt
		c.ApprovedAt = &at
	}
	return &c
}
