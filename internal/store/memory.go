package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/bizlens/bizcalc/internal/domain"
)

// MemoryRepository keeps records in process. It is the default backend for
// one-shot CLI runs and for tests.
type MemoryRepository struct {
	mu      sync.RWMutex
	records map[string]*domain.AnalysisRecord
	order   []string
}

// NewMemoryRepository creates an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{records: make(map[string]*domain.AnalysisRecord)}
}

func (r *MemoryRepository) Save(ctx context.Context, rec *domain.AnalysisRecord) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if rec.ID == "" {
		rec.ID = newID()
	}
	if _, ok := r.records[rec.ID]; !ok {
		r.order = append(r.order, rec.ID)
	}
	r.records[rec.ID] = cloneRecord(rec)
	return rec.ID, nil
}

func (r *MemoryRepository) Get(ctx context.Context, id string) (*domain.AnalysisRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneRecord(rec), nil
}

func (r *MemoryRepository) List(ctx context.Context, tenantID string, analysisType domain.AnalysisType, limit int) ([]*domain.AnalysisRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domain.AnalysisRecord
	for i := len(r.order) - 1; i >= 0; i-- {
		rec := r.records[r.order[i]]
		if rec.TenantID != tenantID || (analysisType != "" && rec.AnalysisType != analysisType) {
			continue
		}
		out = append(out, cloneRecord(rec))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if n := normalizeLimit(limit); len(out) > n {
		out = out[:n]
	}
	return out, nil
}

func (r *MemoryRepository) Approve(ctx context.Context, id, approver string, at time.Time) (*domain.AnalysisRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	if rec.IsApproved() {
		return nil, ErrAlreadyApproved
	}
	at = at.UTC()
	rec.ApprovedBy = &approver
	rec.ApprovedAt = &at
	return cloneRecord(rec), nil
}

func (r *MemoryRepository) Close() error { return nil }
