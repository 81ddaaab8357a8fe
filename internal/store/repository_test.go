package store

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/bizlens/bizcalc/internal/config"
	"github.com/bizlens/bizcalc/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func makeRecord(t *testing.T, tenant, title string, typ domain.AnalysisType, offset time.Duration) *domain.AnalysisRecord {
	t.Helper()
	outcome := &domain.AnalysisOutcome{Type: typ, Title: title, Description: title + " case"}
	switch typ {
	case domain.AnalysisROI:
		in := domain.ROIInputs{Investment: 1e9, TotalReturns: 2.2e9, Years: 3}
		outcome.Parameters = in
		outcome.Results = domain.RoiContext{Inputs: in, Result: domain.ROIResult{ROIPercent: 120, Multiple: 2.2, Years: 3}}
	default:
		in := domain.NPVInputs{CashFlowSchedule: domain.CashFlowSchedule{Investment: 100, Flows: []float64{60, 60}}, DiscountRatePercent: 10}
		outcome.Parameters = in
		outcome.Results = domain.NpvIrrContext{Inputs: in, DiscountRatePercent: 10, NPV: 4.13}
	}
	outcome.Recommendation = domain.Recommendation{Category: domain.DecisionInvest, Reason: "positive", Confidence: 65}
	rec, err := domain.NewAnalysisRecord(outcome, tenant, baseTime.Add(offset))
	require.NoError(t, err)
	return rec
}

// runRepositoryContract checks the behaviour every backend shares.
func runRepositoryContract(t *testing.T, repo Repository) {
	ctx := context.Background()
	tenant := "acme-" + uuid.NewString()[:8]

	first := makeRecord(t, tenant, "Plant expansion", domain.AnalysisNPVIRR, 0)
	second := makeRecord(t, tenant, "Brand refresh", domain.AnalysisROI, time.Minute)
	other := makeRecord(t, tenant+"-other", "Elsewhere", domain.AnalysisROI, 2*time.Minute)

	for _, rec := range []*domain.AnalysisRecord{first, second, other} {
		id, err := repo.Save(ctx, rec)
		require.NoError(t, err)
		require.NotEmpty(t, id)
		assert.Equal(t, id, rec.ID)
	}

	t.Run("get", func(t *testing.T) {
		got, err := repo.Get(ctx, first.ID)
		require.NoError(t, err)
		assert.Equal(t, tenant, got.TenantID)
		assert.Equal(t, domain.AnalysisNPVIRR, got.AnalysisType)
		assert.Equal(t, "Plant expansion", got.Title)
		assert.Equal(t, domain.RecordStatusCompleted, got.Status)
		assert.Equal(t, "invest: positive (confidence 65%)", got.Recommendation)
		assert.JSONEq(t, string(first.Parameters), string(got.Parameters))
		assert.JSONEq(t, string(first.Results), string(got.Results))
		assert.WithinDuration(t, baseTime, got.CreatedAt, time.Millisecond)
		assert.Nil(t, got.ApprovedBy)
		assert.Nil(t, got.ApprovedAt)

		_, err = repo.Get(ctx, uuid.NewString())
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("list", func(t *testing.T) {
		all, err := repo.List(ctx, tenant, "", 0)
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, second.ID, all[0].ID, "newest first")
		assert.Equal(t, first.ID, all[1].ID)

		roi, err := repo.List(ctx, tenant, domain.AnalysisROI, 10)
		require.NoError(t, err)
		require.Len(t, roi, 1)
		assert.Equal(t, "Brand refresh", roi[0].Title)

		limited, err := repo.List(ctx, tenant, "", 1)
		require.NoError(t, err)
		assert.Len(t, limited, 1)

		none, err := repo.List(ctx, "nobody-"+uuid.NewString(), "", 0)
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("approve once", func(t *testing.T) {
		at := baseTime.Add(time.Hour)
		got, err := repo.Approve(ctx, first.ID, "cfo@acme.test", at)
		require.NoError(t, err)
		require.NotNil(t, got.ApprovedBy)
		assert.Equal(t, "cfo@acme.test", *got.ApprovedBy)
		require.NotNil(t, got.ApprovedAt)
		assert.WithinDuration(t, at, *got.ApprovedAt, time.Millisecond)
		assert.True(t, got.IsApproved())

		_, err = repo.Approve(ctx, first.ID, "someone-else", at)
		assert.ErrorIs(t, err, ErrAlreadyApproved)

		_, err = repo.Approve(ctx, uuid.NewString(), "cfo", at)
		assert.ErrorIs(t, err, ErrNotFound)

		stored, err := repo.Get(ctx, first.ID)
		require.NoError(t, err)
		assert.Equal(t, "cfo@acme.test", *stored.ApprovedBy)
	})
}

func TestMemoryRepository(t *testing.T) {
	runRepositoryContract(t, NewMemoryRepository())
}

func TestMemoryRepository_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	rec := makeRecord(t, "acme", "Plant expansion", domain.AnalysisNPVIRR, 0)
	id, err := repo.Save(ctx, rec)
	require.NoError(t, err)

	rec.Title = "mutated"
	got, err := repo.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Plant expansion", got.Title)

	got.Title = "mutated again"
	again, err := repo.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Plant expansion", again.Title)
}

func TestMemoryRepository_ConcurrentApprove(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	rec := makeRecord(t, "acme", "Plant expansion", domain.AnalysisNPVIRR, 0)
	id, err := repo.Save(ctx, rec)
	require.NoError(t, err)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repo.Approve(ctx, id, "cfo", baseTime); err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, successes)
}

func TestMemoryRepository_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewMemoryRepository().Save(ctx, makeRecord(t, "acme", "x", domain.AnalysisROI, 0))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSQLiteRepository(t *testing.T) {
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "history", "bizcalc.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	runRepositoryContract(t, repo)
}

func TestSQLiteRepository_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "bizcalc.db")

	repo, err := NewSQLiteRepository(path)
	require.NoError(t, err)
	id, err := repo.Save(ctx, makeRecord(t, "acme", "Plant expansion", domain.AnalysisNPVIRR, 0))
	require.NoError(t, err)
	require.NoError(t, repo.Close())

	reopened, err := NewSQLiteRepository(path)
	require.NoError(t, err)
	defer reopened.Close()
	got, err := reopened.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Plant expansion", got.Title)
}

func TestPostgresRepository(t *testing.T) {
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set")
	}
	repo, err := NewPostgresRepository(context.Background(), url)
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	runRepositoryContract(t, repo)
}

func TestRedisRepository(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	repo, err := NewRedisRepository(context.Background(), addr)
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	runRepositoryContract(t, repo)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	repo, err := Open(ctx, config.DefaultSettings())
	require.NoError(t, err)
	assert.IsType(t, &MemoryRepository{}, repo)

	settings := config.DefaultSettings()
	settings.Store = config.StoreSQLite
	settings.SQLitePath = filepath.Join(t.TempDir(), "open.db")
	repo, err = Open(ctx, settings)
	require.NoError(t, err)
	assert.IsType(t, &SQLiteRepository{}, repo)
	require.NoError(t, repo.Close())

	settings.Store = "cassandra"
	_, err = Open(ctx, settings)
	assert.Error(t, err)

	settings.Store = config.StorePostgres
	settings.DatabaseURL = ""
	_, err = Open(ctx, settings)
	assert.ErrorContains(t, err, "DATABASE_URL")
}
