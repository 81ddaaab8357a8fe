package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bizlens/bizcalc/internal/calculation"
	"github.com/bizlens/bizcalc/internal/domain"
	"github.com/bizlens/bizcalc/internal/store"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var fixedNow = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func newTestService(repo store.Repository) *AnalysisService {
	svc := NewAnalysisService(calculation.NewCalculationEngine(), repo, zap.NewNop())
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func roiRequest() *domain.AnalysisRequest {
	return &domain.AnalysisRequest{
		Type:  domain.AnalysisROI,
		Title: "Brand refresh",
		ROI:   &domain.ROIInputs{Investment: 1e9, TotalReturns: 2.2e9, Years: 3},
	}
}

// failingRepo rejects every save.
type failingRepo struct {
	store.Repository
}

func (failingRepo) Save(context.Context, *domain.AnalysisRecord) (string, error) {
	return "", errors.New("connection refused")
}

func TestAnalyze(t *testing.T) {
	svc := newTestService(store.NewMemoryRepository())

	outcome, err := svc.Analyze(context.Background(), roiRequest())
	require.NoError(t, err)
	roi, ok := outcome.Results.(domain.RoiContext)
	require.True(t, ok)
	assert.InDelta(t, 120.0, roi.Result.ROIPercent, 1e-9)
	assert.InDelta(t, 2.2, roi.Result.Multiple, 1e-9)
}

func TestAnalyze_InvalidRequest(t *testing.T) {
	svc := newTestService(store.NewMemoryRepository())

	tests := map[string]*domain.AnalysisRequest{
		"missing title":   {Type: domain.AnalysisROI, ROI: &domain.ROIInputs{Investment: 1, Years: 1}},
		"unknown type":    {Type: "dcf", Title: "x"},
		"missing section": {Type: domain.AnalysisPayback, Title: "x"},
		"bad investment":  {Type: domain.AnalysisROI, Title: "x", ROI: &domain.ROIInputs{Investment: 0, Years: 1}},
	}
	for name, req := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Analyze(context.Background(), req)
			assert.ErrorIs(t, err, ErrInvalidRequest)
		})
	}
}

func TestSaveGetListApprove(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(store.NewMemoryRepository())

	outcome, err := svc.Analyze(ctx, roiRequest())
	require.NoError(t, err)
	rec, err := svc.Save(ctx, "acme", outcome)
	require.NoError(t, err)
	require.NotEmpty(t, rec.ID)
	assert.Equal(t, domain.RecordStatusCompleted, rec.Status)
	assert.Equal(t, fixedNow, rec.CreatedAt)
	assert.False(t, rec.IsApproved())

	got, err := svc.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "Brand refresh", got.Title)

	list, err := svc.List(ctx, "acme", domain.AnalysisROI, 0)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = svc.List(ctx, "acme", "dcf", 0)
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = svc.Approve(ctx, rec.ID, "")
	assert.ErrorIs(t, err, ErrApproverRequired)

	approved, err := svc.Approve(ctx, rec.ID, "cfo")
	require.NoError(t, err)
	assert.Equal(t, "cfo", *approved.ApprovedBy)
	assert.Equal(t, fixedNow, *approved.ApprovedAt)

	_, err = svc.Approve(ctx, rec.ID, "cfo")
	assert.ErrorIs(t, err, store.ErrAlreadyApproved)
}

func TestSaveAsync(t *testing.T) {
	repo := store.NewMemoryRepository()
	svc := newTestService(repo)
	outcome, err := svc.Analyze(context.Background(), roiRequest())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := svc.SaveAsync(ctx, "acme", outcome)
	// the save must not depend on the caller's context
	cancel()

	res := <-done
	require.NoError(t, res.Err)
	require.NotEmpty(t, res.ID)

	_, open := <-done
	assert.False(t, open, "channel is closed after the single result")

	got, err := repo.Get(context.Background(), res.ID)
	require.NoError(t, err)
	assert.Equal(t, "acme", got.TenantID)
}

func TestSaveAsync_ReportsFailure(t *testing.T) {
	svc := newTestService(failingRepo{})
	outcome, err := svc.Analyze(context.Background(), roiRequest())
	require.NoError(t, err)

	res := <-svc.SaveAsync(context.Background(), "acme", outcome)
	assert.ErrorContains(t, res.Err, "connection refused")
	assert.Empty(t, res.ID)
}

func TestSaveAsync_FireAndForget(t *testing.T) {
	svc := newTestService(store.NewMemoryRepository())
	outcome, err := svc.Analyze(context.Background(), roiRequest())
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		svc.SaveAsync(context.Background(), "acme", outcome)
	}
	svc.Wait()

	list, err := svc.List(context.Background(), "acme", "", 0)
	require.NoError(t, err)
	assert.Len(t, list, 5)
}

func TestEvaluateChannels(t *testing.T) {
	svc := newTestService(store.NewMemoryRepository())

	report, err := svc.EvaluateChannels(context.Background(), []domain.ChannelInput{
		{Name: "search", Revenue: decimal.NewFromInt(1000), COGS: decimal.NewFromInt(400), AdSpend: decimal.NewFromInt(200), CashCollected: decimal.NewFromInt(900)},
		{Name: "social", Revenue: decimal.NewFromInt(500), COGS: decimal.NewFromInt(300), AdSpend: decimal.NewFromInt(300), CashCollected: decimal.NewFromInt(200)},
	})
	require.NoError(t, err)
	require.Len(t, report.Decisions, 2)
	assert.Equal(t, "search", report.Metrics[0].Channel)
	assert.Equal(t, domain.SeverityCritical, report.Alerts[0].Severity)

	_, err = svc.EvaluateChannels(context.Background(), []domain.ChannelInput{{Name: "", Revenue: decimal.NewFromInt(1)}})
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = svc.EvaluateChannels(context.Background(), nil)
	assert.ErrorIs(t, err, ErrInvalidRequest)
}
