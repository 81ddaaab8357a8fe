// Package service ties the calculation engine to a persistence backend.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bizlens/bizcalc/internal/calculation"
	"github.com/bizlens/bizcalc/internal/config"
	"github.com/bizlens/bizcalc/internal/domain"
	"github.com/bizlens/bizcalc/internal/store"
	"go.uber.org/zap"
)

var (
	ErrInvalidRequest   = errors.New("invalid analysis request")
	ErrApproverRequired = errors.New("approver is required")
)

// asyncSaveTimeout bounds a fire-and-forget save once its caller has gone.
const asyncSaveTimeout = 30 * time.Second

// SaveResult is the notification of an asynchronous save.
type SaveResult struct {
	ID  string
	Err error
}

// AnalysisService runs analyses and persists their outcomes.
type AnalysisService struct {
	engine *calculation.CalculationEngine
	repo   store.Repository
	parser *config.InputParser
	logger *zap.Logger
	now    func() time.Time

	pending sync.WaitGroup
}

// NewAnalysisService wires an engine to a repository. A nil logger disables logging.
func NewAnalysisService(engine *calculation.CalculationEngine, repo store.Repository, logger *zap.Logger) *AnalysisService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalysisService{
		engine: engine,
		repo:   repo,
		parser: config.NewInputParser(),
		logger: logger,
		now:    time.Now,
	}
}

// Analyze validates and runs one analysis without saving it.
func (s *AnalysisService) Analyze(ctx context.Context, req *domain.AnalysisRequest) (*domain.AnalysisOutcome, error) {
	if err := s.parser.ValidateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	outcome, err := s.engine.RunAnalysis(ctx, req)
	if err != nil {
		s.logger.Warn("analysis failed", zap.String("title", req.Title), zap.String("type", string(req.Type)), zap.Error(err))
		return nil, err
	}
	return outcome, nil
}

// Save persists an outcome for tenantID and returns the stored record.
func (s *AnalysisService) Save(ctx context.Context, tenantID string, outcome *domain.AnalysisOutcome) (*domain.AnalysisRecord, error) {
	rec, err := domain.NewAnalysisRecord(outcome, tenantID, s.now())
	if err != nil {
		return nil, err
	}
	id, err := s.repo.Save(ctx, rec)
	if err != nil {
		s.logger.Error("failed to save analysis", zap.String("tenant", tenantID), zap.String("title", outcome.Title), zap.Error(err))
		return nil, err
	}
	s.logger.Info("analysis saved", zap.String("id", id), zap.String("tenant", tenantID), zap.String("type", string(rec.AnalysisType)))
	return rec, nil
}

// SaveAsync saves in the background and reports once on the returned
// channel, which is buffered so nobody has to read it. The save is not
// retried and survives cancellation of ctx.
func (s *AnalysisService) SaveAsync(ctx context.Context, tenantID string, outcome *domain.AnalysisOutcome) <-chan SaveResult {
	done := make(chan SaveResult, 1)
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		defer close(done)
		saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), asyncSaveTimeout)
		defer cancel()
		rec, err := s.Save(saveCtx, tenantID, outcome)
		if err != nil {
			done <- SaveResult{Err: err}
			return
		}
		done <- SaveResult{ID: rec.ID}
	}()
	return done
}

// Wait blocks until every SaveAsync call has finished.
func (s *AnalysisService) Wait() { s.pending.Wait() }

// Approve records the sign-off of an analysis. A record can be approved once.
func (s *AnalysisService) Approve(ctx context.Context, id, approver string) (*domain.AnalysisRecord, error) {
	if approver == "" {
		return nil, ErrApproverRequired
	}
	rec, err := s.repo.Approve(ctx, id, approver, s.now())
	if err != nil {
		return nil, err
	}
	s.logger.Info("analysis approved", zap.String("id", id), zap.String("approver", approver))
	return rec, nil
}

func (s *AnalysisService) Get(ctx context.Context, id string) (*domain.AnalysisRecord, error) {
	return s.repo.Get(ctx, id)
}

func (s *AnalysisService) List(ctx context.Context, tenantID string, analysisType domain.AnalysisType, limit int) ([]*domain.AnalysisRecord, error) {
	if analysisType != "" && !analysisType.Valid() {
		return nil, fmt.Errorf("%w: unknown analysis type %q", ErrInvalidRequest, analysisType)
	}
	return s.repo.List(ctx, tenantID, analysisType, limit)
}

// EvaluateChannels validates channel inputs and runs the marketing view.
func (s *AnalysisService) EvaluateChannels(ctx context.Context, inputs []domain.ChannelInput) (*domain.ChannelReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cfg := &domain.Configuration{Thresholds: s.engine.Classifier.Thresholds, Channels: inputs}
	if err := s.parser.ValidateConfiguration(cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	return s.engine.EvaluateChannels(inputs), nil
}
