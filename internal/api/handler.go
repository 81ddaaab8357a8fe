package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/bizlens/bizcalc/internal/calculation"
	"github.com/bizlens/bizcalc/internal/domain"
	"github.com/bizlens/bizcalc/internal/service"
	"github.com/bizlens/bizcalc/internal/store"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// maxBodyBytes limits request bodies.
const maxBodyBytes = 1 << 20

type runResponse struct {
	Outcome  *domain.AnalysisOutcome `json:"outcome"`
	RecordID string                  `json:"record_id,omitempty"`
	Saving   bool                    `json:"saving,omitempty"`
}

type approveRequest struct {
	ApprovedBy string `json:"approved_by"`
}

type channelsRequest struct {
	Channels []domain.ChannelInput `json:"channels"`
}

type listResponse struct {
	Total    int                      `json:"total"`
	Analyses []*domain.AnalysisRecord `json:"analyses"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// runAnalysis runs one analysis. save=true stores the outcome before
// answering; save=async answers immediately and stores it in the background.
func (s *Server) runAnalysis(w http.ResponseWriter, r *http.Request) {
	var req domain.AnalysisRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	outcome, err := s.svc.Analyze(r.Context(), &req)
	if err != nil {
		s.writeError(w, err)
		return
	}

	resp := runResponse{Outcome: outcome}
	switch r.URL.Query().Get("save") {
	case "true", "1":
		rec, err := s.svc.Save(r.Context(), s.tenant(r), outcome)
		if err != nil {
			s.writeError(w, err)
			return
		}
		resp.RecordID = rec.ID
		writeJSON(w, http.StatusCreated, resp)
		return
	case "async":
		s.svc.SaveAsync(r.Context(), s.tenant(r), outcome)
		resp.Saving = true
		writeJSON(w, http.StatusAccepted, resp)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) listAnalyses(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit := 0
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.writeError(w, fmt.Errorf("%w: limit must be a non-negative integer", service.ErrInvalidRequest))
			return
		}
		limit = n
	}
	records, err := s.svc.List(r.Context(), s.tenant(r), domain.AnalysisType(q.Get("type")), limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if records == nil {
		records = []*domain.AnalysisRecord{}
	}
	writeJSON(w, http.StatusOK, listResponse{Total: len(records), Analyses: records})
}

func (s *Server) getAnalysis(w http.ResponseWriter, r *http.Request) {
	rec, err := s.svc.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) approveAnalysis(w http.ResponseWriter, r *http.Request) {
	var body approveRequest
	if err := decodeBody(w, r, &body); err != nil {
		s.writeError(w, err)
		return
	}
	rec, err := s.svc.Approve(r.Context(), mux.Vars(r)["id"], body.ApprovedBy)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) evaluateChannels(w http.ResponseWriter, r *http.Request) {
	var body channelsRequest
	if err := decodeBody(w, r, &body); err != nil {
		s.writeError(w, err)
		return
	}
	report, err := s.svc.EvaluateChannels(r.Context(), body.Channels)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) tenant(r *http.Request) string {
	if t := r.Header.Get(TenantHeader); t != "" {
		return t
	}
	return s.defaultTenant
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: malformed JSON body: %v", service.ErrInvalidRequest, err)
	}
	return nil
}

// statusFor maps service, store and calculation errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidRequest), errors.Is(err, service.ErrApproverRequired):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrAlreadyApproved):
		return http.StatusConflict
	case errors.Is(err, calculation.ErrDivisionByZero),
		errors.Is(err, calculation.ErrEmptySchedule),
		errors.Is(err, calculation.ErrNonPositiveInvestment),
		errors.Is(err, calculation.ErrNonPositiveCashFlow),
		errors.Is(err, calculation.ErrInvalidHorizon),
		errors.Is(err, calculation.ErrNonPositiveYears),
		errors.Is(err, calculation.ErrUndefinedGrowth),
		errors.Is(err, calculation.ErrUnknownVariable),
		errors.Is(err, calculation.ErrNonFiniteResult):
		return http.StatusUnprocessableEntity
	case errors.Is(err, calculation.ErrUnsupportedAnalysis):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", zap.Error(err))
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

// writeJSON encodes before writing the header so an unencodable value
// becomes a 500 with an error body instead of an empty success.
func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		status = http.StatusInternalServerError
		body, _ = json.Marshal(errorResponse{Error: fmt.Sprintf("failed to encode response: %v", err)})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(append(body, '\n'))
}
