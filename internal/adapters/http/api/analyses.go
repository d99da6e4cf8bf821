package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/okian/swinglab/pkg/logger"
)

// AnalysisHandler serves the swing analysis routes.
type AnalysisHandler struct {
	deps            Dependencies
	maxObservations int
	maxBodyBytes    int64
	logger          logger.Logger
}

// NewAnalysisHandler creates a new analysis handler.
func NewAnalysisHandler(deps Dependencies, opts ...Option) *AnalysisHandler {
	h := &AnalysisHandler{
		deps:            deps,
		maxObservations: defaultMaxObservations,
		maxBodyBytes:    defaultMaxBodyBytes,
		logger:          logger.Nop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *AnalysisHandler) decode(w http.ResponseWriter, r *http.Request, op string) (analysisRequest, bool) {
	var req analysisRequest
	body := http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		writeError(w, WrapKind(op, ErrBadRequest, err))
		return req, false
	}
	if err := req.validate(h.maxObservations); err != nil {
		writeError(w, WrapKind(op, ErrBadRequest, err))
		return req, false
	}
	return req, true
}

// HandleSubmit handles POST /v1/analyses requests.
func (h *AnalysisHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	const op = "api.submit"
	req, ok := h.decode(w, r, op)
	if !ok {
		return
	}

	sub, err := h.deps.Submit(r.Context(), req.ID, req.sequence())
	if err != nil {
		h.logger.Warn(r.Context(), "submission rejected", logger.String("id", req.ID), logger.Error(err))
		writeError(w, WrapKind(op, kindOf(err), err))
		return
	}

	resp := newAnalysisResponse(sub.Record)
	resp.Duplicate = sub.Duplicate
	if sub.Duplicate {
		writeJSON(w, http.StatusOK, resp)
		return
	}
	w.Header().Set("Location", "/v1/analyses/"+sub.Record.ID)
	writeJSON(w, http.StatusAccepted, resp)
}

// HandleGet handles GET /v1/analyses/{id} requests.
func (h *AnalysisHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	const op = "api.get"
	id := r.PathValue("id")
	if id == "" {
		writeError(w, NewKind(op, ErrBadRequest))
		return
	}
	rec, err := h.deps.Get(r.Context(), id)
	if err != nil {
		writeError(w, WrapKind(op, kindOf(err), err))
		return
	}
	writeJSON(w, http.StatusOK, newAnalysisResponse(rec))
}

// HandleList handles GET /v1/analyses?limit=N requests.
func (h *AnalysisHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	const op = "api.list"
	limit := defaultRecentLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, WrapKind(op, ErrBadRequest, errors.New("limit must be an integer")))
			return
		}
		limit = n
	}
	recs, err := h.deps.Recent(r.Context(), limit)
	if err != nil {
		writeError(w, WrapKind(op, kindOf(err), err))
		return
	}
	resp := listResponse{Analyses: make([]analysisResponse, len(recs))}
	for i, rec := range recs {
		resp.Analyses[i] = newAnalysisResponse(rec)
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleAnalyze handles POST /v1/analyze requests. The report is returned
// directly; degraded swings still answer 200.
func (h *AnalysisHandler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	const op = "api.analyze"
	req, ok := h.decode(w, r, op)
	if !ok {
		return
	}
	rep, err := h.deps.Analyze(r.Context(), req.sequence())
	if err != nil {
		h.logger.Warn(r.Context(), "analysis failed", logger.Error(err))
		writeError(w, WrapKind(op, kindOf(err), err))
		return
	}
	writeJSON(w, http.StatusOK, rep)
}
