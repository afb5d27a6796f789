package appraisal

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	core "investment_appraisal/pkg/core/appraisal"
	"investment_appraisal/pkg/core/insight"
	"investment_appraisal/pkg/models"
)

// InsightService produces an insight for a stressed copy of the base inputs.
// *insight.Analyzer implements it.
type InsightService interface {
	ScenarioOrUnavailable(ctx context.Context, base models.AppraisalInputs, returnPct, investmentPct core.SensitivityLevel) (models.AppraisalResults, insight.Outcome)
}

var _ InsightService = (*insight.Analyzer)(nil)

// Handler holds dependencies for appraisal endpoints
type Handler struct {
	Memo    *core.Memo
	Insight InsightService
}

// NewHandler creates a new appraisal handler. A nil memo gets a default one.
func NewHandler(memo *core.Memo, svc InsightService) *Handler {
	if memo == nil {
		memo = core.NewMemo(core.DefaultMemoSize)
	}
	return &Handler{Memo: memo, Insight: svc}
}

// Routes mounts the appraisal endpoints under /api/appraisal.
func (h *Handler) Routes(r chi.Router) {
	r.Route("/api/appraisal", func(r chi.Router) {
		r.Get("/defaults", h.HandleDefaults)
		r.Get("/sensitivity", h.HandleSensitivity)
		r.Post("/compute", h.HandleCompute)
		r.Post("/scenarios", h.HandleScenarios)
		r.Post("/insight", h.HandleInsight)
		r.Route("/schedule", func(r chi.Router) {
			r.Post("/add", h.HandleAddYear)
			r.Post("/remove", h.HandleRemoveYear)
			r.Post("/update", h.HandleUpdateYear)
		})
	})
}

// Request is the body shared by compute and insight. Missing inputs fall back
// to the default project; missing sensitivities are the base case.
type Request struct {
	Inputs                *models.AppraisalInputs `json:"inputs"`
	ReturnSensitivity     int                     `json:"returnSensitivity"`
	InvestmentSensitivity int                     `json:"investmentSensitivity"`
}

type ComputeResponse struct {
	Inputs  models.AppraisalInputs  `json:"inputs"` // After sensitivity
	Results models.AppraisalResults `json:"results"`
	Stress  string                  `json:"stress,omitempty"`
}

// ScheduleRequest edits one row of the schedule. Index is required by remove
// and update; field and value only by update.
type ScheduleRequest struct {
	Inputs *models.AppraisalInputs `json:"inputs"`
	Index  *int                    `json:"index"`
	Field  string                  `json:"field"`
	Value  float64                 `json:"value"`
}

type InsightResponse struct {
	Results models.AppraisalResults `json:"results"`
	Stress  string                  `json:"stress,omitempty"`
	Insight insight.Outcome         `json:"insight"`
}

type parsedRequest struct {
	base       models.AppraisalInputs
	returnPct  core.SensitivityLevel
	investPct  core.SensitivityLevel
	stressText string
}

func (h *Handler) HandleDefaults(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, core.DefaultInputs())
}

func (h *Handler) HandleSensitivity(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, core.Scenarios())
}

func (h *Handler) HandleCompute(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeRequest(w, r)
	if !ok {
		return
	}

	active := core.ApplySensitivity(req.base, req.returnPct, req.investPct)
	writeJSON(w, http.StatusOK, ComputeResponse{
		Inputs:  active,
		Results: h.Memo.Compute(active),
		Stress:  req.stressText,
	})
}

func (h *Handler) HandleScenarios(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeRequest(w, r)
	if !ok {
		return
	}

	grid, err := core.RunScenarioGrid(r.Context(), req.base)
	if err != nil {
		zap.L().Warn("appraisal: scenario grid aborted", zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, "scenario grid aborted")
		return
	}
	writeJSON(w, http.StatusOK, grid)
}

// HandleInsight always answers 200 once the inputs are valid; a failed model
// call is reported inside the body with available=false.
func (h *Handler) HandleInsight(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeRequest(w, r)
	if !ok {
		return
	}

	if h.Insight == nil {
		active := core.ApplySensitivity(req.base, req.returnPct, req.investPct)
		writeJSON(w, http.StatusOK, InsightResponse{
			Results: h.Memo.Compute(active),
			Stress:  req.stressText,
			Insight: insight.Outcome{Message: insight.UnavailableMessage},
		})
		return
	}

	res, out := h.Insight.ScenarioOrUnavailable(r.Context(), req.base, req.returnPct, req.investPct)
	writeJSON(w, http.StatusOK, InsightResponse{Results: res, Stress: req.stressText, Insight: out})
}

func (h *Handler) HandleAddYear(w http.ResponseWriter, r *http.Request) {
	h.editSchedule(w, r, false, func(in models.AppraisalInputs, _ ScheduleRequest) (models.AppraisalInputs, error) {
		return core.AddYear(in), nil
	})
}

func (h *Handler) HandleRemoveYear(w http.ResponseWriter, r *http.Request) {
	h.editSchedule(w, r, true, func(in models.AppraisalInputs, req ScheduleRequest) (models.AppraisalInputs, error) {
		return core.RemoveYear(in, *req.Index)
	})
}

func (h *Handler) HandleUpdateYear(w http.ResponseWriter, r *http.Request) {
	h.editSchedule(w, r, true, func(in models.AppraisalInputs, req ScheduleRequest) (models.AppraisalInputs, error) {
		return core.UpdateYear(in, *req.Index, req.Field, req.Value)
	})
}

// editSchedule applies one edit and answers with the edited inputs and their
// base-case results.
func (h *Handler) editSchedule(w http.ResponseWriter, r *http.Request, needIndex bool, edit func(models.AppraisalInputs, ScheduleRequest) (models.AppraisalInputs, error)) {
	var req ScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if needIndex && req.Index == nil {
		writeError(w, http.StatusBadRequest, "index is required")
		return
	}

	base := core.DefaultInputs()
	if req.Inputs != nil {
		base = *req.Inputs
	}
	if err := core.Validate(base); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	edited, err := edit(base, req)
	if err == nil {
		err = core.Validate(edited)
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, ComputeResponse{Inputs: edited, Results: h.Memo.Compute(edited)})
}

func decodeRequest(w http.ResponseWriter, r *http.Request) (parsedRequest, bool) {
	var body Request
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return parsedRequest{}, false
	}

	pr, err := parse(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return parsedRequest{}, false
	}
	return pr, true
}

func parse(body Request) (parsedRequest, error) {
	base := core.DefaultInputs()
	if body.Inputs != nil {
		base = *body.Inputs
	}
	if err := core.Validate(base); err != nil {
		return parsedRequest{}, err
	}

	rp, err := core.ParseSensitivityLevel(body.ReturnSensitivity)
	if err != nil {
		return parsedRequest{}, eris.Wrap(err, "returnSensitivity")
	}
	ip, err := core.ParseSensitivityLevel(body.InvestmentSensitivity)
	if err != nil {
		return parsedRequest{}, eris.Wrap(err, "investmentSensitivity")
	}

	pr := parsedRequest{base: base, returnPct: rp, investPct: ip}
	if core.IsStressed(rp, ip) {
		pr.stressText = core.StressLabel(rp, ip)
	}
	return pr, nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("appraisal: encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
