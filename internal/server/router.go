package server

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"precision/internal/history"
	"precision/internal/metric"
	"precision/internal/score"
)

// EvaluationRequest is the body of POST /api/v1/evaluations.
type EvaluationRequest struct {
	// Levels — generalization level per attribute, in column order
	Levels []int `json:"levels"`
}

// HistoryResponse lists the stored evaluations of one scheme.
type HistoryResponse struct {
	Scheme      string             `json:"scheme"`
	Evaluations []score.Evaluation `json:"evaluations"`
	Summary     score.Summary      `json:"summary"`
}

// BoundsResponse holds the extreme losses of the metric.
type BoundsResponse struct {
	Min metric.InformationLoss `json:"min"`
	Max metric.InformationLoss `json:"max"`
}

// MetricResponse describes the initialized metric.
type MetricResponse struct {
	Name       string   `json:"name"`
	Attributes []string `json:"attributes"`
	Heights    []int    `json:"heights"`
	Cells      float64  `json:"cells"`
}

// ApiV1Router manages routes for API version 1.
type ApiV1Router struct {
	// scorer — scores schemes against the loaded table.
	scorer *score.Scorer
	// historyRepo — recent evaluations per scheme key.
	historyRepo *history.Repository[score.Evaluation]
}

// Mux returns a configured *http.ServeMux with registered handlers:
// - POST /api/v1/evaluations — scores a scheme
// - GET /api/v1/evaluations/{scheme} — recent evaluations of a scheme, e.g. /api/v1/evaluations/1-0-2
// - GET /api/v1/bounds — minimal and maximal loss
// - GET /api/v1/metric — metric description
func (ar *ApiV1Router) Mux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/evaluations", ar.evaluateHandler)
	mux.HandleFunc("GET /api/v1/evaluations/{scheme}", ar.historyHandler)
	mux.HandleFunc("GET /api/v1/bounds", ar.boundsHandler)
	mux.HandleFunc("GET /api/v1/metric", ar.metricHandler)

	return mux
}

// evaluateHandler scores the scheme in the request body. Malformed bodies and
// schemes that do not fit the table are answered with 422.
func (ar *ApiV1Router) evaluateHandler(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		slog.Warn("Unable to read evaluation request body", "error", err)
		w.WriteHeader(http.StatusUnprocessableEntity)
		return
	}

	defer r.Body.Close()

	var request EvaluationRequest
	err = json.Unmarshal(body, &request)
	if err != nil {
		slog.Warn("Unable to unmarshal evaluation request body", "error", err)
		w.WriteHeader(http.StatusUnprocessableEntity)
		return
	}

	if len(request.Levels) == 0 {
		slog.Warn("Empty evaluation scheme")
		w.WriteHeader(http.StatusUnprocessableEntity)
		return
	}

	evaluation, err := ar.scorer.Score(r.Context(), request.Levels)
	if err != nil {
		slog.Warn("Unable to score scheme", "scheme", score.SchemeKey(request.Levels), "error", err)
		w.WriteHeader(http.StatusUnprocessableEntity)
		return
	}

	writeJSON(w, evaluation)
}

// historyHandler returns the evaluations stored for the scheme in the path.
// Returns 422 for a malformed scheme key and 404 when nothing is stored.
func (ar *ApiV1Router) historyHandler(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("scheme")
	levels, err := score.ParseSchemeKey(key)
	if err != nil {
		slog.Warn("Invalid scheme key", "scheme", key, "error", err)
		w.WriteHeader(http.StatusUnprocessableEntity)
		return
	}
	key = score.SchemeKey(levels)

	evaluations, err := ar.historyRepo.Get(key)
	if err != nil {
		var notFound *history.NotFoundError
		if errors.As(err, &notFound) {
			slog.Debug("History not found", "scheme", key)
			w.WriteHeader(http.StatusNotFound)
			return
		}
		slog.Warn("Unable to read history", "scheme", key, "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	writeJSON(w, HistoryResponse{
		Scheme:      key,
		Evaluations: evaluations,
		Summary:     score.Summarize(evaluations),
	})
}

func (ar *ApiV1Router) boundsHandler(w http.ResponseWriter, r *http.Request) {
	m := ar.scorer.Metric()
	writeJSON(w, BoundsResponse{
		Min: m.MinInformationLoss(),
		Max: m.MaxInformationLoss(),
	})
}

func (ar *ApiV1Router) metricHandler(w http.ResponseWriter, r *http.Request) {
	m := ar.scorer.Metric()
	writeJSON(w, MetricResponse{
		Name:       m.String(),
		Attributes: ar.scorer.Attributes(),
		Heights:    m.Heights(),
		Cells:      m.Cells(),
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		slog.Warn("Unable to marshal response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(body)
}

// NewApiV1Router creates a new API v1 router over scorer and its history.
func NewApiV1Router(
	scorer *score.Scorer,
	historyRepo *history.Repository[score.Evaluation],
) *ApiV1Router {
	return &ApiV1Router{
		scorer:      scorer,
		historyRepo: historyRepo,
	}
}
