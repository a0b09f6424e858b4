package v1

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/confluxhq/conflux"
	"github.com/confluxhq/conflux/infrastructure/api/middleware"
)

// IndexRouter handles indexing API endpoints.
type IndexRouter struct {
	client *conflux.Client
	logger *slog.Logger
}

// NewIndexRouter creates an IndexRouter.
func NewIndexRouter(client *conflux.Client) *IndexRouter {
	return &IndexRouter{client: client, logger: client.Logger()}
}

// Routes returns the chi router for indexing endpoints.
func (r *IndexRouter) Routes() chi.Router {
	router := chi.NewRouter()
	router.Post("/", r.ReindexAll)
	router.Get("/status", r.Status)
	router.Post("/{conventionID}", r.IndexConvention)
	return router
}

type indexResponse struct {
	ConventionID int64 `json:"convention_id"`
	Indexed      int   `json:"indexed"`
}

type reindexResponse struct {
	Succeeded int      `json:"succeeded"`
	Failed    int      `json:"failed"`
	Indexed   int      `json:"indexed"`
	Errors    []string `json:"errors,omitempty"`
}

type statusResponse struct {
	Documents int64 `json:"documents"`
}

// Status handles GET /api/v1/index/status.
func (r *IndexRouter) Status(w http.ResponseWriter, req *http.Request) {
	count, err := r.client.Vectors().Count(req.Context())
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, statusResponse{Documents: count})
}

// IndexConvention handles POST /api/v1/index/{conventionID}.
func (r *IndexRouter) IndexConvention(w http.ResponseWriter, req *http.Request) {
	conventionID, err := strconv.ParseInt(chi.URLParam(req, "conventionID"), 10, 64)
	if err != nil {
		middleware.WriteError(w, req,
			fmt.Errorf("%w: invalid convention id", middleware.ErrBadRequest), r.logger)
		return
	}

	indexed, err := r.client.Indexing.IndexConvention(req.Context(), conventionID)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, indexResponse{
		ConventionID: conventionID,
		Indexed:      indexed,
	})
}

// ReindexAll handles POST /api/v1/index.
func (r *IndexRouter) ReindexAll(w http.ResponseWriter, req *http.Request) {
	report, err := r.client.Indexing.ReindexAll(req.Context())
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	resp := reindexResponse{
		Succeeded: report.SuccessCount,
		Failed:    report.FailureCount,
		Indexed:   report.TotalDocumentsIndexed,
	}
	for _, reindexErr := range report.Errors {
		resp.Errors = append(resp.Errors, reindexErr.Error())
	}

	middleware.WriteJSON(w, http.StatusOK, resp)
}
