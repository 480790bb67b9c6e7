package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ethpandaops/reportoor/pkg/indexstore"
	"github.com/go-chi/chi/v5"
)

type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON serializes v to the response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(v)
}

// handleHealth reports server liveness.
func (s *server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// workflowResponse is the JSON shape of one indexed workflow.
type workflowResponse struct {
	WorkflowID    string     `json:"workflow_id"`
	JobsProcessed int        `json:"jobs_processed"`
	TestsTotal    int        `json:"tests_total"`
	TestsPassed   int        `json:"tests_passed"`
	TestsFailed   int        `json:"tests_failed"`
	FailureCount  int        `json:"failure_count"`
	ProcessedAt   time.Time  `json:"processed_at"`
	ReprocessedAt *time.Time `json:"reprocessed_at,omitempty"`
}

func toWorkflowResponse(w *indexstore.Workflow) workflowResponse {
	return workflowResponse{
		WorkflowID:    w.WorkflowID,
		JobsProcessed: w.JobsProcessed,
		TestsTotal:    w.TestsTotal,
		TestsPassed:   w.TestsPassed,
		TestsFailed:   w.TestsFailed,
		FailureCount:  w.FailureCount,
		ProcessedAt:   w.ProcessedAt,
		ReprocessedAt: w.ReprocessedAt,
	}
}

// handleListWorkflows returns all indexed workflows.
func (s *server) handleListWorkflows(w http.ResponseWriter, r *http.Request) {
	workflows, err := s.indexStore.ListWorkflows(r.Context())
	if err != nil {
		s.log.WithError(err).Error("Failed to list workflows")
		writeJSON(w, http.StatusInternalServerError,
			errorResponse{"internal error"})

		return
	}

	items := make([]workflowResponse, 0, len(workflows))
	for i := range workflows {
		items = append(items, toWorkflowResponse(&workflows[i]))
	}

	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

// handleGetWorkflow returns one indexed workflow by ID.
func (s *server) handleGetWorkflow(w http.ResponseWriter, r *http.Request) {
	workflowID := chi.URLParam(r, "id")

	workflow, err := s.indexStore.GetWorkflow(r.Context(), workflowID)
	if err != nil {
		s.log.WithError(err).Error("Failed to get workflow")
		writeJSON(w, http.StatusInternalServerError,
			errorResponse{"internal error"})

		return
	}

	if workflow == nil {
		writeJSON(w, http.StatusNotFound,
			errorResponse{"workflow not found"})

		return
	}

	writeJSON(w, http.StatusOK, toWorkflowResponse(workflow))
}
