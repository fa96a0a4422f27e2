package api

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"github.com/adf-bdd/benchdock/internal/domain"
	"github.com/adf-bdd/benchdock/internal/resultstore"
)

// BatchResponse is the API response for a batch
type BatchResponse struct {
	ID           string   `json:"id"`
	Image        string   `json:"image"`
	Folder       string   `json:"folder"`
	Pattern      string   `json:"pattern,omitempty"`
	Timeout      string   `json:"timeout"`
	Parallelism  int      `json:"parallelism"`
	ExtraArgs    []string `json:"extra_args,omitempty"`
	StartedAt    string   `json:"started_at"`
	FinishedAt   string   `json:"finished_at,omitempty"`
	Total        int      `json:"total"`
	Completed    int      `json:"completed"`
	TimedOut     int      `json:"timed_out"`
	LaunchFailed int      `json:"launch_failed"`
	Interrupted  int      `json:"interrupted"`
}

// RunResponse is the API response for a run
type RunResponse struct {
	Seq         int     `json:"seq"`
	Input       string  `json:"input"`
	RunDir      string  `json:"run_dir"`
	Outcome     string  `json:"outcome"`
	ExitCode    int     `json:"exit_code"`
	ElapsedSecs float64 `json:"elapsed_secs"`
	Error       string  `json:"error,omitempty"`
}

// StatusResponse is the API response for overall status
type StatusResponse struct {
	Batches int `json:"batches"`
}

func batchToResponse(rec *resultstore.BatchRecord) BatchResponse {
	resp := BatchResponse{
		ID:           rec.Batch.ID,
		Image:        rec.Batch.Image,
		Folder:       rec.Batch.Folder,
		Pattern:      rec.Batch.Pattern,
		Timeout:      rec.Batch.Timeout.String(),
		Parallelism:  rec.Batch.Parallelism,
		ExtraArgs:    rec.Batch.ExtraArgs,
		StartedAt:    rec.Batch.StartedAt.Format("2006-01-02T15:04:05Z07:00"),
		Total:        rec.Summary.Total,
		Completed:    rec.Summary.Completed,
		TimedOut:     rec.Summary.TimedOut,
		LaunchFailed: rec.Summary.LaunchFailed,
		Interrupted:  rec.Summary.Interrupted,
	}
	if rec.Batch.FinishedAt != nil {
		resp.FinishedAt = rec.Batch.FinishedAt.Format("2006-01-02T15:04:05Z07:00")
	}
	return resp
}

func runToResponse(r *domain.Run) RunResponse {
	return RunResponse{
		Seq:         r.Seq,
		Input:       r.InputPath,
		RunDir:      r.RunDir,
		Outcome:     string(r.Outcome),
		ExitCode:    r.ExitCode,
		ElapsedSecs: r.Elapsed.Seconds(),
		Error:       r.Error,
	}
}

func (s *Server) statusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		batches, err := s.store.ListBatches(0)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, StatusResponse{Batches: len(batches)})
	}
}

func (s *Server) listBatchesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		batches, err := s.store.ListBatches(0)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}

		resp := make([]BatchResponse, 0, len(batches))
		for _, b := range batches {
			resp = append(resp, batchToResponse(b))
		}
		writeJSON(w, resp)
	}
}

// batchRunsHandler serves /api/batches/{id} and /api/batches/{id}/runs
func (s *Server) batchRunsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rest := strings.TrimPrefix(r.URL.Path, "/api/batches/")
		id := strings.TrimSuffix(rest, "/runs")
		if id == "" {
			writeError(w, http.StatusBadRequest, "batch id required")
			return
		}

		if strings.HasSuffix(rest, "/runs") {
			runs, err := s.store.ListRuns(id)
			if err != nil {
				writeError(w, http.StatusInternalServerError, err.Error())
				return
			}
			resp := make([]RunResponse, 0, len(runs))
			for _, run := range runs {
				resp = append(resp, runToResponse(run))
			}
			writeJSON(w, resp)
			return
		}

		rec, err := s.store.GetBatch(id)
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "batch not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, batchToResponse(rec))
	}
}
