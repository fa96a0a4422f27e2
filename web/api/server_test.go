package api

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/adf-bdd/benchdock/internal/domain"
	"github.com/adf-bdd/benchdock/internal/resultstore"
)

type fakeStore struct {
	batches []*resultstore.BatchRecord
	runs    map[string][]*domain.Run
}

func (f *fakeStore) ListBatches(limit int) ([]*resultstore.BatchRecord, error) {
	return f.batches, nil
}

func (f *fakeStore) GetBatch(id string) (*resultstore.BatchRecord, error) {
	for _, b := range f.batches {
		if b.Batch.ID == id {
			return b, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeStore) ListRuns(batchID string) ([]*domain.Run, error) {
	return f.runs[batchID], nil
}

func newTestServer() *Server {
	finished := time.Now()
	store := &fakeStore{
		batches: []*resultstore.BatchRecord{
			{
				Batch: domain.Batch{
					ID:          "b1",
					Image:       "adfbdd/tsconj:latest",
					Folder:      "/corpus",
					Timeout:     time.Minute,
					Parallelism: 2,
					StartedAt:   time.Now().Add(-time.Minute),
					FinishedAt:  &finished,
				},
				Summary: domain.BatchSummary{Total: 2, Completed: 1, TimedOut: 1},
			},
		},
		runs: map[string][]*domain.Run{
			"b1": {
				{Seq: 1, InputPath: "/corpus/a.txt", Outcome: domain.OutcomeCompleted},
				{Seq: 2, InputPath: "/corpus/b.txt", Outcome: domain.OutcomeTimedOut},
			},
		},
	}
	return NewServer(store, "127.0.0.1:0")
}

func TestListBatchesHandler(t *testing.T) {
	srv := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/api/batches", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var resp []BatchResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if len(resp) != 1 {
		t.Fatalf("got %d batches, want 1", len(resp))
	}
	if resp[0].ID != "b1" || resp[0].TimedOut != 1 {
		t.Errorf("batch = %+v", resp[0])
	}
}

func TestGetBatchHandler(t *testing.T) {
	srv := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/api/batches/b1", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var resp BatchResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Image != "adfbdd/tsconj:latest" {
		t.Errorf("Image = %q", resp.Image)
	}
}

func TestGetBatchHandler_NotFound(t *testing.T) {
	srv := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/api/batches/missing", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestBatchRunsHandler(t *testing.T) {
	srv := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/api/batches/b1/runs", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var resp []RunResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if len(resp) != 2 {
		t.Fatalf("got %d runs, want 2", len(resp))
	}
	if resp[1].Outcome != "timed_out" {
		t.Errorf("runs[1].Outcome = %q, want timed_out", resp[1].Outcome)
	}
}

func TestStatusHandler(t *testing.T) {
	srv := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var resp StatusResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Batches != 1 {
		t.Errorf("Batches = %d, want 1", resp.Batches)
	}
}
