package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/nguyentantai21042004/transcript-flow/internal/config"
	"github.com/nguyentantai21042004/transcript-flow/internal/history"
	"github.com/nguyentantai21042004/transcript-flow/internal/logger"
	"github.com/nguyentantai21042004/transcript-flow/internal/pipeline"
	"github.com/nguyentantai21042004/transcript-flow/internal/progress"
)

type fakePipeline struct {
	res  *pipeline.Result
	err  error
	reqs chan pipeline.Request
}

func (f *fakePipeline) Process(ctx context.Context, req pipeline.Request) (*pipeline.Result, error) {
	if f.reqs != nil {
		f.reqs <- req
	}
	return f.res, f.err
}

type fakeHistory struct {
	runs  []history.Run
	stats *history.Stats
}

func (f *fakeHistory) SaveRun(ctx context.Context, run *history.Run) error { return nil }

func (f *fakeHistory) GetRun(ctx context.Context, id string) (*history.Run, error) {
	for i := range f.runs {
		if f.runs[i].ID == id {
			return &f.runs[i], nil
		}
	}
	return nil, history.ErrNotFound
}

func (f *fakeHistory) ListRuns(ctx context.Context, limit int) ([]history.Run, error) {
	if limit > len(f.runs) {
		limit = len(f.runs)
	}
	return f.runs[:limit], nil
}

func (f *fakeHistory) Stats(ctx context.Context) (*history.Stats, error) {
	return f.stats, nil
}

func (f *fakeHistory) Close() error { return nil }

type fakeOutput struct {
	writes chan string
}

func (f *fakeOutput) Write(title, document, mdPath string) ([]string, error) {
	if f.writes != nil {
		f.writes <- mdPath
	}
	return []string{mdPath}, nil
}

func newTestServer(t *testing.T, deps Deps) *implServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	cfg.Paths.Output = t.TempDir()
	return New(cfg, deps, logger.Nop()).(*implServer)
}

func doJSON(t *testing.T, r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(t, Deps{Pipeline: &fakePipeline{}})

	w := doJSON(t, s.router(), http.MethodGet, "/api/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field = %q, want ok", body["status"])
	}
	if body["model"] == "" {
		t.Error("model field missing")
	}
}

func TestProcessEndpointStartsRun(t *testing.T) {
	fp := &fakePipeline{
		res:  &pipeline.Result{Title: "Notes", Document: "# Notes"},
		reqs: make(chan pipeline.Request, 1),
	}
	out := &fakeOutput{writes: make(chan string, 1)}
	s := newTestServer(t, Deps{Pipeline: fp, Output: out})

	w := doJSON(t, s.router(), http.MethodPost, "/api/process",
		`{"source": "notes.txt", "content": "some transcript text", "agent": "linear"}`)
	if w.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202: %s", w.Code, w.Body.String())
	}

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	runID := body["run_id"]
	if runID == "" {
		t.Fatal("response missing run_id")
	}

	select {
	case req := <-fp.reqs:
		if req.RunID != runID {
			t.Errorf("pipeline run id = %q, want the one returned to the client", req.RunID)
		}
		if req.Source != "notes.txt" || req.AgentOverride != "linear" {
			t.Errorf("pipeline request = %+v, want source and agent forwarded", req)
		}
	case <-time.After(time.Second):
		t.Fatal("pipeline was not invoked")
	}

	select {
	case mdPath := <-out.writes:
		if !strings.Contains(mdPath, runID) {
			t.Errorf("output path %q does not embed the run id", mdPath)
		}
		if !strings.HasSuffix(mdPath, ".md") {
			t.Errorf("output path %q is not markdown", mdPath)
		}
	case <-time.After(time.Second):
		t.Fatal("output was not written")
	}
}

func TestProcessEndpointRejectsBadInput(t *testing.T) {
	s := newTestServer(t, Deps{Pipeline: &fakePipeline{}})
	r := s.router()

	tests := []struct {
		name string
		body string
	}{
		{"empty content", `{"source": "a.txt", "content": "   "}`},
		{"missing content", `{"source": "a.txt"}`},
		{"malformed json", `{"source": `},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, r, http.MethodPost, "/api/process", tt.body)
			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", w.Code)
			}
		})
	}
}

func TestListRunsEndpoint(t *testing.T) {
	store := &fakeHistory{runs: []history.Run{
		{ID: "r1", Source: "a.txt", Status: history.StatusCompleted},
		{ID: "r2", Source: "b.txt", Status: history.StatusFailed},
	}}
	s := newTestServer(t, Deps{Pipeline: &fakePipeline{}, History: store})
	r := s.router()

	w := doJSON(t, r, http.MethodGet, "/api/runs", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var body struct {
		Runs  []history.Run `json:"runs"`
		Count int           `json:"count"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if body.Count != 2 || len(body.Runs) != 2 {
		t.Errorf("count = %d with %d runs, want 2", body.Count, len(body.Runs))
	}

	if w := doJSON(t, r, http.MethodGet, "/api/runs?limit=1", ""); w.Code != http.StatusOK {
		t.Errorf("limit=1 status = %d, want 200", w.Code)
	}
	if w := doJSON(t, r, http.MethodGet, "/api/runs?limit=0", ""); w.Code != http.StatusBadRequest {
		t.Errorf("limit=0 status = %d, want 400", w.Code)
	}
	if w := doJSON(t, r, http.MethodGet, "/api/runs?limit=abc", ""); w.Code != http.StatusBadRequest {
		t.Errorf("limit=abc status = %d, want 400", w.Code)
	}
}

func TestListRunsWithoutHistory(t *testing.T) {
	s := newTestServer(t, Deps{Pipeline: &fakePipeline{}})

	w := doJSON(t, s.router(), http.MethodGet, "/api/runs", "")
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503 when history is disabled", w.Code)
	}
}

func TestGetRunEndpoint(t *testing.T) {
	store := &fakeHistory{runs: []history.Run{{ID: "r1", Source: "a.txt"}}}
	tracker := progress.NewTracker()
	s := newTestServer(t, Deps{Pipeline: &fakePipeline{}, History: store, Tracker: tracker})
	r := s.router()

	w := doJSON(t, r, http.MethodGet, "/api/runs/r1", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var run history.Run
	if err := json.Unmarshal(w.Body.Bytes(), &run); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if run.ID != "r1" {
		t.Errorf("run id = %q, want r1", run.ID)
	}

	if w := doJSON(t, r, http.MethodGet, "/api/runs/missing", ""); w.Code != http.StatusNotFound {
		t.Errorf("missing run status = %d, want 404", w.Code)
	}

	// A run with progress but no history row is still executing.
	tracker.Publish(progress.Event{RunID: "live", Stage: progress.StageProcessing})
	w = doJSON(t, r, http.MethodGet, "/api/runs/live", "")
	if w.Code != http.StatusOK {
		t.Fatalf("in-flight run status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), "processing") {
		t.Errorf("in-flight body = %s, want processing marker", w.Body.String())
	}
}

func TestStatsEndpoint(t *testing.T) {
	store := &fakeHistory{stats: &history.Stats{TotalRuns: 7, Completed: 6, Failed: 1}}
	s := newTestServer(t, Deps{Pipeline: &fakePipeline{}, History: store})

	w := doJSON(t, s.router(), http.MethodGet, "/api/stats", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var stats history.Stats
	if err := json.Unmarshal(w.Body.Bytes(), &stats); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if stats.TotalRuns != 7 || stats.Completed != 6 {
		t.Errorf("stats = %+v, want the store values", stats)
	}
}

func TestProgressWebsocket(t *testing.T) {
	tracker := progress.NewTracker()
	s := newTestServer(t, Deps{Pipeline: &fakePipeline{}, Tracker: tracker})

	ts := httptest.NewServer(s.router())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/progress/run-9"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dialing websocket: %v", err)
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	tracker.Publish(progress.Event{RunID: "run-9", Stage: progress.StageSegmenting})

	var e progress.Event
	if err := conn.ReadJSON(&e); err != nil {
		t.Fatalf("reading first event: %v", err)
	}
	if e.Stage != progress.StageSegmenting || e.RunID != "run-9" {
		t.Errorf("event = %+v, want the segmenting stage", e)
	}

	tracker.Publish(progress.Event{RunID: "run-9", Stage: progress.StageDone})
	if err := conn.ReadJSON(&e); err != nil {
		t.Fatalf("reading terminal event: %v", err)
	}
	if e.Stage != progress.StageDone {
		t.Errorf("stage = %q, want done", e.Stage)
	}

	// After the terminal event the server closes the stream cleanly.
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Error("stream stayed open after the terminal event")
	} else if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
		t.Errorf("close error = %v, want normal closure", err)
	}
}

func TestProgressWebsocketFinishedRun(t *testing.T) {
	tracker := progress.NewTracker()
	tracker.Publish(progress.Event{RunID: "old", Stage: progress.StageDone})
	s := newTestServer(t, Deps{Pipeline: &fakePipeline{}, Tracker: tracker})

	ts := httptest.NewServer(s.router())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/progress/old"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dialing websocket: %v", err)
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var e progress.Event
	if err := conn.ReadJSON(&e); err != nil {
		t.Fatalf("reading replayed event: %v", err)
	}
	if e.Stage != progress.StageDone {
		t.Errorf("stage = %q, want the final event replayed", e.Stage)
	}
	if _, _, err := conn.ReadMessage(); !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
		t.Errorf("close error = %v, want normal closure", err)
	}
}
