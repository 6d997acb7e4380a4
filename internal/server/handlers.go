package server

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/oklog/ulid/v2"

	"github.com/nguyentantai21042004/transcript-flow/internal/history"
	"github.com/nguyentantai21042004/transcript-flow/internal/pipeline"
)

// processRequest is the POST /api/process payload.
type processRequest struct {
	Source        string   `json:"source"`
	Content       string   `json:"content"`
	Agent         string   `json:"agent"`
	ReferenceDocs []string `json:"reference_docs"`
}

func (s *implServer) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"model":  s.cfg.Gemini.Model,
	})
}

// handleProcess accepts a transcript and starts an asynchronous run. The
// response carries the run id; progress is available on the websocket
// feed and the finished run in history.
func (s *implServer) handleProcess(c *gin.Context) {
	var req processRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "content is required"})
		return
	}
	if req.Source == "" {
		req.Source = "upload.txt"
	}

	runID := ulid.Make().String()
	go s.execute(runID, req)

	c.JSON(http.StatusAccepted, gin.H{
		"run_id": runID,
		"source": req.Source,
	})
}

// execute runs the pipeline detached from the request. The run id is
// assigned before the goroutine starts so the client can subscribe to
// progress immediately.
func (s *implServer) execute(runID string, req processRequest) {
	ctx := context.Background()

	res, err := s.deps.Pipeline.Process(ctx, pipeline.Request{
		RunID:         runID,
		Source:        req.Source,
		Content:       req.Content,
		ReferenceDocs: req.ReferenceDocs,
		AgentOverride: req.Agent,
		Progress:      s.deps.Tracker.Publish,
	})
	if err != nil {
		s.logger.Error(ctx, "Run %s failed: %v", runID, err)
		return
	}

	if s.deps.Output == nil {
		return
	}
	mdPath := filepath.Join(s.cfg.Paths.Output, outputName(req.Source, runID))
	if _, err := s.deps.Output.Write(res.Title, res.Document, mdPath); err != nil {
		s.logger.Error(ctx, "Run %s: writing output: %v", runID, err)
	}
}

// outputName builds a collision-free file name for API runs, which can
// submit the same source name repeatedly.
func outputName(source, runID string) string {
	base := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	if base == "" || base == "." {
		base = "transcript"
	}
	return base + "_" + runID + ".md"
}

func (s *implServer) handleListRuns(c *gin.Context) {
	if s.deps.History == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "run history is disabled"})
		return
	}

	limit := 20
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 200 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 200"})
			return
		}
		limit = n
	}

	runs, err := s.deps.History.ListRuns(c.Request.Context(), limit)
	if err != nil {
		s.logger.Error(c.Request.Context(), "Listing runs: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "listing runs failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs, "count": len(runs)})
}

// handleGetRun serves finished runs from history. A run that is still
// executing has no row yet, so the tracker's latest event stands in for
// it.
func (s *implServer) handleGetRun(c *gin.Context) {
	if s.deps.History == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "run history is disabled"})
		return
	}
	id := c.Param("id")

	run, err := s.deps.History.GetRun(c.Request.Context(), id)
	if err == nil {
		c.JSON(http.StatusOK, run)
		return
	}
	if !errors.Is(err, history.ErrNotFound) {
		s.logger.Error(c.Request.Context(), "Loading run %s: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "loading run failed"})
		return
	}

	if e, ok := s.deps.Tracker.Last(id); ok && !e.Terminal() {
		c.JSON(http.StatusOK, gin.H{"id": id, "status": "processing", "progress": e})
		return
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "run not found"})
}

func (s *implServer) handleStats(c *gin.Context) {
	if s.deps.History == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "run history is disabled"})
		return
	}

	stats, err := s.deps.History.Stats(c.Request.Context())
	if err != nil {
		s.logger.Error(c.Request.Context(), "Loading stats: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "loading stats failed"})
		return
	}
	c.JSON(http.StatusOK, stats)
}
