package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/nguyentantai21042004/transcript-flow/internal/agents"
	"github.com/nguyentantai21042004/transcript-flow/internal/assembler"
	"github.com/nguyentantai21042004/transcript-flow/internal/history"
	"github.com/nguyentantai21042004/transcript-flow/internal/progress"
	"github.com/nguyentantai21042004/transcript-flow/internal/segmenter"
	"github.com/nguyentantai21042004/transcript-flow/internal/transcript"
	"github.com/nguyentantai21042004/transcript-flow/internal/verify"
)

// Process orchestrates the entire transcript processing pipeline.
func (p *implPipeline) Process(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	runID := req.RunID
	if runID == "" {
		runID = ulid.Make().String()
	}

	p.logger.Info(ctx, "========================================")
	p.logger.Info(ctx, "Starting transcript processing: %s", req.Source)
	p.logger.Info(ctx, "Run ID: %s", runID)
	p.logger.Info(ctx, "========================================")

	notify := func(e progress.Event) {
		e.RunID = runID
		if req.Progress != nil {
			req.Progress(e)
		}
	}
	fail := func(err error) (*Result, error) {
		p.logger.Error(ctx, "Processing failed: %v", err)
		notify(progress.Event{Stage: progress.StageFailed, Message: err.Error()})
		p.saveRun(ctx, &history.Run{
			ID:           runID,
			Source:       req.Source,
			Status:       history.StatusFailed,
			ErrorMessage: err.Error(),
			DurationMS:   time.Since(start).Milliseconds(),
		})
		return nil, err
	}

	content := req.Content
	if isSubtitle(req.Source) {
		content = transcript.FromSubtitle(content)
	}
	sourceWords := transcript.CountWords(content)
	if sourceWords == 0 {
		return fail(fmt.Errorf("no words in %s", req.Source))
	}

	// Step 1: detect content format
	notify(progress.Event{Stage: progress.StageDetecting})
	det := p.deps.Detector.Detect(content)
	p.logger.Info(ctx, "Step 1: Detected %s (confidence %.2f)", det.Format, det.Confidence)

	// Step 2: route to an agent chain
	chainID, err := p.route(ctx, det, req.AgentOverride)
	if err != nil {
		return fail(err)
	}
	chain, ok := p.deps.Registry.Chain(chainID)
	if !ok {
		return fail(fmt.Errorf("no chain registered for %s", chainID))
	}
	p.logger.Info(ctx, "Step 2: Routed to agent chain %s", chainID)

	// Step 3: segment
	notify(progress.Event{Stage: progress.StageSegmenting})
	var segs []segmenter.Segment
	var method string
	if chainID == agents.ChainMeeting {
		segs, method = p.deps.Segmenter.Conversational(ctx, content)
	} else {
		segs, method = p.deps.Segmenter.Segment(ctx, content)
	}
	if len(segs) == 0 {
		return fail(fmt.Errorf("segmentation produced no segments for %s", req.Source))
	}
	p.logger.Info(ctx, "Step 3: Segmented into %d parts via %s", len(segs), method)

	result := &Result{
		Title:            titleFor(req.Source),
		FormatDetected:   string(det.Format),
		FormatConfidence: det.Confidence,
		AgentUsed:        chainID.String(),
		Method:           method,
		Segments:         segs,
		Stats: RunStats{
			RunID:       runID,
			SourceWords: sourceWords,
			Segments:    len(segs),
		},
	}

	if req.DryRun {
		p.logger.Info(ctx, "Dry run: stopping after segmentation")
		result.Stats.Duration = time.Since(start)
		notify(progress.Event{Stage: progress.StageDone, Total: len(segs)})
		return result, nil
	}

	if p.deps.LLM == nil {
		return fail(fmt.Errorf("no model configured for %s", req.Source))
	}

	// Step 4: load reference material for prompt context
	reference, refNames := loadReferences(ctx, req.ReferenceDocs, p.logger)

	// Step 5: run the chain over every segment
	processed, retries, err := p.executeAll(ctx, chain, segs, det.Participants, reference, notify)
	if err != nil {
		return fail(err)
	}
	result.Processed = processed
	result.Stats.Retries = retries

	failedSegs, questions := 0, 0
	for _, r := range processed {
		if r.Failed {
			failedSegs++
			continue
		}
		questions += len(r.QAPairs)
	}
	result.Stats.FailedSegments = failedSegs
	result.Stats.Questions = questions

	if failedSegs == len(segs) {
		return fail(fmt.Errorf("all %d segments failed for %s", len(segs), req.Source))
	}

	if t := firstTitle(processed); t != "" {
		result.Title = t
	}

	// Step 6: assemble the final document
	notify(progress.Event{Stage: progress.StageAssembling, Total: len(segs)})
	result.Document = p.deps.Assembler.Build(assembler.Input{
		Title:         result.Title,
		Source:        req.Source,
		GeneratedAt:   time.Now(),
		Method:        method,
		AgentUsed:     chainID.String(),
		SourceWords:   sourceWords,
		ReferenceDocs: refNames,
		Segments:      segs,
		Processed:     processed,
	})

	// Step 7: score faithfulness of the transformed text
	notify(progress.Event{Stage: progress.StageVerifying})
	result.Verification = verifyRun(chainID, segs, processed)
	result.Stats.Fidelity = result.Verification.Overall.Fidelity
	result.Stats.Hallucination = result.Verification.Overall.Hallucination
	if !result.Verification.Pass {
		p.logger.Warn(ctx, "Verification flagged segments: fidelity %.2f, hallucination %.2f",
			result.Verification.Overall.Fidelity, result.Verification.Overall.Hallucination)
	}

	result.Stats.Duration = time.Since(start)

	p.saveRun(ctx, &history.Run{
		ID:             runID,
		Source:         req.Source,
		Title:          result.Title,
		Status:         history.StatusCompleted,
		Format:         result.FormatDetected,
		Method:         method,
		AgentUsed:      chainID.String(),
		SourceWords:    sourceWords,
		Segments:       len(segs),
		FailedSegments: failedSegs,
		Questions:      questions,
		Retries:        retries,
		Fidelity:       result.Stats.Fidelity,
		Hallucination:  result.Stats.Hallucination,
		DurationMS:     result.Stats.Duration.Milliseconds(),
	})

	p.logger.Info(ctx, "========================================")
	p.logger.Info(ctx, "Processing completed successfully!")
	p.logger.Info(ctx, "Segments: %d (%d failed)", len(segs), failedSegs)
	p.logger.Info(ctx, "Questions generated: %d", questions)
	p.logger.Info(ctx, "Model retries: %d", retries)
	p.logger.Info(ctx, "Processing time: %s", result.Stats.Duration)
	p.logger.Info(ctx, "========================================")

	notify(progress.Event{Stage: progress.StageDone, Total: len(segs)})
	return result, nil
}

func (p *implPipeline) saveRun(ctx context.Context, run *history.Run) {
	if p.deps.History == nil {
		return
	}
	if err := p.deps.History.SaveRun(ctx, run); err != nil {
		p.logger.Warn(ctx, "Failed to save run history: %v", err)
	}
}

// verifyRun scores the transform chains. Meeting minutes restructure
// content on purpose, so they skip the faithfulness gate.
func verifyRun(chainID agents.ChainID, segs []segmenter.Segment, processed []agents.Result) verify.Report {
	if chainID != agents.ChainLinear {
		return verify.Report{Pass: true, Overall: verify.Scores{Retention: 1, Fidelity: 1}}
	}

	byID := make(map[int]agents.Result, len(processed))
	for _, r := range processed {
		byID[r.SegmentID] = r
	}

	var pairs []verify.Pair
	for _, seg := range segs {
		r, ok := byID[seg.ID]
		if !ok || r.Failed {
			continue
		}
		pairs = append(pairs, verify.Pair{ID: seg.ID, Source: seg.Text, Processed: r.ProcessedText})
	}
	return verify.Evaluate(pairs, verify.DefaultThresholds)
}

func firstTitle(processed []agents.Result) string {
	for _, r := range processed {
		if !r.Failed && strings.TrimSpace(r.Title) != "" {
			return strings.TrimSpace(r.Title)
		}
	}
	return ""
}

func isSubtitle(source string) bool {
	switch strings.ToLower(filepath.Ext(source)) {
	case ".srt", ".vtt":
		return true
	}
	return false
}

// titleFor derives a readable default title from the source file name.
func titleFor(source string) string {
	base := filepath.Base(source)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.NewReplacer("-", " ", "_", " ").Replace(base)

	words := strings.Fields(base)
	for i, w := range words {
		r := []rune(w)
		if len(r) > 0 {
			words[i] = strings.ToUpper(string(r[0])) + string(r[1:])
		}
	}
	if len(words) == 0 {
		return "Processed Transcript"
	}
	return strings.Join(words, " ")
}
