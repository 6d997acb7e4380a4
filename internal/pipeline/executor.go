package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nguyentantai21042004/transcript-flow/internal/agents"
	"github.com/nguyentantai21042004/transcript-flow/internal/llm"
	"github.com/nguyentantai21042004/transcript-flow/internal/progress"
	"github.com/nguyentantai21042004/transcript-flow/internal/retry"
	"github.com/nguyentantai21042004/transcript-flow/internal/segmenter"
)

// pacer spaces model requests to stay inside the provider's rate limit.
type pacer struct {
	delay time.Duration
	last  time.Time
}

func (pc *pacer) wait(ctx context.Context) error {
	if pc.delay <= 0 {
		return nil
	}
	if !pc.last.IsZero() {
		if rem := pc.delay - time.Since(pc.last); rem > 0 {
			t := time.NewTimer(rem)
			defer t.Stop()
			select {
			case <-t.C:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	pc.last = time.Now()
	return nil
}

// executeAll runs the chain over every segment. A segment failure is
// isolated: the loop keeps going and the failed segment keeps its
// original text. Only context cancellation stops the run.
func (p *implPipeline) executeAll(ctx context.Context, chain agents.Chain, segs []segmenter.Segment, participants []string, reference string, notify func(progress.Event)) ([]agents.Result, int, error) {
	handler := retry.New(retry.Config{
		MaxRetries: p.cfg.Agents.MaxRetries,
		BaseDelay:  time.Duration(p.cfg.Agents.RetryBaseDelay) * time.Second,
	}, p.logger)
	pace := &pacer{delay: time.Duration(p.cfg.Agents.DelayBetweenRequests) * time.Second}

	results := make([]agents.Result, 0, len(segs))
	for i, seg := range segs {
		if err := ctx.Err(); err != nil {
			return results, int(handler.Retries()), err
		}

		notify(progress.Event{Stage: progress.StageProcessing, Segment: i + 1, Total: len(segs), Message: seg.Metadata.Topic})
		p.logger.Info(ctx, "Processing segment %d/%d: %s", i+1, len(segs), seg.Metadata.Topic)

		res := p.executeSegment(ctx, chain, seg, i+1, len(segs), participants, reference, handler, pace)
		if res.Failed {
			p.logger.Warn(ctx, "Segment %d failed: %s", seg.ID, res.ErrorMessage)
			notify(progress.Event{Stage: progress.StageProcessing, Segment: i + 1, Total: len(segs),
				Message: fmt.Sprintf("segment %d failed", seg.ID)})
		}
		results = append(results, res)
	}

	return results, int(handler.Retries()), nil
}

// executeSegment opens a fresh model session so nothing carries over
// between segments, then feeds each step's output into the next.
func (p *implPipeline) executeSegment(ctx context.Context, chain agents.Chain, seg segmenter.Segment, position, total int, participants []string, reference string, handler *retry.Handler, pace *pacer) agents.Result {
	result := agents.Result{SegmentID: seg.ID, AgentUsed: chain.ID.String()}

	client, err := p.deps.LLM(ctx)
	if err != nil {
		result.Failed = true
		result.ProcessedText = seg.Text
		result.ErrorMessage = fmt.Sprintf("create session: %v", err)
		return result
	}
	defer client.Close()

	segParticipants := seg.Metadata.Participants
	if len(segParticipants) == 0 {
		segParticipants = participants
	}

	working := seg.Text
	for _, step := range chain.Steps {
		prompt := step.Render(agents.StepInput{
			Text:         working,
			Position:     position,
			Total:        total,
			Topic:        seg.Metadata.Topic,
			Keywords:     seg.Metadata.Keywords,
			Concepts:     seg.Metadata.KeyConcepts,
			SectionType:  seg.Metadata.SectionType,
			Participants: segParticipants,
			Reference:    reference,
			Questions:    p.cfg.Agents.QuestionsPerSegment,
		})

		var out string
		err := handler.Do(ctx, func() error {
			if err := pace.wait(ctx); err != nil {
				return err
			}
			var gerr error
			out, gerr = client.Generate(ctx, llm.Request{
				Prompt:      prompt,
				Temperature: step.Temperature,
				MaxTokens:   step.MaxTokens,
			})
			return gerr
		})
		if err != nil {
			result.Failed = true
			result.ProcessedText = seg.Text
			result.ErrorMessage = fmt.Sprintf("%s: %v", step.Name, err)
			return result
		}

		switch step.Kind {
		case agents.StepTransform:
			if t := strings.TrimSpace(out); t != "" {
				working = t
			} else {
				p.logger.Warn(ctx, "Step %s returned empty text, keeping previous version", step.Name)
			}
		case agents.StepTitle:
			result.Title = agents.ParseTitle(out)
		case agents.StepQA:
			result.QAPairs = agents.ParseQA(out)
		case agents.StepMeeting:
			body, pairs := agents.SplitQA(out)
			if strings.TrimSpace(body) != "" {
				working = strings.TrimSpace(body)
			} else {
				working = strings.TrimSpace(out)
			}
			result.QAPairs = pairs
		}
	}

	result.ProcessedText = working
	return result
}
