package pipeline

import (
	"context"
	"fmt"

	"github.com/nguyentantai21042004/transcript-flow/internal/agents"
	"github.com/nguyentantai21042004/transcript-flow/internal/detector"
)

// route maps the detected format to an agent chain. Meeting treatment
// requires the detector's confidence to clear the configured bar;
// anything below it gets the linear chain, which is safe for any prose.
// An explicit override wins over detection.
func (p *implPipeline) route(ctx context.Context, det detector.Result, override string) (agents.ChainID, error) {
	if override != "" {
		id, err := agents.ParseChainID(override)
		if err != nil {
			return 0, fmt.Errorf("agent override: %w", err)
		}
		p.logger.Info(ctx, "Agent override in effect: %s", id)
		return id, nil
	}

	if det.Format == detector.FormatMeeting && det.Confidence >= p.cfg.Segmentation.MeetingConfidence {
		return agents.ChainMeeting, nil
	}
	return agents.ChainLinear, nil
}
