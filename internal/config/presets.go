package config

import (
	"fmt"
	"sort"
)

type preset struct {
	mode           string
	delay          int
	maxRetries     int
	retryBaseDelay int
}

// Presets trade processing speed against rate-limit headroom. "fast" skips
// the AI planning call entirely, "conservative" spaces requests widest and
// retries hardest.
var presets = map[string]preset{
	"fast":         {mode: "programmatic", delay: 10, maxRetries: 2, retryBaseDelay: 30},
	"balanced":     {mode: "auto", delay: 20, maxRetries: 3, retryBaseDelay: 60},
	"intelligent":  {mode: "intelligent", delay: 30, maxRetries: 3, retryBaseDelay: 60},
	"conservative": {mode: "auto", delay: 45, maxRetries: 5, retryBaseDelay: 90},
}

// ApplyPreset overwrites the tuning knobs with a named preset. Preset
// values are complete, so this is safe before or after Validate.
func (c *Config) ApplyPreset(name string) error {
	p, ok := presets[name]
	if !ok {
		return fmt.Errorf("unknown preset %q (valid: %s)", name, presetNames())
	}

	c.Segmentation.Mode = p.mode
	c.Agents.DelayBetweenRequests = p.delay
	c.Agents.MaxRetries = p.maxRetries
	c.Agents.RetryBaseDelay = p.retryBaseDelay
	return nil
}

func presetNames() string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)

	out := ""
	for i, name := range names {
		if i > 0 {
			out += ", "
		}
		out += name
	}
	return out
}
