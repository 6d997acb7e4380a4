// Package cli implements the transcript-flow commands.
package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/nguyentantai21042004/transcript-flow/internal/agents"
	"github.com/nguyentantai21042004/transcript-flow/internal/assembler"
	"github.com/nguyentantai21042004/transcript-flow/internal/config"
	"github.com/nguyentantai21042004/transcript-flow/internal/detector"
	"github.com/nguyentantai21042004/transcript-flow/internal/embedding"
	"github.com/nguyentantai21042004/transcript-flow/internal/history"
	"github.com/nguyentantai21042004/transcript-flow/internal/llm"
	"github.com/nguyentantai21042004/transcript-flow/internal/logger"
	"github.com/nguyentantai21042004/transcript-flow/internal/output"
	"github.com/nguyentantai21042004/transcript-flow/internal/pipeline"
	"github.com/nguyentantai21042004/transcript-flow/internal/progress"
	"github.com/nguyentantai21042004/transcript-flow/internal/segmenter"
)

var (
	configPath string
	presetFlag string
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "transcript-flow",
	Short: "Turn raw transcripts into structured study documents",
	Long: "Transcript-flow segments lectures, talks and meetings semantically, runs each\n" +
		"segment through a Gemini agent chain (punctuation, formatting, titles, Q&A or\n" +
		"meeting minutes) and assembles one reviewed markdown or DOCX document.",
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "Config file path")
	RootCmd.PersistentFlags().StringVar(&presetFlag, "preset", "", "Tuning preset: balanced, conservative, fast, intelligent")
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if presetFlag != "" {
		if err := cfg.ApplyPreset(presetFlag); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// app bundles the wired dependency graph behind the commands.
type app struct {
	cfg     *config.Config
	log     logger.Logger
	pipe    pipeline.Pipeline
	store   history.Store
	tracker *progress.Tracker
	writer  output.Writer
}

// buildApp wires everything. withModel controls whether Gemini API keys
// are required; dry runs and programmatic-only work run without them.
func buildApp(withModel bool, modeOverride string) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if modeOverride != "" {
		cfg.Segmentation.Mode = modeOverride
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	log := logger.New(cfg.Logging.Level)

	var factory llm.Factory
	if withModel {
		factory, err = llm.NewGeminiFactory(cfg.Gemini.APIKeys, cfg.Gemini.Model,
			time.Duration(cfg.Agents.RequestTimeout)*time.Second, log)
		if err != nil {
			return nil, err
		}
	}

	embedder, err := embedding.New(cfg.Embedding.Provider, cfg.Embedding.URL, cfg.Embedding.Model)
	if err != nil {
		return nil, err
	}

	store, err := history.New(cfg.History.Path)
	if err != nil {
		return nil, err
	}

	asm := assembler.New()
	pipe := pipeline.New(cfg, pipeline.Deps{
		Detector:  detector.New(log),
		Segmenter: segmenter.New(cfg.Segmentation, factory, embedder, log),
		Registry:  agents.NewRegistry(),
		LLM:       factory,
		Assembler: asm,
		History:   store,
	}, log)

	return &app{
		cfg:     cfg,
		log:     log,
		pipe:    pipe,
		store:   store,
		tracker: progress.NewTracker(),
		writer:  output.New(cfg.Output.Format, asm, log),
	}, nil
}

func (a *app) Close() {
	if a.store != nil {
		a.store.Close()
	}
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
