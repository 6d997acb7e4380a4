package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/nguyentantai21042004/transcript-flow/internal/agents"
	"github.com/nguyentantai21042004/transcript-flow/internal/pipeline"
	"github.com/nguyentantai21042004/transcript-flow/internal/progress"
)

func init() {
	cmd := &cobra.Command{
		Use:   "process <file>",
		Short: "Process one transcript file",
		Long: "Process one transcript file end to end: detect its format, segment it,\n" +
			"run the agent chain over every segment and write the assembled document.",
		Example: "  transcript-flow process lecture.txt\n" +
			"  transcript-flow process standup.srt --agent meeting\n" +
			"  transcript-flow process talk.txt --documents slides.md --dry-run",
		Args: cobra.ExactArgs(1),
		Run:  runProcess,
	}

	cmd.Flags().StringP("agent", "a", "", "Force an agent chain: linear or meeting")
	cmd.Flags().StringP("mode", "m", "", "Segmentation mode: auto, programmatic or intelligent")
	cmd.Flags().StringSliceP("documents", "d", nil, "Reference documents included as prompt context")
	cmd.Flags().Bool("dry-run", false, "Print the segmentation plan without calling the model")
	cmd.Flags().StringP("output", "o", "", "Output markdown path (default: <output dir>/<name>_processed.md)")

	RootCmd.AddCommand(cmd)
}

func runProcess(cmd *cobra.Command, args []string) {
	agent, _ := cmd.Flags().GetString("agent")
	mode, _ := cmd.Flags().GetString("mode")
	docs, _ := cmd.Flags().GetStringSlice("documents")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	outPath, _ := cmd.Flags().GetString("output")

	a, err := buildApp(!dryRun, mode)
	if err != nil {
		exitErr("startup", err)
	}
	defer a.Close()

	res, written, err := a.processFile(cmd.Context(), args[0], fileOptions{
		agent:    agent,
		docs:     docs,
		dryRun:   dryRun,
		outPath:  outPath,
		progress: printProgress,
	})
	if err != nil {
		exitErr("process", err)
	}

	if dryRun {
		printPlan(res)
		return
	}
	printSummary(res, written)
}

// fileOptions tunes one processFile call.
type fileOptions struct {
	agent    string
	docs     []string
	dryRun   bool
	outPath  string
	archive  bool
	progress func(progress.Event)
}

// processFile runs one transcript file end to end and writes its outputs.
// With archive set the source moves to the archived directory afterwards,
// which is how watch mode marks files as done.
func (a *app) processFile(ctx context.Context, path string, opts fileOptions) (*pipeline.Result, []string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read transcript: %w", err)
	}

	res, err := a.pipe.Process(ctx, pipeline.Request{
		Source:        path,
		Content:       string(data),
		ReferenceDocs: opts.docs,
		AgentOverride: opts.agent,
		DryRun:        opts.dryRun,
		Progress:      opts.progress,
	})
	if err != nil {
		return nil, nil, err
	}
	if opts.dryRun {
		return res, nil, nil
	}

	outPath := opts.outPath
	if outPath == "" {
		base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		outPath = filepath.Join(a.cfg.Paths.Output, base+"_processed.md")
	}
	written, err := a.writer.Write(res.Title, res.Document, outPath)
	if err != nil {
		return res, written, err
	}

	if opts.archive {
		if err := a.archiveSource(ctx, path); err != nil {
			a.log.Warn(ctx, "Failed to archive %s: %v", path, err)
		}
	}
	return res, written, nil
}

// archiveSource moves a processed file out of the watch directory so it
// is not picked up again.
func (a *app) archiveSource(ctx context.Context, path string) error {
	if err := os.MkdirAll(a.cfg.Paths.Archived, 0o755); err != nil {
		return fmt.Errorf("create archive directory: %w", err)
	}
	dest := filepath.Join(a.cfg.Paths.Archived, filepath.Base(path))
	a.log.Info(ctx, "Archiving %s -> %s", path, dest)
	if err := os.Rename(path, dest); err != nil {
		return fmt.Errorf("move to archive: %w", err)
	}
	return nil
}

// printProgress writes a compact stage line to stdout. Detailed logging
// goes to stderr, so this stays readable when piped.
func printProgress(e progress.Event) {
	switch e.Stage {
	case progress.StageProcessing:
		if e.Total > 0 {
			fmt.Printf("  segment %d/%d %s\n", e.Segment, e.Total, e.Message)
		}
	case progress.StageDone, progress.StageFailed:
	default:
		fmt.Printf("  %s...\n", e.Stage)
	}
}

func printPlan(res *pipeline.Result) {
	fmt.Printf("Dry run: %s segmentation, %d segments over %d words\n",
		res.Method, len(res.Segments), res.Stats.SourceWords)
	for _, seg := range res.Segments {
		topic := seg.Metadata.Topic
		if topic == "" {
			topic = "(no topic)"
		}
		fmt.Printf("  %2d. words %6d-%-6d  %s\n", seg.ID, seg.WordRange[0], seg.WordRange[1], topic)
	}
	fmt.Printf("Detected %s (confidence %.2f), agent chain %s\n",
		res.FormatDetected, res.FormatConfidence, res.AgentUsed)
}

func printSummary(res *pipeline.Result, written []string) {
	fmt.Printf("\n%s\n", res.Title)
	fmt.Printf("  format: %s (%.2f)  method: %s  agent: %s\n",
		res.FormatDetected, res.FormatConfidence, res.Method, res.AgentUsed)
	fmt.Printf("  segments: %d (%d failed)  questions: %d  retries: %d\n",
		res.Stats.Segments, res.Stats.FailedSegments, res.Stats.Questions, res.Stats.Retries)
	if res.AgentUsed == agents.ChainLinear.String() {
		fmt.Printf("  fidelity: %.2f  hallucination: %.2f\n",
			res.Stats.Fidelity, res.Stats.Hallucination)
	}
	fmt.Printf("  duration: %s\n", res.Stats.Duration.Round(100*time.Millisecond))
	for _, p := range written {
		fmt.Printf("  wrote %s\n", p)
	}
}
