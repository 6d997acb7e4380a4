package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nguyentantai21042004/transcript-flow/internal/config"
	"github.com/nguyentantai21042004/transcript-flow/internal/watcher"
)

func init() {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch the input directory and process new transcripts",
		Long: "Watch the configured input directory. New transcript files are processed\n" +
			"end to end, outputs land in the output directory and sources move to the\n" +
			"archive directory. Runs until interrupted; in-flight files finish first.",
		Run: runWatch,
	}

	RootCmd.AddCommand(cmd)
}

func runWatch(cmd *cobra.Command, args []string) {
	a, err := buildApp(true, "")
	if err != nil {
		exitErr("startup", err)
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := ensureDirectories(a.cfg); err != nil {
		exitErr("create directories", err)
	}

	handler := func(ctx context.Context, path string) error {
		_, _, err := a.processFile(ctx, path, fileOptions{
			archive:  true,
			progress: a.tracker.Publish,
		})
		return err
	}

	w, err := watcher.New(a.cfg.Paths.Input, handler, a.log, a.cfg.Performance.MaxConcurrent)
	if err != nil {
		exitErr("create watcher", err)
	}
	defer w.Stop()

	a.log.Info(ctx, "========================================")
	a.log.Info(ctx, "Transcript pipeline is ready!")
	a.log.Info(ctx, "Monitoring: %s", a.cfg.Paths.Input)
	a.log.Info(ctx, "Output: %s", a.cfg.Paths.Output)
	a.log.Info(ctx, "Archive: %s", a.cfg.Paths.Archived)
	a.log.Info(ctx, "Concurrent files: %d", a.cfg.Performance.MaxConcurrent)
	a.log.Info(ctx, "Press Ctrl+C to stop")
	a.log.Info(ctx, "========================================")

	if err := w.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		exitErr("watch", err)
	}
}

// ensureDirectories creates required directories if they don't exist
func ensureDirectories(cfg *config.Config) error {
	dirs := []string{cfg.Paths.Input, cfg.Paths.Output, cfg.Paths.Archived}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}
