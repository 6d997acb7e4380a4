package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/nguyentantai21042004/transcript-flow/internal/history"
)

func init() {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Show recent runs and aggregate statistics",
		Run:   runRuns,
	}

	cmd.Flags().IntP("limit", "l", 10, "Max runs listed")
	cmd.Flags().Bool("json", false, "Print raw JSON instead of the table")

	RootCmd.AddCommand(cmd)
}

func runRuns(cmd *cobra.Command, args []string) {
	limit, _ := cmd.Flags().GetInt("limit")
	asJSON, _ := cmd.Flags().GetBool("json")

	cfg, err := loadConfig()
	if err != nil {
		exitErr("startup", err)
	}

	store, err := history.New(cfg.History.Path)
	if err != nil {
		exitErr("open history", err)
	}
	defer store.Close()

	runs, err := store.ListRuns(cmd.Context(), limit)
	if err != nil {
		exitErr("list runs", err)
	}
	stats, err := store.Stats(cmd.Context())
	if err != nil {
		exitErr("stats", err)
	}

	if asJSON {
		b, _ := json.MarshalIndent(map[string]any{"runs": runs, "stats": stats}, "", "  ")
		fmt.Println(string(b))
		return
	}

	if len(runs) == 0 {
		fmt.Println("no runs recorded yet")
		return
	}

	fmt.Printf("%-26s  %-9s  %-24s  %5s  %3s  %5s  %8s\n",
		"ID", "STATUS", "SOURCE", "SEGS", "Q", "FID", "TIME")
	for _, r := range runs {
		fmt.Printf("%-26s  %-9s  %-24s  %5d  %3d  %5.2f  %8s\n",
			r.ID, r.Status, truncate(r.Source, 24), r.Segments, r.Questions,
			r.Fidelity, (time.Duration(r.DurationMS) * time.Millisecond).Round(100*time.Millisecond))
	}

	fmt.Println()
	successRate := 0.0
	if stats.TotalRuns > 0 {
		successRate = float64(stats.Completed) / float64(stats.TotalRuns) * 100
	}
	fmt.Printf("%d runs total: %d completed, %d failed (%.0f%% success)\n",
		stats.TotalRuns, stats.Completed, stats.Failed, successRate)
	fmt.Printf("segments %d, questions %d, model retries %d\n",
		stats.TotalSegments, stats.TotalQuestions, stats.TotalRetries)
	fmt.Printf("avg duration %s, avg fidelity %.2f\n",
		(time.Duration(stats.AvgDurationMS) * time.Millisecond).Round(100*time.Millisecond),
		stats.AvgFidelity)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return "..." + s[len(s)-n+3:]
}
