package cli

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nguyentantai21042004/transcript-flow/internal/server"
)

func init() {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API with live progress over websockets",
		Long: "Serve the JSON API: submit transcripts with POST /api/process, read run\n" +
			"history with GET /api/runs, and follow a run live on /ws/progress/<id>.",
		Run: runServe,
	}

	cmd.Flags().String("addr", "", "Listen address (default from config, usually :8080)")

	RootCmd.AddCommand(cmd)
}

func runServe(cmd *cobra.Command, args []string) {
	addr, _ := cmd.Flags().GetString("addr")

	a, err := buildApp(true, "")
	if err != nil {
		exitErr("startup", err)
	}
	defer a.Close()

	if addr != "" {
		a.cfg.Server.Addr = addr
	}

	srv := server.New(a.cfg, server.Deps{
		Pipeline: a.pipe,
		History:  a.store,
		Tracker:  a.tracker,
		Output:   a.writer,
	}, a.log)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx); err != nil {
		exitErr("serve", err)
	}
}
