package main

import (
	"os"

	"github.com/nguyentantai21042004/transcript-flow/internal/cli"
)

func main() {
	if err := cli.RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
