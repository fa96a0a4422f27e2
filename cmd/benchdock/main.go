package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath string
	rootCmd    = &cobra.Command{
		Use:   "benchdock",
		Short: "benchdock - benchmark driver for containerized solvers",
		Long: `benchdock runs benchmark batches of dockerized solvers against a corpus
of problem instances. It launches one container per matching input file,
enforces per-run timeouts, bounds parallelism, and collects stdout/stderr
and timing data into per-run result directories.`,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
