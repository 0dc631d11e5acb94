package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var debugLogging bool

var rootCmd = &cobra.Command{
	Use:   "arena-sim",
	Short: "Offline match simulator for the arena rules engine",
	Long: `arena-sim runs scripted bots against the embedded card set without a
server. It is the quickest way to sanity-check rule or card changes: run a
batch of matches and watch the win rates and match lengths move.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debugLogging, "debug", false, "Log every engine decision")
}
