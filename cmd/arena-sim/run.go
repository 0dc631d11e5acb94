package main

import (
	"fmt"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gridspire/arena-server-go/internal/bot"
	"github.com/gridspire/arena-server-go/internal/catalog"
	"github.com/gridspire/arena-server-go/internal/game"
)

const (
	seatA = "botA"
	seatB = "botB"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Simulate bot-versus-bot matches",
	Long: `Plays a batch of matches between two scripted bots and prints win
rates and match lengths. A fixed --seed makes the whole batch reproducible;
without one every match draws from the clock.`,
	Run: func(cmd *cobra.Command, args []string) {
		matches, _ := cmd.Flags().GetInt("matches")
		seed, _ := cmd.Flags().GetInt64("seed")
		turnLimit, _ := cmd.Flags().GetInt("turn-limit")

		if matches < 1 {
			fmt.Println("Error: --matches must be at least 1")
			os.Exit(1)
		}

		logger := zap.NewNop()
		if debugLogging {
			var err error
			logger, err = zap.NewDevelopment()
			if err != nil {
				fmt.Printf("Error: failed to build logger: %v\n", err)
				os.Exit(1)
			}
		}

		cards := catalog.Default()
		engine := game.NewEngine(logger, cards)

		fmt.Printf("Simulating %d matches over %d cards...\n", matches, cards.Size())
		bar := progressbar.Default(int64(matches), "Simulating")

		wins := map[string]int{}
		unfinished := 0
		totalTurns := 0
		start := time.Now()

		for i := 0; i < matches; i++ {
			if seed != 0 {
				engine.SetSeed(seed + int64(i))
			}
			matchID := fmt.Sprintf("sim-%04d", i)
			winner, turns, err := bot.PlayMatch(engine, matchID, seatA, seatB, turnLimit, logger)
			if err != nil {
				fmt.Printf("\nError: match %s failed: %v\n", matchID, err)
				os.Exit(1)
			}
			if winner == "" {
				unfinished++
			} else {
				wins[winner]++
			}
			totalTurns += turns
			bar.Add(1)
		}

		fmt.Println("\nResults:")
		fmt.Printf("  %s wins:      %d\n", seatA, wins[seatA])
		fmt.Printf("  %s wins:      %d\n", seatB, wins[seatB])
		fmt.Printf("  unfinished:     %d\n", unfinished)
		fmt.Printf("  average turns:  %.1f\n", float64(totalTurns)/float64(matches))
		fmt.Printf("  elapsed:        %s\n", time.Since(start).Round(time.Millisecond))
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().Int("matches", 100, "Number of matches to simulate")
	runCmd.Flags().Int64("seed", 0, "Base seed; match i plays with seed+i (0 draws from the clock)")
	runCmd.Flags().Int("turn-limit", 400, "Abandon a match after this many turns")
}
