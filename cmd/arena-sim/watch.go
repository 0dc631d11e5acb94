package main

import (
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"github.com/gridspire/arena-server-go/internal/game"
	"github.com/gridspire/arena-server-go/internal/game/rules"
)

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch MATCH_ID",
	Short: "Stream a live match from a running server",
	Long: `Subscribes to a match's event stream over the server websocket and
prints every event as it arrives. The subscription is read-only: it works for
matches played by bots, by the HTTP API or both, and Ctrl-C detaches without
disturbing the match. Pass --player to watch from a seat's perspective.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		server, _ := cmd.Flags().GetString("server")
		playerID, _ := cmd.Flags().GetString("player")
		matchID := args[0]

		wsURL, err := streamURL(server, matchID, playerID)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}

		conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
		if err != nil {
			fmt.Printf("Error: cannot reach %s: %v\n", wsURL, err)
			os.Exit(1)
		}
		if resp != nil {
			resp.Body.Close()
		}
		defer conn.Close()

		interrupt := make(chan os.Signal, 1)
		signal.Notify(interrupt, os.Interrupt)

		events := make(chan game.MatchNotification)
		readErrs := make(chan error, 1)
		go func() {
			for {
				var n game.MatchNotification
				if err := conn.ReadJSON(&n); err != nil {
					readErrs <- err
					return
				}
				events <- n
			}
		}()

		fmt.Printf("Watching match %s (Ctrl-C to detach)\n", matchID)
		for {
			select {
			case n := <-events:
				fmt.Println(formatNotification(n))
				if n.Type == string(rules.EventMatchOver) {
					return
				}
			case err := <-readErrs:
				if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					return
				}
				fmt.Printf("Error: stream closed: %v\n", err)
				os.Exit(1)
			case <-interrupt:
				conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
		}
	},
}

// streamURL turns a server address into the websocket subscription URL.
// Bare host:port addresses get an http scheme first.
func streamURL(server, matchID, playerID string) (string, error) {
	if !strings.Contains(server, "://") {
		server = "http://" + server
	}
	u, err := url.Parse(server)
	if err != nil {
		return "", fmt.Errorf("invalid server address %q: %w", server, err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	u.Path = "/ws"
	query := u.Query()
	query.Set("match_id", matchID)
	if playerID != "" {
		query.Set("player_id", playerID)
	}
	u.RawQuery = query.Encode()
	return u.String(), nil
}

// formatNotification renders one event as a terminal line.
func formatNotification(n game.MatchNotification) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  %-22s", n.Timestamp.Format("15:04:05"), n.Type)
	if n.PlayerID != "" {
		fmt.Fprintf(&b, " %s", n.PlayerID)
	}
	if desc, ok := n.Data["description"].(string); ok && desc != "" {
		fmt.Fprintf(&b, "  %s", desc)
	}
	// JSON numbers decode as float64.
	if amount, ok := n.Data["amount"].(float64); ok && amount != 0 {
		fmt.Fprintf(&b, " (%d)", int(amount))
	}
	return b.String()
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().String("server", "localhost:8080", "Server address hosting the match")
	watchCmd.Flags().String("player", "", "Watch from this player's perspective")
}
