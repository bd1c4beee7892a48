// stackrow is a board-game backend for two line-completion variants:
// gravity connect-four (7x6, win 4, column drops) and free-placement
// five-in-a-row (15x15, win 5). A minimax engine with a tactical scanner
// plays both; the server exposes the game over HTTP and websockets.
//
// Usage:
//
//	stackrow serve               - Run the game server
//	stackrow selfplay            - Pit two presets against each other
//
// Global flags:
//
//	--preset <name>   - Difficulty preset (easy|medium|hard)
//	--presets <path>  - YAML file overriding the built-in presets
//	--seed <value>    - Tie-break seed (0 = preset default)
//	--log-level <lvl> - Log level (debug|info|warn|error)
package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	flagPresetName  string
	flagPresetsPath string
	flagSeed        int64
	flagLogLevel    string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "stackrow",
	Short: "stackrow - adversarial search backend for line-completion games",
	Long: `stackrow plays gravity connect-four and free-placement five-in-a-row
with a shared minimax engine.

Available commands:
  serve     - Run the HTTP/websocket game server
  selfplay  - Run AI-vs-AI games and record the results

Examples:
  stackrow serve --variant connect --preset hard
  stackrow serve --variant freestyle --addr :9090
  stackrow selfplay --games 100 --black easy --white hard`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if level, err := log.ParseLevel(flagLogLevel); err == nil {
			log.SetLevel(level)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagPresetName, "preset", "hard", "Difficulty preset")
	rootCmd.PersistentFlags().StringVar(&flagPresetsPath, "presets", "", "Path to a YAML presets file")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "Tie-break seed (0 = preset default)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level")
}
