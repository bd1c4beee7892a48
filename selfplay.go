package main

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	flagSelfplayGames   int
	flagSelfplayBlack   string
	flagSelfplayWhite   string
	flagSelfplayVariant string
	flagSelfplayDB      string
)

var selfplayCmd = &cobra.Command{
	Use:   "selfplay",
	Short: "Run AI-vs-AI games and record the results",
	Long: `Play a batch of games between two presets and store the outcomes in
a local SQLite database. The tie-break seed is offset per game so the
batch explores different lines instead of replaying one game N times.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		presets, err := LoadPresets(flagPresetsPath)
		if err != nil {
			return err
		}
		blackConfig, err := StrategyForPreset(presets, flagSelfplayBlack)
		if err != nil {
			return err
		}
		whiteConfig, err := StrategyForPreset(presets, flagSelfplayWhite)
		if err != nil {
			return err
		}
		settings := SettingsForVariant(Variant(flagSelfplayVariant))
		if string(settings.Variant) != flagSelfplayVariant {
			return fmt.Errorf("unknown variant %q", flagSelfplayVariant)
		}
		settings.BlackType = PlayerAI
		settings.WhiteType = PlayerAI
		if flagSeed != 0 {
			blackConfig.TieBreakSeed = uint64(flagSeed)
			whiteConfig.TieBreakSeed = uint64(flagSeed) + 1
		}

		store, err := OpenSelfplayStore(flagSelfplayDB)
		if err != nil {
			return err
		}
		defer store.Close()

		for i := 0; i < flagSelfplayGames; i++ {
			gameSettings := settings
			gameSettings.BlackStrategy = blackConfig
			gameSettings.WhiteStrategy = whiteConfig
			gameSettings.BlackStrategy.TieBreakSeed += uint64(i)
			gameSettings.WhiteStrategy.TieBreakSeed += uint64(i)

			result, err := runSelfplayGame(gameSettings)
			if err != nil {
				return err
			}
			result.BlackPreset = flagSelfplayBlack
			result.WhitePreset = flagSelfplayWhite
			if _, err := store.SaveResult(result); err != nil {
				return err
			}
			log.Info("selfplay game finished",
				"n", i+1,
				"of", flagSelfplayGames,
				"winner", result.Winner,
				"plies", result.Plies,
				"duration_ms", result.DurationMs,
			)
		}

		summary, err := store.Summary(settings.Variant, flagSelfplayBlack, flagSelfplayWhite)
		if err != nil {
			return err
		}
		log.Info("selfplay summary",
			"variant", settings.Variant,
			"black", flagSelfplayBlack,
			"white", flagSelfplayWhite,
			"games", summary.Games,
			"black_wins", summary.BlackWins,
			"white_wins", summary.WhiteWins,
			"draws", summary.Draws,
			"avg_plies", fmt.Sprintf("%.1f", summary.AvgPlies),
		)
		return nil
	},
}

func init() {
	selfplayCmd.Flags().IntVar(&flagSelfplayGames, "games", 10, "Number of games to play")
	selfplayCmd.Flags().StringVar(&flagSelfplayBlack, "black", "hard", "Preset for black")
	selfplayCmd.Flags().StringVar(&flagSelfplayWhite, "white", "hard", "Preset for white")
	selfplayCmd.Flags().StringVar(&flagSelfplayVariant, "variant", string(VariantConnect), "Game variant (connect|freestyle)")
	selfplayCmd.Flags().StringVar(&flagSelfplayDB, "db", "~/.stackrow/selfplay.db", "Path to the results database")
	rootCmd.AddCommand(selfplayCmd)
}

// runSelfplayGame plays one game to completion with synchronous searches,
// no worker goroutines involved.
func runSelfplayGame(settings GameSettings) (SelfplayResult, error) {
	engine := GetConfig()
	black, err := NewStrategy(settings, settings.BlackStrategy, engine)
	if err != nil {
		return SelfplayResult{}, err
	}
	white, err := NewStrategy(settings, settings.WhiteStrategy, engine)
	if err != nil {
		return SelfplayResult{}, err
	}
	black.UseCache(NewSearchCache(engine))
	white.UseCache(NewSearchCache(engine))

	game := NewGame(settings)
	game.Start()
	start := time.Now()
	maxPlies := settings.Rows * settings.Cols
	for ply := 0; ply < maxPlies; ply++ {
		state := game.State()
		if state.Status != StatusRunning {
			break
		}
		strategy := black
		if state.ToMove == PlayerWhite {
			strategy = white
		}
		move, ok := strategy.GetBestMove(state)
		if !ok {
			break
		}
		if applied, reason := game.TryApplyMove(move); !applied {
			return SelfplayResult{}, fmt.Errorf("selfplay: engine produced illegal move (%d,%d): %s", move.X, move.Y, reason)
		}
	}

	state := game.State()
	return SelfplayResult{
		GameID:     game.ID(),
		Variant:    settings.Variant,
		Winner:     winnerFromStatus(state.Status),
		Plies:      game.History().Size(),
		DurationMs: time.Since(start).Milliseconds(),
	}, nil
}
