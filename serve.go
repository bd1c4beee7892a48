package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
)

var (
	flagAddr          string
	flagKafkaBrokers  []string
	flagKafkaTopic    string
	flagServerVariant string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the game server",
	Long: `Serve the HTTP API and websocket feed for a single game session.

The server drives the game loop: human moves arrive over /api/move, AI
moves are searched on a worker and applied on the next tick. Board and
status updates are broadcast to websocket clients.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		presets, err := LoadPresets(flagPresetsPath)
		if err != nil {
			return err
		}
		settings, err := settingsFromFlags(flagServerVariant, presets)
		if err != nil {
			return err
		}
		analytics := NewAnalyticsProducer(flagKafkaBrokers, flagKafkaTopic)
		defer analytics.Close()
		return runServer(flagAddr, settings, presets, analytics)
	},
}

func init() {
	serveCmd.Flags().StringVar(&flagAddr, "addr", ":8080", "Listen address")
	serveCmd.Flags().StringVar(&flagServerVariant, "variant", string(VariantConnect), "Game variant (connect|freestyle)")
	serveCmd.Flags().StringSliceVar(&flagKafkaBrokers, "kafka-brokers", nil, "Kafka brokers for analytics events (empty = disabled)")
	serveCmd.Flags().StringVar(&flagKafkaTopic, "kafka-topic", "stackrow.events", "Kafka topic for analytics events")
	rootCmd.AddCommand(serveCmd)
}

func settingsFromFlags(variant string, presets map[string]Preset) (GameSettings, error) {
	settings := SettingsForVariant(Variant(variant))
	if Variant(variant) != settings.Variant {
		return GameSettings{}, fmt.Errorf("unknown variant %q", variant)
	}
	strategy, err := StrategyForPreset(presets, flagPresetName)
	if err != nil {
		return GameSettings{}, err
	}
	settings.BlackStrategy = strategy
	settings.WhiteStrategy = strategy
	if flagSeed != 0 {
		settings.BlackStrategy.TieBreakSeed = uint64(flagSeed)
		settings.WhiteStrategy.TieBreakSeed = uint64(flagSeed)
	}
	return settings, nil
}

type StatusResponse struct {
	GameID          string            `json:"game_id"`
	Settings        GameSettingsDTO   `json:"settings"`
	Config          Config            `json:"config"`
	Board           [][]int           `json:"board"`
	NextPlayer      int               `json:"next_player"`
	Winner          int               `json:"winner"`
	Rows            int               `json:"rows"`
	Cols            int               `json:"cols"`
	WinLength       int               `json:"win_length"`
	Gravity         bool              `json:"gravity"`
	Status          string            `json:"status"`
	AiThinking      bool              `json:"ai_thinking"`
	History         []historyEntryDTO `json:"history"`
	WinningLine     []Move            `json:"winning_line"`
	TurnStartedAtMs int64             `json:"turn_started_at_ms"`
}

type GameSettingsDTO struct {
	Variant     string `json:"variant"`
	Mode        string `json:"mode"`
	HumanPlayer int    `json:"human_player"`
}

type apiMove struct {
	X   int  `json:"x"`
	Y   int  `json:"y"`
	Col *int `json:"col,omitempty"`
}

type historyEntryDTO struct {
	X         int     `json:"x"`
	Y         int     `json:"y"`
	Player    int     `json:"player"`
	ElapsedMs float64 `json:"elapsed_ms"`
	IsAi      bool    `json:"is_ai"`
	Depth     int     `json:"depth"`
}

type historyPayload struct {
	History []historyEntryDTO `json:"history"`
}

type resetPayload struct {
	GameID          string            `json:"game_id"`
	History         []historyEntryDTO `json:"history"`
	NextPlayer      int               `json:"next_player"`
	Winner          int               `json:"winner"`
	Status          string            `json:"status"`
	Rows            int               `json:"rows"`
	Cols            int               `json:"cols"`
	WinLength       int               `json:"win_length"`
	Gravity         bool              `json:"gravity"`
	TurnStartedAtMs int64             `json:"turn_started_at_ms"`
}

type settingsPayload struct {
	Settings GameSettingsDTO `json:"settings"`
	Config   Config          `json:"config"`
}

type analysisResponse struct {
	NextPlayer    int     `json:"next_player"`
	WinningMoves  []Move  `json:"winning_moves"`
	BlockingMoves []Move  `json:"blocking_moves"`
	Evaluation    float64 `json:"evaluation"`
}

type ttCacheStatusResponse struct {
	Count      int     `json:"count"`
	Capacity   int     `json:"capacity"`
	Usage      float64 `json:"usage"`
	Full       bool    `json:"full"`
	Generation uint32  `json:"generation"`
}

type ttCacheEntryDTO struct {
	Hash        string `json:"hash"`
	Hits        uint32 `json:"hits"`
	Depth       int    `json:"depth"`
	Score       int32  `json:"score"`
	Flag        string `json:"flag"`
	BestMove    Move   `json:"best_move"`
	GenWritten  uint32 `json:"gen_written"`
	GenLastUsed uint32 `json:"gen_last_used"`
}

type ttCacheEntriesResponse struct {
	Items  []ttCacheEntryDTO `json:"items"`
	Offset int               `json:"offset"`
	Limit  int               `json:"limit"`
	Total  int               `json:"total"`
}

func runServer(addr string, settings GameSettings, presets map[string]Preset, analytics *AnalyticsProducer) error {
	controller := NewGameController(settings)
	hub := NewHub()
	// Shared by the analysis endpoint and the tt cache endpoints.
	analysisCache := NewSearchCache(GetConfig())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go hub.Run(ctx.Done())
	go func() {
		ticker := time.NewTicker(50 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if controller.Tick() {
					publishMoveApplied(controller, hub, analytics)
				}
			}
		}
	}()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/api/ping", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})

	r.Get("/api/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, controllerStatus(controller))
	})

	r.Post("/api/start", func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Settings GameSettingsDTO `json:"settings"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
			return
		}
		next, err := settingsFromDTO(payload.Settings, controller.Settings(), presets)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		controller.StartGame(next)
		writeJSON(w, http.StatusOK, controllerStatus(controller))
		hub.BroadcastReset(resetFromController(controller))
	})

	resetHandler := func(w http.ResponseWriter, r *http.Request) {
		controller.Reset(controller.Settings())
		writeJSON(w, http.StatusOK, controllerStatus(controller))
		hub.BroadcastReset(resetFromController(controller))
	}
	r.Post("/api/stop", resetHandler)
	r.Post("/api/reset", resetHandler)

	r.Post("/api/settings", func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Settings *GameSettingsDTO `json:"settings"`
			Config   *Config          `json:"config"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
			return
		}
		if payload.Config != nil {
			configStore.Update(*payload.Config)
			controller.ResetForConfigChange()
		}
		if payload.Settings != nil {
			next, err := settingsFromDTO(*payload.Settings, controller.Settings(), presets)
			if err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
				return
			}
			controller.UpdateSettings(next, false)
		}
		hub.BroadcastSettings(settingsPayload{
			Settings: controllerSettingsDTO(controller.Settings()),
			Config:   GetConfig(),
		})
		writeJSON(w, http.StatusOK, controllerStatus(controller))
	})

	r.Post("/api/move", func(w http.ResponseWriter, r *http.Request) {
		var payload apiMove
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
			return
		}
		var applied bool
		var errMsg string
		if payload.Col != nil {
			applied, errMsg = controller.ApplyHumanDrop(*payload.Col)
		} else {
			move := Move{X: payload.X, Y: payload.Y}
			settings := controller.Settings()
			if !move.InBounds(settings.Rows, settings.Cols) {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "move out of bounds"})
				return
			}
			applied, errMsg = controller.ApplyHumanMove(move)
		}
		if !applied {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": errMsg})
			return
		}
		publishMoveApplied(controller, hub, analytics)
		writeJSON(w, http.StatusOK, controllerStatus(controller))
	})

	r.Get("/api/analysis", func(w http.ResponseWriter, r *http.Request) {
		state := controller.State()
		engine := GetConfig()
		strategy, err := NewStrategy(controller.Settings(), DefaultStrategyConfig(), engine)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		strategy.UseCache(analysisCache)
		writeJSON(w, http.StatusOK, analysisResponse{
			NextPlayer:    playerToInt(state.ToMove),
			WinningMoves:  strategy.WinningMoves(state),
			BlockingMoves: strategy.BlockingMoves(state),
			Evaluation:    strategy.Evaluate(state),
		})
	})

	r.Get("/api/cache/tt", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, ttCacheStatus(analysisCache))
	})
	r.Delete("/api/cache/tt", func(w http.ResponseWriter, r *http.Request) {
		if analysisCache.TT != nil {
			analysisCache.TT.Clear()
		}
		writeJSON(w, http.StatusOK, map[string]any{"cleared": true})
	})
	r.Get("/api/cache/tt/entries", func(w http.ResponseWriter, r *http.Request) {
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		if limit <= 0 {
			limit = 10
		}
		if limit > 100 {
			limit = 100
		}
		if offset < 0 {
			offset = 0
		}
		writeJSON(w, http.StatusOK, ttCacheEntries(analysisCache, offset, limit))
	})

	r.Get("/ws/", func(w http.ResponseWriter, r *http.Request) {
		serveWS(hub, controller, w, r)
	})

	server := &http.Server{
		Addr:    addr,
		Handler: r,
	}
	serverErrCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrCh <- err
		}
		close(serverErrCh)
	}()

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	log.Info("server listening", "addr", addr, "variant", controller.Settings().Variant)
	var runErr error
	select {
	case <-sigCtx.Done():
		log.Info("shutdown signal received")
	case err, ok := <-serverErrCh:
		if ok {
			runErr = err
			log.Error("server error", "err", err)
		}
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("graceful shutdown failed", "err", err)
		if closeErr := server.Close(); closeErr != nil && !errors.Is(closeErr, http.ErrServerClosed) {
			log.Error("forced close failed", "err", closeErr)
		}
	}
	cancel()
	return runErr
}

func publishMoveApplied(controller *GameController, hub *Hub, analytics *AnalyticsProducer) {
	state := controller.State()
	entry, hasEntry := controller.LatestHistoryEntry()
	if hasEntry {
		analytics.PublishMove(controller.GameID(), controller.Settings().Variant, entry, controller.History().Size())
	}
	if hub.HasClients() {
		if hasEntry {
			hub.BroadcastHistory(historyPayload{History: []historyEntryDTO{historyEntryToDTO(entry)}})
		}
		settings := controller.Settings()
		hub.BroadcastBoard(boardPayload{
			Variant:     settings.Variant,
			Gravity:     settings.Gravity,
			Board:       boardToSlice(state.Board),
			NextPlayer:  playerToInt(state.ToMove),
			Winner:      winnerFromStatus(state.Status),
			WinningLine: append([]Move(nil), state.WinningLine...),
			MoveCount:   controller.History().Size(),
			Status:      statusToString(state.Status),
			AiThinking:  controller.AiThinking(),
			History:     historyToDTO(controller.History()),
		})
		hub.BroadcastStatus(controllerStatus(controller))
	}
	if isTerminalStatus(state.Status) {
		analytics.PublishResult(controller.GameID(), controller.Settings().Variant, winnerFromStatus(state.Status), controller.History().Size())
	}
}

func serveWS(hub *Hub, controller *GameController, w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	client := &Client{hub: hub, send: make(chan []byte, 16)}
	hub.Register(client)

	client.sendMessage("status", controllerStatus(controller))

	go func() {
		defer conn.Close()
		_ = client.writePump(conn)
	}()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			hub.Unregister(client)
			return
		}
		var msg wsMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			continue
		}
		switch msg.Type {
		case "request_status":
			client.sendMessage("status", controllerStatus(controller))
		}
	}
}

func controllerStatus(controller *GameController) StatusResponse {
	state := controller.State()
	settings := controller.Settings()
	return StatusResponse{
		GameID:          controller.GameID(),
		Settings:        controllerSettingsDTO(settings),
		Config:          GetConfig(),
		Board:           boardToSlice(state.Board),
		NextPlayer:      playerToInt(state.ToMove),
		Winner:          winnerFromStatus(state.Status),
		Rows:            settings.Rows,
		Cols:            settings.Cols,
		WinLength:       settings.WinLength,
		Gravity:         settings.Gravity,
		Status:          statusToString(state.Status),
		AiThinking:      controller.AiThinking(),
		History:         historyToDTO(controller.History()),
		WinningLine:     append([]Move(nil), state.WinningLine...),
		TurnStartedAtMs: controller.CurrentTurnStartedAtMs(),
	}
}

func settingsFromDTO(dto GameSettingsDTO, base GameSettings, presets map[string]Preset) (GameSettings, error) {
	settings := base
	if dto.Variant != "" && Variant(dto.Variant) != base.Variant {
		settings = SettingsForVariant(Variant(dto.Variant))
		if string(settings.Variant) != dto.Variant {
			return GameSettings{}, fmt.Errorf("unknown variant %q", dto.Variant)
		}
		settings.BlackStrategy = base.BlackStrategy
		settings.WhiteStrategy = base.WhiteStrategy
		if !settings.Gravity {
			settings.BlackStrategy.ForkScan = ForkScanAllRows
			settings.WhiteStrategy.ForkScan = ForkScanAllRows
		}
	}
	switch dto.Mode {
	case "ai_vs_ai":
		settings.BlackType = PlayerAI
		settings.WhiteType = PlayerAI
	case "human_vs_human":
		settings.BlackType = PlayerHuman
		settings.WhiteType = PlayerHuman
	case "ai_vs_human":
		if dto.HumanPlayer == 2 {
			settings.BlackType = PlayerAI
			settings.WhiteType = PlayerHuman
		} else {
			settings.BlackType = PlayerHuman
			settings.WhiteType = PlayerAI
		}
	}
	return settings, nil
}

func controllerSettingsDTO(settings GameSettings) GameSettingsDTO {
	mode := "ai_vs_human"
	if settings.BlackType == PlayerAI && settings.WhiteType == PlayerAI {
		mode = "ai_vs_ai"
	} else if settings.BlackType == PlayerHuman && settings.WhiteType == PlayerHuman {
		mode = "human_vs_human"
	}
	humanPlayer := 0
	if settings.BlackType == PlayerHuman && settings.WhiteType != PlayerHuman {
		humanPlayer = 1
	} else if settings.WhiteType == PlayerHuman && settings.BlackType != PlayerHuman {
		humanPlayer = 2
	} else if settings.BlackType == PlayerHuman && settings.WhiteType == PlayerHuman {
		humanPlayer = 1
	}
	return GameSettingsDTO{Variant: string(settings.Variant), Mode: mode, HumanPlayer: humanPlayer}
}

func boardToSlice(board Board) [][]int {
	rows := make([][]int, board.Rows())
	for y := 0; y < board.Rows(); y++ {
		rows[y] = make([]int, board.Cols())
		for x := 0; x < board.Cols(); x++ {
			rows[y][x] = cellToInt(board.At(x, y))
		}
	}
	return rows
}

func cellToInt(cell Cell) int {
	switch cell {
	case CellBlack:
		return 1
	case CellWhite:
		return 2
	default:
		return 0
	}
}

func playerToInt(player PlayerColor) int {
	if player == PlayerBlack {
		return 1
	}
	return 2
}

func winnerFromStatus(status GameStatus) int {
	switch status {
	case StatusBlackWon:
		return 1
	case StatusWhiteWon:
		return 2
	default:
		return 0
	}
}

func statusToString(status GameStatus) string {
	switch status {
	case StatusNotStarted:
		return "not_started"
	case StatusBlackWon:
		return "black_won"
	case StatusWhiteWon:
		return "white_won"
	case StatusDraw:
		return "draw"
	default:
		return "running"
	}
}

func historyToDTO(history MoveHistory) []historyEntryDTO {
	entries := history.All()
	result := make([]historyEntryDTO, 0, len(entries))
	for _, entry := range entries {
		result = append(result, historyEntryToDTO(entry))
	}
	return result
}

func historyEntryToDTO(entry HistoryEntry) historyEntryDTO {
	return historyEntryDTO{
		X:         entry.Move.X,
		Y:         entry.Move.Y,
		Player:    playerToInt(entry.Player),
		ElapsedMs: entry.ElapsedMs,
		IsAi:      entry.IsAi,
		Depth:     entry.Depth,
	}
}

func resetFromController(controller *GameController) resetPayload {
	state := controller.State()
	settings := controller.Settings()
	return resetPayload{
		GameID:          controller.GameID(),
		History:         historyToDTO(controller.History()),
		NextPlayer:      playerToInt(state.ToMove),
		Winner:          winnerFromStatus(state.Status),
		Status:          statusToString(state.Status),
		Rows:            settings.Rows,
		Cols:            settings.Cols,
		WinLength:       settings.WinLength,
		Gravity:         settings.Gravity,
		TurnStartedAtMs: controller.CurrentTurnStartedAtMs(),
	}
}

func ttCacheStatus(cache *SearchCache) ttCacheStatusResponse {
	if cache == nil || cache.TT == nil {
		return ttCacheStatusResponse{}
	}
	count := cache.TT.Count()
	capacity := cache.TT.Capacity()
	usage := 0.0
	full := false
	if capacity > 0 {
		usage = float64(count) / float64(capacity)
		full = count >= capacity
	}
	return ttCacheStatusResponse{
		Count:      count,
		Capacity:   capacity,
		Usage:      usage,
		Full:       full,
		Generation: cache.TT.Generation(),
	}
}

func ttCacheEntries(cache *SearchCache, offset, limit int) ttCacheEntriesResponse {
	if cache == nil || cache.TT == nil {
		return ttCacheEntriesResponse{Items: []ttCacheEntryDTO{}, Offset: offset, Limit: limit}
	}
	entries, total := cache.TT.TopEntriesByHits(offset, limit)
	items := make([]ttCacheEntryDTO, 0, len(entries))
	for _, entry := range entries {
		items = append(items, ttCacheEntryDTO{
			Hash:        fmt.Sprintf("0x%016x", entry.Key),
			Hits:        entry.Hits,
			Depth:       entry.Depth,
			Score:       entry.Score,
			Flag:        ttFlagString(entry.Flag),
			BestMove:    entry.BestMove,
			GenWritten:  entry.GenWritten,
			GenLastUsed: entry.GenLastUsed,
		})
	}
	return ttCacheEntriesResponse{Items: items, Offset: offset, Limit: limit, Total: total}
}

func ttFlagString(flag TTFlag) string {
	switch flag {
	case TTExact:
		return "EXACT"
	case TTLower:
		return "LOWER"
	case TTUpper:
		return "UPPER"
	default:
		return "UNKNOWN"
	}
}

func mustMarshal(v any) json.RawMessage {
	data, _ := json.Marshal(v)
	return data
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
