package main

import "sync"

type Config struct {
	AiDepth              int             `json:"ai_depth"`
	AiTimeBudgetMs       int             `json:"ai_time_budget_ms"`
	AiReturnLastComplete bool            `json:"ai_return_last_complete_depth_only"`
	AiParallelRoot       bool            `json:"ai_parallel_root"`
	AiRootWorkers        int             `json:"ai_root_workers"`
	AiEnableTT           bool            `json:"ai_enable_tt"`
	AiTtSize             int             `json:"ai_tt_size"`
	AiTtBuckets          int             `json:"ai_tt_buckets"`
	AiLogSearchStats     bool            `json:"ai_log_search_stats"`
	Heuristics           HeuristicConfig `json:"heuristics"`
	Weighted             WeightedConfig  `json:"weighted"`
}

// HeuristicConfig weights the window tallies. Opponent weights are heavier
// so the engine prefers blocking a live threat over extending its own line
// of equal length. The sum of every weighted window plus the center bonus
// must stay below winScore; see TestEvaluateTerminalDominance.
type HeuristicConfig struct {
	NearWin     float64 `json:"near_win"`
	Build       float64 `json:"build"`
	OppNearWin  float64 `json:"opp_near_win"`
	OppBuild    float64 `json:"opp_build"`
	CenterBonus float64 `json:"center_bonus"`
}

// WeightedConfig tunes the sampling style: how strongly a move's offensive
// and defensive window potential pull on its selection weight.
type WeightedConfig struct {
	Offense float64 `json:"offense"`
	Defense float64 `json:"defense"`
}

type ConfigStore struct {
	mu     sync.RWMutex
	config Config
}

func DefaultConfig() Config {
	return Config{
		AiDepth:              6,
		AiTimeBudgetMs:       0, // 0 = fixed depth, no deepening
		AiReturnLastComplete: true,

		AiParallelRoot: false,
		AiRootWorkers:  0, // 0 = GOMAXPROCS

		AiEnableTT:  true,
		AiTtSize:    1 << 16,
		AiTtBuckets: 4,

		AiLogSearchStats: false,

		Heuristics: HeuristicConfig{
			NearWin:     50000.0,
			Build:       2500.0,
			OppNearWin:  120000.0,
			OppBuild:    6000.0,
			CenterBonus: 30.0,
		},
		Weighted: WeightedConfig{
			Offense: 1.0,
			Defense: 1.5,
		},
	}
}

var configStore = &ConfigStore{config: DefaultConfig()}

func GetConfig() Config {
	return configStore.Get()
}

func (c *ConfigStore) Get() Config {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.config
}

func (c *ConfigStore) Update(newConfig Config) {
	c.mu.Lock()
	c.config = newConfig
	c.mu.Unlock()
}
