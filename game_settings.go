package main

type PlayerType int

const (
	PlayerHuman PlayerType = iota
	PlayerAI
)

// Variant selects the placement rule: Connect drops pieces down a column,
// Freestyle places on any empty cell.
type Variant string

const (
	VariantConnect   Variant = "connect"
	VariantFreestyle Variant = "freestyle"
)

type GameSettings struct {
	Variant       Variant        `json:"variant"`
	Rows          int            `json:"rows"`
	Cols          int            `json:"cols"`
	WinLength     int            `json:"win_length"`
	Gravity       bool           `json:"gravity"`
	BlackType     PlayerType     `json:"-"`
	WhiteType     PlayerType     `json:"-"`
	BlackStarts   bool           `json:"black_starts"`
	BlackStrategy StrategyConfig `json:"-"`
	WhiteStrategy StrategyConfig `json:"-"`
}

func DefaultGameSettings() GameSettings {
	return ConnectSettings()
}

func ConnectSettings() GameSettings {
	return GameSettings{
		Variant:       VariantConnect,
		Rows:          6,
		Cols:          7,
		WinLength:     4,
		Gravity:       true,
		BlackType:     PlayerHuman,
		WhiteType:     PlayerAI,
		BlackStarts:   true,
		BlackStrategy: DefaultStrategyConfig(),
		WhiteStrategy: DefaultStrategyConfig(),
	}
}

func FreestyleSettings() GameSettings {
	return GameSettings{
		Variant:       VariantFreestyle,
		Rows:          15,
		Cols:          15,
		WinLength:     5,
		Gravity:       false,
		BlackType:     PlayerHuman,
		WhiteType:     PlayerAI,
		BlackStarts:   true,
		BlackStrategy: DefaultStrategyConfig(),
		WhiteStrategy: DefaultStrategyConfig(),
	}
}

func SettingsForVariant(variant Variant) GameSettings {
	if variant == VariantFreestyle {
		return FreestyleSettings()
	}
	return ConnectSettings()
}
