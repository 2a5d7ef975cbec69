package tuning

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Tuning struct {
	InitialBalance int `yaml:"initial_balance"`
	EntryFee       int `yaml:"entry_fee"`
	RoundCap       int `yaml:"round_cap"`

	Items ItemTuning `yaml:"items"`

	Persuasion PersuasionTuning `yaml:"persuasion"`

	// Fraction of the winner's payout that permanently leaves the economy,
	// in permille (100 = 10%).
	PayoutTaxPermille int `yaml:"payout_tax_permille"`

	DecisionTimeoutMs int `yaml:"decision_timeout_ms"`

	// Seed for per-game RNG. Zero means seed from the clock.
	Seed int64 `yaml:"seed"`
}

type ItemTuning struct {
	AggressivePrice int `yaml:"aggressive_price"`
	ShieldPrice     int `yaml:"shield_price"`
	IntelPrice      int `yaml:"intel_price"`
	EqualizerPrice  int `yaml:"equalizer_price"`

	MaxDistinct int `yaml:"max_distinct"`

	// Immediate aggressive tax, percent of the target's balance.
	AggressiveTaxPercent int `yaml:"aggressive_tax_percent"`
	// Fallback settlement penalty when the used aggressive item record
	// cannot be found.
	AggressiveDefaultPenalty int `yaml:"aggressive_default_penalty"`

	// Probability (permille) that a player with unused items plays one
	// this round when the provider does not ask for it explicitly.
	UsePermille int `yaml:"use_permille"`
}

type PersuasionTuning struct {
	// Probability (permille) that an active player initiates an attempt.
	InitiatePermille int `yaml:"initiate_permille"`
	MinAmount        int `yaml:"min_amount"`
	MaxAmount        int `yaml:"max_amount"`
}

func Defaults() Tuning {
	return Tuning{
		InitialBalance: 100,
		EntryFee:       10,
		RoundCap:       10,
		Items: ItemTuning{
			AggressivePrice:          15,
			ShieldPrice:              10,
			IntelPrice:               8,
			EqualizerPrice:           12,
			MaxDistinct:              3,
			AggressiveTaxPercent:     5,
			AggressiveDefaultPenalty: 15,
			UsePermille:              700,
		},
		Persuasion: PersuasionTuning{
			InitiatePermille: 700,
			MinAmount:        5,
			MaxAmount:        20,
		},
		PayoutTaxPermille: 100,
		DecisionTimeoutMs: 30000,
	}
}

func (t Tuning) DecisionTimeout() time.Duration {
	if t.DecisionTimeoutMs <= 0 {
		return 30 * time.Second
	}
	return time.Duration(t.DecisionTimeoutMs) * time.Millisecond
}

func Load(path string) (Tuning, error) {
	t := Defaults()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}
