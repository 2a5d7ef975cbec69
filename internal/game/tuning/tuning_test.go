package tuning

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	d := Defaults()
	if d.InitialBalance != 100 || d.EntryFee != 10 || d.RoundCap != 10 {
		t.Fatalf("economy defaults %+v", d)
	}
	if d.Items.AggressivePrice != 15 || d.Items.ShieldPrice != 10 || d.Items.IntelPrice != 8 || d.Items.EqualizerPrice != 12 {
		t.Fatalf("item prices %+v", d.Items)
	}
	if d.Items.MaxDistinct != 3 {
		t.Fatalf("max distinct %d", d.Items.MaxDistinct)
	}
	if d.Persuasion.MinAmount != 5 || d.Persuasion.MaxAmount != 20 {
		t.Fatalf("persuasion bounds %+v", d.Persuasion)
	}
}

func TestLoadPartialOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	data := []byte("round_cap: 5\nitems:\n  shield_price: 25\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.RoundCap != 5 {
		t.Fatalf("round cap %d, want 5", got.RoundCap)
	}
	if got.Items.ShieldPrice != 25 {
		t.Fatalf("shield price %d, want 25", got.Items.ShieldPrice)
	}
	// Untouched keys keep their defaults.
	if got.InitialBalance != 100 || got.Items.AggressivePrice != 15 {
		t.Fatalf("defaults lost: %+v", got)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if !os.IsNotExist(err) {
		t.Fatalf("want not-exist, got %v", err)
	}
}

func TestDecisionTimeout(t *testing.T) {
	var z Tuning
	if z.DecisionTimeout() != 30*time.Second {
		t.Fatalf("zero timeout %v", z.DecisionTimeout())
	}
	z.DecisionTimeoutMs = 1500
	if z.DecisionTimeout() != 1500*time.Millisecond {
		t.Fatalf("timeout %v", z.DecisionTimeout())
	}
}
