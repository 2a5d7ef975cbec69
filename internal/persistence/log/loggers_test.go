package log

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zstd"

	"merchants.ai/internal/game"
)

func TestActionLoggerRoundTrip(t *testing.T) {
	dir := t.TempDir()
	l := NewActionLogger(dir)

	entries := []ActionEntry{
		{GameID: "g1", Round: 0, Action: game.GameAction{Player: "a", Type: game.ActionBuyItem, ItemType: game.ItemShield, Amount: 10}},
		{GameID: "g1", Round: 1, Action: game.GameAction{Player: "b", Type: game.ActionPersuade, Target: "a", Amount: 7, Result: "accepted"}},
	}
	for _, e := range entries {
		if err := l.WriteAction(e); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	if err := l.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	files, err := os.ReadDir(filepath.Join(dir, "actions"))
	if err != nil || len(files) != 1 {
		t.Fatalf("files %v err %v", files, err)
	}
	name := files[0].Name()
	if !strings.HasPrefix(name, "actions-") || !strings.HasSuffix(name, ".jsonl.zst") {
		t.Fatalf("file name %s", name)
	}

	f, err := os.Open(filepath.Join(dir, "actions", name))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	dec, err := zstd.NewReader(f)
	if err != nil {
		t.Fatalf("zstd: %v", err)
	}
	defer dec.Close()

	var got []ActionEntry
	sc := bufio.NewScanner(dec)
	for sc.Scan() {
		var e ActionEntry
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			t.Fatalf("line: %v", err)
		}
		got = append(got, e)
	}
	if err := sc.Err(); err != nil {
		t.Fatalf("scan: %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("%d entries, want 2", len(got))
	}
	if got[0].Action.Type != game.ActionBuyItem || got[1].Action.Amount != 7 {
		t.Fatalf("entries %+v", got)
	}
}
