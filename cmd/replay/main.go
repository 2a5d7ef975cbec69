// Command replay renders stored game records as plain-text transcripts.
// It can also scan a compressed action log and dump actions for one game.
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/klauspost/compress/zstd"

	persistlog "merchants.ai/internal/persistence/log"
	"merchants.ai/internal/persistence/record"
)

func main() {
	var (
		recordsDir = flag.String("records", "./data/records", "record store directory")
		name       = flag.String("name", "", "record file name to replay (empty: list records)")
		actionsDir = flag.String("actions", "", "actions dir with actions-*.jsonl.zst (optional)")
		gameID     = flag.String("game", "", "filter the action log to this game id")
	)
	flag.Parse()

	if *actionsDir != "" {
		if err := dumpActions(*actionsDir, *gameID); err != nil {
			fmt.Fprintln(os.Stderr, "dump actions:", err)
			os.Exit(1)
		}
		return
	}

	store, err := record.NewStore(*recordsDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "open store:", err)
		os.Exit(1)
	}

	if *name == "" {
		names, err := store.List()
		if err != nil {
			fmt.Fprintln(os.Stderr, "list records:", err)
			os.Exit(1)
		}
		for _, n := range names {
			fmt.Println(n)
		}
		return
	}

	rec, err := store.Load(*name)
	if err != nil {
		fmt.Fprintln(os.Stderr, "load record:", err)
		os.Exit(1)
	}
	fmt.Print(record.Transcript(rec))
}

func dumpActions(dir, gameID string) error {
	ents, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	var files []string
	for _, e := range ents {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".jsonl.zst") {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)

	for _, path := range files {
		if err := dumpFile(path, gameID); err != nil {
			return fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
	}
	return nil
}

func dumpFile(path, gameID string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return err
	}
	defer dec.Close()

	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		var entry persistlog.ActionEntry
		if err := json.Unmarshal(sc.Bytes(), &entry); err != nil {
			continue
		}
		if gameID != "" && entry.GameID != gameID {
			continue
		}
		a := entry.Action
		fmt.Printf("%s r%d %s %s", entry.GameID, entry.Round, a.Player, a.Type)
		if a.Target != "" {
			fmt.Printf(" -> %s", a.Target)
		}
		if a.Amount != 0 {
			fmt.Printf(" (%d)", a.Amount)
		}
		if a.Message != "" {
			fmt.Printf(" %q", a.Message)
		}
		fmt.Println()
	}
	return sc.Err()
}
