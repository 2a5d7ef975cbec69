// Command runner plays batches of full games locally and reports win
// statistics per personality. It can run one batch and exit, or keep
// running batches on a cron schedule.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"merchants.ai/internal/decision"
	"merchants.ai/internal/game"
	"merchants.ai/internal/game/tuning"
	"merchants.ai/internal/persistence/record"
)

type personality struct {
	name   string
	prompt string
}

var roster = []personality{
	{"Cautious Carl", "You are cautious and risk-averse. You hoard tokens, buy the shield early, and refuse most persuasion requests."},
	{"Aggressive Anna", "You play to dominate. You buy the aggressive item, tax the richest player, and persuade often for large amounts."},
	{"Diplomat Dave", "You win through relationships. You make small, reasonable requests with flattering messages and accept requests from players poorer than you."},
	{"Schemer Sal", "You gather information. You buy the intel item, study the other players, and strike only when you know their weaknesses."},
	{"Leveller Lena", "You resent inequality. You buy the equalizer, target whoever is richest, and accept requests only from the poorest player."},
	{"Gambler Gus", "You take chances. You spend freely on items and ask for big transfers with colorful stories."},
}

func main() {
	var (
		games    = flag.Int("games", 5, "games per batch")
		players  = flag.Int("players", 4, "players per game (2..6)")
		rounds   = flag.Int("rounds", 10, "round cap per game")
		balance  = flag.Int("balance", 100, "initial balance per player")
		seed     = flag.Int64("seed", 1, "base seed (game n uses seed+n)")
		outDir   = flag.String("out", "./data/tournaments", "directory for game records and the summary")
		model    = flag.String("model", "", "chat model id (empty = local heuristic bot)")
		schedule = flag.String("schedule", "", "cron expression; when set, run a batch on this schedule until interrupted")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[runner] ", log.LstdFlags|log.Lmicroseconds)

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.Printf("load .env: %v", err)
	}

	if *players < 2 || *players > len(roster) {
		logger.Fatalf("players must be 2..%d", len(roster))
	}

	tune := tuning.Defaults()
	tune.RoundCap = *rounds
	tune.InitialBalance = *balance
	tune.Seed = *seed

	if *schedule == "" {
		if err := runBatch(tune, *games, *players, *model, *outDir, logger); err != nil {
			logger.Fatalf("batch: %v", err)
		}
		return
	}

	c := cron.New()
	if _, err := c.AddFunc(*schedule, func() {
		if err := runBatch(tune, *games, *players, *model, *outDir, logger); err != nil {
			logger.Printf("batch: %v", err)
		}
	}); err != nil {
		logger.Fatalf("bad schedule %q: %v", *schedule, err)
	}
	c.Start()
	logger.Printf("scheduled batches with %q, waiting", *schedule)

	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	<-ch
	<-c.Stop().Done()
}

func runBatch(tune tuning.Tuning, games, players int, model, outDir string, logger *log.Logger) error {
	store, err := record.NewStore(outDir)
	if err != nil {
		return err
	}

	provider := buildProvider(model, tune.Seed, logger)
	engine := game.New(tune, provider, logger)

	wins := map[string]int{}
	finalBalances := map[string][]int{}
	start := time.Now()

	for i := 0; i < games; i++ {
		specs := make([]game.PlayerSpec, 0, players)
		for j := 0; j < players; j++ {
			specs = append(specs, game.PlayerSpec{
				Name:   roster[j].name,
				Prompt: roster[j].prompt,
				Agent:  true,
			})
		}
		state, err := engine.CreateGame(specs)
		if err != nil {
			return fmt.Errorf("create game %d: %w", i+1, err)
		}

		for {
			if _, err := engine.ProcessRound(context.Background(), state.ID); err != nil {
				return fmt.Errorf("game %d round: %w", i+1, err)
			}
			ended, err := engine.CheckGameEnd(state.ID)
			if err != nil {
				return err
			}
			if ended {
				break
			}
		}

		final, err := engine.GetGameState(state.ID)
		if err != nil {
			return err
		}
		if _, err := store.Save(record.FromState(final)); err != nil {
			logger.Printf("save record: %v", err)
		}

		winnerName := "(none)"
		for _, p := range final.Players {
			finalBalances[p.Name] = append(finalBalances[p.Name], p.Balance)
			if p.ID == final.Winner {
				winnerName = p.Name
			}
		}
		wins[winnerName]++
		logger.Printf("game %d/%d: winner %s after %d rounds", i+1, games, winnerName, final.Round)
	}

	summary := renderSummary(games, wins, finalBalances, time.Since(start))
	fmt.Print(summary)
	path := filepath.Join(outDir, fmt.Sprintf("summary_%s.txt", time.Now().UTC().Format("20060102_150405")))
	if err := os.WriteFile(path, []byte(summary), 0o644); err != nil {
		logger.Printf("write summary: %v", err)
	}
	return nil
}

func renderSummary(games int, wins map[string]int, balances map[string][]int, took time.Duration) string {
	names := make([]string, 0, len(balances))
	for n := range balances {
		names = append(names, n)
	}
	sort.Slice(names, func(i, j int) bool {
		if wins[names[i]] != wins[names[j]] {
			return wins[names[i]] > wins[names[j]]
		}
		return names[i] < names[j]
	})

	var b strings.Builder
	fmt.Fprintf(&b, "\n=== tournament summary: %d games in %s ===\n", games, took.Round(time.Millisecond))
	for _, n := range names {
		total := 0
		for _, v := range balances[n] {
			total += v
		}
		avg := 0
		if len(balances[n]) > 0 {
			avg = total / len(balances[n])
		}
		fmt.Fprintf(&b, "%-16s wins %2d/%d  avg final balance %d\n", n, wins[n], games, avg)
	}
	if n := wins["(none)"]; n > 0 {
		fmt.Fprintf(&b, "games with no winner: %d\n", n)
	}
	return b.String()
}

func buildProvider(model string, seed int64, logger *log.Logger) game.DecisionProvider {
	apiKey := strings.TrimSpace(os.Getenv("OPENROUTER_API_KEY"))
	if apiKey != "" {
		logger.Printf("decision provider: openrouter model=%s", model)
		return decision.NewOpenRouter(apiKey, model, logger)
	}
	logger.Printf("decision provider: local heuristic")
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return decision.NewHeuristic(seed)
}
