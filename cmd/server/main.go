package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"merchants.ai/internal/decision"
	"merchants.ai/internal/game"
	"merchants.ai/internal/game/tuning"
	"merchants.ai/internal/persistence/indexdb"
	persistlog "merchants.ai/internal/persistence/log"
	"merchants.ai/internal/persistence/record"
	"merchants.ai/internal/transport/httpapi"
	"merchants.ai/internal/transport/ws"
)

func main() {
	var (
		addr       = flag.String("addr", ":8080", "http listen address")
		configDir  = flag.String("configs", "./configs", "config directory")
		dataDir    = flag.String("data", "./data", "runtime data directory")
		tuningPath = flag.String("tuning", "", "path to tuning.yaml (default: <configs>/tuning.yaml)")
		disableDB  = flag.Bool("disable_db", false, "disable the sqlite game index")
		model      = flag.String("model", "", "chat model id (default: MERCHANTS_MODEL or the provider default)")
		seed       = flag.Int64("seed", 0, "deterministic seed for offline games (0 = time-based)")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	// .env is optional; real deployments set the environment directly.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.Printf("load .env: %v", err)
	}

	tp := strings.TrimSpace(*tuningPath)
	if tp == "" {
		tp = filepath.Join(*configDir, "tuning.yaml")
	}
	tune, err := tuning.Load(tp)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Printf("tuning not found (%s); using defaults", tp)
			tune = tuning.Defaults()
		} else {
			logger.Fatalf("load tuning: %v", err)
		}
	}
	if *seed != 0 {
		tune.Seed = *seed
	}

	provider := buildProvider(*model, tune, logger)

	engine := game.New(tune, provider, logger)

	_ = os.MkdirAll(*dataDir, 0o755)

	var idx *indexdb.SQLiteIndex
	if !*disableDB {
		idx, err = indexdb.OpenSQLite(filepath.Join(*dataDir, "index.db"))
		if err != nil {
			logger.Fatalf("open index db: %v", err)
		}
		defer idx.Close()
	}

	actionLog := persistlog.NewActionLogger(*dataDir)
	defer actionLog.Close()

	store, err := record.NewStore(filepath.Join(*dataDir, "records"))
	if err != nil {
		logger.Fatalf("open record store: %v", err)
	}

	rec := &recordingEngine{
		inner:   engine,
		idx:     idx,
		actions: actionLog,
		store:   store,
		log:     logger,
	}

	ctx, cancel := signalContext()
	defer cancel()

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(200)
		_, _ = rw.Write([]byte("ok"))
	})
	mux.HandleFunc("/metrics", func(rw http.ResponseWriter, r *http.Request) {
		rw.Header().Set("Content-Type", "text/plain; version=0.0.4")
		m := rec.Metrics()

		fmt.Fprintf(rw, "# HELP merchants_games_created Games created since start.\n")
		fmt.Fprintf(rw, "# TYPE merchants_games_created counter\n")
		fmt.Fprintf(rw, "merchants_games_created %d\n", m.GamesCreated)

		fmt.Fprintf(rw, "# HELP merchants_games_ended Games ended since start.\n")
		fmt.Fprintf(rw, "# TYPE merchants_games_ended counter\n")
		fmt.Fprintf(rw, "merchants_games_ended %d\n", m.GamesEnded)

		fmt.Fprintf(rw, "# HELP merchants_rounds_processed Rounds processed since start.\n")
		fmt.Fprintf(rw, "# TYPE merchants_rounds_processed counter\n")
		fmt.Fprintf(rw, "merchants_rounds_processed %d\n", m.RoundsProcessed)

		fmt.Fprintf(rw, "# HELP merchants_actions_logged Actions written to the action log.\n")
		fmt.Fprintf(rw, "# TYPE merchants_actions_logged counter\n")
		fmt.Fprintf(rw, "merchants_actions_logged %d\n", m.ActionsLogged)
	})

	api := httpapi.NewServer(rec, logger)
	api.Register(mux)
	mux.HandleFunc("/v1/ws", ws.NewServer(engine, logger).Handler())

	srv := &http.Server{
		Addr:              *addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel2()
		_ = srv.Shutdown(ctx2)
	}()

	logger.Printf("listening on %s", *addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("ListenAndServe: %v", err)
	}
}

// buildProvider picks the decision backend: a chat-completions provider when
// an API key is configured, else the local heuristic bot.
func buildProvider(model string, tune tuning.Tuning, logger *log.Logger) game.DecisionProvider {
	apiKey := strings.TrimSpace(os.Getenv("OPENROUTER_API_KEY"))
	if model == "" {
		model = strings.TrimSpace(os.Getenv("MERCHANTS_MODEL"))
	}
	if apiKey != "" {
		logger.Printf("decision provider: openrouter model=%s", model)
		opts := []decision.Option{}
		if base := strings.TrimSpace(os.Getenv("OPENROUTER_BASE_URL")); base != "" {
			opts = append(opts, decision.WithBaseURL(base))
		}
		return decision.NewOpenRouter(apiKey, model, logger, opts...)
	}
	logger.Printf("decision provider: local heuristic (no OPENROUTER_API_KEY set)")
	seed := tune.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return decision.NewHeuristic(seed)
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
}
