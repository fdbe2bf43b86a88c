package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/mattn/go-sqlite3"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vctt94/pokertable/internal/logging"
	"github.com/vctt94/pokertable/pkg/poker"
	"github.com/vctt94/pokertable/pkg/server"
)

func main() {
	var (
		addr       string
		dbPath     string
		debugLevel string
		seed       int64

		gameType      string
		smallBlind    int64
		bigBlind      int64
		maxPlayers    int
		minBuyin      int64
		maxBuyin      int64
		timeToActSec  int
		timeBanks     int
		timeBankSec   int
		allowStraddle bool
	)

	// Best effort; a missing .env is fine. Loaded before flag defaults so
	// the env fallbacks see it.
	_ = godotenv.Load()

	flag.StringVar(&addr, "addr", envOr("POKERTABLE_ADDR", ":8080"), "HTTP listen address")
	flag.StringVar(&dbPath, "db", envOr("POKERTABLE_DB", ""), "Path to SQLite database file (created if missing)")
	flag.StringVar(&debugLevel, "debuglevel", envOr("POKERTABLE_DEBUGLEVEL", "info"), "Logging level: trace, debug, info, warn, error")
	flag.Int64Var(&seed, "seed", 0, "Deterministic RNG seed for decks (0 = random)")
	flag.StringVar(&gameType, "gametype", "NLHE", "Game type: NLHE or PLO")
	flag.Int64Var(&smallBlind, "sb", 1, "Small blind")
	flag.Int64Var(&bigBlind, "bb", 2, "Big blind")
	flag.IntVar(&maxPlayers, "maxplayers", 9, "Seats at the table")
	flag.Int64Var(&minBuyin, "minbuyin", 40, "Minimum buyin")
	flag.Int64Var(&maxBuyin, "maxbuyin", 400, "Maximum buyin")
	flag.IntVar(&timeToActSec, "timetoact", 30, "Seconds to act per turn")
	flag.IntVar(&timeBanks, "timebanks", 3, "Time banks per player")
	flag.IntVar(&timeBankSec, "timebanksec", 30, "Seconds each time bank adds")
	flag.BoolVar(&allowStraddle, "straddle", false, "Allow UTG straddles")
	flag.Parse()

	if dbPath == "" {
		dbPath = filepath.Join(os.TempDir(), "pokertable.sqlite")
	}
	if seed == 0 {
		if env := os.Getenv("POKERTABLE_SEED"); env != "" {
			if v, err := strconv.ParseInt(env, 10, 64); err == nil {
				seed = v
			}
		}
	}

	logMgr := logging.NewManager(os.Stderr)
	if err := logMgr.SetLevel(debugLevel); err != nil {
		fmt.Fprintf(os.Stderr, "bad debug level: %v\n", err)
		os.Exit(1)
	}
	log := logMgr.Logger("MAIN")

	store, err := server.NewStore(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open store: %v\n", err)
		os.Exit(1)
	}

	cfg := &server.Config{
		Logging: logMgr,
		Store:   store,
	}
	if seed != 0 {
		cfg.Rand = rand.New(rand.NewSource(seed))
	}
	srv, err := server.NewServer(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create server: %v\n", err)
		os.Exit(1)
	}

	tcfg := &poker.TableConfig{
		GameType:          poker.GameType(strings.ToUpper(gameType)),
		MaxPlayers:        maxPlayers,
		SmallBlind:        smallBlind,
		BigBlind:          bigBlind,
		MinBuyin:          minBuyin,
		MaxBuyin:          maxBuyin,
		TimeToAct:         time.Duration(timeToActSec) * time.Second,
		AllowStraddle:     allowStraddle,
		NumberTimeBanks:   int32(timeBanks),
		TimeBankDuration:  time.Duration(timeBankSec) * time.Second,
		TimeBankReplenish: time.Hour,
	}
	tableID, err := srv.CreateTable(tcfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create table: %v\n", err)
		os.Exit(1)
	}
	log.Infof("table %s ready", tableID)

	mux := http.NewServeMux()
	mux.Handle("/ws", srv.Handler())
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/history", func(w http.ResponseWriter, r *http.Request) {
		records, err := srv.HandHistory(tableID, 20)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(records)
	})

	httpSrv := &http.Server{Addr: addr, Handler: mux}

	errC := make(chan error, 1)
	go func() {
		log.Infof("listening on %s", addr)
		errC <- httpSrv.ListenAndServe()
	}()

	sigC := make(chan os.Signal, 1)
	signal.Notify(sigC, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigC:
		log.Infof("received %v, shutting down", sig)
	case err := <-errC:
		log.Errorf("http server: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = httpSrv.Shutdown(ctx)
	if err := srv.Close(); err != nil {
		log.Errorf("close: %v", err)
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
