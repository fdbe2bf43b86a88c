package server

import (
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/decred/slog"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/vctt94/pokertable/internal/logging"
	"github.com/vctt94/pokertable/pkg/poker"
)

// eventQueueSize bounds the per-table inbox. The worker drains fast, so
// this only needs to absorb bursts.
const eventQueueSize = 64

// Config holds the server dependencies.
type Config struct {
	Logging *logging.Manager
	Store   Store
	// Registerer receives the server metrics; defaults to the global
	// prometheus registerer.
	Registerer prometheus.Registerer
	// Auth resolves player identity on websocket connects; defaults to
	// trusting the "player" query parameter.
	Auth Authenticator
	// Rand seeds table deck shuffling; defaults to a time-seeded source.
	Rand *rand.Rand
}

// Server owns the running tables. Each table gets one worker goroutine
// that consumes its ordered event queue, applies events to the state
// machine, and executes the returned effects.
type Server struct {
	log     slog.Logger
	logging *logging.Manager
	store   Store
	metrics *Metrics
	hub     *Hub
	rng     *rand.Rand

	mu      sync.RWMutex
	tables  map[string]*tableRunner
	stopped bool
	wg      sync.WaitGroup
}

// NewServer wires up a server. Call Close when done.
func NewServer(cfg *Config) (*Server, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if cfg.Logging == nil {
		return nil, fmt.Errorf("logging manager is required")
	}
	reg := cfg.Registerer
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	rng := cfg.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	s := &Server{
		log:     cfg.Logging.Logger("SRVR"),
		logging: cfg.Logging,
		store:   cfg.Store,
		metrics: NewMetrics(reg),
		rng:     rng,
		tables:  make(map[string]*tableRunner),
	}
	s.hub = newHub(s, cfg.Logging.Logger("WSCK"), cfg.Auth)
	return s, nil
}

// Handler returns the websocket endpoint.
func (s *Server) Handler() http.Handler { return s.hub }

// CreateTable starts a table and its worker, returning the table id.
func (s *Server) CreateTable(tcfg *poker.TableConfig) (string, error) {
	table, err := poker.NewTable(tcfg, s.logging.Logger("TABL"), s.rng)
	if err != nil {
		return "", err
	}

	r := &tableRunner{
		srv:    s,
		log:    s.logging.Logger("GAME"),
		table:  table,
		events: make(chan poker.Event, eventQueueSize),
		quit:   make(chan struct{}),
	}
	r.sched = poker.NewTimerScheduler(s.logging.Logger("TIMR"), r.deliverTimer)

	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return "", fmt.Errorf("server is shutting down")
	}
	if _, exists := s.tables[table.ID()]; exists {
		s.mu.Unlock()
		return "", fmt.Errorf("table %s already exists", table.ID())
	}
	s.tables[table.ID()] = r
	s.wg.Add(1)
	s.mu.Unlock()

	go r.run()
	s.metrics.TablesActive.Inc()
	s.log.Infof("table %s created (%s %d/%d)", table.ID(), tcfg.GameType, tcfg.SmallBlind, tcfg.BigBlind)
	return table.ID(), nil
}

// HasTable reports whether a table id is running.
func (s *Server) HasTable(tableID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.tables[tableID]
	return ok
}

// Dispatch queues an event for a table's worker.
func (s *Server) Dispatch(tableID string, ev poker.Event) error {
	s.mu.RLock()
	r, ok := s.tables[tableID]
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("unknown table %s", tableID)
	}

	select {
	case r.events <- ev:
		return nil
	case <-r.quit:
		return fmt.Errorf("table %s is shutting down", tableID)
	}
}

// HandHistory returns the most recent archived hands for a table.
func (s *Server) HandHistory(tableID string, limit int) ([]*poker.HandLogRecord, error) {
	return s.store.HandHistory(tableID, limit)
}

func (s *Server) clientConnected(tableID, playerID string) {
	s.dispatchConnection(tableID, playerID, poker.EventReconnect)
}

func (s *Server) clientDisconnected(tableID, playerID string) {
	s.dispatchConnection(tableID, playerID, poker.EventDisconnect)
}

func (s *Server) dispatchConnection(tableID, playerID string, et poker.EventType) {
	err := s.Dispatch(tableID, poker.Event{
		Type:     et,
		ID:       uuid.NewString(),
		PlayerID: playerID,
		Seat:     -1,
	})
	if err != nil {
		s.log.Debugf("connection event for %s on %s: %v", playerID, tableID, err)
	}
}

// Close stops all workers and the store. In-flight hands are abandoned;
// chip state for unfinished hands is not persisted, matching a crash.
func (s *Server) Close() error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return nil
	}
	s.stopped = true
	runners := make([]*tableRunner, 0, len(s.tables))
	for _, r := range s.tables {
		runners = append(runners, r)
	}
	s.mu.Unlock()

	for _, r := range runners {
		close(r.quit)
	}
	s.wg.Wait()
	return s.store.Close()
}

// tableRunner is the single-writer worker for one table.
type tableRunner struct {
	srv   *Server
	log   slog.Logger
	table *poker.Table
	sched *poker.TimerScheduler

	events chan poker.Event
	quit   chan struct{}
}

// deliverTimer runs on the scheduler's firing goroutine and re-enters
// the firing through the worker queue so timer events are serialized
// with client events. A fold and a timeout racing for the same turn go
// through the queue in some order and the loser is absorbed as a stale
// sequence.
func (r *tableRunner) deliverTimer(f poker.TimerFired) {
	select {
	case r.events <- timerEvent(f):
	case <-r.quit:
	}
}

func (r *tableRunner) run() {
	defer r.srv.wg.Done()
	defer r.sched.Clear()

	var replenish <-chan time.Time
	if d := r.table.Config().TimeBankReplenish; d > 0 {
		ticker := time.NewTicker(d)
		defer ticker.Stop()
		replenish = ticker.C
	}

	for {
		select {
		case <-r.quit:
			return
		case ev := <-r.events:
			r.apply(ev)
		case <-replenish:
			r.apply(poker.Event{
				Type: poker.EventReplenishTimeBanks,
				ID:   uuid.NewString(),
				Seat: -1,
			})
		}
	}
}

func (r *tableRunner) apply(ev poker.Event) {
	effects, err := r.table.ProcessEvent(ev)
	if err != nil {
		r.recordFailure(ev, err)
	} else {
		r.recordSuccess(ev)
	}
	for _, effect := range effects {
		r.execute(effect)
	}
}

func (r *tableRunner) recordFailure(ev poker.Event, err error) {
	var actErr *poker.ActionError
	switch {
	case errors.As(err, &actErr):
		r.srv.metrics.RejectedActions.WithLabelValues(string(actErr.Reason)).Inc()
		r.log.Debugf("table %s: rejected %s: %v", r.table.ID(), ev.Type, err)
	case errors.Is(err, poker.ErrIllegalTransition):
		// Stale timers and duplicate submissions land here; routine.
		r.log.Tracef("table %s: absorbed %s: %v", r.table.ID(), ev.Type, err)
	default:
		r.log.Errorf("table %s: %s failed: %v", r.table.ID(), ev.Type, err)
	}
}

func (r *tableRunner) recordSuccess(ev poker.Event) {
	switch ev.Type {
	case poker.EventBetAction:
		r.srv.metrics.ActionsTotal.WithLabelValues(string(ev.Action.Type)).Inc()
	case poker.EventTurnTimeout:
		r.srv.metrics.Timeouts.Inc()
	case poker.EventJoin:
		if err := r.srv.store.RecordBuyin(ev.PlayerID, ev.Name, ev.Amount); err != nil {
			r.log.Errorf("table %s: record buyin for %s: %v", r.table.ID(), ev.PlayerID, err)
		}
	case poker.EventBuyChips:
		if err := r.srv.store.RecordBuyin(ev.PlayerID, "", ev.Amount); err != nil {
			r.log.Errorf("table %s: record rebuy for %s: %v", r.table.ID(), ev.PlayerID, err)
		}
	}
}

func (r *tableRunner) execute(effect poker.Effect) {
	switch e := effect.(type) {
	case poker.EffectBroadcast:
		r.srv.hub.BroadcastState(r.table.ID(), r.table.Snapshot())
	case poker.EffectArmStageTimer:
		r.sched.Arm(e.Seq, -1, e.Delay)
	case poker.EffectArmTurnTimer:
		r.sched.Arm(e.Seq, e.Seat, e.Timeout)
	case poker.EffectExtendTurnTimer:
		if _, err := r.sched.Extend(e.Extra); err != nil {
			r.log.Warnf("table %s: extend turn timer: %v", r.table.ID(), err)
		}
	case poker.EffectClearTimer:
		r.sched.Clear()
	case poker.EffectHandComplete:
		r.archiveHand(e.Record)
	case poker.EffectHandAborted:
		r.srv.metrics.HandsAborted.Inc()
		r.log.Errorf("table %s: hand aborted: %v", r.table.ID(), e.Err)
	}
}

func (r *tableRunner) archiveHand(record *poker.HandLogRecord) {
	if !record.Aborted {
		r.srv.metrics.HandsCompleted.Inc()
		var pot int64
		for _, p := range record.Pots {
			pot += p.Amount
		}
		r.srv.metrics.PotSize.Observe(float64(pot))
	}
	if err := r.srv.store.SaveHandLog(record); err != nil {
		r.log.Errorf("table %s: archive hand %s: %v", r.table.ID(), record.HandID, err)
		return
	}
	r.srv.hub.BroadcastResult(r.table.ID(), record)
	r.log.Infof("table %s: hand #%d archived", r.table.ID(), record.HandNumber)
}
