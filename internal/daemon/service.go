// Package daemon provides the long-running planning service: a debt API,
// cached analyses and a live event stream of portfolio changes.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/theirongolddev/debtburn/internal/cache"
	"github.com/theirongolddev/debtburn/internal/metrics"
	"github.com/theirongolddev/debtburn/internal/model"
	"github.com/theirongolddev/debtburn/internal/money"
	"github.com/theirongolddev/debtburn/internal/payoff"
	"github.com/theirongolddev/debtburn/internal/store"
)

// DebtStore is the persistence the daemon needs.
type DebtStore interface {
	ListDebts(ctx context.Context, userID string) ([]model.Debt, error)
	GetDebt(ctx context.Context, id string) (model.Debt, error)
	SaveDebt(ctx context.Context, d model.Debt) (model.Debt, error)
	DeleteDebt(ctx context.Context, id string) error
	SaveAnalysis(ctx context.Context, userID string, a payoff.Analysis) (store.AnalysisRecord, error)
	RecentAnalyses(ctx context.Context, userID string, limit int) ([]store.AnalysisRecord, error)
}

// Config controls the daemon runtime behavior.
type Config struct {
	// User is the portfolio watched for the status snapshot and event stream.
	User         string
	Addr         string
	Interval     time.Duration
	EventsBuffer int
	CacheTTL     time.Duration
	MaxMonths    int
	Decimals     int32
	SaveHistory  bool

	Logger *zap.Logger
	Cache  cache.Cache
	// Now supplies the reference date for plans; defaults to time.Now.
	Now func() time.Time
}

// Snapshot is a compact portfolio state for status/event payloads.
type Snapshot struct {
	At              time.Time       `json:"at"`
	User            string          `json:"user"`
	Debts           int             `json:"debts"`
	TotalDebt       money.Amount    `json:"total_debt"`
	TotalEMI        money.Amount    `json:"total_emi"`
	SnowballMonths  int             `json:"snowball_months"`
	AvalancheMonths int             `json:"avalanche_months"`
	InterestSaved   money.Amount    `json:"interest_saved_with_avalanche"`
	Recommended     payoff.Strategy `json:"recommended_strategy,omitempty"`
	NonConvergent   bool            `json:"non_convergent,omitempty"`
}

// Delta captures snapshot deltas between polls.
type Delta struct {
	Debts           int          `json:"debts"`
	TotalDebt       money.Amount `json:"total_debt"`
	SnowballMonths  int          `json:"snowball_months"`
	AvalancheMonths int          `json:"avalanche_months"`
	InterestSaved   money.Amount `json:"interest_saved_with_avalanche"`
}

func (d Delta) isZero() bool {
	return d.Debts == 0 &&
		d.TotalDebt.IsZero() &&
		d.SnowballMonths == 0 &&
		d.AvalancheMonths == 0 &&
		d.InterestSaved.IsZero()
}

// Event types.
const (
	EventSnapshot    = "snapshot"
	EventPortfolio   = "portfolio_delta"
	EventDebtSaved   = "debt_saved"
	EventDebtDeleted = "debt_deleted"
)

// Event is emitted when the watched portfolio or any debt changes.
type Event struct {
	ID        int64       `json:"id"`
	Type      string      `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Snapshot  *Snapshot   `json:"snapshot,omitempty"`
	Delta     *Delta      `json:"delta,omitempty"`
	Debt      *model.Debt `json:"debt,omitempty"`
	DebtID    string      `json:"debt_id,omitempty"`
}

// Status is served at /v1/status.
type Status struct {
	StartedAt       time.Time `json:"started_at"`
	LastPollAt      time.Time `json:"last_poll_at"`
	PollIntervalSec int       `json:"poll_interval_sec"`
	PollCount       int64     `json:"poll_count"`
	User            string    `json:"user"`
	Summary         Snapshot  `json:"summary"`
	LastError       string    `json:"last_error,omitempty"`
	EventCount      int       `json:"event_count"`
	SubscriberCount int       `json:"subscriber_count"`
}

// Service provides the daemon runtime and HTTP API.
type Service struct {
	cfg   Config
	store DebtStore
	log   *zap.Logger

	mu          sync.RWMutex
	startedAt   time.Time
	lastPollAt  time.Time
	pollCount   int64
	lastError   string
	hasSnapshot bool
	snapshot    Snapshot
	nextEventID int64
	events      []Event

	nextSubID int
	subs      map[int]chan Event
}

// New returns a new daemon service with the provided config.
func New(cfg Config, st DebtStore) *Service {
	if cfg.Interval < 2*time.Second {
		cfg.Interval = 10 * time.Second
	}
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8787"
	}
	if cfg.User == "" {
		cfg.User = "default"
	}
	if cfg.MaxMonths <= 0 {
		cfg.MaxMonths = payoff.DefaultMaxMonths
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Cache == nil {
		cfg.Cache = cache.NewMemory()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Service{
		cfg:       cfg,
		store:     st,
		log:       cfg.Logger,
		startedAt: time.Now(),
		subs:      make(map[int]chan Event),
	}
}

// Run starts HTTP endpoints and polling until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	s.log.Info("daemon listening", zap.String("addr", s.cfg.Addr), zap.String("user", s.cfg.User))

	// Seed initial snapshot so status is useful immediately.
	s.pollOnce(ctx)

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			s.log.Info("daemon shutting down")
			return server.Shutdown(shutdownCtx)
		case <-ticker.C:
			s.pollOnce(ctx)
		case err := <-errCh:
			return fmt.Errorf("daemon http server: %w", err)
		}
	}
}

// pollOnce re-plans the watched user's debts. Edits made by other processes
// (the CLI writing the same database) surface here as portfolio_delta events.
func (s *Service) pollOnce(ctx context.Context) {
	debts, err := s.store.ListDebts(ctx, s.cfg.User)
	var a payoff.Analysis
	if err == nil {
		a, err = s.plan(debts, money.Zero)
	}
	now := time.Now()
	if err != nil {
		s.mu.Lock()
		s.lastError = err.Error()
		s.lastPollAt = now
		s.pollCount++
		s.mu.Unlock()
		s.log.Warn("poll failed", zap.String("user", s.cfg.User), zap.Error(err))
		return
	}

	snap := snapshotFromAnalysis(s.cfg.User, a, now)

	var (
		ev      Event
		publish bool
	)

	s.mu.Lock()
	prev := s.snapshot
	prevExists := s.hasSnapshot

	s.hasSnapshot = true
	s.snapshot = snap
	s.lastPollAt = now
	s.pollCount++
	s.lastError = ""

	if !prevExists {
		ev = Event{Type: EventSnapshot, Timestamp: now, Snapshot: &snap}
		publish = true
	} else if delta := diffSnapshots(prev, snap); !delta.isZero() {
		ev = Event{Type: EventPortfolio, Timestamp: now, Snapshot: &snap, Delta: &delta}
		publish = true
	}
	s.mu.Unlock()

	if publish {
		s.publishEvent(ev)
	}
}

func (s *Service) plan(debts []model.Debt, extra money.Amount) (payoff.Analysis, error) {
	start := time.Now()
	a, err := payoff.Plan(debts, extra, s.cfg.Now(), payoff.Options{
		MaxMonths: s.cfg.MaxMonths,
		Decimals:  s.cfg.Decimals,
		Parallel:  true,
	})
	if err != nil {
		if errors.Is(err, payoff.ErrInvalidInput) {
			metrics.InvalidInputs.Inc()
		}
		return a, err
	}
	metrics.ObserveAnalysis(a, time.Since(start))
	return a, nil
}

func snapshotFromAnalysis(user string, a payoff.Analysis, at time.Time) Snapshot {
	snap := Snapshot{
		At:            at,
		User:          user,
		Debts:         a.DebtCount,
		TotalDebt:     a.TotalDebt,
		TotalEMI:      a.TotalEMI,
		InterestSaved: a.InterestSavedWithAvalanche,
		Recommended:   a.Recommended,
	}
	if a.Snowball.Converged {
		snap.SnowballMonths = a.Snowball.TotalMonths
	} else {
		snap.NonConvergent = true
	}
	if a.Avalanche.Converged {
		snap.AvalancheMonths = a.Avalanche.TotalMonths
	} else {
		snap.NonConvergent = true
	}
	return snap
}

func diffSnapshots(prev, curr Snapshot) Delta {
	return Delta{
		Debts:           curr.Debts - prev.Debts,
		TotalDebt:       curr.TotalDebt.Sub(prev.TotalDebt),
		SnowballMonths:  curr.SnowballMonths - prev.SnowballMonths,
		AvalancheMonths: curr.AvalancheMonths - prev.AvalancheMonths,
		InterestSaved:   curr.InterestSaved.Sub(prev.InterestSaved),
	}
}

func (s *Service) publishEvent(ev Event) {
	s.mu.Lock()
	s.nextEventID++
	ev.ID = s.nextEventID
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}
	s.events = append(s.events, ev)
	if len(s.events) > s.cfg.EventsBuffer {
		s.events = s.events[len(s.events)-s.cfg.EventsBuffer:]
	}

	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	s.mu.Unlock()
}

func (s *Service) snapshotStatus() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Status{
		StartedAt:       s.startedAt,
		LastPollAt:      s.lastPollAt,
		PollIntervalSec: int(s.cfg.Interval.Seconds()),
		PollCount:       s.pollCount,
		User:            s.cfg.User,
		Summary:         s.snapshot,
		LastError:       s.lastError,
		EventCount:      len(s.events),
		SubscriberCount: len(s.subs),
	}
}

func (s *Service) addSubscriber(ch chan Event) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.subs[id] = ch
	return id
}

func (s *Service) removeSubscriber(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}
