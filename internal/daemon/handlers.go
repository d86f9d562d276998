package daemon

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/theirongolddev/debtburn/internal/cache"
	"github.com/theirongolddev/debtburn/internal/metrics"
	"github.com/theirongolddev/debtburn/internal/model"
	"github.com/theirongolddev/debtburn/internal/money"
	"github.com/theirongolddev/debtburn/internal/payoff"
	"github.com/theirongolddev/debtburn/internal/store"
)

// maxDebtsPerRequest bounds stateless planning requests.
const maxDebtsPerRequest = 50

// Handler returns the chi router with all routes mounted.
func (s *Service) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		// The stream is long-lived and stays outside the request timeout.
		r.Get("/stream", s.handleStream)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(30 * time.Second))
			r.Get("/status", s.handleStatus)
			r.Get("/events", s.handleEvents)
			r.Post("/plan", s.handlePlan)

			// {id} is a user id for GET and a debt id for DELETE.
			r.Post("/debts", s.handleSaveDebt)
			r.Get("/debts/{id}", s.handleListDebts)
			r.Delete("/debts/{id}", s.handleDeleteDebt)
			r.Get("/debts/analysis/{id}", s.handleAnalysis)
			r.Get("/debts/analysis/{id}/history", s.handleHistory)
		})
	})

	return r
}

// observe logs each request and records its metrics under the route pattern.
func (s *Service) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		elapsed := time.Since(start)
		metrics.HTTPRequests.WithLabelValues(route, r.Method, strconv.Itoa(status)).Inc()
		metrics.HTTPDuration.WithLabelValues(route).Observe(elapsed.Seconds())
		s.log.Debug("request",
			zap.String("method", r.Method),
			zap.String("route", route),
			zap.Int("status", status),
			zap.Duration("elapsed", elapsed),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Service) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.snapshotStatus())
}

func (s *Service) handleEvents(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	events := make([]Event, len(s.events))
	copy(events, s.events)
	s.mu.RUnlock()

	writeJSON(w, http.StatusOK, events)
}

func (s *Service) handleListDebts(w http.ResponseWriter, r *http.Request) {
	debts, err := s.store.ListDebts(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.log.Error("listing debts", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list debts")
		return
	}
	writeJSON(w, http.StatusOK, debts)
}

func (s *Service) handleSaveDebt(w http.ResponseWriter, r *http.Request) {
	var d model.Debt
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&d); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	if d.UserID == "" {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}
	if d.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	// Check the record alone before it lands in the portfolio.
	probe := d
	if probe.ID == "" {
		probe.ID = "new"
	}
	if err := payoff.Validate([]model.Debt{probe}, money.Zero, payoff.Options{Decimals: s.cfg.Decimals}); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if d.Principal.IsZero() {
		d.Principal = d.Outstanding
	}

	saved, err := s.store.SaveDebt(r.Context(), d)
	if err != nil {
		s.log.Error("saving debt", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to save debt")
		return
	}
	s.log.Info("debt saved", zap.String("id", saved.ID), zap.String("user", saved.UserID))
	s.publishEvent(Event{Type: EventDebtSaved, Debt: &saved, DebtID: saved.ID})
	writeJSON(w, http.StatusCreated, saved)
}

func (s *Service) handleDeleteDebt(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	err := s.store.DeleteDebt(r.Context(), id)
	if errors.Is(err, store.ErrDebtNotFound) {
		writeError(w, http.StatusNotFound, "debt not found")
		return
	}
	if err != nil {
		s.log.Error("deleting debt", zap.String("id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to delete debt")
		return
	}
	s.log.Info("debt deleted", zap.String("id", id))
	s.publishEvent(Event{Type: EventDebtDeleted, DebtID: id})
	writeJSON(w, http.StatusOK, map[string]string{"message": "Debt deleted"})
}

func parseExtra(r *http.Request) (money.Amount, error) {
	raw := r.URL.Query().Get("extra_payment")
	if raw == "" {
		return money.Zero, nil
	}
	return money.Parse(raw)
}

func (s *Service) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	extra, err := parseExtra(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid extra_payment")
		return
	}
	var strategy payoff.Strategy
	if raw := r.URL.Query().Get("strategy"); raw != "" {
		if strategy, err = payoff.ParseStrategy(raw); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	userID := chi.URLParam(r, "id")
	debts, err := s.store.ListDebts(r.Context(), userID)
	if err != nil {
		s.log.Error("listing debts", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load debts")
		return
	}

	body, hit, err := s.analysis(r, userID, debts, extra)
	if errors.Is(err, payoff.ErrInvalidInput) {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err != nil {
		s.log.Error("analysis", zap.String("user", userID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "analysis failed")
		return
	}

	if hit {
		w.Header().Set("X-Cache", "hit")
	} else {
		w.Header().Set("X-Cache", "miss")
	}
	if strategy != "" {
		var parts map[string]json.RawMessage
		if err := json.Unmarshal(body, &parts); err != nil {
			writeError(w, http.StatusInternalServerError, "analysis failed")
			return
		}
		body = parts[string(strategy)+"_analysis"]
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// analysis returns the encoded comparison, from cache when possible.
func (s *Service) analysis(r *http.Request, userID string, debts []model.Debt, extra money.Amount) ([]byte, bool, error) {
	ctx := r.Context()
	ref := s.cfg.Now()
	key := cache.Key(debts, extra, ref, s.cfg.MaxMonths, s.cfg.Decimals)

	body, ok, err := s.cfg.Cache.Get(ctx, key)
	switch {
	case err != nil:
		metrics.CacheLookups.WithLabelValues("error").Inc()
		s.log.Warn("cache get", zap.Error(err))
	case ok:
		metrics.CacheLookups.WithLabelValues("hit").Inc()
		return body, true, nil
	default:
		metrics.CacheLookups.WithLabelValues("miss").Inc()
	}

	a, err := s.plan(debts, extra)
	if err != nil {
		return nil, false, err
	}
	body, err = json.Marshal(a)
	if err != nil {
		return nil, false, fmt.Errorf("encoding analysis: %w", err)
	}
	if err := s.cfg.Cache.Set(ctx, key, body, s.cfg.CacheTTL); err != nil {
		s.log.Warn("cache set", zap.Error(err))
	}
	if s.cfg.SaveHistory {
		if _, err := s.store.SaveAnalysis(ctx, userID, a); err != nil {
			s.log.Warn("saving analysis history", zap.Error(err))
		}
	}
	return body, false, nil
}

type historyItem struct {
	ID              string          `json:"id"`
	CreatedAt       time.Time       `json:"created_at"`
	ExtraPayment    money.Amount    `json:"extra_payment"`
	TotalDebt       money.Amount    `json:"total_debt"`
	SnowballMonths  *int            `json:"snowball_months"`
	AvalancheMonths *int            `json:"avalanche_months"`
	InterestSaved   money.Amount    `json:"interest_saved_with_avalanche"`
	Recommended     payoff.Strategy `json:"recommended_strategy,omitempty"`
}

func (s *Service) handleHistory(w http.ResponseWriter, r *http.Request) {
	var limit int
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}
	recs, err := s.store.RecentAnalyses(r.Context(), chi.URLParam(r, "id"), limit)
	if err != nil {
		s.log.Error("listing history", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load history")
		return
	}
	items := make([]historyItem, 0, len(recs))
	for _, rec := range recs {
		items = append(items, historyItem{
			ID:              rec.ID,
			CreatedAt:       rec.CreatedAt,
			ExtraPayment:    rec.ExtraPayment,
			TotalDebt:       rec.TotalDebt,
			SnowballMonths:  rec.SnowballMonths,
			AvalancheMonths: rec.AvalancheMonths,
			InterestSaved:   rec.InterestSaved,
			Recommended:     rec.Recommended,
		})
	}
	writeJSON(w, http.StatusOK, items)
}

type planRequest struct {
	Debts        []model.Debt `json:"debts"`
	ExtraPayment money.Amount `json:"extra_payment"`
}

// handlePlan plans debts sent in the body without touching the store.
func (s *Service) handlePlan(w http.ResponseWriter, r *http.Request) {
	var req planRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	if len(req.Debts) > maxDebtsPerRequest {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("at most %d debts per request", maxDebtsPerRequest))
		return
	}
	a, err := s.plan(req.Debts, req.ExtraPayment)
	if errors.Is(err, payoff.ErrInvalidInput) {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "analysis failed")
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (s *Service) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan Event, 16)
	id := s.addSubscriber(ch)
	defer s.removeSubscriber(id)

	current := s.snapshotStatus().Summary
	writeSSE(w, Event{Type: EventSnapshot, Timestamp: time.Now(), Snapshot: &current})
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-ch:
			writeSSE(w, ev)
			flusher.Flush()
		}
	}
}

func writeSSE(w http.ResponseWriter, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintf(w, "event: %s\n", ev.Type)
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
}
