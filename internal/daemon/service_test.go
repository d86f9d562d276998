package daemon

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/theirongolddev/debtburn/internal/model"
	"github.com/theirongolddev/debtburn/internal/money"
	"github.com/theirongolddev/debtburn/internal/store"
)

var fixedNow = func() time.Time { return time.Date(2025, time.January, 15, 9, 0, 0, 0, time.UTC) }

func newTestService(t *testing.T) (*Service, *store.Store) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "debts.db"))
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	svc := New(Config{User: "u1", EventsBuffer: 50, Now: fixedNow, SaveHistory: true}, st)
	return svc, st
}

func seed(t *testing.T, st *store.Store, debts ...model.Debt) {
	t.Helper()
	if _, err := st.ImportDebts(context.Background(), "u1", debts, true); err != nil {
		t.Fatalf("ImportDebts: %v", err)
	}
}

func debt(id, outstanding, rate, minimum string) model.Debt {
	return model.Debt{
		ID:             id,
		Name:           "Debt " + id,
		Kind:           model.KindPersonalLoan,
		Principal:      money.MustParse(outstanding),
		Outstanding:    money.MustParse(outstanding),
		AnnualRate:     money.MustParse(rate),
		MinimumPayment: money.MustParse(minimum),
	}
}

func TestDiffSnapshots(t *testing.T) {
	prev := Snapshot{
		Debts:           3,
		TotalDebt:       money.MustParse("246000"),
		SnowballMonths:  13,
		AvalancheMonths: 13,
		InterestSaved:   money.Zero,
	}
	curr := Snapshot{
		Debts:           2,
		TotalDebt:       money.MustParse("198000"),
		SnowballMonths:  12,
		AvalancheMonths: 11,
		InterestSaved:   money.MustParse("55"),
	}

	delta := diffSnapshots(prev, curr)
	if delta.Debts != -1 {
		t.Fatalf("Debts delta = %d, want -1", delta.Debts)
	}
	if !delta.TotalDebt.Equal(money.MustParse("-48000")) {
		t.Fatalf("TotalDebt delta = %s, want -48000", delta.TotalDebt)
	}
	if delta.SnowballMonths != -1 || delta.AvalancheMonths != -2 {
		t.Fatalf("month deltas = %d/%d, want -1/-2", delta.SnowballMonths, delta.AvalancheMonths)
	}
	if delta.isZero() {
		t.Fatal("delta unexpectedly reported as zero")
	}
	if !diffSnapshots(curr, curr).isZero() {
		t.Fatal("identical snapshots should give a zero delta")
	}
}

func TestPublishEventRingBuffer(t *testing.T) {
	s := New(Config{Interval: 10 * time.Second, EventsBuffer: 2}, nil)

	s.publishEvent(Event{Type: EventDebtSaved})
	s.publishEvent(Event{Type: EventDebtSaved})
	s.publishEvent(Event{Type: EventDebtDeleted})

	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.events) != 2 {
		t.Fatalf("events len = %d, want 2", len(s.events))
	}
	if s.events[0].ID != 2 || s.events[1].ID != 3 {
		t.Fatalf("events ring contains IDs [%d, %d], want [2, 3]", s.events[0].ID, s.events[1].ID)
	}
}

func TestPollOncePublishesDeltas(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()
	seed(t, st, debt("a", "10000", "24", "500"), debt("b", "5000", "12", "300"))

	svc.pollOnce(ctx)
	svc.pollOnce(ctx) // unchanged: no event

	if err := st.DeleteDebt(ctx, "b"); err != nil {
		t.Fatal(err)
	}
	svc.pollOnce(ctx)

	svc.mu.RLock()
	defer svc.mu.RUnlock()
	if len(svc.events) != 2 {
		t.Fatalf("events = %d, want 2 (snapshot + delta)", len(svc.events))
	}
	if svc.events[0].Type != EventSnapshot || svc.events[1].Type != EventPortfolio {
		t.Fatalf("event types = %s, %s", svc.events[0].Type, svc.events[1].Type)
	}
	if svc.events[1].Delta.Debts != -1 {
		t.Errorf("delta debts = %d, want -1", svc.events[1].Delta.Debts)
	}
	if svc.snapshot.SnowballMonths == 0 {
		t.Error("snapshot missing snowball months")
	}
}

func TestAnalysisEndpoint(t *testing.T) {
	svc, st := newTestService(t)
	seed(t, st, debt("a", "10000", "24", "500"), debt("b", "5000", "12", "300"))
	h := svc.Handler()

	get := func(url string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, url, nil))
		return rec
	}

	rec := get("/v1/debts/analysis/u1?extra_payment=200")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	if got := rec.Header().Get("X-Cache"); got != "miss" {
		t.Errorf("X-Cache = %q, want miss", got)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["total_debt"] != float64(15000) {
		t.Errorf("total_debt = %v, want 15000", body["total_debt"])
	}
	if body["interest_saved_with_avalanche"] != float64(233) {
		t.Errorf("interest_saved_with_avalanche = %v, want 233", body["interest_saved_with_avalanche"])
	}
	ava := body["avalanche_analysis"].(map[string]any)
	if ava["debt_free_date"] != "July 2026" {
		t.Errorf("avalanche debt_free_date = %v, want July 2026", ava["debt_free_date"])
	}

	again := get("/v1/debts/analysis/u1?extra_payment=200")
	if got := again.Header().Get("X-Cache"); got != "hit" {
		t.Errorf("second X-Cache = %q, want hit", got)
	}
	if again.Body.String() != rec.Body.String() {
		t.Error("cached body differs from computed body")
	}

	one := get("/v1/debts/analysis/u1?strategy=snowball")
	var plan map[string]any
	if err := json.Unmarshal(one.Body.Bytes(), &plan); err != nil {
		t.Fatal(err)
	}
	if plan["strategy"] != "snowball" || plan["total_months"] != float64(23) {
		t.Errorf("snowball plan = %v", plan)
	}

	if rec := get("/v1/debts/analysis/u1?extra_payment=abc"); rec.Code != http.StatusBadRequest {
		t.Errorf("bad extra status = %d, want 400", rec.Code)
	}
	if rec := get("/v1/debts/analysis/u1?extra_payment=-5"); rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("negative extra status = %d, want 422", rec.Code)
	}

	hist := get("/v1/debts/analysis/u1/history")
	var items []map[string]any
	if err := json.Unmarshal(hist.Body.Bytes(), &items); err != nil {
		t.Fatal(err)
	}
	if len(items) != 2 {
		t.Errorf("history has %d items, want 2 (one per computed analysis)", len(items))
	}
}

func TestAnalysisCacheFollowsRename(t *testing.T) {
	svc, st := newTestService(t)
	seed(t, st, debt("a", "10000", "24", "500"), debt("b", "5000", "12", "300"))
	h := svc.Handler()

	get := func() *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/debts/analysis/u1", nil))
		return rec
	}

	if rec := get(); rec.Header().Get("X-Cache") != "miss" {
		t.Fatalf("first X-Cache = %q, want miss", rec.Header().Get("X-Cache"))
	}

	renamed := debt("a", "10000", "24", "500")
	renamed.Name = "HDFC Card"
	seed(t, st, renamed, debt("b", "5000", "12", "300"))

	rec := get()
	if got := rec.Header().Get("X-Cache"); got != "miss" {
		t.Errorf("X-Cache after rename = %q, want miss", got)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "HDFC Card") {
		t.Error("analysis should carry the new debt name")
	}
	if strings.Contains(body, "Debt a") {
		t.Error("analysis still carries the old debt name")
	}
}

func TestHistoryLimit(t *testing.T) {
	svc, st := newTestService(t)
	seed(t, st, debt("a", "10000", "24", "500"))
	h := svc.Handler()

	for _, url := range []string{"/v1/debts/analysis/u1", "/v1/debts/analysis/u1?extra_payment=100"} {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, url, nil))
	}

	tests := []struct {
		query string
		code  int
		items int
	}{
		{"", http.StatusOK, 2},
		{"?limit=1", http.StatusOK, 1},
		{"?limit=abc", http.StatusBadRequest, 0},
		{"?limit=-3", http.StatusBadRequest, 0},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/debts/analysis/u1/history"+tt.query, nil))
			if rec.Code != tt.code {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.code, rec.Body)
			}
			if tt.code != http.StatusOK {
				return
			}
			var items []map[string]any
			if err := json.Unmarshal(rec.Body.Bytes(), &items); err != nil {
				t.Fatal(err)
			}
			if len(items) != tt.items {
				t.Errorf("history has %d items, want %d", len(items), tt.items)
			}
		})
	}
}

func TestDebtCRUDEndpoints(t *testing.T) {
	svc, _ := newTestService(t)
	h := svc.Handler()

	body := `{"user_id":"u1","name":"HDFC Credit Card","type":"credit_card","principal":50000,"outstanding":42000,"interest_rate":36,"emi_amount":5000,"remaining_tenure":10}`
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/debts", strings.NewReader(body)))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rec.Code, rec.Body)
	}
	var created model.Debt
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatal(err)
	}
	if created.ID == "" {
		t.Fatal("created debt has no id")
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/debts/u1", nil))
	var listed []model.Debt
	if err := json.Unmarshal(rec.Body.Bytes(), &listed); err != nil {
		t.Fatal(err)
	}
	if len(listed) != 1 || !listed[0].Outstanding.Equal(money.MustParse("42000")) {
		t.Fatalf("listed = %+v", listed)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/v1/debts/"+created.ID, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d", rec.Code)
	}
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/v1/debts/"+created.ID, nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("second delete status = %d, want 404", rec.Code)
	}

	bad := `{"user_id":"u1","name":"Broken","outstanding":1000,"interest_rate":12,"emi_amount":0}`
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/debts", strings.NewReader(bad)))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("invalid create status = %d, want 422", rec.Code)
	}

	svc.mu.RLock()
	defer svc.mu.RUnlock()
	if len(svc.events) != 2 || svc.events[0].Type != EventDebtSaved || svc.events[1].Type != EventDebtDeleted {
		t.Errorf("events = %+v", svc.events)
	}
}

func TestPlanEndpoint(t *testing.T) {
	svc, _ := newTestService(t)
	body := `{"extra_payment":0,"debts":[{"id":"x","name":"Phone","outstanding":1200,"interest_rate":0,"emi_amount":100}]}`
	rec := httptest.NewRecorder()
	svc.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/plan", strings.NewReader(body)))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	var got map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	snow := got["snowball_analysis"].(map[string]any)
	if snow["total_months"] != float64(12) || snow["debt_free_date"] != "January 2026" {
		t.Errorf("snowball = %v", snow)
	}
}
