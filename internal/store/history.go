package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/theirongolddev/debtburn/internal/money"
	"github.com/theirongolddev/debtburn/internal/payoff"
)

// AnalysisRecord is one saved comparison.
type AnalysisRecord struct {
	ID              string
	UserID          string
	CreatedAt       time.Time
	ExtraPayment    money.Amount
	TotalDebt       money.Amount
	SnowballMonths  *int
	AvalancheMonths *int
	InterestSaved   money.Amount
	Recommended     payoff.Strategy
	Payload         json.RawMessage
}

func convergedMonths(p payoff.PlanResult) *int {
	if !p.Converged {
		return nil
	}
	m := p.TotalMonths
	return &m
}

// SaveAnalysis appends a to userID's history.
func (s *Store) SaveAnalysis(ctx context.Context, userID string, a payoff.Analysis) (AnalysisRecord, error) {
	payload, err := json.Marshal(a)
	if err != nil {
		return AnalysisRecord{}, fmt.Errorf("encoding analysis: %w", err)
	}
	rec := AnalysisRecord{
		ID:              uuid.NewString(),
		UserID:          userID,
		CreatedAt:       time.Now().UTC(),
		ExtraPayment:    a.ExtraPayment,
		TotalDebt:       a.TotalDebt,
		SnowballMonths:  convergedMonths(a.Snowball),
		AvalancheMonths: convergedMonths(a.Avalanche),
		InterestSaved:   a.InterestSavedWithAvalanche,
		Recommended:     a.Recommended,
		Payload:         payload,
	}

	_, err = s.db.ExecContext(ctx, s.rebind(`INSERT INTO analyses
		(id, user_id, created_at, extra_payment, total_debt, snowball_months,
		 avalanche_months, interest_saved, recommended, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		rec.ID, rec.UserID, rec.CreatedAt.Format(tsLayout), rec.ExtraPayment.String(), rec.TotalDebt.String(),
		nullInt(rec.SnowballMonths), nullInt(rec.AvalancheMonths), rec.InterestSaved.String(),
		string(rec.Recommended), string(payload),
	)
	if err != nil {
		return rec, fmt.Errorf("saving analysis: %w", err)
	}
	return rec, nil
}

// RecentAnalyses returns up to limit records for userID, newest first.
func (s *Store) RecentAnalyses(ctx context.Context, userID string, limit int) ([]AnalysisRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, s.rebind(`SELECT
		id, user_id, created_at, extra_payment, total_debt, snowball_months,
		avalanche_months, interest_saved, recommended, payload
		FROM analyses WHERE user_id = ? ORDER BY created_at DESC LIMIT ?`), userID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing analyses: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []AnalysisRecord
	for rows.Next() {
		var rec AnalysisRecord
		var created, payload string
		var snow, ava sql.NullInt64
		var recommended sql.NullString
		if err := rows.Scan(&rec.ID, &rec.UserID, &created, &rec.ExtraPayment, &rec.TotalDebt,
			&snow, &ava, &rec.InterestSaved, &recommended, &payload); err != nil {
			return nil, err
		}
		rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		if snow.Valid {
			m := int(snow.Int64)
			rec.SnowballMonths = &m
		}
		if ava.Valid {
			m := int(ava.Int64)
			rec.AvalancheMonths = &m
		}
		if recommended.Valid {
			rec.Recommended = payoff.Strategy(recommended.String)
		}
		rec.Payload = json.RawMessage(payload)
		out = append(out, rec)
	}
	return out, rows.Err()
}

func nullInt(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}
