// Package store persists debts and analysis history in SQLite or PostgreSQL.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/theirongolddev/debtburn/internal/model"

	_ "github.com/lib/pq"  // register postgres driver
	_ "modernc.org/sqlite" // register sqlite driver
)

// ErrDebtNotFound is returned when no debt matches the given id.
var ErrDebtNotFound = errors.New("debt not found")

// tsLayout is fixed-width so TEXT ordering matches time ordering.
const tsLayout = "2006-01-02T15:04:05.000000Z07:00"

// Store is the debt repository.
type Store struct {
	db     *sql.DB
	driver string
}

// IsPostgres reports whether dsn selects the PostgreSQL driver.
func IsPostgres(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}

// Open opens or creates the store. A postgres:// DSN uses PostgreSQL;
// anything else is a SQLite file path.
func Open(dsn string) (*Store, error) {
	driver := "sqlite"
	source := dsn
	if IsPostgres(dsn) {
		driver = "postgres"
	} else {
		dir := filepath.Dir(dsn)
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("creating data dir: %w", err)
		}
		source = dsn + "?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open(driver, source)
	if err != nil {
		return nil, fmt.Errorf("opening %s db: %w", driver, err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Store{db: db, driver: driver}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Driver returns "sqlite" or "postgres".
func (s *Store) Driver() string {
	return s.driver
}

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// rebind rewrites ? placeholders to $n for PostgreSQL.
func (s *Store) rebind(query string) string {
	if s.driver != "postgres" {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

const upsertDebtSQL = `INSERT INTO debts
	(id, user_id, name, kind, principal, outstanding, interest_rate, emi_amount,
	 remaining_tenure, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (id) DO UPDATE SET
	 user_id = excluded.user_id, name = excluded.name, kind = excluded.kind,
	 principal = excluded.principal, outstanding = excluded.outstanding,
	 interest_rate = excluded.interest_rate, emi_amount = excluded.emi_amount,
	 remaining_tenure = excluded.remaining_tenure, updated_at = excluded.updated_at`

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Store) upsert(ctx context.Context, ex execer, d model.Debt) (model.Debt, error) {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if d.Kind == "" {
		d.Kind = model.KindOther
	}
	now := time.Now().UTC()
	if d.CreatedAt.IsZero() {
		d.CreatedAt = now
	}
	_, err := ex.ExecContext(ctx, s.rebind(upsertDebtSQL),
		d.ID, d.UserID, d.Name, string(d.Kind),
		d.Principal.String(), d.Outstanding.String(), d.AnnualRate.String(), d.MinimumPayment.String(),
		d.RemainingTermMonths, d.CreatedAt.UTC().Format(tsLayout), now.Format(tsLayout),
	)
	if err != nil {
		return d, fmt.Errorf("saving debt %s: %w", d.ID, err)
	}
	return d, nil
}

// SaveDebt inserts or updates a debt, assigning an id when it has none.
func (s *Store) SaveDebt(ctx context.Context, d model.Debt) (model.Debt, error) {
	return s.upsert(ctx, s.db, d)
}

// ImportDebts saves debts for userID in one transaction. With replace set,
// the user's existing debts are removed first.
func (s *Store) ImportDebts(ctx context.Context, userID string, debts []model.Debt, replace bool) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	if replace {
		if _, err := tx.ExecContext(ctx, s.rebind("DELETE FROM debts WHERE user_id = ?"), userID); err != nil {
			return 0, fmt.Errorf("clearing debts: %w", err)
		}
	}
	base := time.Now().UTC()
	for i, d := range debts {
		d.UserID = userID
		if d.CreatedAt.IsZero() {
			// keep file order stable under ORDER BY created_at
			d.CreatedAt = base.Add(time.Duration(i) * time.Microsecond)
		}
		if _, err := s.upsert(ctx, tx, d); err != nil {
			return 0, err
		}
	}
	return len(debts), tx.Commit()
}

const selectDebtSQL = `SELECT id, user_id, name, kind, principal, outstanding,
	interest_rate, emi_amount, remaining_tenure, created_at FROM debts`

type scanner interface {
	Scan(dest ...any) error
}

func scanDebt(sc scanner) (model.Debt, error) {
	var d model.Debt
	var kind, created string
	err := sc.Scan(&d.ID, &d.UserID, &d.Name, &kind, &d.Principal, &d.Outstanding,
		&d.AnnualRate, &d.MinimumPayment, &d.RemainingTermMonths, &created)
	if err != nil {
		return d, err
	}
	d.Kind = model.Kind(kind)
	if created != "" {
		d.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
	}
	return d, nil
}

// ListDebts returns userID's debts in creation order.
func (s *Store) ListDebts(ctx context.Context, userID string) ([]model.Debt, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(selectDebtSQL+" WHERE user_id = ? ORDER BY created_at, id"), userID)
	if err != nil {
		return nil, fmt.Errorf("listing debts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	debts := []model.Debt{}
	for rows.Next() {
		d, err := scanDebt(rows)
		if err != nil {
			return nil, err
		}
		debts = append(debts, d)
	}
	return debts, rows.Err()
}

// GetDebt returns one debt by id.
func (s *Store) GetDebt(ctx context.Context, id string) (model.Debt, error) {
	d, err := scanDebt(s.db.QueryRowContext(ctx, s.rebind(selectDebtSQL+" WHERE id = ?"), id))
	if errors.Is(err, sql.ErrNoRows) {
		return d, ErrDebtNotFound
	}
	return d, err
}

// DeleteDebt removes one debt.
func (s *Store) DeleteDebt(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, s.rebind("DELETE FROM debts WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("deleting debt: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrDebtNotFound
	}
	return nil
}

// DebtCount returns how many debts userID has.
func (s *Store) DebtCount(ctx context.Context, userID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, s.rebind("SELECT COUNT(*) FROM debts WHERE user_id = ?"), userID).Scan(&count)
	return count, err
}
