/*
Package sqlite provides a SQLite-backed implementation of club.Store.

PURPOSE:
  Durable persistence for the club aggregate. The engine works on an
  in-memory Club; the transport layer saves a snapshot here after every
  successful mutation and restores it at startup.

KEY TABLES:
  club_meta: Single row: owner, enforcement flag, last billing date
  config:    Single row: category prices, discount amount, streak
  staff:     One row per staff identity
  members:   One row per member, seq column preserving insertion order
  payments:  One row per payment, seq column preserving ledger order

SNAPSHOT SEMANTICS:
  Save replaces the whole snapshot inside one SQL transaction. The club is
  a single serialized aggregate, so replace-on-save keeps the ledger-order
  invariant trivially intact and avoids any partial-write states.

AMOUNTS:
  Stored as exact decimal strings, never floats.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging): readers don't block the
  single writer, and crash recovery is cleaner.

USAGE:
  store, err := sqlite.New("./data/club.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - club/store.go: Interface and snapshot definitions
  - club/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/warp/club-engine/club"
)

// Store implements club.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// New creates a SQLite store at the given path. Use ":memory:" for an
// in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS club_meta (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		owner TEXT NOT NULL,
		enforced INTEGER NOT NULL,
		last_billing INTEGER
	);

	CREATE TABLE IF NOT EXISTS config (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		price_a TEXT NOT NULL,
		price_b TEXT NOT NULL,
		price_c TEXT NOT NULL,
		discount_amount TEXT NOT NULL,
		streak_required INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS staff (
		identity TEXT PRIMARY KEY
	);

	CREATE TABLE IF NOT EXISTS members (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		member_id INTEGER NOT NULL UNIQUE,
		name TEXT NOT NULL,
		category TEXT NOT NULL,
		activity TEXT
	);

	CREATE TABLE IF NOT EXISTS payments (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		member_id INTEGER NOT NULL,
		amount TEXT NOT NULL,
		due_date INTEGER NOT NULL,
		settled_at INTEGER,
		discounted INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_payments_member ON payments(member_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Load returns the stored snapshot, or nil if the store has never been
// saved to.
func (s *Store) Load(ctx context.Context) (*club.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var snap club.Snapshot

	var enforced int
	var lastBilling sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		`SELECT owner, enforced, last_billing FROM club_meta WHERE id = 1`,
	).Scan(&snap.Access.Owner, &enforced, &lastBilling)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load club meta: %w", err)
	}
	snap.Access.Enforced = enforced != 0
	if lastBilling.Valid {
		t := club.Timestamp(lastBilling.Int64)
		snap.LastBilling = &t
	}

	var priceA, priceB, priceC, discount string
	err = s.db.QueryRowContext(ctx,
		`SELECT price_a, price_b, price_c, discount_amount, streak_required FROM config WHERE id = 1`,
	).Scan(&priceA, &priceB, &priceC, &discount, &snap.Config.StreakRequired)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if snap.Config.PriceA, err = decimal.NewFromString(priceA); err != nil {
		return nil, fmt.Errorf("corrupt price_a: %w", err)
	}
	if snap.Config.PriceB, err = decimal.NewFromString(priceB); err != nil {
		return nil, fmt.Errorf("corrupt price_b: %w", err)
	}
	if snap.Config.PriceC, err = decimal.NewFromString(priceC); err != nil {
		return nil, fmt.Errorf("corrupt price_c: %w", err)
	}
	if snap.Config.DiscountAmount, err = decimal.NewFromString(discount); err != nil {
		return nil, fmt.Errorf("corrupt discount_amount: %w", err)
	}

	snap.Access.Staff = make(map[club.Identity]bool)
	staffRows, err := s.db.QueryContext(ctx, `SELECT identity FROM staff`)
	if err != nil {
		return nil, fmt.Errorf("failed to load staff: %w", err)
	}
	defer staffRows.Close()
	for staffRows.Next() {
		var id string
		if err := staffRows.Scan(&id); err != nil {
			return nil, err
		}
		snap.Access.Staff[club.Identity(id)] = true
	}
	if err := staffRows.Err(); err != nil {
		return nil, err
	}

	snap.Members, err = s.loadMembers(ctx)
	if err != nil {
		return nil, err
	}
	snap.Payments, err = s.loadPayments(ctx)
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

func (s *Store) loadMembers(ctx context.Context) ([]club.Member, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT member_id, name, category, activity FROM members ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("failed to load members: %w", err)
	}
	defer rows.Close()

	members := make([]club.Member, 0)
	for rows.Next() {
		var m club.Member
		var activity sql.NullString
		if err := rows.Scan(&m.ID, &m.Name, &m.Category, &activity); err != nil {
			return nil, err
		}
		if activity.Valid {
			a := club.Activity(activity.String)
			m.Activity = &a
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (s *Store) loadPayments(ctx context.Context) ([]club.Payment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT member_id, amount, due_date, settled_at, discounted FROM payments ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("failed to load payments: %w", err)
	}
	defer rows.Close()

	payments := make([]club.Payment, 0)
	for rows.Next() {
		var p club.Payment
		var amount string
		var settledAt sql.NullInt64
		var discounted int
		if err := rows.Scan(&p.MemberID, &amount, &p.DueDate, &settledAt, &discounted); err != nil {
			return nil, err
		}
		if p.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("corrupt payment amount: %w", err)
		}
		if settledAt.Valid {
			t := club.Timestamp(settledAt.Int64)
			p.SettledAt = &t
		}
		p.Discounted = discounted != 0
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

// Save replaces the stored snapshot atomically.
func (s *Store) Save(ctx context.Context, snap club.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"club_meta", "config", "staff", "members", "payments"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	var lastBilling any
	if snap.LastBilling != nil {
		lastBilling = int64(*snap.LastBilling)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO club_meta (id, owner, enforced, last_billing) VALUES (1, ?, ?, ?)`,
		string(snap.Access.Owner), boolToInt(snap.Access.Enforced), lastBilling); err != nil {
		return fmt.Errorf("failed to save club meta: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO config (id, price_a, price_b, price_c, discount_amount, streak_required)
		 VALUES (1, ?, ?, ?, ?, ?)`,
		snap.Config.PriceA.String(), snap.Config.PriceB.String(), snap.Config.PriceC.String(),
		snap.Config.DiscountAmount.String(), snap.Config.StreakRequired); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	for id := range snap.Access.Staff {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO staff (identity) VALUES (?)`, string(id)); err != nil {
			return fmt.Errorf("failed to save staff: %w", err)
		}
	}

	for _, m := range snap.Members {
		var activity any
		if m.Activity != nil {
			activity = string(*m.Activity)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO members (member_id, name, category, activity) VALUES (?, ?, ?, ?)`,
			m.ID, m.Name, string(m.Category), activity); err != nil {
			return fmt.Errorf("failed to save member %d: %w", m.ID, err)
		}
	}

	for _, p := range snap.Payments {
		var settledAt any
		if p.SettledAt != nil {
			settledAt = int64(*p.SettledAt)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO payments (member_id, amount, due_date, settled_at, discounted)
			 VALUES (?, ?, ?, ?, ?)`,
			p.MemberID, p.Amount.String(), int64(p.DueDate), settledAt, boolToInt(p.Discounted)); err != nil {
			return fmt.Errorf("failed to save payment for member %d: %w", p.MemberID, err)
		}
	}

	return tx.Commit()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
