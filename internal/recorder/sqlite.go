package recorder

import (
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists pool history to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so reporting queries don't block cycle writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS contributions (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp INTEGER NOT NULL,
			member    TEXT,
			address   TEXT,
			amount    INTEGER,
			tx_id     TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_contributions_ts ON contributions(timestamp)`,

		`CREATE TABLE IF NOT EXISTS payouts (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp   INTEGER NOT NULL,
			recipient   TEXT,
			address     TEXT,
			amount      INTEGER,
			total       INTEGER,
			cycle_reset INTEGER,
			tx_id       TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_payouts_ts ON payouts(timestamp)`,

		`CREATE TABLE IF NOT EXISTS fee_distributions (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp   INTEGER NOT NULL,
			fee         INTEGER,
			distributed INTEGER,
			remainder   INTEGER,
			share_count INTEGER,
			no_active   INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_fees_ts ON fee_distributions(timestamp)`,

		`CREATE TABLE IF NOT EXISTS swaps (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp INTEGER NOT NULL,
			bought    TEXT,
			buyer     TEXT,
			amount    INTEGER,
			cost      INTEGER,
			fee       INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_swaps_ts ON swaps(timestamp)`,

		`CREATE TABLE IF NOT EXISTS membership_events (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp  INTEGER NOT NULL,
			member     TEXT,
			address    TEXT,
			event_type TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_membership_ts ON membership_events(timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordContribution(evt *ContributionEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO contributions
		(timestamp, member, address, amount, tx_id)
		VALUES (?,?,?,?,?)`,
		time.Now().Unix(), evt.Member, evt.Address, evt.Amount, evt.TxID,
	)
	return err
}

func (r *SQLiteRecorder) RecordPayout(evt *PayoutEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO payouts
		(timestamp, recipient, address, amount, total, cycle_reset, tx_id)
		VALUES (?,?,?,?,?,?,?)`,
		time.Now().Unix(), evt.Recipient, evt.Address, evt.Amount,
		evt.Total, evt.CycleReset, evt.TxID,
	)
	return err
}

func (r *SQLiteRecorder) RecordFeeDistribution(evt *FeeEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO fee_distributions
		(timestamp, fee, distributed, remainder, share_count, no_active)
		VALUES (?,?,?,?,?,?)`,
		time.Now().Unix(), evt.Fee, evt.Distributed, evt.Remainder,
		evt.ShareCount, evt.NoActive,
	)
	return err
}

func (r *SQLiteRecorder) RecordSwap(evt *SwapEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO swaps
		(timestamp, bought, buyer, amount, cost, fee)
		VALUES (?,?,?,?,?,?)`,
		time.Now().Unix(), evt.Bought, evt.Buyer, evt.Amount, evt.Cost, evt.Fee,
	)
	return err
}

func (r *SQLiteRecorder) RecordMembership(evt *MembershipEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO membership_events
		(timestamp, member, address, event_type)
		VALUES (?,?,?,?)`,
		time.Now().Unix(), evt.Member, evt.Address, evt.EventType,
	)
	return err
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}
