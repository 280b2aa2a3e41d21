package recorder

import (
	"database/sql"
	"fmt"
	"log"
	"sync"

	_ "modernc.org/sqlite"

	"LootSpinner/internal/model"
)

// SQLiteRecorder keeps a structured history of runs in a SQLite database.
// It is write-only: nothing reads it back when a run starts.
type SQLiteRecorder struct {
	db    *sql.DB
	mu    sync.Mutex
	runID string
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode lets external readers query while a run is writing.
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
		`CREATE TABLE IF NOT EXISTS runs (
			id               TEXT PRIMARY KEY,
			wallet           TEXT NOT NULL,
			started_at       INTEGER NOT NULL,
			finished_at      INTEGER,
			stop_reason      TEXT,
			spin_count       INTEGER,
			successful_spins INTEGER,
			total_items      INTEGER,
			common_count     INTEGER,
			rare_count       INTEGER,
			legendary_count  INTEGER,
			total_spent      REAL,
			total_earned     REAL
		)`,

		`CREATE TABLE IF NOT EXISTS spins (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id     TEXT NOT NULL,
			attempt    INTEGER NOT NULL,
			timestamp  INTEGER NOT NULL,
			item_count INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_spins_run ON spins(run_id)`,

		`CREATE TABLE IF NOT EXISTS items (
			id               INTEGER PRIMARY KEY AUTOINCREMENT,
			spin_id          INTEGER NOT NULL,
			run_id           TEXT NOT NULL,
			item_index       INTEGER,
			name             TEXT,
			price            REAL,
			quick_sell_price REAL,
			rarity           TEXT,
			disposition      TEXT,
			item_time        TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_items_run ON items(run_id)`,

		`CREATE TABLE IF NOT EXISTS account_snapshots (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id       TEXT NOT NULL,
			timestamp    INTEGER NOT NULL,
			phase        TEXT,
			attempt      INTEGER,
			jewels       TEXT,
			total_spent  REAL,
			multiplier   REAL,
			auto_sell    INTEGER,
			season_level INTEGER,
			season_xp    REAL,
			raw          TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_accounts_run ON account_snapshots(run_id)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) Start(info *model.RunInfo) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.runID = info.ID
	_, err := r.db.Exec(`INSERT INTO runs (id, wallet, started_at) VALUES (?,?,?)`,
		info.ID, string(info.Wallet), info.StartedAt.Unix())
	return err
}

// RecordRawSpin is a no-op; the normalized items are stored by RecordSpin.
func (r *SQLiteRecorder) RecordRawSpin(_ []byte) error { return nil }

func (r *SQLiteRecorder) RecordSpin(evt *SpinEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin spin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(`INSERT INTO spins (run_id, attempt, timestamp, item_count) VALUES (?,?,?,?)`,
		r.runID, evt.Attempt, evt.At.Unix(), len(evt.Items))
	if err != nil {
		return fmt.Errorf("insert spin: %w", err)
	}
	spinID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("spin id: %w", err)
	}
	for _, it := range evt.Items {
		if _, err := tx.Exec(`INSERT INTO items
			(spin_id, run_id, item_index, name, price, quick_sell_price, rarity, disposition, item_time)
			VALUES (?,?,?,?,?,?,?,?,?)`,
			spinID, r.runID, it.Index, it.Name, it.Price, it.QuickSellPrice,
			string(it.Rarity), string(it.Disposition), it.Timestamp,
		); err != nil {
			return fmt.Errorf("insert item: %w", err)
		}
	}
	return tx.Commit()
}

func (r *SQLiteRecorder) RecordAccount(evt *AccountEvent) error {
	if evt.Snapshot == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	s := evt.Snapshot
	autoSell := 0
	if s.AutoSell {
		autoSell = 1
	}
	_, err := r.db.Exec(`INSERT INTO account_snapshots
		(run_id, timestamp, phase, attempt, jewels, total_spent, multiplier, auto_sell, season_level, season_xp, raw)
		VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		r.runID, evt.At.Unix(), string(evt.Phase), evt.Attempt,
		s.Jewels, s.TotalSpent, s.Multiplier, autoSell, s.SeasonLevel, s.SeasonXP, string(s.Raw),
	)
	return err
}

func (r *SQLiteRecorder) Finish() error { return nil }

func (r *SQLiteRecorder) RecordReport(rep *model.Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := &rep.Stats
	_, err := r.db.Exec(`UPDATE runs SET
		finished_at = ?, stop_reason = ?, spin_count = ?, successful_spins = ?, total_items = ?,
		common_count = ?, rare_count = ?, legendary_count = ?, total_spent = ?, total_earned = ?
		WHERE id = ?`,
		rep.FinishedAt.Unix(), string(rep.StopReason), s.SpinCount, s.SuccessfulSpins, s.TotalItems,
		s.RarityCount[model.RarityCommon], s.RarityCount[model.RarityRare], s.RarityCount[model.RarityLegendary],
		s.TotalSpent, s.TotalEarned, rep.ID,
	)
	return err
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}
