package db

import (
	"database/sql"
	"fmt"
	"time"
)

// DB wraps the sqlite connection holding hand archives and the
// per-player session ledger.
type DB struct {
	*sql.DB
}

// NewDB opens (or creates) the database at dbPath.
func NewDB(dbPath string) (*DB, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	if err := createTables(db); err != nil {
		db.Close()
		return nil, err
	}

	return &DB{db}, nil
}

func createTables(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS hand_logs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			table_id TEXT NOT NULL,
			hand_id TEXT NOT NULL UNIQUE,
			hand_number INTEGER NOT NULL,
			aborted INTEGER NOT NULL DEFAULT 0,
			record TEXT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS ledger (
			player_id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			hands_dealt INTEGER NOT NULL DEFAULT 0,
			flops_seen INTEGER NOT NULL DEFAULT 0,
			hands_won INTEGER NOT NULL DEFAULT 0,
			buyin_total INTEGER NOT NULL DEFAULT 0,
			chip_delta INTEGER NOT NULL DEFAULT 0,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	return err
}

// LedgerEntry is one player's running session totals.
type LedgerEntry struct {
	PlayerID   string
	Name       string
	HandsDealt int64
	FlopsSeen  int64
	HandsWon   int64
	BuyinTotal int64
	ChipDelta  int64
	UpdatedAt  time.Time
}

// LedgerDelta is the per-hand increment applied to a player's ledger row.
type LedgerDelta struct {
	PlayerID  string
	Name      string
	Dealt     int64
	SawFlop   int64
	Won       int64
	Buyin     int64
	ChipDelta int64
}

// SaveHandLog archives one completed (or aborted) hand and applies the
// ledger deltas for every player dealt in, in a single transaction.
func (db *DB) SaveHandLog(tableID, handID string, handNumber uint64, aborted bool, record []byte, deltas []LedgerDelta) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	abortedInt := 0
	if aborted {
		abortedInt = 1
	}
	_, err = tx.Exec(`
		INSERT INTO hand_logs (table_id, hand_id, hand_number, aborted, record)
		VALUES (?, ?, ?, ?, ?)
	`, tableID, handID, handNumber, abortedInt, string(record))
	if err != nil {
		return err
	}

	for _, d := range deltas {
		if err := applyDelta(tx, d); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// ApplyLedgerDelta applies a single ledger increment outside a hand
// archive, used for buyins and rebuys.
func (db *DB) ApplyLedgerDelta(d LedgerDelta) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := applyDelta(tx, d); err != nil {
		return err
	}
	return tx.Commit()
}

func applyDelta(tx *sql.Tx, d LedgerDelta) error {
	_, err := tx.Exec(`
		INSERT INTO ledger (player_id, name, hands_dealt, flops_seen, hands_won, buyin_total, chip_delta, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(player_id) DO UPDATE SET
			name = excluded.name,
			hands_dealt = hands_dealt + excluded.hands_dealt,
			flops_seen = flops_seen + excluded.flops_seen,
			hands_won = hands_won + excluded.hands_won,
			buyin_total = buyin_total + excluded.buyin_total,
			chip_delta = chip_delta + excluded.chip_delta,
			updated_at = CURRENT_TIMESTAMP
	`, d.PlayerID, d.Name, d.Dealt, d.SawFlop, d.Won, d.Buyin, d.ChipDelta)
	return err
}

// GetLedger returns a player's session totals.
func (db *DB) GetLedger(playerID string) (*LedgerEntry, error) {
	var e LedgerEntry
	err := db.QueryRow(`
		SELECT player_id, name, hands_dealt, flops_seen, hands_won, buyin_total, chip_delta, updated_at
		FROM ledger WHERE player_id = ?
	`, playerID).Scan(&e.PlayerID, &e.Name, &e.HandsDealt, &e.FlopsSeen, &e.HandsWon, &e.BuyinTotal, &e.ChipDelta, &e.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("player not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read ledger: %v", err)
	}
	return &e, nil
}

// GetHandLog returns the archived record for one hand.
func (db *DB) GetHandLog(handID string) ([]byte, error) {
	var record string
	err := db.QueryRow(`SELECT record FROM hand_logs WHERE hand_id = ?`, handID).Scan(&record)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("hand not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read hand log: %v", err)
	}
	return []byte(record), nil
}

// ListHandLogs returns the most recent archived hands for a table,
// newest first.
func (db *DB) ListHandLogs(tableID string, limit int) ([][]byte, error) {
	rows, err := db.Query(`
		SELECT record FROM hand_logs
		WHERE table_id = ?
		ORDER BY hand_number DESC
		LIMIT ?
	`, tableID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records [][]byte
	for rows.Next() {
		var record string
		if err := rows.Scan(&record); err != nil {
			return nil, err
		}
		records = append(records, []byte(record))
	}
	return records, rows.Err()
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.DB.Close()
}
