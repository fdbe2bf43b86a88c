package server

import (
	"encoding/json"

	"github.com/vctt94/pokertable/pkg/poker"
	"github.com/vctt94/pokertable/pkg/server/internal/db"
)

// Store persists hand archives and the per-player session ledger.
// The table worker is the only writer for a given table, so
// implementations do not need table-level locking beyond what the
// database itself provides.
type Store interface {
	// SaveHandLog archives a finished hand and folds its per-player
	// results into the ledger.
	SaveHandLog(record *poker.HandLogRecord) error
	// RecordBuyin credits a buyin or rebuy against a player's ledger.
	RecordBuyin(playerID, name string, amount int64) error
	// PlayerLedger returns a player's running session totals.
	PlayerLedger(playerID string) (*db.LedgerEntry, error)
	// HandHistory returns the most recent archived hands for a table,
	// newest first.
	HandHistory(tableID string, limit int) ([]*poker.HandLogRecord, error)
	Close() error
}

type sqliteStore struct {
	db *db.DB
}

// NewStore opens a sqlite-backed Store at path.
func NewStore(path string) (Store, error) {
	d, err := db.NewDB(path)
	if err != nil {
		return nil, err
	}
	return &sqliteStore{db: d}, nil
}

func (s *sqliteStore) SaveHandLog(record *poker.HandLogRecord) error {
	raw, err := json.Marshal(record)
	if err != nil {
		return err
	}

	deltas := make([]db.LedgerDelta, 0, len(record.Players))
	for _, p := range record.Players {
		d := db.LedgerDelta{
			PlayerID:  p.PlayerID,
			Name:      p.Name,
			Dealt:     1,
			ChipDelta: p.ChipDelta,
		}
		if p.SawFlop {
			d.SawFlop = 1
		}
		if p.WonPot {
			d.Won = 1
		}
		deltas = append(deltas, d)
	}

	return s.db.SaveHandLog(record.TableID, record.HandID, record.HandNumber, record.Aborted, raw, deltas)
}

func (s *sqliteStore) RecordBuyin(playerID, name string, amount int64) error {
	return s.db.ApplyLedgerDelta(db.LedgerDelta{
		PlayerID: playerID,
		Name:     name,
		Buyin:    amount,
	})
}

func (s *sqliteStore) PlayerLedger(playerID string) (*db.LedgerEntry, error) {
	return s.db.GetLedger(playerID)
}

func (s *sqliteStore) HandHistory(tableID string, limit int) ([]*poker.HandLogRecord, error) {
	raws, err := s.db.ListHandLogs(tableID, limit)
	if err != nil {
		return nil, err
	}
	records := make([]*poker.HandLogRecord, 0, len(raws))
	for _, raw := range raws {
		var rec poker.HandLogRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, err
		}
		records = append(records, &rec)
	}
	return records, nil
}

func (s *sqliteStore) Close() error {
	return s.db.Close()
}
