// internal/sink/history.go
package sink

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/tamzrod/beacon-reporter/internal/fault"
	"github.com/tamzrod/beacon-reporter/internal/status"
)

const historySchema = `
CREATE TABLE IF NOT EXISTS snapshots (
	id         TEXT PRIMARY KEY,
	seq        INTEGER NOT NULL,
	taken_at   INTEGER NOT NULL,
	count      INTEGER NOT NULL,
	addresses  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_snapshots_taken_at ON snapshots (taken_at);
`

// HistorySink appends every snapshot to a local SQLite table.
type HistorySink struct {
	db *sql.DB
}

// OpenHistory opens (or creates) the history database at path.
func OpenHistory(path string) (*HistorySink, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fault.New(fault.KindStorageFailure, "history open", err)
	}
	// One writer; sqlite serializes anyway.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(historySchema); err != nil {
		_ = db.Close()
		return nil, fault.New(fault.KindStorageFailure, "history schema", err)
	}
	return &HistorySink{db: db}, nil
}

func (h *HistorySink) Name() string { return "history" }

func (h *HistorySink) Deliver(ctx context.Context, s status.Snapshot) Result {
	addrs := s.Addresses
	if addrs == nil {
		addrs = []string{}
	}
	raw, err := json.Marshal(addrs)
	if err != nil {
		return failed(h.Name(), fault.New(fault.KindStorageFailure, "history encode", err))
	}

	_, err = h.db.ExecContext(ctx,
		"INSERT INTO snapshots (id, seq, taken_at, count, addresses) VALUES (?, ?, ?, ?, ?)",
		s.ID, int64(s.Seq), s.TakenAt.UnixMilli(), s.Count, string(raw),
	)
	if err != nil {
		return failed(h.Name(), fault.New(fault.KindStorageFailure, "history insert", err))
	}
	return ok(h.Name())
}

// Recent returns up to n snapshots, newest first.
func (h *HistorySink) Recent(ctx context.Context, n int) ([]status.Snapshot, error) {
	rows, err := h.db.QueryContext(ctx,
		"SELECT id, seq, taken_at, count, addresses FROM snapshots ORDER BY taken_at DESC, seq DESC LIMIT ?", n)
	if err != nil {
		return nil, fault.New(fault.KindStorageFailure, "history query", err)
	}
	defer rows.Close()

	var out []status.Snapshot
	for rows.Next() {
		var (
			s     status.Snapshot
			seq   int64
			ms    int64
			addrs string
		)
		if err := rows.Scan(&s.ID, &seq, &ms, &s.Count, &addrs); err != nil {
			return nil, fault.New(fault.KindStorageFailure, "history scan", err)
		}
		if err := json.Unmarshal([]byte(addrs), &s.Addresses); err != nil {
			return nil, fault.New(fault.KindStorageFailure, "history decode", fmt.Errorf("snapshot %s: %w", s.ID, err))
		}
		s.Seq = uint64(seq)
		s.TakenAt = time.UnixMilli(ms)
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fault.New(fault.KindStorageFailure, "history rows", err)
	}
	return out, nil
}

func (h *HistorySink) Close() error {
	return h.db.Close()
}
