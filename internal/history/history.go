// Package history keeps a short ring of recent usage snapshots for the popup
// sparklines. The database lives in memory only; nothing survives a restart.
package history

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

type Snapshot struct {
	ID           int64
	Ts           time.Time
	FiveHourUtil float64 // -1 when absent
	SevenDayUtil float64 // -1 when absent
}

type DB struct {
	sql  *sql.DB
	size int
}

// Open creates an empty in-memory store holding at most size snapshots.
func Open(size int) (*DB, error) {
	if size < 1 {
		size = 1
	}
	conn, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	// Every connection to :memory: is a separate database.
	conn.SetMaxOpenConns(1)
	conn.SetConnMaxLifetime(0)
	conn.SetConnMaxIdleTime(0)

	d := &DB{sql: conn, size: size}
	if err := d.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	return d, nil
}

func (d *DB) Close() error {
	return d.sql.Close()
}

func (d *DB) migrate() error {
	_, err := d.sql.Exec(`
		CREATE TABLE IF NOT EXISTS usage_snapshots (
			id              INTEGER PRIMARY KEY AUTOINCREMENT,
			ts_ms           INTEGER NOT NULL,
			five_hour_util  REAL NOT NULL,
			seven_day_util  REAL NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("create usage_snapshots: %w", err)
	}
	return nil
}

// Insert records a snapshot and drops the oldest ones beyond the ring size.
func (d *DB) Insert(s Snapshot) error {
	_, err := d.sql.Exec(
		`INSERT INTO usage_snapshots (ts_ms, five_hour_util, seven_day_util) VALUES (?, ?, ?)`,
		s.Ts.UnixMilli(), s.FiveHourUtil, s.SevenDayUtil,
	)
	if err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}
	_, err = d.sql.Exec(
		`DELETE FROM usage_snapshots WHERE id NOT IN (
			SELECT id FROM usage_snapshots ORDER BY ts_ms DESC, id DESC LIMIT ?
		)`,
		d.size,
	)
	if err != nil {
		return fmt.Errorf("prune snapshots: %w", err)
	}
	return nil
}

// Recent returns up to limit snapshots, newest first.
func (d *DB) Recent(limit int) ([]Snapshot, error) {
	rows, err := d.sql.Query(
		`SELECT id, ts_ms, five_hour_util, seven_day_util
		 FROM usage_snapshots
		 ORDER BY ts_ms DESC, id DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Snapshot
	for rows.Next() {
		var s Snapshot
		var ts int64
		if err := rows.Scan(&s.ID, &ts, &s.FiveHourUtil, &s.SevenDayUtil); err != nil {
			return nil, err
		}
		s.Ts = time.UnixMilli(ts)
		out = append(out, s)
	}
	return out, rows.Err()
}

// Trends returns the five-hour and seven-day series, oldest first, with
// absent readings left out.
func (d *DB) Trends() (fiveHour, sevenDay []float64, err error) {
	snaps, err := d.Recent(d.size)
	if err != nil {
		return nil, nil, err
	}
	for i := len(snaps) - 1; i >= 0; i-- {
		if v := snaps[i].FiveHourUtil; v >= 0 {
			fiveHour = append(fiveHour, v)
		}
		if v := snaps[i].SevenDayUtil; v >= 0 {
			sevenDay = append(sevenDay, v)
		}
	}
	return fiveHour, sevenDay, nil
}
