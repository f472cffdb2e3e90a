// Package recorder persists decoded sensor readings to SQLite so scan
// history survives restarts.
package recorder

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/mlsorensen/gotherm"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS readings (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	address        TEXT NOT NULL,
	format         TEXT NOT NULL,
	ts             TEXT NOT NULL,
	temperature_c  REAL,
	humidity_pct   REAL,
	battery_pct    INTEGER,
	battery_mv     INTEGER,
	rssi_dbm       INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_readings_address_ts ON readings(address, ts);
`

const insertReadingSQL = `
INSERT INTO readings (address, format, ts, temperature_c, humidity_pct, battery_pct, battery_mv, rssi_dbm)
VALUES (?, ?, ?, ?, ?, ?, ?, ?);
`

const latestByAddressSQL = `
SELECT address, format, ts, temperature_c, humidity_pct, battery_pct, battery_mv, rssi_dbm
FROM readings
WHERE address = ?
ORDER BY ts DESC, id DESC
LIMIT ?;
`

// Recorder is a gotherm.Sink that appends every Reading to a SQLite table.
type Recorder struct {
	db *sql.DB
}

var _ gotherm.Sink = (*Recorder)(nil)

// Open creates (or opens) the database at path and ensures the schema
// exists.
func Open(path string) (*Recorder, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %q: %w", path, err)
	}
	// SQLite writes are serialized anyway; a single connection avoids
	// SQLITE_BUSY churn.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Recorder{db: db}, nil
}

// Publish appends the Reading.
func (r *Recorder) Publish(ctx context.Context, reading gotherm.Reading) error {
	_, err := r.db.ExecContext(ctx, insertReadingSQL,
		reading.Address,
		string(reading.Format),
		reading.Time.UTC().Format(time.RFC3339Nano),
		reading.Temperature,
		reading.Humidity,
		reading.Battery,
		reading.VoltageMV,
		reading.RSSI,
	)
	if err != nil {
		return fmt.Errorf("insert reading: %w", err)
	}
	return nil
}

// Latest returns up to limit most recent readings recorded for the given
// device address, newest first.
func (r *Recorder) Latest(ctx context.Context, address string, limit int) ([]gotherm.Reading, error) {
	rows, err := r.db.QueryContext(ctx, latestByAddressSQL, address, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []gotherm.Reading
	for rows.Next() {
		var (
			rec gotherm.Reading
			ts  string
		)
		if err := rows.Scan(&rec.Address, &rec.Format, &ts, &rec.Temperature, &rec.Humidity, &rec.Battery, &rec.VoltageMV, &rec.RSSI); err != nil {
			return nil, err
		}
		t, err := time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return nil, fmt.Errorf("parse timestamp %q: %w", ts, err)
		}
		rec.Time = t
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Close closes the underlying database.
func (r *Recorder) Close() error {
	return r.db.Close()
}
