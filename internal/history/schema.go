package history

import "codeberg.org/mutker/stackchart/internal/storage"

var schema = storage.Schema{
	Name:    "history",
	Version: 1,
	Tables:  []string{"samples"},
	CreateSQL: `
	CREATE TABLE IF NOT EXISTS samples (
	    timestamp  REAL NOT NULL,
	    metric     TEXT NOT NULL,
	    value      REAL NOT NULL,
	    PRIMARY KEY (timestamp, metric)
	);`,
}

const (
	insertSampleSQL = `
    INSERT INTO samples (timestamp, metric, value)
    VALUES (?, ?, ?)
    ON CONFLICT(timestamp, metric) DO UPDATE SET
        value = excluded.value`

	// The newest limit timestamps, then every row at or after the oldest of
	// them.
	selectNewestSQL = `
    SELECT timestamp, metric, value
    FROM samples
    WHERE timestamp >= (
        SELECT MIN(timestamp) FROM (
            SELECT DISTINCT timestamp
            FROM samples
            ORDER BY timestamp DESC
            LIMIT ?
        )
    )
    ORDER BY timestamp ASC, metric ASC`

	deleteOlderSQL = `DELETE FROM samples WHERE timestamp < ?`
)
