package settings

import "codeberg.org/mutker/stackchart/internal/storage"

var schema = storage.Schema{
	Name:    "settings",
	Version: 1,
	Tables:  []string{"settings"},
	CreateSQL: `
	CREATE TABLE IF NOT EXISTS settings (
	    key         TEXT PRIMARY KEY,
	    value       TEXT NOT NULL,
	    updated_at  TEXT NOT NULL
	);`,
}

const (
	selectSettingsSQL = `SELECT key, value FROM settings`

	upsertSettingSQL = `
    INSERT INTO settings (key, value, updated_at)
    VALUES (?, ?, datetime('now'))
    ON CONFLICT(key) DO UPDATE SET
        value = excluded.value,
        updated_at = excluded.updated_at`
)
