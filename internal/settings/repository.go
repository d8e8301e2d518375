package settings

import (
	"context"
	"database/sql"
	"sync"

	"codeberg.org/mutker/stackchart/internal/errors"
	"codeberg.org/mutker/stackchart/internal/logger"
	"codeberg.org/mutker/stackchart/internal/storage"
)

type sqliteRepository struct {
	db  *sql.DB
	log logger.Logger
	mu  sync.Mutex
}

// NewRepository opens the settings database at cfg.DBPath.
func NewRepository(cfg Config, log logger.Logger) (Repository, error) {
	log.Debug().Str("path", cfg.DBPath).Msg("Initializing settings repository")

	db, err := storage.Open(cfg.DBPath, schema, log)
	if err != nil {
		return nil, errors.New().Wrap(ErrStorageInit, err)
	}

	return &sqliteRepository{db: db, log: log}, nil
}

func (r *sqliteRepository) Load(ctx context.Context) (map[string]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	errFactory := errors.New()

	rows, err := r.db.QueryContext(ctx, selectSettingsSQL)
	if err != nil {
		return nil, errFactory.Wrap(ErrStorageAccess, err)
	}
	defer rows.Close()

	values := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, errFactory.Wrap(ErrStorageAccess, err)
		}
		values[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, errFactory.Wrap(ErrStorageAccess, err)
	}

	return values, nil
}

func (r *sqliteRepository) Store(ctx context.Context, key, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.db.ExecContext(ctx, upsertSettingSQL, key, value); err != nil {
		return errors.New().Wrap(ErrStorageAccess, err)
	}

	return nil
}

func (r *sqliteRepository) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := storage.Close(r.db); err != nil {
		return errors.New().Wrap(ErrStorageClose, err)
	}

	r.log.Debug().Msg("Settings repository closed")

	return nil
}

// noopRepository keeps settings in memory only.
type noopRepository struct{}

func (noopRepository) Load(context.Context) (map[string]string, error) {
	return map[string]string{}, nil
}

func (noopRepository) Store(context.Context, string, string) error {
	return nil
}

func (noopRepository) Close() error {
	return nil
}
