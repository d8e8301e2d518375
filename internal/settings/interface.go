package settings

import "context"

// Repository persists setting values.
type Repository interface {
	Load(ctx context.Context) (map[string]string, error)
	Store(ctx context.Context, key, value string) error
	Close() error
}
