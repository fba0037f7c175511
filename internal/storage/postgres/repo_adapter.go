package postgres

import (
	"context"

	"campaignetl/internal/storage"
)

// newRepository is a test hook that points to NewRepository by default.
var newRepository = NewRepository

// wrappedRepo adds storage.Repository's Close to *Repository.
type wrappedRepo struct {
	*Repository
	closeFn func()
}

var _ storage.Repository = (*wrappedRepo)(nil)

func (w *wrappedRepo) Close() {
	if w.closeFn != nil {
		w.closeFn()
	}
}

func open(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
	r, closeFn, err := newRepository(ctx, Config{DSN: cfg.DSN})
	if err != nil {
		return nil, err
	}
	return &wrappedRepo{Repository: r, closeFn: closeFn}, nil
}

func init() {
	storage.Register("postgres", open)
}
