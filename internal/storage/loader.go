package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"campaignetl/pkg/records"
)

// DefaultBatchSize is used when LoadOptions.BatchSize is zero.
const DefaultBatchSize = 5000

// CopyFn abstracts a backend's bulk insert. It returns the number of rows
// written and must cancel promptly when ctx is done.
type CopyFn func(ctx context.Context, columns []string, rows [][]any) (int64, error)

// BatchStats summarizes one LoadBatches call.
type BatchStats struct {
	Rows    int64
	Batches int
}

// LoadBatches drains in, groups rows into batches of batchSize and calls
// copyFn per non-empty batch. On error it returns the totals so far.
func LoadBatches(
	ctx context.Context,
	lg *zap.Logger,
	columns []string,
	in <-chan []any,
	batchSize int,
	copyFn CopyFn,
) (BatchStats, error) {
	var st BatchStats
	if batchSize <= 0 {
		return st, fmt.Errorf("batchSize must be > 0")
	}
	if copyFn == nil {
		return st, fmt.Errorf("copyFn must not be nil")
	}
	if lg == nil {
		lg = zap.NewNop()
	}

	batch := make([][]any, 0, batchSize)
	start := time.Now()
	last := start

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := copyFn(ctx, columns, batch)
		st.Rows += n
		batch = batch[:0]
		if err != nil {
			return err
		}
		st.Batches++

		now := time.Now()
		lg.Debug("batch flushed",
			zap.Int("batch", st.Batches),
			zap.Int64("rows", n),
			zap.Int64("total", st.Rows),
			zap.Duration("since_last", now.Sub(last)),
			zap.Duration("elapsed", now.Sub(start)),
		)
		last = now
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return st, ctx.Err()
		case row, ok := <-in:
			if !ok {
				return st, flush()
			}
			batch = append(batch, row)
			if len(batch) >= batchSize {
				if err := flush(); err != nil {
					return st, err
				}
			}
		}
	}
}

// LoadOptions configures LoadTables.
type LoadOptions struct {
	// TablePrefix is prepended to each set's Name.
	TablePrefix string
	BatchSize   int
	Logger      *zap.Logger

	// PostLoad statements are passed to Repository.Exec once every table
	// has loaded. "{prefix}" is replaced with TablePrefix; blank entries
	// are skipped.
	PostLoad []string
}

// PostLoadTable is the LoadError.Table reported for a failed PostLoad
// statement.
const PostLoadTable = "post_load"

// TableResult reports one loaded table.
type TableResult struct {
	Table   string
	Rows    int64
	Batches int
}

// LoadTables replaces one table per set and copies its rows. Missing values
// become SQL NULL. Tables are loaded in order; the first failure stops the
// load and is returned as a *LoadError.
func LoadTables(ctx context.Context, repo Repository, sets []*records.Set, opt LoadOptions) ([]TableResult, error) {
	lg := opt.Logger
	if lg == nil {
		lg = zap.NewNop()
	}
	size := opt.BatchSize
	if size <= 0 {
		size = DefaultBatchSize
	}

	out := make([]TableResult, 0, len(sets))
	for _, s := range sets {
		table := opt.TablePrefix + s.Name
		res, err := loadTable(ctx, lg.With(zap.String("table", table)), repo, table, s, size)
		if err != nil {
			return out, &LoadError{Table: table, Err: err}
		}
		out = append(out, res)
		lg.Info("table loaded", zap.String("table", table), zap.Int64("rows", res.Rows), zap.Int("batches", res.Batches))
	}
	if err := runPostLoad(ctx, lg, repo, opt); err != nil {
		return out, &LoadError{Table: PostLoadTable, Err: err}
	}
	return out, nil
}

func runPostLoad(ctx context.Context, lg *zap.Logger, repo Repository, opt LoadOptions) error {
	for i, stmt := range opt.PostLoad {
		stmt = strings.TrimSpace(strings.ReplaceAll(stmt, "{prefix}", opt.TablePrefix))
		if stmt == "" {
			continue
		}
		if err := repo.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("statement %d: %w", i+1, err)
		}
		lg.Debug("post-load statement done", zap.Int("index", i+1))
	}
	return nil
}

func loadTable(ctx context.Context, lg *zap.Logger, repo Repository, table string, s *records.Set, size int) (TableResult, error) {
	if err := repo.ReplaceTable(ctx, table, s.Columns); err != nil {
		return TableResult{}, fmt.Errorf("replace: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	rows := make(chan []any, size)

	g.Go(func() error {
		defer close(rows)
		for i := 0; i < s.Len(); i++ {
			vals := s.Row(i)
			row := make([]any, len(vals))
			for j, v := range vals {
				row[j] = v.Any()
			}
			select {
			case rows <- row:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	var st BatchStats
	g.Go(func() error {
		var err error
		st, err = LoadBatches(gctx, lg, s.Columns, rows, size,
			func(ctx context.Context, cols []string, batch [][]any) (int64, error) {
				return repo.CopyFrom(ctx, table, cols, batch)
			})
		return err
	})

	if err := g.Wait(); err != nil {
		return TableResult{Table: table, Rows: st.Rows, Batches: st.Batches}, err
	}
	if st.Rows != int64(s.Len()) {
		return TableResult{Table: table, Rows: st.Rows, Batches: st.Batches},
			fmt.Errorf("wrote %d rows, want %d", st.Rows, s.Len())
	}
	return TableResult{Table: table, Rows: st.Rows, Batches: st.Batches}, nil
}
