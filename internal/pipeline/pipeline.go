// Package pipeline runs one campaignetl batch: list bundles, read entries,
// build the unified table, reconcile canonical fields, derive the client,
// campaign and economics tables, write them, verify them and optionally
// mirror them into a database.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"campaignetl/internal/archive"
	"campaignetl/internal/config"
	"campaignetl/internal/datasource"
	"campaignetl/internal/datasource/file"
	"campaignetl/internal/metrics"
	"campaignetl/internal/output"
	pcsv "campaignetl/internal/parser/csv"
	"campaignetl/internal/schema"
	"campaignetl/internal/storage"
	"campaignetl/internal/table"
	"campaignetl/internal/transformer/builtin"
	"campaignetl/pkg/records"
)

// ErrNoInput is returned when the input directory yields no bundles or no
// tabular entries. No output files are written in that case.
var ErrNoInput = errors.New("no input bundles or entries found")

// Test seams.
var (
	newListerFn = func(dir, pattern string) datasource.Lister { return file.NewDir(dir, pattern) }

	newRepositoryFn = storage.New
)

// Result summarizes a run.
type Result struct {
	RunID   string
	Bundles []string
	Read    archive.Stats

	// Columns is the union of source columns in first-seen order.
	Columns       []string
	SynthesizedID bool

	// Missing lists canonical fields no bundle provided.
	Missing []string

	Files   []output.File
	Reports []output.Report
	Loaded  []storage.TableResult

	Duration time.Duration
}

// Runner executes the pipeline for one configuration.
type Runner struct {
	cfg   config.Config
	log   *zap.Logger
	runID string
}

// Option customizes a Runner.
type Option func(*Runner)

// WithRunID fixes the run id instead of generating one.
func WithRunID(id string) Option { return func(r *Runner) { r.runID = id } }

// New returns a Runner. A nil logger is replaced by a no-op.
func New(cfg config.Config, lg *zap.Logger, opts ...Option) *Runner {
	if lg == nil {
		lg = zap.NewNop()
	}
	r := &Runner{cfg: cfg, log: lg}
	for _, o := range opts {
		o(r)
	}
	if r.runID == "" {
		r.runID = uuid.NewString()
	}
	r.log = r.log.With(zap.String("run_id", r.runID))
	return r
}

// RunID returns the id attached to every log line of this run.
func (r *Runner) RunID() string { return r.runID }

func (r *Runner) job() string { return r.cfg.Metrics.Job }

// Run executes every stage in order. The returned Result is non-nil even on
// error and reflects the stages that completed.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	res := &Result{RunID: r.runID}
	defer func() { res.Duration = time.Since(start) }()

	bundles, err := r.list(ctx)
	if err != nil {
		return res, err
	}
	res.Bundles = bundles
	if len(bundles) == 0 {
		r.log.Warn("no bundles found", zap.String("input_dir", r.cfg.InputDir), zap.String("pattern", r.cfg.BundlePattern))
		return res, ErrNoInput
	}

	sets, err := r.read(ctx, bundles, res)
	if err != nil {
		return res, err
	}
	if res.Read.Entries == 0 {
		r.log.Warn("bundles contain no tabular entries", zap.Int("bundles", len(bundles)), zap.String("entry_ext", r.cfg.EntryExt))
		return res, ErrNoInput
	}

	rc := r.aggregate(sets, res)

	tables, err := r.transform(ctx, rc)
	if err != nil {
		return res, err
	}

	if res.Files, err = r.write(ctx, tables); err != nil {
		return res, err
	}

	if r.cfg.Verify {
		if res.Reports, err = r.verify(res.Files); err != nil {
			return res, err
		}
	}

	if r.cfg.Storage.Enabled() {
		if res.Loaded, err = r.load(ctx, tables); err != nil {
			return res, err
		}
	}

	r.log.Info("run complete",
		zap.Int("bundles", len(res.Bundles)),
		zap.Int("rows", res.Read.Rows),
		zap.Int("files", len(res.Files)),
		zap.Duration("elapsed", time.Since(start)))
	return res, nil
}

// Run is New(cfg, lg).Run(ctx).
func Run(ctx context.Context, cfg config.Config, lg *zap.Logger) (*Result, error) {
	return New(cfg, lg).Run(ctx)
}

func (r *Runner) list(ctx context.Context) ([]string, error) {
	done := metrics.StartStep(r.job(), "list")
	bundles, err := newListerFn(r.cfg.InputDir, r.cfg.BundlePattern).List(ctx)
	done(err)
	if err != nil {
		return nil, err
	}
	r.log.Info("bundles found", zap.Int("count", len(bundles)), zap.Strings("bundles", bundles))
	return bundles, nil
}

func (r *Runner) read(ctx context.Context, bundles []string, res *Result) ([]*records.Set, error) {
	rd := archive.NewReader(archive.Options{
		Parser:         pcsv.NewParser(pcsv.Options{}),
		EntryExt:       r.cfg.EntryExt,
		SkipBadEntries: r.cfg.SkipBadEntries,
		Logger:         r.log,
	})

	done := metrics.StartStep(r.job(), "read")
	sets, st, err := rd.ReadAll(ctx, bundles)
	done(err)
	res.Read = st
	if err != nil {
		return nil, err
	}
	metrics.RecordRows(r.job(), "read", st.Rows)

	for _, s := range sets {
		r.log.Debug("entry parsed", zap.String("entry", s.Name), zap.Int("rows", s.Len()), zap.Int("columns", len(s.Columns)))
	}
	r.log.Info("entries read",
		zap.Int("bundles", st.Bundles),
		zap.Int("entries", st.Entries),
		zap.Int("skipped_bundles", st.SkippedBundles),
		zap.Int("skipped_entries", st.SkippedEntries),
		zap.Int("rows", st.Rows))
	return sets, nil
}

func (r *Runner) aggregate(sets []*records.Set, res *Result) *schema.Reconciled {
	done := metrics.StartStep(r.job(), "aggregate")
	u := table.Concat(sets...)
	rc := schema.Reconcile(u, r.log)
	done(nil)

	res.Columns = u.Columns()
	res.SynthesizedID = u.SynthesizedID()
	res.Missing = rc.Missing()

	r.log.Info("unified table built",
		zap.Int("rows", u.Len()),
		zap.Strings("columns", res.Columns),
		zap.Bool("synthesized_client_id", res.SynthesizedID))
	if len(res.Missing) > 0 {
		r.log.Warn("canonical fields defaulted", zap.Strings("fields", res.Missing))
	}
	return rc
}

func (r *Runner) transform(ctx context.Context, rc *schema.Reconciled) ([]*records.Set, error) {
	done := metrics.StartStep(r.job(), "transform")
	tables, err := builtin.Passes().Run(ctx, rc)
	done(err)
	if err != nil {
		return nil, fmt.Errorf("transform: %w", err)
	}
	for _, t := range tables {
		metrics.RecordRows(r.job(), t.Name, t.Len())
	}
	return tables, nil
}

func (r *Runner) write(ctx context.Context, tables []*records.Set) (files []output.File, err error) {
	done := metrics.StartStep(r.job(), "write")
	defer func() { done(err) }()

	w := output.NewWriter(r.cfg.OutputDir, r.log)
	for _, t := range tables {
		if err := ctx.Err(); err != nil {
			return files, err
		}
		f, err := w.Write(t)
		if err != nil {
			return files, err
		}
		files = append(files, f)
	}
	return files, nil
}

func (r *Runner) verify(files []output.File) (reports []output.Report, err error) {
	done := metrics.StartStep(r.job(), "verify")
	defer func() { done(err) }()

	for _, f := range files {
		rep, err := output.Verify(f)
		if err != nil {
			return reports, err
		}
		r.log.Info("output verified",
			zap.String("path", rep.Path),
			zap.Int("rows", rep.Rows),
			zap.Strings("columns", rep.Columns),
			zap.String("xxh3", f.DigestHex()))
		reports = append(reports, rep)
	}
	return reports, nil
}

func (r *Runner) load(ctx context.Context, tables []*records.Set) (loaded []storage.TableResult, err error) {
	done := metrics.StartStep(r.job(), "load")
	defer func() { done(err) }()

	repo, err := newRepositoryFn(ctx, storage.Config{Kind: r.cfg.Storage.Kind, DSN: r.cfg.Storage.DSN})
	if err != nil {
		return nil, &storage.LoadError{Table: "*", Err: err}
	}
	defer repo.Close()

	loaded, err = storage.LoadTables(ctx, repo, tables, storage.LoadOptions{
		TablePrefix: r.cfg.Storage.TablePrefix,
		PostLoad:    r.cfg.Storage.PostLoad,
		Logger:      r.log,
	})
	for _, t := range loaded {
		metrics.RecordRows(r.job(), "loaded", int(t.Rows))
		metrics.RecordBatches(r.job(), t.Table, t.Batches)
	}
	return loaded, err
}
