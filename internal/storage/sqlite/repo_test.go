package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"campaignetl/internal/storage"
	"campaignetl/pkg/records"
)

func newRepo(tb testing.TB) *Repository {
	tb.Helper()
	db, err := Open(":memory:")
	if err != nil {
		tb.Fatalf("open sqlite :memory:: %v", err)
	}
	tb.Cleanup(func() { _ = db.Close() })
	return New(db)
}

func TestReplaceTableAndCopy(t *testing.T) {
	t.Parallel()

	r := newRepo(t)
	ctx := context.Background()

	if err := r.ReplaceTable(ctx, "client", []string{"client_id", "age"}); err != nil {
		t.Fatalf("ReplaceTable: %v", err)
	}
	n, err := r.CopyFrom(ctx, "client", []string{"client_id", "age"}, [][]any{{"0", "56"}, {"1", nil}})
	if err != nil {
		t.Fatalf("CopyFrom: %v", err)
	}
	if n != 2 {
		t.Fatalf("CopyFrom n=%d want 2", n)
	}

	var age sql.NullString
	if err := r.db.QueryRowContext(ctx, `SELECT age FROM client WHERE client_id = '1'`).Scan(&age); err != nil {
		t.Fatalf("select: %v", err)
	}
	if age.Valid {
		t.Fatalf("missing age should load as NULL, got %q", age.String)
	}

	// Replacing drops previous contents.
	if err := r.ReplaceTable(ctx, "client", []string{"client_id"}); err != nil {
		t.Fatalf("ReplaceTable again: %v", err)
	}
	if got, err := r.Count(ctx, "client"); err != nil || got != 0 {
		t.Fatalf("Count=%d err=%v want 0 after replace", got, err)
	}
}

func TestCopyFromIsAtomic(t *testing.T) {
	t.Parallel()

	r := newRepo(t)
	ctx := context.Background()
	if err := r.ReplaceTable(ctx, "campaign", []string{"client_id", "month"}); err != nil {
		t.Fatalf("ReplaceTable: %v", err)
	}

	_, err := r.CopyFrom(ctx, "campaign", []string{"client_id", "month"}, [][]any{{"0", "may"}, {"1"}})
	if err == nil || !strings.Contains(err.Error(), "row 1") {
		t.Fatalf("err=%v want row length error", err)
	}
	if got, _ := r.Count(ctx, "campaign"); got != 0 {
		t.Fatalf("Count=%d want 0 after rolled back batch", got)
	}
}

func TestCopyFromUnknownTable(t *testing.T) {
	t.Parallel()

	r := newRepo(t)
	if _, err := r.CopyFrom(context.Background(), "nope", []string{"a"}, [][]any{{"x"}}); err == nil {
		t.Fatalf("expected error for unknown table")
	}
}

func TestLoadTablesThroughFactory(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dsn := "file:" + filepath.Join(t.TempDir(), "campaign.db")
	repo, err := storage.New(ctx, storage.Config{Kind: "sqlite", DSN: dsn})
	if err != nil {
		t.Fatalf("storage.New: %v", err)
	}
	defer repo.Close()

	set := &records.Set{
		Name:    "economics",
		Columns: []string{"client_id", "cons_price_idx", "euribor_three_months"},
	}
	for i := 0; i < 7; i++ {
		set.Rows = append(set.Rows, records.Record{
			"client_id":            records.String(strconv.Itoa(i)),
			"cons_price_idx":       records.String("93.994"),
			"euribor_three_months": records.String("4.857"),
		})
	}

	res, err := storage.LoadTables(ctx, repo, []*records.Set{set}, storage.LoadOptions{TablePrefix: "t_", BatchSize: 3})
	if err != nil {
		t.Fatalf("LoadTables: %v", err)
	}
	if len(res) != 1 || res[0].Rows != 7 || res[0].Batches != 3 {
		t.Fatalf("results=%+v want one table, 7 rows, 3 batches", res)
	}

	count, err := repo.(*wrappedRepo).Count(ctx, "t_economics")
	if err != nil || count != 7 {
		t.Fatalf("Count=%d err=%v want 7", count, err)
	}
}

func TestNewRepository_EmptyDSN(t *testing.T) {
	t.Parallel()

	if _, _, err := NewRepository(context.Background(), Config{DSN: " "}); err == nil {
		t.Fatalf("expected error for empty DSN")
	}
}

func BenchmarkCopyFrom(b *testing.B) {
	r := newRepo(b)
	ctx := context.Background()
	cols := []string{"client_id", "age", "job"}
	rows := make([][]any, 1000)
	for i := range rows {
		rows[i] = []any{"1", "40", "admin."}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := r.ReplaceTable(ctx, "client", cols); err != nil {
			b.Fatal(err)
		}
		if _, err := r.CopyFrom(ctx, "client", cols, rows); err != nil {
			b.Fatal(err)
		}
	}
}
