package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"campaignetl/internal/storage"
)

func TestCreateTableSQL(t *testing.T) {
	t.Parallel()

	got, err := createTableSQL("bank.client", []string{"client_id", "age", `we"ird`})
	if err != nil {
		t.Fatalf("createTableSQL: %v", err)
	}
	want := "CREATE TABLE \"bank\".\"client\" (\n  \"client_id\" TEXT,\n  \"age\" TEXT,\n  \"we\"\"ird\" TEXT\n)"
	if got != want {
		t.Fatalf("sql mismatch\n got: %s\nwant: %s", got, want)
	}
}

func TestCreateTableSQL_Errors(t *testing.T) {
	t.Parallel()

	cases := map[string]struct {
		table string
		cols  []string
	}{
		"empty_table":  {table: " ", cols: []string{"a"}},
		"no_columns":   {table: "t"},
		"blank_column": {table: "t", cols: []string{"a", ""}},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			if _, err := createTableSQL(tc.table, tc.cols); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestSplitFQN(t *testing.T) {
	t.Parallel()

	if diff := cmp.Diff(pgx.Identifier{"public", "campaign"}, splitFQN("public.campaign")); diff != "" {
		t.Fatalf("splitFQN mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(pgx.Identifier{"economics"}, splitFQN(".economics")); diff != "" {
		t.Fatalf("splitFQN mismatch (-want +got):\n%s", diff)
	}
}

func TestDescribe(t *testing.T) {
	t.Parallel()

	pgErr := &pgconn.PgError{Message: "bad", Detail: "column x", Code: "22P02"}
	err := describe(pgErr)
	if !errors.As(err, new(*pgconn.PgError)) {
		t.Fatalf("describe lost the PgError: %v", err)
	}
	if got := err.Error(); got == pgErr.Error() {
		t.Fatalf("describe did not add detail: %q", got)
	}

	plain := errors.New("plain")
	if describe(plain) != plain {
		t.Fatalf("describe should pass through non-pg errors")
	}
}

func TestRegisteredFactoryUsesHook(t *testing.T) {
	orig := newRepository
	t.Cleanup(func() { newRepository = orig })

	var gotDSN string
	closed := false
	newRepository = func(_ context.Context, cfg Config) (*Repository, func(), error) {
		gotDSN = cfg.DSN
		return &Repository{}, func() { closed = true }, nil
	}

	repo, err := storage.New(context.Background(), storage.Config{Kind: "postgres", DSN: "postgres://u@h/db"})
	if err != nil {
		t.Fatalf("storage.New: %v", err)
	}
	if gotDSN != "postgres://u@h/db" {
		t.Fatalf("DSN=%q", gotDSN)
	}
	repo.Close()
	if !closed {
		t.Fatalf("Close did not call closeFn")
	}
}

func TestRegisteredFactoryError(t *testing.T) {
	orig := newRepository
	t.Cleanup(func() { newRepository = orig })

	boom := errors.New("no route")
	newRepository = func(context.Context, Config) (*Repository, func(), error) { return nil, nil, boom }

	if _, err := storage.New(context.Background(), storage.Config{Kind: "postgres"}); !errors.Is(err, boom) {
		t.Fatalf("err=%v want %v", err, boom)
	}
}

func TestNewRepository_EmptyDSN(t *testing.T) {
	t.Parallel()

	if _, _, err := NewRepository(context.Background(), Config{}); err == nil {
		t.Fatalf("expected error for empty DSN")
	}
}
