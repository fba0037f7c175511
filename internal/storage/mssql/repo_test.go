package mssql

import (
	"context"
	"errors"
	"testing"

	"campaignetl/internal/storage"
)

func TestCreateTableSQL(t *testing.T) {
	t.Parallel()

	got, err := createTableSQL("dbo.client", []string{"client_id", "odd]name"})
	if err != nil {
		t.Fatalf("createTableSQL: %v", err)
	}
	want := "CREATE TABLE [dbo].[client] ([client_id] NVARCHAR(MAX) NULL, [odd]]name] NVARCHAR(MAX) NULL)"
	if got != want {
		t.Fatalf("sql mismatch\n got: %s\nwant: %s", got, want)
	}
	if _, err := createTableSQL("t", nil); err == nil {
		t.Fatalf("expected error for no columns")
	}
}

func TestNewRepository_BadDSN(t *testing.T) {
	t.Parallel()

	if _, _, err := NewRepository(context.Background(), Config{DSN: "sqlserver://host:notaport"}); err == nil {
		t.Fatalf("expected dsn error")
	}
}

func TestRegisteredFactory(t *testing.T) {
	orig := newRepository
	t.Cleanup(func() { newRepository = orig })

	boom := errors.New("login failed")
	newRepository = func(context.Context, Config) (*Repository, func(), error) { return nil, nil, boom }

	if _, err := storage.New(context.Background(), storage.Config{Kind: "mssql", DSN: "x"}); !errors.Is(err, boom) {
		t.Fatalf("err=%v want %v", err, boom)
	}
}
