// Package postgres implements storage.Repository on pgx v5. Rows are written
// with COPY FROM STDIN.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Config holds Postgres repository configuration.
type Config struct {
	DSN string // pgxpool connection string
}

// Repository is a Postgres-backed storage.Repository.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository opens a pool, pings it and returns a Close function.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, nil, fmt.Errorf("postgres: DSN must not be empty")
	}
	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("pgxpool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("postgres: ping: %w", err)
	}
	return &Repository{pool: pool}, pool.Close, nil
}

// Exec runs sql on a pooled connection.
func (r *Repository) Exec(ctx context.Context, sql string) error {
	if _, err := r.pool.Exec(ctx, sql); err != nil {
		return fmt.Errorf("postgres: exec: %w", describe(err))
	}
	return nil
}

// ReplaceTable drops and recreates table in one transaction.
func (r *Repository) ReplaceTable(ctx context.Context, table string, columns []string) error {
	create, err := createTableSQL(table, columns)
	if err != nil {
		return err
	}
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, "DROP TABLE IF EXISTS "+quoteFQN(table)); err != nil {
			return fmt.Errorf("postgres: drop %s: %w", table, describe(err))
		}
		if _, err := tx.Exec(ctx, create); err != nil {
			return fmt.Errorf("postgres: create %s: %w", table, describe(err))
		}
		return nil
	})
}

// CopyFrom streams rows into table with COPY.
func (r *Repository) CopyFrom(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	n, err := r.pool.CopyFrom(ctx, splitFQN(table), columns, pgx.CopyFromRows(rows))
	if err != nil {
		return n, fmt.Errorf("postgres: copy into %s: %w", table, describe(err))
	}
	return n, nil
}

// createTableSQL renders CREATE TABLE with one nullable TEXT column per name.
func createTableSQL(table string, columns []string) (string, error) {
	if strings.TrimSpace(table) == "" {
		return "", fmt.Errorf("postgres ddl: table name must not be empty")
	}
	if len(columns) == 0 {
		return "", fmt.Errorf("postgres ddl: table %s has no columns", table)
	}
	defs := make([]string, len(columns))
	for i, c := range columns {
		if strings.TrimSpace(c) == "" {
			return "", fmt.Errorf("postgres ddl: empty column name in table %s", table)
		}
		defs[i] = quoteIdent(c) + " TEXT"
	}
	return fmt.Sprintf("CREATE TABLE %s (\n  %s\n)", quoteFQN(table), strings.Join(defs, ",\n  ")), nil
}

// describe folds pgconn detail and SQLSTATE into err's message.
func describe(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Detail != "" {
		return fmt.Errorf("%w (%s; SQLSTATE %s)", err, pgErr.Detail, pgErr.SQLState())
	}
	return err
}

// quoteIdent quotes a single identifier segment:
//
//	quoteIdent(`age`)        => `"age"`
//	quoteIdent(`weird"name`) => `"weird""name"`
func quoteIdent(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}

// quoteFQN quotes a possibly schema-qualified name. Empty segments are
// ignored.
func quoteFQN(name string) string {
	parts := splitFQN(name)
	out := make([]string, len(parts))
	for i, p := range parts {
		out[i] = quoteIdent(p)
	}
	return strings.Join(out, ".")
}

// splitFQN converts "schema.table" into pgx.Identifier{"schema", "table"}.
func splitFQN(name string) pgx.Identifier {
	parts := strings.Split(name, ".")
	id := make(pgx.Identifier, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			id = append(id, p)
		}
	}
	return id
}
