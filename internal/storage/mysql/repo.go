// Package mysql implements storage.Repository on go-sql-driver/mysql. Each
// CopyFrom batch is one multi-row INSERT inside a transaction.
package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// maxPlaceholders stays under the server's 65535 prepared-statement limit.
const maxPlaceholders = 60000

// Config holds MySQL repository configuration.
type Config struct {
	DSN string // e.g. "user:pass@tcp(127.0.0.1:3306)/bank"
}

// Repository is a MySQL-backed storage.Repository.
type Repository struct {
	db *sql.DB
}

// NewRepository validates the DSN, opens and pings the server, and returns a
// Close function.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	if _, err := mysql.ParseDSN(cfg.DSN); err != nil {
		return nil, nil, fmt.Errorf("mysql dsn: %w", err)
	}
	db, err := sql.Open("mysql", cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("mysql: open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("mysql: ping: %w", err)
	}
	return &Repository{db: db}, func() { _ = db.Close() }, nil
}

// Exec runs sqlText.
func (r *Repository) Exec(ctx context.Context, sqlText string) error {
	if _, err := r.db.ExecContext(ctx, sqlText); err != nil {
		return fmt.Errorf("mysql: exec: %w", err)
	}
	return nil
}

// ReplaceTable drops and recreates table. MySQL commits DDL implicitly, so
// the two statements are not atomic.
func (r *Repository) ReplaceTable(ctx context.Context, table string, columns []string) error {
	create, err := createTableSQL(table, columns)
	if err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, "DROP TABLE IF EXISTS "+myFQN(table)); err != nil {
		return fmt.Errorf("mysql: drop %s: %w", table, err)
	}
	if _, err := r.db.ExecContext(ctx, create); err != nil {
		return fmt.Errorf("mysql: create %s: %w", table, err)
	}
	return nil
}

// CopyFrom inserts rows with multi-row INSERT statements in one transaction.
func (r *Repository) CopyFrom(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	if len(columns) == 0 {
		return 0, fmt.Errorf("mysql: CopyFrom: columns must not be empty")
	}
	if len(rows) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("mysql: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var total int64
	for _, chunk := range chunkRows(rows, maxPlaceholders/len(columns)) {
		q, args, err := insertSQL(table, columns, chunk)
		if err != nil {
			return 0, err
		}
		res, err := tx.ExecContext(ctx, q, args...)
		if err != nil {
			return 0, fmt.Errorf("mysql: insert into %s: %w", table, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("mysql: rows affected: %w", err)
		}
		total += n
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("mysql: commit: %w", err)
	}
	return total, nil
}

func chunkRows(rows [][]any, size int) [][][]any {
	if size < 1 {
		size = 1
	}
	var out [][][]any
	for len(rows) > size {
		out = append(out, rows[:size])
		rows = rows[size:]
	}
	return append(out, rows)
}

// insertSQL renders INSERT INTO t (a, b) VALUES (?, ?), (?, ?) for rows.
func insertSQL(table string, columns []string, rows [][]any) (string, []any, error) {
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = myIdent(c)
	}
	tuple := "(" + strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ") + ")"

	var sb strings.Builder
	fmt.Fprintf(&sb, "INSERT INTO %s (%s) VALUES ", myFQN(table), strings.Join(quoted, ", "))
	args := make([]any, 0, len(rows)*len(columns))
	for i, row := range rows {
		if len(row) != len(columns) {
			return "", nil, fmt.Errorf("mysql: row %d has %d values, want %d", i, len(row), len(columns))
		}
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(tuple)
		args = append(args, row...)
	}
	return sb.String(), args, nil
}

func createTableSQL(table string, columns []string) (string, error) {
	if strings.TrimSpace(table) == "" {
		return "", fmt.Errorf("mysql ddl: table name must not be empty")
	}
	if len(columns) == 0 {
		return "", fmt.Errorf("mysql ddl: table %s has no columns", table)
	}
	defs := make([]string, len(columns))
	for i, c := range columns {
		defs[i] = myIdent(c) + " TEXT NULL"
	}
	return fmt.Sprintf("CREATE TABLE %s (%s) DEFAULT CHARSET=utf8mb4", myFQN(table), strings.Join(defs, ", ")), nil
}

// myIdent backquotes an identifier: myIdent("a`b") => "`a``b`".
func myIdent(id string) string { return "`" + strings.ReplaceAll(id, "`", "``") + "`" }

func myFQN(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = myIdent(p)
	}
	return strings.Join(parts, ".")
}
