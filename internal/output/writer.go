// Package output serializes derived tables to CSV files and reads them back
// for verification.
//
// Files are UTF-8, comma-separated, with a header row and no index column.
// Missing values are written as empty fields. Each file is written to a
// temporary sibling and renamed over the destination, so a failed run never
// leaves a half-written table behind and a successful one fully replaces the
// previous run's file.
package output

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/zeebo/xxh3"
	"go.uber.org/zap"

	"campaignetl/pkg/records"
)

// File describes one written table.
type File struct {
	Table   string
	Path    string
	Columns []string
	Rows    int
	// Digest is the xxh3 64-bit hash of the file bytes.
	Digest uint64
}

// DigestHex renders Digest as 16 hex digits.
func (f File) DigestHex() string { return fmt.Sprintf("%016x", f.Digest) }

// Writer writes tables into one directory.
type Writer struct {
	dir string
	log *zap.Logger
}

// NewWriter returns a Writer for dir. A nil logger is replaced by a no-op.
func NewWriter(dir string, lg *zap.Logger) *Writer {
	if lg == nil {
		lg = zap.NewNop()
	}
	return &Writer{dir: dir, log: lg}
}

// Dir returns the output directory.
func (w *Writer) Dir() string { return w.dir }

// Path returns the destination path for table name.
func (w *Writer) Path(name string) string { return filepath.Join(w.dir, name+".csv") }

// Write serializes s to <dir>/<s.Name>.csv, creating dir when needed.
func (w *Writer) Write(s *records.Set) (File, error) {
	dst := w.Path(s.Name)
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return File{}, &WriteError{Path: dst, Err: err}
	}

	tmp, err := os.CreateTemp(w.dir, "."+s.Name+".*.csv.tmp")
	if err != nil {
		return File{}, &WriteError{Path: dst, Err: err}
	}
	defer os.Remove(tmp.Name()) // no-op after a successful rename

	h := xxh3.New()
	if err := encode(io.MultiWriter(tmp, h), s); err != nil {
		tmp.Close()
		return File{}, &WriteError{Path: dst, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return File{}, &WriteError{Path: dst, Err: err}
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return File{}, &WriteError{Path: dst, Err: err}
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return File{}, &WriteError{Path: dst, Err: err}
	}

	f := File{
		Table:   s.Name,
		Path:    dst,
		Columns: append([]string(nil), s.Columns...),
		Rows:    s.Len(),
		Digest:  h.Sum64(),
	}
	w.log.Info("table written",
		zap.String("table", f.Table),
		zap.String("path", f.Path),
		zap.Int("rows", f.Rows),
		zap.String("xxh3", f.DigestHex()))
	return f, nil
}

func encode(w io.Writer, s *records.Set) error {
	bw := bufio.NewWriterSize(w, 64*1024)
	cw := csv.NewWriter(bw)
	if err := cw.Write(s.Columns); err != nil {
		return err
	}
	row := make([]string, len(s.Columns))
	for _, rec := range s.Rows {
		for j, c := range s.Columns {
			row[j] = rec[c].Text()
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}
	return bw.Flush()
}
