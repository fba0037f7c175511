package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/zeebo/xxh3"
)

// Report is the result of reading a written file back.
type Report struct {
	Path    string
	Columns []string
	Rows    int
	Digest  uint64
}

// Verify re-reads f from disk and checks the header, the row count and the
// digest against what Write reported.
func Verify(f File) (Report, error) {
	fh, err := os.Open(f.Path)
	if err != nil {
		return Report{}, fmt.Errorf("verify %s: %w", f.Path, err)
	}
	defer fh.Close()

	h := xxh3.New()
	cr := csv.NewReader(io.TeeReader(fh, h))
	header, err := cr.Read()
	if err != nil {
		return Report{}, fmt.Errorf("verify %s: read header: %w", f.Path, err)
	}
	rep := Report{Path: f.Path, Columns: append([]string(nil), header...)}
	for {
		_, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return rep, fmt.Errorf("verify %s: row %d: %w", f.Path, rep.Rows+1, err)
		}
		rep.Rows++
	}
	rep.Digest = h.Sum64()

	switch {
	case !slices.Equal(rep.Columns, f.Columns):
		return rep, fmt.Errorf("verify %s: header %v, want %v", f.Path, rep.Columns, f.Columns)
	case rep.Rows != f.Rows:
		return rep, fmt.Errorf("verify %s: %d rows, want %d", f.Path, rep.Rows, f.Rows)
	case rep.Digest != f.Digest:
		return rep, fmt.Errorf("verify %s: digest %016x, want %016x", f.Path, rep.Digest, f.Digest)
	}
	return rep, nil
}
