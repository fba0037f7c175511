// Package bundletest builds zip bundles on disk for tests.
package bundletest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zip"
)

// Entry is one file inside a bundle.
type Entry struct {
	Name string
	Body string
}

// Write creates dir/name as a zip containing entries, in order, and returns
// its path.
func Write(tb testing.TB, dir, name string, entries ...Entry) string {
	tb.Helper()
	p := filepath.Join(dir, name)
	f, err := os.Create(p)
	if err != nil {
		tb.Fatalf("create bundle: %v", err)
	}
	zw := zip.NewWriter(f)
	for _, e := range entries {
		w, err := zw.Create(e.Name)
		if err != nil {
			tb.Fatalf("zip create %s: %v", e.Name, err)
		}
		if _, err := w.Write([]byte(e.Body)); err != nil {
			tb.Fatalf("zip write %s: %v", e.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		tb.Fatalf("zip close: %v", err)
	}
	if err := f.Close(); err != nil {
		tb.Fatalf("close bundle: %v", err)
	}
	return p
}

// CSV is a convenience for a bundle holding one CSV entry named after the
// bundle.
func CSV(tb testing.TB, dir, name, body string) string {
	tb.Helper()
	return Write(tb, dir, name+".csv.zip", Entry{Name: name + ".csv", Body: body})
}
