// Package archive extracts tabular entries from compressed bundles without
// writing anything to disk.
//
// A bundle is a zip file; every entry whose name ends with the configured
// extension is read fully into memory, validated as UTF-8 (a leading BOM is
// dropped) and handed to a parser.Parser. Entries are visited in the order
// they appear in the zip central directory.
package archive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/klauspost/compress/zip"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"campaignetl/internal/parser"
	"campaignetl/pkg/records"
)

// ErrInvalidUTF8 is wrapped by ReadError when an entry is not valid UTF-8.
var ErrInvalidUTF8 = errors.New("entry is not valid UTF-8")

// Options configures a Reader.
type Options struct {
	// Parser parses each decoded entry. Required.
	Parser parser.Parser

	// EntryExt selects entries by suffix, e.g. ".csv". Matching is
	// case-insensitive. Empty means every file entry.
	EntryExt string

	// SkipBadEntries logs and skips entries (and bundles) that fail instead
	// of aborting with a ReadError.
	SkipBadEntries bool

	Logger *zap.Logger
}

// Reader reads record sets out of bundles.
type Reader struct {
	opt Options
	log *zap.Logger
}

// NewReader returns a Reader for opt. A nil Logger is replaced by a no-op
// logger.
func NewReader(opt Options) *Reader {
	lg := opt.Logger
	if lg == nil {
		lg = zap.NewNop()
	}
	return &Reader{opt: opt, log: lg}
}

// Stats summarizes one ReadAll call. Bundles and Entries count what was
// read; the Skipped counters only move under SkipBadEntries.
type Stats struct {
	Bundles        int
	Entries        int
	SkippedBundles int // bundles that could not be opened
	SkippedEntries int // entries dropped from bundles that did open
	Rows           int
}

// ReadAll reads every bundle in order and returns all parsed sets in
// bundle order, then entry order.
func (r *Reader) ReadAll(ctx context.Context, bundles []string) ([]*records.Set, Stats, error) {
	var (
		out []*records.Set
		st  Stats
	)
	for _, b := range bundles {
		if err := ctx.Err(); err != nil {
			return nil, st, err
		}
		sets, skipped, err := r.ReadBundle(ctx, b)
		st.SkippedEntries += skipped
		if err != nil {
			var re *ReadError
			if r.opt.SkipBadEntries && errors.As(err, &re) {
				r.log.Warn("skipping unreadable bundle", zap.String("bundle", b), zap.Error(err))
				st.SkippedBundles++
				continue
			}
			return nil, st, err
		}
		st.Bundles++
		for _, s := range sets {
			st.Entries++
			st.Rows += s.Len()
		}
		out = append(out, sets...)
	}
	return out, st, nil
}

// ReadBundle opens one bundle and parses its matching entries. It returns
// the parsed sets and the number of entries skipped under SkipBadEntries.
func (r *Reader) ReadBundle(ctx context.Context, bundle string) ([]*records.Set, int, error) {
	if r.opt.Parser == nil {
		return nil, 0, fmt.Errorf("archive: no parser configured")
	}
	zr, err := zip.OpenReader(bundle)
	if err != nil {
		return nil, 0, &ReadError{Bundle: bundle, Err: err}
	}
	defer zr.Close()

	var (
		out     []*records.Set
		skipped int
	)
	for _, f := range zr.File {
		if err := ctx.Err(); err != nil {
			return nil, skipped, err
		}
		if f.FileInfo().IsDir() || !r.matches(f.Name) {
			continue
		}
		set, err := r.readEntry(f)
		if err != nil {
			rerr := &ReadError{Bundle: bundle, Entry: f.Name, Err: err}
			if !r.opt.SkipBadEntries {
				return nil, skipped, rerr
			}
			r.log.Warn("skipping unreadable entry", zap.Error(rerr))
			skipped++
			continue
		}
		set.Name = filepath.Base(bundle) + "/" + f.Name
		r.log.Debug("entry parsed",
			zap.String("bundle", bundle),
			zap.String("entry", f.Name),
			zap.Int("rows", set.Len()),
			zap.Int("columns", len(set.Columns)))
		out = append(out, set)
	}
	return out, skipped, nil
}

func (r *Reader) matches(name string) bool {
	if r.opt.EntryExt == "" {
		return true
	}
	return strings.HasSuffix(strings.ToLower(name), strings.ToLower(r.opt.EntryExt))
}

func (r *Reader) readEntry(f *zip.File) (*records.Set, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	raw, err := io.ReadAll(rc)
	if err != nil {
		return nil, err
	}
	if !utf8.Valid(raw) {
		return nil, ErrInvalidUTF8
	}
	dec := transform.NewReader(bytes.NewReader(raw), unicode.UTF8BOM.NewDecoder())
	return r.opt.Parser.Parse(dec)
}
