// Package transformer runs the per-table field derivation passes.
//
// A Transformer projects the reconciled Unified Table onto one output
// table. Passes are pure: they read the shared, read-only table and return
// a Set they own, so Run can execute them concurrently.
package transformer

import (
	"context"

	"golang.org/x/sync/errgroup"

	"campaignetl/internal/schema"
	"campaignetl/pkg/records"
)

// Transformer derives one output table.
type Transformer interface {
	// Name is the output table name, e.g. "client".
	Name() string
	// Columns is the fixed output column order.
	Columns() []string
	Apply(rc *schema.Reconciled) *records.Set
}

// Set is an ordered list of independent transformers.
type Set []Transformer

// Run applies every transformer to rc concurrently and returns the outputs
// in the same order as s. It returns early with the context error if ctx is
// canceled before a pass starts.
func (s Set) Run(ctx context.Context, rc *schema.Reconciled) ([]*records.Set, error) {
	out := make([]*records.Set, len(s))
	g, ctx := errgroup.WithContext(ctx)
	for i, t := range s {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out[i] = t.Apply(rc)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
