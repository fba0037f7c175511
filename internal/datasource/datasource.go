// Package datasource defines the file-listing collaborator the pipeline
// uses to discover input bundles.
package datasource

import "context"

// Lister returns the paths of the bundles to process, in processing order.
type Lister interface {
	List(ctx context.Context) ([]string, error)
}
