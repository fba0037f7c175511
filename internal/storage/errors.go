package storage

import "fmt"

// LoadError reports a failed database load of one output table.
type LoadError struct {
	Table string
	Err   error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load table %s: %v", e.Table, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }
