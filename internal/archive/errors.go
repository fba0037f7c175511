package archive

import "fmt"

// ReadError reports a bundle that could not be opened, or an entry inside
// it that could not be decoded or parsed. Entry is empty when the bundle
// itself failed.
type ReadError struct {
	Bundle string
	Entry  string
	Err    error
}

func (e *ReadError) Error() string {
	if e.Entry == "" {
		return fmt.Sprintf("archive %s: %v", e.Bundle, e.Err)
	}
	return fmt.Sprintf("archive %s: entry %s: %v", e.Bundle, e.Entry, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }
