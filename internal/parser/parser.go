package parser

import (
	"io"

	"campaignetl/pkg/records"
)

// Parser turns one decoded tabular entry into a record set.
type Parser interface {
	Parse(r io.Reader) (*records.Set, error)
}
