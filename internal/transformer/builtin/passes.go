package builtin

import "campaignetl/internal/transformer"

// Passes returns the client, campaign and economics passes in output order.
func Passes() transformer.Set {
	return transformer.Set{Client{}, Campaign{}, Economics{}}
}
