package state

import "fmt"

// InvalidBlockError identifies the first block that broke chain validation.
type InvalidBlockError struct {
	Number int
	Err    error
}

// Error implements the error interface.
func (ibe *InvalidBlockError) Error() string {
	return fmt.Sprintf("blk[%d]: %s", ibe.Number, ibe.Err)
}

// Unwrap provides access to the reason the block is invalid.
func (ibe *InvalidBlockError) Unwrap() error {
	return ibe.Err
}
