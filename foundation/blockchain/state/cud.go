package state

import (
	"math"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
)

// AddTransaction validates a transaction and adds it to the mempool. This is
// the only way for a transaction to reach a block.
func (s *State) AddTransaction(tx database.Tx) error {
	if tx.From == "" || tx.To == "" {
		return &database.ValidationError{Tx: tx, Err: database.ErrMissingAddress}
	}

	if tx.Amount > math.MaxInt64 {
		return &database.ValidationError{Tx: tx, Err: database.ErrAmountTooLarge}
	}

	ok, err := tx.IsValid(s.verifier)
	if err != nil {
		return &database.ValidationError{Tx: tx, Err: err}
	}

	if !ok {
		return &database.ValidationError{Tx: tx, Err: database.ErrInvalidSignature}
	}

	n := s.mempool.Add(tx)
	s.evHandler("state: AddTransaction: tx[%s]: mempool[%d]", tx, n)

	return nil
}
