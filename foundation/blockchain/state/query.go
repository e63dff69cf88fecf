package state

import (
	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/genesis"
)

// LatestBlock returns the last block in the chain.
func (s *State) LatestBlock() database.Block {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.chain[len(s.chain)-1].Copy()
}

// BalanceOf walks every transaction in the chain and returns the balance for
// the account. The balance can be negative, nothing stops an account from
// spending more than it received. Amounts are capped at math.MaxInt64 on
// submission; running totals beyond the int64 range are not detected.
func (s *State) BalanceOf(accountID database.AccountID) int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var balance int64
	for _, block := range s.chain {
		for _, tx := range block.Trans {
			if tx.From == accountID {
				balance -= int64(tx.Amount)
			}

			if tx.To == accountID {
				balance += int64(tx.Amount)
			}
		}
	}

	return balance
}

// IsChainValid reports whether every block after genesis holds valid
// transactions, matches its stored hash and links to its parent.
func (s *State) IsChainValid() bool {
	if err := s.ValidateChain(); err != nil {
		s.evHandler("state: IsChainValid: WARNING: %s", err)
		return false
	}

	return true
}

// ValidateChain performs the same checks as IsChainValid and returns the
// reason the first invalid block failed. The genesis block is trusted.
func (s *State) ValidateChain() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := 1; i < len(s.chain); i++ {
		if err := s.chain[i].ValidateBlock(s.chain[i-1], s.verifier); err != nil {
			return &InvalidBlockError{Number: i, Err: err}
		}
	}

	return nil
}

// =============================================================================

// RetrieveGenesis returns the genesis information the ledger is using.
func (s *State) RetrieveGenesis() genesis.Genesis {
	return s.genesis
}

// RetrieveBlocks returns a copy of the full chain, starting with genesis.
func (s *State) RetrieveBlocks() []database.Block {
	s.mu.RLock()
	defer s.mu.RUnlock()

	blocks := make([]database.Block, len(s.chain))
	for i, block := range s.chain {
		blocks[i] = block.Copy()
	}

	return blocks
}

// RetrieveMempool returns a copy of the pending transactions.
func (s *State) RetrieveMempool() []database.Tx {
	return s.mempool.Copy()
}

// QueryMempoolLength returns the current length of the mempool.
func (s *State) QueryMempoolLength() int {
	return s.mempool.Count()
}

// QueryBlocksByAccount returns the set of blocks with a transaction to or
// from the account. If the account is empty, all blocks are returned.
func (s *State) QueryBlocksByAccount(accountID database.AccountID) []database.Block {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []database.Block
	for _, block := range s.chain {
		if accountID == "" {
			out = append(out, block.Copy())
			continue
		}

		for _, tx := range block.Trans {
			if tx.From == accountID || tx.To == accountID {
				out = append(out, block.Copy())
				break
			}
		}
	}

	return out
}
