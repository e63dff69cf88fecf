// Package mempool maintains the mempool for the blockchain.
package mempool

import (
	"sync"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
)

// Mempool represents the ordered set of transactions waiting to be mined.
// Transactions are kept in the order they were submitted.
type Mempool struct {
	pool []database.Tx
	mu   sync.RWMutex
}

// New constructs a new, empty mempool.
func New() *Mempool {
	return &Mempool{}
}

// Count returns the current number of transaction in the pool.
func (mp *Mempool) Count() int {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	return len(mp.pool)
}

// Add appends a transaction to the end of the pool and returns the new size.
func (mp *Mempool) Add(tx database.Tx) int {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	mp.pool = append(mp.pool, tx)

	return len(mp.pool)
}

// Copy returns the transactions in submission order.
func (mp *Mempool) Copy() []database.Tx {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	return append([]database.Tx{}, mp.pool...)
}

// Remove drops the oldest count transactions from the pool. This is used
// once a copy of those transactions has been mined into a block.
func (mp *Mempool) Remove(count int) {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if count <= 0 {
		return
	}

	if count > len(mp.pool) {
		count = len(mp.pool)
	}

	mp.pool = append([]database.Tx(nil), mp.pool[count:]...)
}
