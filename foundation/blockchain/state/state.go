// Package state is the core API for the blockchain and implements all the
// business rules and processing.
package state

import (
	"sync"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/genesis"
	"github.com/ardanlabs/powledger/foundation/blockchain/mempool"
	"github.com/ardanlabs/powledger/foundation/blockchain/signature"
)

// EventHandler defines a function that is called when events
// occur in the processing of the ledger.
type EventHandler func(v string, args ...any)

// Worker interface represents the behavior required to be implemented by any
// package providing support for mining in the background.
type Worker interface {
	Shutdown()
	SignalStartMining()
}

// =============================================================================

// Config represents the configuration required to start the ledger.
type Config struct {
	BeneficiaryID database.AccountID
	Genesis       genesis.Genesis
	MaxAttempts   uint64
	Verifier      signature.Verifier
	EvHandler     EventHandler
}

// State manages the blockchain held in memory. The chain and the mempool
// are only changed through AddTransaction and MinePendingTransactions.
type State struct {
	beneficiaryID database.AccountID
	genesis       genesis.Genesis
	maxAttempts   uint64
	verifier      signature.Verifier
	evHandler     EventHandler

	mu       sync.RWMutex
	miningMu sync.Mutex
	chain    []database.Block
	mempool  *mempool.Mempool

	Worker Worker
}

// New constructs a new ledger holding only the genesis block.
func New(cfg Config) (*State, error) {

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	if err := cfg.Genesis.Validate(); err != nil {
		return nil, err
	}

	verifier := cfg.Verifier
	if verifier == nil {
		verifier = signature.ECDSAVerifier{}
	}

	state := State{
		beneficiaryID: cfg.BeneficiaryID,
		genesis:       cfg.Genesis,
		maxAttempts:   cfg.MaxAttempts,
		verifier:      verifier,
		evHandler:     ev,

		chain:   []database.Block{CreateGenesisBlock(cfg.Genesis)},
		mempool: mempool.New(),
	}

	ev("state: New: genesis: blk[%s]: difficulty[%d]: reward[%d]", state.chain[0].Hash, cfg.Genesis.Difficulty, cfg.Genesis.MiningReward)

	// The Worker is not set here. The call to worker.Run will assign itself
	// and start mining in the background.

	return &state, nil
}

// Shutdown cleanly brings the ledger down.
func (s *State) Shutdown() error {
	s.evHandler("state: shutdown: started")
	defer s.evHandler("state: shutdown: completed")

	// Stop all blockchain writing activity.
	if s.Worker != nil {
		s.Worker.Shutdown()
	}

	return nil
}

// CreateGenesisBlock returns the fixed first block of the chain. It holds no
// transactions, uses the zero hash as its parent and is never mined.
func CreateGenesisBlock(gen genesis.Genesis) database.Block {
	return database.NewBlock(uint64(gen.Date.UTC().UnixMilli()), nil, signature.ZeroHash)
}
