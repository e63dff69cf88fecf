package state

import (
	"context"
	"fmt"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
)

// MinePendingTransactions batches every transaction in the mempool together
// with a reward for the specified account into a new block, solves the POW
// puzzle and appends the block to the chain. Only one mining operation runs
// at a time. If mining is cancelled or fails, the chain and the mempool are
// left as they were.
func (s *State) MinePendingTransactions(ctx context.Context, rewardAddress database.AccountID) (database.Block, error) {
	s.evHandler("state: MinePendingTransactions: MINING: started: beneficiary[%s]", rewardAddress)
	defer s.evHandler("state: MinePendingTransactions: MINING: completed")

	if rewardAddress == "" {
		return database.Block{}, database.ErrMissingAddress
	}

	s.miningMu.Lock()
	defer s.miningMu.Unlock()

	// Take a snapshot of the mempool. New transactions can be added while
	// the POW is running and will wait for the next block.
	trans := s.mempool.Copy()
	count := len(trans)

	// The reward is part of the same block as the transactions that earned it.
	trans = append(trans, database.NewRewardTx(rewardAddress, s.genesis.MiningReward))

	s.evHandler("state: MinePendingTransactions: MINING: perform POW: txs[%d]", len(trans))

	block, err := database.POW(ctx, database.POWArgs{
		Difficulty:  s.genesis.Difficulty,
		MaxAttempts: s.maxAttempts,
		PrevBlock:   s.LatestBlock(),
		Trans:       trans,
		EvHandler:   s.evHandler,
	})
	if err != nil {
		return database.Block{}, err
	}

	// Just check one more time we were not cancelled.
	if ctx.Err() != nil {
		return database.Block{}, ctx.Err()
	}

	if err := s.updateLocalState(block, count); err != nil {
		return database.Block{}, err
	}

	return block.Copy(), nil
}

// MineBeneficiary mines the pending transactions with the reward going to
// the beneficiary account the ledger was configured with.
func (s *State) MineBeneficiary(ctx context.Context) (database.Block, error) {
	return s.MinePendingTransactions(ctx, s.beneficiaryID)
}

// =============================================================================

// updateLocalState appends the mined block to the chain and removes the
// mined transactions from the mempool.
func (s *State) updateLocalState(block database.Block, minedTxs int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	latest := s.chain[len(s.chain)-1]
	if block.PrevBlockHash != latest.Hash {
		return fmt.Errorf("mined block does not extend the chain, got %s, exp %s", block.PrevBlockHash, latest.Hash)
	}

	s.chain = append(s.chain, block)

	s.evHandler("state: updateLocalState: blk[%d]: hash[%s]: remove txs[%d] from mempool", len(s.chain)-1, block.Hash, minedTxs)

	s.mempool.Remove(minedTxs)

	return nil
}

// SignalMining asks the background worker to mine the pending transactions.
// It reports false when no worker is running.
func (s *State) SignalMining() bool {
	if s.Worker == nil {
		return false
	}

	s.Worker.SignalStartMining()
	return true
}
