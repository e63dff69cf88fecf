package database

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/ardanlabs/powledger/foundation/blockchain/signature"
)

// Block represents a group of transactions batched together.
type Block struct {
	TimeStamp     uint64 `json:"timestamp"`       // Time the block was created in unix milliseconds.
	Trans         []Tx   `json:"trans"`           // Transactions fixed at the time of creation.
	PrevBlockHash string `json:"prev_block_hash"` // Hash of the previous block in the chain.
	Nonce         uint64 `json:"nonce"`           // Value identified to solve the hash solution.
	Hash          string `json:"hash"`            // Hash of the block at the current nonce.
}

// NewBlock constructs a block with the hash computed at a nonce of zero.
// The block takes its own copy of the transactions.
func NewBlock(timeStamp uint64, trans []Tx, prevBlockHash string) Block {
	b := Block{
		TimeStamp:     timeStamp,
		Trans:         append([]Tx{}, trans...),
		PrevBlockHash: prevBlockHash,
	}
	b.Hash = b.ComputeHash()

	return b
}

// ComputeHash returns the hash of the block's canonical representation:
// decimal timestamp, previous hash, JSON array of transactions and decimal
// nonce, concatenated in that order.
func (b Block) ComputeHash() string {
	trans := b.Trans
	if trans == nil {
		trans = []Tx{}
	}

	data, err := json.Marshal(trans)
	if err != nil {
		return signature.ZeroHash
	}

	buf := make([]byte, 0, len(data)+128)
	buf = strconv.AppendUint(buf, b.TimeStamp, 10)
	buf = append(buf, b.PrevBlockHash...)
	buf = append(buf, data...)
	buf = strconv.AppendUint(buf, b.Nonce, 10)

	return signature.HashBytes(buf)
}

// Mine does the work of finding a nonce that gives the block a hash with
// the difficulty number of leading zeros. Pointer semantics are being used
// since a nonce is being discovered. The work can be cancelled through the
// context and, when maxAttempts is not zero, is limited to that many hashes.
func (b *Block) Mine(ctx context.Context, difficulty uint16, maxAttempts uint64, ev func(v string, args ...any)) error {
	ev("database: Mine: MINING: started: difficulty[%d]", difficulty)
	defer ev("database: Mine: MINING: completed")

	for _, tx := range b.Trans {
		ev("database: Mine: MINING: tx[%s]", tx)
	}

	var attempts uint64
	for !IsHashSolved(difficulty, b.Hash) {
		attempts++
		if attempts%1_000_000 == 0 {
			ev("database: Mine: MINING: attempts[%d]", attempts)
		}

		// Did we get told to stop trying to solve the problem.
		if ctx.Err() != nil {
			ev("database: Mine: MINING: CANCELLED")
			return ctx.Err()
		}

		if maxAttempts > 0 && attempts > maxAttempts {
			ev("database: Mine: MINING: TIMEOUT: attempts[%d]", maxAttempts)
			return ErrMiningTimeout
		}

		b.Nonce++
		b.Hash = b.ComputeHash()
	}

	ev("database: Mine: MINING: SOLVED: prevBlk[%s]: newBlk[%s]: attempts[%d]", b.PrevBlockHash, b.Hash, attempts)

	return nil
}

// HasValidTransactions returns true if every transaction in the block is
// properly signed.
func (b Block) HasValidTransactions(v signature.Verifier) bool {
	return b.validateTransactions(v) == nil
}

// ValidateBlock checks the block is properly signed, its stored hash matches
// its contents and it links to the previous block.
func (b Block) ValidateBlock(previousBlock Block, v signature.Verifier) error {
	if err := b.validateTransactions(v); err != nil {
		return err
	}

	if hash := b.ComputeHash(); b.Hash != hash {
		return fmt.Errorf("block hash doesn't match block contents, got %s, exp %s", b.Hash, hash)
	}

	if b.PrevBlockHash != previousBlock.Hash {
		return fmt.Errorf("parent block hash doesn't match our known parent, got %s, exp %s", b.PrevBlockHash, previousBlock.Hash)
	}

	return nil
}

// Copy returns a block that shares no memory with the original.
func (b Block) Copy() Block {
	b.Trans = append([]Tx(nil), b.Trans...)
	return b
}

// validateTransactions stops at the first transaction that isn't valid.
func (b Block) validateTransactions(v signature.Verifier) error {
	for i, tx := range b.Trans {
		ok, err := tx.IsValid(v)
		if err != nil {
			return fmt.Errorf("tx[%d] %s: %w", i, tx, err)
		}

		if !ok {
			return fmt.Errorf("tx[%d] %s: %w", i, tx, ErrInvalidSignature)
		}
	}

	return nil
}

// =============================================================================

// POWArgs represents the set of arguments required to run POW.
type POWArgs struct {
	Difficulty  uint16
	MaxAttempts uint64
	PrevBlock   Block
	Trans       []Tx
	EvHandler   func(v string, args ...any)
}

// POW constructs a new Block and performs the work to find a nonce that
// solves the cryptographic POW puzzle.
func POW(ctx context.Context, args POWArgs) (Block, error) {
	ev := args.EvHandler
	if ev == nil {
		ev = func(v string, args ...any) {}
	}

	nb := NewBlock(uint64(time.Now().UTC().UnixMilli()), args.Trans, args.PrevBlock.Hash)

	if err := nb.Mine(ctx, args.Difficulty, args.MaxAttempts, ev); err != nil {
		return Block{}, err
	}

	return nb, nil
}

// IsHashSolved checks the hash to make sure it complies with
// the POW rules. We need to match a difficulty number of 0's.
func IsHashSolved(difficulty uint16, hash string) bool {
	const match = "0x0000000000000000000000000000000000000000000000000000000000000000"

	if len(hash) != len(match) || int(difficulty) > len(match)-2 {
		return false
	}

	return hash[:2+difficulty] == match[:2+difficulty]
}
