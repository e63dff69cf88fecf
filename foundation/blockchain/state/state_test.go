package state_test

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/genesis"
	"github.com/ardanlabs/powledger/foundation/blockchain/signature"
	"github.com/ardanlabs/powledger/foundation/blockchain/state"
	"github.com/ethereum/go-ethereum/crypto"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

const (
	accountA = "fae85851bdf5c9f49923722ce38f3c1defcfd3619ef5453230a58ad805499959"
	accountB = "8dc79feefd3b86e2f9991def0e5ccd9a5128e104682407b308594bc1032ac7f0"
)

const reward database.AccountID = "miners-address"

func ifErrFailNow(t *testing.T, err error) {
	if err != nil {
		t.Error(err)
		t.FailNow()
	}
}

func keyPair(t *testing.T, hexKey string) signature.ECDSAKeyPair {
	pk, err := crypto.HexToECDSA(hexKey)
	ifErrFailNow(t, err)

	return signature.NewECDSAKeyPair(pk)
}

func newLedger(t *testing.T, ev state.EventHandler) *state.State {
	gen := genesis.Genesis{
		Date:         time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
		Difficulty:   2,
		MiningReward: 100,
	}

	s, err := state.New(state.Config{
		Genesis:   gen,
		EvHandler: ev,
	})
	ifErrFailNow(t, err)

	return s
}

func transfer(t *testing.T, from signature.ECDSAKeyPair, to signature.ECDSAKeyPair, amount uint64) database.Tx {
	tx := database.NewTx(database.AccountID(from.PublicKey()), database.AccountID(to.PublicKey()), amount)
	ifErrFailNow(t, tx.Sign(from))

	return tx
}

// =============================================================================

func TestGenesis(t *testing.T) {
	t.Log("Given the need to start a new ledger.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen no blocks have been mined.", testID)
		{
			s := newLedger(t, nil)

			blocks := s.RetrieveBlocks()
			if len(blocks) != 1 {
				t.Fatalf("\t%s\tTest %d:\tShould have only the genesis block: %d", failed, testID, len(blocks))
			}
			t.Logf("\t%s\tTest %d:\tShould have only the genesis block.", success, testID)

			gen := blocks[0]
			if gen.PrevBlockHash != signature.ZeroHash || len(gen.Trans) != 0 || gen.Hash != gen.ComputeHash() {
				t.Fatalf("\t%s\tTest %d:\tShould have a fixed genesis block: %+v", failed, testID, gen)
			}
			t.Logf("\t%s\tTest %d:\tShould have a fixed genesis block.", success, testID)

			other := newLedger(t, nil)
			if other.LatestBlock().Hash != gen.Hash {
				t.Fatalf("\t%s\tTest %d:\tShould create the same genesis block every time.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould create the same genesis block every time.", success, testID)

			for range 2 {
				if !s.IsChainValid() {
					t.Fatalf("\t%s\tTest %d:\tShould have a valid chain.", failed, testID)
				}
			}
			t.Logf("\t%s\tTest %d:\tShould have a valid chain.", success, testID)
		}
	}
}

func TestBalances(t *testing.T) {
	a := keyPair(t, accountA)
	b := keyPair(t, accountB)

	s := newLedger(t, nil)

	ifErrFailNow(t, s.AddTransaction(transfer(t, a, b, 100)))
	ifErrFailNow(t, s.AddTransaction(transfer(t, b, a, 50)))

	if n := s.QueryMempoolLength(); n != 2 {
		t.Fatalf("Should have two pending transactions: %d", n)
	}

	block, err := s.MinePendingTransactions(context.Background(), reward)
	ifErrFailNow(t, err)

	if !strings.HasPrefix(block.Hash, "0x00") {
		t.Fatalf("Should mine a block at the ledger difficulty: %s", block.Hash)
	}

	if n := len(block.Trans); n != 3 || !block.Trans[2].IsReward() {
		t.Fatalf("Should mine the transactions with the reward last: %d", n)
	}

	if n := s.QueryMempoolLength(); n != 0 {
		t.Fatalf("Should clear the mempool after mining: %d", n)
	}

	tt := []struct {
		name    string
		account database.AccountID
		balance int64
	}{
		{"reward", reward, 100},
		{"A", database.AccountID(a.PublicKey()), -50},
		{"B", database.AccountID(b.PublicKey()), 50},
		{"unknown", "nobody", 0},
	}

	for _, tst := range tt {
		f := func(t *testing.T) {
			for range 2 {
				if got := s.BalanceOf(tst.account); got != tst.balance {
					t.Fatalf("Should get the right balance, got %d, exp %d", got, tst.balance)
				}
			}
		}
		t.Run(tst.name, f)
	}

	if !s.IsChainValid() {
		t.Fatalf("Should have a valid chain after mining.")
	}
}

func TestDoubleMining(t *testing.T) {
	s := newLedger(t, nil)

	for range 2 {
		block, err := s.MinePendingTransactions(context.Background(), reward)
		ifErrFailNow(t, err)

		if len(block.Trans) != 1 || block.Trans[0].To != reward || block.Trans[0].Amount != 100 {
			t.Fatalf("Should mine a block with only the reward: %+v", block.Trans)
		}
	}

	blocks := s.RetrieveBlocks()
	if len(blocks) != 3 {
		t.Fatalf("Should have three blocks: %d", len(blocks))
	}

	for i := 1; i < len(blocks); i++ {
		if blocks[i].PrevBlockHash != blocks[i-1].Hash {
			t.Fatalf("Should link block %d to its parent.", i)
		}
	}

	if got := s.BalanceOf(reward); got != 200 {
		t.Fatalf("Should get the reward twice, got %d, exp %d", got, 200)
	}

	if !s.IsChainValid() {
		t.Fatalf("Should have a valid chain after mining.")
	}

	if _, err := s.MinePendingTransactions(context.Background(), ""); !errors.Is(err, database.ErrMissingAddress) {
		t.Fatalf("Should not mine without a reward address: %v", err)
	}
}

func TestAddTransaction(t *testing.T) {
	a := keyPair(t, accountA)
	b := keyPair(t, accountB)

	tampered := transfer(t, a, b, 100)
	tampered.Amount = 1000

	wrongSigner := transfer(t, b, a, 100)
	wrongSigner.From = database.AccountID(a.PublicKey())

	tt := []struct {
		name string
		tx   database.Tx
		err  error
	}{
		{"no from", database.Tx{To: database.AccountID(b.PublicKey()), Amount: 1}, database.ErrMissingAddress},
		{"no to", database.Tx{From: database.AccountID(a.PublicKey()), Amount: 1}, database.ErrMissingAddress},
		{"reward", database.NewRewardTx(reward, 100), database.ErrMissingAddress},
		{"unsigned", database.NewTx(database.AccountID(a.PublicKey()), database.AccountID(b.PublicKey()), 1), database.ErrMissingSignature},
		{"tampered", tampered, database.ErrInvalidSignature},
		{"wrong signer", wrongSigner, database.ErrInvalidSignature},
		{"max amount", transfer(t, a, b, math.MaxUint64), database.ErrAmountTooLarge},
		{"amount past int64", transfer(t, a, b, math.MaxInt64+1), database.ErrAmountTooLarge},
	}

	s := newLedger(t, nil)

	for _, tst := range tt {
		f := func(t *testing.T) {
			err := s.AddTransaction(tst.tx)
			if !errors.Is(err, tst.err) {
				t.Fatalf("Should get the right error, got %v, exp %v", err, tst.err)
			}

			if !database.IsValidationError(err) {
				t.Fatalf("Should get a validation error: %T", err)
			}

			if n := s.QueryMempoolLength(); n != 0 {
				t.Fatalf("Should not add the transaction to the mempool: %d", n)
			}
		}
		t.Run(tst.name, f)
	}
}

func TestLargestAmount(t *testing.T) {
	a := keyPair(t, accountA)
	b := keyPair(t, accountB)

	s := newLedger(t, nil)

	ifErrFailNow(t, s.AddTransaction(transfer(t, a, b, math.MaxInt64)))

	_, err := s.MinePendingTransactions(context.Background(), reward)
	ifErrFailNow(t, err)

	if got := s.BalanceOf(database.AccountID(b.PublicKey())); got != math.MaxInt64 {
		t.Fatalf("Should credit the receiver, got %d, exp %d", got, int64(math.MaxInt64))
	}

	if got := s.BalanceOf(database.AccountID(a.PublicKey())); got != -math.MaxInt64 {
		t.Fatalf("Should debit the sender, got %d, exp %d", got, int64(-math.MaxInt64))
	}
}

func TestMiningAborted(t *testing.T) {
	a := keyPair(t, accountA)
	b := keyPair(t, accountB)

	gen := genesis.Genesis{
		Date:         time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
		Difficulty:   64,
		MiningReward: 100,
	}

	s, err := state.New(state.Config{Genesis: gen, MaxAttempts: 1_000})
	ifErrFailNow(t, err)

	ifErrFailNow(t, s.AddTransaction(transfer(t, a, b, 100)))

	if _, err := s.MinePendingTransactions(context.Background(), reward); !errors.Is(err, database.ErrMiningTimeout) {
		t.Fatalf("Should run out of mining attempts: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := s.MinePendingTransactions(ctx, reward); !errors.Is(err, context.Canceled) {
		t.Fatalf("Should stop mining when cancelled: %v", err)
	}

	if n := len(s.RetrieveBlocks()); n != 1 {
		t.Fatalf("Should not append a block: %d", n)
	}

	if n := s.QueryMempoolLength(); n != 1 {
		t.Fatalf("Should keep the pending transactions: %d", n)
	}

	if got := s.BalanceOf(reward); got != 0 {
		t.Fatalf("Should not pay a reward: %d", got)
	}
}

func TestSubmitWhileMining(t *testing.T) {
	a := keyPair(t, accountA)
	b := keyPair(t, accountB)

	late := transfer(t, b, a, 25)

	var s *state.State
	var submitted bool
	ev := func(v string, args ...any) {
		if submitted || !strings.Contains(v, "MINING: started: difficulty") {
			return
		}
		submitted = true

		if err := s.AddTransaction(late); err != nil {
			t.Errorf("Should be able to submit while mining: %s", err)
		}
	}

	s = newLedger(t, ev)
	ifErrFailNow(t, s.AddTransaction(transfer(t, a, b, 100)))

	block, err := s.MinePendingTransactions(context.Background(), reward)
	ifErrFailNow(t, err)

	if !submitted {
		t.Fatalf("Should have submitted a transaction during mining.")
	}

	if n := len(block.Trans); n != 2 {
		t.Fatalf("Should only mine the transactions pending when mining started: %d", n)
	}

	pending := s.RetrieveMempool()
	if len(pending) != 1 || pending[0] != late {
		t.Fatalf("Should keep the transaction submitted during mining: %v", pending)
	}
}
