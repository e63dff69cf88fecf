package public

import (
	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/validate"
)

// SubmitTx is the signed transaction a wallet sends to the node.
type SubmitTx struct {
	From      database.AccountID `json:"from" validate:"required,len=132,startswith=0x04,hexadecimal,lowercase"`
	To        database.AccountID `json:"to" validate:"required,len=132,startswith=0x04,hexadecimal,lowercase"`
	Amount    uint64             `json:"amount" validate:"max=9223372036854775807"`
	Signature string             `json:"signature" validate:"required,len=132,hexadecimal"`
}

// Validate checks the data in the model is considered clean.
func (stx SubmitTx) Validate() error {
	if err := validate.Check(stx); err != nil {
		return err
	}
	return nil
}

// toDatabaseTx converts the submitted model into a ledger transaction.
func (stx SubmitTx) toDatabaseTx() database.Tx {
	return database.Tx{
		From:      stx.From,
		To:        stx.To,
		Amount:    stx.Amount,
		Signature: stx.Signature,
	}
}

type tx struct {
	From      database.AccountID `json:"from"`
	FromName  string             `json:"from_name"`
	To        database.AccountID `json:"to"`
	ToName    string             `json:"to_name"`
	Amount    uint64             `json:"amount"`
	Signature string             `json:"signature"`
	Reward    bool               `json:"reward"`
}

type block struct {
	TimeStamp     uint64 `json:"timestamp"`
	PrevBlockHash string `json:"prev_block_hash"`
	Nonce         uint64 `json:"nonce"`
	Hash          string `json:"hash"`
	Trans         []tx   `json:"txs"`
}

// Balance is the balance of an account in the ledger.
type Balance struct {
	Account database.AccountID `json:"account"`
	Name    string             `json:"name"`
	Balance int64              `json:"balance"`
}

// Balances is the set of balances returned for a query.
type Balances struct {
	LatestBlock string    `json:"latest_block"`
	Uncommitted int       `json:"uncommitted"`
	Balances    []Balance `json:"balances"`
}

type chainStatus struct {
	Valid  bool   `json:"valid"`
	Blocks int    `json:"blocks"`
	Error  string `json:"error,omitempty"`
}
