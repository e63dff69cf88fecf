package database

import (
	"fmt"

	"github.com/ardanlabs/powledger/foundation/blockchain/signature"
)

// Tx is the transactional information between two parties.
type Tx struct {
	From      AccountID `json:"from"`      // Account sending the value, SystemAccount for rewards.
	To        AccountID `json:"to"`        // Account receiving the value.
	Amount    uint64    `json:"amount"`    // Value transferred.
	Signature string    `json:"signature"` // [R|S|V] signature of the digest by the from account.
}

// NewTx constructs a new unsigned transaction.
func NewTx(from AccountID, to AccountID, amount uint64) Tx {
	return Tx{
		From:   from,
		To:     to,
		Amount: amount,
	}
}

// NewRewardTx constructs the transaction the ledger issues to credit a miner.
func NewRewardTx(to AccountID, amount uint64) Tx {
	return NewTx(SystemAccount, to, amount)
}

// Digest returns the hash that is signed and verified for this transaction.
// The canonical form is the JSON object {"from","to","amount"} in that order.
func (tx Tx) Digest() string {
	digest := struct {
		From   AccountID `json:"from"`
		To     AccountID `json:"to"`
		Amount uint64    `json:"amount"`
	}{
		From:   tx.From,
		To:     tx.To,
		Amount: tx.Amount,
	}

	return signature.Hash(digest)
}

// Sign uses the specified key pair to sign the transaction. The key pair
// must belong to the from account. On failure the signature is untouched.
func (tx *Tx) Sign(kp signature.KeyPair) error {
	if AccountID(kp.PublicKey()) != tx.From {
		return ErrAuthorization
	}

	sig, err := kp.Sign(tx.Digest())
	if err != nil {
		return err
	}

	tx.Signature = sig

	return nil
}

// IsValid verifies the transaction was signed by the from account over its
// current contents. Ledger issued transactions are trusted. A missing
// signature is an error, a signature that doesn't verify is not.
func (tx Tx) IsValid(v signature.Verifier) (bool, error) {
	if tx.From.IsSystem() {
		return true, nil
	}

	if tx.Signature == "" {
		return false, ErrMissingSignature
	}

	return v.Verify(tx.Digest(), tx.Signature, string(tx.From)), nil
}

// IsReward tests if the transaction was issued by the ledger.
func (tx Tx) IsReward() bool {
	return tx.From.IsSystem()
}

// String implements the fmt.Stringer interface for logging.
func (tx Tx) String() string {
	from := "system"
	if !tx.From.IsSystem() {
		from = short(tx.From)
	}

	return fmt.Sprintf("%s->%s:%d", from, short(tx.To), tx.Amount)
}

// short trims long account ids for log output.
func short(a AccountID) string {
	if len(a) <= 12 {
		return string(a)
	}

	return string(a[:12])
}
