package database

import (
	"crypto/ecdsa"
	"errors"

	"github.com/ardanlabs/powledger/foundation/blockchain/signature"
)

// AccountID represents an account id that is used to sign transactions and is
// associated with transactions on the blockchain. The id is the hex encoded
// uncompressed public key of the account.
type AccountID string

// SystemAccount is the from account of transactions issued by the ledger
// itself, such as mining rewards. These transactions carry no signature.
const SystemAccount AccountID = ""

// ToAccountID converts a hex-encoded string to an account and validates the
// hex-encoded string is formatted correctly.
func ToAccountID(hex string) (AccountID, error) {
	a := AccountID(hex)
	if !a.IsAccountID() {
		return "", errors.New("invalid account format")
	}

	return a, nil
}

// PublicKeyToAccountID converts the public key to an account value.
func PublicKeyToAccountID(pk ecdsa.PublicKey) AccountID {
	return AccountID(signature.PublicKeyString(&pk))
}

// IsAccountID verifies whether the underlying data represents a valid
// hex-encoded uncompressed public key.
func (a AccountID) IsAccountID() bool {
	const publicKeyLength = 65

	if !has0xPrefix(a) {
		return false
	}
	a = a[2:]

	return len(a) == 2*publicKeyLength && a[:2] == "04" && isHex(a)
}

// IsSystem reports whether this is the account used for ledger issued
// transactions.
func (a AccountID) IsSystem() bool {
	return a == SystemAccount
}

// =============================================================================

// has0xPrefix validates the account starts with a 0x.
func has0xPrefix(a AccountID) bool {
	return len(a) >= 2 && a[0] == '0' && (a[1] == 'x' || a[1] == 'X')
}

// isHex validates whether each byte is valid hexadecimal string.
func isHex(a AccountID) bool {
	if len(a)%2 != 0 {
		return false
	}

	for _, c := range []byte(a) {
		if !isHexCharacter(c) {
			return false
		}
	}

	return true
}

// isHexCharacter returns bool of c being a valid hexadecimal.
func isHexCharacter(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}
