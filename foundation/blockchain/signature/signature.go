// Package signature provides helper functions for handling the blockchain
// hashing and signature needs.
package signature

import (
	"crypto/ecdsa"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// ZeroHash represents a hash code of zeros.
const ZeroHash string = "0x0000000000000000000000000000000000000000000000000000000000000000"

// =============================================================================

// KeyPair represents the behavior required to sign on behalf of an account.
// The public key doubles as the account address.
type KeyPair interface {
	PublicKey() string
	Sign(digest string) (string, error)
}

// Verifier represents the behavior required to check a signature was
// produced by the owner of a public key.
type Verifier interface {
	Verify(digest string, sig string, publicKey string) bool
}

// =============================================================================

// Hash returns a unique string for the value. The value is marshaled to
// JSON, so the field order of a struct defines its canonical form.
func Hash(value any) string {
	data, err := json.Marshal(value)
	if err != nil {
		return ZeroHash
	}

	return HashBytes(data)
}

// HashBytes returns the sha256 hash of the data as a 0x prefixed hex string.
func HashBytes(data []byte) string {
	hash := sha256.Sum256(data)
	return hexutil.Encode(hash[:])
}

// =============================================================================

// ECDSAKeyPair implements KeyPair using a secp256k1 private key.
type ECDSAKeyPair struct {
	privateKey *ecdsa.PrivateKey
}

// NewECDSAKeyPair constructs a key pair for the specified private key.
func NewECDSAKeyPair(privateKey *ecdsa.PrivateKey) ECDSAKeyPair {
	return ECDSAKeyPair{privateKey: privateKey}
}

// GenerateKeyPair constructs a key pair from a newly generated private key.
func GenerateKeyPair() (ECDSAKeyPair, error) {
	privateKey, err := crypto.GenerateKey()
	if err != nil {
		return ECDSAKeyPair{}, err
	}

	return NewECDSAKeyPair(privateKey), nil
}

// PublicKey returns the uncompressed public key as a hex string.
func (kp ECDSAKeyPair) PublicKey() string {
	return PublicKeyString(&kp.privateKey.PublicKey)
}

// Sign signs the digest and returns the 65 byte [R|S|V] signature as a
// hex string.
func (kp ECDSAKeyPair) Sign(digest string) (string, error) {
	data, err := decodeDigest(digest)
	if err != nil {
		return "", err
	}

	sig, err := crypto.Sign(data, kp.privateKey)
	if err != nil {
		return "", err
	}

	// Check the public key can be recovered from the data and signature.
	publicKey, err := crypto.SigToPub(data, sig)
	if err != nil {
		return "", err
	}

	rs := sig[:crypto.RecoveryIDOffset]
	if !crypto.VerifySignature(crypto.FromECDSAPub(publicKey), data, rs) {
		return "", errors.New("invalid signature")
	}

	return hexutil.Encode(sig), nil
}

// =============================================================================

// ECDSAVerifier implements Verifier for signatures produced by ECDSAKeyPair.
type ECDSAVerifier struct{}

// Verify reports whether sig is a valid signature of digest by the owner of
// the public key. Any malformed input yields false.
func (ECDSAVerifier) Verify(digest string, sig string, publicKey string) bool {
	return Verify(digest, sig, publicKey) == nil
}

// Verify checks the signature against the digest and public key and
// explains why it failed.
func Verify(digest string, sig string, publicKey string) error {
	data, err := decodeDigest(digest)
	if err != nil {
		return err
	}

	sigBytes, err := hexutil.Decode(sig)
	if err != nil {
		return fmt.Errorf("decoding signature: %w", err)
	}

	if len(sigBytes) != crypto.SignatureLength {
		return fmt.Errorf("invalid signature length, got %d, exp %d", len(sigBytes), crypto.SignatureLength)
	}

	pkBytes, err := hexutil.Decode(publicKey)
	if err != nil {
		return fmt.Errorf("decoding public key: %w", err)
	}

	// Make sure the public key is a point on the curve.
	if _, err := crypto.UnmarshalPubkey(pkBytes); err != nil {
		return fmt.Errorf("parsing public key: %w", err)
	}

	if !crypto.VerifySignature(pkBytes, data, sigBytes[:crypto.RecoveryIDOffset]) {
		return errors.New("signature does not match public key")
	}

	return nil
}

// PublicKeyString returns the uncompressed public key as a hex string.
func PublicKeyString(publicKey *ecdsa.PublicKey) string {
	return hexutil.Encode(crypto.FromECDSAPub(publicKey))
}

// =============================================================================

// decodeDigest converts a hex digest into the 32 bytes that get signed.
func decodeDigest(digest string) ([]byte, error) {
	data, err := hexutil.Decode(digest)
	if err != nil {
		return nil, fmt.Errorf("decoding digest: %w", err)
	}

	if len(data) != crypto.DigestLength {
		return nil, fmt.Errorf("invalid digest length, got %d, exp %d", len(data), crypto.DigestLength)
	}

	return data, nil
}
