// Package eth verifies wallet signatures over login nonces and derives the
// signing address from the supplied public key.
package eth

import (
	"bytes"
	"crypto/ecdsa"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// Verification is the outcome of a signature check. Address is the account
// derived from the supplied public key; it is populated even when the
// signature itself does not verify.
type Verification struct {
	Valid   bool
	Address string
}

// VerifySignature checks a personal-sign signature over message against the
// supplied uncompressed public key. Malformed inputs return an error;
// a well-formed signature that was not produced by the key returns
// Valid=false.
func VerifySignature(message, signatureHex, publicKeyHex string) (Verification, error) {
	sig, err := hexutil.Decode(signatureHex)
	if err != nil {
		return Verification{}, fmt.Errorf("malformed signature: %w", err)
	}
	if len(sig) != crypto.SignatureLength {
		return Verification{}, fmt.Errorf("signature must be %d bytes, got %d", crypto.SignatureLength, len(sig))
	}

	keyBytes, err := hexutil.Decode(publicKeyHex)
	if err != nil {
		return Verification{}, fmt.Errorf("malformed public key: %w", err)
	}
	pub, err := crypto.UnmarshalPubkey(keyBytes)
	if err != nil {
		return Verification{}, fmt.Errorf("malformed public key: %w", err)
	}

	result := Verification{Address: crypto.PubkeyToAddress(*pub).Hex()}

	// Wallets emit V as 27/28; SigToPub wants 0/1.
	recoverable := make([]byte, crypto.SignatureLength)
	copy(recoverable, sig)
	if recoverable[crypto.RecoveryIDOffset] >= 27 {
		recoverable[crypto.RecoveryIDOffset] -= 27
	}

	hash := accounts.TextHash([]byte(message))
	recovered, err := crypto.SigToPub(hash, recoverable)
	if err != nil {
		// Recovery failure means the signature does not verify under any
		// key; it is not a malformed-input condition.
		return result, nil
	}

	result.Valid = bytes.Equal(crypto.FromECDSAPub(recovered), keyBytes)
	return result, nil
}

// Sign produces a personal-sign signature over message and returns it with
// the uncompressed public key, both hex encoded the way wallets send them.
func Sign(message string, key *ecdsa.PrivateKey) (signatureHex, publicKeyHex string, err error) {
	hash := accounts.TextHash([]byte(message))
	sig, err := crypto.Sign(hash, key)
	if err != nil {
		return "", "", fmt.Errorf("sign message: %w", err)
	}
	sig[crypto.RecoveryIDOffset] += 27
	return hexutil.Encode(sig), hexutil.Encode(crypto.FromECDSAPub(&key.PublicKey)), nil
}
