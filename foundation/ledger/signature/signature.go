// Package signature provides helper functions for handling the ledger
// signature needs.
package signature

import (
	"crypto/ecdsa"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// ZeroHash represents a hash code of zeros.
const ZeroHash string = "0x0000000000000000000000000000000000000000000000000000000000000000"

// SignatureLength is the expected length of a signature in bytes, 64 bytes
// of [R|S] plus one recovery id byte.
const SignatureLength = crypto.SignatureLength

// =============================================================================

// Hash returns a unique string for the value.
func Hash(value any) string {
	data, err := json.Marshal(value)
	if err != nil {
		return ZeroHash
	}

	hash := sha256.Sum256(data)
	return hexutil.Encode(hash[:])
}

// Sign uses the specified private key to sign the data.
func Sign(data []byte, privateKey *ecdsa.PrivateKey) ([]byte, error) {

	// Prepare the data for signing.
	stamped := stamp(data)

	// Sign the hash with the private key to produce a signature.
	sig, err := crypto.Sign(stamped, privateKey)
	if err != nil {
		return nil, err
	}

	// Extract the public key from the data and the signature.
	publicKey, err := crypto.SigToPub(stamped, sig)
	if err != nil {
		return nil, err
	}

	// Check the public key extracted from the data and signature.
	rs := sig[:crypto.RecoveryIDOffset]
	if !crypto.VerifySignature(crypto.FromECDSAPub(publicKey), stamped, rs) {
		return nil, errors.New("invalid signature produced")
	}

	return sig, nil
}

// VerifySignature verifies the signature conforms to our standards.
func VerifySignature(sig []byte) error {
	if len(sig) != SignatureLength {
		return fmt.Errorf("invalid signature length: %d", len(sig))
	}

	// Check the recovery id is either 0 or 1.
	v := sig[crypto.RecoveryIDOffset]
	if v != 0 && v != 1 {
		return errors.New("invalid recovery id")
	}

	// Check the signature values are valid.
	r, s := toSignatureValues(sig)
	if !crypto.ValidateSignatureValues(v, r, s, false) {
		return errors.New("invalid signature values")
	}

	return nil
}

// FromAddress extracts the address for the account that signed the data.
func FromAddress(data []byte, sig []byte) (string, error) {

	// NOTE: If the same exact data for the given signature is not provided
	// we will get the wrong from address for this transaction. There is no
	// way to check this on the node since we don't have a copy of the public
	// key used. The public key is being extracted from the data and signature.

	if err := VerifySignature(sig); err != nil {
		return "", err
	}

	// Prepare the data for public key extraction.
	stamped := stamp(data)

	// Capture the public key associated with this data and signature.
	publicKey, err := crypto.SigToPub(stamped, sig)
	if err != nil {
		return "", err
	}

	// Extract the account address from the public key.
	return crypto.PubkeyToAddress(*publicKey).String(), nil
}

// SignatureString returns the signature as a string.
func SignatureString(sig []byte) string {
	return hexutil.Encode(sig)
}

// =============================================================================

// stamp returns a hash of 32 bytes that represents the data with the Forge
// stamp embedded into the final hash.
func stamp(data []byte) []byte {

	// Hash the data into a 32 byte array. This will provide
	// a data length consistency with all data being signed.
	dataHash := crypto.Keccak256(data)

	// This stamp is used so signatures produced when signing data
	// are always unique to the Forge blockchain.
	stamp := []byte("\x19Forge Signed Message:\n32")

	// Hash the stamp and data hash together in a final 32 byte
	// array that represents the data.
	return crypto.Keccak256(stamp, dataHash)
}

// toSignatureValues splits the signature into its r, s values.
func toSignatureValues(sig []byte) (r, s *big.Int) {
	r = new(big.Int).SetBytes(sig[:32])
	s = new(big.Int).SetBytes(sig[32:64])

	return r, s
}
