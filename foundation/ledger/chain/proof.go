package chain

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/forgechain/forge/foundation/ledger/merkle"
)

// ErrTxNotFound is returned when a transaction is not recorded in the block
// being asked for a proof.
var ErrTxNotFound = errors.New("transaction not found in block")

// TxProof carries the merkle path that proves a transaction is recorded in a
// block. A client holding only the block header can fold the proof hashes
// into the transaction hash and compare the result against the merkle root.
type TxProof struct {
	BlockNumber uint64   `json:"blockNumber"`
	BlockHash   string   `json:"blockHash"`
	MerkleRoot  string   `json:"merkleRoot"`
	TxHash      string   `json:"txHash"`
	Proof       []string `json:"proof"`
	ProofOrder  []int64  `json:"proofOrder"`
}

// NewTxProof constructs the inclusion proof for the transaction with the
// specified canonical hash recorded in the specified block.
func NewTxProof(block Block, txHash string) (TxProof, error) {
	for _, tx := range block.Trans.Values() {
		if tx.HashString() != txHash {
			continue
		}

		proof, order, err := block.Trans.Proof(tx)
		if err != nil {
			return TxProof{}, err
		}

		path := make([]string, len(proof))
		for i, hash := range proof {
			path[i] = hex.EncodeToString(hash)
		}

		txProof := TxProof{
			BlockNumber: block.Header.Number,
			BlockHash:   block.Hash,
			MerkleRoot:  block.Header.MerkleRoot,
			TxHash:      txHash,
			Proof:       path,
			ProofOrder:  order,
		}

		return txProof, nil
	}

	return TxProof{}, fmt.Errorf("%w: tx[%s] block[%d]", ErrTxNotFound, txHash, block.Header.Number)
}

// VerifyTxInclusion checks the proof reproduces the merkle root it claims.
// This is the client side of the proof service, it needs no access to the
// block or the other transactions.
func VerifyTxInclusion(txProof TxProof) error {
	txHash, err := hex.DecodeString(txProof.TxHash)
	if err != nil {
		return fmt.Errorf("decoding tx hash: %w", err)
	}

	merkleRoot, err := hex.DecodeString(txProof.MerkleRoot)
	if err != nil {
		return fmt.Errorf("decoding merkle root: %w", err)
	}

	proof := make([][]byte, len(txProof.Proof))
	for i, hash := range txProof.Proof {
		proof[i], err = hex.DecodeString(hash)
		if err != nil {
			return fmt.Errorf("decoding proof hash %d: %w", i, err)
		}
	}

	return merkle.VerifyProof(txHash, merkleRoot, proof, txProof.ProofOrder)
}
