package chain

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"math/big"
	"time"

	"github.com/forgechain/forge/foundation/ledger/merkle"
)

// Set of errors for block and chain validation.
var (
	ErrBrokenLink    = errors.New("block is not linked to the previous block")
	ErrTamperedBlock = errors.New("block contents do not match the recorded hash")
	ErrChainForked   = errors.New("chain is behind the peer, resync required")
)

// =============================================================================

// BlockHeader represents common information required for each block. The
// block hash is computed over these fields, the transactions are committed
// through the merkle root.
type BlockHeader struct {
	Number        uint64 `json:"index"`        // Position of the block in the chain, genesis is 0.
	PrevBlockHash string `json:"previousHash"` // Hash of the previous block in the chain, "0" for genesis.
	TimeStamp     uint64 `json:"timestamp"`    // Unix milliseconds the block was created.
	MerkleRoot    string `json:"merkleRoot"`   // Merkle tree root hash for the transactions in this block.
	Nonce         uint64 `json:"nonce"`        // Value discovered to solve the work problem.
}

// Hash computes the unique hash for a block with this header. The hash is
// computed over the header fields in a fixed order so every node derives the
// same value.
func (h BlockHeader) Hash() string {
	data := fmt.Sprintf("%d%s%d%s%d", h.Number, h.PrevBlockHash, h.TimeStamp, h.MerkleRoot, h.Nonce)
	hash := sha256.Sum256([]byte(data))

	return hex.EncodeToString(hash[:])
}

// =============================================================================

// Block represents a group of transactions batched together with the hash
// that was recorded when the block was mined or received.
type Block struct {
	Hash   string
	Header BlockHeader
	Trans  *merkle.Tree[SignedTx]
}

// POW constructs a new Block and performs the work to find a nonce that
// solves the cryptographic POW puzzle.
func POW(ctx context.Context, difficulty uint32, prevBlock Block, trans []SignedTx, evHandler func(v string, args ...any)) (Block, error) {

	// Construct a merkle tree from the transactions for this block. The root
	// of this tree will be part of the block to be mined.
	tree, err := merkle.NewTree(trans)
	if err != nil {
		return Block{}, err
	}

	// Construct the block to be mined.
	nb := Block{
		Header: BlockHeader{
			Number:        prevBlock.Header.Number + 1,
			PrevBlockHash: prevBlock.Hash,
			TimeStamp:     uint64(time.Now().UTC().UnixMilli()),
			MerkleRoot:    hex.EncodeToString(tree.MerkleRoot),
			Nonce:         0, // Will be identified by the POW algorithm.
		},
		Trans: tree,
	}

	// Perform the proof of work mining operation.
	if err := nb.performPOW(ctx, difficulty, evHandler); err != nil {
		return Block{}, err
	}

	return nb, nil
}

// performPOW does the work of mining to find a valid hash for a specified
// block. Pointer semantics are being used since a nonce is being discovered.
func (b *Block) performPOW(ctx context.Context, difficulty uint32, ev func(v string, args ...any)) error {
	ev("chain: performPOW: MINING: started")
	defer ev("chain: performPOW: MINING: completed")

	// Log the transactions that are a part of this potential block.
	for _, tx := range b.Trans.Values() {
		ev("chain: performPOW: MINING: tx[%s]", tx)
	}

	// Choose a random starting point for the nonce. After this, the nonce
	// will be incremented by 1 until a solution is found by us or another node.
	nBig, err := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
	if err != nil {
		return err
	}
	b.Header.Nonce = nBig.Uint64()

	// Loop until we or another node finds a solution for the next block.
	var attempts uint64
	for {
		attempts++
		if attempts%1_000_000 == 0 {
			ev("chain: performPOW: MINING: attempts[%d]", attempts)
		}

		// Did we timeout trying to solve the problem.
		if ctx.Err() != nil {
			ev("chain: performPOW: MINING: CANCELLED")
			return ctx.Err()
		}

		// Hash the block and check if we have solved the puzzle.
		hash := b.Header.Hash()
		if !isHashSolved(difficulty, hash) {
			b.Header.Nonce++
			continue
		}

		ev("chain: performPOW: MINING: SOLVED: prevBlk[%s]: newBlk[%s]", b.Header.PrevBlockHash, hash)
		ev("chain: performPOW: MINING: attempts[%d]", attempts)

		b.Hash = hash

		return nil
	}
}

// ValidateBlock takes a block and validates it to be included into the chain
// after the specified previous block.
func (b Block) ValidateBlock(previousBlock Block, evHandler func(v string, args ...any)) error {
	evHandler("chain: validateBlock: blk[%d]: check: block number is the next number", b.Header.Number)

	// The node who sent this block has a chain that is ahead of ours. This
	// means we are behind and need to resync before accepting new blocks.
	nextNumber := previousBlock.Header.Number + 1
	if b.Header.Number > nextNumber {
		return ErrChainForked
	}

	if b.Header.Number != nextNumber {
		return fmt.Errorf("%w: this block is not the next number, got %d, exp %d", ErrBrokenLink, b.Header.Number, nextNumber)
	}

	evHandler("chain: validateBlock: blk[%d]: check: parent hash does match parent block", b.Header.Number)

	if b.Header.PrevBlockHash != previousBlock.Hash {
		return fmt.Errorf("%w: parent block hash doesn't match our known parent, got %s, exp %s", ErrBrokenLink, b.Header.PrevBlockHash, previousBlock.Hash)
	}

	evHandler("chain: validateBlock: blk[%d]: check: recorded hash does match the block contents", b.Header.Number)

	if hash := b.Header.Hash(); b.Hash != hash {
		return fmt.Errorf("%w: got %s, exp %s", ErrTamperedBlock, b.Hash, hash)
	}

	evHandler("chain: validateBlock: blk[%d]: check: merkle root and transactions are valid", b.Header.Number)

	return b.ValidateTransactions()
}

// ValidateTransactions checks the integrity of the transactions recorded in
// the block. The merkle root recomputed from the transactions must match the
// root recorded in the header and every transaction must validate on its own.
func (b Block) ValidateTransactions() error {
	if root := hex.EncodeToString(b.Trans.MerkleRoot); b.Header.MerkleRoot != root {
		return fmt.Errorf("%w: merkle root does not match transactions, got %s, exp %s", ErrTamperedBlock, root, b.Header.MerkleRoot)
	}

	for i, tx := range b.Trans.Values() {
		if err := tx.Validate(); err != nil {
			return fmt.Errorf("invalid transaction %d (%s) in block %d: %w", i, tx.HashString(), b.Header.Number, err)
		}
	}

	return nil
}

// isHashSolved checks the hash to make sure it complies with
// the POW rules. We need to match a difficulty number of 0's.
func isHashSolved(difficulty uint32, hash string) bool {
	const match = "00000000000000000"

	if len(hash) != 64 || int(difficulty) > len(match) {
		return false
	}

	return hash[:difficulty] == match[:difficulty]
}

// =============================================================================

// BlockData represents what is serialized to disk and shared over the network.
type BlockData struct {
	Index        uint64     `json:"index"`
	PreviousHash string     `json:"previousHash"`
	Timestamp    uint64     `json:"timestamp"`
	MerkleRoot   string     `json:"merkleRoot"`
	Nonce        uint64     `json:"nonce"`
	Hash         string     `json:"hash"`
	Trans        []SignedTx `json:"transactions"`
}

// NewBlockData constructs the value to serialize to disk or the network.
func NewBlockData(block Block) BlockData {
	blockData := BlockData{
		Index:        block.Header.Number,
		PreviousHash: block.Header.PrevBlockHash,
		Timestamp:    block.Header.TimeStamp,
		MerkleRoot:   block.Header.MerkleRoot,
		Nonce:        block.Header.Nonce,
		Hash:         block.Hash,
		Trans:        block.Trans.Values(),
	}

	return blockData
}

// ToBlock converts a BlockData into a Block.
func ToBlock(blockData BlockData) (Block, error) {
	tree, err := merkle.NewTree(blockData.Trans)
	if err != nil {
		return Block{}, err
	}

	nb := Block{
		Hash: blockData.Hash,
		Header: BlockHeader{
			Number:        blockData.Index,
			PrevBlockHash: blockData.PreviousHash,
			TimeStamp:     blockData.Timestamp,
			MerkleRoot:    blockData.MerkleRoot,
			Nonce:         blockData.Nonce,
		},
		Trans: tree,
	}

	return nb, nil
}
