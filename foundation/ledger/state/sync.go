package state

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/forgechain/forge/foundation/ledger/chain"
)

// Set of errors returned when a candidate chain is rejected. The local
// chain is always retained on rejection.
var (
	ErrCandidateTooShort = errors.New("candidate chain is not longer than the local chain")
	ErrGenesisMismatch   = errors.New("candidate chain was born from a different genesis")
)

// SynchronizeChain applies the longest valid chain rule. The candidate
// replaces the local chain wholesale when it is strictly longer, fully valid
// and shares our genesis block. There is no partial merge, transactions
// recorded only by the discarded chain are lost and must be resubmitted by
// their originators.
func (s *State) SynchronizeChain(candidate []chain.Block) error {
	s.evHandler("state: SynchronizeChain: started: candidate[%d]", len(candidate))
	defer s.evHandler("state: SynchronizeChain: completed")

	// If the runMiningOperation function is being executed it needs to stop
	// immediately. Its parent block is about to be replaced.
	done := s.Worker.SignalCancelMining()
	defer func() {
		s.evHandler("state: SynchronizeChain: signal runMiningOperation to terminate")
		done()
	}()

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(candidate) <= len(s.blocks) {
		return fmt.Errorf("%w: candidate[%d] local[%d]", ErrCandidateTooShort, len(candidate), len(s.blocks))
	}

	// The candidate genesis must carry our genesis hash and actually
	// represent the contents that hash commits to.
	if candidate[0].Hash != s.blocks[0].Hash || candidate[0].Header.Hash() != s.blocks[0].Hash {
		return ErrGenesisMismatch
	}
	if hex.EncodeToString(candidate[0].Trans.MerkleRoot) != candidate[0].Header.MerkleRoot {
		return ErrGenesisMismatch
	}

	if err := chain.Validate(candidate, s.evHandler); err != nil {
		return fmt.Errorf("candidate chain is not valid: %w", err)
	}

	s.evHandler("state: SynchronizeChain: accepting: candidate[%d] local[%d]", len(candidate), len(s.blocks))

	// Replace the chain wholesale and rewrite storage to match.
	if err := s.storage.Reset(); err != nil {
		return err
	}
	for _, block := range candidate {
		if err := s.storage.Write(chain.NewBlockData(block)); err != nil {
			return err
		}
	}

	blocks := make([]chain.Block, len(candidate))
	copy(blocks, candidate)
	s.blocks = blocks

	// Prune the mempool of transactions the accepted chain already recorded.
	for _, block := range blocks {
		for _, tx := range block.Trans.Values() {
			s.mempool.Delete(tx)
		}
	}

	return nil
}
