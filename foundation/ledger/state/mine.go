package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/forgechain/forge/foundation/ledger/chain"
)

// ErrNothingToMine is returned when a block is requested to be created
// and there are no transactions in the mempool.
var ErrNothingToMine = errors.New("no transactions in mempool")

// =============================================================================

// MinePendingTransactions drains the mempool into a new block with a proper
// hash that can become the next block in the chain. The transactions that
// arrive while the work is being performed stay in the mempool for the next
// block. The duration of the work is returned for difficulty retuning and
// reporting.
func (s *State) MinePendingTransactions(ctx context.Context, beneficiaryID chain.AccountID) (chain.Block, time.Duration, error) {
	s.evHandler("state: MinePendingTransactions: MINING: check mempool count")

	// Snapshot the pending transactions. Only this set is removed from the
	// mempool once the block is accepted.
	pending := s.mempool.PickBest(-1)
	if len(pending) == 0 {
		return chain.Block{}, 0, ErrNothingToMine
	}

	// The reward transaction mints new funds for the beneficiary and rides
	// in the block alongside the pending transactions.
	reward, err := chain.NewRewardTx(beneficiaryID, s.genesis.MiningReward)
	if err != nil {
		return chain.Block{}, 0, err
	}

	// The chain records confirmed copies, the mempool still holds the
	// pending originals until the block is accepted.
	trans := make([]chain.SignedTx, 0, len(pending)+1)
	for _, tx := range pending {
		confirmedTx, err := tx.Transition(chain.TxStatusConfirmed)
		if err != nil {
			return chain.Block{}, 0, err
		}
		trans = append(trans, confirmedTx)
	}

	confirmedReward, err := chain.SignedTx{Tx: reward}.Transition(chain.TxStatusConfirmed)
	if err != nil {
		return chain.Block{}, 0, err
	}
	trans = append(trans, confirmedReward)

	s.evHandler("state: MinePendingTransactions: MINING: perform POW: txs[%d]", len(trans))

	// Attempt to create a new block by solving the POW puzzle.
	// This can be cancelled.
	t := time.Now()
	block, err := chain.POW(ctx, s.RetrieveDifficulty(), s.RetrieveLatestBlock(), trans, s.evHandler)
	if err != nil {
		return chain.Block{}, 0, err
	}
	duration := time.Since(t)

	// Just check one more time we were not cancelled.
	if ctx.Err() != nil {
		return chain.Block{}, duration, ctx.Err()
	}

	s.evHandler("state: MinePendingTransactions: MINING: validate and update chain")

	// Validate the block and then update the ledger.
	if err := s.validateUpdateChain(block); err != nil {
		return chain.Block{}, duration, err
	}

	s.adjustDifficulty(duration)

	return block, duration, nil
}

// ProcessProposedBlock takes a block received from a peer, validates it
// and if that passes, adds the block to the local chain.
func (s *State) ProcessProposedBlock(block chain.Block) error {
	s.evHandler("state: ProcessProposedBlock: started: prevBlk[%s]: newBlk[%s]: numTrans[%d]", block.Header.PrevBlockHash, block.Hash, len(block.Trans.Values()))
	defer s.evHandler("state: ProcessProposedBlock: completed: newBlk[%s]", block.Hash)

	// If the runMiningOperation function is being executed it needs to stop
	// immediately. The G executing runMiningOperation will not return from the
	// function until done is called. That allows this function to complete
	// its state changes before a new mining operation takes place.
	done := s.Worker.SignalCancelMining()
	defer func() {
		s.evHandler("state: ProcessProposedBlock: signal runMiningOperation to terminate")
		done()
	}()

	return s.validateUpdateChain(block)
}

// =============================================================================

// validateUpdateChain takes the block and validates it against the
// consensus rules. If the block passes, then the chain is updated
// including writing the block to storage.
func (s *State) validateUpdateChain(block chain.Block) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.evHandler("state: validateUpdateChain: validate block")

	if err := block.ValidateBlock(s.blocks[len(s.blocks)-1], s.evHandler); err != nil {
		return err
	}

	s.evHandler("state: validateUpdateChain: write to storage")

	// Write the new block to the chain in storage.
	if err := s.storage.Write(chain.NewBlockData(block)); err != nil {
		return err
	}
	s.blocks = append(s.blocks, block)

	s.evHandler("state: validateUpdateChain: remove included transactions from mempool")

	// Remove the transactions recorded by this block from the mempool.
	// Transactions that arrived while the block was being mined stay put.
	for _, tx := range block.Trans.Values() {
		s.evHandler("state: validateUpdateChain: tx[%s] remove", tx)
		s.mempool.Delete(tx)
	}

	// Send an event about this new block.
	s.blockEvent(block)

	return nil
}

// blockEvent provides a specific event about a new block in the chain for
// application specific support.
func (s *State) blockEvent(block chain.Block) {
	blockHeaderJSON, err := json.Marshal(block.Header)
	if err != nil {
		blockHeaderJSON = []byte(fmt.Sprintf("%q", err.Error()))
	}

	blockTransJSON, err := json.Marshal(block.Trans.Values())
	if err != nil {
		blockTransJSON = []byte(fmt.Sprintf("%q", err.Error()))
	}

	s.evHandler(`viewer: block: {"hash":%q,"header":%s,"trans":%s}`, block.Hash, string(blockHeaderJSON), string(blockTransJSON))
}
