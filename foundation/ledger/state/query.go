package state

import (
	"fmt"

	"github.com/forgechain/forge/foundation/ledger/chain"
)

// QueryLatest represents to query the latest block in the chain.
const QueryLatest = ^uint64(0) >> 1

// =============================================================================

// QueryBalance derives the confirmed balance for the specified account by
// replaying every transaction recorded in the chain. Authoritative but not
// cheap, no incremental index is maintained.
func (s *State) QueryBalance(accountID chain.AccountID) int64 {
	return chain.BalanceOf(s.RetrieveChain(), accountID)
}

// QueryAvailableBalance derives the funds the account can still spend, the
// confirmed balance reduced by the pending outgoing transactions sitting in
// the mempool. The confirmed balance itself is not affected by pending
// transactions.
func (s *State) QueryAvailableBalance(accountID chain.AccountID) int64 {
	balance := chain.BalanceOf(s.RetrieveChain(), accountID)

	for _, tx := range s.mempool.PickBest(-1) {
		if tx.SenderID == accountID {
			balance -= int64(tx.Amount)
		}
	}

	return balance
}

// QueryBalances derives the confirmed balance of every account known to
// the chain.
func (s *State) QueryBalances() map[chain.AccountID]int64 {
	return chain.Balances(s.RetrieveChain())
}

// QueryMempoolLength returns the current length of the mempool.
func (s *State) QueryMempoolLength() int {
	return s.mempool.Count()
}

// QueryBlocksByNumber returns the set of blocks based on block numbers. This
// function reads the blockchain from storage first.
func (s *State) QueryBlocksByNumber(from uint64, to uint64) []chain.Block {
	latestNumber := s.RetrieveLatestBlock().Header.Number

	if from == QueryLatest {
		from = latestNumber
		to = latestNumber
	}
	if to == QueryLatest {
		to = latestNumber
	}

	var out []chain.Block
	for i := from; i <= to; i++ {
		blockData, err := s.storage.GetBlock(i)
		if err != nil {
			s.evHandler("state: QueryBlocksByNumber: ERROR: %s", err)
			return nil
		}

		block, err := chain.ToBlock(blockData)
		if err != nil {
			s.evHandler("state: QueryBlocksByNumber: ERROR: %s", err)
			return nil
		}

		out = append(out, block)
	}

	return out
}

// QueryBlocksByAccount returns the set of blocks that record a transaction
// involving the account. If the account is empty, all blocks are returned.
// This function reads the blockchain from storage first.
func (s *State) QueryBlocksByAccount(accountID chain.AccountID) ([]chain.Block, error) {
	var out []chain.Block

	iter := s.storage.ForEach()
	for blockData, err := iter.Next(); !iter.Done(); blockData, err = iter.Next() {
		if err != nil {
			return nil, err
		}

		block, err := chain.ToBlock(blockData)
		if err != nil {
			return nil, err
		}

		for _, tx := range block.Trans.Values() {
			if accountID == "" || tx.SenderID == accountID || tx.RecipientID == accountID {
				out = append(out, block)
				break
			}
		}
	}

	return out, nil
}

// QueryMerkleProof produces the inclusion proof for the transaction with the
// specified canonical hash recorded in the specified block.
func (s *State) QueryMerkleProof(txHash string, blockNumber uint64) (chain.TxProof, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if blockNumber >= uint64(len(s.blocks)) {
		return chain.TxProof{}, fmt.Errorf("block %d not found, latest is %d", blockNumber, len(s.blocks)-1)
	}

	return chain.NewTxProof(s.blocks[blockNumber], txHash)
}
