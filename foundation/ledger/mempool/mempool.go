// Package mempool maintains the pending transactions for the ledger.
package mempool

import (
	"sort"
	"sync"

	"github.com/forgechain/forge/foundation/ledger/chain"
)

// Mempool represents a cache of pending transactions keyed by their canonical
// hash. Two submissions of the identical transaction coalesce into a single
// entry.
type Mempool struct {
	pool map[string]chain.SignedTx
	mu   sync.RWMutex
}

// New constructs a new mempool.
func New() *Mempool {
	mp := Mempool{
		pool: make(map[string]chain.SignedTx),
	}

	return &mp
}

// Count returns the current number of transactions in the pool.
func (mp *Mempool) Count() int {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	return len(mp.pool)
}

// Upsert adds or replaces a transaction in the mempool and reports the new
// pool size.
func (mp *Mempool) Upsert(tx chain.SignedTx) int {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	mp.pool[tx.HashString()] = tx

	return len(mp.pool)
}

// Delete removes a transaction from the mempool. Deleting a transaction
// that is not in the pool is a no-op, which makes it safe to prune the pool
// with transactions confirmed by another node's block.
func (mp *Mempool) Delete(tx chain.SignedTx) {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	delete(mp.pool, tx.HashString())
}

// Truncate clears all the transactions from the pool.
func (mp *Mempool) Truncate() {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	mp.pool = make(map[string]chain.SignedTx)
}

// PickBest returns up to howMany transactions ordered oldest first. Passing
// -1 returns every pending transaction. Ties on the timestamp are broken by
// the canonical hash so every node orders the pool the same way.
func (mp *Mempool) PickBest(howMany int) []chain.SignedTx {
	var txs []chain.SignedTx

	mp.mu.RLock()
	{
		if howMany == -1 || howMany > len(mp.pool) {
			howMany = len(mp.pool)
		}

		txs = make([]chain.SignedTx, 0, len(mp.pool))
		for _, tx := range mp.pool {
			txs = append(txs, tx)
		}
	}
	mp.mu.RUnlock()

	sort.Slice(txs, func(i, j int) bool {
		if txs[i].TimeStamp != txs[j].TimeStamp {
			return txs[i].TimeStamp < txs[j].TimeStamp
		}
		return txs[i].HashString() < txs[j].HashString()
	})

	return txs[:howMany]
}
