// Package memory implements the ability to read and write blocks to memory
// using a slice.
package memory

import (
	"errors"
	"sync"

	"github.com/forgechain/forge/foundation/ledger/chain"
)

// Memory represents the serialization implementation for reading and storing
// blocks in memory using a slice. This implements the chain.Storage
// interface.
type Memory struct {
	mu     sync.RWMutex
	blocks []chain.BlockData
}

// New constructs a Memory value for use.
func New() (*Memory, error) {
	return &Memory{}, nil
}

// Close in this implementation has nothing to do since everything
// is in memory.
func (m *Memory) Close() error {
	return nil
}

// Write takes the specified block and stores it in memory. Blocks must be
// written in chain order.
func (m *Memory) Write(blockData chain.BlockData) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.blocks) != int(blockData.Index) {
		return errors.New("block is out of order")
	}

	m.blocks = append(m.blocks, blockData)

	return nil
}

// GetBlock searches the chain to locate and return the contents of the
// specified block by number.
func (m *Memory) GetBlock(num uint64) (chain.BlockData, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	l := uint64(len(m.blocks))
	if l == 0 || num >= l {
		return chain.BlockData{}, errors.New("block does not exist")
	}

	return m.blocks[num], nil
}

// ForEach returns an iterator to walk through all the blocks starting with
// the genesis block.
func (m *Memory) ForEach() chain.Iterator {
	return &memoryIterator{storage: m}
}

// Reset will clear out the chain in memory.
func (m *Memory) Reset() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.blocks = []chain.BlockData{}

	return nil
}

// =============================================================================

// memoryIterator represents the iteration implementation for walking through
// and reading blocks in memory. This implements the chain.Iterator interface.
type memoryIterator struct {
	storage *Memory // Access to the memory storage API.
	current uint64  // Current block number being iterated over.
	eoc     bool    // Represents the iterator is at the end of the chain.
}

// Next retrieves the next block from memory.
func (mi *memoryIterator) Next() (chain.BlockData, error) {
	if mi.eoc {
		return chain.BlockData{}, errors.New("end of chain")
	}

	blockData, err := mi.storage.GetBlock(mi.current)
	if err != nil {
		mi.eoc = true
	}

	mi.current++

	return blockData, err
}

// Done returns the end of chain value.
func (mi *memoryIterator) Done() bool {
	return mi.eoc
}
