// Package state is the core API for the ledger and implements all the
// business rules and processing.
package state

import (
	"errors"
	"fmt"
	"sync"

	"github.com/forgechain/forge/foundation/ledger/chain"
	"github.com/forgechain/forge/foundation/ledger/genesis"
	"github.com/forgechain/forge/foundation/ledger/mempool"
	"github.com/forgechain/forge/foundation/ledger/peer"
)

// EventHandler defines a function that is called when events
// occur in the processing of persisting blocks.
type EventHandler func(v string, args ...any)

// Worker interface represents the behavior required to be implemented by any
// package providing support for mining, peer updates, and transaction sharing.
type Worker interface {
	Shutdown()
	SignalStartMining()
	SignalCancelMining() (done func())
	SignalShareTx(tx chain.SignedTx)
	SignalPeerSync()
}

// =============================================================================

// Config represents the configuration required to start
// the ledger node.
type Config struct {
	BeneficiaryID chain.AccountID
	Host          string
	Genesis       genesis.Genesis
	Storage       chain.Storage
	KnownPeers    *peer.PeerSet
	EvHandler     EventHandler
}

// State manages the ledger.
type State struct {
	mu         sync.Mutex
	blocks     []chain.Block
	difficulty uint32

	beneficiaryID chain.AccountID
	host          string
	evHandler     EventHandler

	genesis    genesis.Genesis
	mempool    *mempool.Mempool
	storage    chain.Storage
	knownPeers *peer.PeerSet

	Worker Worker
}

// New constructs a new ledger for data management.
func New(cfg Config) (*State, error) {

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	if err := cfg.Genesis.Validate(); err != nil {
		return nil, fmt.Errorf("genesis: %w", err)
	}

	// Every node derives the identical genesis block from the genesis file.
	genesisBlock, err := chain.GenesisBlock(cfg.Genesis)
	if err != nil {
		return nil, err
	}

	// Load all existing blocks from storage into memory for processing. This
	// won't work in a system like Ethereum.
	blocks, err := loadChain(cfg.Storage)
	if err != nil {
		return nil, err
	}

	switch {
	case len(blocks) == 0:
		ev("state: New: no local chain: seeding the genesis block")
		if err := cfg.Storage.Write(chain.NewBlockData(genesisBlock)); err != nil {
			return nil, err
		}
		blocks = []chain.Block{genesisBlock}

	default:
		ev("state: New: loaded local chain: blocks[%d]", len(blocks))
		if blocks[0].Hash != genesisBlock.Hash {
			return nil, errors.New("local chain was born from a different genesis")
		}
		if err := chain.Validate(blocks, ev); err != nil {
			return nil, fmt.Errorf("local chain is not valid: %w", err)
		}
	}

	// Create the State to provide support for managing the ledger.
	state := State{
		blocks:     blocks,
		difficulty: cfg.Genesis.Difficulty,

		beneficiaryID: cfg.BeneficiaryID,
		host:          cfg.Host,
		evHandler:     ev,

		genesis:    cfg.Genesis,
		mempool:    mempool.New(),
		storage:    cfg.Storage,
		knownPeers: cfg.KnownPeers,
	}

	// The Worker is not set here. The call to worker.Run will assign itself
	// and start everything up and running for the node.

	return &state, nil
}

// Shutdown cleanly brings the node down.
func (s *State) Shutdown() error {
	s.evHandler("state: shutdown: started")
	defer s.evHandler("state: shutdown: completed")

	// Make sure the storage is properly closed.
	defer func() {
		s.storage.Close()
	}()

	// Stop all ledger writing activity.
	s.Worker.Shutdown()

	return nil
}

// =============================================================================

// AddKnownPeer provides the ability to add a new peer to the known peer list.
func (s *State) AddKnownPeer(peer peer.Peer) bool {
	return s.knownPeers.Add(peer)
}

// RemoveKnownPeer provides the ability to remove a peer from
// the known peer list.
func (s *State) RemoveKnownPeer(peer peer.Peer) {
	s.knownPeers.Remove(peer)
}

// =============================================================================

// loadChain reads every block persisted in storage back into memory.
func loadChain(storage chain.Storage) ([]chain.Block, error) {
	var blocks []chain.Block

	iter := storage.ForEach()
	for blockData, err := iter.Next(); !iter.Done(); blockData, err = iter.Next() {
		if err != nil {
			return nil, err
		}

		block, err := chain.ToBlock(blockData)
		if err != nil {
			return nil, err
		}

		blocks = append(blocks, block)
	}

	return blocks, nil
}
