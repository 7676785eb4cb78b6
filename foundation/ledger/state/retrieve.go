package state

import (
	"github.com/forgechain/forge/foundation/ledger/chain"
	"github.com/forgechain/forge/foundation/ledger/genesis"
	"github.com/forgechain/forge/foundation/ledger/peer"
)

// RetrieveHost returns a copy of host information.
func (s *State) RetrieveHost() string {
	return s.host
}

// RetrieveBeneficiaryID returns the account that receives this node's
// mining rewards.
func (s *State) RetrieveBeneficiaryID() chain.AccountID {
	return s.beneficiaryID
}

// RetrieveGenesis returns a copy of the genesis information.
func (s *State) RetrieveGenesis() genesis.Genesis {
	return s.genesis
}

// RetrieveDifficulty returns the current local difficulty.
func (s *State) RetrieveDifficulty() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.difficulty
}

// RetrieveLatestBlock returns a copy of the current latest block.
func (s *State) RetrieveLatestBlock() chain.Block {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.blocks[len(s.blocks)-1]
}

// RetrieveChain returns a copy of the full chain from genesis.
func (s *State) RetrieveChain() []chain.Block {
	s.mu.Lock()
	defer s.mu.Unlock()

	blocks := make([]chain.Block, len(s.blocks))
	copy(blocks, s.blocks)

	return blocks
}

// RetrieveMempool returns a copy of the mempool, oldest first.
func (s *State) RetrieveMempool() []chain.SignedTx {
	return s.mempool.PickBest(-1)
}

// RetrieveKnownPeers retrieves a copy of the known peer list.
func (s *State) RetrieveKnownPeers() []peer.Peer {
	return s.knownPeers.Copy(s.host)
}
