// Package genesis maintains access to the genesis file.
package genesis

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// Genesis represents the genesis file.
type Genesis struct {
	Date         uint64            `json:"date"`          // Unix milliseconds the chain was born.
	ChainID      uint16            `json:"chain_id"`      // The chain id represents an unique id for this running instance.
	Difficulty   uint32            `json:"difficulty"`    // How difficult it needs to be to solve the work problem.
	MiningReward uint64            `json:"mining_reward"` // Reward for mining a block.
	BlockTimeMS  uint64            `json:"block_time_ms"` // Target milliseconds between blocks for difficulty retuning.
	Balances     map[string]uint64 `json:"balances"`      // Accounts seeded with funds at birth.
}

// Validate checks the genesis values can produce a working chain.
func (gen Genesis) Validate() error {
	if gen.Difficulty < 1 {
		return errors.New("difficulty must be at least 1")
	}

	if len(gen.Balances) == 0 {
		return errors.New("at least one account must be seeded with funds")
	}

	return nil
}

// =============================================================================

// Load opens and consumes the genesis file.
func Load(path string) (Genesis, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Genesis{}, err
	}

	var genesis Genesis
	if err := json.Unmarshal(content, &genesis); err != nil {
		return Genesis{}, err
	}

	if err := genesis.Validate(); err != nil {
		return Genesis{}, fmt.Errorf("invalid genesis file: %w", err)
	}

	return genesis, nil
}

// Save writes the genesis values to the specified file.
func Save(path string, genesis Genesis) error {
	if err := genesis.Validate(); err != nil {
		return fmt.Errorf("invalid genesis values: %w", err)
	}

	data, err := json.MarshalIndent(genesis, "", "    ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
