package commands

import (
	"errors"
	"fmt"

	"github.com/forgechain/forge/foundation/ledger/chain"
	"github.com/forgechain/forge/foundation/ledger/genesis"
	"github.com/forgechain/forge/foundation/ledger/storage/disk"
)

// Verify walks the chain on disk and validates every block link and hash
// against the specified genesis.
// Usage: admin verify [genesis-path] [data-path]
func Verify(args []string) error {
	genesisPath := "zblock/genesis.json"
	if len(args) > 2 {
		genesisPath = args[2]
	}

	dataPath := "zblock/miner1/"
	if len(args) > 3 {
		dataPath = args[3]
	}

	gen, err := genesis.Load(genesisPath)
	if err != nil {
		return err
	}

	strg, err := disk.New(dataPath)
	if err != nil {
		return err
	}
	defer strg.Close()

	blocks, err := loadBlocks(strg)
	if err != nil {
		return err
	}

	if len(blocks) == 0 {
		return errors.New("no blocks on disk")
	}

	genesisBlock, err := chain.GenesisBlock(gen)
	if err != nil {
		return err
	}

	if blocks[0].Hash != genesisBlock.Hash {
		return errors.New("chain on disk was born from a different genesis")
	}

	nop := func(v string, args ...any) {}
	if err := chain.Validate(blocks, nop); err != nil {
		return err
	}

	fmt.Printf("chain is valid: %d blocks, latest %s\n", len(blocks), blocks[len(blocks)-1].Hash)

	return nil
}

// loadBlocks reads every block the storage holds in chain order.
func loadBlocks(strg chain.Storage) ([]chain.Block, error) {
	var blocks []chain.Block

	iter := strg.ForEach()
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
