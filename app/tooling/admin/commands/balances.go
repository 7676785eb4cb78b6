package commands

import (
	"errors"
	"fmt"

	"github.com/forgechain/forge/foundation/ledger/chain"
	"github.com/forgechain/forge/foundation/ledger/storage/disk"
)

// Balances replays the chain on disk and prints the balance of every
// account, or just the specified account.
// Usage: admin bals [data-path] [account]
func Balances(args []string) error {
	dataPath := "zblock/miner1/"
	if len(args) > 2 {
		dataPath = args[2]
	}

	var onlyAct string
	if len(args) > 3 {
		onlyAct = args[3]
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

	fmt.Printf("LatestBlockHash: %s\n\n", blocks[len(blocks)-1].Hash)

	for act, bal := range chain.Balances(blocks) {
		if onlyAct != "" && onlyAct != string(act) {
			continue
		}
		fmt.Printf("Account: %s  Balance: %d\n", act, bal)
	}

	return nil
}
