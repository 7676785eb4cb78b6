// Package commands implements the admin command line actions.
package commands

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/forgechain/forge/foundation/ledger/genesis"
)

// Genesis writes a new genesis file seeded with the specified accounts.
// Usage: admin genesis [path] [account:balance ...]
func Genesis(args []string) error {
	path := "zblock/genesis.json"
	if len(args) > 2 {
		path = args[2]
	}

	gen := genesis.Genesis{
		Date:         uint64(time.Now().UTC().UnixMilli()),
		ChainID:      1,
		Difficulty:   2,
		MiningReward: 700,
		BlockTimeMS:  10000,
		Balances:     map[string]uint64{},
	}

	if len(args) > 3 {
		for _, arg := range args[3:] {
			account, balance, ok := strings.Cut(arg, ":")
			if !ok {
				return fmt.Errorf("malformed balance %q, want account:balance", arg)
			}

			value, err := strconv.ParseUint(balance, 10, 64)
			if err != nil {
				return fmt.Errorf("malformed balance %q: %w", arg, err)
			}

			gen.Balances[account] = value
		}
	}

	if err := genesis.Save(path, gen); err != nil {
		return err
	}

	fmt.Println("genesis written to", path)

	return nil
}
