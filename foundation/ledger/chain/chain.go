// Package chain implements the data model for the ledger: transactions,
// blocks, proof of work, chain validation and balance derivation.
package chain

import (
	"encoding/hex"
	"fmt"
	"sort"

	"github.com/forgechain/forge/foundation/ledger/genesis"
	"github.com/forgechain/forge/foundation/ledger/merkle"
)

// GenesisBlock constructs the first block of the chain from the genesis
// values. Every node derives the identical block, the seed transactions are
// ordered by account and the header carries the genesis date, a parent hash
// of "0" and a zero nonce.
func GenesisBlock(gen genesis.Genesis) (Block, error) {
	accounts := make([]string, 0, len(gen.Balances))
	for account := range gen.Balances {
		accounts = append(accounts, account)
	}
	sort.Strings(accounts)

	trans := make([]SignedTx, 0, len(accounts))
	for _, account := range accounts {
		accountID, err := ToAccountID(account)
		if err != nil {
			return Block{}, fmt.Errorf("genesis balance account %q: %w", account, err)
		}

		trans = append(trans, SignedTx{
			Tx: Tx{
				RecipientID: accountID,
				Amount:      gen.Balances[account],
				Kind:        TxKindGenesis,
				TimeStamp:   gen.Date,
				Status:      TxStatusConfirmed,
			},
		})
	}

	tree, err := merkle.NewTree(trans)
	if err != nil {
		return Block{}, err
	}

	header := BlockHeader{
		Number:        0,
		PrevBlockHash: "0",
		TimeStamp:     gen.Date,
		MerkleRoot:    hex.EncodeToString(tree.MerkleRoot),
		Nonce:         0,
	}

	block := Block{
		Hash:   header.Hash(),
		Header: header,
		Trans:  tree,
	}

	return block, nil
}

// Validate walks the chain from the block after genesis and checks every
// block links to its parent, matches its recorded hash and carries only
// valid transactions. The genesis block itself is trusted by construction.
func Validate(blocks []Block, evHandler func(v string, args ...any)) error {
	for i := 1; i < len(blocks); i++ {
		if err := blocks[i].ValidateBlock(blocks[i-1], evHandler); err != nil {
			return err
		}
	}

	return nil
}

// Balances derives the balance of every account by replaying all the
// transactions recorded in the chain.
func Balances(blocks []Block) map[AccountID]int64 {
	balances := make(map[AccountID]int64)

	for _, block := range blocks {
		for _, tx := range block.Trans.Values() {
			if tx.SenderID != "" {
				balances[tx.SenderID] -= int64(tx.Amount)
			}
			balances[tx.RecipientID] += int64(tx.Amount)
		}
	}

	return balances
}

// BalanceOf derives the balance for the specified account by replaying all
// the transactions recorded in the chain. An account unknown to the chain
// has a balance of zero.
func BalanceOf(blocks []Block, accountID AccountID) int64 {
	var balance int64

	for _, block := range blocks {
		for _, tx := range block.Trans.Values() {
			if tx.SenderID == accountID {
				balance -= int64(tx.Amount)
			}
			if tx.RecipientID == accountID {
				balance += int64(tx.Amount)
			}
		}
	}

	return balance
}
