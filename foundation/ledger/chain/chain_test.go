package chain_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/forgechain/forge/foundation/ledger/chain"
	"github.com/forgechain/forge/foundation/ledger/genesis"
)

// noEv discards event messages produced while mining and validating.
func noEv(v string, args ...any) {}

// testGenesis provides the genesis values used across the chain tests.
func testGenesis() genesis.Genesis {
	return genesis.Genesis{
		Date:         1700000000000,
		ChainID:      1,
		Difficulty:   1,
		MiningReward: 700,
		BlockTimeMS:  10000,
		Balances: map[string]uint64{
			"0xdd6B972ffcc631a62CAE1BB9d80b7ff429c8ebA4": 1000,
			"0xF01813E4B85e178A83e29B8E7bF26BD830a25f32": 500,
		},
	}
}

// sign creates a signed standard transaction from the test key.
func sign(recipientID chain.AccountID, amount uint64, timeStamp uint64) (chain.SignedTx, error) {
	pk, err := crypto.HexToECDSA(pkHexKey)
	if err != nil {
		return chain.SignedTx{}, err
	}

	tx := chain.Tx{
		SenderID:    chain.PublicKeyToAccountID(pk.PublicKey),
		RecipientID: recipientID,
		Amount:      amount,
		Kind:        chain.TxKindStandard,
		TimeStamp:   timeStamp,
		Status:      chain.TxStatusPending,
	}

	return tx.Sign(pk)
}

// mineBlock signs the specified transfers and mines them on top of the
// previous block with a reward for the miner.
func mineBlock(prev chain.Block, miner chain.AccountID, amounts []uint64) (chain.Block, error) {
	var trans []chain.SignedTx

	for i, amount := range amounts {
		signedTx, err := sign(recipient, amount, 1700000001000+uint64(i))
		if err != nil {
			return chain.Block{}, err
		}

		confirmedTx, err := signedTx.Transition(chain.TxStatusConfirmed)
		if err != nil {
			return chain.Block{}, err
		}
		trans = append(trans, confirmedTx)
	}

	reward, err := chain.NewRewardTx(miner, 700)
	if err != nil {
		return chain.Block{}, err
	}

	confirmedReward, err := chain.SignedTx{Tx: reward}.Transition(chain.TxStatusConfirmed)
	if err != nil {
		return chain.Block{}, err
	}
	trans = append(trans, confirmedReward)

	return chain.POW(context.Background(), 1, prev, trans, noEv)
}

// =============================================================================

func Test_GenesisBlock(t *testing.T) {
	t.Log("Given the need to derive a deterministic genesis block.")
	{
		t.Logf("\tTest 0:\tWhen deriving the genesis block twice.")
		{
			gen := testGenesis()

			b1, err := chain.GenesisBlock(gen)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to derive the genesis block: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to derive the genesis block.", success)

			b2, err := chain.GenesisBlock(gen)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to derive the genesis block again: %v", failed, err)
			}

			if b1.Hash != b2.Hash {
				t.Logf("\t\tTest 0:\tgot: %s", b2.Hash)
				t.Logf("\t\tTest 0:\texp: %s", b1.Hash)
				t.Fatalf("\t%s\tTest 0:\tShould derive the identical block every time.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould derive the identical block every time.", success)

			if b1.Header.Number != 0 || b1.Header.PrevBlockHash != "0" || b1.Header.Nonce != 0 {
				t.Fatalf("\t%s\tTest 0:\tShould have index 0, parent hash \"0\" and nonce 0.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould have index 0, parent hash \"0\" and nonce 0.", success)

			trans := b1.Trans.Values()
			if len(trans) != len(gen.Balances) {
				t.Fatalf("\t%s\tTest 0:\tShould seed one transaction per balance: %d", failed, len(trans))
			}
			for _, tx := range trans {
				if tx.Kind != chain.TxKindGenesis || tx.Status != chain.TxStatusConfirmed {
					t.Fatalf("\t%s\tTest 0:\tShould seed confirmed genesis transactions.", failed)
				}
				if err := tx.Validate(); err != nil {
					t.Fatalf("\t%s\tTest 0:\tShould seed valid transactions: %v", failed, err)
				}
			}
			t.Logf("\t%s\tTest 0:\tShould seed confirmed genesis transactions.", success)
		}

		t.Logf("\tTest 1:\tWhen the genesis has no balances.")
		{
			gen := testGenesis()
			gen.Balances = nil

			if _, err := chain.GenesisBlock(gen); err == nil {
				t.Fatalf("\t%s\tTest 1:\tShould not derive a genesis block without balances.", failed)
			}
			t.Logf("\t%s\tTest 1:\tShould not derive a genesis block without balances.", success)
		}
	}
}

func Test_POW(t *testing.T) {
	t.Log("Given the need to mine blocks with proof of work.")
	{
		t.Logf("\tTest 0:\tWhen mining a block at difficulty 1.")
		{
			gb, err := chain.GenesisBlock(testGenesis())
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to derive the genesis block: %v", failed, err)
			}

			block, err := mineBlock(gb, otherAcct, []uint64{100, 300})
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to mine a block: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to mine a block.", success)

			if len(block.Hash) != 64 || !strings.HasPrefix(block.Hash, "0") {
				t.Fatalf("\t%s\tTest 0:\tShould produce a solved 64 character hash: %s", failed, block.Hash)
			}
			t.Logf("\t%s\tTest 0:\tShould produce a solved 64 character hash.", success)

			if block.Hash != block.Header.Hash() {
				t.Fatalf("\t%s\tTest 0:\tShould record the hash of the mined header.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould record the hash of the mined header.", success)

			if block.Header.Number != 1 || block.Header.PrevBlockHash != gb.Hash {
				t.Fatalf("\t%s\tTest 0:\tShould link the block to the genesis block.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould link the block to the genesis block.", success)

			if err := block.ValidateBlock(gb, noEv); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould validate against its parent: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould validate against its parent.", success)

			if err := chain.Validate([]chain.Block{gb, block}, noEv); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould validate the whole chain: %v", failed, err)
			}
			if err := chain.Validate([]chain.Block{gb, block}, noEv); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould validate the whole chain twice: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould validate the whole chain twice.", success)
		}

		t.Logf("\tTest 1:\tWhen mining is cancelled.")
		{
			gb, err := chain.GenesisBlock(testGenesis())
			if err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould be able to derive the genesis block: %v", failed, err)
			}

			signedTx, err := sign(recipient, 100, 1700000001000)
			if err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould be able to sign a transaction: %v", failed, err)
			}

			confirmedTx, err := signedTx.Transition(chain.TxStatusConfirmed)
			if err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould be able to confirm the transaction: %v", failed, err)
			}

			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			if _, err := chain.POW(ctx, 1, gb, []chain.SignedTx{confirmedTx}, noEv); err == nil {
				t.Fatalf("\t%s\tTest 1:\tShould stop mining when the context is cancelled.", failed)
			}
			t.Logf("\t%s\tTest 1:\tShould stop mining when the context is cancelled.", success)
		}

		t.Logf("\tTest 2:\tWhen mining a block with no transactions.")
		{
			gb, err := chain.GenesisBlock(testGenesis())
			if err != nil {
				t.Fatalf("\t%s\tTest 2:\tShould be able to derive the genesis block: %v", failed, err)
			}

			if _, err := chain.POW(context.Background(), 1, gb, nil, noEv); err == nil {
				t.Fatalf("\t%s\tTest 2:\tShould not mine an empty block.", failed)
			}
			t.Logf("\t%s\tTest 2:\tShould not mine an empty block.", success)
		}
	}
}

func Test_ChainTampering(t *testing.T) {
	gb, err := chain.GenesisBlock(testGenesis())
	if err != nil {
		t.Fatalf("\t%s\tShould be able to derive the genesis block: %v", failed, err)
	}

	block, err := mineBlock(gb, otherAcct, []uint64{100, 300})
	if err != nil {
		t.Fatalf("\t%s\tShould be able to mine a block: %v", failed, err)
	}

	type table struct {
		name   string
		mutate func(bd *chain.BlockData)
		err    error
	}

	tt := []table{
		{
			name:   "broken link",
			mutate: func(bd *chain.BlockData) { bd.PreviousHash = "beef" },
			err:    chain.ErrBrokenLink,
		},
		{
			name:   "wrong index",
			mutate: func(bd *chain.BlockData) { bd.Index = 7 },
			err:    chain.ErrChainForked,
		},
		{
			name:   "tampered nonce",
			mutate: func(bd *chain.BlockData) { bd.Nonce++ },
			err:    chain.ErrTamperedBlock,
		},
		{
			name:   "tampered transaction amount",
			mutate: func(bd *chain.BlockData) { bd.Trans[0].Amount++ },
			err:    chain.ErrTamperedBlock,
		},
		{
			name:   "stripped signature",
			mutate: func(bd *chain.BlockData) { bd.Trans[0].Sig = nil },
			err:    chain.ErrMissingSignature,
		},
	}

	t.Log("Given the need to detect chain tampering.")
	{
		for testID, tst := range tt {
			t.Logf("\tTest %d:\tWhen handling a chain with %s.", testID, tst.name)
			{
				f := func(t *testing.T) {
					bd := chain.NewBlockData(block)
					tst.mutate(&bd)

					tampered, err := chain.ToBlock(bd)
					if err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould be able to rebuild the block: %v", failed, testID, err)
					}

					err = chain.Validate([]chain.Block{gb, tampered}, noEv)
					if err == nil {
						t.Fatalf("\t%s\tTest %d:\tShould reject the tampered chain.", failed, testID)
					}
					if !errors.Is(err, tst.err) {
						t.Logf("\t\tTest %d:\tgot: %v", testID, err)
						t.Logf("\t\tTest %d:\texp: %v", testID, tst.err)
						t.Fatalf("\t%s\tTest %d:\tShould get back the expected error.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould reject the tampered chain.", success, testID)
				}

				t.Run(tst.name, f)
			}
		}
	}
}

func Test_Balances(t *testing.T) {
	t.Log("Given the need to derive balances from the chain.")
	{
		t.Logf("\tTest 0:\tWhen replaying a chain with transfers and a reward.")
		{
			gen := testGenesis()

			gb, err := chain.GenesisBlock(gen)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to derive the genesis block: %v", failed, err)
			}

			block, err := mineBlock(gb, otherAcct, []uint64{100, 300})
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to mine a block: %v", failed, err)
			}

			pk, err := crypto.HexToECDSA(pkHexKey)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to load the private key: %v", failed, err)
			}
			sender := chain.PublicKeyToAccountID(pk.PublicKey)

			blocks := []chain.Block{gb, block}

			expected := map[chain.AccountID]int64{
				sender:    1000 - 100 - 300,
				recipient: 500 + 100 + 300,
				otherAcct: 700,
			}

			for account, exp := range expected {
				if got := chain.BalanceOf(blocks, account); got != exp {
					t.Logf("\t\tTest 0:\tacct: %s", account)
					t.Logf("\t\tTest 0:\tgot: %d", got)
					t.Logf("\t\tTest 0:\texp: %d", exp)
					t.Fatalf("\t%s\tTest 0:\tShould derive the correct balance.", failed)
				}
			}
			t.Logf("\t%s\tTest 0:\tShould derive the correct balance for every account.", success)

			balances := chain.Balances(blocks)
			for account, exp := range expected {
				if balances[account] != exp {
					t.Fatalf("\t%s\tTest 0:\tShould derive the same balances in the full map.", failed)
				}
			}
			t.Logf("\t%s\tTest 0:\tShould derive the same balances in the full map.", success)

			if got := chain.BalanceOf(blocks, "0x0000000000000000000000000000000000000001"); got != 0 {
				t.Fatalf("\t%s\tTest 0:\tShould report zero for an unknown account: %d", failed, got)
			}
			t.Logf("\t%s\tTest 0:\tShould report zero for an unknown account.", success)
		}
	}
}
