package chain_test

import (
	"errors"
	"testing"

	"github.com/forgechain/forge/foundation/ledger/chain"
)

func Test_TxProof(t *testing.T) {
	t.Log("Given the need to prove a transaction is recorded in a block.")
	{
		t.Logf("\tTest 0:\tWhen asking for a proof of an included transaction.")
		{
			gen := testGenesis()
			genesisBlock, err := chain.GenesisBlock(gen)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to derive the genesis block: %v", failed, err)
			}

			block, err := mineBlock(genesisBlock, otherAcct, []uint64{100, 75, 250})
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to mine a block: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to mine a block.", success)

			tx := block.Trans.Values()[1]

			proof, err := chain.NewTxProof(block, tx.HashString())
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to build the proof: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to build the proof.", success)

			if proof.MerkleRoot != block.Header.MerkleRoot {
				t.Errorf("\t%s\tTest 0:\tShould carry the merkle root of the block.", failed)
				t.Logf("\t\tTest 0:\tGot: %s", proof.MerkleRoot)
				t.Logf("\t\tTest 0:\tExp: %s", block.Header.MerkleRoot)
			} else {
				t.Logf("\t%s\tTest 0:\tShould carry the merkle root of the block.", success)
			}

			if err := chain.VerifyTxInclusion(proof); err != nil {
				t.Errorf("\t%s\tTest 0:\tShould be able to verify the proof against the root: %v", failed, err)
			} else {
				t.Logf("\t%s\tTest 0:\tShould be able to verify the proof against the root.", success)
			}
		}

		t.Logf("\tTest 1:\tWhen the proven transaction is substituted.")
		{
			gen := testGenesis()
			genesisBlock, err := chain.GenesisBlock(gen)
			if err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould be able to derive the genesis block: %v", failed, err)
			}

			block, err := mineBlock(genesisBlock, otherAcct, []uint64{100, 75, 250})
			if err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould be able to mine a block: %v", failed, err)
			}

			trans := block.Trans.Values()

			proof, err := chain.NewTxProof(block, trans[1].HashString())
			if err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould be able to build the proof: %v", failed, err)
			}

			proof.TxHash = trans[2].HashString()

			if err := chain.VerifyTxInclusion(proof); err == nil {
				t.Errorf("\t%s\tTest 1:\tShould not verify a proof for a different transaction.", failed)
			} else {
				t.Logf("\t%s\tTest 1:\tShould not verify a proof for a different transaction.", success)
			}
		}

		t.Logf("\tTest 2:\tWhen asking for a proof of an unknown transaction.")
		{
			gen := testGenesis()
			genesisBlock, err := chain.GenesisBlock(gen)
			if err != nil {
				t.Fatalf("\t%s\tTest 2:\tShould be able to derive the genesis block: %v", failed, err)
			}

			block, err := mineBlock(genesisBlock, otherAcct, []uint64{100})
			if err != nil {
				t.Fatalf("\t%s\tTest 2:\tShould be able to mine a block: %v", failed, err)
			}

			_, err = chain.NewTxProof(block, "aaaa0000aaaa0000aaaa0000aaaa0000aaaa0000aaaa0000aaaa0000aaaa0000")
			if !errors.Is(err, chain.ErrTxNotFound) {
				t.Errorf("\t%s\tTest 2:\tShould get ErrTxNotFound: %v", failed, err)
			} else {
				t.Logf("\t%s\tTest 2:\tShould get ErrTxNotFound.", success)
			}
		}
	}
}
