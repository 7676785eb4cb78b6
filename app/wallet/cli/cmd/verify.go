package cmd

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/forgechain/forge/foundation/ledger/chain"
	"github.com/spf13/cobra"
)

var (
	blockNum uint64
	txHash   string
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify a transaction is included in a block",
	Run:   verifyRun,
}

func init() {
	rootCmd.AddCommand(verifyCmd)
	verifyCmd.Flags().StringVarP(&url, "url", "u", "http://localhost:8080", "Url of the node.")
	verifyCmd.Flags().Uint64VarP(&blockNum, "block", "b", 0, "Block number holding the transaction.")
	verifyCmd.Flags().StringVarP(&txHash, "hash", "x", "", "Hash of the transaction to verify.")
}

func verifyRun(cmd *cobra.Command, args []string) {
	resp, err := http.Get(fmt.Sprintf("%s/v1/tx/proof/%d/%s", url, blockNum, txHash))
	if err != nil {
		log.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Fatalf("node returned %s", resp.Status)
	}

	var proof chain.TxProof
	if err := json.NewDecoder(resp.Body).Decode(&proof); err != nil {
		log.Fatal(err)
	}

	// The proof is checked locally so the node does not have to be trusted.
	if err := chain.VerifyTxInclusion(proof); err != nil {
		log.Fatal(err)
	}

	fmt.Println("Merkle Root:", proof.MerkleRoot)
	fmt.Println("Proof valid: transaction is included in block", proof.BlockNumber)
}
