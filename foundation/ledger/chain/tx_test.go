package chain_test

import (
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/forgechain/forge/foundation/ledger/chain"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

const (
	pkHexKey  = "fae85851bdf5c9f49923722ce38f3c1defcfd3619ef5453230a58ad805499959"
	recipient = "0xF01813E4B85e178A83e29B8E7bF26BD830a25f32"
	otherAcct = "0xFef311483Cc040e1A89fb9bb469eeB8A70935EF8"
)

// =============================================================================

func Test_SignTransaction(t *testing.T) {
	t.Log("Given the need to sign and validate transactions.")
	{
		t.Logf("\tTest 0:\tWhen handling a standard transaction.")
		{
			pk, err := crypto.HexToECDSA(pkHexKey)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to load the private key: %v", failed, err)
			}
			sender := chain.PublicKeyToAccountID(pk.PublicKey)

			tx, err := chain.NewTx(sender, recipient, 100)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to create a transaction: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to create a transaction.", success)

			if tx.Kind != chain.TxKindStandard || tx.Status != chain.TxStatusPending {
				t.Fatalf("\t%s\tTest 0:\tShould create a pending standard transaction: %s %s", failed, tx.Kind, tx.Status)
			}
			t.Logf("\t%s\tTest 0:\tShould create a pending standard transaction.", success)

			signedTx, err := tx.Sign(pk)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to sign the transaction: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to sign the transaction.", success)

			if err := signedTx.Validate(); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to validate the signed transaction: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to validate the signed transaction.", success)

			from, err := signedTx.FromAccount()
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to recover the signer: %v", failed, err)
			}
			if from != sender {
				t.Logf("\t\tTest 0:\tgot: %s", from)
				t.Logf("\t\tTest 0:\texp: %s", sender)
				t.Fatalf("\t%s\tTest 0:\tShould recover the sender from the signature.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould recover the sender from the signature.", success)

			tampered := signedTx
			tampered.Amount = 50
			if err := tampered.Validate(); !errors.Is(err, chain.ErrInvalidSignature) {
				t.Fatalf("\t%s\tTest 0:\tShould reject a tampered amount: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould reject a tampered amount.", success)

			unsigned := chain.SignedTx{Tx: tx}
			if err := unsigned.Validate(); !errors.Is(err, chain.ErrMissingSignature) {
				t.Fatalf("\t%s\tTest 0:\tShould reject an unsigned transaction: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould reject an unsigned transaction.", success)

			forged := signedTx
			forged.SenderID = otherAcct
			if err := forged.Validate(); !errors.Is(err, chain.ErrInvalidSignature) {
				t.Fatalf("\t%s\tTest 0:\tShould reject a transaction whose signer is not the sender: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould reject a transaction whose signer is not the sender.", success)
		}

		t.Logf("\tTest 1:\tWhen signing with a key that is not the sender's.")
		{
			pk, err := crypto.HexToECDSA(pkHexKey)
			if err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould be able to load the private key: %v", failed, err)
			}

			tx, err := chain.NewTx(otherAcct, recipient, 100)
			if err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould be able to create a transaction: %v", failed, err)
			}

			if _, err := tx.Sign(pk); !errors.Is(err, chain.ErrSignerMismatch) {
				t.Fatalf("\t%s\tTest 1:\tShould refuse to sign for another account: %v", failed, err)
			}
			t.Logf("\t%s\tTest 1:\tShould refuse to sign for another account.", success)
		}
	}
}

func Test_NewTxValidation(t *testing.T) {
	type table struct {
		name      string
		sender    chain.AccountID
		recipient chain.AccountID
		amount    uint64
		err       error
	}

	tt := []table{
		{name: "ok", sender: "0xdd6B972ffcc631a62CAE1BB9d80b7ff429c8ebA4", recipient: recipient, amount: 10, err: nil},
		{name: "zero amount", sender: "0xdd6B972ffcc631a62CAE1BB9d80b7ff429c8ebA4", recipient: recipient, amount: 0, err: chain.ErrInvalidAmount},
		{name: "bad sender", sender: "not-an-account", recipient: recipient, amount: 10, err: chain.ErrInvalidAccount},
		{name: "bad recipient", sender: "0xdd6B972ffcc631a62CAE1BB9d80b7ff429c8ebA4", recipient: "0x12", amount: 10, err: chain.ErrInvalidAccount},
		{name: "missing sender", sender: "", recipient: recipient, amount: 10, err: chain.ErrInvalidAccount},
	}

	t.Log("Given the need to validate new transactions.")
	{
		for testID, tst := range tt {
			t.Logf("\tTest %d:\tWhen creating transaction %q.", testID, tst.name)
			{
				f := func(t *testing.T) {
					_, err := chain.NewTx(tst.sender, tst.recipient, tst.amount)
					if !errors.Is(err, tst.err) {
						t.Logf("\t\tTest %d:\tgot: %v", testID, err)
						t.Logf("\t\tTest %d:\texp: %v", testID, tst.err)
						t.Fatalf("\t%s\tTest %d:\tShould get back the expected error.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould get back the expected error.", success, testID)
				}

				t.Run(tst.name, f)
			}
		}
	}
}

func Test_RewardTransaction(t *testing.T) {
	t.Log("Given the need to mint mining rewards.")
	{
		t.Logf("\tTest 0:\tWhen creating a reward transaction.")
		{
			tx, err := chain.NewRewardTx(otherAcct, 700)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to create a reward transaction: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to create a reward transaction.", success)

			if tx.Kind != chain.TxKindReward || tx.SenderID != "" {
				t.Fatalf("\t%s\tTest 0:\tShould create an unsigned reward without a sender.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould create an unsigned reward without a sender.", success)

			signedTx := chain.SignedTx{Tx: tx}
			if err := signedTx.Validate(); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould validate without a signature: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould validate without a signature.", success)

			from, err := signedTx.FromAccount()
			if err != nil || from != "" {
				t.Fatalf("\t%s\tTest 0:\tShould report an empty sender: %q %v", failed, from, err)
			}
			t.Logf("\t%s\tTest 0:\tShould report an empty sender.", success)

			signedTx.Sig = []byte{0x01}
			if err := signedTx.Validate(); err == nil {
				t.Fatalf("\t%s\tTest 0:\tShould reject a signed reward transaction.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould reject a signed reward transaction.", success)

			if _, err := chain.NewRewardTx("bad", 700); !errors.Is(err, chain.ErrInvalidAccount) {
				t.Fatalf("\t%s\tTest 0:\tShould reject a malformed beneficiary: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould reject a malformed beneficiary.", success)

			if _, err := chain.NewRewardTx(otherAcct, 0); !errors.Is(err, chain.ErrInvalidAmount) {
				t.Fatalf("\t%s\tTest 0:\tShould reject a zero reward: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould reject a zero reward.", success)
		}
	}
}

func Test_CanonicalHash(t *testing.T) {
	base := chain.Tx{
		SenderID:    "0xdd6B972ffcc631a62CAE1BB9d80b7ff429c8ebA4",
		RecipientID: recipient,
		Amount:      100,
		Kind:        chain.TxKindStandard,
		TimeStamp:   1717171717000,
		Status:      chain.TxStatusPending,
	}

	t.Log("Given the need to derive a stable transaction identity.")
	{
		t.Logf("\tTest 0:\tWhen hashing the same transaction twice.")
		{
			if base.HashString() != base.HashString() {
				t.Fatalf("\t%s\tTest 0:\tShould produce the same hash twice.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould produce the same hash twice.", success)
		}

		t.Logf("\tTest 1:\tWhen changing identity fields.")
		{
			mutations := []chain.Tx{base, base, base, base, base}
			mutations[0].SenderID = otherAcct
			mutations[1].RecipientID = otherAcct
			mutations[2].Amount = 101
			mutations[3].Kind = chain.TxKindReward
			mutations[4].TimeStamp = 1717171717001

			for i, m := range mutations {
				if m.HashString() == base.HashString() {
					t.Fatalf("\t%s\tTest 1:\tShould change the hash for mutation %d.", failed, i)
				}
			}
			t.Logf("\t%s\tTest 1:\tShould change the hash when identity fields change.", success)
		}

		t.Logf("\tTest 2:\tWhen changing status or signature.")
		{
			confirmed := base
			confirmed.Status = chain.TxStatusConfirmed
			if confirmed.HashString() != base.HashString() {
				t.Fatalf("\t%s\tTest 2:\tShould not change the hash when the status changes.", failed)
			}
			t.Logf("\t%s\tTest 2:\tShould not change the hash when the status changes.", success)

			signed := chain.SignedTx{Tx: base, Sig: []byte{0xab, 0xcd}}
			if signed.HashString() != base.HashString() {
				t.Fatalf("\t%s\tTest 2:\tShould not change the hash when a signature is attached.", failed)
			}
			t.Logf("\t%s\tTest 2:\tShould not change the hash when a signature is attached.", success)
		}
	}
}

func Test_StatusTransition(t *testing.T) {
	t.Log("Given the need to move transactions through their lifecycle.")
	{
		t.Logf("\tTest 0:\tWhen confirming a pending transaction.")
		{
			tx, err := chain.NewTx("0xdd6B972ffcc631a62CAE1BB9d80b7ff429c8ebA4", recipient, 25)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to create a transaction: %v", failed, err)
			}

			signedTx := chain.SignedTx{Tx: tx}

			confirmed, err := signedTx.Transition(chain.TxStatusConfirmed)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to confirm a pending transaction: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to confirm a pending transaction.", success)

			if confirmed.Status != chain.TxStatusConfirmed {
				t.Fatalf("\t%s\tTest 0:\tShould mark the copy confirmed.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould mark the copy confirmed.", success)

			if signedTx.Status != chain.TxStatusPending {
				t.Fatalf("\t%s\tTest 0:\tShould leave the original pending.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould leave the original pending.", success)
		}

		t.Logf("\tTest 1:\tWhen attempting an illegal move.")
		{
			tx, err := chain.NewTx("0xdd6B972ffcc631a62CAE1BB9d80b7ff429c8ebA4", recipient, 25)
			if err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould be able to create a transaction: %v", failed, err)
			}

			pendingTx := chain.SignedTx{Tx: tx}

			confirmed, err := pendingTx.Transition(chain.TxStatusConfirmed)
			if err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould be able to confirm a pending transaction: %v", failed, err)
			}

			if _, err := confirmed.Transition(chain.TxStatusPending); !errors.Is(err, chain.ErrInvalidTransition) {
				t.Fatalf("\t%s\tTest 1:\tShould not move a confirmed transaction back to pending: %v", failed, err)
			}
			t.Logf("\t%s\tTest 1:\tShould not move a confirmed transaction back to pending.", success)

			if _, err := confirmed.Transition(chain.TxStatusConfirmed); !errors.Is(err, chain.ErrInvalidTransition) {
				t.Fatalf("\t%s\tTest 1:\tShould not confirm a confirmed transaction twice: %v", failed, err)
			}
			t.Logf("\t%s\tTest 1:\tShould not confirm a confirmed transaction twice.", success)

			if _, err := pendingTx.Transition(chain.TxStatusPending); !errors.Is(err, chain.ErrInvalidTransition) {
				t.Fatalf("\t%s\tTest 1:\tShould not re-mark a pending transaction pending: %v", failed, err)
			}
			t.Logf("\t%s\tTest 1:\tShould not re-mark a pending transaction pending.", success)
		}
	}
}
