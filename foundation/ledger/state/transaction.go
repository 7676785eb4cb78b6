package state

import (
	"errors"
	"fmt"

	"github.com/forgechain/forge/foundation/ledger/chain"
)

// ErrMissingAddress is returned when a submitted transaction does not name
// the accounts it moves funds between.
var ErrMissingAddress = errors.New("transaction is missing an address")

// UpsertWalletTransaction accepts a transaction from a wallet for inclusion.
// Whatever status the caller claims, the transaction enters this node as
// pending.
func (s *State) UpsertWalletTransaction(signedTx chain.SignedTx) error {
	signedTx.Status = chain.TxStatusPending

	if err := s.validateTransaction(signedTx); err != nil {
		return err
	}

	n := s.mempool.Upsert(signedTx)
	s.evHandler("state: UpsertWalletTransaction: tx[%s]: mempool[%d]", signedTx, n)

	s.Worker.SignalShareTx(signedTx)
	s.Worker.SignalStartMining()

	return nil
}

// UpsertNodeTransaction accepts a transaction from a node for inclusion.
// The transaction is not shared again, the submitting wallet's node has
// done that already.
func (s *State) UpsertNodeTransaction(signedTx chain.SignedTx) error {
	signedTx.Status = chain.TxStatusPending

	if err := s.validateTransaction(signedTx); err != nil {
		return err
	}

	n := s.mempool.Upsert(signedTx)
	s.evHandler("state: UpsertNodeTransaction: tx[%s]: mempool[%d]", signedTx, n)

	s.Worker.SignalStartMining()

	return nil
}

// =============================================================================

// validateTransaction takes the signed transaction and validates it has a
// proper signature and other aspects of the data. Only standard transactions
// are accepted from outside, reward and genesis transactions are minted by
// the node itself.
func (s *State) validateTransaction(signedTx chain.SignedTx) error {
	if signedTx.Kind != chain.TxKindStandard {
		return fmt.Errorf("only %s transactions can be submitted", chain.TxKindStandard)
	}

	if signedTx.SenderID == "" || signedTx.RecipientID == "" {
		return ErrMissingAddress
	}

	if err := signedTx.Validate(); err != nil {
		return err
	}

	return nil
}
