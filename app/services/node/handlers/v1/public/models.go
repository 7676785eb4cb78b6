package public

import (
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/forgechain/forge/foundation/ledger/chain"
)

// submitTx is what a wallet posts to add a transaction to the mempool.
type submitTx struct {
	SenderID    string         `json:"sender" validate:"required"`
	RecipientID string         `json:"recipient" validate:"required"`
	Amount      uint64         `json:"amount" validate:"required"`
	Kind        chain.TxKind   `json:"kind" validate:"required,oneof=standard"`
	TimeStamp   uint64         `json:"timestamp" validate:"required"`
	Status      chain.TxStatus `json:"status"`
	Sig         hexutil.Bytes  `json:"signature" validate:"required"`
}

// toSignedTx converts the inbound payload into the chain representation.
func toSignedTx(app submitTx) chain.SignedTx {
	return chain.SignedTx{
		Tx: chain.Tx{
			SenderID:    chain.AccountID(app.SenderID),
			RecipientID: chain.AccountID(app.RecipientID),
			Amount:      app.Amount,
			Kind:        app.Kind,
			TimeStamp:   app.TimeStamp,
		},
		Sig: app.Sig,
	}
}

// tx is a mempool transaction decorated with name service information.
type tx struct {
	FromAccount chain.AccountID `json:"from"`
	FromName    string          `json:"from_name"`
	To          chain.AccountID `json:"to"`
	ToName      string          `json:"to_name"`
	Amount      uint64          `json:"amount"`
	Kind        chain.TxKind    `json:"kind"`
	TimeStamp   uint64          `json:"timestamp"`
	Status      chain.TxStatus  `json:"status"`
	Hash        string          `json:"hash"`
	Sig         string          `json:"sig"`
}

// actBalance is the pair of balance views kept for an account. Confirmed
// comes from replaying the chain, available subtracts pending spends.
type actBalance struct {
	Account   chain.AccountID `json:"account"`
	Name      string          `json:"name,omitempty"`
	Confirmed int64           `json:"confirmed"`
	Available int64           `json:"available"`
}

// actInfo is the accounts listing response.
type actInfo struct {
	LatestBlock string       `json:"latest_block"`
	Uncommitted int          `json:"uncommitted"`
	Balances    []actBalance `json:"balances"`
}
