// Package public maintains the group of handlers for public access.
package public

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/forgechain/forge/business/sys/validate"
	"github.com/forgechain/forge/business/web/errs"
	"github.com/forgechain/forge/foundation/events"
	"github.com/forgechain/forge/foundation/ledger/chain"
	"github.com/forgechain/forge/foundation/ledger/state"
	"github.com/forgechain/forge/foundation/nameservice"
	"github.com/forgechain/forge/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Handlers manages the set of public endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
	NS    *nameservice.NameService
	WS    websocket.Upgrader
	Evts  *events.Events
}

// Events handles a web socket to provide events to a client.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	// Need this to handle CORS on the websocket.
	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	// This upgrades the HTTP connection to a websocket connection.
	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	h.Log.Infow("websocket open", "path", "/v1/events", "traceid", v.TraceID)

	// Set the timeouts for the ping to identify if a web socket
	// connection is broken.
	pongWait := time.Minute
	c.SetReadDeadline(time.Now().Add(pongWait))
	c.SetPongHandler(func(string) error {
		c.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	// This provides a channel for receiving events from the blockchain.
	ch := h.Evts.Acquire(v.TraceID)
	defer h.Evts.Release(v.TraceID)

	// Starting a ticker to send a ping message over the websocket.
	pingSend := time.NewTicker(pongWait / 2)
	defer pingSend.Stop()

	// Block waiting for events from the blockchain or ticker.
	for {
		select {
		case msg, wd := <-ch:

			// If the channel is closed, release the websocket.
			if !wd {
				return nil
			}

			if err := c.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return err
			}

		case <-pingSend.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}

// SubmitWalletTransaction adds a new user transaction to the mempool.
func (h Handlers) SubmitWalletTransaction(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	// Decode the JSON in the post call into a signed transaction.
	var app submitTx
	if err := web.Decode(r, &app); err != nil {
		return fmt.Errorf("unable to decode payload: %w", err)
	}

	// Make sure the payload carries everything a signed transaction
	// needs before it hits the mempool.
	if err := validate.Check(app); err != nil {
		return err
	}

	signedTx := toSignedTx(app)

	h.Log.Infow("add user tran", "traceid", v.TraceID, "sender", signedTx.SenderID, "recipient", signedTx.RecipientID, "amount", signedTx.Amount, "kind", signedTx.Kind)
	if err := h.State.UpsertWalletTransaction(signedTx); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	resp := struct {
		Status string `json:"status"`
	}{
		Status: "transaction added to mempool",
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Genesis returns the genesis information.
func (h Handlers) Genesis(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	gen := h.State.RetrieveGenesis()
	return web.Respond(ctx, w, gen, http.StatusOK)
}

// Accounts returns the confirmed and available balances for the requested
// account, or for every account seen on the chain.
func (h Handlers) Accounts(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	account := web.Param(r, "account")

	var balances []actBalance
	switch account {
	case "":
		for accountID, confirmed := range h.State.QueryBalances() {
			balance := actBalance{
				Account:   accountID,
				Name:      h.NS.Lookup(accountID),
				Confirmed: confirmed,
				Available: h.State.QueryAvailableBalance(accountID),
			}
			balances = append(balances, balance)
		}

	default:
		accountID, err := chain.ToAccountID(account)
		if err != nil {
			return errs.NewTrusted(err, http.StatusBadRequest)
		}

		balance := actBalance{
			Account:   accountID,
			Name:      h.NS.Lookup(accountID),
			Confirmed: h.State.QueryBalance(accountID),
			Available: h.State.QueryAvailableBalance(accountID),
		}
		balances = append(balances, balance)
	}

	ai := actInfo{
		LatestBlock: h.State.RetrieveLatestBlock().Hash,
		Uncommitted: h.State.QueryMempoolLength(),
		Balances:    balances,
	}

	return web.Respond(ctx, w, ai, http.StatusOK)
}

// Mempool returns the set of uncommitted transactions decorated with name
// service information.
func (h Handlers) Mempool(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	acct := web.Param(r, "account")

	mempool := h.State.RetrieveMempool()

	trans := []tx{}
	for _, tran := range mempool {
		account, _ := tran.FromAccount()

		if acct != "" && (acct != string(account)) && (acct != string(tran.RecipientID)) {
			continue
		}

		trans = append(trans, tx{
			FromAccount: account,
			FromName:    h.NS.Lookup(account),
			To:          tran.RecipientID,
			ToName:      h.NS.Lookup(tran.RecipientID),
			Amount:      tran.Amount,
			Kind:        tran.Kind,
			TimeStamp:   tran.TimeStamp,
			Status:      tran.Status,
			Hash:        tran.Tx.HashString(),
			Sig:         tran.SignatureString(),
		})
	}

	return web.Respond(ctx, w, trans, http.StatusOK)
}

// BlocksByAccount returns the blocks that carry a transaction for the
// specified account. With no account every block is returned.
func (h Handlers) BlocksByAccount(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var accountID chain.AccountID
	if acct := web.Param(r, "account"); acct != "" {
		var err error
		accountID, err = chain.ToAccountID(acct)
		if err != nil {
			return errs.NewTrusted(err, http.StatusBadRequest)
		}
	}

	blocks, err := h.State.QueryBlocksByAccount(accountID)
	if err != nil {
		return err
	}

	if len(blocks) == 0 {
		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}

	blockData := make([]chain.BlockData, len(blocks))
	for i, block := range blocks {
		blockData[i] = chain.NewBlockData(block)
	}

	return web.Respond(ctx, w, blockData, http.StatusOK)
}

// TxProof returns a merkle proof of inclusion for the specified transaction
// hash in the specified block. The caller can verify the proof offline with
// nothing but the block header.
func (h Handlers) TxProof(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	blockNum, err := strconv.ParseUint(web.Param(r, "block"), 10, 64)
	if err != nil {
		return errs.NewTrusted(fmt.Errorf("invalid block number: %w", err), http.StatusBadRequest)
	}

	proof, err := h.State.QueryMerkleProof(web.Param(r, "hash"), blockNum)
	if err != nil {
		return errs.NewTrusted(err, http.StatusNotFound)
	}

	return web.Respond(ctx, w, proof, http.StatusOK)
}
