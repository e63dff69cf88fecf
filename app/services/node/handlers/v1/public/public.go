// Package public maintains the group of handlers for public access.
package public

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ardanlabs/powledger/business/web/errs"
	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/state"
	"github.com/ardanlabs/powledger/foundation/events"
	"github.com/ardanlabs/powledger/foundation/nameservice"
	"github.com/ardanlabs/powledger/foundation/validate"
	"github.com/ardanlabs/powledger/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Handlers manages the set of ledger endpoints.
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

	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	ch := h.Evts.Acquire(v.TraceID)
	defer h.Evts.Release(v.TraceID)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, wd := <-ch:
			if !wd {
				return nil
			}

			if err := c.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return nil
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}

// SubmitWalletTransaction adds a new signed transaction to the mempool.
func (h Handlers) SubmitWalletTransaction(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var submitTx SubmitTx
	if err := web.Decode(r, &submitTx); err != nil {
		if validate.IsFieldErrors(err) {
			return err
		}
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	tx := submitTx.toDatabaseTx()

	h.Log.Infow("add user tran", "traceid", v.TraceID, "tx", tx)
	if err := h.State.AddTransaction(tx); err != nil {
		return fmt.Errorf("adding transaction: %w", err)
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

// Mempool returns the set of uncommitted transactions.
func (h Handlers) Mempool(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	acct := database.AccountID(web.Param(r, "account"))

	mempool := h.State.RetrieveMempool()

	trans := []tx{}
	for _, tran := range mempool {
		if acct != "" && acct != tran.From && acct != tran.To {
			continue
		}

		trans = append(trans, h.toTx(tran))
	}

	return web.Respond(ctx, w, trans, http.StatusOK)
}

// Accounts returns the current balances for the known accounts or for the
// specified account. An account the ledger has never seen has a zero balance.
func (h Handlers) Accounts(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	accountStr := web.Param(r, "account")

	var accounts []database.AccountID
	switch accountStr {
	case "":
		for accountID := range h.NS.Copy() {
			accounts = append(accounts, accountID)
		}

	default:
		accounts = append(accounts, database.AccountID(accountStr))
	}

	balances := make([]Balance, len(accounts))
	for i, accountID := range accounts {
		balances[i] = Balance{
			Account: accountID,
			Name:    h.NS.Lookup(accountID),
			Balance: h.State.BalanceOf(accountID),
		}
	}

	resp := Balances{
		LatestBlock: h.State.LatestBlock().Hash,
		Uncommitted: h.State.QueryMempoolLength(),
		Balances:    balances,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// BlocksByAccount returns all the blocks and their details, optionally
// filtered to those holding transactions for the specified account.
func (h Handlers) BlocksByAccount(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	accountID := database.AccountID(web.Param(r, "account"))

	blocks := h.State.QueryBlocksByAccount(accountID)

	out := make([]block, len(blocks))
	for i, blk := range blocks {
		trans := make([]tx, len(blk.Trans))
		for j, tran := range blk.Trans {
			trans[j] = h.toTx(tran)
		}

		out[i] = block{
			TimeStamp:     blk.TimeStamp,
			PrevBlockHash: blk.PrevBlockHash,
			Nonce:         blk.Nonce,
			Hash:          blk.Hash,
			Trans:         trans,
		}
	}

	return web.Respond(ctx, w, out, http.StatusOK)
}

// ValidateChain reports whether the chain held by the node is intact.
func (h Handlers) ValidateChain(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	resp := chainStatus{
		Valid:  true,
		Blocks: len(h.State.RetrieveBlocks()),
	}

	if err := h.State.ValidateChain(); err != nil {
		resp.Valid = false
		resp.Error = err.Error()
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// SignalMining asks the background worker to mine the pending transactions.
func (h Handlers) SignalMining(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	if !h.State.SignalMining() {
		return errs.NewTrusted(errors.New("mining worker is not running"), http.StatusServiceUnavailable)
	}

	resp := struct {
		Status  string `json:"status"`
		Pending int    `json:"pending"`
	}{
		Status:  "mining signaled",
		Pending: h.State.QueryMempoolLength(),
	}

	return web.Respond(ctx, w, resp, http.StatusAccepted)
}

// =============================================================================

func (h Handlers) toTx(tran database.Tx) tx {
	return tx{
		From:      tran.From,
		FromName:  h.NS.Lookup(tran.From),
		To:        tran.To,
		ToName:    h.NS.Lookup(tran.To),
		Amount:    tran.Amount,
		Signature: tran.Signature,
		Reward:    tran.IsReward(),
	}
}
