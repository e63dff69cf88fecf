package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/ardanlabs/powledger/app/services/node/handlers"
	"github.com/ardanlabs/powledger/app/services/node/handlers/v1/public"
	"github.com/ardanlabs/powledger/business/web/errs"
	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/genesis"
	"github.com/ardanlabs/powledger/foundation/blockchain/signature"
	"github.com/ardanlabs/powledger/foundation/blockchain/state"
	"github.com/ardanlabs/powledger/foundation/blockchain/worker"
	"github.com/ardanlabs/powledger/foundation/events"
	"github.com/ardanlabs/powledger/foundation/nameservice"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

const (
	keyA = "fae85851bdf5c9f49923722ce38f3c1defcfd3619ef5453230a58ad805499959"
	keyB = "8dc79feefd3b86e2f9991def0e5ccd9a5128e104682407b308594bc1032ac7f0"
)

type node struct {
	st  *state.State
	mux http.Handler
	a   signature.ECDSAKeyPair
	b   signature.ECDSAKeyPair
}

func newNode(t *testing.T) node {
	gen := genesis.Default()
	gen.Difficulty = 1

	st, err := state.New(state.Config{
		BeneficiaryID: "miner",
		Genesis:       gen,
	})
	if err != nil {
		t.Fatalf("Should be able to construct a ledger: %s", err)
	}

	dir := t.TempDir()
	keys := make([]signature.ECDSAKeyPair, 2)
	for i, k := range []struct{ name, hex string }{{"kennedy", keyA}, {"pavel", keyB}} {
		pk, err := crypto.HexToECDSA(k.hex)
		if err != nil {
			t.Fatalf("Should be able to load private key: %s", err)
		}
		if err := crypto.SaveECDSA(dir+"/"+k.name+".ecdsa", pk); err != nil {
			t.Fatalf("Should be able to save private key: %s", err)
		}
		keys[i] = signature.NewECDSAKeyPair(pk)
	}

	ns, err := nameservice.New(dir)
	if err != nil {
		t.Fatalf("Should be able to construct the name service: %s", err)
	}

	mux := handlers.PublicMux(handlers.MuxConfig{
		Shutdown: make(chan os.Signal, 1),
		Log:      zap.NewNop().Sugar(),
		State:    st,
		NS:       ns,
		Evts:     events.New(),
	})

	return node{st: st, mux: mux, a: keys[0], b: keys[1]}
}

func (n node) do(t *testing.T, method string, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("Should be able to encode the body: %s", err)
		}
	}

	r := httptest.NewRequest(method, path, &buf)
	w := httptest.NewRecorder()
	n.mux.ServeHTTP(w, r)

	return w
}

func (n node) signedTx(t *testing.T, amount uint64) public.SubmitTx {
	tx := database.NewTx(database.AccountID(n.a.PublicKey()), database.AccountID(n.b.PublicKey()), amount)
	if err := tx.Sign(n.a); err != nil {
		t.Fatalf("Should be able to sign the transaction: %s", err)
	}

	return public.SubmitTx{
		From:      tx.From,
		To:        tx.To,
		Amount:    tx.Amount,
		Signature: tx.Signature,
	}
}

// =============================================================================

func TestSubmit(t *testing.T) {
	n := newNode(t)

	tampered := n.signedTx(t, 10)
	tampered.Amount = 1_000

	unsigned := n.signedTx(t, 10)
	unsigned.Signature = ""

	upper := n.signedTx(t, 10)
	upper.From = database.AccountID("0x04" + strings.ToUpper(string(upper.From[4:])))

	tt := []struct {
		name       string
		body       any
		statusCode int
	}{
		{"signed", n.signedTx(t, 10), http.StatusOK},
		{"tampered", tampered, http.StatusBadRequest},
		{"unsigned", unsigned, http.StatusBadRequest},
		{"unknown field", map[string]any{"from": "x", "nonce": 1}, http.StatusBadRequest},
		{"bad address", public.SubmitTx{From: "bill", To: "ed", Signature: "0x00"}, http.StatusBadRequest},
		{"uppercase address", upper, http.StatusBadRequest},
		{"amount too large", n.signedTx(t, math.MaxUint64), http.StatusBadRequest},
	}

	t.Log("Given the need to submit transactions over the API.")
	{
		for testID, tst := range tt {
			t.Logf("\tTest %d:\tWhen handling a %s transaction.", testID, tst.name)
			{
				w := n.do(t, http.MethodPost, "/v1/tx/submit", tst.body)
				if w.Code != tst.statusCode {
					t.Fatalf("\t%s\tTest %d:\tShould receive a status code of %d : %d : %s", failed, testID, tst.statusCode, w.Code, w.Body.String())
				}
				t.Logf("\t%s\tTest %d:\tShould receive a status code of %d.", success, testID, tst.statusCode)

				if tst.statusCode != http.StatusOK {
					var er errs.Response
					if err := json.NewDecoder(w.Body).Decode(&er); err != nil || er.Error == "" {
						t.Fatalf("\t%s\tTest %d:\tShould receive an error response : %v", failed, testID, err)
					}
					t.Logf("\t%s\tTest %d:\tShould receive an error response.", success, testID)
				}
			}
		}
	}

	if got := n.st.QueryMempoolLength(); got != 1 {
		t.Fatalf("Should hold only the valid transaction in the mempool: %d", got)
	}
}

func TestQueries(t *testing.T) {
	n := newNode(t)

	if w := n.do(t, http.MethodPost, "/v1/tx/submit", n.signedTx(t, 30)); w.Code != http.StatusOK {
		t.Fatalf("Should be able to submit a transaction: %d : %s", w.Code, w.Body.String())
	}

	w := n.do(t, http.MethodGet, "/v1/tx/uncommitted/list", nil)
	var mempool []map[string]any
	if err := json.NewDecoder(w.Body).Decode(&mempool); err != nil || len(mempool) != 1 {
		t.Fatalf("Should list the pending transaction: %v : %d", err, len(mempool))
	}
	if mempool[0]["from_name"] != "kennedy" {
		t.Fatalf("Should resolve the account name: %v", mempool[0]["from_name"])
	}

	if _, err := n.st.MineBeneficiary(context.Background()); err != nil {
		t.Fatalf("Should be able to mine: %s", err)
	}

	w = n.do(t, http.MethodGet, "/v1/accounts/list/"+n.b.PublicKey(), nil)
	var balances public.Balances
	if err := json.NewDecoder(w.Body).Decode(&balances); err != nil {
		t.Fatalf("Should decode the balances: %s", err)
	}
	if len(balances.Balances) != 1 || balances.Balances[0].Balance != 30 || balances.Balances[0].Name != "pavel" {
		t.Fatalf("Should get the balance of the account: %+v", balances.Balances)
	}

	w = n.do(t, http.MethodGet, "/v1/accounts/list", nil)
	if err := json.NewDecoder(w.Body).Decode(&balances); err != nil || len(balances.Balances) != 2 {
		t.Fatalf("Should get the balances of the known accounts: %v : %+v", err, balances.Balances)
	}

	w = n.do(t, http.MethodGet, "/v1/blocks/list", nil)
	var blocks []map[string]any
	if err := json.NewDecoder(w.Body).Decode(&blocks); err != nil || len(blocks) != 2 {
		t.Fatalf("Should list every block: %v : %d", err, len(blocks))
	}

	w = n.do(t, http.MethodGet, "/v1/blocks/list/"+n.a.PublicKey(), nil)
	if err := json.NewDecoder(w.Body).Decode(&blocks); err != nil || len(blocks) != 1 {
		t.Fatalf("Should list the blocks for the account: %v : %d", err, len(blocks))
	}

	w = n.do(t, http.MethodGet, "/v1/chain/validate", nil)
	var status struct {
		Valid  bool `json:"valid"`
		Blocks int  `json:"blocks"`
	}
	if err := json.NewDecoder(w.Body).Decode(&status); err != nil || !status.Valid || status.Blocks != 2 {
		t.Fatalf("Should report a valid chain: %v : %+v", err, status)
	}
}

func TestSignalMining(t *testing.T) {
	n := newNode(t)

	if w := n.do(t, http.MethodPost, "/v1/mining/signal", nil); w.Code != http.StatusServiceUnavailable {
		t.Fatalf("Should not signal mining without a worker: %d", w.Code)
	}

	w := worker.Run(n.st, 0, nil)
	defer w.Shutdown()

	if w := n.do(t, http.MethodPost, "/v1/mining/signal", nil); w.Code != http.StatusAccepted {
		t.Fatalf("Should signal mining with a worker: %d", w.Code)
	}
}
