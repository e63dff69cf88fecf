package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/ardanlabs/powledger/app/services/node/handlers/v1/public"
	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/signature"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"
)

var (
	url    string
	to     string
	amount uint64
)

// sendCmd represents the send command
var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send transaction",
	Run:   sendRun,
}

func init() {
	rootCmd.AddCommand(sendCmd)
	sendCmd.Flags().StringVarP(&url, "url", "u", "http://localhost:8080", "Url of the node.")
	sendCmd.Flags().StringVarP(&to, "to", "t", "", "Account receiving the amount.")
	sendCmd.Flags().Uint64VarP(&amount, "amount", "v", 0, "Amount to send.")
	sendCmd.MarkFlagRequired("to")
}

func sendRun(cmd *cobra.Command, args []string) {
	privateKey, err := crypto.LoadECDSA(getPrivateKeyPath())
	if err != nil {
		log.Fatal(err)
	}

	toID, err := database.ToAccountID(to)
	if err != nil {
		log.Fatal(err)
	}

	kp := signature.NewECDSAKeyPair(privateKey)
	if err := submit(url, kp, toID, amount); err != nil {
		log.Fatal(err)
	}

	fmt.Println("transaction submitted")
}

// submit signs a transfer with the key pair and posts it to the node.
func submit(url string, kp signature.KeyPair, to database.AccountID, amount uint64) error {
	tx := database.NewTx(database.AccountID(kp.PublicKey()), to, amount)
	if err := tx.Sign(kp); err != nil {
		return fmt.Errorf("signing transaction: %w", err)
	}

	submitTx := public.SubmitTx{
		From:      tx.From,
		To:        tx.To,
		Amount:    tx.Amount,
		Signature: tx.Signature,
	}

	data, err := json.Marshal(submitTx)
	if err != nil {
		return err
	}

	resp, err := http.Post(fmt.Sprintf("%s/v1/tx/submit", url), "application/json", bytes.NewBuffer(data))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("node rejected transaction: status %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}

	return nil
}
