package cmd

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/ardanlabs/powledger/app/services/node/handlers/v1/public"
	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"
)

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Print your balance.",
	Run:   balanceRun,
}

func init() {
	rootCmd.AddCommand(balanceCmd)
	balanceCmd.Flags().StringVarP(&url, "url", "u", "http://localhost:8080", "Url of the node.")
}

func balanceRun(cmd *cobra.Command, args []string) {
	privateKey, err := crypto.LoadECDSA(getPrivateKeyPath())
	if err != nil {
		log.Fatal(err)
	}

	accountID := database.PublicKeyToAccountID(privateKey.PublicKey)
	fmt.Println("For Account:", accountID)

	balance, err := queryBalance(url, accountID)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(balance)
}

// queryBalance asks the node for the current balance of the account.
func queryBalance(url string, accountID database.AccountID) (int64, error) {
	resp, err := http.Get(fmt.Sprintf("%s/v1/accounts/list/%s", url, accountID))
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("node responded with status %d", resp.StatusCode)
	}

	var balances public.Balances
	if err := json.NewDecoder(resp.Body).Decode(&balances); err != nil {
		return 0, fmt.Errorf("decoding balances: %w", err)
	}

	for _, b := range balances.Balances {
		if b.Account == accountID {
			return b.Balance, nil
		}
	}

	return 0, nil
}
