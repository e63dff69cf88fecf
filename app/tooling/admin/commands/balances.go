package commands

import (
	"fmt"
	"io"

	"github.com/ardanlabs/powledger/app/services/node/handlers/v1/public"
)

// Balances writes the current set of balances.
func Balances(w io.Writer, url string, account string) error {
	path := fmt.Sprintf("%s/v1/accounts/list", url)
	if account != "" {
		path += "/" + account
	}

	var balances public.Balances
	if err := get(path, &balances); err != nil {
		return err
	}

	fmt.Fprintf(w, "LatestBlockHash: %s\n", balances.LatestBlock)
	fmt.Fprintf(w, "Uncommitted: %d\n\n", balances.Uncommitted)

	for _, bal := range balances.Balances {
		fmt.Fprintf(w, "Account: %s  Name: %s  Balance: %d\n", bal.Account, bal.Name, bal.Balance)
	}

	return nil
}
