// Package main is the wallet used to create accounts and submit signed
// transactions to a ledger node.
package main

import "github.com/ardanlabs/powledger/app/wallet/cli/cmd"

func main() {
	cmd.Execute()
}
