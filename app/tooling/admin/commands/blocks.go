package commands

import (
	"fmt"
	"io"
)

type blockTx struct {
	FromName string `json:"from_name"`
	ToName   string `json:"to_name"`
	Amount   uint64 `json:"amount"`
	Reward   bool   `json:"reward"`
}

type block struct {
	TimeStamp     uint64    `json:"timestamp"`
	PrevBlockHash string    `json:"prev_block_hash"`
	Nonce         uint64    `json:"nonce"`
	Hash          string    `json:"hash"`
	Trans         []blockTx `json:"txs"`
}

// Blocks writes the blocks in the chain, optionally only those holding
// transactions for the account.
func Blocks(w io.Writer, url string, account string) error {
	path := fmt.Sprintf("%s/v1/blocks/list", url)
	if account != "" {
		path += "/" + account
	}

	var blocks []block
	if err := get(path, &blocks); err != nil {
		return err
	}

	for _, blk := range blocks {
		fmt.Fprintf(w, "Block: %s\n", blk.Hash)
		fmt.Fprintf(w, "  Prev: %s  Nonce: %d  TimeStamp: %d\n", blk.PrevBlockHash, blk.Nonce, blk.TimeStamp)
		for _, tx := range blk.Trans {
			from := tx.FromName
			if tx.Reward {
				from = "REWARD"
			}
			fmt.Fprintf(w, "  Tx: %s -> %s : %d\n", from, tx.ToName, tx.Amount)
		}
	}

	return nil
}

// Validate writes whether the chain held by the node is intact.
func Validate(w io.Writer, url string) error {
	var status struct {
		Valid  bool   `json:"valid"`
		Blocks int    `json:"blocks"`
		Error  string `json:"error"`
	}
	if err := get(fmt.Sprintf("%s/v1/chain/validate", url), &status); err != nil {
		return err
	}

	fmt.Fprintf(w, "Blocks: %d  Valid: %t\n", status.Blocks, status.Valid)
	if status.Error != "" {
		fmt.Fprintf(w, "Error: %s\n", status.Error)
	}

	return nil
}
