// Package commands contains the functionality for the set of admin commands.
package commands

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// get performs a GET against the node and decodes the JSON response.
func get(url string, val any) error {
	resp, err := http.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("node responded with status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(val); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}

	return nil
}
