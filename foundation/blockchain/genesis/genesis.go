// Package genesis maintains access to the genesis file.
package genesis

import (
	"encoding/json"
	"errors"
	"os"
	"time"
)

// Genesis represents the genesis file.
type Genesis struct {
	Date         time.Time `json:"date"`          // Timestamp of the genesis block.
	Difficulty   uint16    `json:"difficulty"`    // How difficult it needs to be to solve the work problem.
	MiningReward uint64    `json:"mining_reward"` // Reward for mining a block.
}

// Default returns the genesis used when no file is provided.
func Default() Genesis {
	return Genesis{
		Date:         time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
		Difficulty:   2,
		MiningReward: 100,
	}
}

// =============================================================================

// Load opens and consumes the genesis file.
func Load(path string) (Genesis, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Genesis{}, err
	}

	var genesis Genesis
	if err := json.Unmarshal(content, &genesis); err != nil {
		return Genesis{}, err
	}

	if err := genesis.Validate(); err != nil {
		return Genesis{}, err
	}

	return genesis, nil
}

// Validate checks the genesis values can run a ledger.
func (g Genesis) Validate() error {
	const maxDifficulty = 64

	if g.Difficulty == 0 {
		return errors.New("difficulty must be positive")
	}

	if g.Difficulty > maxDifficulty {
		return errors.New("difficulty can't exceed the number of hex characters in a hash")
	}

	return nil
}
