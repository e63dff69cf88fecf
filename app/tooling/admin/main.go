// This program performs administrative tasks against a running ledger node.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/ardanlabs/conf/v3"
	"github.com/ardanlabs/powledger/app/tooling/admin/commands"
	"github.com/ardanlabs/powledger/foundation/logger"
	"go.uber.org/zap"
)

// build is the git version of this program. It is set using build flags in the makefile.
var build = "develop"

func main() {

	// Construct the application logger.
	log, err := logger.New("ADMIN")
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer log.Sync()

	// Perform the startup and shutdown sequence.
	if err := run(log); err != nil {
		log.Errorw("startup", "ERROR", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(log *zap.SugaredLogger) error {
	cfg := struct {
		conf.Version
		Args conf.Args
		Node struct {
			URL string `conf:"default:http://localhost:8080"`
		}
	}{
		Version: conf.Version{
			Build: build,
			Desc:  "copyright information here",
		},
	}

	const prefix = "ADMIN"
	help, err := conf.Parse(prefix, &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	log.Infow("admin", "version", build, "node", cfg.Node.URL)

	return processCommands(cfg.Args, cfg.Node.URL)
}

// processCommands handles the execution of the commands specified on
// the command line.
func processCommands(args conf.Args, url string) error {
	switch args.Num(0) {
	case "bals":
		if err := commands.Balances(os.Stdout, url, args.Num(1)); err != nil {
			return fmt.Errorf("getting balances: %w", err)
		}
	case "blocks":
		if err := commands.Blocks(os.Stdout, url, args.Num(1)); err != nil {
			return fmt.Errorf("getting blocks: %w", err)
		}
	case "validate":
		if err := commands.Validate(os.Stdout, url); err != nil {
			return fmt.Errorf("validating chain: %w", err)
		}
	default:
		fmt.Println("bals [account]: show the balances of the known accounts")
		fmt.Println("blocks [account]: show the blocks in the chain")
		fmt.Println("validate: check the chain held by the node")
		fmt.Println("provide a command to run")
	}

	return nil
}
