// This program performs administrative tasks against the chain data a node
// keeps on disk.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/forgechain/forge/app/tooling/admin/commands"
	"github.com/forgechain/forge/foundation/logger"
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
	if len(os.Args) < 2 {
		return errors.New("specify a command: genesis, verify, bals")
	}

	return processCommands(os.Args)
}

// processCommands handles the execution of the commands specified on
// the command line.
func processCommands(args []string) error {
	switch args[1] {
	case "genesis":
		if err := commands.Genesis(args); err != nil {
			return fmt.Errorf("writing genesis: %w", err)
		}
	case "verify":
		if err := commands.Verify(args); err != nil {
			return fmt.Errorf("verifying chain: %w", err)
		}
	case "bals":
		if err := commands.Balances(args); err != nil {
			return fmt.Errorf("getting balances: %w", err)
		}
	default:
		return fmt.Errorf("unknown command %q", args[1])
	}

	return nil
}
