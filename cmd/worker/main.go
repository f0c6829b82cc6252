// Command worker runs only the job dispatcher and maintenance jobs. It is the
// same as "poolkeeper worker".
package main

import (
	"fmt"
	"os"

	"github.com/orris-inc/poolkeeper/internal/interfaces/cli/worker"
)

func main() {
	cmd := worker.NewCommand()
	cmd.Use = "poolkeeper-worker"
	cmd.SilenceUsage = true
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
