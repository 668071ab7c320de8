// Command console runs the client console HTTP API and offers the same
// operations from the command line.
//
// @title        Client Console API
// @version      1.0
// @description  Administrative console for client accounts: credentials, expiry dates and dashboard permissions.
// @BasePath     /
package main

import (
	"errors"
	"os"

	"github.com/jessevdk/go-flags"
)

func main() {
	os.Exit(run(os.Args[1:], newEnvironment()))
}

func run(args []string, env *environment) int {
	opts := newOptions(env)
	parser := flags.NewParser(opts, flags.Default)
	parser.Name = "console"

	if _, err := parser.ParseArgs(args); err != nil {
		var fe *flags.Error
		if errors.As(err, &fe) && fe.Type == flags.ErrHelp {
			return 0
		}
		return 1
	}
	return 0
}
