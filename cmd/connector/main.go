package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

var rpcFlag = cli.StringFlag{
	Name:    "rpcserver",
	Usage:   "connector daemon address http://host:port",
	Value:   "http://localhost:9090",
	EnvVars: []string{"CONNECTOR_RPCSERVER"},
}

func main() {
	app := cli.NewApp()

	app.Version = "0.0.1"
	app.Name = "utxo connector CLI"
	app.Usage = "Command line interface for connectord daemon operators"
	app.Flags = []cli.Flag{&rpcFlag}
	app.Commands = append(
		app.Commands,
		&chains,
		&balance,
		&validate,
		&listutxos,
		&locked,
		&lock,
		&unlock,
		&fund,
	)

	err := app.Run(os.Args)
	if err != nil {
		fatal(err)
	}
}

type invalidUsageError struct {
	ctx     *cli.Context
	command string
}

func (e *invalidUsageError) Error() string {
	return fmt.Sprintf("invalid usage of command %s", e.command)
}

func fatal(err error) {
	var e *invalidUsageError
	if errors.As(err, &e) {
		_ = cli.ShowCommandHelp(e.ctx, e.command)
	} else {
		_, _ = fmt.Fprintf(os.Stderr, "[connector] %v\n", err)
	}
	os.Exit(1)
}
