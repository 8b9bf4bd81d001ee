package main

import (
	"fmt"
	"net/url"

	"github.com/urfave/cli/v2"
)

var chainFlag = cli.StringFlag{
	Name:     "chain",
	Usage:    "the ticker of the chain, ie. BTC",
	Required: true,
}

var chains = cli.Command{
	Name:   "chains",
	Usage:  "list the chains connected to the daemon",
	Action: chainsAction,
}

var balance = cli.Command{
	Name:  "balance",
	Usage: "get the balance of the wallet, or of one of its addresses",
	Flags: []cli.Flag{
		&chainFlag,
		&cli.StringFlag{
			Name:  "address",
			Usage: "restrict the balance to the utxos of this address",
		},
	},
	Action: balanceAction,
}

var validate = cli.Command{
	Name:      "validate",
	Usage:     "check whether an address belongs to the given chain",
	ArgsUsage: "<address>",
	Flags:     []cli.Flag{&chainFlag},
	Action:    validateAction,
}

var listutxos = cli.Command{
	Name:   "utxos",
	Usage:  "get a list of all utxos of the wallet, locked or not",
	Flags:  []cli.Flag{&chainFlag},
	Action: listUtxosAction,
}

func chainsAction(ctx *cli.Context) error {
	resp, err := getClient(ctx).get("/v1/chains")
	if err != nil {
		return err
	}

	printRespJSON(resp)
	return nil
}

func balanceAction(ctx *cli.Context) error {
	path := chainPath(ctx, "balance")
	if addr := ctx.String("address"); addr != "" {
		path = fmt.Sprintf("%s?address=%s", path, url.QueryEscape(addr))
	}

	resp, err := getClient(ctx).get(path)
	if err != nil {
		return err
	}

	printRespJSON(resp)
	return nil
}

func validateAction(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return &invalidUsageError{ctx, ctx.Command.Name}
	}

	path := chainPath(ctx, "addresses", url.PathEscape(ctx.Args().First()))
	resp, err := getClient(ctx).get(path)
	if err != nil {
		return err
	}

	printRespJSON(resp)
	return nil
}

func listUtxosAction(ctx *cli.Context) error {
	resp, err := getClient(ctx).get(chainPath(ctx, "utxos"))
	if err != nil {
		return err
	}

	printRespJSON(resp)
	return nil
}

func chainPath(ctx *cli.Context, parts ...string) string {
	path := "/v1/chains/" + url.PathEscape(ctx.String("chain"))
	for _, p := range parts {
		path += "/" + p
	}
	return path
}
