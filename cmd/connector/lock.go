package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v2"
)

var locked = cli.Command{
	Name:   "locked",
	Usage:  "list the utxos currently locked by in-flight trades",
	Flags:  []cli.Flag{&chainFlag},
	Action: lockedAction,
}

var lock = cli.Command{
	Name:      "lock",
	Usage:     "reserve one or more utxos, either all of them or none",
	ArgsUsage: "<txid:vout[:amount]>...",
	Flags:     []cli.Flag{&chainFlag},
	Action:    lockAction,
}

var unlock = cli.Command{
	Name:      "unlock",
	Usage:     "release one or more utxos",
	ArgsUsage: "<txid:vout>...",
	Flags:     []cli.Flag{&chainFlag},
	Action:    unlockAction,
}

var fund = cli.Command{
	Name:  "fund",
	Usage: "select and lock free utxos covering the given amount",
	Flags: []cli.Flag{
		&chainFlag,
		&cli.StringFlag{
			Name:     "amount",
			Usage:    "the amount to cover, in coins (ie. 0.5)",
			Required: true,
		},
	},
	Action: fundAction,
}

type utxoArg struct {
	TxID   string          `json:"txid"`
	VOut   uint32          `json:"vout"`
	Amount decimal.Decimal `json:"amount"`
}

type utxosArg struct {
	Utxos []utxoArg `json:"utxos"`
}

func lockedAction(ctx *cli.Context) error {
	resp, err := getClient(ctx).get(chainPath(ctx, "locked"))
	if err != nil {
		return err
	}

	printRespJSON(resp)
	return nil
}

func lockAction(ctx *cli.Context) error {
	return postUtxos(ctx, "lock")
}

func unlockAction(ctx *cli.Context) error {
	return postUtxos(ctx, "unlock")
}

func postUtxos(ctx *cli.Context, action string) error {
	if ctx.NArg() <= 0 {
		return &invalidUsageError{ctx, ctx.Command.Name}
	}
	utxos, err := parseUtxoArgs(ctx.Args().Slice())
	if err != nil {
		return err
	}

	resp, err := getClient(ctx).post(chainPath(ctx, action), utxosArg{utxos})
	if err != nil {
		return err
	}

	printRespJSON(resp)
	return nil
}

func fundAction(ctx *cli.Context) error {
	amount, err := decimal.NewFromString(ctx.String("amount"))
	if err != nil {
		return fmt.Errorf("invalid amount: %s", err)
	}

	resp, err := getClient(ctx).post(
		chainPath(ctx, "fund"), map[string]decimal.Decimal{"amount": amount},
	)
	if err != nil {
		return err
	}

	printRespJSON(resp)
	return nil
}

func parseUtxoArgs(args []string) ([]utxoArg, error) {
	utxos := make([]utxoArg, 0, len(args))
	for _, arg := range args {
		parts := strings.Split(arg, ":")
		if len(parts) < 2 || len(parts) > 3 || parts[0] == "" {
			return nil, fmt.Errorf("invalid utxo %q, must be txid:vout[:amount]", arg)
		}
		vout, err := strconv.ParseUint(parts[1], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid vout for utxo %q: %s", arg, err)
		}
		amount := decimal.Zero
		if len(parts) == 3 {
			if amount, err = decimal.NewFromString(parts[2]); err != nil {
				return nil, fmt.Errorf("invalid amount for utxo %q: %s", arg, err)
			}
		}
		utxos = append(utxos, utxoArg{parts[0], uint32(vout), amount})
	}
	return utxos, nil
}
