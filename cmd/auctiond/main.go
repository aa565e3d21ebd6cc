// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/meterio/sealed-auction/api"
	"github.com/meterio/sealed-auction/logdb"
	"github.com/meterio/sealed-auction/lvldb"
	"github.com/meterio/sealed-auction/packer"
	"github.com/meterio/sealed-auction/state"
	cli "gopkg.in/urfave/cli.v1"
)

var (
	version   string
	gitCommit string
	gitTag    string
	log       = slog.Default().With("pkg", "auctiond")
)

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	return fmt.Sprintf("%s-%s-%s", version, gitCommit, versionMeta)
}

func main() {
	app := cli.App{
		Version:   fullVersion(),
		Name:      "auctiond",
		Usage:     "Node of the sealed-bid auction ledger",
		Copyright: "2020 The Meter.io developers",
		Flags: []cli.Flag{
			configFlag,
			dataDirFlag,
			inMemoryFlag,
			beneficiaryFlag,
			apiAddrFlag,
			apiCorsFlag,
			apiTimeoutFlag,
			verbosityFlag,
			skipClockCheckFlag,
		},
		Action: defaultAction,
		Commands: []cli.Command{
			{
				Name:  "commitment",
				Usage: "compute the commitment sealing a bid",
				Flags: []cli.Flag{
					itemFlag,
					amountFlag,
					bidderFlag,
				},
				Action: commitmentAction,
			},
			{
				Name:  "keygen",
				Usage: "generate a private key and print its address",
				Flags: []cli.Flag{
					outFlag,
				},
				Action: keygenAction,
			},
			{
				Name:  "rawtx",
				Usage: "build and sign an auction transaction for POST /transactions",
				Flags: []cli.Flag{
					configFlag,
					keyFileFlag,
					opFlag,
					itemFlag,
					amountFlag,
					valueFlag,
					commitmentFlag,
					phaseFlag,
					newOwnerFlag,
					nonceFlag,
					gasFlag,
					gasPriceFlag,
				},
				Action: rawTxAction,
			},
			{
				Name:      "inspect",
				Usage:     "dump persisted ledger and auction state",
				ArgsUsage: "auction | item <id> | bid <commitment> | block <number> | tx <id>",
				Flags: []cli.Flag{
					configFlag,
					dataDirFlag,
					verbosityFlag,
				},
				Action: inspectAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func defaultAction(ctx *cli.Context) error {
	exitSignal := handleExitSignal()

	initLogger(ctx)
	defer func() { log.Info("exited") }()

	gene := selectGenesis(ctx)

	var (
		mainDB      *lvldb.LevelDB
		logDB       *logdb.LogDB
		instanceDir string
	)
	if ctx.Bool(inMemoryFlag.Name) {
		mainDB = openMemMainDB()
		logDB = openMemLogDB()
		instanceDir = "memory"
	} else {
		instanceDir = makeInstanceDir(ctx, gene)
		mainDB = openMainDB(ctx, instanceDir)
		logDB = openLogDB(ctx, instanceDir)
	}
	defer func() { log.Info("closing main database..."); mainDB.Close() }()
	defer func() { log.Info("closing log database..."); logDB.Close() }()

	stateCreator := state.NewCreator(mainDB)
	chain := initChain(gene, mainDB, stateCreator)
	defer chain.Close()

	se := newScriptEngine(stateCreator)

	p := packer.New(chain, stateCreator, se, logDB, beneficiary(ctx, gene), gene.BaseGasPrice())

	apiHandler, apiCloser := api.New(chain, stateCreator, se, p, logDB, ctx.String(apiCorsFlag.Name))
	defer func() { log.Info("closing subscriptions..."); apiCloser() }()

	apiURL, srvCloser := startAPIServer(ctx, apiHandler, gene.ID())
	defer func() { log.Info("stopping API server..."); srvCloser() }()

	if !ctx.Bool(skipClockCheckFlag.Name) {
		go checkClockOffset()
	}

	printStartupMessage(gene, chain, p, se.BlindAuction(), stateCreator, instanceDir, apiURL)

	<-exitSignal.Done()
	return nil
}
