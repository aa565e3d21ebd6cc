// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	cli "gopkg.in/urfave/cli.v1"
)

var (
	configFlag = cli.StringFlag{
		Name:  "config",
		Usage: "path of the YAML genesis and auction config (devnet when omitted)",
	}
	dataDirFlag = cli.StringFlag{
		Name:  "data-dir",
		Value: defaultDataDir(),
		Usage: "directory for ledger databases",
	}
	inMemoryFlag = cli.BoolFlag{
		Name:  "in-memory",
		Usage: "keep all data in memory, nothing is persisted",
	}
	beneficiaryFlag = cli.StringFlag{
		Name:  "beneficiary",
		Usage: "address receiving transaction fees (defaults to the auction owner)",
	}
	apiAddrFlag = cli.StringFlag{
		Name:  "api-addr",
		Value: "localhost:8669",
		Usage: "API service listening address",
	}
	apiCorsFlag = cli.StringFlag{
		Name:  "api-cors",
		Value: "",
		Usage: "comma separated list of domains from which to accept cross origin requests to API",
	}
	apiTimeoutFlag = cli.IntFlag{
		Name:  "api-timeout",
		Value: 10000,
		Usage: "API request timeout value in milliseconds",
	}
	verbosityFlag = cli.IntFlag{
		Name:  "verbosity",
		Value: 3,
		Usage: "log verbosity (0-4)",
	}
	skipClockCheckFlag = cli.BoolFlag{
		Name:  "skip-clock-check",
		Usage: "do not compare the local clock with NTP at startup",
	}

	// transaction and lookup helpers
	keyFileFlag = cli.StringFlag{
		Name:  "key",
		Usage: "path of the hex private key file signing the transaction",
	}
	outFlag = cli.StringFlag{
		Name:  "out",
		Usage: "write the generated private key to this file",
	}
	opFlag = cli.StringFlag{
		Name:  "op",
		Usage: "operation (set-phase|place-bid|withdraw-bid|unseal|claim|withdraw-proceeds|transfer-ownership)",
	}
	itemFlag = cli.Uint64Flag{
		Name:  "item",
		Usage: "item id",
	}
	amountFlag = cli.StringFlag{
		Name:  "amount",
		Usage: "bid amount in units, e.g. 1.5",
	}
	valueFlag = cli.StringFlag{
		Name:  "value",
		Value: "0",
		Usage: "currency sent with the operation, in units",
	}
	bidderFlag = cli.StringFlag{
		Name:  "bidder",
		Usage: "bidder address",
	}
	commitmentFlag = cli.StringFlag{
		Name:  "commitment",
		Usage: "sealed bid commitment",
	}
	phaseFlag = cli.StringFlag{
		Name:  "phase",
		Usage: "target phase (paused|bidding|reveal|claim)",
	}
	newOwnerFlag = cli.StringFlag{
		Name:  "new-owner",
		Usage: "address of the new auction owner",
	}
	nonceFlag = cli.Uint64Flag{
		Name:  "nonce",
		Usage: "transaction nonce (random when omitted)",
	}
	gasFlag = cli.Uint64Flag{
		Name:  "gas",
		Value: 100000,
		Usage: "transaction gas",
	}
	gasPriceFlag = cli.StringFlag{
		Name:  "gas-price",
		Usage: "gas price in wei (defaults to the base gas price)",
	}
)
