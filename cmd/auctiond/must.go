// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/ethereum/go-ethereum/common/fdlimit"
	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"github.com/meterio/sealed-auction/builtin/items"
	"github.com/meterio/sealed-auction/chain"
	"github.com/meterio/sealed-auction/co"
	"github.com/meterio/sealed-auction/genesis"
	"github.com/meterio/sealed-auction/logdb"
	"github.com/meterio/sealed-auction/lvldb"
	"github.com/meterio/sealed-auction/meter"
	"github.com/meterio/sealed-auction/packer"
	"github.com/meterio/sealed-auction/script"
	"github.com/meterio/sealed-auction/script/blindauction"
	"github.com/meterio/sealed-auction/state"
	cli "gopkg.in/urfave/cli.v1"
)

// verbosityLevel maps the numeric verbosity, 0 being the quietest, to a slog level.
func verbosityLevel(v int) slog.Level {
	switch {
	case v <= 1:
		return slog.LevelError
	case v == 2:
		return slog.LevelWarn
	case v == 3:
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}

func initLogger(ctx *cli.Context) {
	level := verbosityLevel(ctx.Int(verbosityFlag.Name))
	w := os.Stderr
	slog.SetLogLoggerLevel(level)
	slog.SetDefault(slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.DateTime,
		NoColor:    !isatty.IsTerminal(w.Fd()),
	})))
	log = slog.Default().With("pkg", "auctiond")
}

func selectGenesis(ctx *cli.Context) *genesis.Genesis {
	path := ctx.String(configFlag.Name)
	if path == "" {
		return genesis.NewDevnet()
	}
	cfg, err := genesis.LoadConfig(path)
	if err != nil {
		fatal(fmt.Sprintf("load config [%v]: %v", path, err))
	}
	gene, err := genesis.NewGenesis(cfg)
	if err != nil {
		fatal(fmt.Sprintf("config [%v]: %v", path, err))
	}
	return gene
}

func makeDataDir(ctx *cli.Context) string {
	dataDir := ctx.String(dataDirFlag.Name)
	if dataDir == "" {
		fatal(fmt.Sprintf("unable to infer default data dir, use -%s to specify", dataDirFlag.Name))
	}
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		fatal(fmt.Sprintf("create data dir [%v]: %v", dataDir, err))
	}
	return dataDir
}

func makeInstanceDir(ctx *cli.Context, gene *genesis.Genesis) string {
	dataDir := makeDataDir(ctx)

	instanceDir := filepath.Join(dataDir, fmt.Sprintf("instance-%x", gene.ID().Bytes()[24:]))
	if err := os.MkdirAll(instanceDir, 0700); err != nil {
		fatal(fmt.Sprintf("create instance dir [%v]: %v", instanceDir, err))
	}
	return instanceDir
}

func openMainDB(ctx *cli.Context, dataDir string) *lvldb.LevelDB {
	if _, err := fdlimit.Raise(5120 * 4); err != nil {
		log.Warn("failed to increase fd limit", "err", err)
	}
	limit, err := fdlimit.Current()
	if err != nil {
		fatal("failed to get fd limit:", err)
	}
	if limit <= 1024 {
		log.Warn("low fd limit, increase it if possible", "limit", limit)
	} else {
		log.Debug("fd limit", "limit", limit)
	}

	fileCache := limit / 2
	if fileCache > 1024 {
		fileCache = 1024
	}

	dir := filepath.Join(dataDir, "main.db")
	db, err := lvldb.New(dir, lvldb.Options{
		CacheSize:              128,
		OpenFilesCacheCapacity: fileCache,
	})
	if err != nil {
		fatal(fmt.Sprintf("open chain database [%v]: %v", dir, err))
	}
	return db
}

func openLogDB(ctx *cli.Context, dataDir string) *logdb.LogDB {
	dir := filepath.Join(dataDir, "logs.db")
	db, err := logdb.New(dir)
	if err != nil {
		fatal(fmt.Sprintf("open log database [%v]: %v", dir, err))
	}
	return db
}

func openMemMainDB() *lvldb.LevelDB {
	db, err := lvldb.NewMem()
	if err != nil {
		fatal(fmt.Sprintf("open chain database: %v", err))
	}
	return db
}

func openMemLogDB() *logdb.LogDB {
	db, err := logdb.NewMem()
	if err != nil {
		fatal(fmt.Sprintf("open log database: %v", err))
	}
	return db
}

func initChain(gene *genesis.Genesis, mainDB *lvldb.LevelDB, stateCreator *state.Creator) *chain.Chain {
	c, err := genesis.Setup(mainDB, stateCreator, gene)
	if err != nil {
		fatal("initialize ledger:", err)
	}
	return c
}

func newScriptEngine(stateCreator *state.Creator) *script.ScriptEngine {
	return script.NewScriptEngine(stateCreator, func(st *state.State) blindauction.ItemRegistry {
		return items.NewMinter(st, blindauction.AuctionAccountAddr)
	})
}

func beneficiary(ctx *cli.Context, gene *genesis.Genesis) meter.Address {
	value := ctx.String(beneficiaryFlag.Name)
	if value == "" {
		return gene.Owner()
	}
	addr, err := meter.ParseAddress(value)
	if err != nil {
		fatal("invalid beneficiary:", err)
	}
	return addr
}

func startAPIServer(ctx *cli.Context, handler http.Handler, genesisID meter.Bytes32) (string, func()) {
	addr := ctx.String(apiAddrFlag.Name)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		fatal(fmt.Sprintf("listen API addr [%v]: %v", addr, err))
	}

	timeout := ctx.Int(apiTimeoutFlag.Name)
	if timeout > 0 {
		handler = handleAPITimeout(handler, time.Duration(timeout)*time.Millisecond)
	}
	handler = handleXGenesisID(handler, genesisID)
	handler = requestBodyLimit(handler)
	srv := &http.Server{Handler: handler, ReadHeaderTimeout: 10 * time.Second}
	var goes co.Goes
	goes.Go(func() {
		if err := srv.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Error("API service stopped", "err", err)
		}
	})
	return "http://" + listener.Addr().String() + "/", func() {
		if err := srv.Close(); err != nil {
			log.Warn("could not close API service", "err", err)
		}
		goes.Wait()
	}
}

func printStartupMessage(
	gene *genesis.Genesis,
	chain *chain.Chain,
	p *packer.Packer,
	engine *blindauction.BlindAuction,
	stateCreator *state.Creator,
	dataDir string,
	apiURL string,
) {
	bestBlock := chain.BestBlock()
	st := stateCreator.NewReader()

	fmt.Printf(`Starting %v
    Network         [ %v %v ]
    Best block      [ %v #%v @%v ]
    Auction         [ %v owner %v min stake %v ]
    Base gas price  [ %v ]
    Data dir        [ %v ]
    API portal      [ %v ]
`,
		"auctiond "+fullVersion(),
		gene.ID(), gene.Name(),
		bestBlock.Header().ID(), bestBlock.Header().Number(), time.Unix(int64(bestBlock.Header().Timestamp()), 0),
		engine.CurrentPhase(st), engine.GetOwner(st), meter.FormatUnits(engine.GetMinStake(st)),
		p.BaseGasPrice(),
		dataDir,
		apiURL)
}
