// Copyright (c) 2026 The batchmint developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/inconshreveable/log15"
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/ekmixon/batchmint/api"
	"github.com/ekmixon/batchmint/authority"
	"github.com/ekmixon/batchmint/genesis"
	"github.com/ekmixon/batchmint/kv"
	"github.com/ekmixon/batchmint/ledger"
	"github.com/ekmixon/batchmint/metrics"
	"github.com/ekmixon/batchmint/minter"
	"github.com/ekmixon/batchmint/state"
)

var (
	version   string
	gitCommit string
	gitTag    string
	log       = log15.New()
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
		Name:      "batchmint",
		Usage:     "batched liquid staking accounting engine",
		Copyright: "2026 The batchmint developers",
		Flags: []cli.Flag{
			dataDirFlag,
			apiAddrFlag,
			apiCorsFlag,
			genesisFlag,
			verbosityFlag,
			enableMetricsFlag,
		},
		Action: defaultAction,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func defaultAction(ctx *cli.Context) error {
	defer func() { log.Info("exited") }()

	initLogger(ctx)
	if ctx.Bool(enableMetricsFlag.Name) {
		metrics.InitializePrometheusMetrics()
	}

	db := openMainDB(ctx)
	defer func() { log.Info("closing main database..."); db.Close() }()

	st := state.New(db)
	if err := ensureGenesis(ctx, st); err != nil {
		return err
	}

	led := ledger.New(genesis.LedgerAddress, st)
	auth := authority.New(genesis.AuthorityAddress, st)
	m := minter.New(genesis.MinterAddress, st, led, auth, logSink{})

	handler := api.New(m, led, st, ctx.String(apiCorsFlag.Name))
	srv, srvURL := startAPIServer(ctx, handler)
	defer func() { log.Info("stopping API server..."); srv.Shutdown(context.Background()) }()

	log.Info("runtime started", "version", fullVersion(), "api", srvURL)

	return handleExitSignal()
}

func openMainDB(ctx *cli.Context) *kv.LevelDB {
	dataDir := ctx.String(dataDirFlag.Name)
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		fatal(errors.Wrapf(err, "create data dir [%v]", dataDir))
	}

	db, err := kv.NewLevelDB(filepath.Join(dataDir, "main.db"), kv.Options{
		CacheSize:              128,
		OpenFilesCacheCapacity: 512,
	})
	if err != nil {
		fatal(errors.Wrap(err, "open main database"))
	}
	return db
}

// ensureGenesis applies the genesis file to a fresh database, or verifies
// one is not needed when the database is already bootstrapped.
func ensureGenesis(ctx *cli.Context, st *state.State) error {
	applied, err := genesis.Applied(st)
	if err != nil {
		return errors.Wrap(err, "check genesis")
	}
	if applied {
		if ctx.IsSet(genesisFlag.Name) {
			log.Warn("database already bootstrapped, genesis file ignored")
		}
		return nil
	}

	path := ctx.String(genesisFlag.Name)
	if path == "" {
		return errors.New("fresh database requires a genesis file, set --" + genesisFlag.Name)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "read genesis file")
	}
	var gene genesis.Genesis
	if err := json.Unmarshal(data, &gene); err != nil {
		return errors.Wrap(err, "parse genesis file")
	}
	if err := gene.Apply(st); err != nil {
		return errors.Wrap(err, "apply genesis")
	}
	if err := st.Commit(); err != nil {
		return errors.Wrap(err, "commit genesis")
	}
	log.Info("genesis applied", "issuer", gene.Issuer, "governance", gene.Governance)
	return nil
}

func startAPIServer(ctx *cli.Context, handler http.Handler) (*http.Server, string) {
	addr := ctx.String(apiAddrFlag.Name)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		fatal(errors.Wrapf(err, "listen API addr [%v]", addr))
	}

	root := http.NewServeMux()
	root.Handle("/", handler)
	if ctx.Bool(enableMetricsFlag.Name) {
		root.Handle("/metrics", metrics.HTTPHandler())
	}

	srv := &http.Server{Handler: root, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		srv.Serve(listener)
	}()
	return srv, "http://" + listener.Addr().String() + "/"
}

func handleExitSignal() error {
	exitSignalCh := make(chan os.Signal, 1)
	signal.Notify(exitSignalCh, os.Interrupt, syscall.SIGTERM)

	sig := <-exitSignalCh
	log.Info("exit signal received", "signal", sig)
	return nil
}

func fatal(args ...interface{}) {
	fmt.Fprintln(os.Stderr, args...)
	os.Exit(1)
}
