// Copyright (c) 2025 The lockstake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	cli "gopkg.in/urfave/cli.v1"

	"github.com/lockstake/lockstake/api"
	"github.com/lockstake/lockstake/bank"
	"github.com/lockstake/lockstake/kv"
	"github.com/lockstake/lockstake/ledger"
	"github.com/lockstake/lockstake/ledger/pool"
	"github.com/lockstake/lockstake/lockstake"
	"github.com/lockstake/lockstake/log"
	"github.com/lockstake/lockstake/metrics"
	"github.com/lockstake/lockstake/recorddb"
	"github.com/lockstake/lockstake/state"
)

var (
	version   string
	gitCommit string
	gitTag    string
)

var logger = log.WithContext("pkg", "main")

// the storage namespaces of the two state-owning components
var (
	ledgerAddr = lockstake.BytesToAddress([]byte("lockstake-ledger"))
	bankAddr   = lockstake.BytesToAddress([]byte("lockstake-bank"))
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
		Name:      "lockstake",
		Usage:     "Staking ledger service",
		Copyright: "2025 The lockstake developers",
		Flags: []cli.Flag{
			genesisFlag,
			dataDirFlag,
			persistFlag,
			apiAddrFlag,
			apiCorsFlag,
			apiRecordsLimitFlag,
			enableAPILogsFlag,
			cacheFlag,
			verbosityFlag,
			jsonLogsFlag,
			enableMetricsFlag,
			metricsAddrFlag,
		},
		Action: defaultAction,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func defaultAction(ctx *cli.Context) error {
	defer func() { logger.Info("exited") }()

	initLogger(ctx)

	gene, err := selectGenesis(ctx)
	if err != nil {
		return err
	}

	var (
		store       kv.StoreCloser
		recordDB    *recorddb.RecordDB
		instanceDir string
	)
	if ctx.Bool(persistFlag.Name) {
		instanceDir, err = makeInstanceDir(ctx)
		if err != nil {
			return err
		}
		store, err = openMainDB(ctx, instanceDir)
		if err != nil {
			return err
		}
		recordDB, err = recorddb.New(filepath.Join(instanceDir, "records.db"))
		if err != nil {
			return err
		}
	} else {
		instanceDir = "Memory"
		store = kv.NewMem()
		recordDB, err = recorddb.NewMem()
		if err != nil {
			return err
		}
	}
	defer func() { logger.Info("closing main database..."); store.Close() }()
	defer func() { logger.Info("closing record database..."); recordDB.Close() }()

	// the state keyspace is bucketed so main.db can host other data later
	st := state.New(kv.Bucket("state/").NewStore(store))
	bk := bank.New(bankAddr, st)

	// prefunds apply once, on the very first start against this store
	initialized, err := pool.New(st, ledgerAddr).Initialized()
	if err != nil {
		return err
	}
	if !initialized {
		if err := gene.Apply(bk); err != nil {
			return err
		}
	}

	ldgr, err := ledger.New(ledgerAddr, st, bk, gene.PoolParams())
	if err != nil {
		return err
	}
	ldgr.AddSink(recordDB.Sink())

	if ctx.Bool(enableMetricsFlag.Name) {
		metrics.InitializePrometheusMetrics()
		metricsURL, closeMetrics, err := startMetricsServer(ctx.String(metricsAddrFlag.Name))
		if err != nil {
			return err
		}
		logger.Info("metrics server started", "url", metricsURL)
		defer func() { logger.Info("stopping metrics server..."); closeMetrics() }()
	}

	handler, closeSubs := api.New(ldgr, recordDB, api.Options{
		AllowedOrigins:  ctx.String(apiCorsFlag.Name),
		RecordsLimit:    ctx.Uint64(apiRecordsLimitFlag.Name),
		EnableReqLogger: ctx.Bool(enableAPILogsFlag.Name),
		EnableMetrics:   ctx.Bool(enableMetricsFlag.Name),
	})
	defer closeSubs()

	apiSrv, apiURL, err := startAPIServer(ctx, handler)
	if err != nil {
		return err
	}
	defer func() { logger.Info("stopping API server..."); apiSrv.Shutdown(context.Background()) }()

	printStartupMessage(instanceDir, apiURL)

	<-handleExitSignal()
	return nil
}
