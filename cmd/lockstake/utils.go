// Copyright (c) 2025 The lockstake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/lockstake/lockstake/genesis"
	"github.com/lockstake/lockstake/kv"
	"github.com/lockstake/lockstake/log"
	"github.com/lockstake/lockstake/metrics"
)

func initLogger(ctx *cli.Context) {
	level := log.VerbosityToLevel(int(ctx.Uint64(verbosityFlag.Name)))
	if ctx.Bool(jsonLogsFlag.Name) {
		log.SetDefault(log.NewJSONHandler(level))
		return
	}
	useColor := isatty.IsTerminal(os.Stderr.Fd()) && os.Getenv("TERM") != "dumb"
	log.SetDefault(log.NewTerminalHandler(level, useColor))
}

func defaultDataDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".lockstake")
	}
	return ""
}

func selectGenesis(ctx *cli.Context) (*genesis.Config, error) {
	path := ctx.String(genesisFlag.Name)
	if path == "" {
		return genesis.Default(), nil
	}
	return genesis.Load(path)
}

func makeInstanceDir(ctx *cli.Context) (string, error) {
	dataDir := ctx.String(dataDirFlag.Name)
	if dataDir == "" {
		return "", errors.New("unable to infer default data dir, use -" + dataDirFlag.Name + " to specify one")
	}
	instanceDir := filepath.Join(dataDir, "instance")
	if err := os.MkdirAll(instanceDir, 0700); err != nil {
		return "", errors.Wrapf(err, "create instance dir [%v]", instanceDir)
	}
	return instanceDir, nil
}

func openMainDB(ctx *cli.Context, dir string) (kv.StoreCloser, error) {
	cacheMB := int(ctx.Uint64(cacheFlag.Name))
	store, err := kv.OpenLevelDB(filepath.Join(dir, "main.db"), kv.Options{
		CacheSize:              cacheMB,
		OpenFilesCacheCapacity: 500,
	})
	if err != nil {
		return nil, errors.Wrap(err, "open main database")
	}
	return store, nil
}

func startAPIServer(ctx *cli.Context, handler http.HandlerFunc) (*http.Server, string, error) {
	addr := ctx.String(apiAddrFlag.Name)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, "", errors.Wrapf(err, "listen API addr [%v]", addr)
	}
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := srv.Serve(listener); err != http.ErrServerClosed {
			logger.Error("API server stopped", "err", err)
		}
	}()
	return srv, "http://" + listener.Addr().String() + "/", nil
}

func startMetricsServer(addr string) (string, func(), error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return "", nil, errors.Wrapf(err, "listen metrics addr [%v]", addr)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.HTTPHandler())
	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := srv.Serve(listener); err != http.ErrServerClosed {
			logger.Error("metrics server stopped", "err", err)
		}
	}()
	return "http://" + listener.Addr().String() + "/metrics", func() {
		srv.Shutdown(context.Background())
	}, nil
}

func handleExitSignal() <-chan struct{} {
	done := make(chan struct{})
	go func() {
		signalCh := make(chan os.Signal, 1)
		signal.Notify(signalCh, os.Interrupt, syscall.SIGTERM)
		sig := <-signalCh
		logger.Info("exit signal received", "signal", sig)
		close(done)
	}()
	return done
}

func printStartupMessage(instanceDir string, apiURL string) {
	fmt.Printf(`Starting %v
    Version     %v
    Instance    %v
    API portal  %v
`,
		"Lockstake",
		fullVersion(),
		instanceDir,
		apiURL,
	)
}
