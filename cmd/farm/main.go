// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/tokenfarm/admin"
	"github.com/vechain/tokenfarm/api"
	"github.com/vechain/tokenfarm/cmd/farm/httpserver"
	"github.com/vechain/tokenfarm/cmd/farm/node"
	"github.com/vechain/tokenfarm/deploy"
	"github.com/vechain/tokenfarm/health"
	"github.com/vechain/tokenfarm/kv"
	"github.com/vechain/tokenfarm/ledger"
	"github.com/vechain/tokenfarm/log"
	"github.com/vechain/tokenfarm/oracle"
	"github.com/vechain/tokenfarm/oracle/chainlink"
)

var (
	version   string
	gitCommit string
	gitTag    string

	logger = log.WithContext("pkg", "farm")
)

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	return fmt.Sprintf("%s-%s-%s", version, gitCommit, versionMeta)
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	nodeFlags := []cli.Flag{
		configFlag,
		dataDirFlag,
		cacheFlag,
		apiAddrFlag,
		apiCorsFlag,
		apiTimeoutFlag,
		apiBacktraceLimitFlag,
		apiLogsLimitFlag,
		enableAPILogsFlag,
		pprofFlag,
		oracleTimeoutFlag,
		oracleMaxAgeFlag,
		feedsCheckIntervalFlag,
		verbosityFlag,
		jsonLogsFlag,
		enableMetricsFlag,
		metricsAddrFlag,
		enableAdminFlag,
		adminAddrFlag,
	}
	clientFlags := func(flags ...cli.Flag) []cli.Flag {
		return append([]cli.Flag{apiURLFlag, accountFlag}, flags...)
	}

	return &cli.App{
		Version:   fullVersion(),
		Name:      "Farm",
		Usage:     "Token staking farm rewarding stakers by the value of their stake",
		Copyright: "2025 VeChain Foundation <https://vechain.org/>",
		Flags:     append([]cli.Flag{ethRPCFlag}, nodeFlags...),
		Action:    defaultAction,
		Commands: []cli.Command{
			{
				Name:   "solo",
				Usage:  "run a farm on mock tokens and price feeds, for test & dev",
				Flags:  append([]cli.Flag{persistFlag}, nodeFlags...),
				Action: soloAction,
			},
			{
				Name:   "default-config",
				Usage:  "print the default solo deployment config",
				Action: defaultConfigAction,
			},
			{
				Name:   "balance",
				Usage:  "print the token balance of an account",
				Flags:  clientFlags(tokenFlag),
				Action: balanceAction,
			},
			{
				Name:   "approve",
				Usage:  "allow a spender to transfer tokens of the account",
				Flags:  clientFlags(tokenFlag, amountFlag, spenderFlag),
				Action: approveAction,
			},
			{
				Name:   "stake",
				Usage:  "approve the farm and stake tokens",
				Flags:  clientFlags(tokenFlag, amountFlag),
				Action: stakeAction,
			},
			{
				Name:   "unstake",
				Usage:  "withdraw the whole stake of a token",
				Flags:  clientFlags(tokenFlag),
				Action: unstakeAction,
			},
			{
				Name:   "issue-rewards",
				Usage:  "pay every staker the value of its stake in reward tokens (owner only)",
				Flags:  clientFlags(),
				Action: issueRewardsAction,
			},
			{
				Name:   "value",
				Usage:  "print the stake of an account and its total value",
				Flags:  clientFlags(),
				Action: valueAction,
			},
		},
	}
}

func defaultAction(ctx *cli.Context) error {
	exitSignal := handleExitSignal()
	defer func() { logger.Info("exited") }()

	logLevel := initLogger(ctx)
	initMetrics(ctx)

	if ctx.String(configFlag.Name) == "" {
		cli.ShowAppHelp(ctx)
		return errors.New("config flag not specified")
	}
	cfg, err := deploy.LoadConfig(ctx.String(configFlag.Name))
	if err != nil {
		return err
	}
	if cfg.IsSolo() {
		return errors.New("solo deployment configured, use the solo command")
	}
	rpc := ctx.String(ethRPCFlag.Name)
	if rpc == "" {
		return errors.New("eth-rpc flag not specified")
	}

	client, err := chainlink.Dial(exitSignal, rpc)
	if err != nil {
		return err
	}
	defer client.Close()
	feeds := ledger.StaticFeeds(oracle.Guard(client, oracleOptions(ctx)))

	instanceDir, err := makeInstanceDir(ctx, cfg.Network)
	if err != nil {
		return err
	}
	mainDB, err := openMainDB(ctx, instanceDir)
	if err != nil {
		return err
	}
	defer func() { logger.Info("closing main database..."); mainDB.Close() }()

	logDB, err := openLogDB(instanceDir)
	if err != nil {
		return err
	}
	defer func() { logger.Info("closing log database..."); logDB.Close() }()

	l, err := ledger.Open(mainDB, logDB, cfg, ledger.Options{Feeds: feeds})
	if err != nil {
		return err
	}
	defer l.Close()

	return serve(exitSignal, ctx, l, logLevel, instanceDir)
}

func soloAction(ctx *cli.Context) error {
	exitSignal := handleExitSignal()
	defer func() { logger.Info("exited") }()

	logLevel := initLogger(ctx)
	initMetrics(ctx)

	cfg := deploy.DefaultConfig()
	if path := ctx.String(configFlag.Name); path != "" {
		var err error
		if cfg, err = deploy.LoadConfig(path); err != nil {
			return err
		}
		if !cfg.IsSolo() {
			return errors.Errorf("%q deployment configured, solo requires mock feeds", cfg.Network)
		}
	}

	var (
		mainDB      kv.StoreCloser
		instanceDir = "Memory"
		err         error
	)
	if ctx.Bool(persistFlag.Name) {
		if instanceDir, err = makeInstanceDir(ctx, cfg.Network); err != nil {
			return err
		}
		mainDB, err = openMainDB(ctx, instanceDir)
	} else {
		mainDB, err = openMemMainDB()
	}
	if err != nil {
		return err
	}
	defer func() { logger.Info("closing main database..."); mainDB.Close() }()

	logDB, err := openSoloLogDB(ctx, instanceDir)
	if err != nil {
		return err
	}
	defer func() { logger.Info("closing log database..."); logDB.Close() }()

	l, err := ledger.Open(mainDB, logDB, cfg, ledger.Options{Feeds: ledger.SoloFeeds(oracleOptions(ctx))})
	if err != nil {
		return err
	}
	defer l.Close()

	return serve(exitSignal, ctx, l, logLevel, instanceDir)
}

// serve starts the api, metrics and admin servers, then watches l until exit.
func serve(exitSignal context.Context, ctx *cli.Context, l *ledger.Ledger, logLevel *slog.LevelVar, instanceDir string) error {
	handler, closeAPI := api.New(l, api.Options{
		AllowedOrigins:  ctx.String(apiCorsFlag.Name),
		BacktraceLimit:  ctx.Uint64(apiBacktraceLimitFlag.Name),
		LogsLimit:       ctx.Uint64(apiLogsLimitFlag.Name),
		PprofOn:         ctx.Bool(pprofFlag.Name),
		EnableReqLogger: ctx.Bool(enableAPILogsFlag.Name),
		EnableMetrics:   ctx.Bool(enableMetricsFlag.Name),
	})
	defer closeAPI()

	apiURL, stopAPI, err := httpserver.StartAPIServer(
		ctx.String(apiAddrFlag.Name),
		handler,
		time.Duration(ctx.Uint64(apiTimeoutFlag.Name))*time.Millisecond,
	)
	if err != nil {
		return err
	}
	defer func() { logger.Info("stopping API server..."); stopAPI() }()

	metricsURL := ""
	if ctx.Bool(enableMetricsFlag.Name) {
		url, stop, err := httpserver.StartMetricsServer(ctx.String(metricsAddrFlag.Name))
		if err != nil {
			return err
		}
		defer func() { logger.Info("stopping metrics server..."); stop() }()
		metricsURL = url
	}

	checkInterval := time.Duration(ctx.Uint64(feedsCheckIntervalFlag.Name)) * time.Second
	h := &health.Health{MaxCheckAge: 3 * checkInterval}

	adminURL := ""
	if ctx.Bool(enableAdminFlag.Name) {
		url, stop, err := admin.StartServer(ctx.String(adminAddrFlag.Name), logLevel, h)
		if err != nil {
			return err
		}
		defer func() { logger.Info("stopping admin server..."); stop() }()
		adminURL = url
	}

	printStartupMessage(l, instanceDir, apiURL, metricsURL, adminURL)

	return node.New(l, h, node.Options{
		FeedsCheckInterval: checkInterval,
		ClockCheckInterval: 10 * time.Minute,
	}).Run(exitSignal)
}

func defaultConfigAction(*cli.Context) error {
	data, err := deploy.DefaultConfig().Marshal()
	if err != nil {
		return err
	}
	fmt.Print(string(data))
	return nil
}

func defaultDataDir() string {
	if home := homeDir(); home != "" {
		return filepath.Join(home, ".org.vechain.farm")
	}
	return ""
}

func homeDir() string {
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	home, _ := os.UserHomeDir()
	return home
}
