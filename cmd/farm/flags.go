// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/tokenfarm/log"
)

var (
	configFlag = cli.StringFlag{
		Name:  "config",
		Usage: "path to the deployment config (YAML), solo uses the default deployment if not set",
	}
	ethRPCFlag = cli.StringFlag{
		Name:  "eth-rpc",
		Usage: "JSON-RPC endpoint of the network hosting the price feeds",
	}
	dataDirFlag = cli.StringFlag{
		Name:  "data-dir",
		Value: defaultDataDir(),
		Usage: "directory for ledger databases",
	}
	cacheFlag = cli.Uint64Flag{
		Name:  "cache",
		Usage: "megabytes of ram allocated to the ledger store cache",
		Value: 256,
	}
	persistFlag = cli.BoolFlag{
		Name:  "persist",
		Usage: "ledger storage option, if set data will be saved to disk",
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
	apiTimeoutFlag = cli.Uint64Flag{
		Name:  "api-timeout",
		Value: 10000,
		Usage: "API request timeout value in milliseconds",
	}
	apiBacktraceLimitFlag = cli.Uint64Flag{
		Name:  "api-backtrace-limit",
		Value: 1000,
		Usage: "limit the distance between 'pos' and the latest revision for event subscriptions",
	}
	apiLogsLimitFlag = cli.Uint64Flag{
		Name:  "api-logs-limit",
		Value: 1000,
		Usage: "limit the number of logs returned by /logs API",
	}
	enableAPILogsFlag = cli.BoolFlag{
		Name:  "enable-api-logs",
		Usage: "enables API requests logging",
	}
	pprofFlag = cli.BoolFlag{
		Name:  "pprof",
		Usage: "turn on go-pprof",
	}
	oracleTimeoutFlag = cli.Uint64Flag{
		Name:  "oracle-timeout",
		Value: 5000,
		Usage: "price feed read timeout in milliseconds",
	}
	oracleMaxAgeFlag = cli.Uint64Flag{
		Name:  "oracle-max-age",
		Value: 0,
		Usage: "seconds after which a price feed answer is stale (disabled if set to 0)",
	}
	feedsCheckIntervalFlag = cli.Uint64Flag{
		Name:  "feeds-check-interval",
		Value: 60,
		Usage: "seconds between price feed health checks",
	}

	verbosityFlag = cli.Uint64Flag{
		Name:  "verbosity",
		Value: log.LegacyLevelInfo,
		Usage: "log verbosity (0-5)",
	}
	jsonLogsFlag = cli.BoolFlag{
		Name:  "json-logs",
		Usage: "output logs in JSON format",
	}
	enableMetricsFlag = cli.BoolFlag{
		Name:  "enable-metrics",
		Usage: "enables metrics collection",
	}
	metricsAddrFlag = cli.StringFlag{
		Name:  "metrics-addr",
		Value: "localhost:2112",
		Usage: "metrics service listening address",
	}
	enableAdminFlag = cli.BoolFlag{
		Name:  "enable-admin",
		Usage: "enables admin server",
	}
	adminAddrFlag = cli.StringFlag{
		Name:  "admin-addr",
		Value: "localhost:2113",
		Usage: "admin service listening address",
	}

	// client command flags
	apiURLFlag = cli.StringFlag{
		Name:  "api-url",
		Value: "http://localhost:8669",
		Usage: "API URL of a running farm node",
	}
	accountFlag = cli.StringFlag{
		Name:  "account",
		Usage: "account acting or queried, the deployer if not set",
	}
	tokenFlag = cli.StringFlag{
		Name:  "token",
		Value: "dapp_token",
		Usage: "token address or deployment name",
	}
	amountFlag = cli.StringFlag{
		Name:  "amount",
		Usage: "amount in wei, or whole tokens with the ether unit (e.g. \"10 ether\")",
	}
	spenderFlag = cli.StringFlag{
		Name:  "spender",
		Usage: "address allowed to spend, the farm if not set",
	}
)
