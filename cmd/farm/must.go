// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/elastic/gosigar"
	"github.com/ethereum/go-ethereum/common/fdlimit"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/tokenfarm/deploy"
	"github.com/vechain/tokenfarm/ledger"
	"github.com/vechain/tokenfarm/log"
	"github.com/vechain/tokenfarm/logdb"
	"github.com/vechain/tokenfarm/lvldb"
	"github.com/vechain/tokenfarm/metrics"
	"github.com/vechain/tokenfarm/oracle"
	"github.com/vechain/tokenfarm/thor"
)

func handleExitSignal() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		exitSignalCh := make(chan os.Signal, 1)
		signal.Notify(exitSignalCh, os.Interrupt, syscall.SIGTERM)

		sig := <-exitSignalCh
		logger.Info("exit signal received", "signal", sig)
		cancel()
	}()
	return ctx
}

func readIntFromUInt64Flag(val uint64) (int, error) {
	if val > math.MaxInt {
		return 0, fmt.Errorf("value %d exceeds max int", val)
	}
	return int(val), nil
}

// initLogger installs the default handler, its level can be changed later through the returned var.
func initLogger(ctx *cli.Context) *slog.LevelVar {
	verbosity := ctx.Uint64(verbosityFlag.Name)
	if verbosity > log.LegacyLevelTrace {
		verbosity = log.LegacyLevelTrace
	}
	var level slog.LevelVar
	level.Set(log.FromLegacyLevel(int(verbosity)))

	json := ctx.Bool(jsonLogsFlag.Name)
	color := !json && os.Getenv("TERM") != "dumb" &&
		(isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()))
	log.SetDefault(log.NewHandler(os.Stderr, json, color, &level))
	return &level
}

func initMetrics(ctx *cli.Context) {
	if ctx.Bool(enableMetricsFlag.Name) {
		metrics.InitializePrometheusMetrics()
	}
}

func oracleOptions(ctx *cli.Context) oracle.Options {
	return oracle.Options{
		Timeout: time.Duration(ctx.Uint64(oracleTimeoutFlag.Name)) * time.Millisecond,
		MaxAge:  time.Duration(ctx.Uint64(oracleMaxAgeFlag.Name)) * time.Second,
	}
}

func makeDataDir(ctx *cli.Context) (string, error) {
	dataDir := ctx.String(dataDirFlag.Name)
	if dataDir == "" {
		return "", errors.Errorf("unable to infer default data dir, use -%s to specify", dataDirFlag.Name)
	}
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return "", errors.Wrapf(err, "create data dir [%v]", dataDir)
	}
	return dataDir, nil
}

func makeInstanceDir(ctx *cli.Context, network string) (string, error) {
	dataDir, err := makeDataDir(ctx)
	if err != nil {
		return "", err
	}
	instanceDir := filepath.Join(dataDir, "instance-"+network)
	if err := os.MkdirAll(instanceDir, 0o700); err != nil {
		return "", errors.Wrapf(err, "create instance dir [%v]", instanceDir)
	}
	return instanceDir, nil
}

func openMainDB(ctx *cli.Context, dir string) (*lvldb.LevelDB, error) {
	cache, err := readIntFromUInt64Flag(ctx.Uint64(cacheFlag.Name))
	if err != nil {
		return nil, errors.Wrap(err, "cache")
	}
	cacheMB := normalizeCacheSize(cache)
	logger.Debug("cache size(MB)", "size", cacheMB)

	// Ensure Go's GC ignores the database cache for trigger percentage
	gogc := math.Max(20, math.Min(100, 100/(float64(cacheMB)/1024)))
	logger.Debug("sanitize Go's GC trigger", "percent", int(gogc))
	debug.SetGCPercent(int(gogc))

	fdCache := suggestFDCache()
	logger.Debug("fd cache", "n", fdCache)

	path := filepath.Join(dir, "main.db")
	db, err := lvldb.New(path, lvldb.Options{
		CacheSize:              cacheMB,
		OpenFilesCacheCapacity: fdCache,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "open main database [%v]", path)
	}
	return db, nil
}

func normalizeCacheSize(sizeMB int) int {
	if sizeMB < 16 {
		sizeMB = 16
	}

	var mem gosigar.Mem
	if err := mem.Get(); err != nil {
		logger.Warn("failed to get total mem:", "err", err)
	} else {
		// limit to 1/2 os physical ram
		limitMB := int(mem.Total / 1024 / 1024 / 2)
		if sizeMB > limitMB {
			sizeMB = limitMB
			logger.Warn("cache size(MB) limited", "limit", limitMB)
		}
	}
	return sizeMB
}

func suggestFDCache() int {
	limit, err := fdlimit.Current()
	if err != nil {
		logger.Warn("failed to get fd limit", "err", err)
		return 500
	}
	if limit <= 1024 {
		logger.Warn("low fd limit, increase it if possible", "limit", limit)
	}

	n := limit / 2
	if n > 5120 {
		return 5120
	}
	return n
}

func openMemMainDB() (*lvldb.LevelDB, error) {
	db, err := lvldb.NewMem()
	if err != nil {
		return nil, errors.Wrap(err, "open main database")
	}
	return db, nil
}

func openLogDB(dir string) (*logdb.LogDB, error) {
	path := filepath.Join(dir, "logs.db")
	db, err := logdb.New(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open log database [%v]", path)
	}
	return db, nil
}

func openSoloLogDB(ctx *cli.Context, dir string) (*logdb.LogDB, error) {
	if ctx.Bool(persistFlag.Name) {
		return openLogDB(dir)
	}
	db, err := logdb.NewMem()
	if err != nil {
		return nil, errors.Wrap(err, "open log database")
	}
	return db, nil
}

func orNone(url string) string {
	if url == "" {
		return "disabled"
	}
	return url
}

// makeName formats the node identity as name/version/os-arch/go-version.
func makeName(name string) string {
	return fmt.Sprintf("%s/%s/%s-%s/%s", name, fullVersion(), runtime.GOOS, runtime.GOARCH, runtime.Version())
}

func printStartupMessage(l *ledger.Ledger, instanceDir, apiURL, metricsURL, adminURL string) {
	d := l.Deployment()
	rev, _ := l.Revision()

	name := "Farm"
	if l.IsSolo() {
		name = "Farm solo"
	}
	info := fmt.Sprintf(`Starting %v
    Network      [ %v ]
    Farm         [ %v ]
    Reward token [ %v ]
    Deployed     [ %v @%v ]
    Revision     [ %v ]
    Instance dir [ %v ]
    API portal   [ %v ]
    Metrics      [ %v ]
    Admin        [ %v ]
`,
		makeName(name),
		d.Network,
		d.Farm,
		d.RewardToken,
		d.Deployer, time.Unix(int64(d.Time), 0),
		rev,
		instanceDir,
		apiURL,
		orNone(metricsURL),
		orNone(adminURL))

	if l.IsSolo() {
		tableHead := `
┌────────────────────────────────────────────┬────────────────────────────────────────────────────────────────────┐
│                   Address                  │                             Private Key                            │`
		tableContent := `
├────────────────────────────────────────────┼────────────────────────────────────────────────────────────────────┤
│ %v │ %v │`
		tableEnd := `
└────────────────────────────────────────────┴────────────────────────────────────────────────────────────────────┘`

		info += tableHead
		for _, a := range deploy.DevAccounts() {
			info += fmt.Sprintf(tableContent,
				a.Address,
				thor.BytesToBytes32(crypto.FromECDSA(a.PrivateKey)),
			)
		}
		info += tableEnd + "\r\n"
	}
	fmt.Print(info)
}
