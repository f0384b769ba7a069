// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

//go:build linux

package metrics

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
)

// storeIOCounters are the /proc/<pid>/io fields exported as farm_store_* counters.
// Nearly all of the farm's disk traffic is leveldb state and the sqlite event history.
var storeIOCounters = []struct {
	field string
	name  string
	help  string
}{
	{"syscr", "read_syscalls_total", "Read syscalls issued by the farm process."},
	{"syscw", "write_syscalls_total", "Write syscalls issued by the farm process."},
	{"read_bytes", "read_bytes_total", "Bytes the farm process fetched from storage."},
	{"write_bytes", "write_bytes_total", "Bytes the farm process sent to storage."},
}

// storeIOCollector exports the storage counters of a process.
type storeIOCollector struct {
	path  string
	descs []*prometheus.Desc
}

func newStoreIOCollector(pid int) *storeIOCollector {
	c := &storeIOCollector{path: fmt.Sprintf("/proc/%d/io", pid)}
	for _, counter := range storeIOCounters {
		c.descs = append(c.descs, prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "store", counter.name), counter.help, nil, nil))
	}
	return c
}

func (c *storeIOCollector) Describe(ch chan<- *prometheus.Desc) {
	for _, d := range c.descs {
		ch <- d
	}
}

func (c *storeIOCollector) Collect(ch chan<- prometheus.Metric) {
	f, err := os.Open(c.path)
	if err != nil {
		return
	}
	defer f.Close()

	values, err := parseProcIO(f)
	if err != nil {
		logger.Debug("failed to read process io", "path", c.path, "err", err)
		return
	}
	for i, counter := range storeIOCounters {
		if v, ok := values[counter.field]; ok {
			ch <- prometheus.MustNewConstMetric(c.descs[i], prometheus.CounterValue, float64(v))
		}
	}
}

// parseProcIO reads "field: value" lines, skipping malformed ones.
func parseProcIO(r io.Reader) (map[string]uint64, error) {
	values := make(map[string]uint64)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		field, value, ok := strings.Cut(scanner.Text(), ":")
		if !ok {
			continue
		}
		v, err := strconv.ParseUint(strings.TrimSpace(value), 10, 64)
		if err != nil {
			continue
		}
		values[strings.TrimSpace(field)] = v
	}
	return values, scanner.Err()
}

var storeIORegistered atomic.Bool

func registerIOCollector() {
	if storeIORegistered.CompareAndSwap(false, true) {
		prometheus.MustRegister(newStoreIOCollector(os.Getpid()))
	}
}
