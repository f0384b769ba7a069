// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

//go:build linux

package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleProcIO = `rchar: 4012
wchar: 1733
syscr: 12
syscw: 7
read_bytes: 8192
write_bytes: 4096
cancelled_write_bytes: 0
bogus: line: here
`

func TestParseProcIO(t *testing.T) {
	values, err := parseProcIO(strings.NewReader(sampleProcIO))
	require.NoError(t, err)
	assert.Equal(t, uint64(12), values["syscr"])
	assert.Equal(t, uint64(4096), values["write_bytes"])
	assert.NotContains(t, values, "bogus")
}

func TestStoreIOCollector(t *testing.T) {
	path := filepath.Join(t.TempDir(), "io")
	require.NoError(t, os.WriteFile(path, []byte(sampleProcIO), 0o600))

	c := &storeIOCollector{path: path, descs: newStoreIOCollector(0).descs}
	reg := prometheus.NewPedanticRegistry()
	require.NoError(t, reg.Register(c))

	expected := `
# HELP farm_store_read_bytes_total Bytes the farm process fetched from storage.
# TYPE farm_store_read_bytes_total counter
farm_store_read_bytes_total 8192
# HELP farm_store_write_syscalls_total Write syscalls issued by the farm process.
# TYPE farm_store_write_syscalls_total counter
farm_store_write_syscalls_total 7
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"farm_store_read_bytes_total", "farm_store_write_syscalls_total"))

	// a missing file yields no samples
	c.path = filepath.Join(t.TempDir(), "missing")
	assert.Equal(t, 0, testutil.CollectAndCount(c))
}
