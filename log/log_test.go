// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	ethlog "github.com/ethereum/go-ethereum/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func capture(t *testing.T, lvl int) *bytes.Buffer {
	old := ethlog.Root()
	t.Cleanup(func() { ethlog.SetDefault(old) })

	buf := &bytes.Buffer{}
	var level slog.LevelVar
	level.Set(FromLegacyLevel(lvl))
	SetDefault(NewHandler(buf, true, false, &level))
	return buf
}

func TestWithContextFollowsDefault(t *testing.T) {
	logger := WithContext("pkg", "farm")

	buf := capture(t, LegacyLevelInfo)
	logger.Info("staked", "amount", 1)
	logger.Debug("hidden")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	assert.Equal(t, "staked", rec["msg"])
	assert.Equal(t, "farm", rec["pkg"])
	assert.EqualValues(t, 1, rec["amount"])
}

func TestWith(t *testing.T) {
	buf := capture(t, LegacyLevelTrace)
	WithContext("pkg", "api").With("id", "x").Trace("req")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &rec))
	assert.Equal(t, "api", rec["pkg"])
	assert.Equal(t, "x", rec["id"])
}

func TestVerbosityAtRuntime(t *testing.T) {
	buf := &bytes.Buffer{}
	old := ethlog.Root()
	defer ethlog.SetDefault(old)

	var level slog.LevelVar
	level.Set(LevelWarn)
	SetDefault(NewHandler(buf, true, false, &level))

	Info("dropped")
	assert.Zero(t, buf.Len())

	level.Set(LevelDebug)
	Info("kept")
	assert.Contains(t, buf.String(), "kept")
}

func TestVerbosityFollowsDerivedLoggers(t *testing.T) {
	buf := &bytes.Buffer{}
	old := ethlog.Root()
	defer ethlog.SetDefault(old)

	var level slog.LevelVar
	level.Set(LevelError)
	SetDefault(NewHandler(buf, false, false, &level))

	logger := WithContext("pkg", "ledger")
	logger.Warn("dropped")
	assert.Zero(t, buf.Len())

	level.Set(LevelTrace)
	logger.Trace("kept")
	assert.Contains(t, buf.String(), "kept")
	assert.Contains(t, buf.String(), "pkg=ledger")
}
