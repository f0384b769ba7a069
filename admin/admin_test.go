// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package admin

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/tokenfarm/health"
	"github.com/vechain/tokenfarm/log"
)

func serve(t *testing.T, logLevel *slog.LevelVar, h *health.Health, method, path string, body []byte) *httptest.ResponseRecorder {
	req, err := http.NewRequest(method, path, bytes.NewReader(body))
	require.NoError(t, err)
	rr := httptest.NewRecorder()
	HTTPHandler(logLevel, h).ServeHTTP(rr, req)
	return rr
}

func TestPostLogLevel(t *testing.T) {
	tests := []struct {
		body  string
		code  int
		level slog.Level
		name  string
	}{
		{`{"level":"debug"}`, http.StatusOK, log.LevelDebug, "DEBUG"},
		{`{"level":"TRACE"}`, http.StatusOK, log.LevelTrace, "TRACE"},
		{`{"level":"crit"}`, http.StatusOK, log.LevelCrit, "CRIT"},
		{`{"level":"invalid_body"}`, http.StatusBadRequest, log.LevelInfo, ""},
		{`not json`, http.StatusBadRequest, log.LevelInfo, ""},
	}

	for _, tt := range tests {
		t.Run(tt.body, func(t *testing.T) {
			var logLevel slog.LevelVar
			logLevel.Set(log.LevelInfo)

			rr := serve(t, &logLevel, &health.Health{}, http.MethodPost, "/admin/loglevel", []byte(tt.body))
			assert.Equal(t, tt.code, rr.Code)
			assert.Equal(t, tt.level, logLevel.Level())

			if tt.code == http.StatusOK {
				var res logLevelResponse
				require.NoError(t, json.NewDecoder(rr.Body).Decode(&res))
				assert.Equal(t, tt.name, res.CurrentLevel)
			} else {
				var res errorResponse
				require.NoError(t, json.NewDecoder(rr.Body).Decode(&res))
				assert.Equal(t, tt.code, res.ErrorCode)
			}
		})
	}
}

func TestGetLogLevel(t *testing.T) {
	var logLevel slog.LevelVar
	logLevel.Set(log.LevelWarn)

	rr := serve(t, &logLevel, &health.Health{}, http.MethodGet, "/admin/loglevel", nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	var res logLevelResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&res))
	assert.Equal(t, "WARN", res.CurrentLevel)

	rr = serve(t, &logLevel, &health.Health{}, http.MethodDelete, "/admin/loglevel", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestHealth(t *testing.T) {
	var logLevel slog.LevelVar
	h := &health.Health{}

	rr := serve(t, &logLevel, h, http.MethodGet, "/admin/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)

	h.NewCommit(3)
	h.FeedsChecked(nil)
	rr = serve(t, &logLevel, h, http.MethodGet, "/admin/health", nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	var status health.Status
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&status))
	assert.True(t, status.Healthy)
	assert.Equal(t, uint64(3), status.LastCommit.Revision)

	h.FeedsChecked(errors.New("feed down"))
	rr = serve(t, &logLevel, h, http.MethodGet, "/admin/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Contains(t, rr.Body.String(), "feed down")
}

func TestStartServer(t *testing.T) {
	var logLevel slog.LevelVar
	url, closer, err := StartServer("127.0.0.1:0", &logLevel, &health.Health{})
	require.NoError(t, err)
	defer closer()

	resp, err := http.Get(url + "/loglevel")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
