// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package admin

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/vechain/tokenfarm/health"
	"github.com/vechain/tokenfarm/log"
)

var levels = map[string]slog.Level{
	"trace": log.LevelTrace,
	"debug": log.LevelDebug,
	"info":  log.LevelInfo,
	"warn":  log.LevelWarn,
	"error": log.LevelError,
	"crit":  log.LevelCrit,
}

// levelName names l the way it's set, slog would print trace as DEBUG-4.
func levelName(l slog.Level) string {
	for name, lvl := range levels {
		if lvl == l {
			return strings.ToUpper(name)
		}
	}
	return l.String()
}

type logLevelRequest struct {
	Level string `json:"level"`
}

type logLevelResponse struct {
	CurrentLevel string `json:"currentLevel"`
}

type errorResponse struct {
	ErrorCode    int    `json:"errorCode"`
	ErrorMessage string `json:"errorMessage"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, errCode int, errMsg string) {
	writeJSON(w, errCode, errorResponse{
		ErrorCode:    errCode,
		ErrorMessage: errMsg,
	})
}

func getLogLevelHandler(logLevel *slog.LevelVar) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, logLevelResponse{CurrentLevel: levelName(logLevel.Level())})
	}
}

func postLogLevelHandler(logLevel *slog.LevelVar) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req logLevelRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		lvl, ok := levels[strings.ToLower(req.Level)]
		if !ok {
			writeError(w, http.StatusBadRequest, "Invalid verbosity level")
			return
		}
		logLevel.Set(lvl)
		writeJSON(w, http.StatusOK, logLevelResponse{CurrentLevel: levelName(logLevel.Level())})
	}
}

// healthHandler responds 503 while unhealthy, with the same body.
func healthHandler(h *health.Health) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		status := h.Status()
		code := http.StatusOK
		if !status.Healthy {
			code = http.StatusServiceUnavailable
		}
		writeJSON(w, code, status)
	}
}
