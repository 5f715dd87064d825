// Package net assembles the HTTP surface of the server.
package net

import (
	"encoding/json"
	"log"
	nethttp "net/http"
	"time"

	"github.com/sportsracer/repman/internal/hub"
	"github.com/sportsracer/repman/internal/net/ws"
	"github.com/sportsracer/repman/internal/telemetry"
	"github.com/sportsracer/repman/logging"
)

type HTTPHandlerConfig struct {
	Logger telemetry.Logger
	// Counters backs the telemetry block of /diagnostics when set.
	Counters *telemetry.Counters
	// RouterStats reports logging router throughput when set.
	RouterStats func() logging.RouterStats
	SendBuffer  int
}

func NewHTTPHandler(h *hub.Hub, cfg HTTPHandlerConfig) nethttp.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = telemetry.WrapLogger(log.Default())
	}

	mux := nethttp.NewServeMux()

	mux.HandleFunc("/health", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("ok"))
	})

	mux.HandleFunc("/diagnostics", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		payload := struct {
			Status     string               `json:"status"`
			ServerTime int64                `json:"serverTime"`
			Hub        hub.Diagnostics      `json:"hub"`
			Telemetry  map[string]uint64    `json:"telemetry,omitempty"`
			Logging    *logging.RouterStats `json:"logging,omitempty"`
		}{
			Status:     "ok",
			ServerTime: time.Now().UnixMilli(),
			Hub:        h.Diagnostics(),
			Telemetry:  cfg.Counters.Snapshot(),
		}
		if cfg.RouterStats != nil {
			stats := cfg.RouterStats()
			payload.Logging = &stats
		}

		data, err := json.Marshal(payload)
		if err != nil {
			logger.Printf("failed to encode diagnostics: %v", err)
			httpError(w, "failed to encode", nethttp.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
	})

	wsHandler := ws.NewHandler(h, ws.HandlerConfig{Logger: logger, SendBuffer: cfg.SendBuffer})
	mux.HandleFunc("/ws", wsHandler.Handle)

	return mux
}

func httpError(w nethttp.ResponseWriter, msg string, code int) {
	nethttp.Error(w, msg, code)
}
