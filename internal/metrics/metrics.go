// Copyright 2026 The Mirrorfs Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package metrics exposes the engine's counters to Prometheus: one counter
// of operations fanned out, labeled by operation name, and one counter of
// divergences observed by the equivalence checker, labeled by operation
// name and divergence class.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/1movmedia/mirrorfs/internal/logger"
)

var (
	// Operations counts every fanned-out call, by operation name.
	Operations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mirrorfs_operations_total",
		Help: "Number of filesystem operations fanned out across replicas, by operation.",
	}, []string{"op"})

	// Divergences counts every comparison the equivalence checker found to
	// disagree, by operation name and divergence class.
	Divergences = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mirrorfs_divergences_total",
		Help: "Number of cross-replica divergences observed, by operation and class.",
	}, []string{"op", "class"})
)

// Divergence classes, matching the three failure classes of the comparison
// policy: a configurable scalar/errno mismatch, an always-fatal payload
// mismatch, and an always-fatal internal invariant violation.
const (
	ClassMismatch = "mismatch"
	ClassPayload  = "payload"
	ClassFatal    = "fatal"
)

// Server serves the process's metrics over HTTP. Its Serve method blocks
// until its context is cancelled; if the listener cannot be started (for
// example because the address is already in use), Serve logs the error and
// returns.
type Server struct {
	httpServer *http.Server
}

// NewServer constructs (but does not start) a metrics HTTP server bound to
// addr, serving the default Prometheus registry at /metrics.
func NewServer(addr string) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return &Server{httpServer: &http.Server{Addr: addr, Handler: mux}}
}

// Serve runs the metrics listener until ctx is cancelled, then shuts it
// down gracefully. It is meant to be run in its own goroutine.
func (s *Server) Serve(ctx context.Context) {
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warnf("metrics: shutdown: %v", err)
		}
	}()

	logger.Infof("metrics: listening on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Errorf("metrics: serve: %v", err)
	}
}
