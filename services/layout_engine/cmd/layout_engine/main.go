// main.go — Roost Layout Engine service.
// Evaluates companion-screen layouts from a constraint document and the
// current component transaction state, returning the new layout's notPlaced
// list plus the push-notification diff against the context's previous layout.
// Port: 8080 (env: LAYOUT_PORT).
//
// Routes:
//
//	POST   /contexts/{contextId}/evaluate   — run one evaluation, return notPlaced + messages
//	POST   /contexts/{contextId}/simulate   — forced-visibility viable-device probe (§4.7)
//	DELETE /contexts/{contextId}             — drop cached state for a context
//	GET    /healthz                          — liveness probe (no auth)
//	GET    /ready                            — readiness probe (no auth)
//	GET    /metrics                          — Prometheus scrape endpoint (no auth)
package main

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/yourflock/roost/layoutengine/internal/config"
	"github.com/yourflock/roost/layoutengine/internal/handlers"
	"github.com/yourflock/roost/layoutengine/internal/layout"
	"github.com/yourflock/roost/layoutengine/internal/shutdown"
	"github.com/yourflock/roost/layoutengine/pkg/logging"
	"github.com/yourflock/roost/layoutengine/pkg/security"
	"github.com/yourflock/roost/layoutengine/pkg/zerolog"
	"github.com/yourflock/roost/layoutengine/services/layout_engine/internal/manager"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log := logging.NewLogger("layout-engine")

	mgr := manager.New(layout.UUIDSource{})
	h := &handler{cfg: cfg, mgr: mgr, log: log, audit: zerolog.New("layout-engine")}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handlers.Liveness)
	mux.HandleFunc("GET /ready", h.handleReadiness)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("POST /contexts/{contextId}/evaluate", h.handleEvaluate)
	mux.HandleFunc("POST /contexts/{contextId}/simulate", h.handleSimulate)
	mux.HandleFunc("DELETE /contexts/{contextId}", h.handleDropContext)

	var chain http.Handler = mux
	chain = security.RequestID(chain)
	chain = security.RateLimit(100)(chain)
	chain = security.SecurityHeaders(chain)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      chain,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	log.Info("starting layout engine")
	slogger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	if err := shutdown.GracefulServe(srv, 15*time.Second, slogger); err != nil {
		log.WithError(err).Fatal("server exited with error")
	}
}

// handler wires the evaluation manager and process config into the HTTP
// surface — the same cfg+mgr pairing grid_compositor's handler used, minus
// the FFmpeg session shape.
type handler struct {
	cfg   *config.Config
	mgr   *manager.Manager
	log   *logrus.Entry
	audit *zerolog.SafeLogger
}
