package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/gorilla/mux"

	"rdioactivity/internal/config"
	"rdioactivity/internal/handlers"
	"rdioactivity/internal/logging"
	"rdioactivity/internal/metrics"
	"rdioactivity/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load: %v\n", err)
		os.Exit(1)
	}
	log := logging.New(cfg.Logging)

	// Build service
	builder := service.NewServiceBuilder(cfg, log)
	svc, err := builder.Build()
	if err != nil {
		log.Fatal().Err(err).Msg("service build failed")
	}
	defer svc.Close()

	// Router
	r := mux.NewRouter()
	ah := handlers.NewActivityHandler(svc, log, cfg.Service.TrackTalkgroupVisitors)
	r.HandleFunc("/api/active-units", ah.ActiveUnits).Methods(http.MethodGet, http.MethodOptions)
	r.HandleFunc("/api/active-talkgroups", ah.ActiveTalkgroups).Methods(http.MethodGet, http.MethodOptions)
	r.HandleFunc("/api/status", ah.Status).Methods(http.MethodGet, http.MethodOptions)

	hh := handlers.NewHealthHandler(svc)
	r.HandleFunc("/healthz", hh.Liveness).Methods(http.MethodGet)
	r.HandleFunc("/readyz", hh.Readiness).Methods(http.MethodGet)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	// Middlewares: metrics inside, CORS outside
	var handler http.Handler = r
	handler = metrics.Middleware(handler, svc)
	handler = handlers.CORSMiddleware(handler)

	addr := fmt.Sprintf(":%d", cfg.Service.Port)
	log.Info().Str("addr", addr).Str("db", cfg.Store.Path).Msg("starting activity-service")
	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Fatal().Err(err).Msg("listen failed")
	}
}
