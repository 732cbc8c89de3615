package velibdata

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Karim-DataScience/JeVelibererLaData/config"
)

// API serves the read-query endpoints over the relational store. The
// ingestion pipeline never goes through it; conflict-tolerant writes on the
// ETL side are what make the two workloads safe to run side by side.
type API struct {
	db     *sql.DB
	cfg    config.APIConfig
	log    *logrus.Logger
	server *http.Server
}

func NewAPI(db *sql.DB, cfg config.APIConfig, log *logrus.Logger) *API {
	return &API{db: db, cfg: cfg, log: log}
}

// Routes builds the request multiplexer.
func (a *API) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", a.handleHealth)

	mux.HandleFunc("GET /api/v1/dimensions/stations", a.handleListStations)
	mux.HandleFunc("GET /api/v1/dimensions/stations/{code}", a.handleGetStation)
	mux.HandleFunc("POST /api/v1/dimensions/stations", a.requireAPIKey(a.handleUpsertStation))
	mux.HandleFunc("DELETE /api/v1/dimensions/stations/{code}", a.requireAPIKey(a.handleDeleteStation))
	mux.HandleFunc("GET /api/v1/dimensions/velos", a.handleListVelos)
	mux.HandleFunc("GET /api/v1/dimensions/velos/{name}", a.handleGetVelo)

	mux.HandleFunc("GET /api/v1/facts/etats", a.handleListEtats)

	mux.HandleFunc("GET /api/v1/analysis/trajets", a.handleListTrajets)
	mux.HandleFunc("GET /api/v1/analysis/trajets/stats", a.handleTrajetStats)
	mux.HandleFunc("GET /api/v1/analysis/trajets/by-day", a.handleTrajetsByDay)
	mux.HandleFunc("GET /api/v1/analysis/stations/traffic", a.handleStationTraffic)
	mux.HandleFunc("GET /api/v1/analysis/velos/top", a.handleTopVelos)

	return mux
}

// StartServer begins serving in the background.
func (a *API) StartServer() {
	addr := fmt.Sprintf(":%d", a.cfg.Port)
	a.server = &http.Server{
		Addr:              addr,
		Handler:           a.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	go func() {
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.log.WithError(err).Fatal("server error")
		}
	}()
	a.log.WithField("addr", addr).Info("server listening")
}

// HandleGracefulShutdown blocks until SIGINT/SIGTERM, then drains the server.
func (a *API) HandleGracefulShutdown() {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	a.log.Info("shutdown signal received")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if a.server != nil {
		if err := a.server.Shutdown(ctx); err != nil {
			a.log.WithError(err).Error("server shutdown error")
		} else {
			a.log.Info("server shut down successfully")
		}
	}
}
