package restserver

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/chrissnell/glacierpost/internal/glacier"
	"github.com/chrissnell/glacierpost/internal/log"
	"github.com/chrissnell/glacierpost/internal/metrics"
	"github.com/chrissnell/glacierpost/pkg/config"
)

// Reader produces the post-processed tables served by the API
type Reader interface {
	Glaciers() []config.GlacierData
	RunResults(rgiID, suffix string) (*glacier.RunResults, error)
	ClimateStatistics(rgiID string) (*glacier.ClimateStatistics, error)
}

// Controller represents the REST server controller
type Controller struct {
	ctx        context.Context
	wg         *sync.WaitGroup
	restConfig config.RESTServerData
	Server     http.Server
	reader     Reader
	logger     *zap.SugaredLogger
	handlers   *Handlers
}

// NewController creates a new REST server controller
func NewController(ctx context.Context, wg *sync.WaitGroup, reader Reader, rc config.RESTServerData, logger *zap.SugaredLogger) (*Controller, error) {
	if reader == nil {
		return nil, fmt.Errorf("REST server requires a table reader")
	}

	ctrl := &Controller{
		ctx:        ctx,
		wg:         wg,
		restConfig: rc,
		reader:     reader,
		logger:     logger,
	}

	// If a ListenAddr was not provided, listen on all interfaces
	if rc.ListenAddr == "" {
		logger.Info("rest.listen_addr not provided; defaulting to 0.0.0.0 (all interfaces)")
		rc.ListenAddr = config.DefaultListenAddr
	}

	if rc.Port == 0 {
		logger.Infof("rest.port not provided; defaulting to %d", config.DefaultPort)
		rc.Port = config.DefaultPort
	}
	ctrl.restConfig = rc

	ctrl.handlers = NewHandlers(ctrl)

	ctrl.Server.Addr = fmt.Sprintf("%v:%v", rc.ListenAddr, rc.Port)
	ctrl.Server.Handler = handlers.RecoveryHandler(
		handlers.RecoveryLogger(zap.NewStdLog(log.GetZapLogger())),
		handlers.PrintRecoveryStack(true),
	)(ctrl.setupRouter())
	ctrl.Server.ReadHeaderTimeout = 10 * time.Second

	return ctrl, nil
}

// StartController starts the REST server
func (c *Controller) StartController() error {
	log.Infof("Starting REST server on %s...", c.Server.Addr)
	c.wg.Add(1)

	go func() {
		defer c.wg.Done()

		if err := c.Server.ListenAndServe(); err != http.ErrServerClosed {
			log.Errorf("REST server error: %v", err)
		}
	}()

	go func() {
		<-c.ctx.Done()
		log.Info("Shutting down the REST server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		c.Server.Shutdown(shutdownCtx)
	}()

	return nil
}

// Handler returns the wrapped router, for embedding or testing
func (c *Controller) Handler() http.Handler {
	return c.Server.Handler
}

// setupRouter configures the HTTP router with all endpoints
func (c *Controller) setupRouter() *mux.Router {
	router := mux.NewRouter()
	router.Use(c.metricsMiddleware)

	router.HandleFunc("/healthz", c.handlers.Healthz).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	router.HandleFunc("/glaciers", c.handlers.ListGlaciers).Methods(http.MethodGet)
	router.HandleFunc("/glaciers/{rgi}/run-results", c.handlers.GetRunResults).Methods(http.MethodGet)
	router.HandleFunc("/glaciers/{rgi}/climate-statistics", c.handlers.GetClimateStatistics).Methods(http.MethodGet)
	router.HandleFunc("/convert/ice-to-freshwater", c.handlers.ConvertIceToFreshwater).Methods(http.MethodGet)

	router.NotFoundHandler = http.HandlerFunc(c.handlers.NotFound)

	return router
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// metricsMiddleware counts requests per route template and status code
func (c *Controller) metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := "unmatched"
		if cr := mux.CurrentRoute(r); cr != nil {
			if tmpl, err := cr.GetPathTemplate(); err == nil {
				route = tmpl
			}
		}

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		metrics.HTTPRequests.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()
		metrics.HTTPDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
		c.logger.Debugw("request", "method", r.Method, "route", route, "status", rec.status,
			"duration", time.Since(start))
	})
}
