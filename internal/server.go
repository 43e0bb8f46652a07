package internal

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/2beens/gymplan/internal/auth"
	"github.com/2beens/gymplan/internal/config"
	"github.com/2beens/gymplan/internal/middleware"
	"github.com/2beens/gymplan/internal/plans"
	"github.com/2beens/gymplan/internal/telemetry/metrics"
	"github.com/2beens/gymplan/internal/telemetry/tracing"
	"github.com/2beens/gymplan/pkg"

	"github.com/getsentry/sentry-go"
	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
)

type Server struct {
	httpServer        *http.Server
	metricsHttpServer *http.Server
	versionInfo       string
	signupAccessKey   string // provisioning secret gating signups

	config     *config.Config
	plansStore *plans.Store

	redisClient *redis.Client
	authService *auth.Service

	// telemetry
	metricsManager *metrics.Manager
	promRegistry   *prometheus.Registry
	otelShutdown   func()
}

type NewServerParams struct {
	Config          *config.Config
	RedisPassword   string
	SignupAccessKey string
	VersionInfo     string
}

func NewServer(
	ctx context.Context,
	params NewServerParams,
) (*Server, error) {
	promRegistry := metrics.SetupPrometheus()
	metricsManager := metrics.NewManager("gymplan", "main", promRegistry)

	rdb := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(params.Config.RedisHost, params.Config.RedisPort),
		Password: params.RedisPassword,
		DB:       0, // use default DB
	})

	rdbStatus := rdb.Ping(ctx)
	if err := rdbStatus.Err(); err != nil {
		log.Errorf("--> failed to ping redis: %s", err)
	} else {
		log.Debugf("redis ping: %s", rdbStatus.Val())
	}

	plansStore := plans.NewStore()
	if params.Config.SnapshotPath != "" {
		snapshotExists, err := pkg.PathExists(params.Config.SnapshotPath, false)
		if err != nil {
			return nil, fmt.Errorf("check snapshot file: %w", err)
		}
		if snapshotExists {
			if err := plansStore.LoadFromFile(params.Config.SnapshotPath); err != nil {
				return nil, fmt.Errorf("load snapshot: %w", err)
			}
			log.Debugf("plans snapshot loaded from: %s", params.Config.SnapshotPath)
		}
	}

	authService := auth.NewService(plansStore, params.Config.SessionTTL(), rdb)

	otelShutdown, err := tracing.Setup(params.Config.TracingEnabled, "gymplan-backend")
	if err != nil {
		return nil, err
	}

	return &Server{
		config:          params.Config,
		versionInfo:     params.VersionInfo,
		signupAccessKey: params.SignupAccessKey,

		plansStore: plansStore,

		redisClient: rdb,
		authService: authService,

		// telemetry
		metricsManager: metricsManager,
		promRegistry:   promRegistry,
		otelShutdown:   otelShutdown,
	}, nil
}

func (s *Server) routerSetup() *mux.Router {
	r := mux.NewRouter()
	r.Use(otelmux.Middleware("main-router"))

	authHandler := auth.NewHandler(s.authService, s.metricsManager, s.signupAccessKey)
	authHandler.SetupRoutes(r)

	plansHandler := plans.NewHandler(s.plansStore, s.metricsManager)
	plansHandler.SetupRoutes(r)

	r.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		pkg.WriteTextResponseOK(w, "I'm OK, thanks")
	}).Methods("GET", "OPTIONS").Name("root")
	r.HandleFunc("/version", func(w http.ResponseWriter, r *http.Request) {
		pkg.WriteTextResponseOK(w, s.versionInfo)
	}).Methods("GET", "OPTIONS").Name("version")

	// all the rest - unhandled paths
	r.HandleFunc("/{unknown}", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}).Methods("GET", "POST", "PUT", "DELETE", "OPTIONS").Name("unknown")

	authMiddleware := middleware.NewAuthMiddlewareHandler(s.authService)

	r.Use(middleware.PanicRecovery(s.metricsManager))
	r.Use(middleware.LogRequest())
	r.Use(middleware.RequestMetrics(s.metricsManager))
	r.Use(middleware.Cors())
	r.Use(authMiddleware.AuthCheck())
	r.Use(middleware.DrainAndCloseRequest())

	return r
}

func (s *Server) Serve(host string, port int) {
	router := s.routerSetup()

	ipAndPort := net.JoinHostPort(host, strconv.Itoa(port))
	s.httpServer = &http.Server{
		Handler:      router,
		Addr:         ipAndPort,
		WriteTimeout: time.Minute,
		ReadTimeout:  time.Minute,
		ConnState:    s.connStateMetrics,
	}

	metricsRouter := mux.NewRouter()
	metricsRouter.Handle("/metrics", promhttp.HandlerFor(
		s.promRegistry,
		promhttp.HandlerOpts{},
	))
	metricsAddr := net.JoinHostPort(s.config.PrometheusMetricsHost, s.config.PrometheusMetricsPort)
	s.metricsHttpServer = &http.Server{
		Addr:    metricsAddr,
		Handler: metricsRouter,
	}

	go func() {
		log.Infof(" > server listening on: [%s]", ipAndPort)
		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("main service, listen and serve: %s", err)
		}
	}()

	go func() {
		log.Debugf(" > metrics listening on: [%s]", metricsAddr)
		err := s.metricsHttpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("metrics service, listen and serve: %s", err)
		}
	}()

	s.metricsManager.GaugeLifeSignal.Set(1)
}

func (s *Server) GracefulShutdown() {
	log.Debug("graceful shutdown initiated ...")

	s.metricsManager.GaugeLifeSignal.Set(0)

	s.otelShutdown()
	log.Trace("otel shut down ...")

	if s.config.SnapshotPath != "" {
		if err := s.plansStore.SaveToFile(s.config.SnapshotPath); err != nil {
			log.Errorf("failed to save plans snapshot: %s", err)
		} else {
			log.Debugf("plans snapshot saved to: %s", s.config.SnapshotPath)
		}
	}

	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			log.Errorf("failed to close redis client conn: %s", err)
		}
	}

	if ok := sentry.Flush(5 * time.Second); ok {
		log.Debugf("sentry flush ok: %t", ok)
	}

	maxWaitDuration := time.Second * 15
	ctx, timeoutCancel := context.WithTimeout(context.Background(), maxWaitDuration)
	defer timeoutCancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		log.Error(" >>> failed to gracefully shutdown http server")
	}
	log.Warnln("server shut down")

	if err := s.metricsHttpServer.Shutdown(ctx); err != nil {
		log.Error(" >>> failed to gracefully shutdown metrics http server")
	}
	log.Warnln("metrics server shut down")
}

func (s *Server) connStateMetrics(_ net.Conn, state http.ConnState) {
	switch state {
	case http.StateNew:
		s.metricsManager.GaugeRequests.Add(1)
	case http.StateClosed:
		s.metricsManager.GaugeRequests.Add(-1)
	default:
		// do nothing
	}
}
