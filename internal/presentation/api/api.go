package api

import (
	"context"
	"errors"
	"expvar"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/nortavo/dispatch/internal/infrastructure/configs"
	"github.com/nortavo/dispatch/internal/infrastructure/logging"
	"github.com/nortavo/dispatch/internal/infrastructure/ratelimiter"
	healthHandler "github.com/nortavo/dispatch/internal/presentation/handler/health"
	ordersHandler "github.com/nortavo/dispatch/internal/presentation/handler/orders"
	realtimeHandler "github.com/nortavo/dispatch/internal/presentation/handler/realtime"
	ridesHandler "github.com/nortavo/dispatch/internal/presentation/handler/rides"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type Application struct {
	config          configs.Config
	ridesHandler    *ridesHandler.Handler
	ordersHandler   *ordersHandler.Handler
	realtimeHandler *realtimeHandler.Handler
	healthHandler   *healthHandler.Handler
	logger          logging.Logger
	ratelimiter     ratelimiter.Limiter
}

func NewApplication(
	config configs.Config,
	ridesHandler *ridesHandler.Handler,
	ordersHandler *ordersHandler.Handler,
	realtimeHandler *realtimeHandler.Handler,
	healthHandler *healthHandler.Handler,
	logger logging.Logger,
	ratelimiter ratelimiter.Limiter,
) *Application {
	return &Application{
		config:          config,
		ridesHandler:    ridesHandler,
		ordersHandler:   ordersHandler,
		realtimeHandler: realtimeHandler,
		healthHandler:   healthHandler,
		logger:          logger,
		ratelimiter:     ratelimiter,
	}
}

func (app *Application) Mount() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Use(app.loggerMiddleware)
	r.Use(app.prometheusMiddleware)
	r.Use(app.enableCors)

	r.Route("/api", func(r chi.Router) {
		// Long-lived websocket connections must not run under the request
		// timeout, so the realtime route sits outside the v1 group.
		r.Get("/realtime", app.realtimeHandler.ConnectHandler)

		r.Get("/health", app.healthHandler.GetHealth)
		r.Get("/healthz", app.healthHandler.GetHealth)
		r.Get("/live", app.healthHandler.GetHealth)
		r.Get("/ready", app.healthHandler.GetReadiness)

		r.Route("/v1", func(r chi.Router) {
			r.Use(middleware.Timeout(60 * time.Second))
			r.Use(app.rateLimiterMiddleware)

			r.Route("/rides", func(r chi.Router) {
				r.Post("/", app.ridesHandler.CreateRideHandler)
				r.Get("/{rideId}", app.ridesHandler.GetRideHandler)
				r.Patch("/{rideId}/status", app.ridesHandler.UpdateRideStatusHandler)
			})

			r.Route("/orders", func(r chi.Router) {
				r.Post("/", app.ordersHandler.CreateOrderHandler)
				r.Get("/{orderId}", app.ordersHandler.GetOrderHandler)
				r.Patch("/{orderId}/status", app.ordersHandler.UpdateOrderStatusHandler)
			})
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	r.Handle("/debug/vars", expvar.Handler())

	return otelhttp.NewHandler(r, "dispatch-api")
}

func (app *Application) Run(mux http.Handler) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", app.config.HTTP.Host, app.config.HTTP.Port),
		Handler:      mux,
		WriteTimeout: app.config.HTTP.WriteTimeout,
		ReadTimeout:  app.config.HTTP.ReadTimeout,
		IdleTimeout:  time.Minute,
	}

	shutdown := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)

		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		app.logger.Info(logging.General, logging.Shutdown, "signal caught", map[logging.ExtraKey]any{
			"signal": s.String(),
		})

		shutdown <- srv.Shutdown(ctx)
	}()

	app.logger.Info(logging.General, logging.Startup, "server has started", map[logging.ExtraKey]any{
		"addr": srv.Addr,
	})

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdown
	if err != nil {
		return err
	}

	app.logger.Info(logging.General, logging.Shutdown, "server has stopped", map[logging.ExtraKey]any{
		"addr": srv.Addr,
	})

	return nil
}
