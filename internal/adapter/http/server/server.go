package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Temutjin2k/campus-radar/config"
	"github.com/Temutjin2k/campus-radar/internal/adapter/http/handler"
	"github.com/Temutjin2k/campus-radar/internal/adapter/http/middleware"
	"github.com/Temutjin2k/campus-radar/pkg/logger"
	wrap "github.com/Temutjin2k/campus-radar/pkg/logger/wrapper"
)

const serverIPAddress = "%s:%s"

// Services are the domain operations exposed over HTTP.
type Services struct {
	Location handler.LocationService
	Privacy  handler.PrivacyService
	Profile  handler.ProfileService
	Tokens   middleware.TokenValidator

	// Checks are pinged by /health, keyed by dependency name.
	Checks map[string]handler.Pinger
}

type API struct {
	mux    *http.ServeMux
	server *http.Server
	routes *handlers
	m      *middleware.Middleware

	addr string
	cfg  config.Config
	log  logger.Logger
}

type handlers struct {
	health   *handler.Health
	location *handler.Location
	privacy  *handler.Privacy
	profile  *handler.Profile
}

func New(cfg config.Config, svc Services, logger logger.Logger) (*API, error) {
	if svc.Tokens == nil {
		return nil, errors.New("token validator is required")
	}
	if svc.Location == nil || svc.Privacy == nil || svc.Profile == nil {
		return nil, errors.New("location, privacy and profile services are required")
	}

	api := &API{
		mux: http.NewServeMux(),
		routes: &handlers{
			health:   handler.NewHealth(cfg.ServiceName, svc.Checks, logger),
			location: handler.NewLocation(svc.Location, logger),
			privacy:  handler.NewPrivacy(svc.Privacy, logger),
			profile:  handler.NewProfile(svc.Profile, logger),
		},
		m:    middleware.NewMiddleware(svc.Tokens, logger),
		addr: fmt.Sprintf(serverIPAddress, "0.0.0.0", cfg.Server.Port),
		cfg:  cfg,
		log:  logger,
	}

	api.setupRoutes()

	api.server = &http.Server{
		Addr:         api.addr,
		Handler:      api.withMiddleware(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return api, nil
}

func (a *API) Stop(ctx context.Context) error {
	timeout := a.cfg.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	ctx = wrap.WithAction(ctx, "http_server_stop")

	a.log.Debug(ctx, "shutting down HTTP server...", "address", a.addr)
	if err := a.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("error shutting down server: %w", err)
	}
	a.log.Debug(ctx, "shutting down HTTP server completed")

	return nil
}

func (a *API) Run(ctx context.Context, errCh chan<- error) {
	go func() {
		ctx = wrap.WithAction(ctx, "http_server_start")
		a.log.Info(ctx, "started http server", "address", a.addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("failed to start HTTP server: %w", err)
			return
		}
	}()
}

// Handler returns the fully wrapped router.
func (a *API) Handler() http.Handler {
	return a.server.Handler
}

// withMiddleware applies middlewares to the mux
func (a *API) withMiddleware() http.Handler {
	return a.m.Recover(a.m.RequestID(a.m.Logging(a.m.Metrics(a.cfg.ServiceName)(a.m.Auth(a.mux)))))
}
