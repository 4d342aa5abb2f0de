package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"

	"FolioPulse/internal/domain/models"
	"FolioPulse/internal/handler/ws"
	mid "FolioPulse/internal/middleware"
	"FolioPulse/internal/usecase"
	pkgch "FolioPulse/pkg/clickhouse"
	"FolioPulse/pkg/config"
	xhttp "FolioPulse/pkg/http"
	applogger "FolioPulse/pkg/logger"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg         *config.Config
	log         *applogger.Logger
	httpHandler xhttp.Handler
	hub         *ws.Hub
	portfolio   *usecase.Portfolio
	refresher   *usecase.Refresher
	publisher   *mid.BufferedPublisher
	chClient    *pkgch.Client

	httpServer *xhttp.Server
	scheduler  *cron.Cron
}

// New creates a new App instance with all dependencies. publisher and
// chClient may be nil when the corresponding subsystem is disabled.
func New(
	cfg *config.Config,
	log *applogger.Logger,
	httpHandler xhttp.Handler,
	hub *ws.Hub,
	portfolio *usecase.Portfolio,
	refresher *usecase.Refresher,
	publisher *mid.BufferedPublisher,
	chClient *pkgch.Client,
) *App {
	return &App{
		cfg:         cfg,
		log:         log,
		httpHandler: httpHandler,
		hub:         hub,
		portfolio:   portfolio,
		refresher:   refresher,
		publisher:   publisher,
		chClient:    chClient,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.httpServer = xhttp.NewServer(a.httpHandler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	)
	a.hub.RegisterRoutes(a.httpServer.Echo())

	if a.publisher != nil {
		a.publisher.Start(ctx)
	}

	if a.cfg.Refresh.Enabled {
		a.scheduler = cron.New()
		if _, err := a.scheduler.AddFunc(a.cfg.Refresh.Schedule, func() { a.refreshCycle(ctx) }); err != nil {
			a.log.Error("refresh schedule invalid", applogger.Error(err))
			return err
		}
		a.scheduler.Start()
		a.log.Info("scheduled refresh enabled",
			applogger.String("schedule", a.cfg.Refresh.Schedule),
			applogger.Strings("assets", a.cfg.Refresh.AssetIDs))
	}

	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}
	a.log.Info("server started", applogger.Int("port", a.cfg.Server.Port))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.log.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// refreshCycle warms the cache and pushes fresh analytics to any connected
// WebSocket clients.
func (a *App) refreshCycle(ctx context.Context) {
	a.refresher.Run(ctx)

	if a.hub.ClientCount() == 0 {
		return
	}
	res, omissions, err := a.portfolio.MarketAnalytics(ctx, &models.AnalyticsRequest{
		AssetIDs: a.cfg.Refresh.AssetIDs,
		Currency: a.cfg.Refresh.Currency,
	})
	if err != nil {
		a.log.Warn("analytics broadcast skipped", applogger.Error(err))
		return
	}
	a.hub.Broadcast(map[string]interface{}{
		"analytics": res,
		"omissions": omissions,
	})
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	if a.scheduler != nil {
		<-a.scheduler.Stop().Done()
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
	}

	a.hub.Close()

	// Flush aggregated logs while the producer is still up.
	a.log.RemoveCollector()

	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.log.Warn("publisher close error", applogger.Error(err))
		}
	}
	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			a.log.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	a.log.Info("shutdown complete")
	return nil
}
