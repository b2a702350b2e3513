package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/embunadw/wms/pkg/application/services/deliveries"
	"github.com/embunadw/wms/pkg/application/services/drafts"
	"github.com/embunadw/wms/pkg/application/services/reference"
	"github.com/embunadw/wms/pkg/config"
	"github.com/embunadw/wms/pkg/domain/services"
	"github.com/embunadw/wms/pkg/infrastructure/cache"
	"github.com/embunadw/wms/pkg/infrastructure/events"
	"github.com/embunadw/wms/pkg/infrastructure/logging"
	"github.com/embunadw/wms/pkg/infrastructure/wmsapi"
	"github.com/embunadw/wms/pkg/interfaces/rest"
	"github.com/embunadw/wms/pkg/interfaces/rest/handler"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("Starting WMS rules service",
		zap.Int("port", cfg.Server.Port),
		zap.String("api", cfg.API.BaseURL),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := wmsapi.NewClient(cfg.API.BaseURL, cfg.API.Timeout, logger)

	var partCache reference.PartCache
	if cfg.Cache.Enabled {
		rdb, err := cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			// the part list is still fetched directly when Redis is down
			logger.Warn("Redis unavailable, part cache disabled", zap.String("addr", cfg.Redis.Addr()), zap.Error(err))
		} else {
			defer rdb.Close()
			partCache = cache.NewPartCache(cache.NewRedisStore(rdb), cfg.Cache.TTL, logger)
			logger.Info("Part cache enabled", zap.String("addr", cfg.Redis.Addr()), zap.Duration("ttl", cfg.Cache.TTL))
		}
	}

	eventStore := events.NewInMemoryEventStore(logger)
	if err := eventStore.Subscribe(append(events.AllDraftEvents, events.DeliveryStatusChangedEvent), events.NewLoggingHandler(logger)); err != nil {
		logger.Fatal("Failed to subscribe event logger", zap.Error(err))
	}

	loader := reference.NewLoader(client, partCache, logger)
	draftSvc := drafts.NewService(loader, client, drafts.NewStore(), eventStore, logger)
	deliverySvc := deliveries.NewService(client, services.NewDeliveryStateMachine(nil), eventStore, logger)

	router, err := rest.NewRouter(cfg, handler.NewHandlers(draftSvc, deliverySvc, logger), logger)
	if err != nil {
		logger.Fatal("Failed to build router", zap.Error(err))
	}

	go sweepDrafts(ctx, draftSvc, eventStore, cfg.Drafts, logger)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info("Server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

// sweepDrafts discards idle drafts and old delivery history until ctx is
// cancelled
func sweepDrafts(ctx context.Context, svc *drafts.Service, eventStore events.EventStore, cfg config.DraftsConfig, logger *zap.Logger) {
	if cfg.SweepInterval <= 0 {
		logger.Info("Draft expiry disabled")
		return
	}

	ticker := time.NewTicker(cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if cfg.IdleTTL > 0 {
				svc.Sweep(cfg.IdleTTL)
			}
			if cfg.HistoryRetention > 0 {
				if pruned := eventStore.PruneStreams(now.Add(-cfg.HistoryRetention)); pruned > 0 {
					logger.Info("Pruned event history", zap.Int("streams", pruned))
				}
			}
		}
	}
}
