// Command api starts the paper-trading engine: the job controller
// (order matcher, position revaluer, market-data refresher, trading
// bot, plus the maintenance sweep) and the HTTP health/job-control
// surface.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/papertrader/engine/internal/aiplatform"
	"github.com/papertrader/engine/internal/config"
	"github.com/papertrader/engine/internal/database"
	"github.com/papertrader/engine/internal/jobs"
	"github.com/papertrader/engine/internal/marketcalendar"
	"github.com/papertrader/engine/internal/providers"
	"github.com/papertrader/engine/internal/repository"
	"github.com/papertrader/engine/internal/server"
	"github.com/papertrader/engine/pkg/logger"

	"github.com/rs/zerolog"
)

func main() {
	host := flag.String("host", "0.0.0.0", "HTTP listen host (informational; the server binds all interfaces)")
	port := flag.Int("port", 0, "HTTP listen port, overriding PORT from the environment when set")
	flag.Parse()

	log := logger.New(logger.Config{Level: "info", Pretty: true})
	log.Info().Msg("starting papertrader engine")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	if *port != 0 {
		cfg.Port = *port
	}

	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize database")
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	systemLogs := repository.NewSystemLogRepository(db.Conn(), log)
	log = log.Hook(repository.NewSystemLogHook(systemLogs, "engine"))

	controller := buildController(db, cfg, log)
	controller.Start("")
	defer controller.Stop("")

	maintenance := jobs.NewMaintenance(db.Conn(), systemLogs, 30*24*time.Hour, log)
	if err := maintenance.Start(cfg.MaintenanceSchedule); err != nil {
		log.Fatal().Err(err).Msg("failed to start maintenance job")
	}
	defer maintenance.Stop()

	srv := server.New(server.Config{
		Port:       cfg.Port,
		Log:        log,
		Controller: controller,
		DevMode:    cfg.DevMode,
	})

	go func() {
		if err := srv.Start(); err != nil {
			log.Fatal().Err(err).Msg("failed to start HTTP server")
		}
	}()

	log.Info().Int("port", cfg.Port).Str("host", *host).Msg("engine started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("engine stopped")
}

// buildController wires every repository, the provider and AI-platform
// registries, and registers each worker under the job controller at
// its configured interval. Workers are registered but not started
// here; the caller decides when to start them.
func buildController(db *database.DB, cfg *config.Config, log zerolog.Logger) *jobs.Controller {
	conn := db.Conn()

	accounts := repository.NewAccountRepository(conn, log)
	strategies := repository.NewStrategyRepository(conn, log)
	instruments := repository.NewInstrumentRepository(conn, log)
	positions := repository.NewPositionRepository(conn, log)
	orders := repository.NewOrderRepository(conn, log)
	marketData := repository.NewMarketDataRepository(conn, log)
	signals := repository.NewSignalRepository(conn, log)
	settings := repository.NewSettingRepository(conn, log)

	fmpProvider := providers.NewFMPProvider(settings, log)
	avProvider := providers.NewAlphaVantageProvider(settings, log)
	yahooProvider := providers.NewYahooProvider(log)
	registry := providers.NewRegistry(fmpProvider, avProvider, yahooProvider, log)

	aiRegistry := aiplatform.NewRegistry([]aiplatform.Platform{
		aiplatform.NewDeepseekClient(settings, log),
		aiplatform.NewOpenAIClient(settings, log),
		aiplatform.NewClaudeClient(settings, log),
	}, log)

	universe := jobs.NewUniverseResolver(strategies, settings, aiRegistry, log)
	calendar := marketcalendar.New(log)

	matcher := jobs.NewMatcher(conn, orders, positions, accounts, registry, log)
	revaluer := jobs.NewRevaluer(positions, registry, log)
	refresher := jobs.NewMarketRefresher(instruments, marketData, calendar, registry, log)
	bot := jobs.NewTradingBot(accounts, strategies, instruments, positions, orders, marketData, signals, registry, universe, log)

	controller := jobs.NewController(log)
	_ = controller.Register("order_matcher", matcher.Run, cfg.OrderMatcherInterval)
	_ = controller.Register("position_revaluer", revaluer.Run, cfg.PositionRevalInterval)
	_ = controller.Register("market_refresher", refresher.Run, cfg.MarketRefreshInterval)
	_ = controller.Register("trading_bot", bot.Run, cfg.TradingBotInterval)

	return controller
}
