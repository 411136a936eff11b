package main

import (
	"log"

	"github.com/bwmarrin/snowflake"
	"go.opentelemetry.io/otel"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"gorm.io/gorm"

	asynqmod "clipbounty/pkg/asynq"
	"clipbounty/pkg/db"
	"clipbounty/pkg/health"
	"clipbounty/pkg/logger"
	"clipbounty/pkg/otelcol"
	"clipbounty/pkg/otelcol/exporters"
	"clipbounty/pkg/profiling"
	redismod "clipbounty/pkg/redis"
	"clipbounty/pkg/sequence"
	pkgserver "clipbounty/pkg/server"

	"clipbounty/internal/config"
	"clipbounty/internal/server"
	"clipbounty/services/campaign"
	"clipbounty/services/creator"
	"clipbounty/services/ingest"
	"clipbounty/services/payout"
	"clipbounty/services/post"
	"clipbounty/services/rate"
	"clipbounty/services/reconcile"
	"clipbounty/services/team"
)

func main() {
	opts := []fx.Option{
		config.Module,
		logger.Module,
		db.Module,
		redismod.Module,
		sequence.Module,
		asynqmod.Client,
		asynqmod.Server,
		health.Module,
		profiling.Module,
		fx.Provide(
			provideSnowflakeNode,
		),
		fx.Invoke(
			registerTracing,
			migrate,
		),
		rate.Module,
		post.Module,
		ingest.Module,
		reconcile.Module,
		creator.Module,
		campaign.Module,
		team.Module,
		payout.Module,
		server.Module,
		pkgserver.ProvideHTTPServer,
		fxLogger,
	}

	if err := fx.ValidateApp(opts...); err != nil {
		log.Fatalf("fx validation failed: %v", err)
	}

	app := fx.New(opts...)

	app.Run()
}

var fxLogger = fx.WithLogger(func(cfg *config.Config, logger *zap.Logger) fxevent.Logger {
	return fxevent.NopLogger
})

func provideSnowflakeNode() (*snowflake.Node, error) {
	return snowflake.NewNode(1)
}

func registerTracing(cfg *config.Config, gdb *gorm.DB) error {
	if cfg.Otel.Addr == "" {
		return nil
	}

	exporter, err := exporters.ProvideGrpc(cfg)
	if err != nil {
		zap.L().Error("failed to create otlp exporter", zap.Error(err))
		return err
	}

	otel.SetTracerProvider(otelcol.ProvideTrace(exporter))
	return db.Otel(gdb)
}

func migrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&rate.Definition{},
		&post.TrackedPost{},
		&creator.Creator{},
		&creator.SocialAccount{},
		&creator.PaymentMethod{},
		&campaign.Campaign{},
		&team.Team{},
		&team.Member{},
		&payout.Record{},
	)
}
