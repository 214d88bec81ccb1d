package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/kirillkom/fleetdocs/internal/config"
	"github.com/kirillkom/fleetdocs/internal/core/domain"
	"github.com/kirillkom/fleetdocs/internal/core/ports"
	"github.com/kirillkom/fleetdocs/internal/core/usecase"
	"github.com/kirillkom/fleetdocs/internal/infrastructure/ai/docintel"
	"github.com/kirillkom/fleetdocs/internal/infrastructure/drive"
	"github.com/kirillkom/fleetdocs/internal/infrastructure/pagesplit"
	"github.com/kirillkom/fleetdocs/internal/infrastructure/queue/nats"
	"github.com/kirillkom/fleetdocs/internal/infrastructure/repository/postgres"
	"github.com/kirillkom/fleetdocs/internal/infrastructure/resilience"
	"github.com/kirillkom/fleetdocs/internal/observability/metrics"
)

type App struct {
	Config  config.Config
	Routing config.Routing

	Filer   ports.DocumentFiler
	Metrics *metrics.HTTPServerMetrics

	closeFn func()
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	routing, err := config.LoadRouting(cfg.RoutingFile, domain.ChunkPolicy{
		SplitThreshold: cfg.SplitThreshold,
		ChunkPages:     cfg.ChunkPages,
	})
	if err != nil {
		return nil, fmt.Errorf("load routing: %w", err)
	}

	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	records := postgres.NewRecordRepository(db)
	abbrevStore := postgres.NewAbbreviationRepository(db)

	resCfg := resilience.DefaultConfig()
	resCfg.RetryMaxAttempts = cfg.RetryMaxAttempts
	resCfg.CallTimeout = time.Duration(cfg.CallTimeoutSeconds) * time.Second
	resCfg.BreakerEnabled = cfg.BreakerEnabled
	executor := resilience.NewExecutor(resCfg)

	// An empty NATS URL disables the filed-record notifier.
	var notifier *nats.Notifier
	var events ports.EventPublisher
	if cfg.NATSURL != "" {
		notifier, err = nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
			ResilienceExecutor: executor,
		})
		if err != nil {
			return nil, fmt.Errorf("init event publisher: %w", err)
		}
		events = notifier
	}

	intel := docintel.New(cfg.DocintelURL, cfg.DocintelModel, executor)
	splitter := pagesplit.New()

	fleetGateway := drive.New(cfg.DriveURL, cfg.DriveID, cfg.FleetDriveToken, executor)
	crewGateway := drive.New(cfg.DriveURL, cfg.DriveID, cfg.CrewDriveToken, executor)
	gateways := drive.NewSelector(
		map[string]ports.StorageGateway{
			"fleet": fleetGateway,
			"crew":  crewGateway,
		},
		routing.CredentialClasses(),
		routing.DefaultCredentialClass,
	)

	analyzer := usecase.NewAnalyzeDocumentUseCase(splitter, intel, cfg.ChunkWorkers)
	filer := usecase.NewIngestDocumentUseCase(
		analyzer,
		usecase.NewDuplicateGuard(),
		usecase.NewAbbreviationResolver(abbrevStore),
		usecase.NewFolderResolver(gateways),
		gateways,
		records,
		events,
		routing.Table,
		usecase.IngestPolicy{BlockOnPartialUpload: cfg.BlockOnPartialUpload},
	)

	return &App{
		Config:  cfg,
		Routing: routing,
		Filer:   filer,
		Metrics: metrics.NewHTTPServerMetrics("fleetdocs-api"),

		closeFn: func() {
			if notifier != nil {
				notifier.Close()
			}
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
