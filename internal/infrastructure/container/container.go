// Package container wires the application together with Uber FX.
package container

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	appai "github.com/mirepoix/v1/internal/application/ai"
	appchat "github.com/mirepoix/v1/internal/application/chat"
	"github.com/mirepoix/v1/internal/application/ingestion"
	"github.com/mirepoix/v1/internal/domain/tag"
	"github.com/mirepoix/v1/internal/infrastructure/ai/ollama"
	"github.com/mirepoix/v1/internal/infrastructure/cache"
	"github.com/mirepoix/v1/internal/infrastructure/classifier"
	"github.com/mirepoix/v1/internal/infrastructure/config"
	"github.com/mirepoix/v1/internal/infrastructure/corpus"
	"github.com/mirepoix/v1/internal/infrastructure/http/handlers"
	"github.com/mirepoix/v1/internal/infrastructure/http/server"
	"github.com/mirepoix/v1/internal/infrastructure/nlp"
	gormrepo "github.com/mirepoix/v1/internal/infrastructure/persistence/gorm"
	"github.com/mirepoix/v1/internal/infrastructure/persistence/postgres"
	"github.com/mirepoix/v1/internal/ports/inbound"
	"github.com/mirepoix/v1/internal/ports/outbound"
	"github.com/mirepoix/v1/pkg/logger"
)

// Module provides every dependency of the application.
var Module = fx.Options(
	ConfigModule,
	LoggerModule,
	DatabaseModule,
	CacheModule,
	CorpusModule,
	AIModule,
	ServiceModule,
	HTTPModule,
	LifecycleModule,
)

// ConfigModule provides configuration.
var ConfigModule = fx.Provide(
	func() (*config.Config, error) {
		return config.Load("")
	},
)

// LoggerModule provides logging.
var LoggerModule = fx.Provide(
	func(cfg *config.Config) (*zap.Logger, error) {
		return logger.New(logger.Config{
			Level:       cfg.App.LogLevel,
			Format:      cfg.App.LogFormat,
			Development: cfg.App.Debug,
		})
	},
)

// DatabaseModule provides the database connection and unit of work.
var DatabaseModule = fx.Provide(
	func(cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
		return postgres.Connect(cfg.Database, log)
	},
	fx.Annotate(
		gormrepo.NewUnitOfWork,
		fx.As(new(outbound.UnitOfWork)),
	),
)

// CacheModule provides the cache repository: Redis when enabled,
// otherwise in-process memory.
var CacheModule = fx.Provide(
	func(cfg *config.Config, log *zap.Logger) (outbound.CacheRepository, error) {
		if !cfg.Redis.Enabled {
			log.Info("using in-memory cache")
			return cache.NewMemoryRepository(), nil
		}
		client, err := cache.NewRedisClient(cache.Config{
			Host:     cfg.Redis.Host,
			Port:     strconv.Itoa(cfg.Redis.Port),
			Password: cfg.Redis.Password,
			Database: cfg.Redis.Database,
		}, log)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		return cache.NewRedisRepository(client, log), nil
	},
)

// CorpusModule loads the read-only corpora. A malformed corpus fails
// startup.
var CorpusModule = fx.Provide(
	fx.Annotate(
		func() *nlp.Tokenizer { return nlp.NewTokenizer() },
		fx.As(new(outbound.QueryParser)),
	),
	func(cfg *config.Config, log *zap.Logger) (outbound.AllergyAnalyzer, error) {
		var opts []corpus.AllergyOption
		if cfg.Corpus.WholeWordAllergy {
			opts = append(opts, corpus.WithWholeWordMatching())
		}
		return corpus.LoadAllergyAnalyzer(cfg.Corpus.AllergyPath, log, opts...)
	},
	func(cfg *config.Config, log *zap.Logger) (outbound.NutritionLookup, error) {
		return corpus.LoadNutritionLookup(cfg.Corpus.NutritionPath, log)
	},
	func(cfg *config.Config, parser outbound.QueryParser, log *zap.Logger) (outbound.SubstitutionRecommender, error) {
		return corpus.LoadSubstitutionRecommender(cfg.Corpus.SubstitutionPath, parser, log)
	},
)

// AIModule provides the language-model parser and the image classifier.
var AIModule = fx.Provide(
	func(cfg *config.Config, cacheRepo outbound.CacheRepository, log *zap.Logger) outbound.RecipeParser {
		client := ollama.NewClient(ollama.Config{
			BaseURL: cfg.AI.OllamaHost,
			Model:   cfg.AI.OllamaModel,
			Timeout: cfg.AI.Timeout,
		}, log)
		if !cfg.AI.EnableCache {
			return client
		}
		return appai.NewCachingParser(client, cacheRepo, log)
	},
	fx.Annotate(
		func(cfg *config.Config, log *zap.Logger) *classifier.Client {
			return classifier.NewClient(classifier.Config{
				BaseURL: cfg.Classifier.BaseURL,
				Timeout: cfg.Classifier.Timeout,
			}, log)
		},
		fx.As(new(outbound.ImageClassifier)),
	),
)

// ServiceModule provides the application services.
var ServiceModule = fx.Provide(
	fx.Annotate(
		ingestion.NewService,
		fx.As(new(inbound.IngestionService)),
	),
	func(parser outbound.QueryParser, log *zap.Logger) *appchat.Engine {
		return appchat.NewEngine(parser, appchat.DefaultKeywords(), log)
	},
	func(
		cfg *config.Config,
		nutrition outbound.NutritionLookup,
		subs outbound.SubstitutionRecommender,
		imageClassifier outbound.ImageClassifier,
		log *zap.Logger,
	) *appchat.Composer {
		return appchat.NewComposer(nutrition, subs, imageClassifier,
			cfg.Classifier.TopK, cfg.Chat.MaxSubstitutes, log)
	},
	fx.Annotate(
		appchat.NewService,
		fx.As(new(inbound.ChatService)),
	),
)

// HTTPModule provides the HTTP handlers and server.
var HTTPModule = fx.Provide(
	func(
		ingestionSvc inbound.IngestionService,
		chatSvc inbound.ChatService,
		cfg *config.Config,
		log *zap.Logger,
	) *handlers.Handlers {
		return handlers.NewHandlers(ingestionSvc, chatSvc, cfg.Server.UploadDir, log)
	},
	server.NewServer,
)

// LifecycleModule registers startup and shutdown hooks.
var LifecycleModule = fx.Invoke(RegisterLifecycleHooks)

// RegisterLifecycleHooks seeds the tag registry, starts the HTTP server,
// and tears everything down on stop.
func RegisterLifecycleHooks(
	lc fx.Lifecycle,
	cfg *config.Config,
	log *zap.Logger,
	db *gorm.DB,
	uow outbound.UnitOfWork,
	srv *server.Server,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("starting application",
				zap.String("name", cfg.App.Name),
				zap.String("version", cfg.App.Version),
				zap.String("environment", cfg.App.Environment))

			if err := uow.Tags().Seed(ctx, tag.Catalog()); err != nil {
				return fmt.Errorf("failed to seed tag registry: %w", err)
			}

			go func() {
				if err := srv.Start(); err != nil {
					log.Fatal("HTTP server failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("shutting down application")

			if err := srv.Shutdown(ctx); err != nil {
				log.Error("failed to shut down HTTP server", zap.Error(err))
			}
			if sqlDB, err := db.DB(); err == nil {
				if err := sqlDB.Close(); err != nil {
					log.Error("failed to close database connection", zap.Error(err))
				}
			}
			_ = log.Sync()
			return nil
		},
	})
}
