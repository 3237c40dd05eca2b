// Package bootstrap собирает общие для процессов зависимости:
// каталог jobs с хранилищами и соединение с RabbitMQ.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shaiso/ContentImport/internal/config"
	"github.com/shaiso/ContentImport/internal/domain"
	"github.com/shaiso/ContentImport/internal/language"
	"github.com/shaiso/ContentImport/internal/migrate"
	"github.com/shaiso/ContentImport/internal/mq"
	"github.com/shaiso/ContentImport/internal/repo"
)

// destinationProduct — имя destination плагина продуктов.
const destinationProduct = "product"

// Catalog — каталог jobs и его зависимости.
type Catalog struct {
	Manager   *migrate.Manager
	Languages *language.Registry
	States    *repo.JobStateRepo
}

// NewCatalog читает definitions и создаёт Manager поверх PostgreSQL.
//
// limit — строк за один Execute; у API 0, у worker BatchLimit.
func NewCatalog(cfg *config.Config, pool *pgxpool.Pool, limit int, logger *slog.Logger) (*Catalog, error) {
	langs, err := language.NewRegistry(cfg.Import.Languages, cfg.Import.DefaultLocale)
	if err != nil {
		return nil, fmt.Errorf("languages: %w", err)
	}

	defs, err := migrate.LoadDefinitions(cfg.Import.DefinitionsPath)
	if err != nil {
		return nil, fmt.Errorf("definitions: %w", err)
	}

	plugins := migrate.DefaultPlugins()
	plugins.RegisterDestination(destinationProduct, repo.NewProductRepo(pool).DestinationFactory())

	states := repo.NewJobStateRepo(pool)

	manager := migrate.NewManager(migrate.Config{
		Definitions:           defs,
		Reload: func() ([]domain.Definition, error) {
			return migrate.LoadDefinitions(cfg.Import.DefinitionsPath)
		},
		Languages:             langs,
		TranslationsSupported: cfg.Import.TranslationsSupported,
		States:                states,
		IDMap:                 repo.NewIDMapRepo(pool),
		Plugins:               plugins,
		Limit:                 limit,
		Logger:                logger,
	})

	logger.Info("job catalog loaded",
		"definitions", len(defs),
		"jobs", len(manager.Definitions()),
		"languages", len(langs.List()),
	)

	return &Catalog{Manager: manager, Languages: langs, States: states}, nil
}

// ConnectMQ подключается к RabbitMQ и объявляет топологию.
// Если брокер недоступен, возвращает nil: процессы работают через polling.
func ConnectMQ(ctx context.Context, url, name string, logger *slog.Logger) (*mq.Connection, *mq.Publisher) {
	conn, err := mq.NewConnection(url, name, logger)
	if err != nil {
		logger.Warn("RabbitMQ not available, running in polling-only mode", "error", err)
		return nil, nil
	}
	logger.Info("RabbitMQ connected")

	if err := mq.SetupTopology(ctx, conn); err != nil {
		logger.Warn("failed to setup topology", "error", err)
	}

	return conn, mq.NewPublisher(conn, logger)
}
