// Package di wires the application's dependencies.
package di

import (
	"context"
	"net/http"
	"sync"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"go.uber.org/zap"

	"records-backend/internal/config"
	"records-backend/internal/handlers"
	"records-backend/internal/repository"
	ddbstore "records-backend/internal/repository/dynamodb"
	"records-backend/internal/service/record"
	"records-backend/pkg/observability"
)

var (
	container     *Container
	containerOnce sync.Once
)

// Container holds the application's shared dependencies. The store client is
// initialized once per process lifetime and reused across all requests.
type Container struct {
	Config  *config.Config
	Logger  *zap.Logger
	Store   repository.RecordStore
	Service record.Service
	Metrics *observability.Collector
	Handler http.Handler
}

// InitializeContainer builds the container on first call and returns the
// same instance afterwards.
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	var err error
	containerOnce.Do(func() {
		container, err = newContainer(ctx, cfg)
	})
	if err != nil {
		return nil, err
	}
	return container, nil
}

func newContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	logger, err := provideLogger(cfg)
	if err != nil {
		return nil, err
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
	if err != nil {
		return nil, err
	}

	dbClient := awsdynamodb.NewFromConfig(awsCfg)
	store := ddbstore.NewStore(dbClient, cfg.DynamoDBTable, logger)
	service := record.NewService(store, logger)
	metrics := observability.NewCollector("records")

	router := handlers.NewRouter(service, cfg, logger, metrics)

	return &Container{
		Config:  cfg,
		Logger:  logger,
		Store:   store,
		Service: service,
		Metrics: metrics,
		Handler: router.Setup(),
	}, nil
}

func provideLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
