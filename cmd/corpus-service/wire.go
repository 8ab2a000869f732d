//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package main

import (
	"corpushub/cmd/corpus-service/internal/biz"
	"corpushub/cmd/corpus-service/internal/data"
	"corpushub/cmd/corpus-service/internal/infra"
	"corpushub/cmd/corpus-service/internal/server"
	"corpushub/cmd/corpus-service/internal/service"
	"corpushub/pkg/cache"

	"github.com/go-kratos/kratos/v2"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/wire"
)

// wireApp init kratos application.
func wireApp(c *Config, logger log.Logger) (*kratos.App, func(), error) {
	panic(wire.Build(
		// Config conversion providers
		provideDataConfig,
		provideStorageConfig,
		provideCorpusClientConfig,
		provideGenerativeClientConfig,
		provideThrottle,
		provideRedisConfig,
		provideServerConfig,
		provideLifecycleConfig,
		provideDocumentConfig,
		provideQueryConfig,

		// Infrastructure layer
		cache.NewRedisClient,
		infra.NewMinIOBlobStore,
		wire.Bind(new(infra.BlobStore), new(*infra.MinIOBlobStore)),
		infra.NewHTTPCorpusClient,
		wire.Bind(new(infra.RemoteCorpusClient), new(*infra.HTTPCorpusClient)),
		infra.NewHTTPGenerativeClient,
		wire.Bind(new(infra.GenerativeClient), new(*infra.HTTPGenerativeClient)),

		// Data layer
		data.NewDB,
		data.NewData,
		data.NewCorpusRepo,
		data.NewFileMappingRepo,
		data.NewFriendshipRepo,
		data.NewShareGrantRepo,
		data.NewUserRepo,

		// Business logic layer
		biz.NewCorpusUsecase,
		biz.NewAccessUsecase,
		biz.NewDocumentUsecase,
		biz.NewQueryUsecase,

		// Service layer
		service.NewCorpusService,

		// Server layer
		server.NewHTTPServer,

		// App
		newApp,
	))
}
