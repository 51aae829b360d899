//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"

	"github.com/eslsoft/hebcorpus/internal/adapter/repository"
	"github.com/eslsoft/hebcorpus/internal/infrastructure/config"
	"github.com/eslsoft/hebcorpus/internal/infrastructure/database"
	"github.com/eslsoft/hebcorpus/internal/infrastructure/server"
	"github.com/eslsoft/hebcorpus/internal/usecase"
)

var configSet = wire.NewSet(
	config.Load,
)

var databaseSet = wire.NewSet(
	database.NewConnection,
	NewStore,
)

var repositorySet = wire.NewSet(
	repository.NewBookRepository,
	repository.NewLexiconRepository,
	repository.NewCanonRepository,
	repository.NewIngestRepository,
	repository.NewAuditRepository,
)

var usecaseSet = wire.NewSet(
	usecase.NewIngestUsecase,
	usecase.NewLookupUsecase,
	usecase.NewAuditUsecase,
	usecase.NewBookUsecase,
)

var loggerSet = wire.NewSet(
	server.NewLogger,
)

var serverSet = wire.NewSet(
	NewAuthenticator,
	NewHandler,
	server.NewServer,
)

// Initialize builds the application container using Wire.
func Initialize() (*Container, func(), error) {
	wire.Build(
		configSet,
		databaseSet,
		repositorySet,
		loggerSet,
		usecaseSet,
		serverSet,
		wire.Struct(new(Container), "*"),
	)
	return nil, nil, nil
}

// InitializeTools builds the dependencies of the command line tools.
func InitializeTools() (*Tools, func(), error) {
	wire.Build(
		configSet,
		databaseSet,
		repositorySet,
		loggerSet,
		usecaseSet,
		wire.Struct(new(Tools), "*"),
	)
	return nil, nil, nil
}
