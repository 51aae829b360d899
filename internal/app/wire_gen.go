//go:build !wireinject
// +build !wireinject

// Injector bodies for the providers declared in wire.go. Keep both files in
// step when a provider set changes.

package app

import (
	"github.com/eslsoft/hebcorpus/internal/adapter/repository"
	"github.com/eslsoft/hebcorpus/internal/infrastructure/config"
	"github.com/eslsoft/hebcorpus/internal/infrastructure/database"
	"github.com/eslsoft/hebcorpus/internal/infrastructure/server"
	"github.com/eslsoft/hebcorpus/internal/usecase"
)

// Injectors from wire.go:

// Initialize builds the application container using Wire.
func Initialize() (*Container, func(), error) {
	configConfig, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	logger, err := server.NewLogger(configConfig)
	if err != nil {
		return nil, nil, err
	}
	connection, cleanup, err := database.NewConnection(configConfig, logger)
	if err != nil {
		return nil, nil, err
	}
	store, err := NewStore(connection)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	bookRepository := repository.NewBookRepository(store)
	lexiconRepository := repository.NewLexiconRepository(store)
	canonRepository := repository.NewCanonRepository(store)
	ingestRepository := repository.NewIngestRepository(store)
	auditRepository := repository.NewAuditRepository(store)
	ingestUsecase := usecase.NewIngestUsecase(bookRepository, lexiconRepository, canonRepository, ingestRepository, auditRepository, logger)
	lookupUsecase := usecase.NewLookupUsecase(canonRepository)
	auditUsecase := usecase.NewAuditUsecase(auditRepository)
	bookUsecase := usecase.NewBookUsecase(bookRepository)
	handler := NewHandler(configConfig, logger, ingestUsecase, lookupUsecase, auditUsecase, bookUsecase)
	authenticator, err := NewAuthenticator(configConfig, logger)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	serverServer := server.NewServer(configConfig, logger, handler, authenticator)
	container := &Container{
		Logger: logger,
		Store:  store,
		Server: serverServer,
	}
	return container, func() {
		cleanup()
	}, nil
}

// InitializeTools builds the dependencies of the command line tools.
func InitializeTools() (*Tools, func(), error) {
	configConfig, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	logger, err := server.NewLogger(configConfig)
	if err != nil {
		return nil, nil, err
	}
	connection, cleanup, err := database.NewConnection(configConfig, logger)
	if err != nil {
		return nil, nil, err
	}
	store, err := NewStore(connection)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	bookRepository := repository.NewBookRepository(store)
	lexiconRepository := repository.NewLexiconRepository(store)
	canonRepository := repository.NewCanonRepository(store)
	ingestRepository := repository.NewIngestRepository(store)
	auditRepository := repository.NewAuditRepository(store)
	ingestUsecase := usecase.NewIngestUsecase(bookRepository, lexiconRepository, canonRepository, ingestRepository, auditRepository, logger)
	bookUsecase := usecase.NewBookUsecase(bookRepository)
	auditUsecase := usecase.NewAuditUsecase(auditRepository)
	tools := &Tools{
		Config: configConfig,
		Logger: logger,
		Store:  store,
		Ingest: ingestUsecase,
		Books:  bookUsecase,
		Audits: auditUsecase,
	}
	return tools, func() {
		cleanup()
	}, nil
}
