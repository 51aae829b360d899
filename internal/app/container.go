package app

import (
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/eslsoft/hebcorpus/internal/adapter/httpapi"
	"github.com/eslsoft/hebcorpus/internal/adapter/repository"
	"github.com/eslsoft/hebcorpus/internal/infrastructure/config"
	"github.com/eslsoft/hebcorpus/internal/infrastructure/database"
	"github.com/eslsoft/hebcorpus/internal/infrastructure/server"
	"github.com/eslsoft/hebcorpus/internal/usecase"
)

// Container aggregates the application dependencies produced by Wire.
type Container struct {
	Logger *logrus.Logger
	Store  *repository.Store
	Server *server.Server
}

// Tools holds what the command line subcommands need. It has no HTTP
// server and therefore no token settings.
type Tools struct {
	Config *config.Config
	Logger *logrus.Logger
	Store  *repository.Store
	Ingest usecase.IngestUsecase
	Books  usecase.BookUsecase
	Audits usecase.AuditUsecase
}

// NewStore wraps the open connection for the SQL repositories.
func NewStore(conn *database.Connection) (*repository.Store, error) {
	dialect, err := repository.ParseDialect(conn.Driver)
	if err != nil {
		return nil, err
	}
	return repository.NewStore(conn.DB, dialect), nil
}

// NewAuthenticator reads the admin token settings. A secret is mandatory
// unless authentication is disabled.
func NewAuthenticator(cfg *config.Config, logger *logrus.Logger) (*httpapi.Authenticator, error) {
	if cfg.Auth.Disabled {
		logger.Warn("authentication is disabled; every request acts as admin")
		return httpapi.NewAuthenticator("", true), nil
	}
	if strings.TrimSpace(cfg.Auth.JWTSecret) == "" {
		return nil, errors.New("auth.jwt_secret is required unless auth.disabled is set")
	}
	return httpapi.NewAuthenticator(cfg.Auth.JWTSecret, false), nil
}

// NewHandler builds the HTTP handler with the configured rawText limit.
func NewHandler(
	cfg *config.Config,
	logger *logrus.Logger,
	ingest usecase.IngestUsecase,
	lookup usecase.LookupUsecase,
	audits usecase.AuditUsecase,
	books usecase.BookUsecase,
) *httpapi.Handler {
	return httpapi.NewHandler(ingest, lookup, audits, books, logger, cfg.Ingest.MaxRawTextBytes)
}
