package main

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/mkrupp/volunteerlog/internal/infra/config"
	"github.com/mkrupp/volunteerlog/internal/infra/logging"
	http_ "github.com/mkrupp/volunteerlog/internal/infra/transport/http"
	"github.com/mkrupp/volunteerlog/internal/repo/record"
	"github.com/mkrupp/volunteerlog/internal/repo/session"
	"github.com/mkrupp/volunteerlog/internal/repo/user"
	"github.com/mkrupp/volunteerlog/internal/svc/accountsvc"
	"github.com/mkrupp/volunteerlog/internal/svc/recordsvc"
	"github.com/mkrupp/volunteerlog/internal/svc/sessionsvc"
)

const (
	appName = "volunteerlog"
	svcName = "volunteersvc"
)

type Config struct {
	config.EnvConfig

	Log     logging.LoggerConfig      `envPrefix:"LOG_"`
	HTTP    http_.HTTPTransportConfig `envPrefix:"HTTP_"`
	Account accountsvc.AccountConfig  `envPrefix:"ACCOUNT_"`
	Session sessionsvc.SessionConfig  `envPrefix:"SESSION_"`
	Records recordsvc.RecordConfig    `envPrefix:"RECORDS_"`

	// Both repositories read the same STORE_DSN; the backend is picked from
	// the connection string's scheme.
	UserStore   user.RepositoryConfig   `envPrefix:"STORE_"`
	RecordStore record.RepositoryConfig `envPrefix:"STORE_"`
}

func main() {
	var (
		cfg Config
		ctx = context.Background()

		configPrefix = strings.ToUpper(strings.Join([]string{appName, svcName}, "_"))
		loggerName   = strings.ToLower(strings.Join([]string{appName, svcName}, "."))
	)

	if err := config.Parse(ctx, &cfg, configPrefix); err != nil {
		panic(err)
	}

	logging.Configure(ctx, cfg.Log, loggerName)

	if err := run(ctx, cfg); err != nil {
		panic(err)
	}
}

func run(ctx context.Context, cfg Config) (err error) {
	defer func() {
		log := logging.GetLogger("cmd.volunteersvc")

		if err != nil {
			log.ErrorContext(ctx, "error", "err", err)
			panic(err)
		}

		log.InfoContext(ctx, "shutdown")
	}()

	accountSvc, err := accountsvc.NewAccountService(
		user.RepositoryFactoryFor(cfg.UserStore),
		cfg.Account,
	)
	if err != nil {
		return fmt.Errorf("new account service: %w", err)
	}
	defer accountSvc.Close()

	recordSvc, err := recordsvc.NewRecordService(
		record.RepositoryFactoryFor(cfg.RecordStore),
		cfg.Records,
	)
	if err != nil {
		return fmt.Errorf("new record service: %w", err)
	}
	defer recordSvc.Close()

	sessions, err := sessionsvc.NewManager(
		session.MemorySessionStoreFactory(),
		cfg.Session,
	)
	if err != nil {
		return fmt.Errorf("new session manager: %w", err)
	}
	defer sessions.Close()

	accountTransport := accountsvc.NewHTTPTransport(accountSvc, sessions,
		accountsvc.HTTPTransportConfig{HTTPTransportConfig: cfg.HTTP})
	recordTransport := recordsvc.NewHTTPTransport(recordSvc,
		recordsvc.HTTPTransportConfig{HTTPTransportConfig: cfg.HTTP})

	mux := http.NewServeMux()
	mux.Handle("/{$}", accountTransport)
	mux.Handle("/register", accountTransport)
	mux.Handle("/login", accountTransport)
	mux.Handle("/logout", accountTransport)
	mux.Handle("/dashboard", recordTransport)
	mux.Handle("/log_hours", recordTransport)
	mux.Handle("/view_hours", recordTransport)

	if err := http_.ListenAndServe(ctx, mux, sessions, cfg.HTTP); err != nil {
		return fmt.Errorf("listen and serve: %w", err)
	}

	return nil
}
