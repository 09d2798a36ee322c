package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/helpdesk-service/internal/api/http"
	"github.com/spec-kit/helpdesk-service/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/observability"
	"github.com/spec-kit/helpdesk-service/internal/persistence"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/internal/repository/memory"
	"github.com/spec-kit/helpdesk-service/internal/service"
)

type options struct {
	envFiles    []string
	migrateOnly bool
}

func parseFlags(args []string) (options, error) {
	var opts options
	flagSet := pflag.NewFlagSet("helpdesk-api", pflag.ContinueOnError)
	flagSet.StringSliceVar(&opts.envFiles, "env-file", nil, "dotenv file(s) to load before reading the environment")
	flagSet.BoolVar(&opts.migrateOnly, "migrate-only", false, "apply database migrations and exit")
	if err := flagSet.Parse(args); err != nil {
		return opts, err
	}
	return opts, nil
}

// stores is the set of repositories the services run on.
type stores struct {
	tickets    repository.TicketRepository
	comments   repository.CommentRepository
	users      repository.UserRepository
	references repository.ReferenceRepository
	tx         service.TxManager
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		log.Fatalf("invalid flags: %v", err)
	}

	cfg, err := config.Load(opts.envFiles...)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if pg.Enabled() && (cfg.Postgres.RunMigrations || opts.migrateOnly) {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}
	if opts.migrateOnly {
		return
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	st := buildStores(pg, logger)
	refs := repository.NewCachedReferenceRepository(st.references, redis.Client, cfg.Cache.KeyPrefix, cfg.Cache.ReferenceTTL, logger)

	authService := service.NewAuthService(cfg.Auth, st.users, logger)
	if err := bootstrapAdmin(ctx, cfg.Auth, authService); err != nil {
		logger.Fatal("failed to bootstrap administrator", zap.Error(err))
	}

	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:    st.tickets,
		CommentRepo:   st.comments,
		UserRepo:      st.users,
		ReferenceRepo: refs,
		TxManager:     st.tx,
		Logger:        logger,
	})
	commentService := service.NewCommentService(service.CommentDependencies{
		TicketRepo:  st.tickets,
		CommentRepo: st.comments,
		Logger:      logger,
	})
	assignmentService := service.NewAssignmentService(service.AssignmentDependencies{
		TicketService: ticketService,
		TicketRepo:    st.tickets,
		UserRepo:      st.users,
	})
	viewService := service.NewViewService(st.tickets)
	metrics := observability.NewMetrics()

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis, metrics),
		Auth:           handlers.NewAuthHandler(authService),
		Me:             handlers.NewMeHandler(viewService),
		References:     handlers.NewReferenceHandler(service.NewReferenceService(refs)),
		Tickets:        handlers.NewTicketsHandler(ticketService, commentService, viewService),
		Agent:          handlers.NewAgentHandler(ticketService, viewService),
		Admin:          handlers.NewAdminHandler(assignmentService, viewService),
		AuthMiddleware: auth.NewAuthMiddleware(authService.TokenManager(), st.users),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
}

// buildStores picks PostgreSQL when a DSN is configured and the in-memory store otherwise.
func buildStores(pg *persistence.Postgres, logger *zap.Logger) stores {
	if pg.Enabled() {
		pool := pg.PoolHandle()
		return stores{
			tickets:    repository.NewTicketRepository(pool),
			comments:   repository.NewCommentRepository(pool),
			users:      repository.NewUserRepository(pool),
			references: repository.NewReferenceRepository(pool),
			tx:         persistence.NewTxManager(pool),
		}
	}

	logger.Warn("running on the in-memory store; data is lost on restart")
	store := memory.NewStore()
	memory.SeedReferenceData(store)
	return stores{
		tickets:    store.Tickets(),
		comments:   store.Comments(),
		users:      store.Users(),
		references: store.References(),
		tx:         store,
	}
}

func bootstrapAdmin(ctx context.Context, cfg config.AuthConfig, authService *service.AuthService) error {
	if cfg.BootstrapAdminEmail == "" {
		return nil
	}
	_, err := authService.EnsureUser(ctx, service.RegisterInput{
		FullName: "Helpdesk administrator",
		Email:    cfg.BootstrapAdminEmail,
		Password: cfg.BootstrapAdminPassword,
	}, domain.RoleAdministrator)
	if err != nil {
		return fmt.Errorf("ensure %s: %w", cfg.BootstrapAdminEmail, err)
	}
	return nil
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
