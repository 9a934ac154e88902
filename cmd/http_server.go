package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/salesloop/crm-backend/internal"
	"github.com/salesloop/crm-backend/internal/auth"
	authPostgres "github.com/salesloop/crm-backend/internal/auth/postgres"
	"github.com/salesloop/crm-backend/internal/authz"
	"github.com/salesloop/crm-backend/internal/lead"
	leadPostgres "github.com/salesloop/crm-backend/internal/lead/postgres"
	"github.com/salesloop/crm-backend/internal/profile"
	profilePostgres "github.com/salesloop/crm-backend/internal/profile/postgres"
	"github.com/salesloop/crm-backend/internal/role"
	rolePostgres "github.com/salesloop/crm-backend/internal/role/postgres"
	"github.com/salesloop/crm-backend/internal/transport/rest"
	"github.com/salesloop/crm-backend/internal/user"
	userPostgres "github.com/salesloop/crm-backend/internal/user/postgres"
	"github.com/salesloop/crm-backend/pkg/logger"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config *internal.Config
	DB     *sqlx.DB
	GormDB *gorm.DB
	Router *chi.Mux
	Logger *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	setupRoutes(deps)

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      deps.Router,
		ReadTimeout:  deps.Config.Server.ReadTimeout,
		WriteTimeout: deps.Config.Server.WriteTimeout,
		IdleTimeout:  deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("Server shutdown error", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			deps.Logger.Error("Database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("Server stopped")
}

func setupRoutes(deps *Dependencies) {
	cfg := deps.Config
	lg := deps.Logger

	userRepo := userPostgres.NewUserRepository(deps.GormDB)
	roleRepo := rolePostgres.NewRoleRepository(deps.GormDB)
	profileRepo := profilePostgres.NewProfileRepository(deps.GormDB)
	leadRepo := leadPostgres.NewLeadRepository(deps.GormDB)
	authRepo := authPostgres.NewRepository(deps.GormDB)

	engine := authz.NewEngine(userRepo, roleRepo, profileRepo, lg)

	var decider authz.Decider = engine
	var invalidator authz.Invalidator = authz.NoopInvalidator{}
	if cfg.AuthzCache.Enabled {
		cached := authz.NewCachedEngine(engine, cfg.AuthzCache.MaxEntries, cfg.AuthzCache.TTL)
		decider = cached
		invalidator = cached
	}

	tokenGen := auth.NewJWTTokenGenerator(
		cfg.Security.AccessTokenSecret,
		cfg.Security.RefreshTokenSecret,
		cfg.Security.AccessTokenDuration,
		cfg.Security.RefreshTokenDuration,
	)
	authService := auth.NewService(authRepo, tokenGen)
	authHandler := auth.NewHandler(authService)

	userService := user.NewService(userRepo, decider, invalidator, lg)
	userHandler := user.NewHandler(userService)

	roleService := role.NewService(roleRepo, decider, invalidator, lg)
	roleHandler := role.NewHandler(roleService)

	profileService := profile.NewService(profileRepo, decider, invalidator, lg)
	profileHandler := profile.NewHandler(profileService)

	leadService := lead.NewService(leadRepo, decider, lg)
	leadHandler := lead.NewHandler(leadService)

	rest.RegisterAllRoutes(
		deps.Router,
		deps.DB.DB,
		authHandler,
		userHandler,
		roleHandler,
		profileHandler,
		leadHandler,
		decider,
		lg,
	)
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(config.Observability.Logging.Level, config.Observability.Logging.Format)
	lg := logger.LoggerWrapper()

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := gorm.Open(gormPostgres.New(gormPostgres.Config{Conn: db.DB}), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to open gorm connection: %w", err)
	}

	return &Dependencies{
		Config: config,
		Logger: lg,
		DB:     db,
		GormDB: gormDB,
		Router: chi.NewRouter(),
	}, nil
}

// initDB initializes the database connection
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}
