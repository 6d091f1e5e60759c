package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"warbler/auth"
	"warbler/crud"
	"warbler/database"
	"warbler/http"
)

// main is the app's entry point.
func main() {
	// The "-prod" flag means that we're running in production.
	productionBool := flag.Bool("prod", false, "Provide this flag in production to ensure that a .config.json file is provided before the application starts.")
	flag.Parse()

	// Load configuration from a .config.json file if present, otherwise use the default dev setup.
	// In production the .config.json file is required and the app will panic if no file is found.
	config, err := LoadConfig(*productionBool)
	must(err)

	logger := newLogger(config.IsProd())
	zerolog.DefaultContextLogger = &logger

	// Open a database connection and execute migrations.
	db := database.NewDB(config.Database.Driver, config.Database.ConnectionInfo())
	must(database.Open(db, config.IsProd()))
	defer database.Close(db)
	must(database.AutoMigrate(db))

	// Start the crud services.
	services, err := crud.NewServices(
		db.Gorm,
		crud.WithUser(config.Pepper, config.BcryptCost),
		crud.WithFollow(),
		crud.WithMessage(),
		crud.WithLike(),
	)
	must(err)

	store, err := newSessionStore(config)
	must(err)
	authenticator := auth.NewAuthenticator(services.User, store, config.HMACKey, config.Session.TTL)

	// Set up a webserver.
	server := http.NewServer(http.Config{
		SessionUserKey:    config.SessionUserKey,
		CSRFEnabled:       config.CSRFEnabled,
		CSRFKey:           []byte(config.CSRFKey),
		RequireAuthToView: config.RequireAuthToView,
		IsProd:            config.IsProd(),
	}, logger, authenticator, services)

	// Serve the app until interrupted.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := server.Run(ctx, config.Port); err != nil {
		logger.Error().Err(err).Msg("server stopped")
	}
}

// newLogger writes json in production and human readable lines otherwise.
func newLogger(isProd bool) zerolog.Logger {
	if isProd {
		return zerolog.New(os.Stdout).With().Timestamp().Logger()
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(zerolog.DebugLevel).
		With().Timestamp().Logger()
}

// newSessionStore connects to Redis, or falls back to process memory if configured so.
func newSessionStore(config Config) (auth.Store, error) {
	if config.Session.Store == "memory" {
		return auth.NewMemoryStore(), nil
	}
	opts, err := redis.ParseURL(config.Redis.URL)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return auth.NewRedisStore(client), nil
}

// must is a little helper for shortening the panic instruction.
func must(err error) {
	if err != nil {
		panic(err)
	}
}
