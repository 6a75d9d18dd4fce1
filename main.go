// main.go
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"rental-booking/cmd"
	"rental-booking/internal/data/repository"
	"rental-booking/internal/notify"
	"rental-booking/internal/wire"
	"rental-booking/pkg/database"
	"rental-booking/pkg/utils"

	"go.uber.org/zap"
)

func main() {
	// Load config
	config, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := utils.InitLogger(config.App.LogPath, config.App.Name, config.App.Debug)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using standard log.", err)
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("app", config.App.Name),
		zap.String("port", config.App.Port),
		zap.Bool("debug", config.App.Debug),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect to database
	db, err := database.InitDB(config.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("Database connected successfully")

	if config.Database.Migrate {
		if err := database.Migrate(ctx, db); err != nil {
			logger.Fatal("Failed to apply schema", zap.Error(err))
		}
	}

	repos := repository.NewRepository(db, config.Cache.PropertyTTL, logger)

	// Real-time fan-out: through Redis when configured so every instance
	// reaches its own sockets, otherwise straight to the local hub.
	hub := notify.NewHub(logger)
	var emitter notify.Emitter = hub
	if config.Redis.Addr != "" {
		client, err := database.InitRedis(config.Redis)
		if err != nil {
			logger.Fatal("Failed to connect to redis", zap.Error(err))
		}
		defer client.Close()

		bus := notify.NewRedisBus(client, config.Redis.Channel, hub, logger)
		go func() {
			if err := bus.Run(ctx); err != nil {
				logger.Error("Redis relay stopped", zap.Error(err))
			}
		}()
		emitter = bus
		logger.Info("Redis event bus enabled", zap.String("channel", config.Redis.Channel))
	}

	var mailer notify.Mailer = notify.NewLogMailer(logger)
	if config.AMQP.URL != "" {
		amqpMailer, err := notify.NewAMQPMailer(config.AMQP.URL, config.AMQP.EmailQueue, logger)
		if err != nil {
			logger.Fatal("Failed to connect to rabbitmq", zap.Error(err))
		}
		defer amqpMailer.Close()
		mailer = amqpMailer
		logger.Info("Email queue enabled", zap.String("queue", config.AMQP.EmailQueue))
	}

	dispatcher := notify.NewDispatcher(emitter, mailer, config.Notify.Buffer, logger)

	// Wire all dependencies
	app := wire.Wiring(repos, dispatcher, hub, config, logger)

	if err := cmd.APIServer(ctx, app.Router, config.App.Port, logger); err != nil {
		logger.Error("Server stopped", zap.Error(err))
	}

	drainCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := dispatcher.Close(drainCtx); err != nil {
		logger.Warn("Pending notifications dropped on shutdown", zap.Error(err))
	}
}
