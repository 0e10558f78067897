package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/SeakMengs/DossierFlow/internal/config"
	"github.com/SeakMengs/DossierFlow/internal/database"
	"github.com/SeakMengs/DossierFlow/internal/env"
	"github.com/SeakMengs/DossierFlow/internal/mailer"
	"github.com/SeakMengs/DossierFlow/internal/notifier"
	"github.com/SeakMengs/DossierFlow/internal/queue"
	"github.com/SeakMengs/DossierFlow/internal/repository"
	"github.com/SeakMengs/DossierFlow/internal/util"
)

// this function run before main
func init() {
	env.LoadEnv(".env")
}

const (
	MAX_WORKER = 3
)

func main() {
	cfg := config.GetConfig()
	logger := util.NewLogger(cfg.ENV)

	db, err := database.ConnectReturnGormDB(cfg.DB)
	if err != nil {
		logger.Panic(err)
	}

	sqlDb, err := db.DB()
	if err != nil {
		logger.Panic(err)
	}
	defer sqlDb.Close()
	logger.Info("Database connected \n")

	mail, err := mailer.NewClient(cfg.Mail, cfg.IsProduction(), logger)
	if err != nil {
		logger.Panic(err)
	}

	repo := repository.NewRepository(db, logger, nil)
	dispatcher := notifier.NewDispatcher(repo, mail, cfg.FrontURL, logger)

	rabbitMQ, err := queue.NewRabbitMQ(cfg.RabbitMQ.GetConnectionString())
	if err != nil {
		logger.Panic("Error connecting to RabbitMQ: ", err)
	}
	defer func() {
		if err := rabbitMQ.Close(); err != nil {
			logger.Errorf("Failed to close RabbitMQ connection: %v", err)
		}
	}()
	logger.Infof("Connected to RabbitMQ at %s:%s", cfg.RabbitMQ.HOST, cfg.RabbitMQ.PORT)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rabbitMQ.ConsumeNotificationJob(ctx, dispatcher.Handle, MAX_WORKER, logger); err != nil {
		logger.Fatalf("Failed to consume notification job: %v", err)
	}
	logger.Infof("Started consuming notification job")

	<-ctx.Done()
	logger.Info("Shutting down notification consumer")
}
