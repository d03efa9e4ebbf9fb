package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/oksasatya/go-ddd-auth-service/config"
	"github.com/oksasatya/go-ddd-auth-service/internal/infrastructure/queue"
	"github.com/oksasatya/go-ddd-auth-service/pkg/helpers"
	"github.com/oksasatya/go-ddd-auth-service/pkg/mailer"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-email-worker", cfg.Env)

	if !cfg.MailSendEnabled {
		logger.Info("MAIL_SEND_ENABLED=false; email worker disabled")
		return
	}
	if cfg.RabbitMQURL == "" || cfg.RabbitMQEmailQueue == "" {
		logger.Fatal("RabbitMQ not configured")
	}
	if cfg.MailgunDomain == "" || cfg.MailgunAPIKey == "" || cfg.MailgunSender == "" {
		logger.Fatal("Mailgun not configured")
	}

	consumer, err := queue.NewEmailConsumer(cfg.RabbitMQURL, cfg.RabbitMQEmailQueue, 16, logger)
	if err != nil {
		logger.Fatalf("amqp: %v", err)
	}
	defer consumer.Close()

	proc := mailer.NewProcessor(mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender, cfg.MailgunAPIBase))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.WithField("queue", cfg.RabbitMQEmailQueue).Info("email worker listening")
	if err := consumer.Run(ctx, proc.Handle); err != nil {
		logger.WithError(err).Error("email worker stopped")
		return
	}
	logger.Info("email worker exited")
}
