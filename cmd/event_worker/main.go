package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/oksasatya/go-ddd-user-service/config"
	"github.com/oksasatya/go-ddd-user-service/internal/infrastructure/messaging"
	"github.com/oksasatya/go-ddd-user-service/internal/interface/worker"
	"github.com/oksasatya/go-ddd-user-service/pkg/helpers"
	"github.com/oksasatya/go-ddd-user-service/pkg/mailer"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-event-worker", cfg.Env)

	if cfg.RabbitMQURL == "" || cfg.RabbitMQEventsQueue == "" {
		logger.Fatal("RabbitMQ not configured")
	}

	handler := &worker.UserEventHandler{
		Branding: worker.Branding{CompanyName: cfg.CompanyName, AppName: cfg.AppName, SupportURL: cfg.SupportURL},
		Logger:   logger,
	}
	if cfg.MailSendEnabled {
		if cfg.MailgunDomain == "" || cfg.MailgunAPIKey == "" || cfg.MailgunSender == "" {
			logger.Fatal("Mailgun not configured")
		}
		handler.Mailer = mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender)
	} else {
		logger.Info("MAIL_SEND_ENABLED=false; events are logged, no emails are sent")
	}

	conn, err := amqp.Dial(cfg.RabbitMQURL)
	if err != nil {
		logger.WithError(err).Fatal("amqp dial")
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		logger.WithError(err).Fatal("amqp channel")
	}
	defer func() { _ = ch.Close() }()

	// Prefetch for fair dispatch
	if err := ch.Qos(16, 0, false); err != nil {
		logger.WithError(err).Fatal("qos")
	}
	if err := helpers.DeclareTopicExchange(ch, cfg.RabbitMQExchange); err != nil {
		logger.WithError(err).Fatal("declare exchange")
	}
	if err := helpers.BindQueue(ch, cfg.RabbitMQExchange, cfg.RabbitMQEventsQueue, messaging.RoutingPattern); err != nil {
		logger.WithError(err).Fatal("bind queue")
	}

	msgs, err := ch.Consume(cfg.RabbitMQEventsQueue, "", false, false, false, false, nil)
	if err != nil {
		logger.WithError(err).Fatal("consume")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	done := make(chan struct{})

	go func() {
		defer close(done)
		for msg := range msgs {
			c, cancel := context.WithTimeout(ctx, 15*time.Second)
			err := handler.Handle(c, msg.Body)
			cancel()

			var perm *worker.PermanentError
			switch {
			case err == nil:
				_ = msg.Ack(false)
			case errors.As(err, &perm):
				logger.WithError(err).WithField("routing_key", msg.RoutingKey).Warn("dropping message")
				_ = msg.Nack(false, false)
			default:
				logger.WithError(err).WithField("routing_key", msg.RoutingKey).Error("handle failed, requeueing")
				_ = msg.Nack(false, true)
			}
		}
	}()

	logger.WithField("queue", cfg.RabbitMQEventsQueue).Info("event worker listening")
	<-ctx.Done()
	logger.Info("shutting down...")
	_ = ch.Close()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
	}
}
