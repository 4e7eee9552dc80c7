package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/nabeelarbab82-debug/LuxuryYachts/internal/config"
	kafkax "github.com/nabeelarbab82-debug/LuxuryYachts/internal/kafka"
	"github.com/nabeelarbab82-debug/LuxuryYachts/internal/logging"
	"github.com/nabeelarbab82-debug/LuxuryYachts/internal/notify"
	"github.com/nabeelarbab82-debug/LuxuryYachts/internal/redisx"
	"github.com/sirupsen/logrus"
)

// notifier turns order events from Kafka into booking notices queued on
// RabbitMQ, and delivers queued notices.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	log := logging.New(cfg.LogLevel, cfg.LogFormat)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// RabbitMQ publisher
	pub := notify.NewPublisher(cfg.RabbitURL, cfg.NotifyQueue)
	defer pub.Close()

	svc := &notify.Service{
		Dedup:          &redisx.Dedup{Client: rdb, Service: "notifier"},
		Publisher:      pub,
		WhatsAppNumber: cfg.WhatsAppNumber,
		Log:            log,
	}
	cons := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.NotifierGroup, cfg.PaymentTopic, cfg.NotifierWorkers, log)
	delivery := &notify.Consumer{
		URL:      cfg.RabbitURL,
		Queue:    cfg.NotifyQueue,
		Prefetch: cfg.NotifierWorkers,
		Sender:   notify.LogSender{Log: log},
		Log:      log,
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		log.WithFields(logrus.Fields{
			"group":   cfg.NotifierGroup,
			"topic":   cfg.PaymentTopic,
			"workers": cfg.NotifierWorkers,
		}).Info("notifier consumer started")
		if err := cons.Start(ctx, svc.HandleOrderEvent); err != nil {
			log.WithError(err).Error("consumer exit")
			cancel()
		}
	}()
	go func() {
		defer wg.Done()
		if err := delivery.Run(ctx); err != nil {
			log.WithError(err).Error("notice delivery exit")
			cancel()
		}
	}()

	// graceful shutdown
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
	case <-ctx.Done():
	}
	log.Info("shutting down notifier...")
	cancel()
	wg.Wait()
}
