package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/IBM/sarama"
	"github.com/safarika/busbook/config"
	httpDelivery "github.com/safarika/busbook/internal/delivery/http"
	kafkaTopics "github.com/safarika/busbook/internal/delivery/kafka"
	"github.com/safarika/busbook/internal/delivery/kafka/consumer"
	"github.com/safarika/busbook/internal/delivery/kafka/producer"
	infraPostgres "github.com/safarika/busbook/internal/infra/postgres"
	infraRedis "github.com/safarika/busbook/internal/infra/redis"
	"github.com/safarika/busbook/internal/payment"
	repo "github.com/safarika/busbook/internal/repository/postgres"
	redisRepo "github.com/safarika/busbook/internal/repository/redis"
	"github.com/safarika/busbook/internal/service"
	"github.com/safarika/busbook/pkg/cipher"
	pkgKafka "github.com/safarika/busbook/pkg/kafka"
	pkgLog "github.com/safarika/busbook/pkg/logger"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	l := pkgLog.InitializeZapLogger(pkgLog.ZapConfig{
		Level:    cfg.Log.Level,
		Mode:     cfg.Log.Mode,
		Encoding: cfg.Log.Encoding,
	})

	db, err := infraPostgres.Connect(cfg.Postgres)
	if err != nil {
		l.Fatalf(ctx, "Failed to connect to Postgres: %v", err)
	}
	defer infraPostgres.Disconnect(db)

	redisCli, err := infraRedis.Connect(ctx, cfg.Redis)
	if err != nil {
		l.Fatalf(ctx, "Failed to connect to Redis: %v", err)
	}
	defer infraRedis.Disconnect(redisCli)

	bkRepo := repo.NewGormBookingRepository(db, l)
	atRepo := repo.NewGormPaymentAttemptRepository(db, l)
	corrRepo := redisRepo.NewRedisCorrelationRepository(redisCli, cfg.Saga.AuditTTL, l)

	// Kafka producer
	kafkaSyncProd, err := pkgKafka.NewProducer(pkgKafka.ProducerConfig{
		Brokers:      cfg.Kafka.Brokers,
		RetryMax:     cfg.Kafka.ProducerRetryMax,
		RequiredAcks: cfg.Kafka.ProducerRequiredAcks,
	})
	if err != nil {
		l.Fatalf(ctx, "Failed to initialize Kafka producer: %v", err)
	}

	prod := producer.NewProducer(kafkaSyncProd, l)
	defer prod.Close()

	// Payment gateways
	ciph, err := cipher.NewAESCipher(cfg.Payment.CipherKey)
	if err != nil {
		l.Fatalf(ctx, "Failed to initialize credential cipher: %v", err)
	}

	router := payment.NewRouter(l)
	router.Register(payment.ProviderMixx, payment.NewMixxGateway(cfg.Payment, l))
	router.Register(payment.ProviderBmslg, payment.NewBmslgGateway(payment.BmslgCredentials{
		UsernameEnc: cfg.Payment.BmslgUsernameEnc,
		PasswordEnc: cfg.Payment.BmslgPasswordEnc,
		OwnerID:     cfg.Payment.BmslgOwnerID,
	}, ciph, payment.NoopAuthenticator{}, l))
	router.Register(payment.ProviderCash, payment.NewCashGateway(l))

	// Services
	bkSvc := service.NewBookingService(
		bkRepo,
		atRepo,
		corrRepo,
		router,
		prod,
		service.NewLogNotificationService(l),
		service.NewLogTicketService(l),
		service.NewLogPartnerHook(l),
		cfg.Payment.CallbackBaseURL,
		l,
	)

	// Consumers: one pool per topic, independent groups. Each worker opens its
	// own group client so the pool actually runs in parallel.
	consumers := make([]*consumer.Consumer, 0, 3)
	for _, pool := range []struct {
		groupID string
		topic   string
		workers int
	}{
		{cfg.Kafka.BookingGroupID, kafkaTopics.TopicBookingCreated, cfg.Kafka.BookingWorkers},
		{cfg.Kafka.PaymentGroupID, kafkaTopics.TopicBookingPayment, cfg.Kafka.PaymentWorkers},
		{cfg.Kafka.CallbackGroupID, kafkaTopics.TopicPaymentCallback, cfg.Kafka.CallbackWorkers},
	} {
		newGroup := func() (sarama.ConsumerGroup, error) {
			return pkgKafka.NewConsumer(pkgKafka.ConsumerConfig{
				Brokers: cfg.Kafka.Brokers,
				GroupID: pool.groupID,
			})
		}

		cons := consumer.NewConsumer(newGroup, []string{pool.topic}, pool.workers, bkSvc, l)
		if err := cons.Start(ctx); err != nil {
			l.Fatalf(ctx, "Failed to start consumer for %s: %v", pool.topic, err)
		}
		consumers = append(consumers, cons)
	}

	// Reconciliation sweeper
	rec := service.NewReconciler(bkRepo, prod, l, cfg.Saga, cfg.Payment.CallbackBaseURL)
	if err := rec.Start(ctx); err != nil {
		l.Fatalf(ctx, "Failed to start reconciler: %v", err)
	}

	// HTTP server: booking ingress and operational endpoints
	handler := httpDelivery.NewHTTPHandler(bkSvc, rec, l)
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler: httpDelivery.NewRouter(handler),
	}
	go func() {
		l.Infof(ctx, "HTTP server is listening on port: %d", cfg.Server.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			l.Fatalf(ctx, "HTTP server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	l.Info(ctx, "Server shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		l.Errorf(ctx, "HTTP server shutdown: %v", err)
	}

	if err := rec.Stop(); err != nil {
		l.Errorf(ctx, "Reconciler stop: %v", err)
	}

	cancel()
	time.Sleep(1 * time.Second)

	for _, cons := range consumers {
		if err := cons.Close(); err != nil {
			l.Errorf(ctx, "Consumer close: %v", err)
		}
	}

	l.Info(ctx, "Server exited")
}
