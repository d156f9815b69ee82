package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"fleetbook/internal/app/commands"
	bookingapp "fleetbook/internal/app/handlers/booking"
	legsapp "fleetbook/internal/app/handlers/legs"
	appoutbox "fleetbook/internal/app/outbox"
	"fleetbook/internal/app/policies"
	"fleetbook/internal/app/queries"
	"fleetbook/internal/app/schedule"
	"fleetbook/internal/app/uow"
	domainrates "fleetbook/internal/domain/rates"
	"fleetbook/internal/infra/broker/kafka"
	redisCache "fleetbook/internal/infra/cache/redis"
	"fleetbook/internal/infra/config"
	"fleetbook/internal/infra/db/mongo"
	ginserver "fleetbook/internal/infra/http/gin"
	"fleetbook/internal/infra/obs"
	infraoutbox "fleetbook/internal/infra/outbox"
	stripegw "fleetbook/internal/infra/payments/stripe"
	"fleetbook/internal/infra/storage/memory"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration invalid", "error", err)
		os.Exit(1)
	}
	logger := obs.NewLogger(cfg.Env)

	app, err := buildApplication(ctx, cfg, logger)
	if err != nil {
		logger.Error("application wiring failed", "error", err)
		os.Exit(1)
	}

	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, obs.HealthHandlers{
		Ready: app.ready,
	}, app.handlers)

	runner := schedule.NewRunner(cfg.ScheduleTick, logger, app.jobs...)
	go runner.Start(ctx)

	if app.outboxWorker != nil {
		go func() {
			if err := app.outboxWorker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("outbox worker stopped", "error", err)
			}
		}()
	}
	if app.paymentConsumer != nil {
		go func() {
			topics := []string{cfg.KafkaTopicPrefix + cfg.PaymentEventsTopic}
			if err := app.paymentConsumer.Run(ctx, topics); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("payment consumer stopped", "error", err)
			}
		}()
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("HTTP server stopped")
}

type application struct {
	handlers        ginserver.Handlers
	jobs            []schedule.Job
	outboxWorker    *infraoutbox.Worker
	paymentConsumer *kafka.Consumer
	ready           func() error
}

// buildApplication wires storage, payments and buses. Mongo, Redis, Kafka and
// Stripe are each optional; absent ones fall back to in-process substitutes.
func buildApplication(ctx context.Context, cfg config.Config, logger *slog.Logger) (application, error) {
	var (
		uowFactory  uow.UoWFactory
		readModel   legsapp.ReadModel
		outboxStore appoutbox.Outbox
		ready       = func() error { return nil }
		mongoStore  *infraoutbox.Store
	)

	if cfg.MongoURI != "" {
		client, err := mongo.New(cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return application{}, err
		}
		var ratesSource domainrates.Source = mongo.NewRatesRepository(client.DB)
		if cfg.RedisAddr != "" {
			rdb := goredis.NewClient(&goredis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
			ratesSource = redisCache.NewRatesCache(rdb, ratesSource, cfg.RatesCacheTTL, logger)
			logger.Info("rates cache enabled", "addr", cfg.RedisAddr, "ttl", cfg.RatesCacheTTL)
		}
		uowFactory = mongo.Factory{
			DB:          client.DB,
			BookingRepo: mongo.NewBookingRepository(client.DB),
			RatesRepo:   ratesSource,
		}
		readModel = mongo.NewBookingReadModel(client.DB)
		mongoStore = infraoutbox.NewStore(client.DB)
		outboxStore = mongoStore
		ready = func() error { return client.Ping(context.Background()) }
		logger.Info("mongo storage enabled", "db", cfg.MongoDB)
	} else {
		bookingRepo := memory.NewBookingRepository()
		ratesRepo := memory.NewRatesSource()
		uowFactory = memory.Factory{BookingRepo: bookingRepo, RatesRepo: ratesRepo}
		readModel = memory.NewBookingReadModel(bookingRepo)
		outboxStore = memory.NewOutbox()
		logger.Info("in-memory storage enabled")
	}

	var payments policies.PaymentsPort
	if cfg.StripeAPIKey != "" {
		payments = stripegw.NewGateway(cfg.StripeAPIKey)
		logger.Info("stripe gateway enabled")
	} else {
		payments = memory.NewPaymentsGateway()
		logger.Warn("no stripe key configured, using fake payment gateway")
	}

	encoder := appoutbox.JSONEventEncoder{}

	commandBus := commands.NewInMemoryBus()
	commands.RegisterHandler(commandBus, bookingapp.CreateBookingCommand{}.Key(), &bookingapp.CreateBookingHandler{
		UoWFactory: uowFactory,
		Outbox:     outboxStore,
		Encoder:    encoder,
		Logger:     logger,
	})
	commands.RegisterHandler(commandBus, bookingapp.ConfirmBookingCommand{}.Key(), &bookingapp.ConfirmBookingHandler{
		UoWFactory: uowFactory,
		Payments:   payments,
		Outbox:     outboxStore,
		Encoder:    encoder,
	})
	commands.RegisterHandler(commandBus, bookingapp.CancelBookingCommand{}.Key(), &bookingapp.CancelBookingHandler{
		UoWFactory: uowFactory,
		Outbox:     outboxStore,
		Encoder:    encoder,
	})
	commands.RegisterHandler(commandBus, bookingapp.RejectBookingCommand{}.Key(), &bookingapp.RejectBookingHandler{
		UoWFactory: uowFactory,
		Outbox:     outboxStore,
		Encoder:    encoder,
	})
	commands.RegisterHandler(commandBus, bookingapp.ActivateBookingCommand{}.Key(), &bookingapp.ActivateBookingHandler{
		UoWFactory: uowFactory,
		Outbox:     outboxStore,
		Encoder:    encoder,
	})
	commands.RegisterHandler(commandBus, bookingapp.CompleteBookingCommand{}.Key(), &bookingapp.CompleteBookingHandler{
		UoWFactory: uowFactory,
		Outbox:     outboxStore,
		Encoder:    encoder,
	})
	commands.RegisterHandler(commandBus, bookingapp.RequestPaymentIntentCommand{}.Key(), &bookingapp.RequestPaymentIntentHandler{
		UoWFactory: uowFactory,
		Payments:   payments,
	})
	commands.RegisterHandler(commandBus, bookingapp.AssignChauffeurCommand{}.Key(), &bookingapp.AssignChauffeurHandler{
		UoWFactory: uowFactory,
		Outbox:     outboxStore,
		Encoder:    encoder,
	})
	commands.RegisterHandler(commandBus, bookingapp.UnassignChauffeurCommand{}.Key(), &bookingapp.UnassignChauffeurHandler{
		UoWFactory: uowFactory,
		Outbox:     outboxStore,
		Encoder:    encoder,
	})

	queryBus := queries.NewInMemoryBus()
	queries.RegisterHandler(queryBus, bookingapp.GetBookingQuery{}.Key(), &bookingapp.GetBookingHandler{
		UoWFactory: uowFactory,
	})
	queries.RegisterHandler(queryBus, bookingapp.GetBookingByReferenceQuery{}.Key(), &bookingapp.GetBookingByReferenceHandler{
		UoWFactory: uowFactory,
	})

	jobs := []schedule.Job{
		&legsapp.ActivateDueLegs{
			UoWFactory: uowFactory,
			ReadModel:  readModel,
			Outbox:     outboxStore,
			Encoder:    encoder,
			Logger:     logger,
		},
		&legsapp.CompleteDueLegs{
			UoWFactory: uowFactory,
			ReadModel:  readModel,
			Outbox:     outboxStore,
			Encoder:    encoder,
			Logger:     logger,
		},
		&legsapp.ScanReminders{
			ReadModel: readModel,
			Outbox:    outboxStore,
			Encoder:   encoder,
			Notifier:  obs.LogNotifier{Logger: logger},
			Logger:    logger,
		},
	}

	app := application{
		handlers: ginserver.Handlers{
			Booking: ginserver.BookingHandler{Commands: commandBus, Queries: queryBus},
		},
		jobs:  jobs,
		ready: ready,
	}

	if len(cfg.KafkaBrokers) > 0 {
		producer, err := kafka.NewProducer(cfg.KafkaBrokers, nil)
		if err != nil {
			return application{}, err
		}
		if mongoStore != nil {
			app.outboxWorker = &infraoutbox.Worker{
				Store:       mongoStore,
				Producer:    producer,
				Interval:    cfg.OutboxPollInterval,
				TopicPrefix: cfg.KafkaTopicPrefix,
				Backoff:     cfg.RetryBackoff,
				Logger:      logger,
			}
		} else {
			logger.Warn("kafka configured without mongo, outbox worker disabled")
		}
		consumer, err := kafka.NewConsumer(cfg.KafkaBrokers, "fleetbook-payments", nil, kafka.PaymentEventsHandler{
			Commands: commandBus,
			Logger:   logger,
		})
		if err != nil {
			return application{}, err
		}
		app.paymentConsumer = consumer
		logger.Info("kafka enabled", "brokers", cfg.KafkaBrokers)
	}

	return app, nil
}
