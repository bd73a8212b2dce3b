package bootstrap

import (
	"context"
	"database/sql"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/go-sql-driver/mysql"
	"github.com/iamciscoo/TISCOfinal-sub002/configs"
	"github.com/iamciscoo/TISCOfinal-sub002/internal/adapter/cache"
	apphttp "github.com/iamciscoo/TISCOfinal-sub002/internal/adapter/http"
	"github.com/iamciscoo/TISCOfinal-sub002/internal/adapter/http/middleware"
	"github.com/iamciscoo/TISCOfinal-sub002/internal/adapter/kafka"
	"github.com/iamciscoo/TISCOfinal-sub002/internal/adapter/payment"
	"github.com/iamciscoo/TISCOfinal-sub002/internal/adapter/queue"
	"github.com/iamciscoo/TISCOfinal-sub002/internal/adapter/repo"
	"github.com/iamciscoo/TISCOfinal-sub002/internal/logging"
	"github.com/iamciscoo/TISCOfinal-sub002/internal/security"
	"github.com/iamciscoo/TISCOfinal-sub002/internal/usecase"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
)

type App struct {
	Router *gin.Engine
}

func InitWithConfig(cfg configs.Config) (*App, func(), error) {
	log := logging.Init(cfg.App.Name, cfg.App.LogFile)

	// mysql
	db, err := sql.Open("mysql", cfg.MySQL.DSN)
	if err != nil {
		return nil, nil, err
	}
	db.SetConnMaxLifetime(cfg.MySQL.ConnMaxLifetime)
	db.SetMaxOpenConns(cfg.MySQL.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MySQL.MaxIdleConns)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	err = db.PingContext(ctx)
	cancel()
	if err != nil {
		return nil, nil, err
	}

	// redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       0,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, nil, err
	}

	// rabbitmq
	conn, err := amqp.Dial(cfg.Rabbit.URL)
	if err != nil {
		return nil, nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		return nil, nil, err
	}

	// adapters
	orderRepo := repo.NewMySQLOrderRepo(db)
	productRepo := repo.NewMySQLProductRepo(db)
	paymentRepo := repo.NewMySQLPaymentTxRepo(db)
	sessions := cache.NewRedisSessionStore(rdb, cfg.Checkout.SessionTTL)
	invalidator := cache.NewRedisInvalidator(rdb)
	provider := payment.NewClient(cfg.Payment.BaseURL, cfg.Payment.APIKey, cfg.Payment.RequestTimeout)
	notifier, err := queue.NewNotifyProducer(ch)
	if err != nil {
		return nil, nil, err
	}

	// core
	pricer := usecase.NewPricer(productRepo)
	placeUC := usecase.NewPlaceOrder(pricer, orderRepo, notifier, invalidator, logging.New("usecase.place_order"))
	checkoutUC := usecase.NewMobileCheckout(usecase.MobileCheckoutDeps{
		Pricer:      pricer,
		Orders:      orderRepo,
		Payments:    paymentRepo,
		Sessions:    sessions,
		Provider:    provider,
		Notifier:    notifier,
		Invalidator: invalidator,
		PollWindow:  cfg.Payment.PollWindow,
		MaxAttempts: cfg.Payment.MaxAttempts,
		Log:         logging.New("usecase.mobile_checkout"),
	})
	transitionUC := usecase.NewTransitionOrder(orderRepo, invalidator, logging.New("usecase.transition_order"))
	updateUC := usecase.NewUpdateOrder(orderRepo, invalidator, logging.New("usecase.update_order"))
	markPaidUC := usecase.NewMarkPaid(orderRepo, paymentRepo, notifier, invalidator, logging.New("usecase.mark_paid"))

	// workers
	if err := setupNotificationWorker(ch); err != nil {
		return nil, nil, err
	}
	kafkaCancel, err := setupPaymentStatusListener(cfg, checkoutUC)
	if err != nil {
		return nil, nil, err
	}

	// http
	verifier := security.NewWebhookVerifier(cfg.Payment.WebhookSecret)
	handlers := apphttp.Handlers{
		Orders:   apphttp.NewOrderHandler(placeUC, transitionUC, updateUC, orderRepo),
		Payments: apphttp.NewPaymentHandler(checkoutUC, cfg.Payment.PollInterval),
		Webhooks: apphttp.NewWebhookHandler(checkoutUC, verifier),
		Admin:    apphttp.NewAdminHandler(markPaidUC),
		Tokens:   apphttp.NewTokenHandler(cfg),
	}
	router := apphttp.NewRouter(handlers, middleware.NewAuthz(cfg))

	cleanup := func() {
		kafkaCancel()
		_ = ch.Close()
		_ = conn.Close()
		_ = rdb.Close()
		_ = db.Close()
	}

	log.Info("storefront-api wired", "http_addr", cfg.App.HTTPAddr)
	return &App{Router: router}, cleanup, nil
}

func setupNotificationWorker(ch *amqp.Channel) error {
	h := queue.NewNotificationHandler(queue.LogSender{Log: logging.New("notify.sender")})

	router := queue.NewRouter(ch, logging.New("notify.worker"), queue.WithPrefetch(50))
	router.Register(queue.QueueOrderCreated, queue.JSONHandler[usecase.OrderCreatedMsg]{HandleFunc: h.HandleOrderCreated})
	router.Register(queue.QueuePaymentSucceeded, queue.JSONHandler[usecase.PaymentSucceededMsg]{HandleFunc: h.HandlePaymentSucceeded})
	return router.Start()
}

func setupPaymentStatusListener(cfg configs.Config, checkout *usecase.MobileCheckout) (context.CancelFunc, error) {
	grp, err := kafka.NewGroup(cfg.Kafka.Brokers, cfg.Kafka.GroupID)
	if err != nil {
		return nil, err
	}

	log := logging.New("kafka.payment_status")
	h := kafka.NewPaymentStatusHandler(checkout)
	consumer := kafka.NewConsumer(grp, []string{cfg.Kafka.StatusTopic}, h.Handle, log)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		if err := consumer.Start(ctx); err != nil && ctx.Err() == nil {
			log.Error("payment status consumer stopped", "err", err)
		}
	}()
	return cancel, nil
}
