package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/moebelhaus/shop-backend/cache"
	"github.com/moebelhaus/shop-backend/config"
	"github.com/moebelhaus/shop-backend/feed"
	"github.com/moebelhaus/shop-backend/handlers"
	"github.com/moebelhaus/shop-backend/mailer"
	"github.com/moebelhaus/shop-backend/notify"
	"github.com/moebelhaus/shop-backend/orders"
	"github.com/moebelhaus/shop-backend/payments"
	"github.com/moebelhaus/shop-backend/repository"
	"github.com/moebelhaus/shop-backend/routers"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	shutdownTimeout     = 10 * time.Second
	confirmationTimeout = 2 * time.Minute
)

type ServeOptions struct {
	*RootOptions
	AutoMigrate bool
}

func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:          "serve",
		Short:        "啟動 API 伺服器",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
	cmd.Flags().BoolVar(&opts.AutoMigrate, "migrate", false, "啟動前先更新資料表")

	return cmd
}

// 依 notify.mode 選擇寄信方式，回傳的 closer 負責關閉 RabbitMQ 連線
func newDispatcher(cfg config.Config, log *zap.Logger) (notify.Dispatcher, func(), error) {
	noop := func() {}
	if cfg.Notify.Mode == config.NotifyQueue {
		conn, err := config.SetupRabbitMQConnection(cfg.RabbitMQ)
		if err != nil {
			return nil, noop, err
		}
		publisher, ch, err := mailer.NewQueuePublisher(conn, cfg.RabbitMQ.Queue, log)
		if err != nil {
			_ = conn.Close()
			return nil, noop, err
		}
		return publisher, func() {
			_ = ch.Close()
			_ = conn.Close()
		}, nil
	}

	if cfg.Mail.APIURL == "" || cfg.Mail.APIKey == "" {
		log.Warn("未設定郵件服務，通知信將不會寄出")
		return notify.Disabled{Log: log}, noop, nil
	}
	return mailer.NewClient(cfg.Mail, log), noop, nil
}

// Redis 無法連線時仍可啟動，只是停用快取與黑名單
func connectRedis(ctx context.Context, cfg config.RedisConfig, log *zap.Logger) *redis.Client {
	if cfg.Addr == "" {
		return nil
	}
	rdb, err := config.SetupRedisConnection(ctx, cfg)
	if err != nil {
		log.Warn("Redis 無法使用，停用快取", zap.Error(err))
		return nil
	}
	return rdb
}

func runServe(ctx context.Context, opts *ServeOptions) error {
	cfg, log, err := opts.load()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	if err := cfg.Validate(); err != nil {
		return err
	}
	if !cfg.Log.Development {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := config.SetupDatabase(cfg.Database)
	if err != nil {
		return err
	}
	defer func() {
		dbInstance, _ := db.DB()
		_ = dbInstance.Close()
	}()
	store := repository.NewStore(db)
	if opts.AutoMigrate {
		if err := store.AutoMigrate(ctx); err != nil {
			return err
		}
	}

	rdb := connectRedis(ctx, cfg.Redis, log)
	if rdb != nil {
		defer rdb.Close()
	}

	dispatcher, closeMail, err := newDispatcher(cfg, log)
	if err != nil {
		return err
	}
	defer closeMail()

	var gateway payments.Gateway
	if cfg.Stripe.SecretKey != "" {
		gateway = payments.NewStripeGateway(cfg.Stripe.SecretKey, nil)
	} else {
		log.Warn("未設定 stripe.secretKey，無法建立付款頁面")
	}

	hub := feed.NewHub(log, cfg.Server.FrontendOrigins()...)
	controller := orders.NewController(store, gateway, dispatcher, cache.NewEventLog(rdb), hub, log)
	if cfg.Notify.Mode != config.NotifyQueue {
		// 直接寄送時確認信改在背景寄出，webhook 不等郵件服務回應
		confirmations := notify.NewBackground(dispatcher, confirmationTimeout, log)
		defer confirmations.Close()
		controller.SendConfirmationsVia(confirmations)
	}
	h := &handlers.Handler{
		Store:     store,
		Orders:    controller,
		Verifier:  payments.NewStripeVerifier(cfg.Stripe.WebhookSecret),
		Products:  cache.NewProductCache(rdb, log),
		Blacklist: cache.NewTokenBlacklist(rdb),
		Hub:       hub,
		Server:    cfg.Server,
		Auth:      cfg.Auth,
		Log:       log,
	}

	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           routers.SetupRouters(h),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("伺服器啟動", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("正在關閉伺服器")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
