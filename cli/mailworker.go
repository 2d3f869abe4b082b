package cli

import (
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/moebelhaus/shop-backend/config"
	"github.com/moebelhaus/shop-backend/mailer"
	"github.com/spf13/cobra"
)

func NewMailWorkerCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:          "mail-worker",
		Short:        "從 RabbitMQ 取出郵件並寄送",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := rootOpts.load()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			if cfg.RabbitMQ.URL == "" {
				return errors.New("缺少 rabbitmq.url")
			}
			if cfg.Mail.APIURL == "" || cfg.Mail.APIKey == "" {
				return errors.New("缺少 mail.apiUrl 或 mail.apiKey")
			}

			conn, err := config.SetupRabbitMQConnection(cfg.RabbitMQ)
			if err != nil {
				return err
			}
			defer conn.Close()

			worker, ch, err := mailer.NewWorker(conn, cfg.RabbitMQ.Queue, mailer.NewClient(cfg.Mail, log), log)
			if err != nil {
				return err
			}
			defer ch.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return worker.Run(ctx)
		},
	}
}
