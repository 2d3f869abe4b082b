package cli

import (
	"context"
	"fmt"

	"github.com/moebelhaus/shop-backend/config"
	"github.com/moebelhaus/shop-backend/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// RootOptions 所有子指令共用的參數
type RootOptions struct {
	ConfigFile string
}

func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "shop-backend",
		Short: "Möbelhaus 商店後端",
	}
	cmd.PersistentFlags().StringVarP(&opts.ConfigFile, "config", "c", "config/config.yaml", "設定檔路徑")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewMailWorkerCommand(opts))
	cmd.AddCommand(NewTokenCommand(opts))

	return cmd
}

// 讀取設定並建立 logger
func (o *RootOptions) load() (config.Config, *zap.Logger, error) {
	cfg, err := config.LoadConfig(o.ConfigFile)
	if err != nil {
		return cfg, nil, fmt.Errorf("讀取設定失敗: %w", err)
	}
	log, err := logger.New(cfg.Log)
	if err != nil {
		return cfg, nil, fmt.Errorf("建立 logger 失敗: %w", err)
	}
	return cfg, log, nil
}

func Execute() error {
	return NewRootCommand().ExecuteContext(context.Background())
}
