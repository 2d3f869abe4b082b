package cli

import (
	"github.com/moebelhaus/shop-backend/config"
	"github.com/moebelhaus/shop-backend/repository"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:          "migrate",
		Short:        "建立或更新資料表",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := rootOpts.load()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			db, err := config.SetupDatabase(cfg.Database)
			if err != nil {
				return err
			}
			defer func() {
				dbInstance, _ := db.DB()
				_ = dbInstance.Close()
			}()

			if err := repository.NewStore(db).AutoMigrate(cmd.Context()); err != nil {
				return err
			}
			log.Info("資料表已更新", zap.String("driver", cfg.Database.Driver))
			return nil
		},
	}
}
