package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/moebelhaus/shop-backend/jwt"
	"github.com/spf13/cobra"
)

// 開發與測試用：直接簽發 session token
func NewTokenCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		openID string
		name   string
		ttl    time.Duration
	)

	cmd := &cobra.Command{
		Use:          "token",
		Short:        "為指定的 openId 簽發 JWT",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := rootOpts.load()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			if cfg.Auth.JWTSecret == "" {
				return errors.New("缺少 auth.jwtSecret")
			}
			if ttl <= 0 {
				ttl = cfg.Auth.TokenTTL
			}
			token, claims, err := jwt.GenerateToken([]byte(cfg.Auth.JWTSecret), openID, name, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			fmt.Fprintf(cmd.ErrOrStderr(), "jti=%s exp=%s\n", claims.ID, claims.ExpiresAt.Time.Format(time.RFC3339))
			return nil
		},
	}
	cmd.Flags().StringVar(&openID, "open-id", "", "使用者 openId")
	cmd.Flags().StringVar(&name, "name", "", "顯示名稱")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "有效期限，預設使用 auth.tokenTTL")
	_ = cmd.MarkFlagRequired("open-id")

	return cmd
}
