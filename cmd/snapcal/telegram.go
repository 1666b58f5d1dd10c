package snapcal

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var telegramInitData string

var telegramCmd = &cobra.Command{
	Use:   "telegram",
	Short: "Authenticate via Telegram",
}

var telegramLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in with Telegram launch data",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(ctx context.Context, rt *clientApp) error {
			initData := telegramInitData
			if initData == "" {
				initData = rt.cfg.TelegramInitData
			}
			if initData == "" {
				return fmt.Errorf("no Telegram launch data: pass --init-data or set SNAPCAL_TELEGRAM_INIT_DATA")
			}
			if err := rt.session.LoginWithTelegram(ctx, initData); err != nil {
				return err
			}
			u := rt.session.User()
			fmt.Fprintf(cmd.OutOrStdout(), "Signed in via Telegram as %s\n", displayName(u.Email, u.Name, u.UserType))
			return nil
		})
	},
}

var telegramLinkCmd = &cobra.Command{
	Use:   "link",
	Short: "Link Telegram to the current account",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(ctx context.Context, rt *clientApp) error {
			if err := requireCredential(rt); err != nil {
				return err
			}
			initData := telegramInitData
			if initData == "" {
				initData = rt.cfg.TelegramInitData
			}
			if initData == "" {
				return fmt.Errorf("no Telegram launch data: pass --init-data or set SNAPCAL_TELEGRAM_INIT_DATA")
			}
			if err := rt.session.LinkTelegram(ctx, initData); err != nil {
				return err
			}
			u := rt.session.User()
			fmt.Fprintf(cmd.OutOrStdout(), "Linked Telegram account %s\n", ptrOrDash(u.TelegramUsername))
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(telegramCmd)
	telegramCmd.AddCommand(telegramLoginCmd, telegramLinkCmd)
	telegramCmd.PersistentFlags().StringVar(&telegramInitData, "init-data", "", "Telegram WebApp launch payload")
}
