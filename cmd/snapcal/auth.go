package snapcal

import (
	"context"
	"fmt"

	"github.com/snapcal/snapcal-cli/internal/session"
	"github.com/spf13/cobra"
)

var (
	authEmail    string
	authPassword string
	authName     string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in with email and password",
	RunE: func(cmd *cobra.Command, args []string) error {
		if authEmail == "" || authPassword == "" {
			return fmt.Errorf("--email and --password are required")
		}
		return withApp(func(ctx context.Context, rt *clientApp) error {
			if err := rt.session.Login(ctx, authEmail, authPassword); err != nil {
				return err
			}
			u := rt.session.User()
			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s\n", displayName(u.Email, u.Name, u.UserType))
			return nil
		})
	},
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a new account",
	RunE: func(cmd *cobra.Command, args []string) error {
		if authEmail == "" || authPassword == "" {
			return fmt.Errorf("--email and --password are required")
		}
		return withApp(func(ctx context.Context, rt *clientApp) error {
			if err := rt.session.Register(ctx, authEmail, authPassword, authName); err != nil {
				return err
			}
			u := rt.session.User()
			fmt.Fprintf(cmd.OutOrStdout(), "Registered %s\n", displayName(u.Email, u.Name, u.UserType))
			return nil
		})
	},
}

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert the current anonymous account to a registered one, keeping its data",
	RunE: func(cmd *cobra.Command, args []string) error {
		if authEmail == "" || authPassword == "" {
			return fmt.Errorf("--email and --password are required")
		}
		return withApp(func(ctx context.Context, rt *clientApp) error {
			if err := requireCredential(rt); err != nil {
				return fmt.Errorf("no account to convert: %w", err)
			}
			if rt.session.User().Registered() {
				return fmt.Errorf("account is already registered")
			}
			if err := rt.session.ConvertAnonymous(ctx, authEmail, authPassword, authName); err != nil {
				return err
			}
			u := rt.session.User()
			fmt.Fprintf(cmd.OutOrStdout(), "Converted to registered account %s\n", displayName(u.Email, u.Name, u.UserType))
			return nil
		})
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and clear the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(ctx context.Context, rt *clientApp) error {
			u := rt.session.User()
			if u != nil && !u.Registered() {
				fmt.Fprintln(cmd.OutOrStdout(), "Warning: this account is anonymous; its data cannot be recovered after logout.")
			}
			rt.session.Logout()
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return nil
		})
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the current account and goals",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(ctx context.Context, rt *clientApp) error {
			u := rt.session.User()
			if u == nil {
				return session.ErrNotAuthenticated
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "User: %s (%s)\n", displayName(u.Email, u.Name, u.UserType), u.UserType)
			fmt.Fprintf(out, "ID: %s\n", u.ID)
			if u.TelegramUsername != nil {
				fmt.Fprintf(out, "Telegram: @%s\n", *u.TelegramUsername)
			}
			fmt.Fprintf(out, "Goals: %d kcal | P %.1fg | C %.1fg | F %.1fg\n",
				u.DailyCalorieGoal, u.DailyProteinGoal, u.DailyCarbsGoal, u.DailyFatGoal)
			if u.BMR != nil && u.TDEE != nil {
				fmt.Fprintf(out, "BMR: %.0f kcal | TDEE: %.0f kcal\n", *u.BMR, *u.TDEE)
			}
			if expiry, ok := session.CredentialExpiry(rt.session.Credential()); ok {
				fmt.Fprintf(out, "Session expires: %s\n", expiry.Local().Format("2006-01-02 15:04"))
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(loginCmd, registerCmd, convertCmd, logoutCmd, whoamiCmd)
	for _, c := range []*cobra.Command{loginCmd, registerCmd, convertCmd} {
		c.Flags().StringVar(&authEmail, "email", "", "Account email")
		c.Flags().StringVar(&authPassword, "password", "", "Account password")
	}
	registerCmd.Flags().StringVar(&authName, "name", "", "Display name")
	convertCmd.Flags().StringVar(&authName, "name", "", "Display name")
}
