package snapcal

import (
	"context"
	"fmt"
	"time"

	"github.com/snapcal/snapcal-cli/internal/session"
	"github.com/spf13/cobra"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check backend reachability and session health",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(ctx context.Context, rt *clientApp) error {
			out := cmd.OutOrStdout()
			issues := 0

			fmt.Fprintf(out, "Backend: %s\n", rt.cfg.BaseURL)
			health, err := rt.api.Health(ctx)
			if err != nil {
				fmt.Fprintf(out, "Health: unreachable (%v)\n", err)
				issues++
			} else {
				fmt.Fprintf(out, "Health: %s\n", health.Status)
			}

			switch {
			case !rt.session.Authenticated():
				fmt.Fprintln(out, "Session: none")
			case session.CredentialExpired(rt.session.Credential(), time.Now()):
				fmt.Fprintln(out, "Session: expired credential")
				issues++
			default:
				u := rt.session.User()
				fmt.Fprintf(out, "Session: %s (%s)\n", displayName(u.Email, u.Name, u.UserType), u.UserType)
				if expiry, ok := session.CredentialExpiry(rt.session.Credential()); ok {
					fmt.Fprintf(out, "Expires: %s\n", expiry.Local().Format("2006-01-02 15:04"))
				}
			}

			if _, _, err := rt.state.LoadSession(); err != nil {
				fmt.Fprintf(out, "Local state: read error (%v)\n", err)
				issues++
			} else {
				fmt.Fprintln(out, "Local state: ok")
			}

			if issues > 0 {
				return fmt.Errorf("doctor found %d issue(s)", issues)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}
