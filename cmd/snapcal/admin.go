package snapcal

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Administrative operations (admin accounts only)",
}

var adminFeedbackCmd = &cobra.Command{
	Use:   "feedback",
	Short: "Review submitted feedback",
}

var (
	adminPage        int
	adminPageSize    int
	adminStatus      string
	adminReplyText   string
	adminReplyStatus string
	adminMessageText string
)

// requireAdmin runs the server-side admin probe before any admin call, so
// non-admins get a clear error instead of a raw 403.
func requireAdmin(ctx context.Context, rt *clientApp) error {
	if err := requireCredential(rt); err != nil {
		return err
	}
	if !rt.api.CheckAdmin(ctx, rt.session.Credential()) {
		return fmt.Errorf("this account does not have admin access")
	}
	return nil
}

var adminFeedbackListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all feedback, paginated",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(ctx context.Context, rt *clientApp) error {
			if err := requireAdmin(ctx, rt); err != nil {
				return err
			}
			page, err := rt.api.AllFeedback(ctx, rt.session.Credential(), adminPage, adminPageSize, adminStatus)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Page %d/%d (%d total)\n", page.Page, page.TotalPages, page.Total)
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tSTATUS\tUSER\tMESSAGE")
			for _, f := range page.Feedbacks {
				user := f.UserID
				if f.User != nil {
					user = displayName(nil, f.User.Name, f.User.UserType)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", f.ID, f.Status, user, f.Message)
			}
			return w.Flush()
		})
	},
}

var adminFeedbackStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show feedback counts by status",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(ctx context.Context, rt *clientApp) error {
			if err := requireAdmin(ctx, rt); err != nil {
				return err
			}
			stats, err := rt.api.FeedbackStats(ctx, rt.session.Credential())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Total: %d\n", stats.Total)
			fmt.Fprintf(out, "Pending: %d | In review: %d | Responded: %d | Closed: %d\n",
				stats.Pending, stats.InReview, stats.Responded, stats.Closed)
			if stats.AverageRating != nil {
				fmt.Fprintf(out, "Average rating: %.1f\n", *stats.AverageRating)
			}
			return nil
		})
	},
}

var adminFeedbackReplyCmd = &cobra.Command{
	Use:   "reply FEEDBACK_ID",
	Short: "Reply to feedback, notifying the user on Telegram when possible",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if adminReplyText == "" {
			return fmt.Errorf("--message is required")
		}
		return withApp(func(ctx context.Context, rt *clientApp) error {
			if err := requireAdmin(ctx, rt); err != nil {
				return err
			}
			result, err := rt.api.ReplyFeedback(ctx, rt.session.Credential(), args[0], adminReplyText, adminReplyStatus)
			if err != nil {
				return err
			}
			if result.TelegramSent {
				fmt.Fprintln(cmd.OutOrStdout(), "Reply saved and delivered via Telegram")
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "Reply saved (no Telegram delivery)")
			}
			return nil
		})
	},
}

var adminUsersCmd = &cobra.Command{
	Use:   "users",
	Short: "List Telegram-reachable users",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(ctx context.Context, rt *clientApp) error {
			if err := requireAdmin(ctx, rt); err != nil {
				return err
			}
			users, err := rt.api.TelegramUsers(ctx, rt.session.Credential())
			if err != nil {
				return err
			}
			if len(users) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No Telegram users")
				return nil
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tUSERNAME\tTYPE")
			for _, u := range users {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", u.ID, ptrOrDash(u.Name), ptrOrDash(u.TelegramUsername), u.UserType)
			}
			return w.Flush()
		})
	},
}

var adminMessageCmd = &cobra.Command{
	Use:   "message USER_ID",
	Short: "Send a direct message to a user via Telegram",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if adminMessageText == "" {
			return fmt.Errorf("--message is required")
		}
		return withApp(func(ctx context.Context, rt *clientApp) error {
			if err := requireAdmin(ctx, rt); err != nil {
				return err
			}
			if err := rt.api.SendUserMessage(ctx, rt.session.Credential(), args[0], adminMessageText); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Message sent")
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(adminCmd)
	adminCmd.AddCommand(adminFeedbackCmd, adminUsersCmd, adminMessageCmd)
	adminFeedbackCmd.AddCommand(adminFeedbackListCmd, adminFeedbackStatsCmd, adminFeedbackReplyCmd)
	adminFeedbackListCmd.Flags().IntVar(&adminPage, "page", 1, "Page number")
	adminFeedbackListCmd.Flags().IntVar(&adminPageSize, "page-size", 20, "Items per page")
	adminFeedbackListCmd.Flags().StringVar(&adminStatus, "status", "", "Filter by status")
	adminFeedbackReplyCmd.Flags().StringVar(&adminReplyText, "message", "", "Reply text")
	adminFeedbackReplyCmd.Flags().StringVar(&adminReplyStatus, "status", "responded", "New feedback status")
	adminMessageCmd.Flags().StringVar(&adminMessageText, "message", "", "Message text")
}
