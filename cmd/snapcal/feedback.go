package snapcal

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/snapcal/snapcal-cli/internal/model"
	"github.com/snapcal/snapcal-cli/internal/tracker"
	"github.com/spf13/cobra"
)

var feedbackCmd = &cobra.Command{
	Use:   "feedback",
	Short: "Send feedback to the team",
}

var (
	feedbackSubject  string
	feedbackCategory string
	feedbackRating   int
)

var feedbackSendCmd = &cobra.Command{
	Use:   "send MESSAGE",
	Short: "Submit feedback",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if feedbackRating != 0 && (feedbackRating < 1 || feedbackRating > 5) {
			return fmt.Errorf("--rating must be between 1 and 5")
		}
		return withApp(func(ctx context.Context, rt *clientApp) error {
			if err := ensureUser(ctx, rt); err != nil {
				return err
			}
			in := model.FeedbackCreate{
				Subject:  feedbackSubject,
				Message:  args[0],
				Category: feedbackCategory,
			}
			if feedbackRating != 0 {
				in.Rating = &feedbackRating
			}
			if err := rt.tracker.SubmitFeedback(ctx, in); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Feedback sent")
			return nil
		})
	},
}

var feedbackListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show your feedback and any replies",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(ctx context.Context, rt *clientApp) error {
			if err := requireCredential(rt); err != nil {
				return err
			}
			items, err := rt.tracker.MyFeedback(ctx)
			if err != nil {
				return err
			}
			if len(items) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No feedback yet")
				return nil
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tSTATUS\tCATEGORY\tMESSAGE")
			for _, f := range items {
				id := f.ID
				if tracker.IsProvisionalID(id) {
					id = "(pending)"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", id, f.Status, f.Category, f.Message)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			for _, f := range items {
				if f.AdminResponse != nil {
					fmt.Fprintf(cmd.OutOrStdout(), "Reply to %s: %s\n", f.ID, *f.AdminResponse)
				}
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(feedbackCmd)
	feedbackCmd.AddCommand(feedbackSendCmd, feedbackListCmd)
	feedbackSendCmd.Flags().StringVar(&feedbackSubject, "subject", "", "Short subject line")
	feedbackSendCmd.Flags().StringVar(&feedbackCategory, "category", "", "Category: bug, feature, or general")
	feedbackSendCmd.Flags().IntVar(&feedbackRating, "rating", 0, "Rating 1-5 (optional)")
}
