package command

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"bloghub/internal/microservices/http-api/dto"
)

var commentCmd = &cobra.Command{
	Use:   "comments",
	Short: "Comment moderation commands",
	Long:  `List comments awaiting confirmation and confirm them.`,
}

var pendingCommentsCmd = &cobra.Command{
	Use:   "pending",
	Short: "List comments awaiting confirmation",
	RunE: func(cmd *cobra.Command, args []string) error {
		httpClient, err := GetAuthenticatedClient()
		if err != nil {
			return err
		}

		comments, err := httpClient.UnconfirmedComments()
		if err != nil {
			return fmt.Errorf("failed to list comments: %w", err)
		}
		if len(comments) == 0 {
			fmt.Println("No comments awaiting confirmation.")
			return nil
		}

		for _, c := range comments {
			fmt.Printf("#%d on post %d by %s (%s)\n", c.ID, c.PostID, author(c), c.CreatedAt.Format("2006-01-02 15:04"))
			fmt.Printf("  %s\n", c.Body)
		}
		return nil
	},
}

var confirmCommentCmd = &cobra.Command{
	Use:   "confirm [comment-id]",
	Short: "Confirm a pending comment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		commentID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid comment ID: %w", err)
		}

		httpClient, err := GetAuthenticatedClient()
		if err != nil {
			return err
		}

		result, err := httpClient.ConfirmComment(commentID)
		if err != nil {
			return fmt.Errorf("failed to confirm comment: %w", err)
		}

		fmt.Printf("✓ Comment %d confirmed", result.ID)
		if result.ConfirmedAt != nil {
			fmt.Printf(" at %s", result.ConfirmedAt.Format("2006-01-02 15:04:05"))
		}
		fmt.Println()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(commentCmd)
	commentCmd.AddCommand(pendingCommentsCmd)
	commentCmd.AddCommand(confirmCommentCmd)
}

func author(c dto.CommentResponse) string {
	if c.User == nil {
		return "unknown"
	}
	return c.User.Name
}
