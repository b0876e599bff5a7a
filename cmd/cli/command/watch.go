package command

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"bloghub/cmd/cli/command/client"
	"bloghub/internal/broadcast"
)

var watchChannels []string

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Stream confirmed comments and notifications",
	Long: `Connects to the API websocket and prints events as they arrive.

Channels: "comments" (every confirmed comment), "posts.<id>" (one post),
"users.<your-id>" (your notifications).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		httpClient, err := GetAuthenticatedClient()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		fmt.Printf("🔌 Watching %v (Ctrl+C to stop)\n", watchChannels)
		return httpClient.Watch(ctx, watchChannels, PrintMessage, func(n client.SystemNotice) {
			color.Yellow("🔔 %s %s", n.Channel, n.Content)
		})
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().StringSliceVar(&watchChannels, "channels", []string{broadcast.ChannelComments}, "channels to join")
}

// PrintMessage pretty prints one broadcast.
func PrintMessage(msg broadcast.Message) {
	switch msg.Event {
	case broadcast.EventCommentAdded:
		var c broadcast.CommentAdded
		if err := json.Unmarshal(msg.Data, &c); err != nil {
			return
		}
		color.Cyan("[%s] %s on %s: %s", msg.Channel, c.AuthorName, c.PostSlug, c.Body)
	case broadcast.EventNotificationCreated:
		var n struct {
			Title string `json:"title"`
			URL   string `json:"url"`
		}
		if err := json.Unmarshal(msg.Data, &n); err != nil {
			return
		}
		color.Green("✉ %s %s", n.Title, n.URL)
	default:
		color.HiBlack("[%s] %s", msg.Channel, msg.Event)
	}
}
