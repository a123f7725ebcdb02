package main

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"recap/internal/slack"
)

var channelsCmd = &cobra.Command{
	Use:   "channels",
	Short: "List channels visible to the bot",
	Long: `List the public channels the bot token can see.

Shows channel name, ID, and whether the bot is a member. Only channels
the bot is a member of can be summarized.

Examples:
  recap channels
  recap channels --human`,
	Args: cobra.NoArgs,
	RunE: runChannels,
}

func init() {
	rootCmd.AddCommand(channelsCmd)
}

// ChannelsResponse is the JSON output of the channels command.
type ChannelsResponse struct {
	Channels []slack.Channel `json:"channels"`
}

func runChannels(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	client := mustSlackClient(cfg)

	channels, err := client.ListChannels(cmd.Context())
	if err != nil {
		exitWithError(exitCodeFor(err), "listing channels: %v", err)
	}

	// Sort by name for consistent output
	sort.Slice(channels, func(i, j int) bool {
		return channels[i].Name < channels[j].Name
	})

	// Ensure channels is an empty array, not null
	if channels == nil {
		channels = []slack.Channel{}
	}

	response := ChannelsResponse{Channels: channels}
	if humanOutput {
		return outputChannelsHuman(response)
	}
	return outputJSON(response)
}

func outputChannelsHuman(response ChannelsResponse) error {
	if len(response.Channels) == 0 {
		fmt.Println("No channels found. Make sure the bot is invited to channels.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tID\tMEMBER")
	fmt.Fprintln(w, "----\t--\t------")
	for _, ch := range response.Channels {
		member := ""
		if ch.IsMember {
			member = "yes"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", ch.Name, ch.ID, member)
	}
	w.Flush()

	fmt.Printf("\nTotal: %d channels\n", len(response.Channels))
	return nil
}
