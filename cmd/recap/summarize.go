package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"recap/internal/recap"
	"recap/internal/slack"
	"recap/internal/transcript"
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize <channel>",
	Short: "Summarize recent channel activity (preview only by default)",
	Long: `Fetch recent messages from a Slack channel and generate a Claude-written
summary. By default the summary is previewed locally; use --post to send
it back to Slack.

The channel may be a name, a #name, or a channel ID. The bot must be a
member of the channel to read its history.

Examples:
  recap summarize general
  recap summarize #eng-infra --since 7d --threads
  recap summarize general --hours 48 --style brief
  recap summarize general --post --post-to eng-digest`,
	Args: cobra.ExactArgs(1),
	Run:  runSummarize,
}

var (
	summarizeHours   int
	summarizeSince   string
	summarizeStyle   string
	summarizeThreads bool
	summarizePost    bool
	summarizePostTo  string
)

func init() {
	rootCmd.AddCommand(summarizeCmd)

	summarizeCmd.Flags().IntVar(&summarizeHours, "hours", 24, "Hours of history to summarize")
	summarizeCmd.Flags().StringVar(&summarizeSince, "since", "", "Time period to summarize (e.g. 12h, 7d, 2w); overrides --hours")
	summarizeCmd.Flags().StringVar(&summarizeStyle, "style", "detailed", "Summary style: detailed or brief")
	summarizeCmd.Flags().BoolVar(&summarizeThreads, "threads", false, "Include thread replies for full context")
	summarizeCmd.Flags().BoolVar(&summarizePost, "post", false, "Post summary to Slack (default: preview only)")
	summarizeCmd.Flags().StringVar(&summarizePostTo, "post-to", "", "Channel to post summary to (default: same channel)")
}

func runSummarize(cmd *cobra.Command, args []string) {
	channelRef := strings.TrimPrefix(args[0], "#")

	duration := time.Duration(summarizeHours) * time.Hour
	if summarizeSince != "" {
		d, err := recap.ParseDuration(summarizeSince)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: invalid --since value: %v\n", err)
			os.Exit(ExitError)
		}
		duration = d
	}
	if duration <= 0 {
		fmt.Fprintln(os.Stderr, "error: --hours must be positive")
		os.Exit(ExitError)
	}

	style, err := transcript.ParseStyle(summarizeStyle)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(ExitError)
	}

	cfg := mustLoadConfig()
	client := mustSlackClient(cfg)
	summarizer := mustSummarizer(cfg)

	ctx := cmd.Context()

	channel, err := client.ResolveChannel(ctx, channelRef)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(exitCodeFor(err))
	}

	if summarizeThreads {
		fmt.Printf("Fetching messages and threads from #%s (last %s)...\n", channel.Name, recap.DescribeDuration(duration))
	} else {
		fmt.Printf("Fetching messages from #%s (last %s)...\n", channel.Name, recap.DescribeDuration(duration))
	}

	window := slack.NewWindow(time.Now(), duration)
	messages, err := client.FetchMessages(ctx, channel.ID, window, summarizeThreads)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: fetching #%s: %v\n", channel.Name, err)
		os.Exit(exitCodeFor(err))
	}

	t := transcript.Format(messages, style)
	if t.Empty() {
		fmt.Printf("No messages found in #%s in the last %s.\n", channel.Name, recap.DescribeDuration(duration))
		return
	}

	roots := t.Stats.MessageCount - t.Stats.ReplyCount
	if t.Stats.ReplyCount > 0 {
		fmt.Printf("Found %d messages with %d thread replies\n", roots, t.Stats.ReplyCount)
	} else {
		fmt.Printf("Found %d messages\n", roots)
	}

	fmt.Println("Generating summary with Claude...")
	res, err := summarizer.Summarize(ctx, t, channel.Name, style)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(exitCodeFor(err))
	}

	// Print preview
	fmt.Println()
	fmt.Println(strings.Repeat("=", 60))
	fmt.Println("CHANNEL SUMMARY")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Println(res.Text)
	fmt.Println(strings.Repeat("=", 60))
	fmt.Println()

	// Post to Slack (only if --post flag is set)
	if summarizePost {
		target := channel
		if summarizePostTo != "" {
			target, err = client.ResolveChannel(ctx, strings.TrimPrefix(summarizePostTo, "#"))
			if err != nil {
				fmt.Fprintf(os.Stderr, "error: %v\n", err)
				os.Exit(exitCodeFor(err))
			}
		}
		fmt.Printf("Posting to #%s...\n", target.Name)
		if err := client.PostMessage(ctx, target.ID, res.Text); err != nil {
			fmt.Fprintf(os.Stderr, "error: posting to #%s: %v\n", target.Name, err)
			os.Exit(exitCodeFor(err))
		}
		fmt.Printf("Summary posted to #%s\n", target.Name)
	} else {
		fmt.Println("(preview only: use --post to send to Slack)")
	}
}
