package summarize

import (
	"fmt"
	"strings"

	"recap/internal/transcript"
)

// systemPrompt pins the output to Slack's mrkdwn dialect regardless of what
// the transcript contains.
const systemPrompt = `You are a summarizer for Slack conversations. Format every response so it renders correctly in Slack:
- Use *bold* (single asterisks) for emphasis, never double asterisks
- Use bullet points for lists
- Never emit raw HTML or markdown headers
- Group related topics together
- Highlight @mentions of people and call out action items
Keep summaries concise but comprehensive.`

const detailedInstruction = `Provide a detailed summary with:
- Key discussions and topics covered
- Important decisions made
- Action items or tasks mentioned
- Notable announcements or updates
- Any unresolved questions or debates`

const briefInstruction = "Provide a brief 2-3 sentence summary."

func buildPrompt(t transcript.Transcript, channelName string, style transcript.Style) string {
	instruction := detailedInstruction
	if style == transcript.StyleBrief {
		instruction = briefInstruction
	}

	return fmt.Sprintf(`Summarize the following Slack conversation from the #%s channel.

The conversation spans %s and contains %s.

%s

Here are the messages:

%s

Provide the summary now:`,
		channelName,
		describeRange(t.Stats),
		describeVolume(t.Stats),
		instruction,
		t.Text,
	)
}

// buildHeader renders the metadata block prepended to every summary.
func buildHeader(stats transcript.Stats, channelName string) string {
	date := stats.First.Format("January 2, 2006")
	timeRange := fmt.Sprintf("%s - %s", stats.First.Format("15:04"), stats.Last.Format("15:04"))

	bar := fmt.Sprintf("%d messages | %d participants", stats.MessageCount, stats.ParticipantCount)
	if stats.ReplyCount > 0 {
		bar += fmt.Sprintf(" | %d threads (%d replies)", stats.ThreadCount, stats.ReplyCount)
	}

	return fmt.Sprintf("*#%s Summary* - %s\n_%s | %s_\n%s\n",
		channelName, date, timeRange, bar, strings.Repeat("━", 40))
}

func describeRange(stats transcript.Stats) string {
	return fmt.Sprintf("%s %s to %s",
		stats.First.Format("January 2, 2006"),
		stats.First.Format("15:04"),
		stats.Last.Format("15:04"))
}

func describeVolume(stats transcript.Stats) string {
	s := fmt.Sprintf("%d messages from %d participants", stats.MessageCount, stats.ParticipantCount)
	if stats.ThreadCount > 0 {
		s += fmt.Sprintf(" across %d threads", stats.ThreadCount)
	}
	return s
}
