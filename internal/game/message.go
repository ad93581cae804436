package game

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

const (
	ManagerName     = "Game-Manager"
	TimestampLayout = "15:04:05"

	JoinedMarker   = "JOINED"
	VotedOutMarker = "VOTED_OUT"
)

// Announcement formats, written by the arbiter.
const (
	GameStartFormat        = "The game has started. The players are: %s."
	DaytimeStartFormat     = "Now it's Daytime for %s. Everyone can talk and later vote someone out."
	NighttimeStartFormat   = "Now it's Nighttime for %s. Only mafia can talk and later choose someone to kill."
	DaytimeVotingMessage   = "Daytime has ended, now it's time to vote! Waiting for all players to vote..."
	NighttimeVotingMessage = "Nighttime has ended, now it's time for the mafia to vote! Waiting for them to vote..."
	CuttingToVoteMessage   = "Only one player can talk this phase, so we're cutting straight to the vote."
	VoteFormat             = "%s voted for %s"
	VotedOutFormat         = "%s was voted out. Their role was %s. There are %d mafia players left."
	AbstainedFormat        = "%s did not vote in time and abstained."
	WinnerFormat           = "The game is over. %s"
)

var messagePattern = regexp.MustCompile(`^\[(\d{2}:\d{2}:\d{2})\] ([^:]+): (.*)$`)

// Message is one attributed line of a broadcast log or chat mailbox.
type Message struct {
	Time    string
	Speaker string
	Text    string
}

// FormatMessage renders a single log line, newline terminated. Newlines in text
// are flattened so one message is always one line.
func FormatMessage(now time.Time, speaker, text string) string {
	text = strings.Join(strings.Fields(text), " ")
	return fmt.Sprintf("[%s] %s: %s\n", now.Format(TimestampLayout), speaker, text)
}

func ParseMessage(line string) (Message, bool) {
	m := messagePattern.FindStringSubmatch(strings.TrimRight(line, "\r\n"))
	if m == nil {
		return Message{}, false
	}
	return Message{Time: m[1], Speaker: m[2], Text: m[3]}, true
}

// FormatMinutes renders a phase length for announcements.
func FormatMinutes(minutes float64) string {
	if minutes == 1 {
		return "1 minute"
	}
	return fmt.Sprintf("%g minutes", minutes)
}
