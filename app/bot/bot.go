package bot

import (
	"fmt"
	"strings"
	"time"

	"github.com/ruspam/gatekeeper/lib/spamcheck"
)

// PermanentBanDuration defines duration of permanent ban:
// if user is restricted for more than 366 days or less than 30 seconds from the current time,
// telegram considers them to be restricted forever.
var PermanentBanDuration = time.Hour * 24 * 400

// Response describes bot's reaction on a particular message.
type Response struct {
	Text          string
	Send          bool                 // status
	Checked       bool                 // message went through the spam check, tracked user's first text
	Spam          bool                 // the check verdict
	BanInterval   time.Duration        // bots banning user set the interval
	User          User                 // user to ban
	ReplyTo       int                  // message to reply to, if 0 then no reply but common message
	DeleteReplyTo bool                 // delete message what bot replays to
	CheckResults  []spamcheck.Response // check results for the message
}

// Message is primary record to pass data from/to bots.
type Message struct {
	ID     int
	From   User
	ChatID int64
	Sent   time.Time
	Text   string `json:",omitempty"`
}

// User defines user info of the Message.
type User struct {
	ID          int64  `json:"id"`
	Username    string `json:"user_name,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
}

// DisplayName returns user's display name or username or id.
func DisplayName(msg Message) string {
	displayUsername := msg.From.DisplayName
	if displayUsername == "" {
		displayUsername = msg.From.Username
	}
	if displayUsername == "" {
		displayUsername = fmt.Sprintf("%d", msg.From.ID)
	}
	return strings.TrimSpace(displayUsername)
}
