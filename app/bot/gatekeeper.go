package bot

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ruspam/gatekeeper/lib/spamcheck"
)

//go:generate moq --out mocks/detector.go --pkg mocks --skip-ensure --with-resets . Detector

// Gatekeeper bot watches newly joined users and checks their first text
// message with the Detector. Reloads stop phrases on file change.
type Gatekeeper struct {
	Detector
	tracker *Tracker
	params  GateConfig
}

// GateConfig is a full set of parameters for the gatekeeper bot.
type GateConfig struct {
	StopPhrasesFile string // optional, watched for changes and reloaded

	SpamMsg    string // reply posted on detection, empty disables the reply
	SpamDryMsg string

	WatchDelay time.Duration

	Dry bool
}

// Detector is a spam detector interface.
type Detector interface {
	Check(ctx context.Context, req spamcheck.Request) (spam bool, cr []spamcheck.Response)
	LoadStopPhrases(readers ...io.Reader) (count int, err error)
}

// NewGatekeeper creates the gatekeeper bot. Loads stop phrases if the file is
// set and starts a watcher to reload them on change.
func NewGatekeeper(ctx context.Context, detector Detector, tracker *Tracker, params GateConfig) *Gatekeeper {
	res := &Gatekeeper{Detector: detector, tracker: tracker, params: params}
	if params.StopPhrasesFile == "" {
		return res
	}
	if err := res.ReloadStopPhrases(); err != nil {
		log.Printf("[WARN] %v", err)
	}
	go func() {
		if err := res.watch(ctx, params.WatchDelay); err != nil {
			log.Printf("[WARN] stop phrases file watcher failed: %v", err)
		}
	}()
	return res
}

// OnJoin puts a new chat member under watch for their first text message.
func (g *Gatekeeper) OnJoin(chatID int64, user User) {
	if user.ID == 0 {
		return
	}
	g.tracker.MarkJoined(chatID, user.ID)
	log.Printf("[INFO] new member %q (%d) joined chat %d, tracking for %v",
		user.Username, user.ID, chatID, g.tracker.Window())
}

// OnMessage checks the first text message of a tracked user. Messages from
// users not under watch pass through unchecked, so do non-text messages from
// tracked users. The caller untracks the user once enforcement was attempted.
func (g *Gatekeeper) OnMessage(ctx context.Context, msg Message) (response Response) {
	if msg.From.ID == 0 { // don't check system messages
		return Response{}
	}
	if !g.tracker.IsTracked(msg.ChatID, msg.From.ID) {
		return Response{}
	}
	if strings.TrimSpace(msg.Text) == "" { // non-text, the user stays under watch
		return Response{}
	}

	displayUsername := DisplayName(msg)
	isSpam, checkResults := g.Check(ctx, spamcheck.Request{
		Msg: msg.Text, UserID: strconv.FormatInt(msg.From.ID, 10), UserName: msg.From.Username,
		ChatID: strconv.FormatInt(msg.ChatID, 10)})
	checkResultStr := spamcheck.ChecksToString(checkResults)

	if isSpam {
		log.Printf("[INFO] user %s detected as spammer: %s, %q", displayUsername, checkResultStr, msg.Text)
		resp := Response{Checked: true, Spam: true, BanInterval: PermanentBanDuration,
			ReplyTo: msg.ID, DeleteReplyTo: true, CheckResults: checkResults,
			User: User{Username: msg.From.Username, ID: msg.From.ID, DisplayName: msg.From.DisplayName}}
		if g.params.SpamMsg != "" {
			msgPrefix := g.params.SpamMsg
			if g.params.Dry {
				msgPrefix = g.params.SpamDryMsg
			}
			resp.Text = fmt.Sprintf("%s: %q (%d)", msgPrefix, displayUsername, msg.From.ID)
			resp.Send = true
		}
		return resp
	}

	log.Printf("[DEBUG] user %s is not a spammer, %s", displayUsername, checkResultStr)
	return Response{Checked: true, CheckResults: checkResults}
}

// Untrack removes the user from the watch set, called after the verdict was
// acted upon. Exactly one check per newcomer.
func (g *Gatekeeper) Untrack(chatID, userID int64) {
	g.tracker.Untrack(chatID, userID)
}

// TrackedCount returns the number of users currently under watch.
func (g *Gatekeeper) TrackedCount() int {
	return g.tracker.Count()
}

// ReloadStopPhrases reloads stop phrases from the configured file.
func (g *Gatekeeper) ReloadStopPhrases() error {
	reader, err := os.Open(g.params.StopPhrasesFile)
	if err != nil {
		return fmt.Errorf("failed to open stop phrases file %q: %w", g.params.StopPhrasesFile, err)
	}
	defer reader.Close()

	count, err := g.LoadStopPhrases(reader)
	if err != nil {
		return fmt.Errorf("failed to load stop phrases: %w", err)
	}
	log.Printf("[INFO] loaded %d stop phrases from %s", count, g.params.StopPhrasesFile)
	return nil
}

// watch watches for changes in the stop phrases file and reloads it.
// delay is a time to wait after the last change before reloading to avoid multiple reloads.
func (g *Gatekeeper) watch(ctx context.Context, delay time.Duration) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	done := make(chan bool)
	reloadTimer := time.NewTimer(delay)
	reloadPending := false

	go func() {
		defer close(done)
		for {
			select {
			case <-ctx.Done():
				log.Printf("[INFO] stopping watcher for stop phrases: %v", ctx.Err())
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				log.Printf("[DEBUG] file %q updated, op: %v", event.Name, event.Op)
				if !reloadPending {
					reloadPending = true
					reloadTimer.Reset(delay)
				}
			case <-reloadTimer.C:
				if reloadPending {
					reloadPending = false
					if err := g.ReloadStopPhrases(); err != nil {
						log.Printf("[WARN] %v", err)
					}
				}
			case e, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("[WARN] watcher error: %v", e)
			}
		}
	}()

	if _, err := os.Stat(g.params.StopPhrasesFile); err != nil {
		return fmt.Errorf("failed to stat file %q: %w", g.params.StopPhrasesFile, err)
	}
	log.Printf("[DEBUG] add file %q to watcher", g.params.StopPhrasesFile)
	if err := watcher.Add(g.params.StopPhrasesFile); err != nil {
		return fmt.Errorf("failed to add %q to watcher: %w", g.params.StopPhrasesFile, err)
	}
	<-done
	return nil
}
