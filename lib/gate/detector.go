// Package gate implements the first-message spam gate: text normalization,
// an adapter over an external scoring model and an optional stop-phrase check.
// The package is transport-agnostic, callers feed it spamcheck.Request and get
// a verdict with the list of check results.
package gate

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"

	"github.com/forPelevin/gomoji"

	"github.com/ruspam/gatekeeper/lib/spamcheck"
)

//go:generate moq --out mocks/scorer.go --pkg mocks --skip-ensure --with-resets . Scorer

// DefaultSpamThreshold is a decision threshold applied to the model score.
const DefaultSpamThreshold = 0.5

// Scorer is an external binary classifier, maps a text to spam probability.
// Tokenization, padding and truncation are the model provider's business,
// the detector passes normalized text and nothing else.
type Scorer interface {
	Score(ctx context.Context, text string) (float64, error)
}

// Config is a set of parameters for Detector.
type Config struct {
	SpamThreshold   float64 // min model score to consider a message spam, default 0.5
	MaxAllowedEmoji int     // max emoji count in a message, zero or negative disables the check
}

// Detector checks a message for spam, thread-safe.
// The model verdict is fail-open: a scorer error makes the message ham,
// a classifier outage should not lock newcomers out of the chat.
type Detector struct {
	Config
	scorer      Scorer
	stopPhrases []string
	lock        sync.RWMutex
}

// NewDetector makes a new Detector with the given scorer and config.
func NewDetector(scorer Scorer, cfg Config) *Detector {
	if cfg.SpamThreshold <= 0 {
		cfg.SpamThreshold = DefaultSpamThreshold
	}
	return &Detector{Config: cfg, scorer: scorer}
}

// Check checks if a given message is spam. Returns the verdict and the list
// of check results. Never fails, a scorer error is reported as a ham result
// with the error attached to the corresponding check response.
func (d *Detector) Check(ctx context.Context, req spamcheck.Request) (spam bool, cr []spamcheck.Response) {
	cleanMsg := Normalize(req.Msg)

	d.lock.RLock()
	stopPhrases := d.stopPhrases
	d.lock.RUnlock()

	if len(stopPhrases) > 0 {
		resp := isStopPhrase(cleanMsg, stopPhrases)
		cr = append(cr, resp)
		if resp.Spam {
			return true, cr
		}
	}

	// emoji flood check runs on the raw message, normalization wipes emojis out
	if d.MaxAllowedEmoji > 0 {
		resp := isManyEmojis(req.Msg, d.MaxAllowedEmoji)
		cr = append(cr, resp)
		if resp.Spam {
			return true, cr
		}
	}

	score, err := d.scorer.Score(ctx, cleanMsg)
	if err != nil {
		log.Printf("[WARN] classifier failed for %s, fail open: %v", req.String(), err)
		cr = append(cr, spamcheck.Response{Name: "classifier", Spam: false, Score: 0,
			Details: "classifier error, fail open", Error: err})
		return false, cr
	}

	isSpam := score >= d.SpamThreshold
	cr = append(cr, spamcheck.Response{Name: "classifier", Spam: isSpam, Score: score,
		Details: fmt.Sprintf("probability %0.2f/%0.2f", score, d.SpamThreshold)})
	return isSpam, cr
}

// LoadStopPhrases loads stop phrases from readers, a phrase per line.
// Resets the current list first. Empty input disables the check.
func (d *Detector) LoadStopPhrases(readers ...io.Reader) (count int, err error) {
	d.lock.Lock()
	defer d.lock.Unlock()

	d.stopPhrases = nil
	for _, reader := range readers {
		scanner := bufio.NewScanner(reader)
		for scanner.Scan() {
			phrase := strings.TrimSpace(scanner.Text())
			if phrase == "" {
				continue
			}
			d.stopPhrases = append(d.stopPhrases, Normalize(phrase))
		}
		if err := scanner.Err(); err != nil {
			return len(d.stopPhrases), fmt.Errorf("failed to read stop phrases: %w", err)
		}
	}
	return len(d.stopPhrases), nil
}

// isStopPhrase checks a normalized message against the list of normalized
// stop phrases.
func isStopPhrase(cleanMsg string, phrases []string) spamcheck.Response {
	for _, phrase := range phrases {
		if phrase == "" {
			continue
		}
		if strings.Contains(cleanMsg, phrase) {
			return spamcheck.Response{Name: "stop-phrase", Spam: true, Score: 1,
				Details: fmt.Sprintf("%q", phrase)}
		}
	}
	return spamcheck.Response{Name: "stop-phrase", Spam: false, Details: "not found"}
}

// isManyEmojis counts emojis in the raw message and flags the flood.
func isManyEmojis(msg string, limit int) spamcheck.Response {
	count := len(gomoji.CollectAll(msg))
	if count > limit {
		return spamcheck.Response{Name: "emoji", Spam: true, Score: 1,
			Details: fmt.Sprintf("too many emojis %d/%d", count, limit)}
	}
	return spamcheck.Response{Name: "emoji", Spam: false, Details: fmt.Sprintf("emojis %d/%d", count, limit)}
}
