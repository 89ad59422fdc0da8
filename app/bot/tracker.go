package bot

import (
	"time"

	cache "github.com/go-pkgz/expirable-cache/v3"
)

// DefaultTrackingWindow is how long a newcomer stays under watch after joining
// if they send nothing, one week matches typical sleeper-bot activation delays.
const DefaultTrackingWindow = time.Hour * 24 * 7

// defaultMaxTracked caps the number of concurrently tracked newcomers,
// LRU eviction kicks in above the cap.
const defaultMaxTracked = 10000

// Tracker keeps the set of recently joined users pending their first text
// message. Entries expire on their own after the tracking window, a repeated
// join of the same user resets the window. Keyed per chat, the same user
// joining two protected groups is checked in each. Thread-safe.
type Tracker struct {
	cache  cache.Cache[trackKey, time.Time] // join time, kept for logging
	window time.Duration
}

type trackKey struct {
	chatID int64
	userID int64
}

// NewTracker makes a tracker with the given window. Zero or negative window
// falls back to the default.
func NewTracker(window time.Duration) *Tracker {
	if window <= 0 {
		window = DefaultTrackingWindow
	}
	return &Tracker{
		cache:  cache.NewCache[trackKey, time.Time]().WithMaxKeys(defaultMaxTracked).WithTTL(window),
		window: window,
	}
}

// MarkJoined puts a user under watch. Re-joining resets the expiry.
func (t *Tracker) MarkJoined(chatID, userID int64) {
	t.cache.Set(trackKey{chatID: chatID, userID: userID}, time.Now(), 0)
}

// IsTracked reports if the user is still under watch in the given chat.
func (t *Tracker) IsTracked(chatID, userID int64) bool {
	_, found := t.cache.Get(trackKey{chatID: chatID, userID: userID})
	return found
}

// JoinedAt returns the recorded join time for a tracked user.
func (t *Tracker) JoinedAt(chatID, userID int64) (time.Time, bool) {
	return t.cache.Get(trackKey{chatID: chatID, userID: userID})
}

// Untrack removes the user from the watch set. Safe to call for users
// never tracked or already expired.
func (t *Tracker) Untrack(chatID, userID int64) {
	t.cache.Invalidate(trackKey{chatID: chatID, userID: userID})
}

// Count returns the number of users currently under watch.
func (t *Tracker) Count() int {
	t.cache.DeleteExpired()
	return t.cache.Len()
}

// Window returns the tracking window.
func (t *Tracker) Window() time.Duration {
	return t.window
}
