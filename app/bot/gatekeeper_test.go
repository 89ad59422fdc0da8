package bot

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ruspam/gatekeeper/app/bot/mocks"
	"github.com/ruspam/gatekeeper/lib/spamcheck"
)

func TestGatekeeper_OnMessageSpam(t *testing.T) {
	det := &mocks.DetectorMock{CheckFunc: func(ctx context.Context, req spamcheck.Request) (bool, []spamcheck.Response) {
		return true, []spamcheck.Response{{Name: "classifier", Spam: true, Score: 0.92, Details: "probability 0.92/0.50"}}
	}}
	tr := NewTracker(time.Hour)
	g := NewGatekeeper(context.Background(), det, tr, GateConfig{SpamMsg: "this is spam"})

	tr.MarkJoined(10, 100)
	resp := g.OnMessage(context.Background(), Message{ID: 5, ChatID: 10, Text: "Доход 5000$ в день, пишите в ЛС USD",
		From: User{ID: 100, Username: "spammer"}})

	assert.True(t, resp.Checked)
	assert.True(t, resp.Spam)
	assert.True(t, resp.Send)
	assert.Equal(t, `this is spam: "spammer" (100)`, resp.Text)
	assert.Equal(t, PermanentBanDuration, resp.BanInterval)
	assert.Equal(t, int64(100), resp.User.ID)
	assert.Equal(t, 5, resp.ReplyTo)
	assert.True(t, resp.DeleteReplyTo)
	require.Len(t, resp.CheckResults, 1)
	assert.InDelta(t, 0.92, resp.CheckResults[0].Score, 0.0001)

	require.Len(t, det.CheckCalls(), 1)
	req := det.CheckCalls()[0].Req
	assert.Equal(t, "Доход 5000$ в день, пишите в ЛС USD", req.Msg)
	assert.Equal(t, "100", req.UserID)
	assert.Equal(t, "spammer", req.UserName)
	assert.Equal(t, "10", req.ChatID)
}

func TestGatekeeper_OnMessageHam(t *testing.T) {
	det := &mocks.DetectorMock{CheckFunc: func(ctx context.Context, req spamcheck.Request) (bool, []spamcheck.Response) {
		return false, []spamcheck.Response{{Name: "classifier", Spam: false, Score: 0.03, Details: "probability 0.03/0.50"}}
	}}
	tr := NewTracker(time.Hour)
	g := NewGatekeeper(context.Background(), det, tr, GateConfig{SpamMsg: "this is spam"})

	tr.MarkJoined(10, 100)
	resp := g.OnMessage(context.Background(), Message{ID: 5, ChatID: 10, Text: "привет, как дела?",
		From: User{ID: 100, Username: "newbie"}})

	assert.True(t, resp.Checked)
	assert.False(t, resp.Spam)
	assert.False(t, resp.Send)
	assert.Zero(t, resp.BanInterval)
	require.Len(t, resp.CheckResults, 1)
}

func TestGatekeeper_OnMessageSkips(t *testing.T) {
	det := &mocks.DetectorMock{CheckFunc: func(ctx context.Context, req spamcheck.Request) (bool, []spamcheck.Response) {
		return true, nil
	}}
	tr := NewTracker(time.Hour)
	g := NewGatekeeper(context.Background(), det, tr, GateConfig{})

	t.Run("user not tracked", func(t *testing.T) {
		det.ResetCalls()
		resp := g.OnMessage(context.Background(), Message{ChatID: 10, Text: "spammy text", From: User{ID: 200}})
		assert.False(t, resp.Checked)
		assert.Empty(t, det.CheckCalls(), "untracked users are never checked")
	})

	t.Run("system message", func(t *testing.T) {
		det.ResetCalls()
		resp := g.OnMessage(context.Background(), Message{ChatID: 10, Text: "pinned something"})
		assert.False(t, resp.Checked)
		assert.Empty(t, det.CheckCalls())
	})

	t.Run("non-text from tracked user", func(t *testing.T) {
		det.ResetCalls()
		tr.MarkJoined(10, 100)
		resp := g.OnMessage(context.Background(), Message{ChatID: 10, Text: "  ", From: User{ID: 100}})
		assert.False(t, resp.Checked)
		assert.Empty(t, det.CheckCalls())
		assert.True(t, tr.IsTracked(10, 100), "the user stays under watch until the first text")
	})
}

func TestGatekeeper_DryMode(t *testing.T) {
	det := &mocks.DetectorMock{CheckFunc: func(ctx context.Context, req spamcheck.Request) (bool, []spamcheck.Response) {
		return true, []spamcheck.Response{{Name: "classifier", Spam: true, Score: 0.99}}
	}}
	tr := NewTracker(time.Hour)
	g := NewGatekeeper(context.Background(), det, tr,
		GateConfig{SpamMsg: "this is spam", SpamDryMsg: "this is spam (dry)", Dry: true})

	tr.MarkJoined(10, 100)
	resp := g.OnMessage(context.Background(), Message{ID: 5, ChatID: 10, Text: "bad stuff", From: User{ID: 100, Username: "u"}})
	assert.True(t, resp.Spam)
	assert.Equal(t, `this is spam (dry): "u" (100)`, resp.Text)
}

func TestGatekeeper_UntrackAfterVerdict(t *testing.T) {
	det := &mocks.DetectorMock{CheckFunc: func(ctx context.Context, req spamcheck.Request) (bool, []spamcheck.Response) {
		return false, []spamcheck.Response{{Name: "classifier", Spam: false, Score: 0.1}}
	}}
	tr := NewTracker(time.Hour)
	g := NewGatekeeper(context.Background(), det, tr, GateConfig{})

	g.OnJoin(10, User{ID: 100, Username: "newbie"})
	assert.Equal(t, 1, g.TrackedCount())

	resp := g.OnMessage(context.Background(), Message{ChatID: 10, Text: "первое сообщение", From: User{ID: 100}})
	assert.True(t, resp.Checked)

	g.Untrack(10, 100)
	assert.Zero(t, g.TrackedCount())

	// second message from the same user is not checked anymore
	det.ResetCalls()
	resp = g.OnMessage(context.Background(), Message{ChatID: 10, Text: "второе сообщение", From: User{ID: 100}})
	assert.False(t, resp.Checked)
	assert.Empty(t, det.CheckCalls())
}

func TestGatekeeper_StopPhrasesReload(t *testing.T) {
	loaded := make(chan int, 10)
	det := &mocks.DetectorMock{
		CheckFunc: func(ctx context.Context, req spamcheck.Request) (bool, []spamcheck.Response) {
			return false, nil
		},
		LoadStopPhrasesFunc: func(readers ...io.Reader) (int, error) {
			data, err := io.ReadAll(readers[0])
			require.NoError(t, err)
			loaded <- len(data)
			return 1, nil
		},
	}

	file := filepath.Join(t.TempDir(), "stop.txt")
	require.NoError(t, os.WriteFile(file, []byte("пишите в лс\n"), 0o600))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	tr := NewTracker(time.Hour)
	NewGatekeeper(ctx, det, tr, GateConfig{StopPhrasesFile: file, WatchDelay: 50 * time.Millisecond})

	select {
	case n := <-loaded:
		assert.Positive(t, n, "initial load")
	case <-time.After(time.Second):
		t.Fatal("initial load timed out")
	}

	time.Sleep(100 * time.Millisecond) // let the watcher attach
	require.NoError(t, os.WriteFile(file, []byte("пишите в лс\nзаработок\n"), 0o600))

	select {
	case <-loaded:
	case <-time.After(2 * time.Second):
		t.Fatal("reload after file change timed out")
	}
	assert.GreaterOrEqual(t, len(det.LoadStopPhrasesCalls()), 2)
}

func TestDisplayName(t *testing.T) {
	tbl := []struct {
		name     string
		msg      Message
		expected string
	}{
		{"display name", Message{From: User{ID: 1, Username: "u", DisplayName: "User Name"}}, "User Name"},
		{"username fallback", Message{From: User{ID: 1, Username: "u"}}, "u"},
		{"id fallback", Message{From: User{ID: 1}}, "1"},
	}
	for _, tt := range tbl {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DisplayName(tt.msg))
		})
	}
}
