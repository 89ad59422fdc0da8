package webapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ruspam/gatekeeper/app/storage"
	"github.com/ruspam/gatekeeper/app/webapi/mocks"
	"github.com/ruspam/gatekeeper/lib/spamcheck"
)

func TestServer_CheckHandler(t *testing.T) {
	det := &mocks.DetectorMock{CheckFunc: func(ctx context.Context, req spamcheck.Request) (bool, []spamcheck.Response) {
		return true, []spamcheck.Response{{Name: "classifier", Spam: true, Score: 0.92, Details: "probability 0.92/0.50"}}
	}}
	srv := NewServer(Config{Detector: det, Tracker: &mocks.TrackerMock{TrackedCountFunc: func() int { return 0 }}})
	ts := httptest.NewServer(srv.routes())
	defer ts.Close()

	t.Run("spam check", func(t *testing.T) {
		resp, err := http.Post(ts.URL+"/check", "application/json",
			strings.NewReader(`{"msg": "spam text", "user_id": "666", "user_name": "spammer"}`))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var result struct {
			Spam   bool                 `json:"spam"`
			Checks []spamcheck.Response `json:"checks"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
		assert.True(t, result.Spam)
		require.Len(t, result.Checks, 1)
		assert.Equal(t, "classifier", result.Checks[0].Name)

		require.Len(t, det.CheckCalls(), 1)
		assert.Equal(t, "spam text", det.CheckCalls()[0].Req.Msg)
		assert.Equal(t, "666", det.CheckCalls()[0].Req.UserID)
	})

	t.Run("bad request", func(t *testing.T) {
		resp, err := http.Post(ts.URL+"/check", "application/json", strings.NewReader("not a json"))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestServer_StatusHandler(t *testing.T) {
	det := &mocks.DetectorMock{}
	store := &mocks.SpamStoreMock{CountFunc: func(ctx context.Context) (int, error) { return 7, nil }}
	tracker := &mocks.TrackerMock{TrackedCountFunc: func() int { return 3 }}
	srv := NewServer(Config{Detector: det, SpamStore: store, Tracker: tracker})
	ts := httptest.NewServer(srv.routes())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/status")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var result struct {
		Tracked  int `json:"tracked"`
		Detected int `json:"detected"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, 3, result.Tracked)
	assert.Equal(t, 7, result.Detected)
}

func TestServer_DetectedHandler(t *testing.T) {
	entries := []storage.DetectedSpamInfo{
		{Text: "spam one", UserID: 1, UserName: "u1", ChatID: 123, Score: 0.9, Timestamp: time.Now()},
		{Text: "spam two", UserID: 2, UserName: "u2", ChatID: 123, Score: 0.95, Timestamp: time.Now()},
	}
	store := &mocks.SpamStoreMock{ReadFunc: func(ctx context.Context, limit int) ([]storage.DetectedSpamInfo, error) {
		return entries, nil
	}}
	srv := NewServer(Config{Detector: &mocks.DetectorMock{}, SpamStore: store,
		Tracker: &mocks.TrackerMock{TrackedCountFunc: func() int { return 0 }}})
	ts := httptest.NewServer(srv.routes())
	defer ts.Close()

	t.Run("entries returned", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/detected?limit=10")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var result []storage.DetectedSpamInfo
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
		require.Len(t, result, 2)
		assert.Equal(t, "spam one", result[0].Text)

		require.Len(t, store.ReadCalls(), 1)
		assert.Equal(t, 10, store.ReadCalls()[0].Limit)
	})

	t.Run("bad limit", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/detected?limit=abc")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestServer_DetectedHandlerNoStorage(t *testing.T) {
	srv := NewServer(Config{Detector: &mocks.DetectorMock{},
		Tracker: &mocks.TrackerMock{TrackedCountFunc: func() int { return 0 }}})
	ts := httptest.NewServer(srv.routes())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/detected")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServer_Auth(t *testing.T) {
	det := &mocks.DetectorMock{CheckFunc: func(ctx context.Context, req spamcheck.Request) (bool, []spamcheck.Response) {
		return false, nil
	}}
	srv := NewServer(Config{Detector: det, AuthPasswd: "secret",
		Tracker: &mocks.TrackerMock{TrackedCountFunc: func() int { return 0 }}})
	ts := httptest.NewServer(srv.routes())
	defer ts.Close()

	t.Run("no auth rejected", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/status")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("with auth passed", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodGet, ts.URL+"/status", http.NoBody)
		require.NoError(t, err)
		req.SetBasicAuth("gatekeeper", "secret")
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}

func TestServer_Ping(t *testing.T) {
	srv := NewServer(Config{Version: "1.0", Detector: &mocks.DetectorMock{},
		Tracker: &mocks.TrackerMock{TrackedCountFunc: func() int { return 0 }}})
	ts := httptest.NewServer(srv.routes())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/ping")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServer_RunShutdown(t *testing.T) {
	srv := NewServer(Config{ListenAddr: "127.0.0.1:0", Detector: &mocks.DetectorMock{},
		Tracker: &mocks.TrackerMock{TrackedCountFunc: func() int { return 0 }}})
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	err := srv.Run(ctx)
	assert.NoError(t, err)
}
