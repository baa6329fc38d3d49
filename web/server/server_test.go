package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/df07/go-progressive-gltracer/pkg/camera"
	"github.com/df07/go-progressive-gltracer/pkg/input"
	"github.com/df07/go-progressive-gltracer/pkg/renderer"
)

func testStats(t *testing.T, frame int) renderer.FrameStats {
	t.Helper()
	basis, err := camera.Recompute(camera.Params{
		LookFrom:      mgl64.Vec3{0, 0, 5},
		LookAt:        mgl64.Vec3{0, 0, -1},
		Up:            mgl64.Vec3{0, 1, 0},
		VFov:          45,
		AspectRatio:   400.0 / 320.0,
		Aperture:      0.1,
		FocusDistance: 6,
	})
	require.NoError(t, err)
	return renderer.FrameStats{
		FrameCount:  frame,
		QualityK:    3,
		SampleCount: 2,
		Width:       800,
		Height:      640,
		Basis:       basis,
	}
}

func newTestServer(t *testing.T) (*Server, *Hub, *input.Queue, *httptest.Server) {
	t.Helper()
	hub := NewHub(0)
	queue := input.NewQueue(4)
	s := NewServer("127.0.0.1:0", hub, queue, nil)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, hub, queue, ts
}

func getJSON(t *testing.T, url string, v interface{}) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
	return resp.StatusCode
}

func TestHandleHealth(t *testing.T) {
	_, _, _, ts := newTestServer(t)

	var body map[string]interface{}
	status := getJSON(t, ts.URL+"/api/health", &body)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])
}

func TestHandleStats(t *testing.T) {
	_, hub, _, ts := newTestServer(t)

	var errBody map[string]string
	assert.Equal(t, http.StatusServiceUnavailable, getJSON(t, ts.URL+"/api/stats", &errBody))

	hub.Publish(testStats(t, 7))

	var stats map[string]interface{}
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/api/stats", &stats))
	assert.Equal(t, 7.0, stats["frameCount"])
	assert.Equal(t, 3.0, stats["k"])
	assert.Equal(t, 2.0, stats["nsamples"])
	assert.NotContains(t, stats, "Basis")
}

func TestHandleInspect(t *testing.T) {
	_, hub, _, ts := newTestServer(t)
	hub.Publish(testStats(t, 1))

	var resp InspectResponse
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/api/inspect", &resp))
	assert.InDelta(t, 0, resp.Direction[0], 1e-9)
	assert.InDelta(t, 0, resp.Direction[1], 1e-9)
	assert.InDelta(t, -1, resp.Direction[2], 1e-9)
	assert.InDelta(t, -1, resp.FocusPoint[2], 1e-9, "center ray meets the focus plane")
	assert.InDelta(t, 0.05, resp.LensRadius, 1e-12)

	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/api/inspect?s=0&t=0", &resp))
	assert.Less(t, resp.Direction[0], 0.0)
	assert.Less(t, resp.Direction[1], 0.0)

	var errBody map[string]string
	assert.Equal(t, http.StatusBadRequest, getJSON(t, ts.URL+"/api/inspect?s=2", &errBody))
	assert.Contains(t, errBody["error"], "s must be between")
}

func TestHandleCommands(t *testing.T) {
	_, _, _, ts := newTestServer(t)

	var body struct {
		Commands []string `json:"commands"`
	}
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/api/commands", &body))
	assert.Equal(t, input.KindNames(), body.Commands)
}

func postCommand(t *testing.T, base string, query url.Values) (int, map[string]interface{}) {
	t.Helper()
	resp, err := http.Post(base+"/api/command?"+query.Encode(), "text/plain", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func TestHandleCommand(t *testing.T) {
	_, _, queue, ts := newTestServer(t)

	status, body := postCommand(t, ts.URL, url.Values{"name": {"k-up"}})
	require.Equal(t, http.StatusAccepted, status)
	assert.Equal(t, "k-up", body["command"])

	status, _ = postCommand(t, ts.URL, url.Values{"name": {"move-forward"}, "dt": {"0.5"}})
	require.Equal(t, http.StatusAccepted, status)

	status, _ = postCommand(t, ts.URL, url.Values{"name": {"look"}, "dx": {"3"}, "dy": {"-4"}})
	require.Equal(t, http.StatusAccepted, status)

	cmds := queue.Drain()
	require.Len(t, cmds, 3)
	assert.Equal(t, input.Key(input.IncreaseK), cmds[0])
	assert.Equal(t, input.Move(input.MoveForward, 0.5), cmds[1])
	assert.Equal(t, input.LookDelta(3, -4), cmds[2])
}

func TestHandleCommand_RepeatStopsWhenQueueFull(t *testing.T) {
	_, _, queue, ts := newTestServer(t)

	status, body := postCommand(t, ts.URL, url.Values{"name": {"samples-up"}, "repeat": {"10"}})
	require.Equal(t, http.StatusAccepted, status)
	assert.Equal(t, 4.0, body["queued"])

	status, body = postCommand(t, ts.URL, url.Values{"name": {"samples-up"}})
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, "command queue full", body["error"])
	assert.Equal(t, 4, queue.Len())
}

func TestHandleCommand_BadRequests(t *testing.T) {
	_, _, queue, ts := newTestServer(t)

	tests := []struct {
		name  string
		query url.Values
		want  string
	}{
		{"missing name", url.Values{}, "missing name"},
		{"unknown command", url.Values{"name": {"jump"}}, "unknown command"},
		{"bad dt", url.Values{"name": {"strafe-left"}, "dt": {"fast"}}, "invalid dt"},
		{"dt out of range", url.Values{"name": {"strafe-left"}, "dt": {"-1"}}, "dt must be between"},
		{"repeat out of range", url.Values{"name": {"close"}, "repeat": {"0"}}, "repeat must be between"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := postCommand(t, ts.URL, tt.query)
			assert.Equal(t, http.StatusBadRequest, status)
			assert.Contains(t, body["error"], tt.want)
		})
	}
	assert.Zero(t, queue.Len())
}

func TestHandleCommand_RequiresPost(t *testing.T) {
	_, _, _, ts := newTestServer(t)

	var body map[string]string
	assert.Equal(t, http.StatusMethodNotAllowed, getJSON(t, ts.URL+"/api/command?name=close", &body))
}

func dialStream(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/stream"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) StreamEvent {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var event StreamEvent
	require.NoError(t, conn.ReadJSON(&event))
	return event
}

func TestHandleStream(t *testing.T) {
	_, hub, _, ts := newTestServer(t)
	hub.Publish(testStats(t, 1))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	conn := dialStream(t, ts)

	event := readEvent(t, conn)
	require.Equal(t, "stats", event.Type)
	assert.Equal(t, 1, event.Stats.FrameCount, "latest stats are sent on connect")

	require.Eventually(t, func() bool { return hub.Subscribers() == 1 }, 2*time.Second, 5*time.Millisecond)

	hub.Publish(testStats(t, 2))
	event = readEvent(t, conn)
	require.Equal(t, "stats", event.Type)
	assert.Equal(t, 2, event.Stats.FrameCount)

	logger := NewWebLogger(nil, hub.ConsoleChan())
	logger.Printf("Shaders reloaded\n")
	event = readEvent(t, conn)
	require.Equal(t, "console", event.Type)
	assert.Equal(t, "Shaders reloaded\n", event.Console.Message)

	conn.Close()
	assert.Eventually(t, func() bool { return hub.Subscribers() == 0 }, 2*time.Second, 5*time.Millisecond)
}

func TestServer_StartAndShutdown(t *testing.T) {
	s := NewServer("127.0.0.1:0", NewHub(0), input.NewQueue(1), nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
