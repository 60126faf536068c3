package realtime

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"neontix/internal/checkout"
)

func startHub(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(nil)
	go hub.Run(ctx)

	upgrader := Upgrader([]string{"http://shop.neontix.test"})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = hub.Serve(&upgrader, w, r, r.URL.Query().Get("topic"))
	}))
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return hub, srv
}

func dial(t *testing.T, srv *httptest.Server, topic string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "?topic=" + topic
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestHub_NotifyReachesSessionSubscribers(t *testing.T) {
	hub, srv := startHub(t)
	conn := dial(t, srv, "sess-1")
	other := dial(t, srv, "sess-2")
	require.Eventually(t, func() bool {
		return hub.ClientCount("sess-1") == 1 && hub.ClientCount("sess-2") == 1
	}, time.Second, 5*time.Millisecond)

	hub.Notify(checkout.Notice{SessionID: "sess-1", Kind: checkout.NoticeTick, Remaining: 599, At: time.Now()})

	msg := readMessage(t, conn)
	assert.Equal(t, MessageTypeTick, msg.Type)
	assert.Equal(t, 599, msg.Remaining)

	require.NoError(t, other.SetReadDeadline(time.Now().Add(100*time.Millisecond)))
	_, _, err := other.ReadMessage()
	assert.Error(t, err)
}

func TestHub_ConfirmedAnnouncesSeatsOnEventTopic(t *testing.T) {
	hub, srv := startHub(t)
	watcher := dial(t, srv, EventTopic("ev-1"))
	require.Eventually(t, func() bool { return hub.ClientCount(EventTopic("ev-1")) == 1 }, time.Second, 5*time.Millisecond)

	hub.Notify(checkout.Notice{
		SessionID: "sess-1",
		EventID:   "ev-1",
		Kind:      checkout.NoticeConfirmed,
		BookingID: "bk-1",
		SeatIDs:   []string{"F1", "D5"},
		At:        time.Now(),
	})

	msg := readMessage(t, watcher)
	assert.Equal(t, MessageTypeSeatsBooked, msg.Type)
	assert.Equal(t, []string{"F1", "D5"}, msg.SeatIDs)
}

func TestHub_SelectionDroppedGoesToSession(t *testing.T) {
	hub, srv := startHub(t)
	conn := dial(t, srv, "sess-2")
	require.Eventually(t, func() bool { return hub.ClientCount("sess-2") == 1 }, time.Second, 5*time.Millisecond)

	hub.SelectionDropped("sess-2", "ev-1", []string{"D5"})

	msg := readMessage(t, conn)
	assert.Equal(t, MessageTypeSelectionDropped, msg.Type)
	assert.Equal(t, "sess-2", msg.SessionID)
	assert.Equal(t, "ev-1", msg.EventID)
	assert.Equal(t, []string{"D5"}, msg.SeatIDs)
	assert.NotZero(t, msg.Timestamp)
}

func TestHub_UnregistersOnDisconnect(t *testing.T) {
	hub, srv := startHub(t)
	conn := dial(t, srv, "sess-1")
	require.Eventually(t, func() bool { return hub.ClientCount("sess-1") == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return hub.ClientCount("sess-1") == 0 }, time.Second, 5*time.Millisecond)
}

func TestUpgrader_CheckOrigin(t *testing.T) {
	u := Upgrader([]string{"http://shop.neontix.test"})
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	assert.True(t, u.CheckOrigin(req))
	req.Header.Set("Origin", "http://shop.neontix.test")
	assert.True(t, u.CheckOrigin(req))
	req.Header.Set("Origin", "http://evil.example")
	assert.False(t, u.CheckOrigin(req))

	open := Upgrader([]string{"*"})
	assert.True(t, open.CheckOrigin(req))
}
