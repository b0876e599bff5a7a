package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bloghub/internal/broadcast"
)

func TestWatchURL(t *testing.T) {
	c := NewHTTPClient("https://blog.example.com/")
	got, err := c.WatchURL([]string{"comments", "posts.3"})
	require.NoError(t, err)
	assert.Equal(t, "wss://blog.example.com/api/ws?channels=comments%2Cposts.3", got)

	_, err = NewHTTPClient("ftp://nope").WatchURL(nil)
	assert.Error(t, err)
}

func TestWatch_ReceivesBroadcastsAndNotices(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/ws", r.URL.Path)
		assert.Equal(t, "comments", r.URL.Query().Get("channels"))
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))

		conn, err := upgrader.Upgrade(w, r, nil)
		if !assert.NoError(t, err) {
			return
		}
		defer conn.Close()

		msg, err := broadcast.NewMessage(broadcast.ChannelComments, broadcast.EventCommentAdded, broadcast.CommentAdded{ID: 4, Body: "hi"})
		assert.NoError(t, err)
		assert.NoError(t, conn.WriteJSON(map[string]string{"type": "system", "content": "channel not allowed"}))
		assert.NoError(t, conn.WriteJSON(msg))
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"))
		_, _, _ = conn.ReadMessage()
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL)
	c.SetToken("tok")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var got []broadcast.Message
	var notices []SystemNotice
	err := c.Watch(ctx, []string{"comments"},
		func(m broadcast.Message) { got = append(got, m) },
		func(n SystemNotice) { notices = append(notices, n) })
	require.NoError(t, err)

	require.Len(t, notices, 1)
	assert.Equal(t, "channel not allowed", notices[0].Content)
	require.Len(t, got, 1)
	assert.Equal(t, broadcast.EventCommentAdded, got[0].Event)
}

func TestWatch_RefusedUpgrade(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	err := NewHTTPClient(srv.URL).Watch(context.Background(), []string{"comments"}, func(broadcast.Message) {}, nil)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
}
