package sse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snapfest/snapfest/internal/testutil"
)

func TestFormatSSEMessage(t *testing.T) {
	tests := []struct {
		name  string
		event string
		data  string
		want  string
	}{
		{
			name:  "single line",
			event: "guests",
			data:  `[{"id":"g1"}]`,
			want:  "event: guests\ndata: [{\"id\":\"g1\"}]\n\n",
		},
		{
			name:  "multi line",
			event: "photos",
			data:  "line1\nline2",
			want:  "event: photos\ndata: line1\ndata: line2\n\n",
		},
		{
			name:  "empty data",
			event: "ping",
			data:  "",
			want:  "event: ping\ndata: \n\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, string(formatSSEMessage(tt.event, tt.data)))
		})
	}
}

func TestHubRegisterAndBroadcast(t *testing.T) {
	hub := NewHub(testutil.NopLogger())
	go hub.Run()
	defer hub.Close()

	client := NewClient(hub, "g1")
	hub.Register(client)

	require.Eventually(t, func() bool {
		return hub.ClientCount() == 1
	}, time.Second, 5*time.Millisecond)

	hub.BroadcastEvent("guests", "[]")

	select {
	case msg := <-client.send:
		assert.Equal(t, "event: guests\ndata: []\n\n", string(msg))
	case <-time.After(time.Second):
		t.Fatal("expected a broadcast message")
	}
}

func TestHubUnregisterClosesSend(t *testing.T) {
	hub := NewHub(testutil.NopLogger())
	go hub.Run()
	defer hub.Close()

	client := NewClient(hub, "g1")
	hub.Register(client)
	hub.Unregister(client)

	require.Eventually(t, func() bool {
		return hub.ClientCount() == 0
	}, time.Second, 5*time.Millisecond)

	select {
	case _, ok := <-client.send:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("expected send channel to close")
	}
}
