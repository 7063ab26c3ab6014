package websocket

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishReachesTopicSubscribersOnly(t *testing.T) {
	hub := NewHub()
	a := NewClient(nil)
	b := NewClient(nil)
	hub.Subscribe("bk-1", a)
	hub.Subscribe("bk-2", b)

	hub.Publish("bk-1", []byte("hello"))

	require.Len(t, a.Send, 1)
	assert.Equal(t, []byte("hello"), <-a.Send)
	assert.Empty(t, b.Send)
}

func TestPublishToEmptyTopicIsNoop(t *testing.T) {
	hub := NewHub()
	assert.NotPanics(t, func() {
		hub.Publish("bk-nobody", []byte("hello"))
	})
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	hub := NewHub()
	c := NewClient(nil)
	hub.Subscribe("bk-1", c)
	hub.Unsubscribe("bk-1", c)

	hub.Publish("bk-1", []byte("hello"))
	assert.Empty(t, c.Send)
}
