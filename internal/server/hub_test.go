package server

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestHub_PublishCoalesces(t *testing.T) {
	h := newHub()
	id := uuid.New()
	ch, cancel := h.subscribe(id)
	defer cancel()

	h.publish(id)
	h.publish(id)
	h.publish(uuid.New())

	_, ok := <-ch
	assert.True(t, ok)
	select {
	case <-ch:
		t.Fatal("expected a single pending notification")
	default:
	}
}

func TestHub_Cancel(t *testing.T) {
	h := newHub()
	id := uuid.New()
	ch, cancel := h.subscribe(id)
	assert.Equal(t, 1, h.subscribers(id))

	cancel()
	cancel()
	assert.Equal(t, 0, h.subscribers(id))
	_, ok := <-ch
	assert.False(t, ok)
}

func TestHub_Close(t *testing.T) {
	h := newHub()
	id := uuid.New()
	ch, cancel := h.subscribe(id)

	h.close()
	_, ok := <-ch
	assert.False(t, ok)
	cancel()

	late, _ := h.subscribe(id)
	_, ok = <-late
	assert.False(t, ok, "subscriptions after close are already closed")
	h.publish(id)
}
