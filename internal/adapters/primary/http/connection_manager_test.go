package http

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fredcamaral/slidiff/internal/domain/ports"
)

func runManager(t *testing.T) (*ConnectionManager, context.CancelFunc) {
	t.Helper()

	cm := NewConnectionManager()
	ctx, cancel := context.WithCancel(context.Background())
	go cm.Run(ctx)
	t.Cleanup(cancel)
	return cm, cancel
}

func waitForCount(t *testing.T, cm *ConnectionManager, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return cm.Count() == n }, time.Second, 5*time.Millisecond)
}

func TestConnectionManager(t *testing.T) {
	t.Run("create new connection manager", func(t *testing.T) {
		cm := NewConnectionManager()
		assert.NotNil(t, cm.connections)
		assert.NotNil(t, cm.broadcast)
		assert.Equal(t, 0, cm.Count())
	})

	t.Run("register and unregister connection", func(t *testing.T) {
		cm, _ := runManager(t)

		send := make(chan ports.UpdateEvent, 1)
		assert.True(t, cm.RegisterConnection(&Connection{ID: "viewer", Send: send}))
		waitForCount(t, cm, 1)

		cm.Unregister("viewer")
		waitForCount(t, cm, 0)

		_, open := <-send
		assert.False(t, open, "send channel should be closed on unregister")

		// Unknown ids are ignored
		cm.Unregister("viewer")
		waitForCount(t, cm, 0)
	})

	t.Run("broadcast to connections", func(t *testing.T) {
		cm, _ := runManager(t)

		receivers := make([]chan ports.UpdateEvent, 3)
		for i := range receivers {
			receivers[i] = make(chan ports.UpdateEvent, 1)
			cm.RegisterConnection(&Connection{ID: fmt.Sprintf("c%d", i), Send: receivers[i]})
		}
		waitForCount(t, cm, 3)

		cm.Broadcast(ports.UpdateEvent{Type: ports.EventTypeDiffUpdated, Timestamp: time.Now()})

		for i, receiver := range receivers {
			select {
			case received := <-receiver:
				assert.Equal(t, ports.EventTypeDiffUpdated, received.Type)
			case <-time.After(time.Second):
				t.Errorf("connection %d did not receive event", i)
			}
		}
	})

	t.Run("slow clients are dropped", func(t *testing.T) {
		cm, _ := runManager(t)

		slow := make(chan ports.UpdateEvent) // unbuffered and never read
		cm.RegisterConnection(&Connection{ID: "slow", Send: slow})
		waitForCount(t, cm, 1)

		cm.Broadcast(ports.UpdateEvent{Type: ports.EventTypeDiffUpdated})
		waitForCount(t, cm, 0)

		_, open := <-slow
		assert.False(t, open)
	})

	t.Run("close all connections", func(t *testing.T) {
		cm, _ := runManager(t)

		for i := 0; i < 5; i++ {
			cm.RegisterConnection(&Connection{ID: fmt.Sprintf("c%d", i), Send: make(chan ports.UpdateEvent, 1)})
		}
		waitForCount(t, cm, 5)

		cm.CloseAll()
		assert.Equal(t, 0, cm.Count())
	})

	t.Run("concurrent operations", func(t *testing.T) {
		cm, _ := runManager(t)

		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func(id int) {
				defer wg.Done()

				for j := 0; j < 100; j++ {
					connID := fmt.Sprintf("c%d-%d", id, j)
					cm.RegisterConnection(&Connection{ID: connID, Send: make(chan ports.UpdateEvent, 1)})
					cm.Broadcast(ports.UpdateEvent{Type: ports.EventTypeDiffUpdated, Timestamp: time.Now()})
					cm.Unregister(connID)
				}
			}(i)
		}

		wg.Wait()
		waitForCount(t, cm, 0)
	})
}

func TestDeliver(t *testing.T) {
	send := make(chan ports.UpdateEvent, 1)
	busy := &Connection{ID: "busy", Send: send}

	assert.True(t, deliver(busy, ports.UpdateEvent{Type: ports.EventTypeDiffUpdated, Data: "first"}))
	assert.True(t, deliver(busy, ports.UpdateEvent{Type: ports.EventTypeDiffUpdated, Data: "second"}))
	require.Len(t, send, 1)
	assert.Equal(t, "second", (<-send).Data, "the newest diff replaces the queued one")

	stuck := &Connection{ID: "stuck", Send: make(chan ports.UpdateEvent)}
	assert.False(t, deliver(stuck, ports.UpdateEvent{Type: ports.EventTypeDiffUpdated}))
}

func TestConnectionManagerShutdown(t *testing.T) {
	cm, cancel := runManager(t)

	send := make(chan ports.UpdateEvent, 1)
	cm.RegisterConnection(&Connection{ID: "viewer", Send: send})
	waitForCount(t, cm, 1)

	cancel()
	<-cm.done

	done := make(chan struct{})
	go func() {
		defer close(done)

		// None of these may block once the manager has stopped
		cm.Broadcast(ports.UpdateEvent{Type: ports.EventTypeDiffUpdated})
		assert.False(t, cm.RegisterConnection(&Connection{ID: "late", Send: make(chan ports.UpdateEvent, 1)}))
		cm.Unregister("viewer")
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("connection manager blocked after shutdown")
	}

	assert.Equal(t, 0, cm.Count())
}
