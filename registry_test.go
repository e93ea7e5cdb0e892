package roomcast

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrCreateReturnsSameRoom(t *testing.T) {
	reg := NewRegistry(nil)

	r1 := reg.GetOrCreate("lobby", RoomOptions{})
	r2 := reg.GetOrCreate("lobby", RoomOptions{})
	assert.Same(t, r1, r2)
	assert.Equal(t, 1, reg.Len())
}

func TestGetOrCreateConcurrent(t *testing.T) {
	reg := NewRegistry(nil)

	rooms := make(chan *Room, 32)
	var wg sync.WaitGroup
	for i := 0; i < cap(rooms); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rooms <- reg.GetOrCreate("lobby", RoomOptions{})
		}()
	}
	wg.Wait()
	close(rooms)

	first := <-rooms
	for room := range rooms {
		assert.Same(t, first, room)
	}
	assert.Equal(t, 1, reg.Len())
}

func TestGetOrCreateOptionsFirstWriterWins(t *testing.T) {
	reg := NewRegistry(nil)

	r1 := reg.GetOrCreate("lobby", RoomOptions{PingInterval: time.Minute})
	r2 := reg.GetOrCreate("lobby", RoomOptions{PingInterval: time.Second})

	assert.Same(t, r1, r2)
	assert.Equal(t, time.Minute, r1.pingInterval, "options of the second call are ignored")
}

func TestHasGetDelete(t *testing.T) {
	reg := NewRegistry(nil)

	assert.False(t, reg.Has("lobby"))
	_, ok := reg.Get("lobby")
	assert.False(t, ok)
	assert.False(t, reg.Delete("lobby"))

	created := reg.GetOrCreate("lobby", RoomOptions{})
	assert.True(t, reg.Has("lobby"))
	got, ok := reg.Get("lobby")
	require.True(t, ok)
	assert.Same(t, created, got)

	assert.True(t, reg.Delete("lobby"))
	assert.False(t, reg.Has("lobby"))
	assert.False(t, reg.Delete("lobby"))
	assert.Equal(t, 0, reg.Len())
}

func TestDeleteLeavesStreamsAlive(t *testing.T) {
	reg := NewRegistry(nil)
	room := reg.GetOrCreate("lobby", RoomOptions{PingInterval: time.Hour})

	fs := &fakeStream{}
	c, err := room.Open("alice", fs, Hooks{})
	require.NoError(t, err)
	defer c.Close()

	require.True(t, reg.Delete("lobby"))

	// The stream is orphaned from the registry but still live and
	// reachable through the retained room reference.
	assert.False(t, isClosed(c))
	require.NoError(t, room.Broadcast(Message{Channel: "chat", Data: "still here"}, nil))
	assert.Equal(t, 2, fs.frameCount())
}

func TestRegistriesAreIndependent(t *testing.T) {
	regA := NewRegistry(nil)
	regB := NewRegistry(nil)

	regA.GetOrCreate("lobby", RoomOptions{})
	assert.False(t, regB.Has("lobby"))
}
