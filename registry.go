package roomcast

import (
	"sync"

	cache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
)

// Registry is a namespace of rooms keyed by name. Rooms are created lazily
// on first use and live until explicitly deleted, an idle room is never
// garbage collected. A Registry is safe for concurrent use; applications
// normally create one per process and share it between request handlers.
type Registry struct {
	mu     sync.Mutex
	rooms  *cache.Cache
	logger logrus.FieldLogger
}

// NewRegistry creates an empty room registry. A nil logger falls back to
// the logrus standard logger.
func NewRegistry(logger logrus.FieldLogger) *Registry {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Registry{
		rooms:  cache.New(cache.NoExpiration, 0),
		logger: logger,
	}
}

// GetOrCreate returns the room with the given name, creating it if it does
// not exist yet. At most one Room is ever constructed per name, concurrent
// callers racing on the same name all receive the same instance.
//
// Options take effect only when the room is created by this call. For a
// room that already exists they are silently ignored, the first writer
// wins.
func (reg *Registry) GetOrCreate(name string, opts RoomOptions) *Room {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	if v, ok := reg.rooms.Get(name); ok {
		return v.(*Room)
	}
	room := newRoom(name, opts, reg.logger.WithField("room", name))
	reg.rooms.Set(name, room, cache.NoExpiration)
	reg.logger.WithField("room", name).Debug("room created")
	return room
}

// Has reports whether a room with the given name exists.
func (reg *Registry) Has(name string) bool {
	_, ok := reg.rooms.Get(name)
	return ok
}

// Get returns the room with the given name if it exists.
func (reg *Registry) Get(name string) (*Room, bool) {
	v, ok := reg.rooms.Get(name)
	if !ok {
		return nil, false
	}
	return v.(*Room), true
}

// Delete removes the room entry from the registry and reports whether it
// existed. Live streams in the room are not closed: they keep heartbeating
// and stay reachable through retained *Room references, the room is merely
// no longer resolvable by name. Callers that want to disconnect the
// subscribers as well should call Room.Close first.
func (reg *Registry) Delete(name string) bool {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	if _, ok := reg.rooms.Get(name); !ok {
		return false
	}
	reg.rooms.Delete(name)
	reg.logger.WithField("room", name).Debug("room deleted")
	return true
}

// Len returns the number of rooms currently in the registry.
func (reg *Registry) Len() int {
	return reg.rooms.ItemCount()
}
