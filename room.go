package roomcast

import (
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultPingInterval is the heartbeat period used by rooms created without
// an explicit one. A stream that cannot be written to is detected as dead
// within one heartbeat period.
const DefaultPingInterval = 10 * time.Minute

// ErrNoUser is returned when a stream is opened without a subscriber
// identity.
var ErrNoUser = errors.New("roomcast: subscriber identity must be non-empty")

// RoomOptions configures a room at creation time.
type RoomOptions struct {
	// Encode is the payload encoder for streams in this room. Nil means
	// DefaultEncode.
	Encode Encode

	// PingInterval is the heartbeat period for streams in this room.
	// Zero or negative means DefaultPingInterval.
	PingInterval time.Duration
}

// Room tracks the membership of one named group of subscribers and fans
// messages out to them. A user may hold several streams at once, each one
// delivers independently. Rooms are created through Registry.GetOrCreate
// and are safe for concurrent use.
type Room struct {
	name         string
	encode       Encode
	pingInterval time.Duration
	logger       logrus.FieldLogger

	mu    sync.Mutex
	users map[string]map[*Controller]struct{}
}

func newRoom(name string, opts RoomOptions, logger logrus.FieldLogger) *Room {
	if opts.Encode == nil {
		opts.Encode = DefaultEncode
	}
	if opts.PingInterval <= 0 {
		opts.PingInterval = DefaultPingInterval
	}
	return &Room{
		name:         name,
		encode:       opts.Encode,
		pingInterval: opts.PingInterval,
		logger:       logger,
		users:        make(map[string]map[*Controller]struct{}),
	}
}

// Name returns the room name.
func (r *Room) Name() string { return r.name }

// Open attaches a new stream for user over the given transport writer. On
// success the stream is live: the initial heartbeat has been written, the
// controller is registered and its heartbeat timer is running. Open fails
// if user is empty or the very first write is rejected by the transport.
//
// Most HTTP servers should use Subscribe instead; Open exists for
// non-HTTP push transports and for tests.
func (r *Room) Open(user string, w StreamWriter, hooks Hooks) (*Controller, error) {
	if user == "" {
		return nil, ErrNoUser
	}
	c := &Controller{
		user:         user,
		room:         r,
		encode:       r.encode,
		pingInterval: r.pingInterval,
		hooks:        hooks,
		logger:       r.logger.WithField("user", user),
		done:         make(chan struct{}),
	}
	if err := c.start(w); err != nil {
		return nil, err
	}
	return c, nil
}

// Broadcast delivers msg to every stream currently open in the room. Each
// stream is written independently and best effort, one failing stream never
// blocks delivery to the others. The returned error is non-nil only for
// encoder failures.
func (r *Room) Broadcast(msg Message, opts *SendOptions) error {
	return r.fanout("", msg, opts)
}

// SendTo delivers msg to every stream the given user has open in the room.
// A user with no open streams is a silent no-op.
func (r *Room) SendTo(user string, msg Message, opts *SendOptions) error {
	return r.fanout(user, msg, opts)
}

// fanout formats msg exactly once and writes the resulting frame to every
// targeted stream. An empty user targets the whole room.
func (r *Room) fanout(user string, msg Message, opts *SendOptions) error {
	encode := r.encode
	if opts != nil && opts.Encode != nil {
		encode = opts.Encode
	}
	frame, err := FormatFrame(msg.ID, msg.Channel, msg.Data, encode)
	if err != nil {
		return err
	}
	for _, c := range r.controllers(user) {
		c.sendFrame(frame)
	}
	return nil
}

// Close tears down every live stream in the room. The room itself stays
// usable, new subscribers may join afterwards. Combine with
// Registry.Delete to retire a room completely.
func (r *Room) Close() {
	for _, c := range r.controllers("") {
		c.Close()
	}
}

// NumUsers returns the number of users with at least one open stream.
func (r *Room) NumUsers() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.users)
}

// NumControllers returns the number of open streams in the room.
func (r *Room) NumControllers() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int
	for _, set := range r.users {
		n += len(set)
	}
	return n
}

// controllers snapshots the targeted controller set so that fan-out and
// teardown never hold the room lock while touching a stream.
func (r *Room) controllers(user string) []*Controller {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*Controller
	if user != "" {
		for c := range r.users[user] {
			out = append(out, c)
		}
		return out
	}
	for _, set := range r.users {
		for c := range set {
			out = append(out, c)
		}
	}
	return out
}

// addController registers a live stream, creating the per-user set lazily.
func (r *Room) addController(c *Controller) {
	r.mu.Lock()
	defer r.mu.Unlock()
	set, ok := r.users[c.user]
	if !ok {
		set = make(map[*Controller]struct{})
		r.users[c.user] = set
	}
	set[c] = struct{}{}
}

// removeController deregisters a stream, pruning the user entry when its
// last stream is removed. Removing an unknown controller is a no-op.
func (r *Room) removeController(c *Controller) {
	r.mu.Lock()
	defer r.mu.Unlock()
	set, ok := r.users[c.user]
	if !ok {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(r.users, c.user)
	}
}
