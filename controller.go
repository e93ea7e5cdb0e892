package roomcast

import (
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// StreamWriter is the transport level write handle for one outbound push
// stream. Enqueue writes one complete frame and returns an error if the
// stream is already gone. Both methods may be called from multiple
// goroutines, implementations returned by this package serialize access
// through the owning Controller.
type StreamWriter interface {
	Enqueue(p []byte) error
	Close() error
}

// Hooks are optional per stream lifecycle callbacks. OnConnect runs once the
// stream is live and registered with its room, OnDisconnect runs exactly
// once during teardown. Both receive the controller, so OnConnect can hold
// on to a send/close capability and OnDisconnect can attempt a final best
// effort send (which is silently discarded, the stream is already closed).
type Hooks struct {
	OnConnect    func(c *Controller)
	OnDisconnect func(c *Controller)
}

type controllerState int

const (
	stateCreated controllerState = iota
	stateActive
	stateClosed
)

var (
	errStreamClosed  = errors.New("stream is closed")
	errStreamStarted = errors.New("stream was already started")
)

// Controller owns exactly one physical outbound stream for one subscriber
// identity. It runs the heartbeat loop for the stream and guarantees that
// teardown runs at most once, no matter how many of the possible triggers
// (heartbeat failure, transport cancel, explicit Close) fire.
type Controller struct {
	user         string
	room         *Room
	encode       Encode
	pingInterval time.Duration
	hooks        Hooks
	logger       logrus.FieldLogger

	mu    sync.Mutex
	w     StreamWriter
	state controllerState
	done  chan struct{}
}

// User returns the subscriber identity this stream belongs to.
func (c *Controller) User() string { return c.user }

// Room returns the room that owns this stream.
func (c *Controller) Room() *Room { return c.room }

// Done returns a channel that is closed when the stream reaches its
// terminal state.
func (c *Controller) Done() <-chan struct{} { return c.done }

// start transitions the controller from created to active: it writes an
// immediate heartbeat to prove liveness, registers with the owning room,
// runs the OnConnect hook and starts the heartbeat timer. If the very first
// heartbeat cannot be written the stream is considered dead on arrival and
// start fails without registering.
func (c *Controller) start(w StreamWriter) error {
	c.mu.Lock()
	if c.state != stateCreated {
		c.mu.Unlock()
		return errStreamStarted
	}
	c.w = w
	if err := w.Enqueue(pingFrame(time.Now())); err != nil {
		c.state = stateClosed
		close(c.done)
		c.mu.Unlock()
		return err
	}
	c.state = stateActive
	c.mu.Unlock()

	c.room.addController(c)
	if c.hooks.OnConnect != nil {
		c.hooks.OnConnect(c)
	}
	go c.heartbeat()

	c.logger.Debug("stream connected")
	return nil
}

// heartbeat periodically writes a ping frame to the stream. A failed write
// means the consumer is unreachable and triggers teardown. The loop exits
// when teardown is triggered from any other path.
func (c *Controller) heartbeat() {
	ticker := time.NewTicker(c.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case now := <-ticker.C:
			if err := c.enqueue(pingFrame(now)); err != nil {
				c.logger.WithError(err).Debug("heartbeat write failed")
				c.teardown()
				return
			}
		}
	}
}

// enqueue writes one formatted frame while the stream is active. Holding the
// lock across the state check and the write keeps frames ordered and stops
// any write from racing past teardown.
func (c *Controller) enqueue(frame []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != stateActive {
		return errStreamClosed
	}
	return c.w.Enqueue(frame)
}

// Send formats msg as one frame and writes it to this stream. The encoder
// is opts.Encode when set, otherwise the room encoder bound at subscribe
// time. Encoder failures are returned so callers can detect malformed
// payloads. Write failures are discarded: a send to a closed or dying
// stream is a no-op and never changes the stream state, disconnect
// detection is the heartbeat's job.
func (c *Controller) Send(msg Message, opts *SendOptions) error {
	encode := c.encode
	if opts != nil && opts.Encode != nil {
		encode = opts.Encode
	}
	frame, err := FormatFrame(msg.ID, msg.Channel, msg.Data, encode)
	if err != nil {
		return err
	}
	c.sendFrame(frame)
	return nil
}

// sendFrame writes an already formatted frame, discarding write failures.
func (c *Controller) sendFrame(frame []byte) {
	_ = c.enqueue(frame)
}

// Close force-terminates the stream. It is the programmatic equivalent of a
// remote disconnect and is safe to call any number of times and
// concurrently with other teardown triggers, only the first caller runs
// teardown.
func (c *Controller) Close() {
	c.teardown()
}

// teardown moves the controller to its terminal state: stop the heartbeat
// loop, run the OnDisconnect hook, close the underlying write handle and
// deregister from the owning room. The state guard makes repeat calls
// no-ops. The done channel is closed last, an observer woken by Done sees
// the deregistration already completed.
func (c *Controller) teardown() {
	c.mu.Lock()
	if c.state == stateClosed {
		c.mu.Unlock()
		return
	}
	wasActive := c.state == stateActive
	c.state = stateClosed
	w := c.w
	c.mu.Unlock()

	if wasActive {
		if c.hooks.OnDisconnect != nil {
			c.hooks.OnDisconnect(c)
		}
		if w != nil {
			// The handle may already be gone on the transport side.
			_ = w.Close()
		}
		c.room.removeController(c)
		c.logger.Debug("stream disconnected")
	}
	close(c.done)
}
