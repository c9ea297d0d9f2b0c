package domain

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

const clientEventBuffer = 32

// Client is one authenticated realtime connection. The identity never
// changes after construction; the room pointer is mutated only by the
// connection's own event loop but may be read from peers' loops, hence the
// small mutex.
type Client struct {
	ID          string
	Identity    Identity
	ConnectedAt time.Time

	events    chan Envelope
	done      chan struct{}
	closeOnce sync.Once

	mu            sync.Mutex
	roomID        string
	appointmentID string
}

func NewClient(identity Identity) *Client {
	return &Client{
		ID:          uuid.NewString(),
		Identity:    identity,
		ConnectedAt: time.Now().UTC(),
		events:      make(chan Envelope, clientEventBuffer),
		done:        make(chan struct{}),
	}
}

// Room returns the current room and appointment the client is joined to,
// or empty strings when it is in none.
func (c *Client) Room() (roomID, appointmentID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.roomID, c.appointmentID
}

func (c *Client) SetRoom(roomID, appointmentID string) {
	c.mu.Lock()
	c.roomID = roomID
	c.appointmentID = appointmentID
	c.mu.Unlock()
}

func (c *Client) ClearRoom() {
	c.SetRoom("", "")
}

// Enqueue offers an envelope to the client's writer without blocking. A
// stalled or closed client drops the event.
func (c *Client) Enqueue(env Envelope) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.events <- env:
		return true
	default:
		return false
	}
}

// Deliver queues an envelope, waiting for buffer space. Used for acks,
// which must not be dropped while the connection is alive.
func (c *Client) Deliver(env Envelope) bool {
	select {
	case c.events <- env:
		return true
	case <-c.done:
		return false
	}
}

// Close releases the writer. Idempotent; the event channel itself is never
// closed so concurrent Enqueue calls stay safe.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}

func (c *Client) Events() <-chan Envelope {
	return c.events
}

func (c *Client) Done() <-chan struct{} {
	return c.done
}
