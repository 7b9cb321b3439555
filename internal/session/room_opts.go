package session

import "github.com/pixil98/go-tabletop/internal/arena"

type roomConfig struct {
	peerId    string
	inboxSize int
	observer  arena.Observer
	clock     func() arena.Timestamp
}

type RoomOpt func(*roomConfig)

// WithPeerId sets the id this peer signs its messages with. A random id is
// used by default.
func WithPeerId(id string) RoomOpt {
	return func(c *roomConfig) {
		c.peerId = id
	}
}

func WithInboxSize(n int) RoomOpt {
	return func(c *roomConfig) {
		c.inboxSize = n
	}
}

// WithObserver reports merge outcomes and dropped packs for both blocks and
// resources.
func WithObserver(o arena.Observer) RoomOpt {
	return func(c *roomConfig) {
		c.observer = o
	}
}

func WithClock(clock func() arena.Timestamp) RoomOpt {
	return func(c *roomConfig) {
		c.clock = clock
	}
}
