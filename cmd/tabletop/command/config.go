package command

import (
	"fmt"
	"time"

	"github.com/pixil98/go-errors"
)

type Config struct {
	Room             RoomConfig    `json:"room"`
	Storage          StorageConfig `json:"storage"`
	Nats             NatsConfig    `json:"nats"`
	Metrics          MetricsConfig `json:"metrics"`
	AutosaveInterval string        `json:"autosave_interval"`
	PeerTimeout      string        `json:"peer_timeout"`
	JoinGrace        string        `json:"join_grace"`
}

func (c *Config) Validate() error {
	el := errors.NewErrorList()

	d, err := time.ParseDuration(c.AutosaveInterval)
	if err != nil {
		el.Add(fmt.Errorf("parsing autosave_interval: %w", err))
	} else if d < time.Second {
		el.Add(fmt.Errorf("autosave_interval must be at least 1 second"))
	}

	if c.PeerTimeout != "" {
		d, err := time.ParseDuration(c.PeerTimeout)
		if err != nil {
			el.Add(fmt.Errorf("parsing peer_timeout: %w", err))
		} else if d <= 0 {
			el.Add(fmt.Errorf("peer_timeout must be positive"))
		}
	}
	// Heartbeats go out once per driver tick.
	if interval, timeout := c.autosaveInterval(), c.peerTimeout(); interval > 0 && timeout > 0 && timeout <= interval {
		el.Add(fmt.Errorf("peer_timeout must be longer than autosave_interval"))
	}

	if c.JoinGrace != "" {
		d, err := time.ParseDuration(c.JoinGrace)
		if err != nil {
			el.Add(fmt.Errorf("parsing join_grace: %w", err))
		} else if d < 0 {
			el.Add(fmt.Errorf("join_grace must not be negative"))
		}
	}

	el.Add(c.Room.validate())
	el.Add(c.Storage.validate())
	el.Add(c.Nats.validate())
	el.Add(c.Metrics.validate())

	return el.Err()
}

func (c *Config) autosaveInterval() time.Duration {
	d, _ := time.ParseDuration(c.AutosaveInterval)
	return d
}

// peerTimeout defaults to a minute when unset.
func (c *Config) peerTimeout() time.Duration {
	if c.PeerTimeout == "" {
		return time.Minute
	}
	d, _ := time.ParseDuration(c.PeerTimeout)
	return d
}

// joinGrace defaults to three seconds when unset.
func (c *Config) joinGrace() time.Duration {
	if c.JoinGrace == "" {
		return 3 * time.Second
	}
	d, _ := time.ParseDuration(c.JoinGrace)
	return d
}

type RoomConfig struct {
	Name      string `json:"name"`
	PeerId    string `json:"peer_id"`
	InboxSize int    `json:"inbox_size"`
}

func (c *RoomConfig) validate() error {
	el := errors.NewErrorList()

	if c.Name == "" {
		el.Add(fmt.Errorf("room name is required"))
	}
	if c.InboxSize < 0 {
		el.Add(fmt.Errorf("room inbox_size must not be negative"))
	}

	return el.Err()
}

type MetricsConfig struct {
	Addr string `json:"addr"`
}

func (c *MetricsConfig) validate() error {
	return nil
}

func (c *MetricsConfig) enabled() bool {
	return c.Addr != ""
}
