package command

import (
	"fmt"
	"net/url"
	"time"

	"github.com/pixil98/go-errors"

	"github.com/pixil98/go-tabletop/internal/messaging"
)

type NatsConfig struct {
	Host         string   `json:"host"`
	Port         int      `json:"port"`
	StartTimeout string   `json:"start_timeout"`
	LeafRemotes  []string `json:"leaf_remotes"`
}

func (n *NatsConfig) validate() error {
	el := errors.NewErrorList()

	if n.StartTimeout != "" {
		_, err := time.ParseDuration(n.StartTimeout)
		if err != nil {
			el.Add(fmt.Errorf("parsing start_timeout: %w", err))
		}
	}
	for i, r := range n.LeafRemotes {
		if _, err := url.Parse(r); err != nil {
			el.Add(fmt.Errorf("leaf remote %d: %w", i, err))
		}
	}

	return el.Err()
}

func (c *NatsConfig) buildNatsServer() (*messaging.NatsServer, error) {
	var opts []messaging.NatsServerOpt
	if c.StartTimeout != "" {
		d, err := time.ParseDuration(c.StartTimeout)
		if err != nil {
			return nil, fmt.Errorf("parsing start_timeout: %w", err)
		}
		opts = append(opts, messaging.WithStartTimeout(d))
	}
	if c.Host != "" {
		opts = append(opts, messaging.WithHost(c.Host))
	}
	if c.Port != 0 {
		opts = append(opts, messaging.WithPort(c.Port))
	}
	if len(c.LeafRemotes) > 0 {
		remotes := make([]*url.URL, 0, len(c.LeafRemotes))
		for _, r := range c.LeafRemotes {
			u, err := url.Parse(r)
			if err != nil {
				return nil, fmt.Errorf("parsing leaf remote %q: %w", r, err)
			}
			remotes = append(remotes, u)
		}
		opts = append(opts, messaging.WithLeafRemotes(remotes...))
	}

	s, err := messaging.NewNatsServer(opts...)
	if err != nil {
		return nil, err
	}

	return s, nil
}
