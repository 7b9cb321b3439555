package messaging

import (
	"net/url"
	"time"
)

type NatsServerOpt func(*NatsServer)

// WithStartTimeout sets how long Start waits for the server to accept
// connections.
func WithStartTimeout(d time.Duration) NatsServerOpt {
	return func(n *NatsServer) {
		n.startupTimeout = d
	}
}

func WithHost(host string) NatsServerOpt {
	return func(n *NatsServer) {
		n.host = host
	}
}

// WithPort sets the client port. -1 picks a random free port.
func WithPort(port int) NatsServerOpt {
	return func(n *NatsServer) {
		n.port = port
	}
}

// WithLeafRemotes joins other peers' servers as a leaf node, so room
// subjects are shared between them.
func WithLeafRemotes(remotes ...*url.URL) NatsServerOpt {
	return func(n *NatsServer) {
		n.remotes = append(n.remotes, remotes...)
	}
}
