package driver

import (
	"context"
	"log/slog"
	"time"
)

// PeerTracker announces this peer and forgets the ones that went quiet.
type PeerTracker interface {
	Heartbeat() error
	PrunePeers(cutoff time.Time) []string
}

// PeerReaper sends a heartbeat every tick and forgets peers that have been
// silent for longer than ttl.
type PeerReaper struct {
	room PeerTracker
	ttl  time.Duration
	now  func() time.Time
}

func NewPeerReaper(room PeerTracker, ttl time.Duration) *PeerReaper {
	return &PeerReaper{room: room, ttl: ttl, now: time.Now}
}

func (p *PeerReaper) Tick(ctx context.Context) error {
	if err := p.room.Heartbeat(); err != nil {
		slog.WarnContext(ctx, "sending heartbeat", "error", err)
	}
	for _, id := range p.room.PrunePeers(p.now().Add(-p.ttl)) {
		slog.InfoContext(ctx, "peer left", "peer", id)
	}
	return nil
}
