package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/pixil98/go-tabletop/internal/arena"
	"github.com/pixil98/go-tabletop/internal/block"
	"github.com/pixil98/go-tabletop/internal/ident"
	"github.com/pixil98/go-tabletop/internal/protocol"
	"github.com/pixil98/go-tabletop/internal/resource"
)

var (
	ErrClosed    = errors.New("session: room closed")
	ErrNoWorld   = errors.New("session: room has no world")
	ErrNoSuchTab = errors.New("session: no such chat tab")
)

// Bus carries encoded messages between the peers of one room.
type Bus interface {
	Publish(data []byte) error
	Subscribe(handler func(data []byte)) (func(), error)
}

// readyBus is implemented by buses that need to connect before use.
type readyBus interface {
	Ready() <-chan struct{}
}

// Room owns the shared state of one session. Every read and write of that
// state happens on the goroutine running Start.
type Room struct {
	name   string
	peerId string
	bus    Bus

	arena     *arena.Arena
	resources *resource.Table
	world     ident.Id
	chat      ident.Id

	inbox   chan func()
	stopped chan struct{}
	peers   *xsync.MapOf[string, time.Time]

	observer   arena.Observer
	worldKnown chan struct{}
	worldOnce  sync.Once
}

// nopObserver stands in when no observer is configured.
type nopObserver struct{}

func (nopObserver) ObserveAssign(arena.Outcome) {}
func (nopObserver) ObserveDrop(string)          {}

func NewRoom(name string, bus Bus, opts ...RoomOpt) *Room {
	cfg := roomConfig{
		peerId:    ident.New().String(),
		inboxSize: 64,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	var observer arena.Observer = nopObserver{}
	if cfg.observer != nil {
		observer = cfg.observer
	}

	arenaOpts := []arena.Option{arena.WithRegistry(block.NewRegistry())}
	resourceOpts := []resource.Option{}
	if cfg.observer != nil {
		arenaOpts = append(arenaOpts, arena.WithObserver(cfg.observer))
		resourceOpts = append(resourceOpts, resource.WithObserver(cfg.observer))
	}
	if cfg.clock != nil {
		arenaOpts = append(arenaOpts, arena.WithClock(cfg.clock))
	}

	return &Room{
		name:      name,
		peerId:    cfg.peerId,
		bus:       bus,
		arena:     arena.New(arenaOpts...),
		resources: resource.New(resourceOpts...),
		inbox:     make(chan func(), cfg.inboxSize),
		stopped:   make(chan struct{}),
		peers:     xsync.NewMapOf[string, time.Time](),

		observer:   observer,
		worldKnown: make(chan struct{}),
	}
}

func (r *Room) Name() string {
	return r.name
}

func (r *Room) PeerId() string {
	return r.peerId
}

// Start subscribes to the bus, announces this peer and runs the room loop
// until ctx is cancelled. The arena is closed when Start returns.
func (r *Room) Start(ctx context.Context) error {
	defer close(r.stopped)
	defer r.arena.Close()

	if rb, ok := r.bus.(readyBus); ok {
		select {
		case <-rb.Ready():
		case <-ctx.Done():
			return nil
		}
	}

	unsub, err := r.bus.Subscribe(r.receive)
	if err != nil {
		return err
	}
	defer unsub()

	slog.InfoContext(ctx, "room started", "room", r.name, "peer", r.peerId)
	if err := r.publish(protocol.Join{}); err != nil {
		slog.WarnContext(ctx, "announcing join", "room", r.name, "error", err)
	}

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "room stopped", "room", r.name)
			return nil
		case job := <-r.inbox:
			job()
		}
	}
}

// Do runs fn on the room loop and waits for its result.
func (r *Room) Do(ctx context.Context, fn func(*State) error) error {
	errc := make(chan error, 1)
	job := func() {
		errc <- fn(&State{room: r})
	}

	select {
	case r.inbox <- job:
	case <-ctx.Done():
		return ctx.Err()
	case <-r.stopped:
		return ErrClosed
	}

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-r.stopped:
		return ErrClosed
	}
}

// AwaitWorld waits up to grace for the room to have a world, either set up
// locally or received from a peer answering Join. It reports whether one
// arrived.
func (r *Room) AwaitWorld(ctx context.Context, grace time.Duration) (bool, error) {
	timer := time.NewTimer(grace)
	defer timer.Stop()

	select {
	case <-r.worldKnown:
		return true, nil
	case <-timer.C:
		return false, nil
	case <-ctx.Done():
		return false, ctx.Err()
	case <-r.stopped:
		return false, ErrClosed
	}
}

// Heartbeat tells the other peers this one is still present.
func (r *Room) Heartbeat() error {
	return r.publish(protocol.Heartbeat{})
}

// Peers returns the other peers seen so far and when each was last heard.
func (r *Room) Peers() map[string]time.Time {
	peers := map[string]time.Time{}
	r.peers.Range(func(id string, seen time.Time) bool {
		peers[id] = seen
		return true
	})
	return peers
}

// PrunePeers forgets peers last heard before cutoff and returns their ids.
func (r *Room) PrunePeers(cutoff time.Time) []string {
	var pruned []string
	r.peers.Range(func(id string, seen time.Time) bool {
		if seen.Before(cutoff) {
			r.peers.Delete(id)
			pruned = append(pruned, id)
		}
		return true
	})
	return pruned
}

// setContext changes the current world and chat. It runs on the room loop.
func (r *Room) setContext(world, chat ident.Id) {
	r.world, r.chat = world, chat
	if !world.IsNil() {
		r.worldOnce.Do(func() { close(r.worldKnown) })
	}
}

func (r *Room) publish(m protocol.Msg) error {
	data, err := protocol.Encode(r.peerId, m)
	if err != nil {
		return err
	}
	return r.bus.Publish(data)
}

// receive runs on the bus goroutine. Decoding happens here and the decoded
// message is handed to the room loop.
func (r *Room) receive(data []byte) {
	env, err := protocol.Decode(data)
	if err != nil {
		slog.Warn("dropping room message", "room", r.name, "error", err)
		return
	}
	if env.Src == r.peerId {
		return
	}
	r.peers.Store(env.Src, time.Now())

	select {
	case r.inbox <- func() { r.handle(env) }:
	case <-r.stopped:
	}
}
