package command

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/pixil98/go-service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/pixil98/go-tabletop/internal/driver"
	"github.com/pixil98/go-tabletop/internal/messaging"
	"github.com/pixil98/go-tabletop/internal/metrics"
	"github.com/pixil98/go-tabletop/internal/session"
	"github.com/pixil98/go-tabletop/internal/storage"
)

func BuildWorkers(config interface{}) (service.WorkerList, error) {
	cfg, ok := config.(*Config)
	if !ok {
		return nil, fmt.Errorf("unable to cast config")
	}

	natsServer, err := cfg.Nats.buildNatsServer()
	if err != nil {
		return nil, fmt.Errorf("creating nats server: %w", err)
	}

	db, err := cfg.Storage.BuildDB()
	if err != nil {
		return nil, err
	}

	// Create the room on top of the embedded bus
	collector := metrics.NewCollector()
	opts := []session.RoomOpt{session.WithObserver(collector)}
	if cfg.Room.PeerId != "" {
		opts = append(opts, session.WithPeerId(cfg.Room.PeerId))
	}
	if cfg.Room.InboxSize > 0 {
		opts = append(opts, session.WithInboxSize(cfg.Room.InboxSize))
	}
	room := session.NewRoom(cfg.Room.Name, messaging.NewRoomBus(natsServer, cfg.Room.Name), opts...)

	// Setup the driver
	drv := driver.NewDriver([]driver.Manager{
		driver.NewAutosave(room, db),
		driver.NewPeerReaper(room, cfg.peerTimeout()),
	}, driver.WithTickLength(cfg.autosaveInterval()))

	workers := service.WorkerList{
		"nats":   natsServer,
		"room":   &roomWorker{room: room, db: db, joinGrace: cfg.joinGrace()},
		"driver": drv,
	}

	if cfg.Metrics.enabled() {
		workers["metrics"] = metrics.NewServer(cfg.Metrics.Addr, buildRegistry(collector, room, db))
	}

	return workers, nil
}

func buildRegistry(collector *metrics.Collector, room *session.Room, db storage.DB) *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collector,
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "tabletop",
			Name:      "peers",
			Help:      "Peers heard from in the room.",
		}, func() float64 {
			return float64(len(room.Peers()))
		}),
	)
	if p, ok := db.(*storage.PebbleDB); ok {
		reg.MustRegister(metrics.NewPebbleCollector(p))
	}
	return reg
}

// roomWorker runs the room loop and gives it a world: the one peers already
// in the room hold, else the saved one, else a fresh one.
type roomWorker struct {
	room      *session.Room
	db        storage.DB
	joinGrace time.Duration
}

func (w *roomWorker) Start(ctx context.Context) error {
	defer func() {
		if err := w.db.Close(); err != nil {
			slog.WarnContext(ctx, "closing storage", "error", err)
		}
	}()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errc := make(chan error, 1)
	go func() {
		errc <- w.room.Start(ctx)
	}()

	if err := w.prepare(ctx); err != nil {
		cancel()
		<-errc
		return err
	}

	return <-errc
}

func (w *roomWorker) prepare(ctx context.Context) error {
	var saved *storage.Snapshot
	snap, err := storage.Load(ctx, w.db)
	switch {
	case errors.Is(err, storage.ErrNoSnapshot):
	case err != nil:
		return fmt.Errorf("loading snapshot: %w", err)
	default:
		saved = &snap
	}

	if _, err := w.room.JoinOrCreate(ctx, w.joinGrace, saved); err != nil {
		return fmt.Errorf("preparing room: %w", err)
	}
	return nil
}
