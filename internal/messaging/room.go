package messaging

import "fmt"

// RoomSubject is the subject every peer of a room publishes to.
func RoomSubject(room string) string {
	return fmt.Sprintf("room.%s", room)
}

// RoomBus binds a NatsServer to a single room subject.
type RoomBus struct {
	server  *NatsServer
	subject string
}

func NewRoomBus(server *NatsServer, room string) *RoomBus {
	return &RoomBus{server: server, subject: RoomSubject(room)}
}

func (b *RoomBus) Ready() <-chan struct{} {
	return b.server.Ready()
}

func (b *RoomBus) Publish(data []byte) error {
	return b.server.Publish(b.subject, data)
}

func (b *RoomBus) Subscribe(handler func(data []byte)) (func(), error) {
	return b.server.Subscribe(b.subject, handler)
}
