package session

import (
	"github.com/pixil98/go-tabletop/internal/arena"
	"github.com/pixil98/go-tabletop/internal/ident"
	"github.com/pixil98/go-tabletop/internal/resource"
)

// State is the view of a room handed to functions run through Room.Do. It
// must not be kept after the function returns.
type State struct {
	room *Room
}

// Arena returns an alias of the room's arena. Closing it has no effect.
func (s *State) Arena() *arena.Arena {
	return s.room.arena.Alias()
}

func (s *State) Resources() *resource.Table {
	return s.room.resources
}

func (s *State) World() ident.Id {
	return s.room.world
}

func (s *State) Chat() ident.Id {
	return s.room.chat
}

func (s *State) SetContext(world, chat ident.Id) {
	s.room.setContext(world, chat)
}
