package block

import "github.com/pixil98/go-tabletop/internal/arena"

// NewRegistry returns a registry that knows every block type in this package.
func NewRegistry() *arena.Registry {
	r := arena.NewRegistry()
	arena.RegisterJSON[World](r, TypeWorld)
	arena.RegisterJSON[Table](r, TypeTable)
	arena.RegisterJSON[TableTexture](r, TypeTableTexture)
	arena.RegisterJSON[Character](r, TypeCharacter)
	arena.RegisterJSON[Property](r, TypeProperty)
	r.Register(TypeChat, unpackChat)
	arena.RegisterJSON[ChatTab](r, TypeChatTab)
	arena.RegisterJSON[ChatMessage](r, TypeChatMessage)
	arena.RegisterJSON[Memo](r, TypeMemo)
	arena.RegisterJSON[Tag](r, TypeTag)
	return r
}
