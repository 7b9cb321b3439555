package arena

import "errors"

var (
	ErrUnknownType   = errors.New("arena: unknown block type")
	ErrMalformedPack = errors.New("arena: malformed block pack")

	// ErrReentrantAccess is the panic value raised when a cell is mutated
	// while another access to it is still on the call stack.
	ErrReentrantAccess = errors.New("arena: reentrant access to block")
)
