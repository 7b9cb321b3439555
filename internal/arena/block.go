package arena

import (
	"encoding/json"
	"fmt"

	"github.com/pixil98/go-tabletop/internal/ident"
)

// Block is one unit of shared state held by an Arena.
type Block interface {
	// TypeName is the tag written to the wire and used to find the
	// matching UnpackFunc.
	TypeName() string
	// Pack serializes the type specific payload.
	Pack() (json.RawMessage, error)
	// Children lists the blocks this block refers to directly.
	Children() []ident.Id
	// Resources lists the binary resources this block refers to directly.
	Resources() []ident.Id
}

// UnpackFunc rebuilds a block from the payload written by Block.Pack.
type UnpackFunc func(json.RawMessage) (Block, error)

// Registry maps wire type names to unpack functions.
type Registry struct {
	unpackers map[string]UnpackFunc
}

func NewRegistry() *Registry {
	return &Registry{unpackers: map[string]UnpackFunc{}}
}

// Register adds fn under name. Registering a name twice panics.
func (r *Registry) Register(name string, fn UnpackFunc) {
	if name == "" || name == tombstoneTypeName {
		panic(fmt.Sprintf("arena: reserved block type name %q", name))
	}
	if _, ok := r.unpackers[name]; ok {
		panic(fmt.Sprintf("arena: block type %q registered twice", name))
	}
	r.unpackers[name] = fn
}

// Unpack rebuilds a payload of the named type.
func (r *Registry) Unpack(name string, payload json.RawMessage) (Block, error) {
	if r == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, name)
	}
	fn, ok := r.unpackers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, name)
	}
	b, err := fn(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrMalformedPack, name, err)
	}
	return b, nil
}

// ValidatingBlock is implemented by blocks that can reject a decoded payload.
type ValidatingBlock interface {
	Block
	Validate() error
}

// RegisterJSON registers a block type whose payload is its own JSON encoding.
// Blocks implementing ValidatingBlock are validated after decoding.
func RegisterJSON[T any, PT interface {
	*T
	Block
}](r *Registry, name string) {
	r.Register(name, func(raw json.RawMessage) (Block, error) {
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		b := PT(&v)
		if vb, ok := any(b).(ValidatingBlock); ok {
			if err := vb.Validate(); err != nil {
				return nil, err
			}
		}
		return b, nil
	})
}
