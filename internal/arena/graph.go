package arena

import "github.com/pixil98/go-tabletop/internal/ident"

// DependentsOf returns root and every live block reachable from it through
// Children. The result is empty unless root holds a live T.
func DependentsOf[T Block](a *Arena, root ident.Id) ident.Set {
	deps := ident.Set{}
	if _, ok := Get[T](a, root); !ok {
		return deps
	}
	a.walk(root, func(id ident.Id, _ Block) {
		deps.Add(id)
	})
	return deps
}

// ResourcesOf returns every resource referenced by root or by a block
// reachable from it. The result is empty unless root holds a live T.
func ResourcesOf[T Block](a *Arena, root ident.Id) ident.Set {
	res := ident.Set{}
	if _, ok := Get[T](a, root); !ok {
		return res
	}
	a.walk(root, func(_ ident.Id, b Block) {
		for _, rid := range b.Resources() {
			res.Add(rid)
		}
	})
	return res
}

// walk visits each live block reachable from root exactly once. Shared
// children are common, so a visited set is kept even though blocks only
// refer from parent to child.
func (a *Arena) walk(root ident.Id, visit func(ident.Id, Block)) {
	visited := ident.Set{}
	stack := []ident.Id{root}

	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited.Has(id) {
			continue
		}
		visited.Add(id)

		a.t.read(id, func(b Block) bool {
			visit(id, b)
			for _, child := range b.Children() {
				if !visited.Has(child) {
					stack = append(stack, child)
				}
			}
			return true
		})
	}
}
