package compiler

import (
	"github.com/lightplayer/lps/bytecode"
	"github.com/lightplayer/lps/types"
)

// LocalAllocator assigns local slots within one function. Indices grow
// monotonically and are never reused, so every slot keeps a single type for
// the lifetime of the function. Scopes only affect name resolution: popping
// a scope makes shadowed outer names visible again.
type LocalAllocator struct {
	locals []bytecode.LocalVarDef
	scopes []map[string]int
}

// NewLocalAllocator returns an allocator with one open scope.
func NewLocalAllocator() *LocalAllocator {
	a := &LocalAllocator{}
	a.Push()
	return a
}

// Push opens a nested scope.
func (a *LocalAllocator) Push() {
	a.scopes = append(a.scopes, map[string]int{})
}

// Pop closes the innermost scope.
func (a *LocalAllocator) Pop() {
	a.scopes = a.scopes[:len(a.scopes)-1]
}

// Declare binds name to a new slot in the innermost scope.
func (a *LocalAllocator) Declare(name string, t types.Type) int {
	slot := len(a.locals)
	a.locals = append(a.locals, bytecode.LocalVarDef{Name: name, Type: t})
	a.scopes[len(a.scopes)-1][name] = slot
	return slot
}

// Resolve finds the slot bound to name, innermost scope first.
func (a *LocalAllocator) Resolve(name string) (int, bool) {
	for i := len(a.scopes) - 1; i >= 0; i-- {
		if slot, ok := a.scopes[i][name]; ok {
			return slot, true
		}
	}
	return -1, false
}

// Locals returns the slot layout allocated so far.
func (a *LocalAllocator) Locals() []bytecode.LocalVarDef {
	return a.locals
}
