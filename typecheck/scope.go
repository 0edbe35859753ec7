package typecheck

import (
	"github.com/lightplayer/lps/internal/token"
	"github.com/lightplayer/lps/types"
)

type scope struct {
	vars map[string]types.Type
}

func (c *Checker) push() {
	c.scopes = append(c.scopes, scope{vars: map[string]types.Type{}})
}

func (c *Checker) pop() {
	c.scopes = c.scopes[:len(c.scopes)-1]
}

// declare adds a variable to the innermost scope. Shadowing a variable from
// an outer scope is allowed; declaring a name twice in one scope is not.
func (c *Checker) declare(name string, t types.Type, span token.Span) error {
	if IsReservedVariable(name) {
		err := c.fail(Redeclared, span, "cannot declare a variable named %s: it is a built-in", name)
		err.Name = name
		return err
	}
	inner := c.scopes[len(c.scopes)-1]
	if _, exists := inner.vars[name]; exists {
		err := c.fail(Redeclared, span, "variable %s is already declared in this scope", name)
		err.Name = name
		return err
	}
	inner.vars[name] = t
	return nil
}

// lookup resolves a declared variable, innermost scope first.
func (c *Checker) lookup(name string) (types.Type, bool) {
	for i := len(c.scopes) - 1; i >= 0; i-- {
		if t, ok := c.scopes[i].vars[name]; ok {
			return t, true
		}
	}
	return types.None, false
}
