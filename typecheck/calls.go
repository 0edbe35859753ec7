package typecheck

import (
	"github.com/lightplayer/lps/ast"
	"github.com/lightplayer/lps/types"
)

func (c *Checker) checkCall(id ast.ExprID) (types.Type, error) {
	e := c.pool.Expr(id)
	name, span := e.Name, e.Span
	args := e.Args

	if sig, ok := c.funcs[name]; ok {
		if len(args) != len(sig.Params) {
			return types.None, c.argCount(span, name, len(sig.Params), len(sig.Params), len(args))
		}
		for i, arg := range args {
			at, err := c.check(arg)
			if err != nil {
				return types.None, err
			}
			if err := c.coerce(arg, sig.Params[i], at); err != nil {
				return types.None, err
			}
		}
		return sig.Return, nil
	}

	b, ok := LookupFunction(name)
	if !ok {
		err := c.fail(UndefinedFunction, span, "undefined function %s", name)
		err.Name = name
		err.Suggestions = c.suggest(name, c.functionNames())
		return types.None, err
	}
	if len(args) < b.MinArgs || len(args) > b.MaxArgs {
		return types.None, c.argCount(span, name, b.MinArgs, b.MaxArgs, len(args))
	}

	switch b.Kind {
	case ScalarBuiltin:
		return c.checkScalarBuiltin(id, b)
	case VectorBuiltin:
		t, err := c.checkVectorArg(args[0], name)
		if err != nil {
			return types.None, err
		}
		if b.ResultFollowsArg {
			return t, nil
		}
		return b.Result, nil
	case PairBuiltin:
		lt, err := c.checkVectorArg(args[0], name)
		if err != nil {
			return types.None, err
		}
		rt, err := c.check(args[1])
		if err != nil {
			return types.None, err
		}
		if rt != lt {
			return types.None, c.mismatch(c.pool.Expr(args[1]).Span, lt, rt)
		}
		return b.Result, nil
	case CrossBuiltin:
		for _, arg := range args {
			if err := c.expect(arg, types.Vec3); err != nil {
				return types.None, err
			}
		}
		return b.Result, nil
	case MatrixBuiltin:
		if err := c.expect(args[0], types.Mat3); err != nil {
			return types.None, err
		}
		return b.Result, nil
	case NoiseBuiltin:
		if err := c.expect(args[0], types.Vec3); err != nil {
			return types.None, err
		}
		if len(args) == 2 {
			if err := c.intLiteralArg(args[1], name, "octave count", 1, MaxOctaves); err != nil {
				return types.None, err
			}
		}
		return b.Result, nil
	case TextureBuiltin:
		if err := c.intLiteralArg(args[0], name, "texture index", 0, -1); err != nil {
			return types.None, err
		}
		if err := c.expect(args[1], types.Vec2); err != nil {
			return types.None, err
		}
		return b.Result, nil
	}
	return types.None, c.fail(InvalidOperation, span, "unsupported built-in %s", name)
}

// checkScalarBuiltin checks a scalar math function. When any argument is a
// vector, the call is rewritten into a constructor of per-lane calls.
func (c *Checker) checkScalarBuiltin(id ast.ExprID, b *Builtin) (types.Type, error) {
	args := append([]ast.ExprID(nil), c.pool.Expr(id).Args...)
	width := types.None
	for _, arg := range args {
		t, err := c.check(arg)
		if err != nil {
			return types.None, err
		}
		switch {
		case t.IsScalar():
		case t.IsVector():
			if width != types.None && width != t {
				return types.None, c.mismatch(c.pool.Expr(arg).Span, width, t)
			}
			width = t
		default:
			return types.None, c.mismatch(c.pool.Expr(arg).Span, types.Fixed, t)
		}
	}
	if width != types.None {
		return c.expand(id, width)
	}
	for _, arg := range args {
		c.promote(arg)
	}
	return b.Result, nil
}

// expand replaces the call id with a constructor whose lanes each call the
// same function on the matching component of every vector argument. Scalar
// arguments are shared by all lanes.
func (c *Checker) expand(id ast.ExprID, width types.Type) (types.Type, error) {
	e := c.pool.Expr(id)
	name, span := e.Name, e.Span
	args := append([]ast.ExprID(nil), e.Args...)

	lanes := make([]ast.ExprID, width.Size())
	for i := range lanes {
		laneArgs := make([]ast.ExprID, len(args))
		for j, arg := range args {
			if c.pool.Expr(arg).Type.IsVector() {
				laneArgs[j] = c.pool.AddExpr(ast.NewSwizzle(span, arg, swizzleSets[0][i:i+1]))
			} else {
				laneArgs[j] = arg
			}
		}
		lanes[i] = c.pool.AddExpr(ast.NewCall(span, name, laneArgs))
	}
	*c.pool.Expr(id) = ast.NewConstructor(span, width, lanes)
	return c.checkConstructor(id)
}

func (c *Checker) checkVectorArg(arg ast.ExprID, name string) (types.Type, error) {
	t, err := c.check(arg)
	if err != nil {
		return types.None, err
	}
	if !t.IsVector() {
		err := c.fail(Mismatch, c.pool.Expr(arg).Span, "%s expects a vector argument, found %s", name, t)
		err.Found = t
		return types.None, err
	}
	return t, nil
}

func (c *Checker) expect(arg ast.ExprID, want types.Type) error {
	t, err := c.check(arg)
	if err != nil {
		return err
	}
	if t != want {
		return c.mismatch(c.pool.Expr(arg).Span, want, t)
	}
	return nil
}

// intLiteralArg requires arg to be an integer literal in [min, max]. A
// negative max means no upper bound.
func (c *Checker) intLiteralArg(arg ast.ExprID, name, what string, min, max int32) error {
	if _, err := c.check(arg); err != nil {
		return err
	}
	e := c.pool.Expr(arg)
	if e.Kind != ast.IntLit {
		return c.fail(InvalidOperation, e.Span, "%s %s must be an integer literal", name, what)
	}
	if e.Int < min || (max >= 0 && e.Int > max) {
		if max >= 0 {
			return c.fail(InvalidOperation, e.Span, "%s %s must be between %d and %d, found %d", name, what, min, max, e.Int)
		}
		return c.fail(InvalidOperation, e.Span, "%s %s must be at least %d, found %d", name, what, min, e.Int)
	}
	return nil
}
