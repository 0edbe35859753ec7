package typecheck

import (
	"strings"

	"github.com/lightplayer/lps/ast"
	"github.com/lightplayer/lps/types"
)

// check types the expression id and records the result on the node. Nodes
// that already carry a type are not revisited: lane expansion of built-in
// calls shares argument nodes between lanes.
func (c *Checker) check(id ast.ExprID) (types.Type, error) {
	e := c.pool.Expr(id)
	if e.Type != types.None {
		return e.Type, nil
	}
	var t types.Type
	var err error
	switch e.Kind {
	case ast.IntLit:
		t = types.Int32
	case ast.FloatLit:
		t = types.Fixed
	case ast.BoolLit:
		t = types.Bool
	case ast.Variable:
		t, err = c.checkVariable(id)
	case ast.Binary:
		t, err = c.checkBinary(id)
	case ast.Unary:
		t, err = c.checkUnary(id)
	case ast.Ternary:
		t, err = c.checkTernary(id)
	case ast.Assign:
		t, err = c.checkAssign(id)
	case ast.IncDec:
		t, err = c.checkIncDec(id)
	case ast.Call:
		t, err = c.checkCall(id)
	case ast.Constructor:
		t, err = c.checkConstructor(id)
	case ast.Swizzle:
		t, err = c.checkSwizzle(id)
	default:
		return types.None, c.fail(InvalidOperation, e.Span, "unknown expression kind %s", e.Kind)
	}
	if err != nil {
		return types.None, err
	}
	c.pool.Expr(id).Type = t
	return t, nil
}

// promote widens an Int32 expression to Fixed.
func (c *Checker) promote(id ast.ExprID) {
	e := c.pool.Expr(id)
	if e.Type == types.Int32 {
		e.Type = types.Fixed
		e.Promoted = true
	}
}

// coerce checks that a value of type found can be stored where expected is
// required, widening an integer to float when needed.
func (c *Checker) coerce(id ast.ExprID, expected, found types.Type) error {
	if expected == types.Fixed && found == types.Int32 {
		c.promote(id)
		return nil
	}
	if !types.Compatible(expected, found) {
		return c.mismatch(c.pool.Expr(id).Span, expected, found)
	}
	return nil
}

func (c *Checker) checkVariable(id ast.ExprID) (types.Type, error) {
	e := c.pool.Expr(id)
	if t, ok := c.lookup(e.Name); ok {
		return t, nil
	}
	if v, ok := LookupVariable(e.Name); ok {
		return v.Type, nil
	}
	err := c.fail(UndefinedVariable, e.Span, "undefined variable %s", e.Name)
	err.Name = e.Name
	err.Suggestions = c.suggest(e.Name, c.visibleNames())
	return types.None, err
}

type arithStatus uint8

const (
	arithOK arithStatus = iota
	arithMismatch
	arithInvalid
)

// arithResult computes the type of "l o r" for an arithmetic operator and
// which side, if any, must be widened from Int32 to Fixed. Scalars combined
// with vectors or matrices are broadcast. Bool takes no part in arithmetic.
func arithResult(o ast.Operator, l, r types.Type) (res types.Type, promoteLeft, promoteRight bool, status arithStatus) {
	if l == types.Bool || r == types.Bool || !l.IsNumeric() || !r.IsNumeric() {
		return types.None, false, false, arithMismatch
	}
	switch {
	case l == r:
		if l == types.Mat3 && (o == ast.OpDiv || o == ast.OpMod) {
			return types.None, false, false, arithInvalid
		}
		return l, false, false, arithOK
	case l == types.Int32 && r == types.Fixed:
		return types.Fixed, true, false, arithOK
	case l == types.Fixed && r == types.Int32:
		return types.Fixed, false, true, arithOK
	case (l.IsVector() || l == types.Mat3) && r.IsScalar():
		if l == types.Mat3 && o == ast.OpMod {
			return types.None, false, false, arithInvalid
		}
		return l, false, r == types.Int32, arithOK
	case l.IsScalar() && (r.IsVector() || r == types.Mat3):
		if r == types.Mat3 && (o == ast.OpDiv || o == ast.OpMod) {
			return types.None, false, false, arithInvalid
		}
		return r, l == types.Int32, false, arithOK
	case l == types.Mat3 && r == types.Vec3 && o == ast.OpMul:
		return types.Vec3, false, false, arithOK
	}
	return types.None, false, false, arithMismatch
}

func (c *Checker) checkBinary(id ast.ExprID) (types.Type, error) {
	e := c.pool.Expr(id)
	o, left, right, span := e.Op, e.Left, e.Right, e.Span
	lt, err := c.check(left)
	if err != nil {
		return types.None, err
	}
	rt, err := c.check(right)
	if err != nil {
		return types.None, err
	}

	switch {
	case o.IsArithmetic():
		res, pl, pr, status := arithResult(o, lt, rt)
		switch status {
		case arithInvalid:
			return types.None, c.fail(InvalidOperation, span, "operator %s is not defined for %s and %s", o, lt, rt)
		case arithMismatch:
			return types.None, c.mismatch(c.pool.Expr(right).Span, lt, rt)
		}
		if pl {
			c.promote(left)
		}
		if pr {
			c.promote(right)
		}
		return res, nil

	case o.IsComparison():
		if !lt.IsScalar() || !rt.IsScalar() {
			return types.None, c.fail(InvalidOperation, span, "operator %s requires scalar operands, found %s and %s", o, lt, rt)
		}
		if lt == types.Int32 && rt != types.Int32 {
			c.promote(left)
		} else if rt == types.Int32 && lt != types.Int32 {
			c.promote(right)
		}
		return types.Bool, nil

	case o.IsLogical():
		if !lt.IsScalar() || !rt.IsScalar() {
			return types.None, c.fail(InvalidOperation, span, "operator %s requires scalar operands, found %s and %s", o, lt, rt)
		}
		return types.Bool, nil

	case o.IsBitwise():
		if lt != types.Int32 {
			return types.None, c.mismatch(c.pool.Expr(left).Span, types.Int32, lt)
		}
		if rt != types.Int32 {
			return types.None, c.mismatch(c.pool.Expr(right).Span, types.Int32, rt)
		}
		return types.Int32, nil
	}
	return types.None, c.fail(InvalidOperation, span, "unknown binary operator %s", o)
}

func (c *Checker) checkUnary(id ast.ExprID) (types.Type, error) {
	e := c.pool.Expr(id)
	o, operand, span := e.Op, e.Left, e.Span
	t, err := c.check(operand)
	if err != nil {
		return types.None, err
	}
	switch o {
	case ast.OpNeg:
		if t == types.Bool || !t.IsNumeric() {
			return types.None, c.fail(InvalidOperation, span, "cannot negate %s", t)
		}
		return t, nil
	case ast.OpNot:
		if !t.IsScalar() {
			return types.None, c.fail(InvalidOperation, span, "operator ! requires a scalar operand, found %s", t)
		}
		return types.Bool, nil
	case ast.OpBitNot:
		if t != types.Int32 {
			return types.None, c.mismatch(c.pool.Expr(operand).Span, types.Int32, t)
		}
		return types.Int32, nil
	}
	return types.None, c.fail(InvalidOperation, span, "unknown unary operator %s", o)
}

func (c *Checker) checkTernary(id ast.ExprID) (types.Type, error) {
	e := c.pool.Expr(id)
	cond, ifTrue, ifFalse := e.Cond, e.Left, e.Right
	if err := c.checkCondition(cond); err != nil {
		return types.None, err
	}
	lt, err := c.check(ifTrue)
	if err != nil {
		return types.None, err
	}
	rt, err := c.check(ifFalse)
	if err != nil {
		return types.None, err
	}
	// Both branches must have the same type; Int32 is not widened here.
	if lt != rt {
		return types.None, c.mismatch(c.pool.Expr(ifFalse).Span, lt, rt)
	}
	return lt, nil
}

// checkCondition accepts any scalar; zero is false.
func (c *Checker) checkCondition(id ast.ExprID) error {
	t, err := c.check(id)
	if err != nil {
		return err
	}
	if !t.IsScalar() {
		err := c.fail(Mismatch, c.pool.Expr(id).Span, "condition must be a scalar, found %s", t)
		err.Expected = types.Bool
		err.Found = t
		return err
	}
	return nil
}

// assignable resolves the variable an assignment or increment writes to.
func (c *Checker) assignable(id ast.ExprID) (types.Type, error) {
	e := c.pool.Expr(id)
	if t, ok := c.lookup(e.Name); ok {
		return t, nil
	}
	if _, ok := LookupVariable(e.Name); ok {
		err := c.fail(InvalidOperation, e.Span, "cannot assign to built-in variable %s", e.Name)
		err.Name = e.Name
		return types.None, err
	}
	err := c.fail(UndefinedVariable, e.Span, "undefined variable %s", e.Name)
	err.Name = e.Name
	err.Suggestions = c.suggest(e.Name, c.visibleNames())
	return types.None, err
}

func (c *Checker) checkAssign(id ast.ExprID) (types.Type, error) {
	target, err := c.assignable(id)
	if err != nil {
		return types.None, err
	}
	e := c.pool.Expr(id)
	o, value, span := e.Op, e.Right, e.Span
	vt, err := c.check(value)
	if err != nil {
		return types.None, err
	}

	switch {
	case o == ast.OpNone:
		if err := c.coerce(value, target, vt); err != nil {
			return types.None, err
		}
	case o.IsBitwise():
		if target != types.Int32 {
			return types.None, c.mismatch(span, types.Int32, target)
		}
		if vt != types.Int32 {
			return types.None, c.mismatch(c.pool.Expr(value).Span, types.Int32, vt)
		}
	case o.IsArithmetic():
		res, pl, pr, status := arithResult(o, target, vt)
		switch {
		case status == arithInvalid:
			return types.None, c.fail(InvalidOperation, span, "operator %s= is not defined for %s and %s", o, target, vt)
		case status == arithMismatch, pl, !types.Compatible(target, res):
			return types.None, c.mismatch(c.pool.Expr(value).Span, target, vt)
		}
		if pr {
			c.promote(value)
		}
	default:
		return types.None, c.fail(InvalidOperation, span, "operator %s cannot be used in an assignment", o)
	}
	return target, nil
}

func (c *Checker) checkIncDec(id ast.ExprID) (types.Type, error) {
	t, err := c.assignable(id)
	if err != nil {
		return types.None, err
	}
	e := c.pool.Expr(id)
	if t != types.Int32 && t != types.Fixed {
		err := c.fail(InvalidOperation, e.Span, "%s requires an int or float variable, found %s", e.Op, t)
		err.Name = e.Name
		return types.None, err
	}
	return t, nil
}

func (c *Checker) checkConstructor(id ast.ExprID) (types.Type, error) {
	e := c.pool.Expr(id)
	target, span := e.Target, e.Span
	args := e.Args
	lanes := 0
	for _, arg := range args {
		t, err := c.check(arg)
		if err != nil {
			return types.None, err
		}
		if t.Size() == 0 {
			return types.None, c.mismatch(c.pool.Expr(arg).Span, types.Fixed, t)
		}
		c.promote(arg)
		lanes += t.Size()
	}
	want := target.Size()
	if lanes == want || (lanes == 1 && len(args) == 1 && target.IsVector()) {
		return target, nil
	}
	err := c.fail(InvalidArgumentCount, span, "%s constructor expects %s, found %d", target, plural(want, "component"), lanes)
	err.Name = target.String()
	err.ExpectedArgs = want
	err.FoundArgs = lanes
	return types.None, err
}

var swizzleSets = []string{"xyzw", "rgba", "stpq"}

func (c *Checker) checkSwizzle(id ast.ExprID) (types.Type, error) {
	e := c.pool.Expr(id)
	base, letters, span := e.Left, e.Name, e.Span
	bt, err := c.check(base)
	if err != nil {
		return types.None, err
	}
	if !bt.IsVector() {
		return types.None, c.fail(InvalidSwizzle, span, "cannot swizzle a value of type %s", bt)
	}
	if len(letters) == 0 || len(letters) > 4 {
		return types.None, c.fail(InvalidSwizzle, span, "swizzle .%s must select 1 to 4 components", letters)
	}
	set := ""
	for _, s := range swizzleSets {
		if strings.IndexByte(s, letters[0]) >= 0 {
			set = s
			break
		}
	}
	if set == "" {
		return types.None, c.fail(InvalidSwizzle, span, "invalid swizzle component %q", letters[0])
	}
	components := make([]uint8, len(letters))
	for i := 0; i < len(letters); i++ {
		idx := strings.IndexByte(set, letters[i])
		if idx < 0 {
			return types.None, c.fail(InvalidSwizzle, span, "swizzle .%s mixes component sets", letters)
		}
		if idx >= bt.Size() {
			return types.None, c.fail(InvalidSwizzle, span, "component %c is out of range for %s", letters[i], bt)
		}
		components[i] = uint8(idx)
	}
	c.pool.Expr(id).Components = components
	return types.VectorOf(len(letters)), nil
}
