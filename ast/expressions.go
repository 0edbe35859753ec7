package ast

import (
	"github.com/lightplayer/lps/fixed"
	"github.com/lightplayer/lps/internal/token"
	"github.com/lightplayer/lps/types"
)

// ExprKind identifies the variant of an expression node.
type ExprKind uint8

const (
	IntLit ExprKind = iota
	FloatLit
	BoolLit
	Variable
	Binary
	Unary
	Ternary
	Assign
	Call
	Constructor
	Swizzle
	IncDec
)

var exprKindNames = [...]string{
	IntLit:      "IntLit",
	FloatLit:    "FloatLit",
	BoolLit:     "BoolLit",
	Variable:    "Variable",
	Binary:      "Binary",
	Unary:       "Unary",
	Ternary:     "Ternary",
	Assign:      "Assign",
	Call:        "Call",
	Constructor: "Constructor",
	Swizzle:     "Swizzle",
	IncDec:      "IncDec",
}

func (k ExprKind) String() string {
	if int(k) < len(exprKindNames) {
		return exprKindNames[k]
	}
	return "Unknown"
}

// Operator is a unary, binary, assignment or increment operator.
type Operator uint8

const (
	OpNone Operator = iota
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	OpLess
	OpGreater
	OpLessEq
	OpGreaterEq
	OpEq
	OpNotEq
	OpAnd
	OpOr
	OpBitAnd
	OpBitOr
	OpBitXor
	OpShl
	OpShr
	OpNeg
	OpNot
	OpBitNot
	OpPreInc
	OpPreDec
	OpPostInc
	OpPostDec
)

var operatorSymbols = [...]string{
	OpNone:      "",
	OpAdd:       "+",
	OpSub:       "-",
	OpMul:       "*",
	OpDiv:       "/",
	OpMod:       "%",
	OpLess:      "<",
	OpGreater:   ">",
	OpLessEq:    "<=",
	OpGreaterEq: ">=",
	OpEq:        "==",
	OpNotEq:     "!=",
	OpAnd:       "&&",
	OpOr:        "||",
	OpBitAnd:    "&",
	OpBitOr:     "|",
	OpBitXor:    "^",
	OpShl:       "<<",
	OpShr:       ">>",
	OpNeg:       "-",
	OpNot:       "!",
	OpBitNot:    "~",
	OpPreInc:    "++",
	OpPreDec:    "--",
	OpPostInc:   "++",
	OpPostDec:   "--",
}

func (o Operator) String() string {
	if int(o) < len(operatorSymbols) {
		return operatorSymbols[o]
	}
	return "?"
}

// IsArithmetic reports whether o is + - * / or %.
func (o Operator) IsArithmetic() bool {
	return o >= OpAdd && o <= OpMod
}

// IsComparison reports whether o is a relational or equality operator.
func (o Operator) IsComparison() bool {
	return o >= OpLess && o <= OpNotEq
}

// IsLogical reports whether o is && or ||.
func (o Operator) IsLogical() bool {
	return o == OpAnd || o == OpOr
}

// IsBitwise reports whether o is a binary bitwise or shift operator.
func (o Operator) IsBitwise() bool {
	return o >= OpBitAnd && o <= OpShr
}

// IsIncrement reports whether o increments rather than decrements.
func (o Operator) IsIncrement() bool {
	return o == OpPreInc || o == OpPostInc
}

// IsPostfix reports whether o is a postfix increment or decrement.
func (o Operator) IsPostfix() bool {
	return o == OpPostInc || o == OpPostDec
}

// Expr is an expression node. Which fields are meaningful depends on Kind:
//
//	IntLit, BoolLit  Int
//	FloatLit         Value
//	Variable         Name
//	Binary           Op, Left, Right
//	Unary            Op, Left
//	Ternary          Cond, Left (true branch), Right (false branch)
//	Assign           Op (OpNone for "="), Name, Right
//	Call             Name, Args
//	Constructor      Target, Args
//	Swizzle          Left (base), Name (letters), Components
//	IncDec           Op, Name
type Expr struct {
	Kind ExprKind
	Op   Operator
	Span token.Span

	// Type is filled in by the type checker.
	Type types.Type

	// Promoted is set when an Int32 expression has been widened to Fixed.
	Promoted bool

	Int        int32
	Value      fixed.Fixed
	Name       string
	Target     types.Type
	Left       ExprID
	Right      ExprID
	Cond       ExprID
	Args       []ExprID
	Components []uint8
}

func newExpr(kind ExprKind, span token.Span) Expr {
	return Expr{Kind: kind, Span: span, Left: NoExpr, Right: NoExpr, Cond: NoExpr}
}

func NewInt(span token.Span, v int32) Expr {
	e := newExpr(IntLit, span)
	e.Int = v
	return e
}

func NewFloat(span token.Span, v fixed.Fixed) Expr {
	e := newExpr(FloatLit, span)
	e.Value = v
	return e
}

func NewBool(span token.Span, v bool) Expr {
	e := newExpr(BoolLit, span)
	if v {
		e.Int = 1
	}
	return e
}

func NewVariable(span token.Span, name string) Expr {
	e := newExpr(Variable, span)
	e.Name = name
	return e
}

func NewBinary(span token.Span, op Operator, left, right ExprID) Expr {
	e := newExpr(Binary, span)
	e.Op = op
	e.Left = left
	e.Right = right
	return e
}

func NewUnary(span token.Span, op Operator, operand ExprID) Expr {
	e := newExpr(Unary, span)
	e.Op = op
	e.Left = operand
	return e
}

func NewTernary(span token.Span, cond, ifTrue, ifFalse ExprID) Expr {
	e := newExpr(Ternary, span)
	e.Cond = cond
	e.Left = ifTrue
	e.Right = ifFalse
	return e
}

// NewAssign creates an assignment. op is OpNone for plain "=" or the binary
// operator of a compound assignment.
func NewAssign(span token.Span, op Operator, name string, value ExprID) Expr {
	e := newExpr(Assign, span)
	e.Op = op
	e.Name = name
	e.Right = value
	return e
}

func NewCall(span token.Span, name string, args []ExprID) Expr {
	e := newExpr(Call, span)
	e.Name = name
	e.Args = args
	return e
}

func NewConstructor(span token.Span, target types.Type, args []ExprID) Expr {
	e := newExpr(Constructor, span)
	e.Target = target
	e.Args = args
	return e
}

func NewSwizzle(span token.Span, base ExprID, letters string) Expr {
	e := newExpr(Swizzle, span)
	e.Left = base
	e.Name = letters
	return e
}

func NewIncDec(span token.Span, op Operator, name string) Expr {
	e := newExpr(IncDec, span)
	e.Op = op
	e.Name = name
	return e
}

// IsLiteral reports whether e is a numeric or boolean literal.
func (e *Expr) IsLiteral() bool {
	return e.Kind == IntLit || e.Kind == FloatLit || e.Kind == BoolLit
}
