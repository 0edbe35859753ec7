package errors

// ErrorCode represents a unique identifier for error types.
// Codes are organized by category:
//   - E1xxx: Parse errors
//   - E2xxx: Type and code generation errors
//   - E3xxx: Runtime errors
type ErrorCode string

const (
	// Parse errors (E1xxx)
	E1001 ErrorCode = "E1001" // Unexpected token
	E1002 ErrorCode = "E1002" // Illegal character
	E1003 ErrorCode = "E1003" // Invalid syntax
	E1004 ErrorCode = "E1004" // Missing expression
	E1005 ErrorCode = "E1005" // Invalid assignment target
	E1006 ErrorCode = "E1006" // Expected identifier
	E1007 ErrorCode = "E1007" // Unclosed delimiter
	E1008 ErrorCode = "E1008" // Invalid number literal
	E1009 ErrorCode = "E1009" // Maximum nesting depth exceeded
	E1010 ErrorCode = "E1010" // Expected type

	// Compile errors (E2xxx)
	E2001 ErrorCode = "E2001" // Undefined variable
	E2002 ErrorCode = "E2002" // Undefined function
	E2003 ErrorCode = "E2003" // Type mismatch
	E2004 ErrorCode = "E2004" // Invalid argument count
	E2005 ErrorCode = "E2005" // Invalid swizzle
	E2006 ErrorCode = "E2006" // Invalid operation
	E2007 ErrorCode = "E2007" // Redeclared variable
	E2008 ErrorCode = "E2008" // Invalid return statement
	E2009 ErrorCode = "E2009" // Duplicate function
	E2099 ErrorCode = "E2099" // Internal compiler error

	// Runtime errors (E3xxx)
	E3001 ErrorCode = "E3001" // Stack overflow
	E3002 ErrorCode = "E3002" // Stack underflow
	E3003 ErrorCode = "E3003" // Local out of bounds
	E3004 ErrorCode = "E3004" // Local type mismatch
	E3005 ErrorCode = "E3005" // Type mismatch
	E3006 ErrorCode = "E3006" // Program counter out of bounds
	E3007 ErrorCode = "E3007" // Call stack overflow
	E3008 ErrorCode = "E3008" // Instruction limit exceeded
	E3009 ErrorCode = "E3009" // Division by zero
	E3010 ErrorCode = "E3010" // Invalid function index
	E3011 ErrorCode = "E3011" // Invalid texture index
	E3012 ErrorCode = "E3012" // Unsupported opcode
	E3013 ErrorCode = "E3013" // Halted by observer
)

var codeDescriptions = map[ErrorCode]string{
	E1001: "unexpected token",
	E1002: "illegal character",
	E1003: "invalid syntax",
	E1004: "missing expression",
	E1005: "invalid assignment target",
	E1006: "expected identifier",
	E1007: "unclosed delimiter",
	E1008: "invalid number literal",
	E1009: "maximum nesting depth exceeded",
	E1010: "expected type",

	E2001: "undefined variable",
	E2002: "undefined function",
	E2003: "type mismatch",
	E2004: "invalid argument count",
	E2005: "invalid swizzle",
	E2006: "invalid operation",
	E2007: "variable already declared",
	E2008: "invalid return statement",
	E2009: "duplicate function",
	E2099: "internal compiler error",

	E3001: "stack overflow",
	E3002: "stack underflow",
	E3003: "local out of bounds",
	E3004: "local type mismatch",
	E3005: "type mismatch",
	E3006: "program counter out of bounds",
	E3007: "call stack overflow",
	E3008: "instruction limit exceeded",
	E3009: "division by zero",
	E3010: "invalid function index",
	E3011: "invalid texture index",
	E3012: "unsupported opcode",
	E3013: "halted by observer",
}

// Description returns the short description for an error code.
func (c ErrorCode) Description() string {
	if desc, ok := codeDescriptions[c]; ok {
		return desc
	}
	return "unknown error"
}

// String returns the error code as a string.
func (c ErrorCode) String() string {
	return string(c)
}

// Category returns the error category based on the code prefix.
func (c ErrorCode) Category() string {
	if len(c) < 2 {
		return "unknown"
	}
	switch c[1] {
	case '1':
		return "parse"
	case '2':
		return "compile"
	case '3':
		return "runtime"
	default:
		return "unknown"
	}
}
