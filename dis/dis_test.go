package dis

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/lightplayer/lps/bytecode"
	"github.com/lightplayer/lps/compiler"
	"github.com/lightplayer/lps/op"
	"github.com/lightplayer/lps/parser"
	"github.com/lightplayer/lps/typecheck"
	"github.com/stretchr/testify/require"
)

func compile(t *testing.T, src string) *bytecode.Program {
	t.Helper()
	pool, prog, err := parser.Parse(context.Background(), src)
	require.NoError(t, err)
	res, err := typecheck.CheckProgram(pool, prog)
	require.NoError(t, err)
	return compiler.GenerateProgram(pool, prog, compiler.Analyze(pool, prog, res))
}

func noColor(t *testing.T) {
	// Disable colors for consistent test output
	saved := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = saved })
}

func TestFunctionDisassembly(t *testing.T) {
	noColor(t)
	code := compile(t, "float sq(float v) { return v * v; } return sq(3);")

	instructions, err := Disassemble(code, 0)
	require.NoError(t, err)
	require.Len(t, instructions, 4)

	var buf bytes.Buffer
	Print(instructions, &buf)

	expected := strings.TrimSpace(`
+--------+--------------+----------+-------------------+
| OFFSET |    OPCODE    | OPERANDS |       INFO        |
+--------+--------------+----------+-------------------+
|      0 | PushInt32    |        3 | 3                 |
|      1 | Int32ToFixed |          |                   |
|      2 | Call         |        1 | float sq(float v) |
|      3 | Return       |          |                   |
+--------+--------------+----------+-------------------+
`)
	require.Equal(t, expected+"\n", buf.String())
}

func TestOperandInfo(t *testing.T) {
	code := compile(t, "float a = 0.5; while (a < 2.0) { a += x; } return vec4(uv.yx, a, 1.0).wzyx;")
	instructions, err := Disassemble(code, 0)
	require.NoError(t, err)

	infos := map[op.Code]string{}
	for _, in := range instructions {
		if _, seen := infos[in.Opcode]; !seen {
			infos[in.Opcode] = in.Info
		}
	}
	require.Equal(t, "0.5", infos[op.Push])
	require.Equal(t, "float a", infos[op.StoreLocalFixed])
	require.Equal(t, "XNorm", infos[op.Load])
	require.Equal(t, ".wzyx", infos[op.Swizzle4to4])
	require.Contains(t, infos[op.JumpIfZero], "-> ")
}

func TestPrintProgram(t *testing.T) {
	noColor(t)
	code := compile(t, "float sq(float v) { return v * v; } return sq(3);")
	var buf bytes.Buffer
	require.NoError(t, PrintProgram(code, &buf))
	out := buf.String()
	require.Contains(t, out, "float main() [0, 4)")
	require.Contains(t, out, "float sq(float v) [4, 8)")
	require.Contains(t, out, "| LoadLocalFixed |")
}

func TestDisassembleErrors(t *testing.T) {
	code := compile(t, "return 1.0;")
	_, err := Disassemble(code, 3)
	require.Error(t, err)

	code.Code[0].Op = op.Code(250)
	_, err = Disassemble(code, 0)
	require.Error(t, err)
}
