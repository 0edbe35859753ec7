// Package dis renders compiled LPS programs as readable instruction tables.
package dis

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"
	"github.com/lightplayer/lps/bytecode"
	"github.com/lightplayer/lps/fixed"
	"github.com/lightplayer/lps/op"
)

// Instruction is one disassembled instruction.
type Instruction struct {
	Offset   int
	Opcode   op.Code
	Name     string
	Operands []string
	Info     string
}

var (
	opcodeColor = color.New(color.FgCyan)
	jumpColor   = color.New(color.FgYellow)
	headerColor = color.New(color.Bold)
)

// Disassemble decodes the instructions of function fn.
func Disassemble(p *bytecode.Program, fn int) ([]Instruction, error) {
	f := p.Function(fn)
	if f == nil {
		return nil, fmt.Errorf("dis: no function at index %d", fn)
	}
	if f.Offset < 0 || f.End() > len(p.Code) {
		return nil, fmt.Errorf("dis: function %s spans [%d, %d) outside code of length %d",
			f.Name, f.Offset, f.End(), len(p.Code))
	}
	result := make([]Instruction, 0, f.Length)
	for pc := f.Offset; pc < f.End(); pc++ {
		in := p.Code[pc]
		info := op.GetInfo(in.Op)
		if info.Code == op.Invalid {
			return nil, fmt.Errorf("dis: unknown opcode %d at offset %d", in.Op, pc)
		}
		d := Instruction{Offset: pc, Opcode: in.Op, Name: info.Name}
		if info.Operand != op.NoOperand {
			d.Operands = []string{strconv.Itoa(int(in.Arg))}
			d.Info = describe(p, f, pc, in, info.Operand)
		}
		result = append(result, d)
	}
	return result, nil
}

func describe(p *bytecode.Program, f *bytecode.Function, pc int, in bytecode.Instruction, kind op.OperandKind) string {
	switch kind {
	case op.FixedOperand:
		return fixed.Fixed(in.Arg).String()
	case op.Int32Operand:
		return strconv.Itoa(int(in.Arg))
	case op.JumpOperand:
		return fmt.Sprintf("-> %d", pc+1+int(in.Arg))
	case op.LocalOperand:
		if i := int(in.Arg); i >= 0 && i < len(f.Locals) {
			return fmt.Sprintf("%s %s", f.Locals[i].Type, f.Locals[i].Name)
		}
	case op.FunctionOperand:
		if callee := p.Function(int(in.Arg)); callee != nil {
			return callee.Signature()
		}
	case op.LanesOperand:
		return "." + lanes(in)
	case op.TextureOperand:
		return fmt.Sprintf("texture %d", in.Arg)
	case op.SourceOperand:
		return op.LoadSource(in.Arg).String()
	case op.OctavesOperand:
		return fmt.Sprintf("%d octaves", in.Arg)
	}
	return ""
}

func lanes(in bytecode.Instruction) string {
	n := op.GetInfo(in.Op).Pushes
	var b strings.Builder
	for i := 0; i < n; i++ {
		b.WriteByte("xyzw"[op.Lane(in.Arg, i)&3])
	}
	return b.String()
}

// Print writes instructions to w as a bordered table.
func Print(instructions []Instruction, w io.Writer) {
	t := table{
		headers: []string{"OFFSET", "OPCODE", "OPERANDS", "INFO"},
		right:   []bool{true, false, true, false},
	}
	for _, in := range instructions {
		name := opcodeColor.Sprint(in.Name)
		if in.Opcode.IsJump() || in.Opcode == op.Call || in.Opcode == op.Return {
			name = jumpColor.Sprint(in.Name)
		}
		t.rows = append(t.rows, []string{
			strconv.Itoa(in.Offset),
			name,
			strings.Join(in.Operands, ", "),
			in.Info,
		})
	}
	t.write(w)
}

// PrintProgram writes every function of p, main first, each under a
// signature heading.
func PrintProgram(p *bytecode.Program, w io.Writer) error {
	for i := range p.Functions {
		instructions, err := Disassemble(p, i)
		if err != nil {
			return err
		}
		if i > 0 {
			fmt.Fprintln(w)
		}
		fn := &p.Functions[i]
		fmt.Fprintf(w, "%s\n", headerColor.Sprintf("%s [%d, %d)", fn.Signature(), fn.Offset, fn.End()))
		Print(instructions, w)
	}
	return nil
}

type table struct {
	headers []string
	right   []bool
	rows    [][]string
}

func (t *table) write(w io.Writer) {
	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = utf8.RuneCountInString(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if n := visibleWidth(cell); n > widths[i] {
				widths[i] = n
			}
		}
	}

	var sep strings.Builder
	sep.WriteString("+")
	for _, width := range widths {
		sep.WriteString(strings.Repeat("-", width+2))
		sep.WriteString("+")
	}
	border := sep.String()

	fmt.Fprintln(w, border)
	fmt.Fprint(w, "|")
	for i, h := range t.headers {
		pad := widths[i] - utf8.RuneCountInString(h)
		left := pad / 2
		fmt.Fprintf(w, " %s%s%s |", strings.Repeat(" ", left), h, strings.Repeat(" ", pad-left))
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, border)
	for _, row := range t.rows {
		fmt.Fprint(w, "|")
		for i, cell := range row {
			pad := strings.Repeat(" ", widths[i]-visibleWidth(cell))
			if t.right[i] {
				fmt.Fprintf(w, " %s%s |", pad, cell)
			} else {
				fmt.Fprintf(w, " %s%s |", cell, pad)
			}
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintln(w, border)
}

// visibleWidth is the rune count of s ignoring ANSI color sequences.
func visibleWidth(s string) int {
	n := 0
	for i := 0; i < len(s); {
		if s[i] == 0x1b {
			for i < len(s) && s[i] != 'm' {
				i++
			}
			i++
			continue
		}
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
		n++
	}
	return n
}
