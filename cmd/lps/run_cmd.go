package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/lightplayer/lps/bytecode"
	"github.com/lightplayer/lps/fixed"
	"github.com/lightplayer/lps/render"
	"github.com/lightplayer/lps/types"
	"github.com/lightplayer/lps/vm"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run [file]",
	Short: "Run a script or program once",
	Long: `Run a script or compiled program once and print its result.

Inputs are normalized coordinates (--x, --y) and time (--t). With --width
and --height the program runs for pixel (--px, --py) of that canvas instead.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := getProgram(cmd, args)
		if err != nil {
			return err
		}
		flags := cmd.Flags()
		x, _ := flags.GetFloat64("x")
		y, _ := flags.GetFloat64("y")
		t, _ := flags.GetFloat64("t")
		width, _ := flags.GetInt("width")
		height, _ := flags.GetInt("height")
		px, _ := flags.GetInt("px")
		py, _ := flags.GetInt("py")
		trace, _ := flags.GetBool("trace")
		format, _ := flags.GetString("output")

		opts, err := vmOptions(cmd)
		if err != nil {
			return err
		}
		if width > 0 || height > 0 {
			opts = append(opts, vm.WithSize(width, height))
		}
		if trace {
			opts = append(opts, vm.WithObserver(&tracer{w: os.Stderr, program: p}))
		}
		machine, err := vm.New(p, opts...)
		if err != nil {
			return err
		}

		var out []fixed.Fixed
		if width > 0 || height > 0 {
			out, err = machine.RunPixel(px, py, fixed.FromFloat(t))
		} else {
			out, err = machine.Run(fixed.FromFloat(x), fixed.FromFloat(y), fixed.FromFloat(t))
		}
		if err != nil {
			return fmt.Errorf("%s", machine.FormatError(err))
		}
		return printResult(p, out, machine.Executed(), format)
	},
}

// vmOptions builds the VM options shared by commands that run programs.
func vmOptions(cmd *cobra.Command) ([]vm.Option, error) {
	flags := cmd.Flags()
	limits := vm.Limits{}
	limits.MaxInstructions, _ = flags.GetInt("max-instructions")
	limits.MaxCallDepth, _ = flags.GetInt("max-depth")
	limits.MaxStackSize, _ = flags.GetInt("max-stack")
	opts := []vm.Option{vm.WithLimits(limits)}

	textures, _ := flags.GetStringSlice("texture")
	if len(textures) > 0 {
		size, _ := flags.GetInt("texture-size")
		sampler, err := render.LoadTextures(textures, size)
		if err != nil {
			return nil, err
		}
		opts = append(opts, vm.WithSampler(sampler))
	}
	return opts, nil
}

func addVMFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.Int("max-instructions", vm.DefaultMaxInstructions, "Instruction budget per run")
	flags.Int("max-depth", vm.DefaultMaxCallDepth, "Maximum call depth")
	flags.Int("max-stack", vm.DefaultMaxStackSize, "Value stack size in words")
	flags.StringSlice("texture", nil, "Texture image files, in index order")
	flags.Int("texture-size", 0, "Resize textures to this size")
}

type runResult struct {
	Type     string `json:"type"`
	Value    any    `json:"value"`
	Executed int    `json:"executed"`
}

func resultValue(t types.Type, out []fixed.Fixed) any {
	switch t {
	case types.Void:
		return nil
	case types.Bool:
		return out[0] != 0
	case types.Int32:
		return int32(out[0])
	case types.Fixed:
		return out[0].Float()
	}
	values := make([]float64, len(out))
	for i, v := range out {
		values[i] = v.Float()
	}
	return values
}

func printResult(p *bytecode.Program, out []fixed.Fixed, executed int, format string) error {
	t := p.ResultType()
	switch strings.ToLower(format) {
	case "", "json":
		return printJSON(runResult{Type: t.String(), Value: resultValue(t, out), Executed: executed})
	case "text":
		words := make([]string, len(out))
		for i, v := range out {
			if t == types.Int32 {
				words[i] = fmt.Sprint(int32(v))
			} else {
				words[i] = v.String()
			}
		}
		fmt.Printf("%s(%s)\n", t, strings.Join(words, ", "))
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}
}

// tracer prints every executed instruction.
type tracer struct {
	vm.NoOpObserver
	w       io.Writer
	program *bytecode.Program
}

var traceOp = color.New(color.FgCyan).SprintFunc()

func (t *tracer) OnStep(e vm.StepEvent) bool {
	in := bytecode.Instruction{Op: e.Opcode, Arg: e.Arg}
	fmt.Fprintf(t.w, "%5d  %-28s sp=%-3d depth=%d line=%d\n",
		e.PC, traceOp(in.String()), e.StackDepth, e.FrameDepth, e.Span.Line)
	return true
}

func (t *tracer) OnCall(e vm.CallEvent) bool {
	fn := t.program.Function(e.FunctionIndex)
	fmt.Fprintf(t.w, "       call %s\n", fn.Signature())
	return true
}

func (t *tracer) OnReturn(e vm.ReturnEvent) bool {
	fmt.Fprintf(t.w, "       return from %s\n", e.FunctionName)
	return true
}

func init() {
	flags := runCmd.Flags()
	flags.Float64("x", 0, "Normalized x coordinate")
	flags.Float64("y", 0, "Normalized y coordinate")
	flags.Float64("t", 0, "Time in seconds")
	flags.Int("width", 0, "Canvas width for pixel mode")
	flags.Int("height", 0, "Canvas height for pixel mode")
	flags.Int("px", 0, "Pixel column")
	flags.Int("py", 0, "Pixel row")
	flags.Bool("trace", false, "Print each executed instruction to stderr")
	flags.StringP("output", "o", "", "Output format (json, text)")
	addVMFlags(runCmd)
	runCmd.RegisterFlagCompletionFunc("output", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return outputFormatsCompletion, cobra.ShellCompDirectiveNoFileComp
	})
}
