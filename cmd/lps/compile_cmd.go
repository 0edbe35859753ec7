package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/lightplayer/lps/bytecode"
	"github.com/spf13/cobra"
)

var compileCmd = &cobra.Command{
	Use:   "compile [file]",
	Short: "Compile a script to a program file",
	Long: `Compile a script and write the program as CBOR (.lpsc) or JSON (.json).

The output defaults to the input file name with a .lpsc extension.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := getProgram(cmd, args)
		if err != nil {
			return err
		}
		out, _ := cmd.Flags().GetString("output")
		if out == "" {
			out = defaultOutput(args)
		}
		if err := bytecode.WriteFile(out, p); err != nil {
			return err
		}
		if quiet, _ := cmd.Flags().GetBool("quiet"); quiet {
			return nil
		}
		stats := p.Stats()
		return printJSON(map[string]any{
			"id":           p.ID.String(),
			"name":         p.Name,
			"output":       out,
			"result":       p.ResultType().String(),
			"functions":    stats.FunctionCount,
			"instructions": stats.InstructionCount,
			"locals":       stats.LocalCount,
			"local_words":  stats.LocalWords,
		})
	},
}

func defaultOutput(args []string) string {
	if len(args) == 0 {
		return "out" + bytecode.ExtCBOR
	}
	return strings.TrimSuffix(args[0], filepath.Ext(args[0])) + bytecode.ExtCBOR
}

func init() {
	compileCmd.Flags().StringP("output", "o", "", fmt.Sprintf("Output file (%s or %s)", bytecode.ExtCBOR, bytecode.ExtJSON))
	compileCmd.Flags().BoolP("quiet", "q", false, "Suppress the summary")
}
