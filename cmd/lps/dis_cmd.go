package main

import (
	"fmt"
	"os"

	"github.com/lightplayer/lps/dis"
	"github.com/spf13/cobra"
)

var disCmd = &cobra.Command{
	Use:   "dis [file]",
	Short: "Disassemble a script or program",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := getProgram(cmd, args)
		if err != nil {
			return err
		}

		// If a function name was provided, disassemble its code only
		funcName, _ := cmd.Flags().GetString("func")
		if funcName == "" {
			return dis.PrintProgram(p, os.Stdout)
		}
		_, index, ok := p.FunctionByName(funcName)
		if !ok {
			return fmt.Errorf("function %q not found", funcName)
		}
		instructions, err := dis.Disassemble(p, index)
		if err != nil {
			return err
		}
		dis.Print(instructions, os.Stdout)
		return nil
	},
}

func init() {
	disCmd.Flags().String("func", "", "Function to disassemble")
}
