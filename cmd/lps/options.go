package main

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/lightplayer/lps"
	"github.com/lightplayer/lps/bytecode"
	"github.com/lightplayer/lps/optimize"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func getLPSOptions(filename string) []lps.Option {
	opts := []lps.Option{lps.WithLogger(log.Logger)}
	if filename != "" {
		opts = append(opts, lps.WithFilename(filename))
	}
	if viper.GetBool("expr") {
		opts = append(opts, lps.WithExpressionMode())
	}
	if viper.GetBool("strict") {
		opts = append(opts, lps.WithStrictLexing())
	}
	if viper.GetBool("no-optimize") {
		opts = append(opts, lps.WithOptimize(optimize.None()))
	}
	return opts
}

func flagSet(cmd *cobra.Command, name string) bool {
	f := cmd.Flags().Lookup(name)
	return f != nil && f.Changed
}

// getSource determines the code to compile. There are three possibilities:
//  1. --code <code>
//  2. --stdin (read code from stdin)
//  3. path as args[0]
//
// The returned filename is empty unless the code came from a file.
func getSource(cmd *cobra.Command, args []string) (string, string, error) {
	codeFlagSet := flagSet(cmd, "code")
	stdinFlagSet := flagSet(cmd, "stdin")
	pathSupplied := len(args) > 0
	if pathSupplied && (codeFlagSet || stdinFlagSet) {
		return "", "", errors.New("multiple input sources specified")
	} else if codeFlagSet && stdinFlagSet {
		return "", "", errors.New("multiple input sources specified")
	}
	if stdinFlagSet {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", "", err
		}
		return string(data), "", nil
	} else if pathSupplied {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", "", err
		}
		return string(data), args[0], nil
	}
	code := viper.GetString("code")
	if code == "" {
		return "", "", errors.New("no input: pass a file, --code or --stdin")
	}
	return code, "", nil
}

// isProgramFile reports whether path holds a compiled program.
func isProgramFile(path string) bool {
	switch filepath.Ext(path) {
	case bytecode.ExtCBOR, bytecode.ExtJSON:
		return true
	}
	return false
}

// getProgram compiles the input, or loads it when args[0] is a compiled
// program file.
func getProgram(cmd *cobra.Command, args []string) (*bytecode.Program, error) {
	if len(args) > 0 && isProgramFile(args[0]) {
		p, err := bytecode.ReadFile(args[0])
		if err != nil {
			return nil, err
		}
		log.Debug().Str("file", args[0]).Stringer("id", p.ID).Msg("loaded program")
		return p, nil
	}
	source, filename, err := getSource(cmd, args)
	if err != nil {
		return nil, err
	}
	return lps.Compile(context.Background(), source, getLPSOptions(filename)...)
}
