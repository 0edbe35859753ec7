package main

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/hashicorp/go-multierror"
	"github.com/hokaccha/go-prettyjson"
	"github.com/lightplayer/lps"
	"github.com/lightplayer/lps/errors"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

var red = color.New(color.FgRed).SprintFunc()

func fatal(msg interface{}) {
	var s string
	switch msg := msg.(type) {
	case string:
		s = msg
	case error:
		s = errorMessage(msg)
	default:
		s = fmt.Sprintf("%v", msg)
	}
	fmt.Fprintf(os.Stderr, "%s\n", red(strings.TrimRight(s, "\n")))
	os.Exit(1)
}

// errorMessage renders compile errors with their source snippet.
func errorMessage(err error) string {
	if merr, ok := err.(*multierror.Error); ok {
		return merr.Error()
	}
	var friendly lps.FriendlyError
	if stderrors.As(err, &friendly) {
		return errors.NewFormatter(!color.NoColor).Format(friendly.ToFormatted())
	}
	return err.Error()
}

func isTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func isTerminalIO() bool {
	return isTerminal(os.Stdin) && isTerminal(os.Stdout)
}

var outputFormatsCompletion = []string{"json", "text"}

func getOutputJSON(result any) ([]byte, error) {
	if viper.GetBool("no-color") || !isTerminal(os.Stdout) {
		return json.MarshalIndent(result, "", "  ")
	}
	return prettyjson.Marshal(result)
}

func printJSON(result any) error {
	data, err := getOutputJSON(result)
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

// Reads global flags from Viper and adjusts the environment accordingly.
func processGlobalFlags() {
	if viper.GetBool("no-color") {
		color.NoColor = true
	}
	level, err := zerolog.ParseLevel(viper.GetString("log-level"))
	if err != nil {
		level = zerolog.WarnLevel
	}
	log.Logger = zerolog.New(zerolog.ConsoleWriter{
		Out:     os.Stderr,
		NoColor: color.NoColor,
	}).Level(level).With().Timestamp().Logger()
}
