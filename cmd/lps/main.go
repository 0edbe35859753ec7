package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:           "lps",
	Short:         "Compile, run and render LightPlayer pixel scripts",
	Version:       fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		processGlobalFlags()
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.lps.yaml)")
	flags.StringP("code", "c", "", "Code to compile")
	flags.Bool("stdin", false, "Read code from stdin")
	flags.BoolP("expr", "e", false, "Treat the input as a single expression")
	flags.Bool("strict", false, "Report unknown characters instead of ending the input")
	flags.Bool("no-optimize", false, "Disable the optimizer")
	flags.Bool("no-color", false, "Disable colored output")
	flags.String("log-level", "warn", "Log level (debug, info, warn, error)")

	for _, name := range []string{"code", "stdin", "expr", "strict", "no-optimize", "no-color", "log-level"} {
		viper.BindPFlag(name, flags.Lookup(name))
	}

	rootCmd.AddCommand(
		compileCmd,
		runCmd,
		benchCmd,
		disCmd,
		astCmd,
		checkCmd,
		renderCmd,
		previewCmd,
	)
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			fatal(err)
		}
		viper.AddConfigPath(home)
		viper.SetConfigName(".lps")
		viper.SetConfigType("yaml")
	}
	viper.SetEnvPrefix("lps")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			fatal(err)
		}
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fatal(err)
	}
}
