package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/hashicorp/go-multierror"
	"github.com/lightplayer/lps"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check <file>...",
	Short: "Type check scripts without running them",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		quiet, _ := cmd.Flags().GetBool("quiet")
		ok := color.New(color.FgGreen).SprintFunc()
		if err := checkFiles(context.Background(), args, func(path string) {
			if !quiet {
				fmt.Printf("%s %s\n", ok("ok"), path)
			}
		}); err != nil {
			return err
		}
		return nil
	},
}

// checkFiles compiles every file and collects all failures. onSuccess is
// called for each file that compiles.
func checkFiles(ctx context.Context, paths []string, onSuccess func(string)) error {
	var result *multierror.Error
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			result = multierror.Append(result, err)
			continue
		}
		if _, err := lps.Compile(ctx, string(data), getLPSOptions(path)...); err != nil {
			result = multierror.Append(result, err)
			continue
		}
		onSuccess(path)
	}
	if result == nil {
		return nil
	}
	result.ErrorFormat = formatErrors
	return result
}

func formatErrors(errs []error) string {
	parts := make([]string, len(errs))
	for i, err := range errs {
		parts[i] = strings.TrimRight(errorMessage(err), "\n")
	}
	summary := fmt.Sprintf("%d file(s) failed", len(errs))
	return strings.Join(append(parts, summary), "\n\n")
}

func init() {
	checkCmd.Flags().BoolP("quiet", "q", false, "Only report failures")
}
