// Command h5trim copies a row window of every dataset in an HDF5 file
// into a new HDF5 file, preserving attributes, chunking, and compression.
//
// Usage:
//
//	h5trim input.h5 output.h5 --rows 100
//	h5trim input.h5 output.h5 --range 50,150
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/robert-malhotra/h5trim/trim"
)

type cliFlags struct {
	rows     int
	rowRange []int
	quiet    bool
}

func newRootCmd() *cobra.Command {
	flags := &cliFlags{}

	cmd := &cobra.Command{
		Use:   "h5trim <input> <output>",
		Short: "Copy a row window of every dataset in an HDF5 file into a new file",
		Long: `h5trim copies a contiguous row window of every dataset in an HDF5 file
into a new HDF5 file. Groups, attributes, chunk shapes, and compression
filters are preserved; only the first axis of each dataset is cut down.

Exactly one of --rows or --range must be given. The output file is
replaced atomically: a failed run leaves any existing output untouched.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := windowFromFlags(cmd, flags)
			if err != nil {
				return err
			}

			var opts []trim.Option
			if !flags.quiet {
				logger, err := newLogger()
				if err != nil {
					return err
				}
				defer logger.Sync()
				opts = append(opts, trim.WithLogger(logger))
			}

			return trim.Trim(args[0], args[1], w, opts...)
		},
	}

	cmd.Flags().IntVarP(&flags.rows, "rows", "r", 0, "keep the first N rows of every dataset")
	cmd.Flags().IntSliceVarP(&flags.rowRange, "range", "R", nil, "keep rows [START,END), given as START,END")
	cmd.Flags().BoolVarP(&flags.quiet, "quiet", "q", false, "suppress progress output")
	cmd.MarkFlagsMutuallyExclusive("rows", "range")

	return cmd
}

// windowFromFlags validates the row selection before any output is touched.
func windowFromFlags(cmd *cobra.Command, flags *cliFlags) (trim.Window, error) {
	rowsSet := cmd.Flags().Changed("rows")
	rangeSet := cmd.Flags().Changed("range")

	switch {
	case rowsSet && rangeSet:
		return trim.Window{}, fmt.Errorf("%w: --rows and --range are mutually exclusive", trim.ErrInvalidArgument)
	case rowsSet:
		return trim.FirstN(flags.rows)
	case rangeSet:
		if len(flags.rowRange) != 2 {
			return trim.Window{}, fmt.Errorf("%w: --range takes two values as START,END", trim.ErrInvalidArgument)
		}
		return trim.Range(flags.rowRange[0], flags.rowRange[1])
	default:
		return trim.Window{}, fmt.Errorf("%w: one of --rows or --range is required", trim.ErrInvalidArgument)
	}
}

func newLogger() (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"}
	cfg.DisableCaller = true
	cfg.DisableStacktrace = true
	return cfg.Build()
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "h5trim: %v\n", err)
		os.Exit(1)
	}
}
