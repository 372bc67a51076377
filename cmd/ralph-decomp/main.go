package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/raymyers/ralph-decomp/pkg/config"
	"github.com/raymyers/ralph-decomp/pkg/decomp"
	"github.com/raymyers/ralph-decomp/pkg/irload"
	"github.com/spf13/cobra"
	"tlog.app/go/errors"
	"tlog.app/go/tlog"
)

var version = "0.1.0"

// ErrNotImplemented indicates a feature is not yet implemented
var ErrNotImplemented = errors.New("not yet implemented")

// ErrFunctionsFailed is returned when at least one function could not be
// decompiled. The others are still printed.
var ErrFunctionsFailed = errors.New("some functions failed")

// unimplementedFlags maps debug flags of stages this tool does not run to a
// description for the warning
var unimplementedFlags = map[string]string{
	"dcfg": "dump control flow graph",
	"dasm": "dump disassembly",
}

// checkDebugFlags returns ErrNotImplemented if any unimplemented debug flag
// is set
func checkDebugFlags(cmd *cobra.Command, w io.Writer) error {
	for name, desc := range unimplementedFlags {
		if set, _ := cmd.Flags().GetBool(name); set {
			fmt.Fprintf(w, "ralph-decomp: warning: -%s (%s) is not yet implemented\n", name, desc)
			return ErrNotImplemented
		}
	}
	return nil
}

func main() {
	os.Exit(run())
}

func run() int {
	rootCmd := newRootCmd(os.Stdout, os.Stderr)
	rootCmd.SetArgs(normalizeFlags(os.Args[1:]))
	if err := rootCmd.Execute(); err != nil {
		return 1
	}
	return 0
}

// debugFlagNames lists the flags that also accept the single-dash style
// (-dtypes)
var debugFlagNames = []string{"dtypes", "dforms", "dcfg", "dasm"}

// normalizeFlags converts single-dash debug flags like -dtypes to --dtypes
func normalizeFlags(args []string) []string {
	result := make([]string, len(args))
	for i, arg := range args {
		result[i] = arg
		for _, flagName := range debugFlagNames {
			if arg == "-"+flagName {
				result[i] = "--" + flagName
				break
			}
		}
	}
	return result
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	var configFile string

	rootCmd := &cobra.Command{
		Use:   "ralph-decomp [functions.yaml]",
		Short: "ralph-decomp types and renders structured decompiler IR",
		Long: `ralph-decomp reads function bodies that have already been
structured into IR trees, recovers the type of every register with a
forward type propagation pass, and prints each function as a nested-list
(defun ...) form.`,
		Version:       version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkDebugFlags(cmd, errOut); err != nil {
				return err
			}

			if len(args) == 0 {
				cmd.Help()
				return nil
			}

			cfg, err := loadConfig(cmd, configFile)
			if err != nil {
				fmt.Fprintf(errOut, "ralph-decomp: %v\n", err)
				return err
			}

			return doDecompile(args[0], cfg, out, errOut)
		},
	}
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)

	rootCmd.Flags().StringVarP(&configFile, "config", "c", "", "Config file (YAML); flags override its values")
	config.RegisterFlags(rootCmd.Flags())

	for name, desc := range unimplementedFlags {
		rootCmd.Flags().Bool(name, false, desc)
	}

	return rootCmd
}

// loadConfig reads the config file if one is given and applies the flags
// set on the command line on top of it
func loadConfig(cmd *cobra.Command, path string) (*config.Config, error) {
	cfg := config.Default()
	if path != "" {
		var err error
		cfg, err = config.LoadFile(path)
		if err != nil {
			return nil, err
		}
	}

	if err := cfg.ApplyFlags(cmd.Flags()); err != nil {
		return nil, errors.Wrap(err, "flags")
	}

	return cfg, nil
}

// newLogger returns a console logger writing to w, with the configured
// debug topics enabled
func newLogger(w io.Writer, cfg *config.Config) *tlog.Logger {
	l := tlog.New(tlog.NewConsoleWriter(w, tlog.LstdFlags))
	if cfg.Verbosity != "" {
		l.SetVerbosity(cfg.Verbosity)
	}
	return l
}

// doDecompile decompiles every selected function in filename and prints
// the results in file order
func doDecompile(filename string, cfg *config.Config, out, errOut io.Writer) error {
	ctx := tlog.ContextWithSpan(context.Background(), tlog.Span{Logger: newLogger(errOut, cfg)})

	fns, err := irload.LoadFile(filename)
	if err != nil {
		fmt.Fprintf(errOut, "ralph-decomp: %v\n", err)
		return err
	}

	d, err := decomp.Open(cfg)
	if err != nil {
		fmt.Fprintf(errOut, "ralph-decomp: %v\n", err)
		return err
	}

	outs, err := d.Run(ctx, fns)
	if err != nil {
		fmt.Fprintf(errOut, "ralph-decomp: %v\n", err)
		return err
	}

	failed := 0
	for _, o := range outs {
		if o.Err != nil {
			fmt.Fprintf(errOut, "ralph-decomp: %s: %v\n", o.Name, o.Err)
			failed++
			continue
		}
		fmt.Fprint(out, o.Text)
	}

	if failed != 0 {
		return ErrFunctionsFailed
	}

	return nil
}
