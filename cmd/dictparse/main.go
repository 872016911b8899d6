package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"dictparser/internal/dump"
	"dictparser/internal/server"
	"dictparser/pkg/dictparser"
	"dictparser/pkg/valuetype"
)

// stdoutIsTerminal is replaced in tests.
var stdoutIsTerminal = func() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

func newRootCmd() *cobra.Command {
	var verbose bool

	rootCmd := &cobra.Command{
		Use:   "dictparse",
		Short: "dictparse - parse NeXT/OpenStep-style property dictionaries",
		Long: `dictparse reads dictionaries of the form {name:value;name(length):rawbytes;}
and prints, validates or serves their properties.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				slog.SetLogLoggerLevel(slog.LevelDebug)
			}
		},
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(newDumpCmd())
	rootCmd.AddCommand(newCheckCmd())
	rootCmd.AddCommand(newServeCmd())
	return rootCmd
}

func newDumpCmd() *cobra.Command {
	var (
		format       string
		raw          bool
		maxValueSize uint64
		hexLimit     int
	)

	cmd := &cobra.Command{
		Use:   "dump [file]",
		Short: "Print the properties of a dictionary",
		Long: `Print the properties of a dictionary read from file, or from stdin if file
is omitted or "-".

Binary values are shown as hex unless --raw is given. Raw binary output is
refused when stdout is a terminal.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := dump.ParseFormat(format)
			if err != nil {
				return err
			}

			in, name, err := openInput(cmd, args)
			if err != nil {
				return err
			}
			defer func() { _ = in.Close() }()

			props, err := dictparser.Parse(in, parserOptions(maxValueSize)...)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			slog.Debug("Parsed dictionary", "input", name, "properties", len(props))

			if raw && f == dump.FormatText && stdoutIsTerminal() && hasBinary(props) {
				return fmt.Errorf("refusing to write binary values to a terminal, redirect the output or drop --raw")
			}
			return dump.Write(cmd.OutOrStdout(), props, f, dump.Options{Raw: raw, HexLimit: hexLimit})
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", string(dump.FormatText), "Output format: text, json or html")
	cmd.Flags().BoolVar(&raw, "raw", false, "Write values unmodified (text format only)")
	cmd.Flags().Uint64Var(&maxValueSize, "max-value-size", 0, "Reject binary values declaring more bytes than this (0: no limit)")
	cmd.Flags().IntVar(&hexLimit, "hex-limit", dump.DefaultHexLimit, "Number of bytes of binary values to show as hex")
	return cmd
}

func newCheckCmd() *cobra.Command {
	var maxValueSize uint64

	cmd := &cobra.Command{
		Use:   "check [files...]",
		Short: "Validate dictionaries",
		Long: `Validate one or more dictionaries. Reads stdin if no file is given.

For every input one line is printed: either the number of properties or the
reason parsing failed together with the byte offset.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				args = []string{"-"}
			}

			failed := 0
			for _, arg := range args {
				if err := checkOne(cmd, arg, maxValueSize); err != nil {
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d inputs failed", failed, len(args))
			}
			return nil
		},
	}

	cmd.Flags().Uint64Var(&maxValueSize, "max-value-size", 0, "Reject binary values declaring more bytes than this (0: no limit)")
	return cmd
}

func checkOne(cmd *cobra.Command, arg string, maxValueSize uint64) error {
	out := cmd.OutOrStdout()

	in, name, err := openInput(cmd, []string{arg})
	if err != nil {
		fmt.Fprintf(out, "%s: %v\n", arg, err)
		return err
	}
	defer func() { _ = in.Close() }()

	p := dictparser.NewFromReader(in, parserOptions(maxValueSize)...)
	count := 0
	for _, err := range p.All() {
		if err != nil {
			var perr *dictparser.ParseError
			if errors.As(err, &perr) {
				fmt.Fprintf(out, "%s: %s (offset %d)\n", name, perr.Error(), perr.Offset)
			} else {
				fmt.Fprintf(out, "%s: %v\n", name, err)
			}
			return err
		}
		count++
	}
	fmt.Fprintf(out, "%s: ok (%d properties)\n", name, count)
	return nil
}

func newServeCmd() *cobra.Command {
	var opts server.Options
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the parser over HTTP and WebSocket",
		Long: `Start an HTTP server.

  POST /parse   parse the request body as one dictionary, answer with JSON
  GET  /ws      WebSocket, every message is parsed as one dictionary
  GET  /healthz liveness check`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return server.Run(addr, opts)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", fmt.Sprintf("Address to listen on (default: $DICTPARSE_ADDR or %s)", server.DefaultAddr))
	cmd.Flags().Int64Var(&opts.MaxBodySize, "max-body-size", server.DefaultMaxBodySize, "Maximum size of one dictionary in bytes")
	cmd.Flags().Uint64Var(&opts.MaxValueSize, "max-value-size", 0, "Reject binary values declaring more bytes than this (0: no limit)")
	return cmd
}

// openInput opens the file named by args[0], or stdin for no argument or "-".
func openInput(cmd *cobra.Command, args []string) (io.ReadCloser, string, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.NopCloser(cmd.InOrStdin()), "<stdin>", nil
	}
	f, err := os.Open(args[0])
	if err != nil {
		return nil, args[0], fmt.Errorf("failed to open input: %w", err)
	}
	return f, args[0], nil
}

func parserOptions(maxValueSize uint64) []dictparser.Option {
	if maxValueSize == 0 {
		return nil
	}
	return []dictparser.Option{dictparser.WithMaxValueSize(maxValueSize)}
}

func hasBinary(props []dictparser.Property) bool {
	for _, p := range props {
		if valuetype.IsBinary(p.Value) {
			return true
		}
	}
	return false
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
