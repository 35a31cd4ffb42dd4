// Package cli implements the rql command line tool.
package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/nlstn/go-rql"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigFile string
	ShapeFile  string

	// Config and Logger are populated before any subcommand runs.
	Config *Config
	Logger *slog.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the rql CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "rql",
		Short: "Parse and compile RQL filters",
		Long: `Parse RQL queries and compile them to SQL fragments, document filters
or in-memory matches.

A query is a parenthesised list of criteria in function-call style:

  rql sql '(in(Code,3,4,5),startswith(Name,"Wid"))' --dialect postgres`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(opts.ConfigFile, cmd.Flags())
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to load config", err)
			}
			if cmd.Flags().Changed("format") {
				cfg.Format = opts.Format
			}
			if !isValidFormat(cfg.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", cfg.Format, ValidFormats))
			}
			opts.Config = cfg

			logLevel := slog.LevelInfo
			if opts.Verbose {
				logLevel = slog.LevelDebug
			}
			opts.Logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: logLevel}))
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigFile, "config", "", "config file (default .rql.yaml in . or $HOME)")
	cmd.PersistentFlags().StringVarP(&opts.ShapeFile, "shape", "s", "", "YAML shape file describing the queried fields")

	cmd.AddCommand(NewParseCommand(opts))
	cmd.AddCommand(NewSQLCommand(opts))
	cmd.AddCommand(NewDocCommand(opts))
	cmd.AddCommand(NewEvalCommand(opts))
	cmd.AddCommand(NewQueryCommand(opts))

	return cmd
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// engine returns an engine logging through the command logger.
func (o *RootOptions) engine(extra ...rql.Option) *rql.Engine {
	opts := []rql.Option{rql.WithLogger(o.Logger), rql.WithMaxValues(o.Config.MaxValues)}
	return rql.New(append(opts, extra...)...)
}

// builder parses query against the configured shape, if any.
func (o *RootOptions) builder(e *rql.Engine, query string) (*rql.Builder, *ShapeFile, error) {
	path := o.ShapeFile
	if path == "" {
		path = o.Config.Shape
	}
	if path == "" {
		b := e.Create().FromRql(query)
		return b, nil, b.Err()
	}

	sf, s, err := LoadShape(path)
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "failed to load shape", err)
	}
	b := e.For(s).FromRql(query)
	return b, sf, b.Err()
}
