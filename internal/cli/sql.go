package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// SQLResult is the JSON form of a compiled WHERE fragment.
type SQLResult struct {
	Dialect string        `json:"dialect"`
	Where   string        `json:"where"`
	Params  []interface{} `json:"params"`
}

// NewSQLCommand creates the sql command.
func NewSQLCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sql <query>",
		Short: "Compile a query to a SQL WHERE fragment",
		Long: `Compile an RQL query to a parameterised SQL WHERE fragment.

Example:
  rql sql '(in(Code,3,4,5))' --dialect postgres`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSQL(rootOpts, args[0], cmd)
		},
	}

	cmd.Flags().String("dialect", "sqlite", "SQL dialect (sqlite|postgres|mysql)")

	return cmd
}

func runSQL(opts *RootOptions, query string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{Format: opts.Config.Format, Writer: cmd.OutOrStdout()}

	b, _, err := opts.builder(opts.engine(), query)
	if err != nil {
		_ = formatter.Failure(err)
		return err
	}

	where, params, err := b.SQL(opts.Config.Dialect)
	if err != nil {
		_ = formatter.Failure(err)
		return WrapExitError(ExitCommandError, "failed to compile SQL", err)
	}

	result := SQLResult{Dialect: opts.Config.Dialect, Where: where, Params: params}
	return formatter.Success(result, func(w io.Writer) error {
		fmt.Fprintf(w, "WHERE %s\n", where)
		for i, p := range params {
			fmt.Fprintf(w, "  $%d = %v (%T)\n", i+1, p, p)
		}
		return nil
	})
}
