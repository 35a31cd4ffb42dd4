package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/nlstn/go-rql"
)

// PredicateView is the JSON form of a lowered predicate.
type PredicateView struct {
	Field    string      `json:"field"`
	Operator string      `json:"operator"`
	Kind     string      `json:"kind"`
	Values   interface{} `json:"values"`
}

// NewParseCommand creates the parse command.
func NewParseCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "parse <query>",
		Short: "Parse a query and print its predicates",
		Long: `Parse an RQL query and print the flat list of typed predicates it
lowers to. With --shape, field names and literals are checked against the
shape; otherwise literal kinds are inferred.

Example:
  rql parse '(and(gte(Age,18),lte(Age,65)))'`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(rootOpts, args[0], cmd)
		},
	}
}

func runParse(opts *RootOptions, query string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{Format: opts.Config.Format, Writer: cmd.OutOrStdout()}

	b, _, err := opts.builder(opts.engine(), query)
	if err != nil {
		_ = formatter.Failure(err)
		return err
	}

	preds := b.Predicates()
	views := make([]PredicateView, len(preds))
	for i, p := range preds {
		views[i] = PredicateView{
			Field:    p.Target.Name,
			Operator: p.Operator.String(),
			Kind:     p.Target.Kind.String(),
			Values:   p.Values,
		}
	}

	return formatter.Success(views, func(w io.Writer) error {
		return printPredicates(w, preds)
	})
}

func printPredicates(w io.Writer, preds []rql.Predicate) error {
	if len(preds) == 0 {
		_, err := fmt.Fprintln(w, "(match all)")
		return err
	}
	for _, p := range preds {
		if _, err := fmt.Fprintf(w, "%s\t%s\n", p, p.Target.Kind); err != nil {
			return err
		}
	}
	return nil
}
