package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// DocOptions holds flags for the doc command.
type DocOptions struct {
	*RootOptions
	Project []string
}

// NewDocCommand creates the doc command.
func NewDocCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DocOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "doc <query>",
		Short: "Compile a query to a document-store filter",
		Long: `Compile an RQL query to a document-store filter, printed as relaxed
extended JSON.

Example:
  rql doc '(startswith(Name,"Wid"))' --project Name,Code`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDoc(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringSliceVarP(&opts.Project, "project", "p", nil, "fields to include in the projection")

	return cmd
}

func runDoc(opts *DocOptions, query string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{Format: opts.Config.Format, Writer: cmd.OutOrStdout()}

	b, _, err := opts.builder(opts.engine(), query)
	if err == nil && len(opts.Project) > 0 {
		err = b.Project(opts.Project...).Err()
	}
	if err != nil {
		_ = formatter.Failure(err)
		return err
	}

	filter, err := b.DocumentJSON()
	if err != nil {
		_ = formatter.Failure(err)
		return WrapExitError(ExitCommandError, "failed to compile document filter", err)
	}
	var projection string
	if proj := b.Projection(); proj != nil {
		out, err := bson.MarshalExtJSON(proj, false, false)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to render projection", err)
		}
		projection = string(out)
	}

	data := map[string]json.RawMessage{"filter": json.RawMessage(filter)}
	if projection != "" {
		data["projection"] = json.RawMessage(projection)
	}
	return formatter.Success(data, func(w io.Writer) error {
		fmt.Fprintln(w, filter)
		if projection != "" {
			fmt.Fprintln(w, projection)
		}
		return nil
	})
}
