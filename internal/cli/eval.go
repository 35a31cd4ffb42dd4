package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/nlstn/go-rql"
)

// EvalOptions holds flags for the eval command.
type EvalOptions struct {
	*RootOptions
	Input   string
	Project []string
}

// EvalResult is the JSON form of an eval run.
type EvalResult struct {
	Total   int                      `json:"total"`
	Matched int                      `json:"matched"`
	Records []map[string]interface{} `json:"records"`
}

// NewEvalCommand creates the eval command.
func NewEvalCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EvalOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "eval <query>",
		Short: "Filter JSON records in memory",
		Long: `Filter a JSON array of objects in memory and print the matching records.
Records are read from --input, or from stdin when --input is "-" or empty.

Example:
  rql eval '(gt(Price,10))' --input products.json --shape product.yaml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEval(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Input, "input", "i", "", "JSON file holding an array of records")
	cmd.Flags().StringSliceVarP(&opts.Project, "project", "p", nil, "fields to keep in the output")

	return cmd
}

func runEval(opts *EvalOptions, query string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{Format: opts.Config.Format, Writer: cmd.OutOrStdout()}

	b, _, err := opts.builder(opts.engine(), query)
	if err == nil && len(opts.Project) > 0 {
		err = b.Project(opts.Project...).Err()
	}
	if err != nil {
		_ = formatter.Failure(err)
		return err
	}

	records, err := readRecords(opts.Input, cmd.InOrStdin())
	if err != nil {
		_ = formatter.Failure(err)
		return WrapExitError(ExitCommandError, "failed to read records", err)
	}
	opts.Logger.Debug("records loaded", "count", len(records))

	matched, err := rql.Filter(b, records)
	if err != nil {
		_ = formatter.Failure(err)
		return WrapExitError(ExitCommandError, "failed to compile filter", err)
	}
	matched = project(matched, b.ProjectedFields())

	result := EvalResult{Total: len(records), Matched: len(matched), Records: matched}
	return formatter.Success(result, func(w io.Writer) error {
		return writeJSONLines(w, matched)
	})
}

func readRecords(path string, stdin io.Reader) ([]map[string]interface{}, error) {
	var data []byte
	var err error
	if path == "" || path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = afero.ReadFile(AppFs, path)
	}
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var records []map[string]interface{}
	if err := dec.Decode(&records); err != nil {
		return nil, fmt.Errorf("records must be a JSON array of objects: %w", err)
	}
	return records, nil
}

func project(records []map[string]interface{}, fields []string) []map[string]interface{} {
	if len(fields) == 0 {
		return records
	}
	out := make([]map[string]interface{}, len(records))
	for i, r := range records {
		kept := make(map[string]interface{}, len(fields))
		for _, f := range fields {
			if v, ok := r[f]; ok {
				kept[f] = v
			}
		}
		out[i] = kept
	}
	return out
}

func writeJSONLines(w io.Writer, records []map[string]interface{}) error {
	enc := json.NewEncoder(w)
	for _, r := range records {
		if err := enc.Encode(r); err != nil {
			return err
		}
	}
	return nil
}
