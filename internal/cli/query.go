package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/nlstn/go-rql"
)

// QueryOptions holds flags for the query command.
type QueryOptions struct {
	*RootOptions
	Project []string
	Limit   int
}

// QueryResult is the JSON form of a query run.
type QueryResult struct {
	Table   string                   `json:"table"`
	Rows    int                      `json:"rows"`
	Records []map[string]interface{} `json:"records"`
}

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "query <query>",
		Short: "Run a query against a database table",
		Long: `Run an RQL query against a database table through gorm and print the
matching rows.

Example:
  rql query '(in(code,3,4))' --driver sqlite --dsn shop.db --table products
  rql query '(eq(Active,true))' --driver postgres --dsn "$DATABASE_URL" --shape product.yaml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(opts, args[0], cmd)
		},
	}

	cmd.Flags().String("driver", "sqlite", "database driver (sqlite|postgres|mysql)")
	cmd.Flags().String("dsn", "", "data source name")
	cmd.Flags().String("table", "", "table to query (default: the shape file's table)")
	cmd.Flags().StringSliceVarP(&opts.Project, "project", "p", nil, "columns to select")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "maximum number of rows (0 for no limit)")

	return cmd
}

// openDialector returns the gorm dialector for driver.
func openDialector(driver, dsn string) (gorm.Dialector, error) {
	switch strings.ToLower(driver) {
	case "sqlite", "sqlite3":
		return sqlite.Open(dsn), nil
	case "postgres", "postgresql":
		return postgres.Open(dsn), nil
	case "mysql", "mariadb":
		return mysql.Open(dsn), nil
	}
	return nil, fmt.Errorf("unsupported driver %q", driver)
}

func runQuery(opts *QueryOptions, query string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{Format: opts.Config.Format, Writer: cmd.OutOrStdout()}
	cfg := opts.Config

	engine := opts.engine(rql.WithDBTracing())
	b, sf, err := opts.builder(engine, query)
	if err == nil && len(opts.Project) > 0 {
		err = b.Project(opts.Project...).Err()
	}
	if err != nil {
		_ = formatter.Failure(err)
		return err
	}

	table := cfg.Table
	if table == "" && sf != nil {
		table = sf.Table
	}
	if table == "" {
		return NewExitError(ExitCommandError, "no table given: use --table or a shape file with a table")
	}
	if cfg.DSN == "" {
		return NewExitError(ExitCommandError, "no data source given: use --dsn or RQL_DSN")
	}

	dialector, err := openDialector(cfg.Driver, cfg.DSN)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	db, err := gorm.Open(dialector, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	if err := engine.InstrumentDB(db); err != nil {
		return WrapExitError(ExitCommandError, "failed to instrument database", err)
	}

	start := time.Now()
	tx := rql.Apply(db.WithContext(cmd.Context()).Table(table), b.WithContext(cmd.Context()))
	if opts.Limit > 0 {
		tx = tx.Limit(opts.Limit)
	}
	rows := []map[string]interface{}{}
	if err := tx.Find(&rows).Error; err != nil {
		_ = formatter.Failure(err)
		if rql.IsInputError(err) {
			return err
		}
		return WrapExitError(ExitCommandError, "query failed", err)
	}
	opts.Logger.Debug("query executed", "table", table, "driver", cfg.Driver, "rows", len(rows), "duration", time.Since(start))

	result := QueryResult{Table: table, Rows: len(rows), Records: rows}
	return formatter.Success(result, func(w io.Writer) error {
		return writeJSONLines(w, rows)
	})
}
