package cmd

import (
	"sort"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/cube2222/octorest/octosql"
	"github.com/cube2222/octorest/outputs/formats"
	"github.com/cube2222/octorest/physical"
)

var TablesSchema = physical.NewSchema([]physical.SchemaField{
	{Name: "database", Type: octosql.String},
	{Name: "table", Type: octosql.String},
})

var tablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "List the tables of all configured databases.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) (outErr error) {
		ctx := cmd.Context()
		databases, err := openDatabases(ctx)
		if err != nil {
			return err
		}

		names := make([]string, 0, len(databases))
		for name := range databases {
			names = append(names, name)
		}
		sort.Strings(names)

		formatter, err := formats.New(output, cmd.OutOrStdout())
		if err != nil {
			return err
		}
		defer func() {
			if err := formatter.Close(); err != nil && outErr == nil {
				outErr = errors.Wrap(err, "couldn't close output")
			}
		}()
		formatter.SetSchema(TablesSchema)

		for _, name := range names {
			tables, err := databases[name].ListTables(ctx)
			if err != nil {
				return errors.Wrapf(err, "couldn't list tables of %s", name)
			}
			for _, table := range tables {
				if err := formatter.Write([]octosql.Value{octosql.NewString(name), octosql.NewString(table)}); err != nil {
					return err
				}
			}
		}
		return nil
	},
}

func init() {
	tablesCmd.Flags().StringVarP(&output, "output", "o", "table", "Output format: table, json or csv.")
	rootCmd.AddCommand(tablesCmd)
}
