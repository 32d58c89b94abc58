package cmd

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/cube2222/octorest/octosql"
	"github.com/cube2222/octorest/outputs/formats"
	"github.com/cube2222/octorest/physical"
)

var DescribeSchema = physical.NewSchema([]physical.SchemaField{
	{Name: "name", Type: octosql.String},
	{Name: "type", Type: octosql.String},
	{Name: "filter", Type: octosql.TypeSum(octosql.String, octosql.Null)},
})

type capabilitiesProvider interface {
	Capabilities() physical.FilterCapabilities
}

var describeCmd = &cobra.Command{
	Use:   "describe <database>.<table>",
	Short: "Describe the columns of a table, and which of them can be filtered on remotely.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) (outErr error) {
		ctx := cmd.Context()
		databases, err := openDatabases(ctx)
		if err != nil {
			return err
		}
		impl, schema, err := getTable(ctx, databases, args[0])
		if err != nil {
			return err
		}
		var capabilities physical.FilterCapabilities
		if provider, ok := impl.(capabilitiesProvider); ok {
			capabilities = provider.Capabilities()
		}

		formatter, err := formats.New(output, cmd.OutOrStdout())
		if err != nil {
			return err
		}
		defer func() {
			if err := formatter.Close(); err != nil && outErr == nil {
				outErr = errors.Wrap(err, "couldn't close output")
			}
		}()
		formatter.SetSchema(DescribeSchema)

		for _, field := range schema.Fields {
			filter := octosql.NewNull()
			if mode := capabilities.Mode(field.Name); mode != physical.FilterModeUnsupported {
				filter = octosql.NewString(mode.String())
			}
			if err := formatter.Write([]octosql.Value{
				octosql.NewString(field.Name),
				octosql.NewString(field.Type.String()),
				filter,
			}); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	describeCmd.Flags().StringVarP(&output, "output", "o", "table", "Output format: table, json or csv.")
	rootCmd.AddCommand(describeCmd)
}
