package cmd

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/cube2222/octorest/execution"
	"github.com/cube2222/octorest/graph"
	"github.com/cube2222/octorest/logs"
	"github.com/cube2222/octorest/optimizer"
	"github.com/cube2222/octorest/outputs/formats"
	"github.com/cube2222/octorest/physical"
)

var output string
var where []string
var limit int
var explain bool
var explainFormat string

var queryCmd = &cobra.Command{
	Use:   "query <database>.<table>",
	Short: "Read rows from a table.",
	Example: `octorest query gh.issues --where "owner = cube2222" --where "repo = octosql" --where "state in (open, closed)"
octorest query work.messages --where "channel = C0123" --where "ts >= 2024-01-01" --limit 20 -o json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) (outErr error) {
		ctx, queryID := logs.WithQueryID(cmd.Context())
		log := logs.FromContext(ctx)
		start := time.Now()

		databases, err := openDatabases(ctx)
		if err != nil {
			return err
		}
		impl, schema, err := getTable(ctx, databases, args[0])
		if err != nil {
			return err
		}
		constraints, err := ParsePredicates(schema, where)
		if err != nil {
			return errors.Wrap(err, "couldn't parse predicates")
		}

		plan, err := optimizer.Optimize(ctx, impl, schema, physical.NewTableHandle(args[0]), constraints, limit)
		if err != nil {
			return errors.Wrap(err, "couldn't plan query")
		}
		log.Info("planned query",
			slog.String("table", args[0]),
			slog.String("handle", plan.Handle.String()),
			slog.String("residual", plan.Residual.String()),
			slog.Int("iterations", plan.Iterations),
		)
		if explain {
			switch explainFormat {
			case "text":
				fmt.Fprintf(cmd.OutOrStdout(), "table:     %s\npushdown:  %s\nresidual:  %s\nlimit:     %d\n", plan.Handle.Table, plan.Handle.Pushdown, plan.Residual, plan.Handle.RowLimit())
			case "dot":
				g, err := graph.Show(plan.Describe())
				if err != nil {
					return errors.Wrap(err, "couldn't render plan")
				}
				fmt.Fprintln(cmd.OutOrStdout(), g.String())
			default:
				return errors.Errorf("unknown explain format %s, available formats: text, dot", explainFormat)
			}
			return nil
		}

		rs, err := plan.Materialize(ctx)
		if err != nil {
			return err
		}
		defer func() {
			if err := rs.Close(); err != nil && outErr == nil {
				outErr = errors.Wrap(err, "couldn't close record stream")
			}
		}()

		formatter, err := formats.New(output, cmd.OutOrStdout())
		if err != nil {
			return err
		}
		formatter.SetSchema(schema)

		rows := 0
		for {
			record, err := rs.Next(ctx)
			if err == execution.ErrEndOfStream {
				break
			} else if err != nil {
				log.Error("query failed", slog.Any("error", err))
				return errors.Wrapf(err, "query %s failed", queryID)
			}
			if err := formatter.Write(record.Values); err != nil {
				return errors.Wrap(err, "couldn't write record")
			}
			rows++
		}
		if err := formatter.Close(); err != nil {
			return errors.Wrap(err, "couldn't close output")
		}

		log.Info("query finished", slog.Int("rows", rows), slog.Duration("elapsed", time.Since(start)))
		return nil
	},
}

func init() {
	queryCmd.Flags().StringVarP(&output, "output", "o", "table", "Output format: table, json or csv.")
	queryCmd.Flags().StringArrayVarP(&where, "where", "w", nil, "Predicate on a column, like \"updated_at >= 2024-01-01\". May be repeated, all predicates have to hold.")
	queryCmd.Flags().IntVarP(&limit, "limit", "l", -1, "Maximum number of rows to return, -1 for no limit.")
	queryCmd.Flags().BoolVar(&explain, "explain", false, "Print the pushed down plan instead of running the query.")
	queryCmd.Flags().StringVar(&explainFormat, "explain-format", "text", "Format of the explained plan: text, or dot for graphviz.")
	rootCmd.AddCommand(queryCmd)
}
