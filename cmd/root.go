package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/cube2222/octorest/config"
	"github.com/cube2222/octorest/datasources/github"
	"github.com/cube2222/octorest/datasources/slack"
	"github.com/cube2222/octorest/logs"
	"github.com/cube2222/octorest/physical"
)

var databaseCreators = map[string]func(ctx context.Context, cfg map[string]interface{}) (physical.Database, error){
	"github": github.Creator,
	"slack":  slack.Creator,
}

var configPath string
var logDir string
var debug bool

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "octorest",
	Short: "Query REST APIs as tables.",
	Example: `octorest tables
octorest describe gh.issues
octorest query gh.issues --where "owner = cube2222" --where "repo = octosql" --where "updated_at >= 2024-01-01T00:00:00Z" --limit 10`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := logs.InitializeFileLogger(logDir, debug); err != nil {
			return errors.Wrap(err, "couldn't initialize logger")
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logs.CloseLogger()
	},
}

func Execute(ctx context.Context) {
	cobra.CheckErr(rootCmd.ExecuteContext(ctx))
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultConfigPath, "Path to the configuration file.")
	rootCmd.PersistentFlags().StringVar(&logDir, "log-dir", config.OctorestHomeDir, "Directory to write logs.txt to.")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging.")
}

func openDatabases(ctx context.Context) (map[string]physical.Database, error) {
	cfg, err := config.Read(configPath)
	if err != nil {
		return nil, errors.Wrapf(err, "couldn't read config %s", filepath.Clean(configPath))
	}

	databases := make(map[string]physical.Database, len(cfg.Databases))
	for _, dbConfig := range cfg.Databases {
		creator, ok := databaseCreators[dbConfig.Type]
		if !ok {
			return nil, errors.Errorf("database %s has unknown type %s, available types: %s", dbConfig.Name, dbConfig.Type, strings.Join(databaseTypes(), ", "))
		}
		db, err := creator(ctx, dbConfig.Config)
		if err != nil {
			return nil, errors.Wrapf(err, "couldn't create database %s", dbConfig.Name)
		}
		databases[dbConfig.Name] = db
	}
	return databases, nil
}

func databaseTypes() []string {
	out := make([]string, 0, len(databaseCreators))
	for name := range databaseCreators {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// getTable resolves a database.table reference.
func getTable(ctx context.Context, databases map[string]physical.Database, ref string) (physical.DatasourceImplementation, physical.Schema, error) {
	dbName, tableName, ok := strings.Cut(ref, ".")
	if !ok || dbName == "" || tableName == "" {
		return nil, physical.Schema{}, errors.Errorf("table reference must be in database.table form, got %s", ref)
	}
	db, ok := databases[dbName]
	if !ok {
		return nil, physical.Schema{}, errors.Errorf("unknown database %s", dbName)
	}
	impl, schema, err := db.GetTable(ctx, tableName)
	if err != nil {
		return nil, physical.Schema{}, errors.Wrap(err, fmt.Sprintf("couldn't get table %s", ref))
	}
	return impl, schema, nil
}
