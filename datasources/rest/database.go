package rest

import (
	"context"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/cube2222/octorest/physical"
)

// Database exposes a static catalog of resources of a single remote API.
type Database struct {
	client    *Client
	pageSize  int
	resources map[string]*Resource
}

func NewDatabase(client *Client, pageSize int, resources []*Resource) *Database {
	db := &Database{
		client:    client,
		pageSize:  pageSize,
		resources: make(map[string]*Resource, len(resources)),
	}
	for _, resource := range resources {
		db.resources[resource.Name] = resource
	}
	return db
}

// NewDatabaseFromConfig creates the client and database in one go, exposing only the configured tables.
func NewDatabaseFromConfig(cfg *Config, resources []*Resource) (*Database, error) {
	resources, err := selectResources(resources, cfg.Tables)
	if err != nil {
		return nil, err
	}
	client, err := NewClient(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "couldn't create client")
	}
	return NewDatabase(client, cfg.PageSize, resources), nil
}

func selectResources(resources []*Resource, tables []string) ([]*Resource, error) {
	if len(tables) == 0 {
		return resources, nil
	}
	byName := make(map[string]*Resource, len(resources))
	names := make([]string, len(resources))
	for i, resource := range resources {
		byName[resource.Name] = resource
		names[i] = resource.Name
	}
	sort.Strings(names)

	out := make([]*Resource, 0, len(tables))
	for _, table := range tables {
		resource, ok := byName[table]
		if !ok {
			return nil, errors.Wrapf(physical.ErrTableNotFound, "%s, available tables: %s", table, strings.Join(names, ", "))
		}
		out = append(out, resource)
	}
	return out, nil
}

func (db *Database) ListTables(ctx context.Context) ([]string, error) {
	out := make([]string, 0, len(db.resources))
	for name := range db.resources {
		out = append(out, name)
	}
	sort.Strings(out)
	return out, nil
}

func (db *Database) GetTable(ctx context.Context, name string) (physical.DatasourceImplementation, physical.Schema, error) {
	resource, ok := db.resources[name]
	if !ok {
		return nil, physical.Schema{}, errors.Wrapf(physical.ErrTableNotFound, "%s", name)
	}
	table := NewTable(db.client, resource, db.pageSize)
	return table, table.Schema(), nil
}
