package github

import (
	"context"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/valyala/fastjson"

	"github.com/cube2222/octorest/datasources/rest"
	"github.com/cube2222/octorest/octosql"
	"github.com/cube2222/octorest/physical"
)

const DefaultBaseURL = "https://api.github.com"

func Creator(ctx context.Context, cfg map[string]interface{}) (physical.Database, error) {
	restConfig, err := rest.ConfigFromMap(cfg, DefaultBaseURL)
	if err != nil {
		return nil, errors.Wrap(err, "couldn't read github config")
	}
	db, err := rest.NewDatabaseFromConfig(restConfig, Resources())
	if err != nil {
		return nil, errors.Wrap(err, "couldn't create github database")
	}
	return db, nil
}

// GitHub caps per_page at 100.
const maxPageSize = 100

var pagination = rest.PagePagination{
	PageParam:    "page",
	PerPageParam: "per_page",
}

var nullableString = octosql.TypeSum(octosql.String, octosql.Null)
var nullableTime = octosql.TypeSum(octosql.Time, octosql.Null)

func repositoryColumns() []rest.Column {
	return []rest.Column{
		{Name: "owner", Type: octosql.String, FromFilter: true},
		{Name: "repo", Type: octosql.String, FromFilter: true},
	}
}

func repositoryFilters() []rest.FilterBinding {
	return []rest.FilterBinding{
		{Column: "owner", Mode: physical.FilterModeEqual, PathSegment: "owner", Required: true},
		{Column: "repo", Mode: physical.FilterModeEqual, PathSegment: "repo", Required: true},
	}
}

func Resources() []*rest.Resource {
	return []*rest.Resource{
		{
			Name: "issues",
			Path: "/repos/{owner}/{repo}/issues",
			Columns: append(repositoryColumns(),
				rest.Column{Name: "number", Type: octosql.Int},
				rest.Column{Name: "title", Type: octosql.String},
				rest.Column{Name: "state", Type: octosql.String},
				rest.Column{Name: "author", Type: nullableString, Path: []string{"user", "login"}},
				rest.Column{Name: "labels", Type: octosql.ListOf(octosql.String), Parse: labelNames},
				rest.Column{Name: "comments", Type: octosql.Int},
				rest.Column{Name: "is_pull_request", Type: octosql.Boolean, Path: []string{"pull_request"}, Parse: isPresent},
				rest.Column{Name: "created_at", Type: octosql.Time},
				rest.Column{Name: "updated_at", Type: octosql.Time},
				rest.Column{Name: "closed_at", Type: nullableTime},
				rest.Column{Name: "url", Type: octosql.String, Path: []string{"html_url"}},
			),
			Filters: append(repositoryFilters(),
				rest.FilterBinding{Column: "state", Mode: physical.FilterModeEqual, Param: "state"},
				rest.FilterBinding{Column: "updated_at", Mode: physical.FilterModeGreaterThanOrEqual, Param: "since"},
			),
			// Without an explicit state only open issues are listed.
			StaticParams: map[string]string{"state": "all"},
			Pagination:   pagination,
			MaxPageSize:  maxPageSize,
		},
		{
			Name: "pulls",
			Path: "/repos/{owner}/{repo}/pulls",
			Columns: append(repositoryColumns(),
				rest.Column{Name: "number", Type: octosql.Int},
				rest.Column{Name: "title", Type: octosql.String},
				rest.Column{Name: "state", Type: octosql.String},
				rest.Column{Name: "author", Type: nullableString, Path: []string{"user", "login"}},
				rest.Column{Name: "draft", Type: octosql.Boolean},
				rest.Column{Name: "head", Type: octosql.String, Path: []string{"head", "ref"}},
				rest.Column{Name: "base", Type: octosql.String, Path: []string{"base", "ref"}},
				rest.Column{Name: "created_at", Type: octosql.Time},
				rest.Column{Name: "updated_at", Type: octosql.Time},
				rest.Column{Name: "merged_at", Type: nullableTime},
				rest.Column{Name: "url", Type: octosql.String, Path: []string{"html_url"}},
			),
			Filters: append(repositoryFilters(),
				rest.FilterBinding{Column: "state", Mode: physical.FilterModeEqual, Param: "state"},
			),
			StaticParams: map[string]string{"state": "all"},
			Pagination:   pagination,
			MaxPageSize:  maxPageSize,
		},
		{
			Name: "issue_comments",
			Path: "/repos/{owner}/{repo}/issues/comments",
			Columns: append(repositoryColumns(),
				rest.Column{Name: "id", Type: octosql.Int},
				rest.Column{Name: "issue_number", Type: octosql.Int, Path: []string{"issue_url"}, Parse: issueNumber},
				rest.Column{Name: "author", Type: nullableString, Path: []string{"user", "login"}},
				rest.Column{Name: "body", Type: octosql.String},
				rest.Column{Name: "created_at", Type: octosql.Time},
				rest.Column{Name: "updated_at", Type: octosql.Time},
			),
			Filters: append(repositoryFilters(),
				rest.FilterBinding{Column: "updated_at", Mode: physical.FilterModeGreaterThanOrEqual, Param: "since"},
			),
			Pagination:  pagination,
			MaxPageSize: maxPageSize,
		},
		{
			Name: "runs",
			Path: "/repos/{owner}/{repo}/actions/runs",
			Columns: append(repositoryColumns(),
				rest.Column{Name: "id", Type: octosql.Int},
				rest.Column{Name: "name", Type: octosql.String},
				rest.Column{Name: "run_number", Type: octosql.Int},
				rest.Column{Name: "event", Type: octosql.String},
				rest.Column{Name: "status", Type: octosql.String},
				rest.Column{Name: "conclusion", Type: nullableString},
				rest.Column{Name: "branch", Type: octosql.String, Path: []string{"head_branch"}},
				rest.Column{Name: "created_at", Type: octosql.Time},
				rest.Column{Name: "updated_at", Type: octosql.Time},
			),
			Filters: append(repositoryFilters(),
				rest.FilterBinding{Column: "status", Mode: physical.FilterModeEqual, Param: "status"},
			),
			Envelope: rest.Envelope{
				ItemsPath: []string{"workflow_runs"},
			},
			Pagination:  pagination,
			MaxPageSize: maxPageSize,
		},
	}
}

func labelNames(value *fastjson.Value) (octosql.Value, error) {
	if value == nil || value.Type() != fastjson.TypeArray {
		return octosql.NewList(nil), nil
	}
	labels, _ := value.Array()
	out := make([]octosql.Value, 0, len(labels))
	for _, label := range labels {
		if name := label.GetStringBytes("name"); name != nil {
			out = append(out, octosql.NewString(string(name)))
		}
	}
	return octosql.NewList(out), nil
}

// The issues endpoint lists pull requests too, they carry a pull_request object.
func isPresent(value *fastjson.Value) (octosql.Value, error) {
	return octosql.NewBoolean(value != nil && value.Type() != fastjson.TypeNull), nil
}

// Comments only link to their issue, like https://api.github.com/repos/x/y/issues/12.
func issueNumber(value *fastjson.Value) (octosql.Value, error) {
	if value == nil || value.Type() != fastjson.TypeString {
		return octosql.NewNull(), nil
	}
	issueURL := string(value.GetStringBytes())
	number, err := strconv.Atoi(issueURL[strings.LastIndex(issueURL, "/")+1:])
	if err != nil {
		return octosql.Value{}, errors.Wrapf(err, "invalid issue url %s", issueURL)
	}
	return octosql.NewInt(number), nil
}
