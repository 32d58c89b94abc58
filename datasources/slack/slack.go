package slack

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/valyala/fastjson"

	"github.com/cube2222/octorest/datasources/rest"
	"github.com/cube2222/octorest/execution"
	"github.com/cube2222/octorest/octosql"
	"github.com/cube2222/octorest/physical"
)

const DefaultBaseURL = "https://slack.com/api"

func Creator(ctx context.Context, cfg map[string]interface{}) (physical.Database, error) {
	restConfig, err := rest.ConfigFromMap(cfg, DefaultBaseURL)
	if err != nil {
		return nil, errors.Wrap(err, "couldn't read slack config")
	}
	db, err := rest.NewDatabaseFromConfig(restConfig, Resources())
	if err != nil {
		return nil, errors.Wrap(err, "couldn't create slack database")
	}
	return db, nil
}

// Slack rejects limits of 1000 and above on its list endpoints.
const maxPageSize = 999

var pagination = rest.CursorPagination{
	CursorParam: "cursor",
	LimitParam:  "limit",
}

func envelope(items string) rest.Envelope {
	return rest.Envelope{
		OkPath:     []string{"ok"},
		ErrorPath:  []string{"error"},
		ItemsPath:  []string{items},
		CursorPath: []string{"response_metadata", "next_cursor"},
	}
}

var nullableString = octosql.TypeSum(octosql.String, octosql.Null)

// Message timestamps double as message ids. They're exposed as times, and sent back in Slack's epoch form.
var nullableTime = octosql.TypeSum(octosql.Time, octosql.Null)

func Resources() []*rest.Resource {
	return []*rest.Resource{
		{
			Name: "channels",
			Path: "/conversations.list",
			Columns: []rest.Column{
				{Name: "id", Type: octosql.String},
				{Name: "name", Type: octosql.String},
				{Name: "is_private", Type: octosql.Boolean},
				{Name: "is_archived", Type: octosql.Boolean},
				{Name: "created", Type: octosql.Time, Parse: parseUnixSeconds},
				{Name: "topic", Type: nullableString, Path: []string{"topic", "value"}},
				{Name: "purpose", Type: nullableString, Path: []string{"purpose", "value"}},
				{Name: "num_members", Type: octosql.Int},
			},
			StaticParams: map[string]string{"types": "public_channel,private_channel"},
			Envelope:     envelope("channels"),
			Pagination:   pagination,
			MaxPageSize:  maxPageSize,
		},
		{
			Name: "users",
			Path: "/users.list",
			Columns: []rest.Column{
				{Name: "id", Type: octosql.String},
				{Name: "name", Type: octosql.String},
				{Name: "real_name", Type: nullableString},
				{Name: "email", Type: nullableString, Path: []string{"profile", "email"}},
				{Name: "tz", Type: nullableString},
				{Name: "is_bot", Type: octosql.Boolean},
				{Name: "deleted", Type: octosql.Boolean},
			},
			Envelope:    envelope("members"),
			Pagination:  pagination,
			MaxPageSize: maxPageSize,
		},
		{
			Name: "messages",
			Path: "/conversations.history",
			Columns: []rest.Column{
				{Name: "channel", Type: octosql.String, FromFilter: true},
				{Name: "ts", Type: octosql.Time, Parse: rest.ParseEpochTimestamp},
				{Name: "user", Type: nullableString},
				{Name: "text", Type: octosql.String},
				{Name: "thread_ts", Type: nullableTime, Parse: rest.ParseEpochTimestamp},
				{Name: "reply_count", Type: octosql.TypeSum(octosql.Int, octosql.Null)},
				{Name: "subtype", Type: nullableString},
			},
			Filters: []rest.FilterBinding{
				{Column: "channel", Mode: physical.FilterModeEqual, Param: "channel", Required: true},
				{Column: "ts", Mode: physical.FilterModeGreaterThanOrEqual, Param: "oldest", Format: rest.FormatEpochTimestamp},
			},
			// oldest is exclusive otherwise.
			StaticParams: map[string]string{"inclusive": "true"},
			Envelope:     envelope("messages"),
			Pagination:   pagination,
			MaxPageSize:  maxPageSize,
		},
		{
			Name: "replies",
			Path: "/conversations.replies",
			Columns: []rest.Column{
				{Name: "channel", Type: octosql.String, FromFilter: true},
				{Name: "thread_ts", Type: octosql.Time, FromFilter: true},
				{Name: "ts", Type: octosql.Time, Parse: rest.ParseEpochTimestamp},
				{Name: "user", Type: nullableString},
				{Name: "text", Type: octosql.String},
				{Name: "reaction", Type: nullableString},
				{Name: "reaction_count", Type: octosql.TypeSum(octosql.Int, octosql.Null)},
			},
			Filters: []rest.FilterBinding{
				{Column: "channel", Mode: physical.FilterModeEqual, Param: "channel", Required: true},
				{Column: "thread_ts", Mode: physical.FilterModeEqual, Param: "ts", Required: true, Format: rest.FormatEpochTimestamp},
			},
			Envelope:    envelope("messages"),
			Pagination:  pagination,
			MaxPageSize: maxPageSize,
			Decode:      decodeReactions,
		},
	}
}

// decodeReactions returns a row per reaction on the message, or a single row with no reaction if there are none.
func decodeReactions(resource *rest.Resource, item *fastjson.Value, bound map[string]octosql.Value) ([]execution.Record, error) {
	record, err := resource.DecodeRecord(item, bound)
	if err != nil {
		return nil, err
	}
	reactions := item.GetArray("reactions")
	if len(reactions) == 0 {
		return []execution.Record{record}, nil
	}

	reactionIndex := resource.Schema().FieldIndex("reaction")
	countIndex := resource.Schema().FieldIndex("reaction_count")
	out := make([]execution.Record, len(reactions))
	for i, reaction := range reactions {
		values := make([]octosql.Value, len(record.Values))
		copy(values, record.Values)
		values[reactionIndex] = rest.DecodeValue(octosql.String, reaction.Get("name"))
		values[countIndex] = rest.DecodeValue(octosql.Int, reaction.Get("count"))
		out[i] = execution.NewRecord(values)
	}
	return out, nil
}

func parseUnixSeconds(value *fastjson.Value) (octosql.Value, error) {
	if value == nil || value.Type() == fastjson.TypeNull {
		return octosql.NewNull(), nil
	}
	seconds, err := value.Int64()
	if err != nil {
		return octosql.Value{}, errors.Wrap(err, "invalid unix timestamp")
	}
	return octosql.NewTime(time.Unix(seconds, 0).UTC()), nil
}
