package rest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fastjson"

	"github.com/cube2222/octorest/octosql"
)

func TestDecodeValue(t *testing.T) {
	item := fastjson.MustParse(`{
		"number": 12,
		"score": 1.5,
		"locked": false,
		"title": "hello",
		"updated_at": "2024-01-02T04:04:05+01:00",
		"labels": ["bug", "ui"],
		"nothing": null
	}`)

	tests := []struct {
		name  string
		t     octosql.Type
		field string
		want  octosql.Value
	}{
		{name: "int", t: octosql.Int, field: "number", want: octosql.NewInt(12)},
		{name: "float", t: octosql.Float, field: "score", want: octosql.NewFloat(1.5)},
		{name: "boolean", t: octosql.Boolean, field: "locked", want: octosql.NewBoolean(false)},
		{name: "string", t: octosql.String, field: "title", want: octosql.NewString("hello")},
		{name: "time", t: octosql.Time, field: "updated_at", want: octosql.NewTime(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC))},
		{name: "list", t: octosql.ListOf(octosql.String), field: "labels", want: octosql.NewList([]octosql.Value{octosql.NewString("bug"), octosql.NewString("ui")})},
		{name: "null", t: octosql.String, field: "nothing", want: octosql.NewNull()},
		{name: "missing", t: octosql.String, field: "missing", want: octosql.NewNull()},
		{name: "wrong type", t: octosql.Int, field: "title", want: octosql.NewNull()},
		{name: "nullable", t: octosql.TypeSum(octosql.Int, octosql.Null), field: "number", want: octosql.NewInt(12)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DecodeValue(tt.t, item.Get(tt.field)))
		})
	}
}

func TestParseEpoch(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Time
		wantErr bool
	}{
		{in: "1704164645.000100", want: time.Date(2024, 1, 2, 3, 4, 5, 100000, time.UTC)},
		{in: "1704164645", want: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)},
		{in: "1704164645.5", want: time.Date(2024, 1, 2, 3, 4, 5, 500000000, time.UTC)},
		{in: "-1.5", want: time.Unix(-2, 500000000)},
		{in: "-0.25", want: time.Unix(0, -250000000)},
		{in: "abc", wantErr: true},
		{in: "", wantErr: true},
		{in: "--1", wantErr: true},
		{in: "+1", wantErr: true},
		{in: "1.-5", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseEpoch(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s", got)
		})
	}
}

func TestEpochRoundTrip(t *testing.T) {
	for _, in := range []time.Time{
		time.Date(2024, 1, 2, 3, 4, 5, 123456000, time.UTC),
		time.Unix(0, -500000000),
		time.Unix(-2, 500000000),
	} {
		formatted, err := FormatEpochTimestamp(octosql.NewTime(in))
		require.NoError(t, err)
		parsed, err := ParseEpoch(formatted)
		require.NoError(t, err)
		assert.True(t, in.Equal(parsed), "%s formatted as %s parsed as %s", in, formatted, parsed)
	}
}
