package rest

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fastjson"

	"github.com/cube2222/octorest/execution"
)

var slackLikeEnvelope = Envelope{
	OkPath:     []string{"ok"},
	ErrorPath:  []string{"error"},
	ItemsPath:  []string{"messages"},
	CursorPath: []string{"response_metadata", "next_cursor"},
}

func TestEnvelope_Decode(t *testing.T) {
	tests := []struct {
		name       string
		envelope   Envelope
		body       string
		wantItems  int
		wantCursor string
		wantErr    error
	}{
		{
			name:       "ok with cursor",
			envelope:   slackLikeEnvelope,
			body:       `{"ok": true, "messages": [{"ts": "1"}, {"ts": "2"}], "response_metadata": {"next_cursor": "abc"}}`,
			wantItems:  2,
			wantCursor: "abc",
		},
		{
			name:      "ok without cursor",
			envelope:  slackLikeEnvelope,
			body:      `{"ok": true, "messages": [{"ts": "1"}]}`,
			wantItems: 1,
		},
		{
			name:      "missing items",
			envelope:  slackLikeEnvelope,
			body:      `{"ok": true}`,
			wantItems: 0,
		},
		{
			name:     "not ok",
			envelope: slackLikeEnvelope,
			body:     `{"ok": false, "error": "channel_not_found"}`,
			wantErr:  ErrRemoteApplication,
		},
		{
			name:     "no ok flag",
			envelope: slackLikeEnvelope,
			body:     `{"messages": []}`,
			wantErr:  execution.ErrContractViolation,
		},
		{
			name:     "empty body",
			envelope: slackLikeEnvelope,
			body:     ``,
			wantErr:  execution.ErrContractViolation,
		},
		{
			name:      "bare array",
			envelope:  Envelope{},
			body:      `[{"id": 1}, {"id": 2}, {"id": 3}]`,
			wantItems: 3,
		},
		{
			name:     "bare object instead of array",
			envelope: Envelope{},
			body:     `{"message": "Moved Permanently"}`,
			wantErr:  execution.ErrContractViolation,
		},
		{
			name:     "items not an array",
			envelope: slackLikeEnvelope,
			body:     `{"ok": true, "messages": "nope"}`,
			wantErr:  execution.ErrContractViolation,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := tt.envelope.Decode("messages", 200, []byte(tt.body))
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.Equal(t, tt.wantErr, errors.Cause(err))
				return
			}
			require.NoError(t, err)
			assert.Len(t, page.Items, tt.wantItems)
			assert.Equal(t, tt.wantCursor, page.Cursor)
		})
	}
}

func TestEnvelope_DecodeRemoteError(t *testing.T) {
	_, err := slackLikeEnvelope.Decode("messages", 200, []byte(`{"ok": false, "error": "not_authed"}`))
	require.Error(t, err)

	var remoteErr *RemoteError
	require.True(t, errors.As(err, &remoteErr))
	assert.Equal(t, "not_authed", remoteErr.Code)
	assert.Equal(t, "messages", remoteErr.Resource)
	assert.Contains(t, err.Error(), "not_authed")
}

func TestPagePagination(t *testing.T) {
	p := PagePagination{PageParam: "page", PerPageParam: "per_page"}

	params := make(map[string][]string)
	require.NoError(t, p.Params(params, "", 30))
	assert.Equal(t, []string{"1"}, params["page"])
	assert.Equal(t, []string{"30"}, params["per_page"])

	require.NoError(t, p.Params(params, "3", 30))
	assert.Equal(t, []string{"3"}, params["page"])

	assert.Error(t, p.Params(params, "abc", 30))

	full := &DecodedPage{Items: make([]*fastjson.Value, 30)}
	assert.Equal(t, "2", p.NextCursor("", full, 30))
	assert.Equal(t, "4", p.NextCursor("3", full, 30))
	assert.Equal(t, "", p.NextCursor("3", &DecodedPage{Items: make([]*fastjson.Value, 29)}, 30))
}

func TestCursorPagination(t *testing.T) {
	p := CursorPagination{CursorParam: "cursor", LimitParam: "limit"}

	params := make(map[string][]string)
	require.NoError(t, p.Params(params, "", 200))
	assert.Equal(t, []string{"200"}, params["limit"])
	assert.NotContains(t, params, "cursor")

	require.NoError(t, p.Params(params, "dXNlcjpVMDYx", 200))
	assert.Equal(t, []string{"dXNlcjpVMDYx"}, params["cursor"])

	assert.Equal(t, "next", p.NextCursor("dXNlcjpVMDYx", &DecodedPage{Cursor: "next"}, 200))
	assert.Equal(t, "", p.NextCursor("dXNlcjpVMDYx", &DecodedPage{}, 200))
}

func TestResource_PageSize(t *testing.T) {
	tests := []struct {
		name       string
		max        int
		configured int
		want       int
	}{
		{name: "unbounded", max: 0, configured: 500, want: 500},
		{name: "below maximum", max: 100, configured: 50, want: 50},
		{name: "above maximum", max: 100, configured: 200, want: 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resource := &Resource{Name: "issues", MaxPageSize: tt.max}
			assert.Equal(t, tt.want, resource.PageSize(tt.configured))
			assert.Equal(t, tt.want, NewTable(nil, resource, tt.configured).pageSize)
		})
	}
}
