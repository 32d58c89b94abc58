package optimizer

import (
	"fmt"
	"strconv"

	"github.com/cube2222/octorest/graph"
)

// Describe returns the plan as the tree of steps Materialize will build.
func (p Plan) Describe() *graph.Node {
	if p.Residual.IsNone() || p.Limit == 0 {
		empty := graph.NewNode("empty")
		empty.AddField("reason", fmt.Sprintf("residual %s, limit %d", p.Residual, p.Limit))
		return empty
	}

	scan := graph.NewNode("scan")
	scan.AddField("table", p.Handle.Table)
	scan.AddField("pushdown", p.Handle.Pushdown.String())
	if p.Handle.Limited {
		scan.AddField("limit", strconv.Itoa(p.Handle.Limit))
	}
	scan.AddField("iterations", strconv.Itoa(p.Iterations))

	node := scan
	if !p.Residual.IsAll() {
		filter := graph.NewNode("filter")
		filter.AddField("residual", p.Residual.String())
		filter.AddChild("source", node)
		node = filter
	}
	if p.Limit > 0 {
		limit := graph.NewNode("limit")
		limit.AddField("limit", strconv.Itoa(p.Limit))
		limit.AddChild("source", node)
		node = limit
	}
	return node
}
