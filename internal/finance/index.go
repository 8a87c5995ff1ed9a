// Package finance derives the year-aligned structures behind a finance
// element page: element indexes, partitions, their cross-year order, the
// dual-view merge and the ancestor chain.
//
// Every function here is pure. Inputs are never mutated and each call
// returns freshly allocated results, so one derivation pass can never
// observe another's output.
package finance

import (
	"financeviz/internal/core"
)

// DetailsURLPrefix prefixes every finance element deep link.
const DetailsURLPrefix = "#!/finance-details/"

type (
	// ElementIndex maps ids to nodes for a single year.
	ElementIndex map[string]*core.Node

	// TotalsFunc returns the amount of an id.
	TotalsFunc func(id string) core.Money

	// TextsFunc returns the texts of an id, nil when unknown.
	TextsFunc func(id string) *core.Texts

	// ColorFunc returns the presentation color class of an id.
	ColorFunc func(id string) string
)

// DetailsURL returns the deep link of a finance element.
func DetailsURL(id string) string {
	return DetailsURLPrefix + id
}

// Flatten returns every node reachable from tree, the root included, in
// depth-first pre-order. A nil tree yields nothing.
func Flatten(tree *core.Node) []*core.Node {
	if tree == nil {
		return nil
	}
	var out []*core.Node
	stack := []*core.Node{tree}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		out = append(out, n)
		for i := len(n.Children) - 1; i >= 0; i-- {
			if c := n.Children[i]; c != nil {
				stack = append(stack, c)
			}
		}
	}
	return out
}

// BuildIndex indexes the aggregated tree and, when present, the
// classification tree of one year. Classification nodes are inserted last
// and win on id collisions. Either tree may be nil.
func BuildIndex(aggregated, classification *core.Node) ElementIndex {
	index := make(ElementIndex)
	for _, n := range Flatten(aggregated) {
		index[n.ID] = n
	}
	for _, n := range Flatten(classification) {
		index[n.ID] = n
	}
	return index
}

// Totals returns a lookup of node totals for this index. Unknown ids are zero.
func (idx ElementIndex) Totals() TotalsFunc {
	return func(id string) core.Money {
		return core.TotalOf(idx[id])
	}
}

// TextsFrom adapts a texts map into a TextsFunc. fallback, when non-nil, is
// consulted for ids missing from the map.
func TextsFrom(texts map[string]core.Texts, fallback map[string]core.Texts) TextsFunc {
	return func(id string) *core.Texts {
		if t, ok := texts[id]; ok {
			return &t
		}
		if t, ok := fallback[id]; ok {
			return &t
		}
		return nil
	}
}
