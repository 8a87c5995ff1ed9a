package finance

import (
	"fmt"
	"log/slog"
	"slices"

	"financeviz/internal/core"
)

const (
	// maxChainEntries is the breadcrumb width.
	maxChainEntries = 4

	// maxChainDepth bounds the upward walk. Category hierarchies are about
	// six levels deep; reaching this means the parent map has a cycle.
	maxChainDepth = 64
)

type (
	// ChildToParent maps a node id to its parent node.
	ChildToParent map[string]*core.Node

	// ChainEntry is one breadcrumb element.
	ChainEntry struct {
		ID         string  `json:"id"`
		URL        string  `json:"url,omitempty"`
		Proportion float64 `json:"proportion"`
		ColorClass string  `json:"colorClass,omitempty"`
		Label      string  `json:"label"`
	}
)

// ParentIndex derives the child to parent map of the given trees. Nil trees
// are skipped; later trees win on id collisions.
func ParentIndex(trees ...*core.Node) ChildToParent {
	parents := make(ChildToParent)
	for _, tree := range trees {
		for _, n := range Flatten(tree) {
			for _, c := range n.Children {
				if c != nil {
					parents[c.ID] = n
				}
			}
		}
	}
	return parents
}

// Ancestors returns the chain from the outermost category down to selected,
// without the grand-total root. Chains longer than four keep the first
// three entries and the last one.
func Ancestors(selected *core.Node, parents ChildToParent) []*core.Node {
	var chain []*core.Node
	for next := selected; next != nil; next = parents[next.ID] {
		if len(chain) == maxChainDepth {
			slog.Error("Ancestor walk exceeded maximum depth, parent map is likely cyclic",
				"element_id", selected.ID,
				"max_depth", maxChainDepth)
			break
		}
		chain = append(chain, next)
	}
	if len(chain) == 0 {
		return nil
	}

	slices.Reverse(chain)
	chain = chain[1:]

	if len(chain) > maxChainEntries {
		chain = []*core.Node{chain[0], chain[1], chain[2], chain[len(chain)-1]}
	}
	return chain
}

// BuildChain returns the breadcrumb of selected. Each entry's proportion is
// its total over the first entry's total; the last entry's label carries
// that percentage when the chain has at least two entries.
func BuildChain(selected *core.Node, parents ChildToParent, texts TextsFunc, colors ColorFunc) []ChainEntry {
	chain := Ancestors(selected, parents)
	if len(chain) == 0 {
		return []ChainEntry{}
	}

	first := core.TotalOf(chain[0])
	entries := make([]ChainEntry, 0, len(chain))
	for i, n := range chain {
		total := core.TotalOf(n)
		proportion := ratio(total, first)

		label := n.ID
		if texts != nil {
			if t := texts(n.ID); t != nil {
				label = t.Label
			}
		}
		if len(chain) >= 2 && i == len(chain)-1 {
			label += fmt.Sprintf(" (%.1f%%)", proportion*100)
		}

		entry := ChainEntry{
			ID:         n.ID,
			Proportion: proportion,
			Label:      label,
		}
		if n.ID != selected.ID {
			entry.URL = DetailsURL(n.ID)
		}
		if colors != nil {
			entry.ColorClass = colors(n.ID)
		}
		entries = append(entries, entry)
	}
	return entries
}

func ratio(part, whole core.Money) float64 {
	if whole.Cents == 0 {
		return 0
	}
	return float64(part.Cents) / float64(whole.Cents)
}
