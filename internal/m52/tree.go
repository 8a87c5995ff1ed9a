// Package m52 builds the classification perspective of a budget document:
// the M52 accounting-standard breakdown of one direction and section
// (e.g. operating expenditure) by fonction and by nature.
package m52

import (
	"fmt"
	"sort"
	"strings"

	"financeviz/internal/core"
)

// IDPrefix starts every classification element id.
const IDPrefix = "M52-"

// Perspective is a direction+section code such as DF or RI.
type Perspective string

const (
	OperatingExpenditure  Perspective = "DF"
	InvestmentExpenditure Perspective = "DI"
	OperatingRevenue      Perspective = "RF"
	InvestmentRevenue     Perspective = "RI"
)

// ParsePerspective validates a perspective code.
func ParsePerspective(s string) (Perspective, error) {
	switch p := Perspective(s); p {
	case OperatingExpenditure, InvestmentExpenditure, OperatingRevenue, InvestmentRevenue:
		return p, nil
	default:
		return "", fmt.Errorf("%w: %q", core.ErrInvalidPerspective, s)
	}
}

// PerspectiveOf extracts the perspective of a classification element id,
// "M52-DF-F5-51" giving DF. ok is false for aggregated ids.
func PerspectiveOf(id string) (Perspective, bool) {
	if !strings.HasPrefix(id, IDPrefix) || len(id) < len(IDPrefix)+2 {
		return "", false
	}
	p, err := ParsePerspective(id[len(IDPrefix) : len(IDPrefix)+2])
	if err != nil {
		return "", false
	}
	return p, true
}

func (p Perspective) direction() string { return string(p[:1]) }
func (p Perspective) section() string   { return string(p[1:]) }

// RootID returns the id of the perspective's root node.
func (p Perspective) RootID() string { return IDPrefix + string(p) }

// FonctionID returns the id of the by-fonction subtree.
func (p Perspective) FonctionID() string { return p.RootID() + "-F" }

// NatureID returns the id of the by-nature subtree.
func (p Perspective) NatureID() string { return p.RootID() + "-N" }

// BuildTree builds the classification tree of doc for perspective. It is
// nil when the document or plan is missing or the perspective is unknown.
//
// The root has two children: rows grouped by fonction (chapter is the first
// digit) and the same rows grouped by nature (chapter is the first two
// digits). Both subtrees therefore sum to the root total.
func BuildTree(doc *core.Document, plan *core.Plan, perspective string) *core.Node {
	if doc == nil || plan == nil {
		return nil
	}
	p, err := ParsePerspective(perspective)
	if err != nil {
		return nil
	}

	var rows []core.Row
	for _, r := range doc.Rows {
		if r.Direction != p.direction() {
			continue
		}
		section := r.Section
		if section == "" {
			section = plan.Natures[r.Nature].Section
		}
		if section != p.section() {
			continue
		}
		r.Section = section
		rows = append(rows, r)
	}

	byFonction := group(p.FonctionID(), rows, func(r core.Row) string { return r.Fonction }, 1)
	byNature := group(p.NatureID(), rows, func(r core.Row) string { return r.Nature }, 2)

	return withTotal(&core.Node{
		ID:       p.RootID(),
		Children: core.Children{byFonction, byNature},
	})
}

// group builds a two-level subtree: chapters made of the first chapterLen
// characters of the code, then one leaf per full code holding its rows.
func group(id string, rows []core.Row, code func(core.Row) string, chapterLen int) *core.Node {
	leaves := map[string][]core.Row{}
	for _, r := range rows {
		c := code(r)
		leaves[c] = append(leaves[c], r)
	}

	chapters := map[string][]string{}
	for c := range leaves {
		ch := c
		if len(ch) > chapterLen {
			ch = ch[:chapterLen]
		}
		chapters[ch] = append(chapters[ch], c)
	}

	root := &core.Node{ID: id}
	for _, ch := range sortedKeys(chapters) {
		chapter := &core.Node{ID: id + ch}
		codes := chapters[ch]
		sort.Strings(codes)
		for _, c := range codes {
			chapter.Children = append(chapter.Children, withTotal(&core.Node{
				ID:       chapter.ID + "-" + c,
				Elements: leaves[c],
			}))
		}
		root.Children = append(root.Children, withTotal(chapter))
	}
	return withTotal(root)
}

func withTotal(n *core.Node) *core.Node {
	total := core.TotalOf(n)
	n.Total = &total
	return n
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
