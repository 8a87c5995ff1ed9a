package m52

import (
	"strings"

	"financeviz/internal/core"
)

var perspectiveLabels = map[Perspective]string{
	OperatingExpenditure:  "Dépenses de fonctionnement",
	InvestmentExpenditure: "Dépenses d'investissement",
	OperatingRevenue:      "Recettes de fonctionnement",
	InvestmentRevenue:     "Recettes d'investissement",
}

// Labels returns texts for every node of a classification tree, taken from
// the plan's fonction and nature tables. Codes missing from the plan are
// labelled with the code itself.
func Labels(tree *core.Node, plan *core.Plan) map[string]core.Texts {
	if tree == nil {
		return nil
	}
	p, ok := PerspectiveOf(tree.ID)
	if !ok {
		return nil
	}

	labels := map[string]core.Texts{
		p.RootID():     {Label: perspectiveLabels[p]},
		p.FonctionID(): {Label: perspectiveLabels[p] + " par fonction"},
		p.NatureID():   {Label: perspectiveLabels[p] + " par nature"},
	}
	for _, sub := range tree.Children {
		var lookup func(code string) string
		switch sub.ID {
		case p.FonctionID():
			lookup = func(code string) string { return FonctionLabel(plan, code) }
		case p.NatureID():
			lookup = func(code string) string { return NatureLabel(plan, code) }
		default:
			continue
		}
		for _, chapter := range sub.Children {
			labels[chapter.ID] = core.Texts{Label: lookup(strings.TrimPrefix(chapter.ID, sub.ID))}
			for _, leaf := range chapter.Children {
				labels[leaf.ID] = core.Texts{Label: lookup(strings.TrimPrefix(leaf.ID, chapter.ID+"-"))}
			}
		}
	}
	return labels
}

// FonctionLabel returns the plan label of a fonction code.
func FonctionLabel(plan *core.Plan, code string) string {
	if plan != nil {
		if l, ok := plan.Fonctions[code]; ok && l != "" {
			return l
		}
	}
	return "Fonction " + code
}

// NatureLabel returns the plan label of a nature code.
func NatureLabel(plan *core.Plan, code string) string {
	if plan != nil {
		if n, ok := plan.Natures[code]; ok && n.Label != "" {
			return n.Label
		}
	}
	return "Nature " + code
}
