package finance

import (
	"slices"
	"sort"

	"financeviz/internal/core"
)

// LegendItem describes one bar chart series.
type LegendItem struct {
	ID         string `json:"id"`
	URL        string `json:"url,omitempty"`
	Text       string `json:"text"`
	ColorClass string `json:"colorClass,omitempty"`
}

// LegendItems lists the distinct ids of the bar chart partitions in
// canonical order. Each item is described by the earliest year holding it.
func LegendItems(barChart PartitionByYear, order []string, colors ColorFunc) []LegendItem {
	years := barChart.Years()

	var ids []string
	found := make(map[string]PartitionEntry)
	for _, y := range years {
		for _, e := range barChart[y] {
			if _, ok := found[e.ContentID]; ok {
				continue
			}
			found[e.ContentID] = e
			ids = append(ids, e.ContentID)
		}
	}
	sort.SliceStable(ids, func(i, j int) bool {
		return slices.Index(order, ids[i]) < slices.Index(order, ids[j])
	})

	items := make([]LegendItem, 0, len(ids))
	for _, id := range ids {
		e := found[id]
		item := LegendItem{ID: id, URL: e.URL}
		if e.Texts != nil {
			item.Text = e.Texts.Label
		}
		if colors != nil {
			item.ColorClass = colors(id)
		}
		items = append(items, item)
	}
	return items
}

// SortRows returns a copy of rows ordered by amount, largest first.
func SortRows(rows []core.Row) []core.Row {
	sorted := slices.Clone(rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Amount.Cents > sorted[j].Amount.Cents
	})
	return sorted
}
