package finance

import (
	"slices"
)

// CanonicalChildIDs returns the union of the selected element's child ids
// over all years, in first-seen order with years ascending. Years where the
// element is missing or is a leaf contribute nothing.
func CanonicalChildIDs(indexByYear map[int]ElementIndex, selectedID string) []string {
	years := make([]int, 0, len(indexByYear))
	for y := range indexByYear {
		years = append(years, y)
	}
	slices.Sort(years)

	seen := make(map[string]struct{})
	ids := []string{}
	for _, y := range years {
		element := indexByYear[y][selectedID]
		for _, id := range element.ChildIDs() {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	return ids
}

// AlignPartitions builds one partition per year for selectedID, all sharing
// the same canonical child ids so that every year decomposes into the same
// segments. Amounts come from each year's own index.
func AlignPartitions(indexByYear map[int]ElementIndex, selectedID string, texts TextsFunc) PartitionByYear {
	canonical := CanonicalChildIDs(indexByYear, selectedID)

	byYear := make(PartitionByYear, len(indexByYear))
	for year, index := range indexByYear {
		byYear[year] = BuildPartition(index[selectedID], index.Totals(), texts, canonical)
	}
	return byYear
}
