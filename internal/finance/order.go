package finance

import (
	"slices"
	"sort"
)

// OrderPartitions reorders every year's partition after the most recent
// year's partition sorted by amount, largest first. It returns the reordered
// copy and the canonical id order.
//
// When the last year has no partition the order is empty and every
// partition keeps its input order. Ids missing from the order rank ahead of
// known ids and keep their relative order.
func OrderPartitions(byYear PartitionByYear) (PartitionByYear, []string) {
	years := byYear.Years()

	var order []string
	if len(years) > 0 {
		last := slices.Clone(byYear[years[len(years)-1]])
		sort.SliceStable(last, func(i, j int) bool {
			return last[i].PartAmount.Cents > last[j].PartAmount.Cents
		})
		order = last.IDs()
	}

	ordered := make(PartitionByYear, len(byYear))
	for year, p := range byYear {
		ordered[year] = SortByOrder(p, order)
	}
	return ordered, order
}

// SortByOrder returns a copy of p sorted by the rank of each id in order.
// Rank lookup is a linear scan; partitions hold about ten entries.
func SortByOrder(p Partition, order []string) Partition {
	if p == nil {
		return nil
	}
	sorted := slices.Clone(p)
	sort.SliceStable(sorted, func(i, j int) bool {
		return slices.Index(order, sorted[i].ContentID) < slices.Index(order, sorted[j].ContentID)
	})
	return sorted
}
