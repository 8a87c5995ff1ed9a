package finance

import (
	"slices"

	"financeviz/internal/core"
)

type (
	// PartitionEntry is the share of a parent's amount attributed to one id
	// for one year.
	PartitionEntry struct {
		ContentID  string      `json:"contentId"`
		PartAmount core.Money  `json:"partAmount"`
		Texts      *core.Texts `json:"texts,omitempty"`
		URL        string      `json:"url,omitempty"`
	}

	// Partition is the ordered decomposition of an element for one year.
	Partition []PartitionEntry

	// PartitionByYear holds one partition per year.
	PartitionByYear map[int]Partition
)

// BuildPartition decomposes element into one entry per canonical child id.
//
// canonicalIDs defaults to the element's own child ids. Canonical ids absent
// from this year's children get a zero amount so every year has the same
// shape. A leaf yields a single entry for itself; a nil element yields an
// empty partition.
func BuildPartition(element *core.Node, totals TotalsFunc, texts TextsFunc, canonicalIDs []string) Partition {
	if element == nil {
		return Partition{}
	}
	if canonicalIDs == nil {
		canonicalIDs = element.ChildIDs()
	}

	if element.IsLeaf() {
		return Partition{newEntry(element.ID, totals(element.ID), texts)}
	}

	partition := make(Partition, 0, len(canonicalIDs))
	for _, id := range canonicalIDs {
		// linear scan, children are at most a few dozen
		var amount core.Money
		if child := element.Child(id); child != nil {
			amount = totals(child.ID)
		}
		partition = append(partition, newEntry(id, amount, texts))
	}
	return partition
}

func newEntry(id string, amount core.Money, texts TextsFunc) PartitionEntry {
	var t *core.Texts
	if texts != nil {
		t = texts(id)
	}
	return PartitionEntry{
		ContentID:  id,
		PartAmount: amount,
		Texts:      t,
		URL:        DetailsURL(id),
	}
}

// Years returns the years of the map in ascending order.
func (p PartitionByYear) Years() []int {
	years := make([]int, 0, len(p))
	for y := range p {
		years = append(years, y)
	}
	slices.Sort(years)
	return years
}

// IDs returns the content ids of the partition in order.
func (p Partition) IDs() []string {
	ids := make([]string, len(p))
	for i, e := range p {
		ids[i] = e.ContentID
	}
	return ids
}

// Find returns the entry for id.
func (p Partition) Find(id string) (PartitionEntry, bool) {
	i := p.index(id)
	if i < 0 {
		return PartitionEntry{}, false
	}
	return p[i], true
}

func (p Partition) index(id string) int {
	return slices.IndexFunc(p, func(e PartitionEntry) bool { return e.ContentID == id })
}

// IsLeaf reports whether a year's partition has nothing to decompose.
func IsLeaf(p Partition) bool {
	return len(p) < 2
}
