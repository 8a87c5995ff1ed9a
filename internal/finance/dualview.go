package finance

import (
	"log/slog"
	"slices"

	"financeviz/internal/core"
)

// DualView describes a category whose two children are the same money seen
// through two classifications. Stacking both would count it twice, so the
// bar chart shows a single merged entry while the year detail keeps the
// second sub-view navigable.
type DualView struct {
	ParentID string
	FirstID  string
	SecondID string

	Label          string
	FirstLinkText  string
	SecondLinkText string
}

// DefaultDualView is the social-action split of operating expenditure.
func DefaultDualView() DualView {
	return DualView{
		ParentID:       "DF",
		FirstID:        "DF.1",
		SecondID:       "DF.2",
		Label:          "Actions sociales",
		FirstLinkText:  "(par prestation)",
		SecondLinkText: "(par public)",
	}
}

// Applies reports whether the merge rules apply to the selected element.
func (d DualView) Applies(selectedID string) bool {
	return d.ParentID != "" && selectedID == d.ParentID
}

// CombinedTexts returns the texts of the merged entry, derived from base.
func (d DualView) CombinedTexts(base *core.Texts) *core.Texts {
	t := core.Texts{}
	if base != nil {
		t = *base
	}
	t.Label = d.Label + " " + d.FirstLinkText + " - " + d.SecondLinkText
	t.Links = []core.Link{
		{Text: d.FirstLinkText, URL: DetailsURL(d.FirstID)},
		{Text: d.SecondLinkText, URL: DetailsURL(d.SecondID)},
	}
	return &t
}

// MergeBarChart drops the first sub-view and replaces the second by a
// relabelled entry without a deep link. The boolean is false when the
// second sub-view is missing; the merged entry is then absent.
func (d DualView) MergeBarChart(p Partition) (Partition, bool) {
	merged := d.TrimDetail(p)

	i := merged.index(d.SecondID)
	if i < 0 {
		return merged, false
	}
	second := merged[i]
	merged[i] = PartitionEntry{
		ContentID:  second.ContentID,
		PartAmount: second.PartAmount,
		Texts:      d.CombinedTexts(second.Texts),
	}
	return merged, true
}

// TrimDetail drops only the first sub-view.
func (d DualView) TrimDetail(p Partition) Partition {
	if p == nil {
		return nil
	}
	out := slices.Clone(p)
	if i := out.index(d.FirstID); i >= 0 {
		out = slices.Delete(out, i, i+1)
	}
	return out
}

// MergeAll applies MergeBarChart to every year.
func (d DualView) MergeAll(byYear PartitionByYear) PartitionByYear {
	out := make(PartitionByYear, len(byYear))
	for year, p := range byYear {
		merged, ok := d.MergeBarChart(p)
		if !ok && len(p) > 0 {
			slog.Debug("Dual view counterpart missing",
				"parent", d.ParentID,
				"second", d.SecondID,
				"year", year)
		}
		out[year] = merged
	}
	return out
}
