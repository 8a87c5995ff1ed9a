package core

// TotalOf returns the amount of a node. The node's own Total wins when
// present; otherwise the rows of its leaves are summed. A nil node is zero.
func TotalOf(n *Node) Money {
	if n == nil {
		return Money{}
	}
	if n.Total != nil {
		return *n.Total
	}
	var total Money
	for _, r := range LeafRowsOf(n) {
		total = total.Add(r.Amount)
	}
	return total
}

// LeafRowsOf collects the raw rows of every leaf under n, n included when it
// is itself a leaf. Order follows a depth-first walk of the children.
func LeafRowsOf(n *Node) []Row {
	if n == nil {
		return nil
	}
	if n.IsLeaf() {
		return n.Elements
	}
	var rows []Row
	for _, c := range n.Children {
		rows = append(rows, LeafRowsOf(c)...)
	}
	return rows
}
