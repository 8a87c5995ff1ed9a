package core

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Ledger directions and sections as used by the M52 accounting standard.
const (
	Expenditure = "D"
	Revenue     = "R"

	Operating  = "F"
	Investment = "I"
)

type (
	// Node is one category of a budget hierarchy for a single year.
	// Internal nodes carry Children, leaves carry the raw ledger Elements.
	Node struct {
		ID       string   `json:"id"`
		Total    *Money   `json:"total,omitempty"`
		Children Children `json:"children,omitempty"`
		Elements []Row    `json:"elements,omitempty"`
	}

	// Children is the ordered list of child nodes. Documents may encode it
	// either as an array or as an object keyed by child id.
	Children []*Node

	// Row is one raw ledger line.
	Row struct {
		Direction string `json:"direction"` // D or R
		Section   string `json:"section"`   // F or I, may be empty and resolved from the plan
		Fonction  string `json:"fonction"`
		Nature    string `json:"nature"`
		Amount    Money  `json:"amount"`
	}

	// Link is a labelled deep link.
	Link struct {
		Text string `json:"text"`
		URL  string `json:"url"`
	}

	// Texts holds the editorial texts attached to a category id.
	Texts struct {
		Label     string `json:"label"`
		Atemporal string `json:"atemporal,omitempty"`
		Temporal  string `json:"temporal,omitempty"`
		Links     []Link `json:"links,omitempty"`
	}

	// Document is the raw budget document of one year.
	Document struct {
		Year int   `json:"year"`
		Rows []Row `json:"rows"`
	}

	// NatureInfo describes a nature code of the chart of accounts.
	NatureInfo struct {
		Label   string `json:"label"`
		Section string `json:"section"`
	}

	// Plan is the chart of accounts of one year.
	Plan struct {
		Year      int                   `json:"year"`
		Fonctions map[string]string     `json:"fonctions"`
		Natures   map[string]NatureInfo `json:"natures"`
	}
)

var (
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidPerspective = errors.New("invalid perspective")
	ErrElementNotFound    = errors.New("finance element not found")
	ErrYearNotFound       = errors.New("no budget data for year")
)

// IsLeaf reports whether the node has no children.
func (n *Node) IsLeaf() bool {
	return n == nil || len(n.Children) == 0
}

// ChildIDs returns the ids of the node's children in order.
func (n *Node) ChildIDs() []string {
	if n == nil {
		return nil
	}
	ids := make([]string, 0, len(n.Children))
	for _, c := range n.Children {
		if c != nil {
			ids = append(ids, c.ID)
		}
	}
	return ids
}

// Child returns the direct child with the given id, if any.
func (n *Node) Child(id string) *Node {
	if n == nil {
		return nil
	}
	for _, c := range n.Children {
		if c != nil && c.ID == id {
			return c
		}
	}
	return nil
}

// ID returns the ledger line identifier of the row.
func (r Row) ID() string {
	return fmt.Sprintf("%s%s-F%s-N%s", r.Direction, r.Section, r.Fonction, r.Nature)
}

// UnmarshalJSON normalises both encodings of children into one ordered list.
// For the object form, document key order is preserved and the key is used
// as id when the child does not carry one.
func (c *Children) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*c = nil
		return nil
	}

	switch trimmed[0] {
	case '[':
		var list []*Node
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return err
		}
		*c = list
		return nil
	case '{':
		dec := json.NewDecoder(bytes.NewReader(trimmed))
		if _, err := dec.Token(); err != nil {
			return err
		}
		var list []*Node
		for dec.More() {
			tok, err := dec.Token()
			if err != nil {
				return err
			}
			key, ok := tok.(string)
			if !ok {
				return fmt.Errorf("children: unexpected key %v", tok)
			}
			var child Node
			if err := dec.Decode(&child); err != nil {
				return fmt.Errorf("children[%s]: %w", key, err)
			}
			if child.ID == "" {
				child.ID = key
			}
			list = append(list, &child)
		}
		*c = list
		return nil
	default:
		return fmt.Errorf("children: expected array or object, got %q", trimmed[:1])
	}
}
