package extract

import (
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
)

var (
	// ErrEmptySelector is returned for a rule without a selector.
	ErrEmptySelector = errors.New("rule has no selector")

	// ErrMixedNode is returned for a node that has both a selector and children.
	ErrMixedNode = errors.New("node cannot be both a rule and a group")

	// ErrUnnamedNode is returned for a rule without a name.
	ErrUnnamedNode = errors.New("rule has no name")
)

// Node is one entry of a selector tree.
type Node struct {
	// Name is the field name of a rule, or the path prefix of a group.
	Name string `yaml:"name" json:"name"`

	// Selector picks the elements a rule reads.
	Selector string `yaml:"selector,omitempty" json:"selector,omitempty"`

	// Attr makes a rule read an attribute instead of the element text.
	Attr string `yaml:"attr,omitempty" json:"attr,omitempty"`

	// All makes a rule read every match instead of only the first.
	All bool `yaml:"all,omitempty" json:"all,omitempty"`

	// Scope narrows a group to the first element it matches.
	Scope string `yaml:"scope,omitempty" json:"scope,omitempty"`

	// Children makes the node a group.
	Children []Node `yaml:"children,omitempty" json:"children,omitempty"`
}

// Rule returns a terminal node reading the text of the first match.
func Rule(name, selector string) Node {
	return Node{Name: name, Selector: selector}
}

// AttrRule returns a terminal node reading attr of the first match.
func AttrRule(name, selector, attr string) Node {
	return Node{Name: name, Selector: selector, Attr: attr}
}

// Group returns a node whose children run independently.
func Group(name string, children ...Node) Node {
	return Node{Name: name, Children: children}
}

// IsGroup reports whether n has children.
func (n Node) IsGroup() bool {
	return len(n.Children) > 0
}

// Validate checks the whole tree and reports the first broken node.
func (n Node) Validate() error {
	return n.validate("")
}

func (n Node) validate(prefix string) error {
	path := joinPath(prefix, n.Name)
	if n.IsGroup() {
		if n.Selector != "" || n.Attr != "" {
			return fmt.Errorf("%s: %w", path, ErrMixedNode)
		}
		if n.Scope != "" {
			if _, err := cascadia.Parse(n.Scope); err != nil {
				return fmt.Errorf("%s: invalid scope %q: %w", path, n.Scope, err)
			}
		}
		for _, c := range n.Children {
			if err := c.validate(path); err != nil {
				return err
			}
		}
		return nil
	}

	if n.Name == "" {
		return fmt.Errorf("%s: %w", prefix, ErrUnnamedNode)
	}
	if strings.TrimSpace(n.Selector) == "" {
		return fmt.Errorf("%s: %w", path, ErrEmptySelector)
	}
	if _, err := cascadia.Parse(n.Selector); err != nil {
		return fmt.Errorf("%s: invalid selector %q: %w", path, n.Selector, err)
	}
	return nil
}

// Fields runs the selector tree against the document.
func (d *Document) Fields(tree Node) Record {
	rec := make(Record)
	d.collect(d.doc.Selection, tree, "", rec)
	return rec
}

func (d *Document) collect(sel *goquery.Selection, n Node, prefix string, rec Record) {
	path := joinPath(prefix, n.Name)

	if n.IsGroup() {
		scope := sel
		if n.Scope != "" {
			scope = sel.Find(n.Scope).First()
			if scope.Length() == 0 {
				return
			}
		}
		for _, child := range n.Children {
			partial := make(Record)
			d.collect(scope, child, path, partial)
			rec.Merge(partial)
		}
		return
	}

	matches := sel.Find(n.Selector)
	if !n.All {
		matches = matches.First()
	}
	matches.Each(func(_ int, s *goquery.Selection) {
		var value string
		if n.Attr != "" {
			raw, ok := s.Attr(n.Attr)
			if !ok {
				return
			}
			value = strings.TrimSpace(raw)
			if isURLAttr(n.Attr) {
				value = d.resolve(value)
			}
		} else {
			value = collapseSpace(s.Text())
		}
		if value != "" {
			rec.Add(path, value)
		}
	})
}

func isURLAttr(attr string) bool {
	switch strings.ToLower(attr) {
	case "href", "src", "action":
		return true
	default:
		return false
	}
}

func joinPath(prefix, name string) string {
	switch {
	case prefix == "":
		return name
	case name == "":
		return prefix
	default:
		return prefix + "." + name
	}
}
