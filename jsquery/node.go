// Package jsquery locates syntax nodes in a parsed script by predicate.
//
// The booking extractors only depend on the Node interface, so the parser
// behind it can change without touching them.
package jsquery

import "iter"

// Kind classifies the nodes the extractors care about. Everything else is
// KindOther.
type Kind int

const (
	KindOther Kind = iota
	KindIdentifier
	KindNumber
	KindString
	KindArray
	KindPair
	KindNew
	KindArguments
)

// Field names accepted by Node.Child.
const (
	FieldKey         = "key"
	FieldValue       = "value"
	FieldConstructor = "constructor"
	FieldArguments   = "arguments"
)

// Node is a searchable syntax node.
type Node interface {
	Kind() Kind
	// Text is the source text of identifiers and literals, and the key name
	// of a pair. String quotes are removed.
	Text() string
	// Child returns the node bound to a named field, or nil.
	Child(field string) Node
	// Elements returns the ordered members of an array or argument list.
	Elements() []Node
	// Find yields the node itself and every descendant for which match
	// reports true, in document order.
	Find(match Predicate) iter.Seq[Node]
}

// Predicate selects nodes during Find.
type Predicate func(Node) bool

// PairNamed matches `key: value` properties whose key is name.
func PairNamed(name string) Predicate {
	return func(n Node) bool {
		return n.Kind() == KindPair && n.Text() == name
	}
}

// NewCallNamed matches `new name(...)` expressions.
func NewCallNamed(name string) Predicate {
	return func(n Node) bool {
		if n.Kind() != KindNew {
			return false
		}
		c := n.Child(FieldConstructor)
		return c != nil && c.Kind() == KindIdentifier && c.Text() == name
	}
}
