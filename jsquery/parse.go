package jsquery

import (
	"fmt"
	"iter"
	"strconv"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/js"
)

// Parse parses a script fragment and returns its root node.
func Parse(src string) (Node, error) {
	ast, err := js.Parse(parse.NewInputString(src), js.Options{})
	if err != nil {
		return nil, fmt.Errorf("error parsing script: %w", err)
	}
	return wrap(&ast.BlockStmt), nil
}

type node struct {
	n js.INode
}

func wrap(n js.INode) Node {
	if n == nil || isNilPointer(n) {
		return nil
	}
	return node{n: n}
}

// isNilPointer catches typed nil pointers stored in the AST's interface fields.
func isNilPointer(n js.INode) bool {
	switch t := n.(type) {
	case *js.Var:
		return t == nil
	case *js.LiteralExpr:
		return t == nil
	case *js.ArrayExpr:
		return t == nil
	case *js.Property:
		return t == nil
	case *js.NewExpr:
		return t == nil
	case *js.Args:
		return t == nil
	}
	return false
}

func (w node) Kind() Kind {
	switch t := w.n.(type) {
	case *js.Var:
		return KindIdentifier
	case *js.LiteralExpr:
		switch t.TokenType {
		case js.DecimalToken, js.BinaryToken, js.OctalToken, js.HexadecimalToken, js.BigIntToken:
			return KindNumber
		case js.StringToken:
			return KindString
		}
	case *js.ArrayExpr:
		return KindArray
	case *js.Property:
		if t.Name != nil && t.Name.Computed == nil && !t.Spread {
			return KindPair
		}
	case *js.NewExpr:
		return KindNew
	case *js.Args:
		return KindArguments
	}
	return KindOther
}

func (w node) Text() string {
	switch t := w.n.(type) {
	case *js.Var:
		return string(t.Data)
	case *js.LiteralExpr:
		return literalText(*t)
	case *js.Property:
		if t.Name != nil && t.Name.Computed == nil {
			return literalText(t.Name.Literal)
		}
	}
	return ""
}

func literalText(l js.LiteralExpr) string {
	if l.TokenType == js.StringToken {
		if s, err := strconv.Unquote(string(l.Data)); err == nil {
			return s
		}
		if len(l.Data) >= 2 {
			return string(l.Data[1 : len(l.Data)-1])
		}
	}
	return string(l.Data)
}

func (w node) Child(field string) Node {
	switch t := w.n.(type) {
	case *js.Property:
		switch field {
		case FieldKey:
			if t.Name != nil {
				return wrap(&t.Name.Literal)
			}
		case FieldValue:
			return wrap(t.Value)
		}
	case *js.NewExpr:
		switch field {
		case FieldConstructor:
			return wrap(t.X)
		case FieldArguments:
			if t.Args != nil {
				return wrap(t.Args)
			}
		}
	}
	return nil
}

func (w node) Elements() []Node {
	var out []Node
	switch t := w.n.(type) {
	case *js.ArrayExpr:
		for _, el := range t.List {
			if c := wrap(el.Value); c != nil {
				out = append(out, c)
			}
		}
	case *js.Args:
		for _, arg := range t.List {
			if c := wrap(arg.Value); c != nil {
				out = append(out, c)
			}
		}
	}
	return out
}

func (w node) Find(match Predicate) iter.Seq[Node] {
	return func(yield func(Node) bool) {
		v := &finder{match: match, yield: yield}
		js.Walk(v, w.n)
	}
}

// finder adapts a predicate to js.Walk. Walk cannot be aborted, so once the
// consumer stops, Enter refuses to descend any further.
type finder struct {
	match   Predicate
	yield   func(Node) bool
	stopped bool
}

func (f *finder) Enter(n js.INode) js.IVisitor {
	if f.stopped {
		return nil
	}
	if c := wrap(n); c != nil && f.match(c) {
		if !f.yield(c) {
			f.stopped = true
			return nil
		}
	}
	return f
}

func (f *finder) Exit(js.INode) {}
