package jsast

import (
	"sort"

	sitter "github.com/smacker/go-tree-sitter"
)

// Span is a half-open byte range [Start, End) into the program source.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len returns the span length in bytes.
func (s Span) Len() int { return s.End - s.Start }

// Contains reports whether other lies entirely within s.
func (s Span) Contains(other Span) bool {
	return s.Start <= other.Start && other.End <= s.End
}

// Binding is an identifier introduced at some source location: a
// declarator name, a function or class declaration name, a parameter, a
// catch clause parameter, or a destructuring pattern name. References
// that merely use a name are not bindings, and neither are
// member-expression properties or object keys.
type Binding struct {
	Name      string
	Span      Span // the identifier itself
	Scope     Span // nearest enclosing declarative scope
	ScopeSize int  // textual length of the owning scope

	node  *sitter.Node
	scope *sitter.Node
}

// ProgramScoped reports whether the binding's owning scope is the whole
// program rather than some nested block or function.
func (b Binding) ProgramScoped() bool {
	return b.scope != nil && b.scope.Type() == "program"
}

// scopeNodeTypes are the constructs that own bindings. A binding's owner
// is its nearest enclosing entry in this set; the program node is the
// fallback for top-level names.
var scopeNodeTypes = map[string]bool{
	"program":                        true,
	"statement_block":                true,
	"function_declaration":           true,
	"generator_function_declaration": true,
	"function_expression":            true,
	"function":                       true,
	"generator_function":             true,
	"arrow_function":                 true,
	"method_definition":              true,
	"class_declaration":              true,
	"class_body":                     true,
	"catch_clause":                   true,
}

// Bindings discovers every binding in the program and returns them in
// visitation order: owning scope size descending, ties in discovery
// (tree walk) order. The order is deterministic for identical source
// text. It must be recomputed after any edit, since spans shift and
// scope text changes.
func (p *Program) Bindings() []Binding {
	var out []Binding

	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if isBindingSite(n) {
			scope := owningScope(n)
			out = append(out, Binding{
				Name:      n.Content(p.src),
				Span:      nodeSpan(n),
				Scope:     nodeSpan(scope),
				ScopeSize: nodeSpan(scope).Len(),
				node:      n,
				scope:     scope,
			})
		}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			walk(n.NamedChild(i))
		}
	}
	walk(p.Root())

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ScopeSize > out[j].ScopeSize
	})
	return out
}

func nodeSpan(n *sitter.Node) Span {
	return Span{Start: int(n.StartByte()), End: int(n.EndByte())}
}

// fieldIs reports whether n occupies the named field of parent. Node
// handles are not comparable across lookups, so positions are compared
// instead.
func fieldIs(parent *sitter.Node, field string, n *sitter.Node) bool {
	f := parent.ChildByFieldName(field)
	return f != nil && f.StartByte() == n.StartByte() && f.EndByte() == n.EndByte()
}

// isBindingSite reports whether the node introduces a name, as opposed
// to referencing one.
func isBindingSite(n *sitter.Node) bool {
	switch n.Type() {
	case "identifier":
	case "shorthand_property_identifier_pattern":
		// var { a } = o; binds a (key and value share the name).
		return inDeclarationPattern(n)
	default:
		return false
	}
	parent := n.Parent()
	if parent == nil {
		return false
	}
	switch parent.Type() {
	case "variable_declarator":
		return fieldIs(parent, "name", n)
	case "function_declaration", "generator_function_declaration",
		"function_expression", "function", "class_declaration":
		return fieldIs(parent, "name", n)
	case "formal_parameters":
		return true
	case "arrow_function":
		return fieldIs(parent, "parameter", n)
	case "catch_clause":
		return fieldIs(parent, "parameter", n)
	case "assignment_pattern":
		// Default values: binding only in declaration position, not in
		// a destructuring assignment expression.
		return fieldIs(parent, "left", n) && inDeclarationPattern(parent)
	case "rest_pattern", "array_pattern":
		return inDeclarationPattern(parent)
	case "pair_pattern":
		return fieldIs(parent, "value", n) && inDeclarationPattern(parent)
	}
	return false
}

// inDeclarationPattern reports whether a pattern node hangs off a
// variable declarator, parameter list, or catch clause rather than a
// plain assignment expression.
func inDeclarationPattern(n *sitter.Node) bool {
	for cur := n.Parent(); cur != nil; cur = cur.Parent() {
		switch cur.Type() {
		case "variable_declarator", "formal_parameters", "catch_clause":
			return true
		}
		if scopeNodeTypes[cur.Type()] {
			return false
		}
	}
	return false
}

// owningScope finds the scope that declares the identifier. Function and
// class declaration names bind in the scope enclosing the declaration,
// not in the body they introduce; everything else (parameters,
// declarators) binds in the nearest enclosing scope construct.
func owningScope(n *sitter.Node) *sitter.Node {
	start := n.Parent()
	if start != nil && isDeclarationName(start, n) {
		start = start.Parent()
	}
	var last *sitter.Node
	for cur := start; cur != nil; cur = cur.Parent() {
		last = cur
		if scopeNodeTypes[cur.Type()] {
			return cur
		}
	}
	return last
}

func isDeclarationName(parent, n *sitter.Node) bool {
	switch parent.Type() {
	case "function_declaration", "generator_function_declaration", "class_declaration":
		return fieldIs(parent, "name", n)
	}
	return false
}

// FindBinding returns the first binding with the given original name in
// visitation order, or false if the name no longer binds anywhere in the
// program.
func FindBinding(bindings []Binding, name string) (Binding, bool) {
	for _, b := range bindings {
		if b.Name == name {
			return b, true
		}
	}
	return Binding{}, false
}

// BoundInScope reports whether name is bound by any binding whose owning
// scope overlaps the given scope. Used for collision checks before
// applying a proposed rename.
func BoundInScope(bindings []Binding, name string, scope Span) bool {
	for _, b := range bindings {
		if b.Name != name {
			continue
		}
		if b.Scope.Contains(scope) || scope.Contains(b.Scope) {
			return true
		}
	}
	return false
}
