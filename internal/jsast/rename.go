package jsast

import (
	"sort"

	sitter "github.com/smacker/go-tree-sitter"
)

// Rename rewrites every reference to the binding's name within its
// owning scope to newName and returns the edited source text. Subtrees
// that re-declare the name (shadowing functions, blocks, or catch
// clauses) keep their own binding untouched. The receiver is stale after
// this call; reparse the returned text before asking any further
// structural questions.
func (p *Program) Rename(b Binding, newName string) []byte {
	refs := p.references(b)
	edits := make([]spanEdit, 0, len(refs))
	for _, r := range refs {
		text := newName
		if r.shorthand {
			// { a } carries the name as both key and value; keep the key
			// so the object shape survives the rename.
			text = b.Name + ": " + newName
		}
		edits = append(edits, spanEdit{span: r.span, text: text})
	}
	return rewriteSpans(p.src, edits)
}

// RenameByName locates the first binding (in visitation order) with the
// given original name and renames it. Returns the edited source and
// whether the name was found; callers re-applying checkpointed renames
// skip names that no longer bind.
func (p *Program) RenameByName(name, newName string) ([]byte, bool) {
	b, ok := FindBinding(p.Bindings(), name)
	if !ok {
		return p.src, false
	}
	return p.Rename(b, newName), true
}

// reference is one occurrence of a binding's name. Shorthand object
// properties and patterns name the binding without a separate key, so a
// rename must expand them rather than substitute in place.
type reference struct {
	span      Span
	shorthand bool
}

// references collects every occurrence of the binding's name inside its
// owning scope, including the binding site itself, skipping nested
// scopes that shadow the name.
func (p *Program) references(b Binding) []reference {
	// Scopes strictly inside the owner that introduce the same name own
	// their occurrences; their subtrees are skipped wholesale.
	var shadows []Span
	for _, other := range p.Bindings() {
		if other.Name != b.Name {
			continue
		}
		if b.Scope.Contains(other.Scope) && other.Scope != b.Scope {
			shadows = append(shadows, other.Scope)
		}
	}

	var refs []reference
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		span := nodeSpan(n)
		if span != b.Scope {
			for _, sh := range shadows {
				if span == sh {
					return
				}
			}
		}
		// Property accesses and object keys are property_identifier
		// nodes, which never match here. Shorthand nodes ({ a } in
		// literals and destructuring targets) do reference the binding.
		switch n.Type() {
		case "identifier":
			if n.Content(p.src) == b.Name {
				refs = append(refs, reference{span: span})
			}
		case "shorthand_property_identifier", "shorthand_property_identifier_pattern":
			if n.Content(p.src) == b.Name {
				refs = append(refs, reference{span: span, shorthand: true})
			}
		}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			walk(n.NamedChild(i))
		}
	}
	walk(p.nodeAt(b.Scope))

	return refs
}

// nodeAt descends from the root to the node covering exactly the given
// span. Falls back to the root when no node matches (cannot happen for
// spans recorded from this parse).
func (p *Program) nodeAt(span Span) *sitter.Node {
	cur := p.Root()
	for {
		if nodeSpan(cur) == span {
			return cur
		}
		descended := false
		for i := 0; i < int(cur.NamedChildCount()); i++ {
			child := cur.NamedChild(i)
			if nodeSpan(child).Contains(span) {
				cur = child
				descended = true
				break
			}
		}
		if !descended {
			return cur
		}
	}
}

// spanEdit replaces one span with new text.
type spanEdit struct {
	span Span
	text string
}

// rewriteSpans applies edits from the end of the source backwards so
// earlier offsets stay valid.
func rewriteSpans(src []byte, edits []spanEdit) []byte {
	sorted := make([]spanEdit, len(edits))
	copy(sorted, edits)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].span.Start > sorted[j].span.Start })

	out := make([]byte, len(src))
	copy(out, src)
	for _, e := range sorted {
		edited := make([]byte, 0, len(out)-e.span.Len()+len(e.text))
		edited = append(edited, out[:e.span.Start]...)
		edited = append(edited, e.text...)
		edited = append(edited, out[e.span.End:]...)
		out = edited
	}
	return out
}
