package jsast

// ContextWindow extracts the source text handed to the naming oracle for
// a binding, bounded by the window size w:
//
//   - an owning scope shorter than w is returned whole;
//   - a program-scoped binding in a file of at least w bytes gets a
//     window of exactly w centered on the binding, clamped at the file
//     boundaries;
//   - an oversized non-program scope contributes its first w bytes.
func (p *Program) ContextWindow(b Binding, w int) string {
	scopeText := p.src[b.Scope.Start:b.Scope.End]
	if len(scopeText) < w {
		return string(scopeText)
	}

	if b.ProgramScoped() {
		center := (b.Span.Start + b.Span.End) / 2
		start := center - w/2
		if start < 0 {
			start = 0
		}
		if start+w > len(p.src) {
			start = len(p.src) - w
		}
		return string(p.src[start : start+w])
	}

	return string(scopeText[:w])
}
