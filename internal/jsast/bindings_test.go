package jsast

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, source string) *Program {
	t.Helper()
	p, err := Parse(context.Background(), []byte(source))
	require.NoError(t, err)
	return p
}

func names(bindings []Binding) []string {
	out := make([]string, len(bindings))
	for i, b := range bindings {
		out[i] = b.Name
	}
	return out
}

func TestBindings_Discovery(t *testing.T) {
	t.Run("function and parameters", func(t *testing.T) {
		p := mustParse(t, "function f(a,b){return a+b;}")
		got := p.Bindings()

		assert.Equal(t, []string{"f", "a", "b"}, names(got))
	})

	t.Run("references are not bindings", func(t *testing.T) {
		p := mustParse(t, "var x = 1; console.log(x + x);")
		got := p.Bindings()

		assert.Equal(t, []string{"x"}, names(got))
	})

	t.Run("properties and keys are not bindings", func(t *testing.T) {
		p := mustParse(t, "var o = { size: 1 }; o.size = o.size + 1;")
		got := p.Bindings()

		assert.Equal(t, []string{"o"}, names(got))
	})

	t.Run("declaration kinds", func(t *testing.T) {
		p := mustParse(t, "var a = 1; let b = 2; const c = 3; class D {} function e() {}")
		got := names(p.Bindings())

		assert.ElementsMatch(t, []string{"a", "b", "c", "D", "e"}, got)
	})

	t.Run("arrow and rest parameters", func(t *testing.T) {
		p := mustParse(t, "const f = (x, ...rest) => x; const g = y => y;")
		got := names(p.Bindings())

		assert.ElementsMatch(t, []string{"f", "g", "x", "rest", "y"}, got)
	})

	t.Run("shorthand destructuring declarations", func(t *testing.T) {
		p := mustParse(t, "var { a, b } = o; g(a, b);")
		got := names(p.Bindings())

		assert.ElementsMatch(t, []string{"a", "b"}, got)
	})

	t.Run("shorthand object literals are not bindings", func(t *testing.T) {
		p := mustParse(t, "var a = 1; var o = { a };")
		got := names(p.Bindings())

		assert.ElementsMatch(t, []string{"a", "o"}, got)
	})

	t.Run("shorthand assignment targets are not bindings", func(t *testing.T) {
		p := mustParse(t, "var a = 1; ({ a } = o);")
		got := names(p.Bindings())

		assert.ElementsMatch(t, []string{"a"}, got)
	})

	t.Run("catch parameter", func(t *testing.T) {
		p := mustParse(t, "try { f(); } catch (err) { g(err); }")
		got := names(p.Bindings())

		assert.Contains(t, got, "err")
	})
}

func TestBindings_VisitationOrder(t *testing.T) {
	source := "var top = 1;\nfunction outer(p) {\n  var inner = p;\n  return inner;\n}\n"

	t.Run("wider scopes first", func(t *testing.T) {
		p := mustParse(t, source)
		got := p.Bindings()
		require.Len(t, got, 4)

		// top and outer own the program scope; p owns the function;
		// inner owns the function body block.
		assert.Equal(t, []string{"top", "outer", "p", "inner"}, names(got))
		assert.True(t, got[0].ScopeSize >= got[1].ScopeSize)
		assert.True(t, got[1].ScopeSize >= got[2].ScopeSize)
		assert.True(t, got[2].ScopeSize >= got[3].ScopeSize)
	})

	t.Run("deterministic across parses", func(t *testing.T) {
		first := mustParse(t, source).Bindings()
		second := mustParse(t, source).Bindings()

		require.Equal(t, len(first), len(second))
		for i := range first {
			assert.Equal(t, first[i].Name, second[i].Name)
			assert.Equal(t, first[i].Span, second[i].Span)
			assert.Equal(t, first[i].Scope, second[i].Scope)
		}
	})
}

func TestBindings_OwningScope(t *testing.T) {
	p := mustParse(t, "function f(a){return a;}\nvar g = 2;\n")
	bindings := p.Bindings()

	byName := make(map[string]Binding)
	for _, b := range bindings {
		byName[b.Name] = b
	}

	assert.True(t, byName["f"].ProgramScoped(), "declaration names bind in the enclosing scope")
	assert.True(t, byName["g"].ProgramScoped())
	assert.False(t, byName["a"].ProgramScoped(), "parameters bind inside their function")
}

func TestParse_SyntaxError(t *testing.T) {
	_, err := Parse(context.Background(), []byte("function ((( {"))
	require.Error(t, err)
}

func TestBoundInScope(t *testing.T) {
	p := mustParse(t, "function f(a){return a;}")
	bindings := p.Bindings()

	a, ok := FindBinding(bindings, "a")
	require.True(t, ok)

	assert.True(t, BoundInScope(bindings, "a", a.Scope))
	assert.True(t, BoundInScope(bindings, "f", a.Scope), "enclosing names are visible")
	assert.False(t, BoundInScope(bindings, "missing", a.Scope))
}

func TestContextWindow(t *testing.T) {
	t.Run("small scope returned whole", func(t *testing.T) {
		p := mustParse(t, "function f(a,b){return a+b;}")
		b, ok := FindBinding(p.Bindings(), "a")
		require.True(t, ok)

		got := p.ContextWindow(b, 4096)
		assert.Equal(t, "function f(a,b){return a+b;}", got)
	})

	t.Run("program scope gets centered window of exact size", func(t *testing.T) {
		padding := strings.Repeat("g();", 100)
		source := padding + "var needle = 1;" + padding
		p := mustParse(t, source)

		b, ok := FindBinding(p.Bindings(), "needle")
		require.True(t, ok)

		const w = 120
		got := p.ContextWindow(b, w)
		assert.Len(t, got, w)
		assert.Contains(t, got, "needle")
	})

	t.Run("window clamped at file start", func(t *testing.T) {
		source := "var needle = 1;" + strings.Repeat("g();", 100)
		p := mustParse(t, source)

		b, ok := FindBinding(p.Bindings(), "needle")
		require.True(t, ok)

		const w = 100
		got := p.ContextWindow(b, w)
		assert.Len(t, got, w)
		assert.Equal(t, source[:w], got)
	})

	t.Run("oversized inner scope truncated to prefix", func(t *testing.T) {
		body := strings.Repeat("h();", 100)
		source := "function f(a){" + body + "}"
		p := mustParse(t, source)

		b, ok := FindBinding(p.Bindings(), "a")
		require.True(t, ok)

		const w = 64
		got := p.ContextWindow(b, w)
		assert.Len(t, got, w)
		assert.True(t, strings.HasPrefix(source, got), "inner scopes contribute their prefix")
	})
}
