package jsast

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
)

// Program is a parsed JavaScript source file. The source bytes are the
// canonical state; every structural question (bindings, scopes,
// references) is answered from a fresh parse, so a Program becomes stale
// as soon as its text is edited and must be re-created.
type Program struct {
	src  []byte
	tree *sitter.Tree
}

// Parse parses JavaScript source text. Sources that do not parse cleanly
// are rejected: renaming identifiers in a broken tree would corrupt the
// output text.
func Parse(ctx context.Context, source []byte) (*Program, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(javascript.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("failed to parse source: %w", err)
	}
	root := tree.RootNode()
	if root == nil {
		return nil, fmt.Errorf("failed to parse source: no syntax tree produced")
	}
	if root.HasError() {
		return nil, fmt.Errorf("source contains syntax errors")
	}

	return &Program{src: source, tree: tree}, nil
}

// Source returns the program text this Program was parsed from.
func (p *Program) Source() []byte {
	return p.src
}

// Root returns the root syntax node.
func (p *Program) Root() *sitter.Node {
	return p.tree.RootNode()
}
