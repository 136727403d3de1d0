// Package parser is a recursive-descent parser for Tide. It produces an
// ast.Program and resolves the leading import statements eagerly, before the
// rest of the program is parsed.
package parser

import (
	"tide/interpreter-go/pkg/ast"
	"tide/interpreter-go/pkg/lexer"
	"tide/interpreter-go/pkg/runtime"
)

// ImportResolver links a library path into env. Implementations bind every
// object the library exports as a constant.
type ImportResolver interface {
	ResolveImport(path string, env *runtime.Environment) error
}

// Parser turns source text into a Program. A Parser may be reused, but not
// concurrently.
type Parser struct {
	importer ImportResolver
	tokens   []lexer.Token
	pos      int
}

// New constructs a parser. importer may be nil when the source is known to have
// no imports; an import then fails with an ImportError.
func New(importer ImportResolver) *Parser {
	return &Parser{importer: importer}
}

// ProduceAST tokenizes and parses source. Imports at the head of the program are
// resolved against env as they are read.
func (p *Parser) ProduceAST(source string, env *runtime.Environment) (*ast.Program, error) {
	tokens, err := lexer.Tokenize(source)
	if err != nil {
		return nil, err
	}
	p.tokens = tokens
	p.pos = 0

	body, err := p.parseImports(env)
	if err != nil {
		return nil, err
	}
	for p.at().Kind != lexer.EOF {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		body = append(body, stmt)
	}
	return ast.NewProgram(body), nil
}

// ParseExpression parses source as a single expression. Trailing tokens are an
// error.
func (p *Parser) ParseExpression(source string) (ast.Expression, error) {
	tokens, err := lexer.Tokenize(source)
	if err != nil {
		return nil, err
	}
	p.tokens = tokens
	p.pos = 0
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if tok := p.at(); tok.Kind != lexer.EOF {
		return nil, p.unexpected(tok, "end of expression")
	}
	return expr, nil
}
