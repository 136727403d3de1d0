package parser

import (
	"tide/interpreter-go/pkg/ast"
	"tide/interpreter-go/pkg/diag"
	"tide/interpreter-go/pkg/lexer"
	"tide/interpreter-go/pkg/runtime"
)

// parseImports consumes the contiguous run of import statements that opens a
// program and resolves each one before anything else is parsed.
func (p *Parser) parseImports(env *runtime.Environment) ([]ast.Statement, error) {
	var imports []ast.Statement
	for {
		for p.accept(lexer.Semicolon) {
		}
		if p.at().Kind != lexer.Import {
			return imports, nil
		}
		start := p.eat()
		pathTok := p.at()
		if pathTok.Kind != lexer.String && pathTok.Kind != lexer.Identifier {
			return nil, p.unexpected(pathTok, "a module path after 'import'")
		}
		p.eat()
		path := pathTok.Text

		if err := p.resolveImport(path, env); err != nil {
			return nil, diag.At(err, start.Line, start.Column)
		}
		imports = append(imports, ast.SetPos(ast.NewImportStatement(path), start.Line, start.Column))
		p.accept(lexer.Semicolon)
	}
}

func (p *Parser) resolveImport(path string, env *runtime.Environment) error {
	if env == nil {
		return diag.Errorf(diag.ImportError, "cannot import %q without an environment", path)
	}
	if env.HasImported(path) {
		return diag.Errorf(diag.ImportError, "circular or duplicate import of %q", path)
	}
	if p.importer == nil {
		return diag.Errorf(diag.ImportError, "library %q not found", path)
	}
	env.MarkImported(path)
	return p.importer.ResolveImport(path, env)
}
