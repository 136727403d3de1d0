package parser

import (
	"tide/interpreter-go/pkg/ast"
	"tide/interpreter-go/pkg/lexer"
)

var declarationKinds = map[lexer.TokenKind]ast.DeclarationKind{
	lexer.Let:      ast.DeclareLet,
	lexer.Const:    ast.DeclareConst,
	lexer.Reactive: ast.DeclareReactive,
}

func (p *Parser) parseVariableDeclaration() (*ast.VariableDeclaration, error) {
	start := p.eat()
	kind := declarationKinds[start.Kind]
	nameTok, err := p.expect(lexer.Identifier, "a variable name after '"+start.Text+"'")
	if err != nil {
		return nil, err
	}
	name := ast.SetPos(ast.NewIdentifier(nameTok.Text), nameTok.Line, nameTok.Column)

	var value ast.Expression
	if p.accept(lexer.Assign) {
		if value, err = p.parseExpression(); err != nil {
			return nil, err
		}
	} else if kind != ast.DeclareLet {
		return nil, p.errorf(nameTok, "%s declaration of '%s' requires a value", start.Text, nameTok.Text)
	}
	return ast.SetPos(ast.NewVariableDeclaration(kind, name, value), start.Line, start.Column), nil
}

// parseFunctionDeclaration handles both `fn name(...)` and the anonymous
// `fn (...)` expression form.
func (p *Parser) parseFunctionDeclaration() (*ast.FunctionDeclaration, error) {
	start := p.eat()
	var id *ast.Identifier
	if tok := p.at(); tok.Kind == lexer.Identifier {
		p.eat()
		id = ast.SetPos(ast.NewIdentifier(tok.Text), tok.Line, tok.Column)
	}
	params, err := p.parseParameters()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBody()
	if err != nil {
		return nil, err
	}
	return ast.SetPos(ast.NewFunctionDeclaration(id, params, body), start.Line, start.Column), nil
}

func (p *Parser) parseParameters() ([]*ast.Identifier, error) {
	if _, err := p.expect(lexer.LParen, "'(' to open the parameter list"); err != nil {
		return nil, err
	}
	params := []*ast.Identifier{}
	if p.accept(lexer.RParen) {
		return params, nil
	}
	for {
		tok := p.at()
		if tok.Kind != lexer.Identifier {
			return nil, p.errorf(tok, "function parameters must be identifiers, found %s", tok)
		}
		p.eat()
		params = append(params, ast.SetPos(ast.NewIdentifier(tok.Text), tok.Line, tok.Column))
		if p.accept(lexer.Comma) {
			continue
		}
		if _, err := p.expect(lexer.RParen, "',' or ')' in the parameter list"); err != nil {
			return nil, err
		}
		return params, nil
	}
}

// parseClassDeclaration reads `class Name { public { ... } private { ... } ... }`.
// Statements outside a named block form the default block.
func (p *Parser) parseClassDeclaration() (*ast.ClassDeclaration, error) {
	start := p.eat()
	nameTok, err := p.expect(lexer.Identifier, "a class name")
	if err != nil {
		return nil, err
	}
	id := ast.SetPos(ast.NewIdentifier(nameTok.Text), nameTok.Line, nameTok.Column)

	if p.at().Kind == lexer.Arrow {
		body, err := p.parseBody()
		if err != nil {
			return nil, err
		}
		block := ast.NewClassMemberBlock(ast.VisibilityDefault, body)
		return ast.SetPos(ast.NewClassDeclaration(id, []*ast.ClassMemberBlock{block}), start.Line, start.Column), nil
	}

	if _, err := p.expect(lexer.LBrace, "'{' or '=>' after the class name"); err != nil {
		return nil, err
	}
	var (
		blocks   []*ast.ClassMemberBlock
		defaults []ast.Statement
	)
	for {
		tok := p.at()
		switch {
		case tok.Kind == lexer.RBrace:
			p.eat()
			if len(defaults) > 0 {
				blocks = append(blocks, ast.NewClassMemberBlock(ast.VisibilityDefault, defaults))
			}
			return ast.SetPos(ast.NewClassDeclaration(id, blocks), start.Line, start.Column), nil
		case tok.Kind == lexer.EOF:
			return nil, p.unexpected(tok, "'}' to close class "+nameTok.Text)
		case (tok.Kind == lexer.Public || tok.Kind == lexer.Private) && p.peekKind(1) == lexer.LBrace:
			p.eat()
			visibility := ast.VisibilityPublic
			if tok.Kind == lexer.Private {
				visibility = ast.VisibilityPrivate
			}
			body, err := p.parseBlock()
			if err != nil {
				return nil, err
			}
			blocks = append(blocks, ast.SetPos(ast.NewClassMemberBlock(visibility, body), tok.Line, tok.Column))
		default:
			stmt, err := p.parseStatement()
			if err != nil {
				return nil, err
			}
			defaults = append(defaults, stmt)
		}
	}
}

func (p *Parser) parseExportDeclaration() (*ast.ExportDeclaration, error) {
	start := p.eat()
	var (
		decl ast.Statement
		err  error
	)
	switch tok := p.at(); {
	case tok.Kind == lexer.Let || tok.Kind == lexer.Const || tok.Kind == lexer.Reactive:
		decl, err = p.parseVariableDeclaration()
	case tok.Kind == lexer.Fn && p.peekKind(1) == lexer.Identifier:
		decl, err = p.parseFunctionDeclaration()
	default:
		return nil, p.unexpected(tok, "a variable or function declaration after 'export'")
	}
	if err != nil {
		return nil, err
	}
	return ast.SetPos(ast.NewExportDeclaration(decl), start.Line, start.Column), nil
}
