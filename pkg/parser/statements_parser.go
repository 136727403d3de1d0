package parser

import (
	"tide/interpreter-go/pkg/ast"
	"tide/interpreter-go/pkg/lexer"
)

func (p *Parser) parseStatement() (ast.Statement, error) {
	tok := p.at()
	var (
		stmt ast.Statement
		err  error
	)
	switch tok.Kind {
	case lexer.Semicolon:
		p.eat()
		return ast.SetPos(ast.NewNullStatement(), tok.Line, tok.Column), nil
	case lexer.Import:
		return nil, p.errorf(tok, "import statements must come before any other statement")
	case lexer.Let, lexer.Const, lexer.Reactive:
		stmt, err = p.parseVariableDeclaration()
	case lexer.Fn:
		if p.peekKind(1) == lexer.Identifier {
			stmt, err = p.parseFunctionDeclaration()
		} else {
			stmt, err = p.parseExpression()
		}
	case lexer.Class:
		stmt, err = p.parseClassDeclaration()
	case lexer.Export:
		stmt, err = p.parseExportDeclaration()
	case lexer.If:
		stmt, err = p.parseIfStatement()
	case lexer.For:
		stmt, err = p.parseForStatement()
	case lexer.Foreach:
		stmt, err = p.parseForEachStatement()
	case lexer.While:
		stmt, err = p.parseWhileStatement()
	case lexer.Break, lexer.Continue, lexer.Pass:
		p.eat()
		stmt = ast.SetPos(ast.NewControlFlowStatement(controlKinds[tok.Kind]), tok.Line, tok.Column)
	case lexer.Choose, lexer.ChooseAll:
		var clause ast.ChooseClause
		clause, err = p.parseChooseClause()
		stmt = ast.SetPos(ast.NewChooseStatement(clause), tok.Line, tok.Column)
	default:
		stmt, err = p.parseExpression()
	}
	if err != nil {
		return nil, err
	}
	p.accept(lexer.Semicolon)
	return stmt, nil
}

var controlKinds = map[lexer.TokenKind]ast.ControlFlowKind{
	lexer.Break:    ast.ControlBreak,
	lexer.Continue: ast.ControlContinue,
	lexer.Pass:     ast.ControlPass,
}

// parseBlock parses `{ statements }`.
func (p *Parser) parseBlock() ([]ast.Statement, error) {
	if _, err := p.expect(lexer.LBrace, "'{'"); err != nil {
		return nil, err
	}
	body := []ast.Statement{}
	for {
		tok := p.at()
		if tok.Kind == lexer.RBrace {
			p.eat()
			return body, nil
		}
		if tok.Kind == lexer.EOF {
			return nil, p.unexpected(tok, "'}'")
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		body = append(body, stmt)
	}
}

// parseBody parses either a braced block or an inline `=> expression`.
func (p *Parser) parseBody() ([]ast.Statement, error) {
	switch tok := p.at(); tok.Kind {
	case lexer.LBrace:
		return p.parseBlock()
	case lexer.Arrow:
		p.eat()
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		return []ast.Statement{expr}, nil
	default:
		return nil, p.unexpected(tok, "'{' or '=>'")
	}
}

// parseCondition parses a parenthesised expression.
func (p *Parser) parseCondition(keyword string) (ast.Expression, error) {
	if _, err := p.expect(lexer.LParen, "'(' after '"+keyword+"'"); err != nil {
		return nil, err
	}
	test, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.RParen, "')' to close the "+keyword+" condition"); err != nil {
		return nil, err
	}
	return test, nil
}

func (p *Parser) parseIfStatement() (ast.Statement, error) {
	start := p.eat()
	test, err := p.parseCondition("if")
	if err != nil {
		return nil, err
	}
	consequent, err := p.parseBody()
	if err != nil {
		return nil, err
	}
	var alternate []ast.Statement
	if p.accept(lexer.Else) {
		if p.at().Kind == lexer.If {
			nested, err := p.parseIfStatement()
			if err != nil {
				return nil, err
			}
			alternate = []ast.Statement{nested}
		} else {
			alternate, err = p.parseBody()
			if err != nil {
				return nil, err
			}
		}
	}
	return ast.SetPos(ast.NewIfStatement(test, consequent, alternate), start.Line, start.Column), nil
}

func (p *Parser) parseForStatement() (ast.Statement, error) {
	start := p.eat()
	if _, err := p.expect(lexer.LParen, "'(' after 'for'"); err != nil {
		return nil, err
	}

	var (
		init   ast.Statement
		test   ast.Expression
		update ast.Expression
		err    error
	)
	switch p.at().Kind {
	case lexer.Semicolon:
	case lexer.Let, lexer.Const, lexer.Reactive:
		init, err = p.parseVariableDeclaration()
	default:
		init, err = p.parseExpression()
	}
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.Semicolon, "';' after the for initializer"); err != nil {
		return nil, err
	}
	if p.at().Kind != lexer.Semicolon {
		if test, err = p.parseExpression(); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(lexer.Semicolon, "';' after the for condition"); err != nil {
		return nil, err
	}
	if p.at().Kind != lexer.RParen {
		if update, err = p.parseExpression(); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(lexer.RParen, "')' to close the for header"); err != nil {
		return nil, err
	}
	body, err := p.parseBody()
	if err != nil {
		return nil, err
	}
	return ast.SetPos(ast.NewForStatement(init, test, update, body), start.Line, start.Column), nil
}

func (p *Parser) parseLoopBinding() (ast.LoopBinding, error) {
	declare := p.accept(lexer.Let)
	tok, err := p.expect(lexer.Identifier, "a loop variable name")
	if err != nil {
		return ast.LoopBinding{}, err
	}
	name := ast.SetPos(ast.NewIdentifier(tok.Text), tok.Line, tok.Column)
	return ast.LoopBinding{Name: name, Declare: declare}, nil
}

func (p *Parser) parseForEachStatement() (ast.Statement, error) {
	start := p.eat()
	if _, err := p.expect(lexer.LParen, "'(' after 'foreach'"); err != nil {
		return nil, err
	}

	var (
		element ast.LoopBinding
		index   *ast.LoopBinding
		err     error
	)
	if p.accept(lexer.LBracket) {
		if element, err = p.parseLoopBinding(); err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.Comma, "',' between the element and index names"); err != nil {
			return nil, err
		}
		idx, err := p.parseLoopBinding()
		if err != nil {
			return nil, err
		}
		index = &idx
		if _, err := p.expect(lexer.RBracket, "']' after the index name"); err != nil {
			return nil, err
		}
	} else if element, err = p.parseLoopBinding(); err != nil {
		return nil, err
	}

	if _, err := p.expect(lexer.In, "'in' in foreach header"); err != nil {
		return nil, err
	}
	iterable, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.RParen, "')' to close the foreach header"); err != nil {
		return nil, err
	}
	body, err := p.parseBody()
	if err != nil {
		return nil, err
	}
	return ast.SetPos(ast.NewForEachStatement(element, index, iterable, body), start.Line, start.Column), nil
}

func (p *Parser) parseWhileStatement() (ast.Statement, error) {
	start := p.eat()
	test, err := p.parseCondition("while")
	if err != nil {
		return nil, err
	}
	body, err := p.parseBody()
	if err != nil {
		return nil, err
	}
	return ast.SetPos(ast.NewWhileStatement(test, body), start.Line, start.Column), nil
}

// parseChooseClause parses `choose|chooseall subject [as name] { cases }`.
func (p *Parser) parseChooseClause() (ast.ChooseClause, error) {
	keyword := p.eat()
	clause := ast.ChooseClause{All: keyword.Kind == lexer.ChooseAll}

	subject, err := p.parseExpression()
	if err != nil {
		return clause, err
	}
	clause.Subject = subject
	if p.accept(lexer.As) {
		tok, err := p.expect(lexer.Identifier, "a name after 'as'")
		if err != nil {
			return clause, err
		}
		clause.Alias = ast.SetPos(ast.NewIdentifier(tok.Text), tok.Line, tok.Column)
	}
	if _, err := p.expect(lexer.LBrace, "'{' to open the "+keyword.Text+" body"); err != nil {
		return clause, err
	}

	for {
		tok := p.at()
		switch tok.Kind {
		case lexer.RBrace:
			p.eat()
			return clause, nil
		case lexer.Case:
			p.eat()
			tests, err := p.parseCaseTests()
			if err != nil {
				return clause, err
			}
			body, err := p.parseCaseBody()
			if err != nil {
				return clause, err
			}
			clause.Cases = append(clause.Cases, ast.SetPos(ast.NewChooseCase(tests, body), tok.Line, tok.Column))
		case lexer.Default:
			if clause.Default != nil {
				return clause, p.errorf(tok, "%s accepts only one default case", keyword.Text)
			}
			p.eat()
			if _, err := p.expect(lexer.Colon, "':' after 'default'"); err != nil {
				return clause, err
			}
			body, err := p.parseCaseBody()
			if err != nil {
				return clause, err
			}
			clause.Default = ast.SetPos(ast.NewChooseCase(nil, body), tok.Line, tok.Column)
		default:
			return clause, p.unexpected(tok, "'case', 'default' or '}'")
		}
	}
}

func (p *Parser) parseCaseTests() ([]ast.Expression, error) {
	var tests []ast.Expression
	for {
		test, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		tests = append(tests, test)
		if !p.accept(lexer.Comma) {
			break
		}
	}
	if _, err := p.expect(lexer.Colon, "':' after the case values"); err != nil {
		return nil, err
	}
	return tests, nil
}

// parseCaseBody reads a braced block, or statements up to the next case,
// default or closing brace.
func (p *Parser) parseCaseBody() ([]ast.Statement, error) {
	if p.at().Kind == lexer.LBrace {
		return p.parseBlock()
	}
	body := []ast.Statement{}
	for {
		switch tok := p.at(); tok.Kind {
		case lexer.Case, lexer.Default, lexer.RBrace:
			return body, nil
		case lexer.EOF:
			return nil, p.unexpected(tok, "'}'")
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		body = append(body, stmt)
	}
}
