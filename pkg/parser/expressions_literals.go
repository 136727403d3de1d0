package parser

import (
	"strconv"

	"tide/interpreter-go/pkg/ast"
	"tide/interpreter-go/pkg/lexer"
)

func (p *Parser) parsePrimary() (ast.Expression, error) {
	tok := p.at()
	switch tok.Kind {
	case lexer.Identifier:
		p.eat()
		return ast.SetPos(ast.NewIdentifier(tok.Text), tok.Line, tok.Column), nil
	case lexer.Number:
		p.eat()
		val, err := strconv.ParseFloat(tok.Text, 64)
		if err != nil {
			return nil, p.errorf(tok, "invalid number literal %q", tok.Text)
		}
		return ast.SetPos(ast.NewNumericLiteral(val), tok.Line, tok.Column), nil
	case lexer.String:
		p.eat()
		return ast.SetPos(ast.NewStringLiteral(tok.Text), tok.Line, tok.Column), nil
	case lexer.True, lexer.False:
		p.eat()
		return ast.SetPos(ast.NewBooleanLiteral(tok.Kind == lexer.True), tok.Line, tok.Column), nil
	case lexer.LParen:
		p.eat()
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.RParen, "')' to close the parenthesised expression"); err != nil {
			return nil, err
		}
		return expr, nil
	case lexer.Minus:
		p.eat()
		operand, err := p.parseExponent()
		if err != nil {
			return nil, err
		}
		zero := ast.SetPos(ast.NewNumericLiteral(0), tok.Line, tok.Column)
		return ast.SetPos(ast.NewBinaryExpression("-", zero, operand), tok.Line, tok.Column), nil
	case lexer.LBrace:
		return p.parseObjectLiteral()
	case lexer.LBracket:
		return p.parseListLiteral()
	case lexer.Fn:
		return p.parseFunctionDeclaration()
	default:
		return nil, p.unexpected(tok, "an expression")
	}
}

// parseObjectLiteral reads `{ key: value, other }`. A key without a value puns
// the variable of the same name.
func (p *Parser) parseObjectLiteral() (ast.Expression, error) {
	start := p.eat()
	props := []*ast.Property{}
	for !p.accept(lexer.RBrace) {
		keyTok := p.at()
		switch keyTok.Kind {
		case lexer.Identifier, lexer.String, lexer.Number:
		default:
			if _, isKeyword := lexer.LookupKeyword(keyTok.Text); !isKeyword {
				return nil, p.unexpected(keyTok, "a property name or '}'")
			}
		}
		p.eat()

		var value ast.Expression
		if p.accept(lexer.Colon) {
			var err error
			if value, err = p.parseExpression(); err != nil {
				return nil, err
			}
		} else if keyTok.Kind != lexer.Identifier {
			return nil, p.unexpected(p.at(), "':' after property "+strconv.Quote(keyTok.Text))
		}
		props = append(props, ast.SetPos(ast.NewProperty(keyTok.Text, value), keyTok.Line, keyTok.Column))

		if p.accept(lexer.Comma) {
			continue
		}
		if _, err := p.expect(lexer.RBrace, "',' or '}' in object literal"); err != nil {
			return nil, err
		}
		break
	}
	return ast.SetPos(ast.NewObjectLiteral(props), start.Line, start.Column), nil
}

func (p *Parser) parseListLiteral() (ast.Expression, error) {
	start := p.eat()
	elements := []ast.Expression{}
	for !p.accept(lexer.RBracket) {
		el, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		elements = append(elements, el)
		if p.accept(lexer.Comma) {
			continue
		}
		if _, err := p.expect(lexer.RBracket, "',' or ']' in list literal"); err != nil {
			return nil, err
		}
		break
	}
	return ast.SetPos(ast.NewListLiteral(elements), start.Line, start.Column), nil
}
