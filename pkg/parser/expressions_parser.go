package parser

import (
	"tide/interpreter-go/pkg/ast"
	"tide/interpreter-go/pkg/lexer"
)

// compoundOperators maps each `op=` token to the binary operator it applies.
var compoundOperators = map[lexer.TokenKind]string{
	lexer.PlusAssign:        "+",
	lexer.MinusAssign:       "-",
	lexer.StarAssign:        "*",
	lexer.SlashAssign:       "/",
	lexer.PercentAssign:     "%",
	lexer.CaretAssign:       "^",
	lexer.DoubleSlashAssign: "//",
	lexer.NullishAssign:     "??",
}

var (
	comparisonOperators = map[lexer.TokenKind]string{
		lexer.Equal:        "==",
		lexer.NotEqual:     "!=",
		lexer.Less:         "<",
		lexer.LessEqual:    "<=",
		lexer.Greater:      ">",
		lexer.GreaterEqual: ">=",
	}
	additiveOperators = map[lexer.TokenKind]string{
		lexer.Plus:  "+",
		lexer.Minus: "-",
	}
	multiplicativeOperators = map[lexer.TokenKind]string{
		lexer.Star:        "*",
		lexer.Slash:       "/",
		lexer.Percent:     "%",
		lexer.DoubleSlash: "//",
	}
)

func (p *Parser) parseExpression() (ast.Expression, error) {
	return p.parseCompoundAssignment()
}

func (p *Parser) parseCompoundAssignment() (ast.Expression, error) {
	target, err := p.parseAssignment()
	if err != nil {
		return nil, err
	}
	tok := p.at()
	if !lexer.IsCompoundAssignment(tok.Kind) {
		return target, nil
	}
	p.eat()
	value, err := p.parseCompoundAssignment()
	if err != nil {
		return nil, err
	}
	return ast.SetPos(ast.NewCompoundAssignmentExpression(compoundOperators[tok.Kind], target, value), tok.Line, tok.Column), nil
}

func (p *Parser) parseAssignment() (ast.Expression, error) {
	target, err := p.parseLogicalOr()
	if err != nil {
		return nil, err
	}
	tok := p.at()
	if tok.Kind != lexer.Assign {
		return target, nil
	}
	p.eat()
	value, err := p.parseCompoundAssignment()
	if err != nil {
		return nil, err
	}
	return ast.SetPos(ast.NewAssignmentExpression(target, value), tok.Line, tok.Column), nil
}

func (p *Parser) parseLogicalOr() (ast.Expression, error) {
	left, err := p.parseLogicalAnd()
	if err != nil {
		return nil, err
	}
	for p.at().Kind == lexer.OrOr {
		tok := p.eat()
		right, err := p.parseLogicalAnd()
		if err != nil {
			return nil, err
		}
		left = ast.SetPos(ast.NewLogicalExpression("||", left, right), tok.Line, tok.Column)
	}
	return left, nil
}

func (p *Parser) parseLogicalAnd() (ast.Expression, error) {
	left, err := p.parseLogicalNot()
	if err != nil {
		return nil, err
	}
	for p.at().Kind == lexer.AndAnd {
		tok := p.eat()
		right, err := p.parseLogicalNot()
		if err != nil {
			return nil, err
		}
		left = ast.SetPos(ast.NewLogicalExpression("&&", left, right), tok.Line, tok.Column)
	}
	return left, nil
}

func (p *Parser) parseLogicalNot() (ast.Expression, error) {
	tok := p.at()
	if tok.Kind != lexer.Bang && tok.Kind != lexer.Not {
		return p.parseNullish()
	}
	p.eat()
	operand, err := p.parseLogicalNot()
	if err != nil {
		return nil, err
	}
	return ast.SetPos(ast.NewLogicalExpression("!", nil, operand), tok.Line, tok.Column), nil
}

func (p *Parser) parseNullish() (ast.Expression, error) {
	left, err := p.parseTernary()
	if err != nil {
		return nil, err
	}
	for p.at().Kind == lexer.Nullish {
		tok := p.eat()
		right, err := p.parseTernary()
		if err != nil {
			return nil, err
		}
		left = ast.SetPos(ast.NewBinaryExpression("??", left, right), tok.Line, tok.Column)
	}
	return left, nil
}

func (p *Parser) parseTernary() (ast.Expression, error) {
	test, err := p.parseChooseExpression()
	if err != nil {
		return nil, err
	}
	tok := p.at()
	if tok.Kind != lexer.Question {
		return test, nil
	}
	p.eat()
	consequent, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.Colon, "':' in ternary expression"); err != nil {
		return nil, err
	}
	alternate, err := p.parseTernary()
	if err != nil {
		return nil, err
	}
	return ast.SetPos(ast.NewTernaryExpression(test, consequent, alternate), tok.Line, tok.Column), nil
}

func (p *Parser) parseChooseExpression() (ast.Expression, error) {
	tok := p.at()
	if tok.Kind != lexer.Choose && tok.Kind != lexer.ChooseAll {
		return p.parseComparison()
	}
	clause, err := p.parseChooseClause()
	if err != nil {
		return nil, err
	}
	return ast.SetPos(ast.NewChooseExpression(clause), tok.Line, tok.Column), nil
}

func (p *Parser) parseComparison() (ast.Expression, error) {
	left, err := p.parseMembership()
	if err != nil {
		return nil, err
	}
	for {
		tok := p.at()
		op, ok := comparisonOperators[tok.Kind]
		if !ok {
			return left, nil
		}
		p.eat()
		right, err := p.parseMembership()
		if err != nil {
			return nil, err
		}
		left = ast.SetPos(ast.NewBinaryExpression(op, left, right), tok.Line, tok.Column)
	}
}

func (p *Parser) parseMembership() (ast.Expression, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	for {
		tok := p.at()
		negated := false
		switch {
		case tok.Kind == lexer.In:
			p.eat()
		case tok.Kind == lexer.Not && p.peekKind(1) == lexer.In:
			p.eat()
			p.eat()
			negated = true
		default:
			return left, nil
		}
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		left = ast.SetPos(ast.NewMembershipExpression(left, right, negated), tok.Line, tok.Column)
	}
}

func (p *Parser) parseAdditive() (ast.Expression, error) {
	return p.parseLeftAssociative(additiveOperators, p.parseMultiplicative)
}

func (p *Parser) parseMultiplicative() (ast.Expression, error) {
	return p.parseLeftAssociative(multiplicativeOperators, p.parseExponent)
}

func (p *Parser) parseLeftAssociative(ops map[lexer.TokenKind]string, next func() (ast.Expression, error)) (ast.Expression, error) {
	left, err := next()
	if err != nil {
		return nil, err
	}
	for {
		tok := p.at()
		op, ok := ops[tok.Kind]
		if !ok {
			return left, nil
		}
		p.eat()
		right, err := next()
		if err != nil {
			return nil, err
		}
		left = ast.SetPos(ast.NewBinaryExpression(op, left, right), tok.Line, tok.Column)
	}
}

// parseExponent is right associative; the exponent may carry a unary minus.
func (p *Parser) parseExponent() (ast.Expression, error) {
	base, err := p.parseCallMember()
	if err != nil {
		return nil, err
	}
	tok := p.at()
	if tok.Kind != lexer.Caret {
		return base, nil
	}
	p.eat()
	exponent, err := p.parseExponent()
	if err != nil {
		return nil, err
	}
	return ast.SetPos(ast.NewBinaryExpression("^", base, exponent), tok.Line, tok.Column), nil
}

// parseCallMember applies calls, dotted members and computed members to a
// primary. `(` and `[` only continue the expression on the same line.
func (p *Parser) parseCallMember() (ast.Expression, error) {
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		tok := p.raw()
		switch {
		case tok.Kind == lexer.LParen:
			p.eat()
			args, err := p.parseArguments()
			if err != nil {
				return nil, err
			}
			expr = ast.SetPos(ast.NewCallExpression(expr, args), tok.Line, tok.Column)
		case tok.Kind == lexer.LBracket:
			p.eat()
			property, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(lexer.RBracket, "']' after index expression"); err != nil {
				return nil, err
			}
			expr = ast.SetPos(ast.NewMemberExpression(expr, property, true), tok.Line, tok.Column)
		case p.at().Kind == lexer.Dot:
			dot := p.eat()
			nameTok := p.at()
			if nameTok.Kind != lexer.Identifier {
				if _, isKeyword := lexer.LookupKeyword(nameTok.Text); !isKeyword {
					return nil, p.unexpected(nameTok, "a property name after '.'")
				}
			}
			p.eat()
			property := ast.SetPos(ast.NewIdentifier(nameTok.Text), nameTok.Line, nameTok.Column)
			expr = ast.SetPos(ast.NewMemberExpression(expr, property, false), dot.Line, dot.Column)
		default:
			return expr, nil
		}
	}
}

func (p *Parser) parseArguments() ([]ast.Expression, error) {
	args := []ast.Expression{}
	if p.accept(lexer.RParen) {
		return args, nil
	}
	for {
		arg, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if p.accept(lexer.Comma) {
			if p.accept(lexer.RParen) {
				return args, nil
			}
			continue
		}
		if _, err := p.expect(lexer.RParen, "',' or ')' in argument list"); err != nil {
			return nil, err
		}
		return args, nil
	}
}
