package parser

import (
	"tide/interpreter-go/pkg/diag"
	"tide/interpreter-go/pkg/lexer"
)

// at returns the head token, skipping any newline tokens in front of it.
func (p *Parser) at() lexer.Token {
	for p.tokens[p.pos].Kind == lexer.Newline {
		p.pos++
	}
	return p.tokens[p.pos]
}

// raw returns the head token without skipping newlines.
func (p *Parser) raw() lexer.Token {
	return p.tokens[p.pos]
}

// peekKind looks n significant tokens past the head.
func (p *Parser) peekKind(n int) lexer.TokenKind {
	i := p.pos
	for {
		for p.tokens[i].Kind == lexer.Newline {
			i++
		}
		if n == 0 || p.tokens[i].Kind == lexer.EOF {
			return p.tokens[i].Kind
		}
		n--
		i++
	}
}

func (p *Parser) eat() lexer.Token {
	tok := p.at()
	if tok.Kind != lexer.EOF {
		p.pos++
	}
	return tok
}

// accept consumes the head token when it has the given kind.
func (p *Parser) accept(kind lexer.TokenKind) bool {
	if p.at().Kind != kind {
		return false
	}
	p.eat()
	return true
}

// expect consumes a token of the given kind or fails naming what was wanted.
func (p *Parser) expect(kind lexer.TokenKind, what string) (lexer.Token, error) {
	tok := p.at()
	if tok.Kind != kind {
		return tok, p.unexpected(tok, what)
	}
	return p.eat(), nil
}

func (p *Parser) unexpected(tok lexer.Token, what string) error {
	return diag.New(diag.ParserError, tok.Line, tok.Column, "expected %s but found %s", what, tok)
}

func (p *Parser) errorf(tok lexer.Token, format string, args ...any) error {
	return diag.New(diag.ParserError, tok.Line, tok.Column, format, args...)
}
