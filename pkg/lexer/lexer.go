// Package lexer turns Tide source text into a flat token stream.
package lexer

import (
	"tide/interpreter-go/pkg/diag"
)

// Lexer scans one source string. It is single use; call Tokenize.
type Lexer struct {
	src    []rune
	cur    int
	line   int
	col    int
	tokens []Token
}

// Tokenize scans source and returns its tokens, always terminated by exactly
// one EOF token.
func Tokenize(source string) ([]Token, error) {
	l := &Lexer{src: []rune(source), line: 1, col: 1}
	if err := l.run(); err != nil {
		return nil, err
	}
	return l.tokens, nil
}

func (l *Lexer) isAtEnd() bool { return l.cur >= len(l.src) }

func (l *Lexer) peek() rune { return l.peekN(0) }

func (l *Lexer) peekN(n int) rune {
	if l.cur+n >= len(l.src) {
		return 0
	}
	return l.src[l.cur+n]
}

func (l *Lexer) advance() rune {
	ch := l.src[l.cur]
	l.cur++
	if ch == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return ch
}

func (l *Lexer) emit(kind TokenKind, text string, line, col int) {
	l.tokens = append(l.tokens, Token{Kind: kind, Text: text, Line: line, Column: col})
}

func (l *Lexer) previousKind() (TokenKind, bool) {
	if len(l.tokens) == 0 {
		return EOF, false
	}
	return l.tokens[len(l.tokens)-1].Kind, true
}

func (l *Lexer) errAt(line, col int, format string, args ...any) error {
	return diag.New(diag.LexerError, line, col, format, args...)
}

func (l *Lexer) run() error {
	for !l.isAtEnd() {
		ch := l.peek()
		line, col := l.line, l.col
		switch {
		case ch == '\n':
			l.advance()
			l.emit(Newline, "\n", line, col)
		case ch == ' ' || ch == '\t' || ch == '\r':
			l.advance()
		case ch == '#':
			for !l.isAtEnd() && l.peek() != '\n' {
				l.advance()
			}
		case ch == '/' && l.peekN(1) == '*':
			if err := l.skipBlockComment(line, col); err != nil {
				return err
			}
		case ch == '-' && isDigit(l.peekN(1)) && !l.previousProducesValue():
			if err := l.scanNumber(line, col); err != nil {
				return err
			}
		case isDigit(ch):
			if err := l.scanNumber(line, col); err != nil {
				return err
			}
		case ch == '"' || ch == '\'':
			if err := l.scanString(line, col); err != nil {
				return err
			}
		case isAlpha(ch):
			l.scanIdentifier(line, col)
		default:
			if !l.scanOperator(line, col) {
				return l.errAt(line, col, "unexpected character %q", ch)
			}
		}
	}
	l.emit(EOF, "", l.line, l.col)
	return nil
}

func (l *Lexer) previousProducesValue() bool {
	kind, ok := l.previousKind()
	return ok && producesValue(kind)
}

func (l *Lexer) skipBlockComment(line, col int) error {
	l.advance()
	l.advance()
	for !l.isAtEnd() {
		if l.peek() == '*' && l.peekN(1) == '/' {
			l.advance()
			l.advance()
			return nil
		}
		l.advance()
	}
	return l.errAt(line, col, "unterminated block comment")
}

func (l *Lexer) scanOperator(line, col int) bool {
	for size := len(operatorTables); size >= 1; size-- {
		if l.cur+size > len(l.src) {
			continue
		}
		text := string(l.src[l.cur : l.cur+size])
		kind, ok := operatorTables[size-1][text]
		if !ok {
			continue
		}
		for i := 0; i < size; i++ {
			l.advance()
		}
		l.emit(kind, text, line, col)
		return true
	}
	return false
}

func (l *Lexer) scanNumber(line, col int) error {
	start := l.cur
	if l.peek() == '-' {
		l.advance()
	}
	seenDot := false
	for !l.isAtEnd() {
		ch := l.peek()
		if ch == '.' {
			if seenDot {
				return l.errAt(line, col, "malformed number %q: more than one decimal point", string(l.src[start:l.cur+1]))
			}
			seenDot = true
			l.advance()
			continue
		}
		if !isDigit(ch) {
			break
		}
		l.advance()
	}
	l.emit(Number, string(l.src[start:l.cur]), line, col)
	return nil
}

func (l *Lexer) scanString(line, col int) error {
	quote := l.advance()
	var out []rune
	for !l.isAtEnd() {
		ch := l.advance()
		if ch == quote {
			l.emit(String, string(out), line, col)
			return nil
		}
		if ch == '\\' {
			if l.isAtEnd() {
				break
			}
			out = append(out, l.advance())
			continue
		}
		out = append(out, ch)
	}
	return l.errAt(line, col, "unterminated string literal")
}

func (l *Lexer) scanIdentifier(line, col int) {
	start := l.cur
	for !l.isAtEnd() && isAlphaNum(l.peek()) {
		l.advance()
	}
	word := string(l.src[start:l.cur])
	if kind, ok := keywords[word]; ok {
		l.emit(kind, word, line, col)
		return
	}
	l.emit(Identifier, word, line, col)
}

func isDigit(ch rune) bool { return ch >= '0' && ch <= '9' }

func isAlpha(ch rune) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_'
}

func isAlphaNum(ch rune) bool { return isAlpha(ch) || isDigit(ch) }
