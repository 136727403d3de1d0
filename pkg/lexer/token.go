package lexer

import "fmt"

// TokenKind identifies the lexical category of a token.
type TokenKind int

const (
	EOF TokenKind = iota
	Newline

	// Literals & identifiers
	Number
	String
	Identifier

	// Keywords
	Let
	Const
	Reactive
	Fn
	Class
	Public
	Private
	If
	Else
	For
	Foreach
	While
	Import
	Export
	Break
	Continue
	Pass
	Choose
	ChooseAll
	Case
	Default
	As
	In
	Not
	True
	False

	// Operators
	Plus              // "+"
	Minus             // "-"
	Star              // "*"
	Slash             // "/"
	Percent           // "%"
	Caret             // "^"
	DoubleSlash       // "//"
	Assign            // "="
	PlusAssign        // "+="
	MinusAssign       // "-="
	StarAssign        // "*="
	SlashAssign       // "/="
	PercentAssign     // "%="
	CaretAssign       // "^="
	DoubleSlashAssign // "//="
	NullishAssign     // "??="
	Equal             // "=="
	NotEqual          // "!="
	Less              // "<"
	LessEqual         // "<="
	Greater           // ">"
	GreaterEqual      // ">="
	AndAnd            // "&&"
	OrOr              // "||"
	Bang              // "!"
	Question          // "?"
	Nullish           // "??"
	Arrow             // "=>"

	// Punctuation
	Colon
	Comma
	Dot
	Semicolon
	LParen
	RParen
	LBrace
	RBrace
	LBracket
	RBracket
)

var kindNames = map[TokenKind]string{
	EOF:        "end of file",
	Newline:    "newline",
	Number:     "number",
	String:     "string",
	Identifier: "identifier",
}

func init() {
	for word, kind := range keywords {
		kindNames[kind] = fmt.Sprintf("'%s'", word)
	}
	for _, table := range operatorTables {
		for text, kind := range table {
			kindNames[kind] = fmt.Sprintf("'%s'", text)
		}
	}
}

func (k TokenKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("token(%d)", int(k))
}

// Token is one lexeme. Line and Column are 1-based and only used for
// diagnostics.
type Token struct {
	Kind   TokenKind
	Text   string
	Line   int
	Column int
}

func (t Token) String() string {
	switch t.Kind {
	case EOF, Newline:
		return t.Kind.String()
	default:
		return fmt.Sprintf("%s %q", t.Kind, t.Text)
	}
}

var keywords = map[string]TokenKind{
	"let":       Let,
	"const":     Const,
	"reactive":  Reactive,
	"fn":        Fn,
	"class":     Class,
	"public":    Public,
	"private":   Private,
	"if":        If,
	"else":      Else,
	"for":       For,
	"foreach":   Foreach,
	"while":     While,
	"import":    Import,
	"export":    Export,
	"break":     Break,
	"continue":  Continue,
	"pass":      Pass,
	"choose":    Choose,
	"chooseall": ChooseAll,
	"case":      Case,
	"default":   Default,
	"as":        As,
	"in":        In,
	"not":       Not,
	"true":      True,
	"false":     False,
}

// operatorTables is indexed by operator length minus one; the scanner tries the
// longest table first.
var operatorTables = [3]map[string]TokenKind{
	{
		"+": Plus,
		"-": Minus,
		"*": Star,
		"/": Slash,
		"%": Percent,
		"^": Caret,
		"=": Assign,
		"<": Less,
		">": Greater,
		"!": Bang,
		"?": Question,
		":": Colon,
		",": Comma,
		".": Dot,
		";": Semicolon,
		"(": LParen,
		")": RParen,
		"{": LBrace,
		"}": RBrace,
		"[": LBracket,
		"]": RBracket,
	},
	{
		"//": DoubleSlash,
		"+=": PlusAssign,
		"-=": MinusAssign,
		"*=": StarAssign,
		"/=": SlashAssign,
		"%=": PercentAssign,
		"^=": CaretAssign,
		"==": Equal,
		"!=": NotEqual,
		"<=": LessEqual,
		">=": GreaterEqual,
		"&&": AndAnd,
		"||": OrOr,
		"??": Nullish,
		"=>": Arrow,
	},
	{
		"//=": DoubleSlashAssign,
		"??=": NullishAssign,
	},
}

// LookupKeyword reports the keyword kind for word, if any.
func LookupKeyword(word string) (TokenKind, bool) {
	kind, ok := keywords[word]
	return kind, ok
}

// IsCompoundAssignment reports whether kind is one of the `op=` operators.
func IsCompoundAssignment(kind TokenKind) bool {
	switch kind {
	case PlusAssign, MinusAssign, StarAssign, SlashAssign, PercentAssign,
		CaretAssign, DoubleSlashAssign, NullishAssign:
		return true
	default:
		return false
	}
}

// producesValue reports whether a token can end an operand, which decides
// whether a following '-' is subtraction or the sign of a literal.
func producesValue(kind TokenKind) bool {
	switch kind {
	case Identifier, Number, String, True, False, RParen, RBracket, RBrace:
		return true
	default:
		return false
	}
}
