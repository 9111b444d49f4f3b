// Package lexer tokenizes SQL fragments without parsing them.
//
// Every token keeps the exact source text it was read from, so a fragment can
// be split into tokens and rejoined without changing its meaning.
package lexer

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/leapdb/pkg/token"
)

// Lexer tokenizes SQL input.
type Lexer struct {
	input   string
	pos     int  // current position in input
	readPos int  // reading position (after current char)
	ch      byte // current char under examination
	line    int  // current line number (1-based)
	col     int  // current column number (1-based)

	err error
}

// New creates a new Lexer for the given input.
func New(input string) *Lexer {
	l := &Lexer{
		input: input,
		line:  1,
		col:   0,
	}
	l.readChar()
	return l
}

// Error represents a lexical analysis error.
type Error struct {
	Pos     token.Position
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("lexer error at line %d, column %d: %s", e.Pos.Line, e.Pos.Column, e.Message)
}

// Common error messages
const (
	errUnterminatedString = "unterminated string literal"
	errUnterminatedIdent  = "unterminated quoted identifier"
)

// Err returns the first error met while tokenizing, if any.
func (l *Lexer) Err() error {
	return l.err
}

// readChar advances to the next character.
func (l *Lexer) readChar() {
	if l.readPos >= len(l.input) {
		l.ch = 0 // ASCII NUL = EOF
	} else {
		l.ch = l.input[l.readPos]
	}
	l.pos = l.readPos
	l.readPos++

	if l.ch == '\n' {
		l.line++
		l.col = 0
	} else {
		l.col++
	}
}

// peekChar returns the next character without advancing.
func (l *Lexer) peekChar() byte {
	if l.readPos >= len(l.input) {
		return 0
	}
	return l.input[l.readPos]
}

func (l *Lexer) currentPos() token.Position {
	return token.Position{
		Line:   l.line,
		Column: l.col,
		Offset: l.pos,
	}
}

// NextToken returns the next token.
func (l *Lexer) NextToken() token.Token {
	l.skipWhitespaceAndComments()

	pos := l.currentPos()
	start := l.pos

	var typ token.TokenType
	switch l.ch {
	case 0:
		return token.Token{Type: token.EOF, Pos: pos}
	case '+':
		typ = token.PLUS
	case '-':
		typ = token.MINUS
	case '*':
		typ = token.STAR
	case '/':
		typ = token.SLASH
	case '%':
		typ = token.PERCENT
	case '=':
		typ = token.EQ
	case ',':
		typ = token.COMMA
	case ';':
		typ = token.SEMI
	case '.':
		typ = token.DOT
	case '(':
		typ = token.LPAREN
	case ')':
		typ = token.RPAREN
	case '[':
		typ = token.LBRACKET
	case ']':
		typ = token.RBRACKET
	case '?':
		typ = token.PARAM
	case '<':
		switch l.peekChar() {
		case '=':
			l.readChar()
			typ = token.LE
		case '>':
			l.readChar()
			typ = token.NE
		default:
			typ = token.LT
		}
	case '>':
		typ = token.GT
		if l.peekChar() == '=' {
			l.readChar()
			typ = token.GE
		}
	case '!':
		if l.peekChar() != '=' {
			return l.operator(pos, start)
		}
		l.readChar()
		typ = token.NE
	case '|':
		if l.peekChar() != '|' {
			return l.operator(pos, start)
		}
		l.readChar()
		typ = token.DPIPE
	case ':':
		typ = token.COLON
		if l.peekChar() == ':' {
			l.readChar()
			typ = token.DCOLON
		}
	case '$':
		if !isDigit(l.peekChar()) {
			return l.operator(pos, start)
		}
		l.readChar()
		for isDigit(l.peekChar()) {
			l.readChar()
		}
		typ = token.PARAM
	case '\'':
		if !l.skipQuoted('\'') {
			l.fail(pos, errUnterminatedString)
		}
		return token.Token{Type: token.STRING, Literal: l.input[start:l.pos], Pos: pos}
	case '"', '`':
		if !l.skipQuoted(l.ch) {
			l.fail(pos, errUnterminatedIdent)
		}
		return token.Token{Type: token.IDENT, Literal: l.input[start:l.pos], Pos: pos}
	default:
		switch {
		case isLetter(l.ch) || l.ch == '_':
			lit := l.readIdentifier()
			return token.Token{Type: token.LookupIdent(strings.ToLower(lit)), Literal: lit, Pos: pos}
		case isDigit(l.ch):
			return token.Token{Type: token.NUMBER, Literal: l.readNumber(), Pos: pos}
		default:
			return l.operator(pos, start)
		}
	}

	l.readChar()
	return token.Token{Type: typ, Literal: l.input[start:l.pos], Pos: pos}
}

// operator reads a run of punctuation the lexer has no kind for, such as
// "@" in "@>" or "#" in "#>>", as one opaque OPERATOR token. The run always
// holds at least the current character.
func (l *Lexer) operator(pos token.Position, start int) token.Token {
	l.readChar()
	for isOperatorChar(l.ch) {
		l.readChar()
	}
	return token.Token{Type: token.OPERATOR, Literal: l.input[start:l.pos], Pos: pos}
}

func (l *Lexer) fail(pos token.Position, msg string) {
	if l.err == nil {
		l.err = &Error{Pos: pos, Message: msg}
	}
}

// skipWhitespaceAndComments skips whitespace, line comments and block comments.
func (l *Lexer) skipWhitespaceAndComments() {
	for {
		for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
			l.readChar()
		}

		if l.ch == '-' && l.peekChar() == '-' {
			for l.ch != '\n' && l.ch != 0 {
				l.readChar()
			}
			continue
		}

		if l.ch == '/' && l.peekChar() == '*' {
			l.readChar() // skip '/'
			l.readChar() // skip '*'
			for l.ch != 0 {
				if l.ch == '*' && l.peekChar() == '/' {
					l.readChar()
					l.readChar()
					break
				}
				l.readChar()
			}
			continue
		}

		break
	}
}

// skipQuoted consumes a quoted run, treating a doubled quote as an escape.
// A backslash escapes the next character inside single-quoted strings.
// Reports false when input ends before the closing quote.
func (l *Lexer) skipQuoted(quote byte) bool {
	l.readChar() // skip opening quote
	for l.ch != 0 {
		switch {
		case quote == '\'' && l.ch == '\\' && l.peekChar() != 0:
			l.readChar()
			l.readChar()
		case l.ch == quote && l.peekChar() == quote:
			l.readChar()
			l.readChar()
		case l.ch == quote:
			l.readChar() // skip closing quote
			return true
		default:
			l.readChar()
		}
	}
	return false
}

// readIdentifier reads an unquoted identifier.
func (l *Lexer) readIdentifier() string {
	start := l.pos
	for isLetter(l.ch) || isDigit(l.ch) || l.ch == '_' {
		l.readChar()
	}
	return l.input[start:l.pos]
}

// readNumber reads a numeric literal (integer, decimal, or scientific).
func (l *Lexer) readNumber() string {
	start := l.pos

	for isDigit(l.ch) {
		l.readChar()
	}

	if l.ch == '.' && isDigit(l.peekChar()) {
		l.readChar() // skip '.'
		for isDigit(l.ch) {
			l.readChar()
		}
	}

	if (l.ch == 'e' || l.ch == 'E') && (isDigit(l.peekChar()) || l.peekChar() == '-' || l.peekChar() == '+') {
		l.readChar() // skip 'e' or 'E'
		if l.ch == '-' || l.ch == '+' {
			l.readChar()
		}
		for isDigit(l.ch) {
			l.readChar()
		}
	}

	return l.input[start:l.pos]
}

func isLetter(ch byte) bool {
	return ('a' <= ch && ch <= 'z') || ('A' <= ch && ch <= 'Z')
}

func isOperatorChar(ch byte) bool {
	return strings.IndexByte("@~&#|^!{}\\", ch) >= 0 || ch >= 0x80
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}
