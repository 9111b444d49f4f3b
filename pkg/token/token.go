// Package token defines the token types produced by the SQL tokenizer.
//
// The tokenizer never interprets statements; token kinds exist so callers can
// find placeholders, keywords, and literals without being fooled by text
// inside string literals or quoted identifiers.
package token

import "fmt"

// TokenType represents the type of a lexical token.
//
//nolint:revive // Accept stutter as token.TokenType is clear and widely used
type TokenType int32

const (
	// Special tokens
	EOF TokenType = iota

	// Literals
	IDENT  // identifier, possibly quoted
	NUMBER // 123, 45.67, 1e10
	STRING // 'hello'
	PARAM  // ?, $1

	// Operators
	OPERATOR // any other punctuation run, e.g. @, ~, #
	PLUS     // +
	MINUS    // -
	STAR     // *
	SLASH    // /
	PERCENT  // %
	DPIPE    // ||
	EQ       // =
	NE       // != or <>
	LT       // <
	GT       // >
	LE       // <=
	GE       // >=
	DOT      // .
	COMMA    // ,
	SEMI     // ;
	COLON    // :
	DCOLON   // ::
	LPAREN   // (
	RPAREN   // )
	LBRACKET // [
	RBRACKET // ]

	// Keywords (alphabetical)
	AND
	AS
	ASC
	BETWEEN
	BY
	CASE
	DELETE
	DESC
	DESCRIBE
	DISTINCT
	ELSE
	END
	EXISTS
	EXPLAIN
	FALSE
	FROM
	ILIKE
	IN
	INSERT
	IS
	LIKE
	NOT
	NULL
	OR
	PRAGMA
	RETURNING
	SELECT
	SHOW
	THEN
	TRUE
	UPDATE
	VALUES
	WHEN
	WITH
)

// String returns a human-readable representation of the token type.
func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TOKEN(%d)", t)
}

// tokenNames maps token types to their string representations.
var tokenNames = map[TokenType]string{
	EOF: "EOF",

	IDENT:  "IDENT",
	NUMBER: "NUMBER",
	STRING: "STRING",
	PARAM:  "PARAM",

	OPERATOR: "OPERATOR",
	PLUS:     "+",
	MINUS:    "-",
	STAR:     "*",
	SLASH:    "/",
	PERCENT:  "%",
	DPIPE:    "||",
	EQ:       "=",
	NE:       "!=",
	LT:       "<",
	GT:       ">",
	LE:       "<=",
	GE:       ">=",
	DOT:      ".",
	COMMA:    ",",
	SEMI:     ";",
	COLON:    ":",
	DCOLON:   "::",
	LPAREN:   "(",
	RPAREN:   ")",
	LBRACKET: "[",
	RBRACKET: "]",

	AND:       "AND",
	AS:        "AS",
	ASC:       "ASC",
	BETWEEN:   "BETWEEN",
	BY:        "BY",
	CASE:      "CASE",
	DELETE:    "DELETE",
	DESC:      "DESC",
	DESCRIBE:  "DESCRIBE",
	DISTINCT:  "DISTINCT",
	ELSE:      "ELSE",
	END:       "END",
	EXISTS:    "EXISTS",
	EXPLAIN:   "EXPLAIN",
	FALSE:     "FALSE",
	FROM:      "FROM",
	ILIKE:     "ILIKE",
	IN:        "IN",
	INSERT:    "INSERT",
	IS:        "IS",
	LIKE:      "LIKE",
	NOT:       "NOT",
	NULL:      "NULL",
	OR:        "OR",
	PRAGMA:    "PRAGMA",
	RETURNING: "RETURNING",
	SELECT:    "SELECT",
	SHOW:      "SHOW",
	THEN:      "THEN",
	TRUE:      "TRUE",
	UPDATE:    "UPDATE",
	VALUES:    "VALUES",
	WHEN:      "WHEN",
	WITH:      "WITH",
}

// keywords maps lowercase keyword strings to their token types.
var keywords = map[string]TokenType{
	"and":       AND,
	"as":        AS,
	"asc":       ASC,
	"between":   BETWEEN,
	"by":        BY,
	"case":      CASE,
	"delete":    DELETE,
	"desc":      DESC,
	"describe":  DESCRIBE,
	"distinct":  DISTINCT,
	"else":      ELSE,
	"end":       END,
	"exists":    EXISTS,
	"explain":   EXPLAIN,
	"false":     FALSE,
	"from":      FROM,
	"ilike":     ILIKE,
	"in":        IN,
	"insert":    INSERT,
	"is":        IS,
	"like":      LIKE,
	"not":       NOT,
	"null":      NULL,
	"or":        OR,
	"pragma":    PRAGMA,
	"returning": RETURNING,
	"select":    SELECT,
	"show":      SHOW,
	"then":      THEN,
	"true":      TRUE,
	"update":    UPDATE,
	"values":    VALUES,
	"when":      WHEN,
	"with":      WITH,
}

// LookupIdent returns the token type for the given lowercase identifier.
// If the identifier is a keyword, the keyword token type is returned.
// Otherwise, IDENT is returned.
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}

// IsKeyword returns true if the token type is a keyword.
func IsKeyword(t TokenType) bool {
	return t >= AND && t <= WITH
}

// IsOperator returns true if the token type is an operator.
func IsOperator(t TokenType) bool {
	return t >= OPERATOR && t <= RBRACKET
}

// Token represents a lexical token with position information.
// Literal is the exact source text of the token, quotes included.
type Token struct {
	Type    TokenType
	Literal string
	Pos     Position
}

// Position locates a token in the tokenized text. Line and Column are
// 1-based, Offset is a 0-based byte offset.
type Position struct {
	Line   int
	Column int
	Offset int
}
