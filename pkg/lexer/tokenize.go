package lexer

import "github.com/leapstack-labs/leapdb/pkg/token"

// Tokenize splits input into tokens, excluding the trailing EOF.
// It fails only on unterminated literals; unknown punctuation comes back as
// OPERATOR tokens.
func Tokenize(input string) ([]token.Token, error) {
	l := New(input)
	var tokens []token.Token
	for {
		tok := l.NextToken()
		if tok.Type == token.EOF {
			break
		}
		tokens = append(tokens, tok)
	}
	if err := l.Err(); err != nil {
		return nil, err
	}
	return tokens, nil
}

// ReturnsRows reports whether a statement produces a result set: it starts
// with a row-returning keyword or carries a RETURNING clause. Text inside
// literals and quoted identifiers is ignored.
func ReturnsRows(sql string) bool {
	l := New(sql)
	first := true
	for {
		tok := l.NextToken()
		switch tok.Type {
		case token.EOF:
			return false
		case token.LPAREN:
			// "(select ...) union ..." starts with a parenthesis
			continue
		case token.RETURNING:
			return true
		}
		if first {
			first = false
			switch tok.Type {
			case token.SELECT, token.WITH, token.VALUES, token.PRAGMA, token.SHOW,
				token.EXPLAIN, token.DESCRIBE:
				return true
			}
		}
	}
}
