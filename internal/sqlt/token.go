// Package sqlt translates warehouse-dialect SQL into the embedded engine's
// dialect: identifier quoting, type aliases, named/positional parameters,
// wildcard table expansion and EXTERNAL_QUERY federation.
package sqlt

import (
	"strings"

	"github.com/novucs/local-bigquery/internal/errs"
)

// TokenKind classifies lexed tokens.
type TokenKind int

const (
	TokenIdent    TokenKind = iota // bare identifier or keyword
	TokenBacktick                  // `quoted` identifier, Text holds the content
	TokenString                    // string literal, Text holds the raw source slice
	TokenNumber
	TokenParam    // @name, Text holds the name
	TokenQuestion // positional parameter marker
	TokenOp       // operator or punctuation
)

// Token is one lexed unit of a statement.
type Token struct {
	Kind TokenKind
	Text string
}

// IsKeyword reports a case-insensitive match on a bare identifier.
func (t Token) IsKeyword(word string) bool {
	return t.Kind == TokenIdent && strings.EqualFold(t.Text, word)
}

// Lex splits source-dialect SQL into tokens. Comments are discarded. String
// literals keep their raw source text, including prefixes and quotes, so the
// emitter can re-encode them for the target dialect.
func Lex(sql string) ([]Token, error) {
	var tokens []Token
	i := 0
	for i < len(sql) {
		c := sql[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c == '-' && i+1 < len(sql) && sql[i+1] == '-':
			i = skipLineComment(sql, i)
		case c == '#':
			i = skipLineComment(sql, i)
		case c == '/' && i+1 < len(sql) && sql[i+1] == '*':
			end := strings.Index(sql[i+2:], "*/")
			if end < 0 {
				return nil, errs.InvalidQuery("unterminated block comment")
			}
			i += 2 + end + 2
		case c == '`':
			end := strings.IndexByte(sql[i+1:], '`')
			if end < 0 {
				return nil, errs.InvalidQuery("unterminated quoted identifier")
			}
			tokens = append(tokens, Token{Kind: TokenBacktick, Text: sql[i+1 : i+1+end]})
			i += end + 2
		case c == '\'' || c == '"':
			end, err := scanString(sql, i, false)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, Token{Kind: TokenString, Text: sql[i:end]})
			i = end
		case isIdentStart(c):
			j := i + 1
			for j < len(sql) && isIdentPart(sql[j]) {
				j++
			}
			word := sql[i:j]
			if isStringPrefix(word) && j < len(sql) && (sql[j] == '\'' || sql[j] == '"') {
				end, err := scanString(sql, j, isRawPrefix(word))
				if err != nil {
					return nil, err
				}
				tokens = append(tokens, Token{Kind: TokenString, Text: sql[i:end]})
				i = end
				continue
			}
			tokens = append(tokens, Token{Kind: TokenIdent, Text: word})
			i = j
		case c >= '0' && c <= '9' || (c == '.' && i+1 < len(sql) && sql[i+1] >= '0' && sql[i+1] <= '9'):
			j := i
			for j < len(sql) && (sql[j] >= '0' && sql[j] <= '9' || sql[j] == '.') {
				j++
			}
			if j < len(sql) && (sql[j] == 'e' || sql[j] == 'E') {
				j++
				if j < len(sql) && (sql[j] == '+' || sql[j] == '-') {
					j++
				}
				for j < len(sql) && sql[j] >= '0' && sql[j] <= '9' {
					j++
				}
			}
			tokens = append(tokens, Token{Kind: TokenNumber, Text: sql[i:j]})
			i = j
		case c == '@':
			j := i + 1
			for j < len(sql) && isIdentPart(sql[j]) {
				j++
			}
			if j == i+1 {
				return nil, errs.InvalidQuery("dangling @ in query")
			}
			tokens = append(tokens, Token{Kind: TokenParam, Text: sql[i+1 : j]})
			i = j
		case c == '?':
			tokens = append(tokens, Token{Kind: TokenQuestion, Text: "?"})
			i++
		default:
			if i+1 < len(sql) {
				two := sql[i : i+2]
				switch two {
				case "<=", ">=", "<>", "!=", "||", "=>", "->":
					tokens = append(tokens, Token{Kind: TokenOp, Text: two})
					i += 2
					continue
				}
			}
			tokens = append(tokens, Token{Kind: TokenOp, Text: string(c)})
			i++
		}
	}
	return tokens, nil
}

func skipLineComment(sql string, i int) int {
	end := strings.IndexByte(sql[i:], '\n')
	if end < 0 {
		return len(sql)
	}
	return i + end + 1
}

func isIdentStart(c byte) bool {
	return c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || c >= '0' && c <= '9'
}

func isStringPrefix(word string) bool {
	switch strings.ToLower(word) {
	case "r", "b", "rb", "br":
		return true
	}
	return false
}

func isRawPrefix(word string) bool {
	return strings.ContainsAny(word, "rR")
}

// scanString consumes a string literal starting at the opening quote and
// returns the index just past the closing quote. Triple-quoted forms are
// supported; raw strings ignore backslash escapes.
func scanString(sql string, i int, raw bool) (int, error) {
	quote := sql[i]
	if i+2 < len(sql) && sql[i+1] == quote && sql[i+2] == quote {
		closer := strings.Repeat(string(quote), 3)
		end := strings.Index(sql[i+3:], closer)
		if end < 0 {
			return 0, errs.InvalidQuery("unterminated string literal")
		}
		return i + 3 + end + 3, nil
	}
	j := i + 1
	for j < len(sql) {
		switch sql[j] {
		case '\\':
			if !raw {
				j++
			}
		case quote:
			return j + 1, nil
		}
		j++
	}
	return 0, errs.InvalidQuery("unterminated string literal")
}

// SplitStatements groups a token stream into statements on top-level
// semicolons. Empty statements are dropped.
func SplitStatements(tokens []Token) [][]Token {
	var statements [][]Token
	var current []Token
	for _, tok := range tokens {
		if tok.Kind == TokenOp && tok.Text == ";" {
			if len(current) > 0 {
				statements = append(statements, current)
				current = nil
			}
			continue
		}
		current = append(current, tok)
	}
	if len(current) > 0 {
		statements = append(statements, current)
	}
	return statements
}
