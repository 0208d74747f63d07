package sqlt

import (
	"strings"

	"github.com/novucs/local-bigquery/internal/errs"
)

// UDFArg is one declared argument of a JavaScript UDF.
type UDFArg struct {
	Name       string
	Type       string // declared source-dialect type
	EngineType string // engine binding type
}

// UDFDecl is a parsed CREATE [TEMP] FUNCTION ... LANGUAGE js declaration.
type UDFDecl struct {
	Name             string
	Args             []UDFArg
	ReturnType       string
	EngineReturnType string
	Body             string
}

// udfEngineType maps a declared type to the engine binding type, defaulting
// to VARCHAR when the declared type has no mapping.
func udfEngineType(declared string) string {
	switch strings.ToUpper(declared) {
	case "INT64", "INTEGER", "BIGINT":
		return "BIGINT"
	case "FLOAT64", "FLOAT", "DOUBLE", "NUMERIC", "BIGNUMERIC":
		return "DOUBLE"
	case "BOOL", "BOOLEAN":
		return "BOOLEAN"
	default:
		return "VARCHAR"
	}
}

// ParseUDFDecl recognizes a JavaScript UDF declaration. Returns ok=false for
// any other statement, including SQL-bodied CREATE FUNCTION.
func ParseUDFDecl(tokens []Token) (*UDFDecl, bool, error) {
	if len(tokens) == 0 || !tokens[0].IsKeyword("CREATE") {
		return nil, false, nil
	}
	hasJS := false
	for i, tok := range tokens {
		if tok.IsKeyword("LANGUAGE") && i+1 < len(tokens) && tokens[i+1].IsKeyword("js") {
			hasJS = true
			break
		}
	}
	if !hasJS {
		return nil, false, nil
	}

	i := 1
	for i < len(tokens) && tokens[i].Kind == TokenIdent {
		switch strings.ToUpper(tokens[i].Text) {
		case "OR", "REPLACE", "TEMP", "TEMPORARY":
			i++
			continue
		}
		break
	}
	if i >= len(tokens) || !tokens[i].IsKeyword("FUNCTION") {
		return nil, false, errs.InvalidQuery("malformed function declaration")
	}
	i++
	for i < len(tokens) && tokens[i].Kind == TokenIdent {
		switch strings.ToUpper(tokens[i].Text) {
		case "IF", "NOT", "EXISTS":
			i++
			continue
		}
		break
	}

	// Function name: dotted chain; only the last part names the callable.
	var nameParts []string
	for i < len(tokens) {
		tok := tokens[i]
		if tok.Kind != TokenIdent && tok.Kind != TokenBacktick {
			break
		}
		if tok.Kind == TokenBacktick {
			nameParts = append(nameParts, strings.Split(tok.Text, ".")...)
		} else {
			nameParts = append(nameParts, tok.Text)
		}
		i++
		if i < len(tokens) && tokens[i].Kind == TokenOp && tokens[i].Text == "." {
			i++
			continue
		}
		break
	}
	if len(nameParts) == 0 {
		return nil, false, errs.InvalidQuery("function declaration is missing a name")
	}
	decl := &UDFDecl{
		Name:             StripQuotes(nameParts[len(nameParts)-1]),
		ReturnType:       "STRING",
		EngineReturnType: "VARCHAR",
	}

	if i >= len(tokens) || tokens[i].Kind != TokenOp || tokens[i].Text != "(" {
		return nil, false, errs.InvalidQuery("function %s is missing an argument list", decl.Name)
	}
	i++
	for i < len(tokens) && !(tokens[i].Kind == TokenOp && tokens[i].Text == ")") {
		if tokens[i].Kind != TokenIdent && tokens[i].Kind != TokenBacktick {
			return nil, false, errs.InvalidQuery("malformed argument list for function %s", decl.Name)
		}
		arg := UDFArg{Name: StripQuotes(tokens[i].Text)}
		i++
		var typeTokens []string
		depth := 0
		for i < len(tokens) {
			tok := tokens[i]
			if tok.Kind == TokenOp {
				switch tok.Text {
				case "<", "(":
					depth++
				case ">", ")":
					if tok.Text == ")" && depth == 0 {
						goto argDone
					}
					depth--
				case ",":
					if depth == 0 {
						goto argDone
					}
				}
			}
			typeTokens = append(typeTokens, tok.Text)
			i++
		}
	argDone:
		arg.Type = strings.Join(typeTokens, " ")
		arg.EngineType = udfEngineType(arg.Type)
		decl.Args = append(decl.Args, arg)
		if i < len(tokens) && tokens[i].Kind == TokenOp && tokens[i].Text == "," {
			i++
		}
	}
	if i >= len(tokens) {
		return nil, false, errs.InvalidQuery("unterminated argument list for function %s", decl.Name)
	}
	i++ // closing paren

	// RETURNS type, LANGUAGE js, optional OPTIONS(...), AS "body".
	for i < len(tokens) {
		tok := tokens[i]
		switch {
		case tok.IsKeyword("RETURNS"):
			i++
			start := i
			for i < len(tokens) && !(tokens[i].IsKeyword("LANGUAGE") || tokens[i].IsKeyword("AS")) {
				i++
			}
			var words []string
			for _, t := range tokens[start:i] {
				words = append(words, t.Text)
			}
			decl.ReturnType = strings.Join(words, " ")
			decl.EngineReturnType = udfEngineType(decl.ReturnType)
		case tok.IsKeyword("LANGUAGE"):
			i += 2
		case tok.IsKeyword("OPTIONS"):
			i++
			if i < len(tokens) && tokens[i].Kind == TokenOp && tokens[i].Text == "(" {
				i = skipParens(tokens, i)
			}
		case tok.IsKeyword("AS"):
			i++
			if i >= len(tokens) || tokens[i].Kind != TokenString {
				return nil, false, errs.InvalidQuery("function %s body must be a string literal", decl.Name)
			}
			decl.Body = DecodeString(tokens[i].Text)
			i++
		default:
			i++
		}
	}
	if decl.Body == "" {
		return nil, false, errs.InvalidQuery("function %s has no body", decl.Name)
	}
	return decl, true, nil
}
