package sqlt

import (
	"strings"

	"github.com/novucs/local-bigquery/internal/errs"
)

// externalQuery rewrites EXTERNAL_QUERY(connection_id, sql) at the cursor
// into an inline subquery against the attached federated catalog.
func (r *rewriter) externalQuery() error {
	r.i++ // EXTERNAL_QUERY
	if err := r.expectOp("("); err != nil {
		return errs.InvalidQuery("EXTERNAL_QUERY requires (connection_id, sql) arguments")
	}
	connectionID, err := r.externalArg()
	if err != nil {
		return err
	}
	if err := r.expectOp(","); err != nil {
		return errs.InvalidQuery("EXTERNAL_QUERY requires two arguments")
	}
	query, err := r.externalArg()
	if err != nil {
		return err
	}
	if err := r.expectOp(")"); err != nil {
		return errs.InvalidQuery("EXTERNAL_QUERY takes exactly two arguments")
	}
	if connectionID != r.opts.FederationID {
		return errs.InvalidQuery("unknown connection %q, expected %q", connectionID, r.opts.FederationID)
	}
	inner, err := rewriteFederated(query, r.opts.FederationCatalog)
	if err != nil {
		return err
	}
	r.emit("(" + inner + ")")
	r.external = true
	return nil
}

// externalArg resolves one EXTERNAL_QUERY argument: a string literal, or a
// named parameter looked up in the bound parameter values.
func (r *rewriter) externalArg() (string, error) {
	tok, ok := r.peek(0)
	if !ok {
		return "", errs.InvalidQuery("EXTERNAL_QUERY argument missing")
	}
	r.i++
	switch tok.Kind {
	case TokenString:
		return DecodeString(tok.Text), nil
	case TokenParam:
		value, bound := r.opts.ParamValues[tok.Text]
		if !bound {
			return "", errs.InvalidQuery("EXTERNAL_QUERY parameter @%s is not bound", tok.Text)
		}
		return value, nil
	default:
		return "", errs.InvalidQuery("EXTERNAL_QUERY arguments must be strings or parameters")
	}
}

// rewriteFederated translates a federated-source query so its table
// references resolve inside the attached catalog, defaulting to the public
// schema. The federated dialect treats double-quoted tokens as identifiers.
func rewriteFederated(sql, catalog string) (string, error) {
	if catalog == "" {
		return "", errs.InvalidQuery("no federated source is configured")
	}
	tokens, err := Lex(sql)
	if err != nil {
		return "", err
	}
	ctes := scanCTEs(tokens)
	var out []string
	expect := refNone
	inFrom := false
	fromDepth := -1
	depth := 0
	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		switch {
		case tok.Kind == TokenOp && tok.Text == "(":
			depth++
			out = append(out, "(")
		case tok.Kind == TokenOp && tok.Text == ")":
			depth--
			if inFrom && depth < fromDepth {
				inFrom = false
			}
			out = append(out, ")")
		case tok.Kind == TokenOp && tok.Text == ",":
			if inFrom && depth == fromDepth {
				expect = refFrom
			}
			out = append(out, ",")
		case expect != refNone && isFederatedNamePart(tok):
			if tok.Kind == TokenIdent {
				switch strings.ToUpper(tok.Text) {
				case "IF", "NOT", "EXISTS", "ONLY", "LATERAL":
					out = append(out, tok.Text)
					continue
				case "SELECT", "VALUES":
					expect = refNone
					out = append(out, tok.Text)
					continue
				}
				if expect == refFrom && i+1 < len(tokens) &&
					tokens[i+1].Kind == TokenOp && tokens[i+1].Text == "(" {
					expect = refNone
					out = append(out, tok.Text)
					continue
				}
			}
			var parts []string
			for {
				parts = append(parts, federatedIdent(tokens[i]))
				if i+2 < len(tokens) && tokens[i+1].Kind == TokenOp && tokens[i+1].Text == "." &&
					isFederatedNamePart(tokens[i+2]) {
					i += 2
					continue
				}
				break
			}
			out = append(out, federatedName(catalog, parts, ctes))
			expect = refNone
		case tok.Kind == TokenIdent:
			switch strings.ToUpper(tok.Text) {
			case "FROM", "JOIN":
				expect = refFrom
				if strings.EqualFold(tok.Text, "FROM") {
					inFrom = true
					fromDepth = depth
				}
			case "INTO", "UPDATE":
				expect = refTarget
			case "WHERE", "GROUP", "ORDER", "HAVING", "WINDOW", "LIMIT",
				"UNION", "EXCEPT", "INTERSECT", "ON", "USING", "SET":
				if depth <= fromDepth {
					inFrom = false
				}
			}
			out = append(out, tok.Text)
		case tok.Kind == TokenString:
			// Double-quoted tokens are identifiers in the federated dialect.
			out = append(out, tok.Text)
		default:
			out = append(out, tok.Text)
		}
	}
	return joinSQL(out), nil
}

func isFederatedNamePart(tok Token) bool {
	if tok.Kind == TokenIdent || tok.Kind == TokenBacktick {
		return true
	}
	return tok.Kind == TokenString && strings.HasPrefix(tok.Text, `"`)
}

func federatedIdent(tok Token) string {
	return StripQuotes(tok.Text)
}

// federatedName qualifies a federated table reference into the attached
// catalog, defaulting the schema to public. CTE names stay untouched.
func federatedName(catalog string, parts []string, ctes map[string]bool) string {
	if len(parts) == 1 && ctes[strings.ToLower(parts[0])] {
		return QuoteIdent(parts[0])
	}
	switch len(parts) {
	case 1:
		return QualifiedName(catalog, "public", parts[0])
	case 2:
		return QualifiedName(catalog, parts[0], parts[1])
	default:
		return QualifiedName(catalog, parts[len(parts)-2], parts[len(parts)-1])
	}
}
