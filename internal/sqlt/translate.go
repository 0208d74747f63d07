package sqlt

import (
	"sort"
	"strconv"
	"strings"

	"github.com/novucs/local-bigquery/internal/errs"
)

// TableLister enumerates bare table names in a (project, dataset) scope; the
// translator uses it to expand wildcard table references.
type TableLister interface {
	ListTableNames(project, dataset string) ([]string, error)
}

// Options configures one translation run.
type Options struct {
	DefaultProject    string
	DefaultDataset    string
	FederationID      string            // connection id accepted by EXTERNAL_QUERY
	FederationCatalog string            // attached catalog name for federated tables
	Tables            TableLister       // required for wildcard expansion
	ParamValues       map[string]string // string parameter values, for EXTERNAL_QUERY args
}

// Statement is one translated statement of a script. UDF declarations carry
// no SQL; everything else carries target-dialect SQL plus the names of the
// parameters it references.
type Statement struct {
	SQL      string
	Params   []string
	UDF      *UDFDecl
	External bool // statement references EXTERNAL_QUERY
}

// Translate rewrites a source-dialect script into target-dialect statements.
// Positional parameters are numbered param0..paramN across the whole script.
func Translate(script string, opts Options) ([]Statement, error) {
	tokens, err := Lex(script)
	if err != nil {
		return nil, err
	}
	positional := 0
	var out []Statement
	for _, stmtTokens := range SplitStatements(tokens) {
		if decl, ok, err := ParseUDFDecl(stmtTokens); err != nil {
			return nil, err
		} else if ok {
			out = append(out, Statement{UDF: decl})
			continue
		}
		r := &rewriter{opts: opts, toks: stmtTokens, positional: &positional, seen: map[string]bool{}}
		if err := r.run(); err != nil {
			return nil, err
		}
		out = append(out, Statement{
			SQL:      joinSQL(r.out),
			Params:   r.params,
			External: r.external,
		})
	}
	return out, nil
}

// joinSQL renders rewritten pieces as SQL, spaced the way a person writes it:
// nothing around dots, nothing before commas or closing parens, and nothing
// between a function name and its argument list.
func joinSQL(pieces []string) string {
	var b strings.Builder
	prev := ""
	for _, piece := range pieces {
		if piece == "" {
			continue
		}
		if prev != "" && needsSpace(prev, piece) {
			b.WriteByte(' ')
		}
		b.WriteString(piece)
		prev = piece
	}
	return b.String()
}

func needsSpace(prev, cur string) bool {
	switch cur[0] {
	case '.', ',', ')', ']':
		return false
	}
	last := prev[len(prev)-1]
	switch last {
	case '(', '.', '[':
		return false
	}
	if cur[0] == '(' && isIdentByte(last) && !spacedBeforeParen[strings.ToUpper(prev)] {
		return false
	}
	return true
}

func isIdentByte(c byte) bool {
	return c == '_' || c == '"' ||
		c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

// spacedBeforeParen lists keywords that keep a space before a following paren
// group; anything else reads as a call or a column list.
var spacedBeforeParen = map[string]bool{
	"SELECT": true, "FROM": true, "WHERE": true, "AND": true, "OR": true,
	"NOT": true, "IN": true, "AS": true, "ON": true, "USING": true,
	"VALUES": true, "JOIN": true, "UNION": true, "ALL": true, "EXCEPT": true,
	"INTERSECT": true, "EXISTS": true, "THEN": true, "ELSE": true,
	"WHEN": true, "END": true, "BY": true, "SET": true, "INTO": true,
	"OVER": true, "DISTINCT": true, "BETWEEN": true, "LIKE": true,
	"IS": true, "CROSS": true, "INNER": true, "LEFT": true, "RIGHT": true,
	"FULL": true, "OUTER": true, "WITH": true, "RECURSIVE": true,
	"LATERAL": true, "RETURNS": true, "CREATE": true, "TABLE": true,
	"TEMP": true, "TEMPORARY": true, "REPLACE": true, "IF": true,
	"ONLY": true, "LIMIT": true, "OFFSET": true, "HAVING": true,
	"GROUP": true, "ORDER": true, "WINDOW": true, "QUALIFY": true,
	"UPDATE": true, "DELETE": true, "INSERT": true,
}

// scalar type aliases applied in type positions.
var typeAliases = map[string]string{
	"INT64":      "BIGINT",
	"FLOAT64":    "DOUBLE",
	"BOOL":       "BOOLEAN",
	"STRING":     "VARCHAR",
	"BYTES":      "BLOB",
	"NUMERIC":    "DECIMAL(38,9)",
	"BIGNUMERIC": "DOUBLE",
	"DATETIME":   "TIMESTAMP",
	"TIMESTAMP":  "TIMESTAMPTZ",
	"GEOGRAPHY":  "VARCHAR",
}

type refKind int

const (
	refNone   refKind = iota
	refFrom           // FROM/JOIN position: ident followed by ( is a table function
	refTarget         // INTO/UPDATE/TABLE position: always a plain table name
)

type rewriter struct {
	opts       Options
	toks       []Token
	i          int
	out        []string
	params     []string
	seen       map[string]bool
	ctes       map[string]bool
	external   bool
	positional *int
}

func (r *rewriter) emit(piece string) { r.out = append(r.out, piece) }

func (r *rewriter) addParam(name string) {
	if !r.seen[name] {
		r.seen[name] = true
		r.params = append(r.params, name)
	}
}

func (r *rewriter) peek(offset int) (Token, bool) {
	if r.i+offset < len(r.toks) {
		return r.toks[r.i+offset], true
	}
	return Token{}, false
}

func (r *rewriter) run() error {
	r.ctes = scanCTEs(r.toks)
	expect := refNone
	inFrom := false
	fromDepth := -1
	depth := 0
	createDepth := -1
	var exprFrom []int // paren depths where FROM belongs to EXTRACT-style calls
	isCreateTable := r.statementCreatesTable()
	var prevIdent string

	for r.i < len(r.toks) {
		tok := r.toks[r.i]
		switch tok.Kind {
		case TokenOp:
			switch tok.Text {
			case "(":
				depth++
				switch strings.ToUpper(prevIdent) {
				case "EXTRACT", "SUBSTRING", "SUBSTR", "TRIM", "POSITION", "OVERLAY":
					exprFrom = append(exprFrom, depth)
				}
				if isCreateTable && createDepth < 0 && len(r.out) > 0 {
					createDepth = depth
				}
				r.emit("(")
			case ")":
				if len(exprFrom) > 0 && exprFrom[len(exprFrom)-1] == depth {
					exprFrom = exprFrom[:len(exprFrom)-1]
				}
				if createDepth == depth {
					createDepth = -1
					isCreateTable = false
				}
				depth--
				if inFrom && depth < fromDepth {
					inFrom = false
				}
				r.emit(")")
			case ",":
				if inFrom && depth == fromDepth {
					expect = refFrom
				}
				r.emit(",")
			default:
				r.emit(tok.Text)
			}
			prevIdent = ""
			r.i++
		case TokenParam:
			r.addParam(tok.Text)
			r.emit("$" + tok.Text)
			prevIdent = ""
			r.i++
		case TokenQuestion:
			name := "param" + strconv.Itoa(*r.positional)
			*r.positional++
			r.addParam(name)
			r.emit("$" + name)
			prevIdent = ""
			r.i++
		case TokenString:
			r.emit(EncodeString(DecodeString(tok.Text)))
			prevIdent = ""
			r.i++
		case TokenNumber:
			r.emit(tok.Text)
			prevIdent = ""
			r.i++
		case TokenBacktick:
			if expect != refNone {
				if err := r.tableRef(expect); err != nil {
					return err
				}
				expect = refNone
				prevIdent = ""
				continue
			}
			r.emit(quoteDotted(tok.Text))
			prevIdent = ""
			r.i++
		case TokenIdent:
			upper := strings.ToUpper(tok.Text)
			if expect != refNone {
				switch upper {
				case "IF", "NOT", "EXISTS", "ONLY", "LATERAL":
					r.emit(tok.Text)
					r.i++
					continue
				case "SELECT", "VALUES", "UNNEST":
					// INSERT INTO ... SELECT, FROM UNNEST(...) and friends.
					expect = refNone
					prevIdent = tok.Text
					r.emit(tok.Text)
					r.i++
					continue
				}
				if upper == "EXTERNAL_QUERY" {
					if err := r.externalQuery(); err != nil {
						return err
					}
					expect = refNone
					prevIdent = ""
					continue
				}
				if expect == refFrom {
					if next, ok := r.peek(1); ok && next.Kind == TokenOp && next.Text == "(" {
						// table function call, not a table name
						expect = refNone
						prevIdent = tok.Text
						r.emit(tok.Text)
						r.i++
						continue
					}
				}
				if err := r.tableRef(expect); err != nil {
					return err
				}
				expect = refNone
				prevIdent = ""
				continue
			}
			switch upper {
			case "FROM":
				if len(exprFrom) == 0 || exprFrom[len(exprFrom)-1] != depth {
					expect = refFrom
					inFrom = true
					fromDepth = depth
				}
				r.emit(tok.Text)
			case "JOIN":
				expect = refFrom
				r.emit(tok.Text)
			case "INTO", "UPDATE", "TABLE":
				expect = refTarget
				r.emit(tok.Text)
			case "WHERE", "GROUP", "ORDER", "HAVING", "WINDOW", "LIMIT", "QUALIFY",
				"UNION", "EXCEPT", "INTERSECT", "ON", "USING", "SET":
				if depth <= fromDepth {
					inFrom = false
				}
				r.emit(tok.Text)
			case "STRUCT", "ARRAY":
				if next, ok := r.peek(1); ok && next.Kind == TokenOp && next.Text == "<" {
					text, err := r.parseTypeExpr()
					if err != nil {
						return err
					}
					r.emit(text)
					prevIdent = ""
					continue
				}
				r.emit(tok.Text)
			default:
				r.emit(r.maybeAlias(tok, prevIdent, createDepth >= 0 && depth >= createDepth))
			}
			prevIdent = tok.Text
			r.i++
		default:
			r.emit(tok.Text)
			r.i++
		}
	}
	return nil
}

// statementCreatesTable reports whether the statement begins CREATE [OR
// REPLACE] [TEMP|TEMPORARY] TABLE, which puts its first paren group in
// column-definition position.
func (r *rewriter) statementCreatesTable() bool {
	if len(r.toks) == 0 || !r.toks[0].IsKeyword("CREATE") {
		return false
	}
	for _, tok := range r.toks[1:] {
		if tok.Kind != TokenIdent {
			return false
		}
		switch strings.ToUpper(tok.Text) {
		case "OR", "REPLACE", "TEMP", "TEMPORARY":
			continue
		case "TABLE":
			return true
		default:
			return false
		}
	}
	return false
}

// maybeAlias applies scalar type aliases in type positions: after AS (casts)
// or inside a CREATE TABLE column list. Idents followed by ( stay untouched
// so function calls keep their names.
func (r *rewriter) maybeAlias(tok Token, prevIdent string, inColumnDefs bool) string {
	alias, ok := typeAliases[strings.ToUpper(tok.Text)]
	if !ok {
		return tok.Text
	}
	if next, has := r.peek(1); has && next.Kind == TokenOp && (next.Text == "(" || next.Text == ".") {
		return tok.Text
	}
	if strings.EqualFold(prevIdent, "AS") || inColumnDefs {
		return alias
	}
	return tok.Text
}

// parseTypeExpr converts a type expression starting at the cursor into
// target-dialect text: STRUCT<a T, b U> becomes STRUCT(a T', b U') and
// ARRAY<T> becomes T'[].
func (r *rewriter) parseTypeExpr() (string, error) {
	tok, ok := r.peek(0)
	if !ok {
		return "", errs.InvalidQuery("unexpected end of type expression")
	}
	if tok.Kind == TokenIdent {
		upper := strings.ToUpper(tok.Text)
		if next, has := r.peek(1); has && next.Kind == TokenOp && next.Text == "<" {
			switch upper {
			case "ARRAY":
				r.i += 2
				elem, err := r.parseTypeExpr()
				if err != nil {
					return "", err
				}
				if err := r.expectOp(">"); err != nil {
					return "", err
				}
				return elem + "[]", nil
			case "STRUCT":
				r.i += 2
				return r.parseStructMembers()
			}
		}
	}
	return r.parseScalarType()
}

func (r *rewriter) parseStructMembers() (string, error) {
	var members []string
	for {
		tok, ok := r.peek(0)
		if !ok {
			return "", errs.InvalidQuery("unterminated STRUCT type")
		}
		name := ""
		if tok.Kind == TokenIdent || tok.Kind == TokenBacktick {
			if next, has := r.peek(1); has && !(next.Kind == TokenOp && (next.Text == "," || next.Text == ">")) {
				upper := strings.ToUpper(tok.Text)
				if !(upper == "ARRAY" || upper == "STRUCT") || next.Text != "<" {
					name = StripQuotes(tok.Text)
					r.i++
				}
			}
		}
		typ, err := r.parseTypeExpr()
		if err != nil {
			return "", err
		}
		if name != "" {
			members = append(members, QuoteIdent(name)+" "+typ)
		} else {
			members = append(members, typ)
		}
		tok, ok = r.peek(0)
		if !ok {
			return "", errs.InvalidQuery("unterminated STRUCT type")
		}
		if tok.Kind == TokenOp && tok.Text == "," {
			r.i++
			continue
		}
		if err := r.expectOp(">"); err != nil {
			return "", err
		}
		return "STRUCT(" + strings.Join(members, ", ") + ")", nil
	}
}

func (r *rewriter) parseScalarType() (string, error) {
	tok, ok := r.peek(0)
	if !ok || tok.Kind != TokenIdent {
		return "", errs.InvalidQuery("malformed type expression")
	}
	r.i++
	text := tok.Text
	if alias, found := typeAliases[strings.ToUpper(text)]; found {
		text = alias
	}
	// Copy precision arguments such as DECIMAL(10,2) verbatim.
	if next, has := r.peek(0); has && next.Kind == TokenOp && next.Text == "(" {
		depth := 0
		for {
			cur, ok := r.peek(0)
			if !ok {
				return "", errs.InvalidQuery("malformed type expression")
			}
			text += cur.Text
			r.i++
			if cur.Kind == TokenOp {
				if cur.Text == "(" {
					depth++
				} else if cur.Text == ")" {
					depth--
					if depth == 0 {
						break
					}
				}
			}
		}
	}
	return text, nil
}

func (r *rewriter) expectOp(text string) error {
	tok, ok := r.peek(0)
	if !ok || tok.Kind != TokenOp || tok.Text != text {
		return errs.InvalidQuery("expected %q in type expression", text)
	}
	r.i++
	return nil
}

// tableRef consumes a dotted table reference at the cursor, qualifies it with
// the default project and dataset, and expands wildcard names.
func (r *rewriter) tableRef(kind refKind) error {
	var parts []string
	wildcard := false
	for {
		tok, ok := r.peek(0)
		if !ok {
			break
		}
		switch tok.Kind {
		case TokenIdent:
			parts = append(parts, tok.Text)
		case TokenBacktick:
			sub := strings.Split(tok.Text, ".")
			parts = append(parts, sub...)
		default:
			return errs.InvalidQuery("malformed table reference")
		}
		r.i++
		next, ok := r.peek(0)
		if ok && next.Kind == TokenOp && next.Text == "." {
			r.i++
			continue
		}
		if ok && next.Kind == TokenOp && next.Text == "*" && kind == refFrom {
			wildcard = true
			r.i++
		}
		break
	}
	if len(parts) == 0 {
		return errs.InvalidQuery("malformed table reference")
	}
	for i := range parts {
		parts[i] = StripQuotes(parts[i])
	}
	if wildcard {
		parts[len(parts)-1] += "*"
	}
	if len(parts) > 3 {
		return errs.InvalidQuery("too many parts in table name %q", strings.Join(parts, "."))
	}

	project, dataset := r.opts.DefaultProject, r.opts.DefaultDataset
	table := parts[len(parts)-1]
	switch len(parts) {
	case 3:
		project, dataset = parts[0], parts[1]
	case 2:
		dataset = parts[0]
	case 1:
		if r.ctes[strings.ToLower(table)] {
			r.emit(QuoteIdent(table))
			return nil
		}
	}

	if strings.HasSuffix(table, "*") {
		return r.expandWildcard(project, dataset, table)
	}
	r.emit(QualifiedName(project, dataset, table))
	return nil
}

// expandWildcard rewrites a trailing-* table name into a UNION of every
// matching table, each tagged with its _TABLE_SUFFIX.
func (r *rewriter) expandWildcard(project, dataset, pattern string) error {
	if r.opts.Tables == nil {
		return errs.InvalidQuery("wildcard table %q is not supported here", pattern)
	}
	prefix := strings.TrimSuffix(pattern, "*")
	names, err := r.opts.Tables.ListTableNames(project, dataset)
	if err != nil {
		return err
	}
	var matches []string
	for _, name := range names {
		if strings.HasPrefix(name, prefix) {
			matches = append(matches, name)
		}
	}
	if len(matches) == 0 {
		return errs.InvalidQuery("wildcard table %q matched no tables in %s.%s", pattern, project, dataset)
	}
	sort.Strings(matches)
	selects := make([]string, 0, len(matches))
	for _, name := range matches {
		suffix := strings.TrimPrefix(name, prefix)
		selects = append(selects,
			"SELECT *, "+EncodeString(suffix)+" AS _TABLE_SUFFIX FROM "+QualifiedName(project, dataset, name))
	}
	if len(selects) == 1 {
		r.emit("(" + selects[0] + ")")
		return nil
	}
	r.emit("(" + strings.Join(selects, " UNION ALL ") + ")")
	return nil
}

// quoteDotted converts a back-ticked identifier, possibly dotted, into
// double-quoted parts.
func quoteDotted(content string) string {
	return QualifiedName(strings.Split(content, ".")...)
}

// scanCTEs collects the names declared by WITH clauses anywhere in the
// statement so single-part references to them are left unqualified.
func scanCTEs(tokens []Token) map[string]bool {
	ctes := map[string]bool{}
	for i := 0; i < len(tokens); i++ {
		if !tokens[i].IsKeyword("WITH") {
			continue
		}
		j := i + 1
		if j < len(tokens) && tokens[j].IsKeyword("RECURSIVE") {
			j++
		}
		for j < len(tokens) {
			name, ok := cteName(tokens[j])
			if !ok {
				break
			}
			j++
			// optional column list
			if j < len(tokens) && tokens[j].Kind == TokenOp && tokens[j].Text == "(" {
				j = skipParens(tokens, j)
			}
			if j >= len(tokens) || !tokens[j].IsKeyword("AS") {
				break
			}
			j++
			if j >= len(tokens) || tokens[j].Kind != TokenOp || tokens[j].Text != "(" {
				break
			}
			ctes[strings.ToLower(name)] = true
			j = skipParens(tokens, j)
			if j < len(tokens) && tokens[j].Kind == TokenOp && tokens[j].Text == "," {
				j++
				continue
			}
			break
		}
	}
	return ctes
}

func cteName(tok Token) (string, bool) {
	switch tok.Kind {
	case TokenIdent:
		// WITH OFFSET / WITH ORDINALITY are not CTE declarations.
		switch strings.ToUpper(tok.Text) {
		case "OFFSET", "ORDINALITY":
			return "", false
		}
		return tok.Text, true
	case TokenBacktick:
		return tok.Text, true
	}
	return "", false
}

// skipParens advances past a balanced paren group starting at an open paren.
func skipParens(tokens []Token, i int) int {
	depth := 0
	for ; i < len(tokens); i++ {
		if tokens[i].Kind != TokenOp {
			continue
		}
		switch tokens[i].Text {
		case "(":
			depth++
		case ")":
			depth--
			if depth == 0 {
				return i + 1
			}
		}
	}
	return i
}
