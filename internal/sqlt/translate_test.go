package sqlt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLister struct {
	tables map[string][]string // "project.dataset" -> names
}

func (f *fakeLister) ListTableNames(project, dataset string) ([]string, error) {
	return f.tables[project+"."+dataset], nil
}

func opts() Options {
	return Options{
		DefaultProject:    "proj",
		DefaultDataset:    "ds",
		FederationID:      "us.default",
		FederationCatalog: "pg",
		Tables:            &fakeLister{tables: map[string][]string{}},
	}
}

func translateOne(t *testing.T, sql string, o Options) Statement {
	t.Helper()
	stmts, err := Translate(sql, o)
	require.NoError(t, err)
	require.Len(t, stmts, 1)
	return stmts[0]
}

func TestTranslateQualifiesTableNames(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			"three part",
			"SELECT * FROM p.d.t",
			`SELECT * FROM "p"."d"."t"`,
		},
		{
			"two part uses default project",
			"SELECT * FROM d.t",
			`SELECT * FROM "proj"."d"."t"`,
		},
		{
			"one part uses defaults",
			"SELECT * FROM t",
			`SELECT * FROM "proj"."ds"."t"`,
		},
		{
			"backticked hyphenated ref",
			"SELECT * FROM `my-project.d.t`",
			`SELECT * FROM "my-project"."d"."t"`,
		},
		{
			"join",
			"SELECT * FROM a.b.c JOIN x.y.z ON c.id = z.id",
			`SELECT * FROM "a"."b"."c" JOIN "x"."y"."z" ON c.id = z.id`,
		},
		{
			"insert target",
			"INSERT INTO t ( a , b ) VALUES ( 1 , 2 )",
			`INSERT INTO "proj"."ds"."t"(a, b) VALUES (1, 2)`,
		},
		{
			"delete",
			"DELETE FROM d.t WHERE id = 1",
			`DELETE FROM "proj"."d"."t" WHERE id = 1`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, translateOne(t, tt.in, opts()).SQL)
		})
	}
}

func TestTranslateLeavesCTEsUnqualified(t *testing.T) {
	stmt := translateOne(t, "WITH x AS (SELECT 1) SELECT * FROM x", opts())
	assert.Equal(t, `WITH x AS (SELECT 1) SELECT * FROM "x"`, stmt.SQL)
}

func TestTranslateParameters(t *testing.T) {
	stmt := translateOne(t, "SELECT * FROM t WHERE a = @arg AND b = @arg AND c = ?", opts())
	assert.Equal(t, `SELECT * FROM "proj"."ds"."t" WHERE a = $arg AND b = $arg AND c = $param0`, stmt.SQL)
	assert.Equal(t, []string{"arg", "param0"}, stmt.Params)
}

func TestTranslatePositionalAcrossStatements(t *testing.T) {
	stmts, err := Translate("SELECT ?; SELECT ?", opts())
	require.NoError(t, err)
	require.Len(t, stmts, 2)
	assert.Equal(t, []string{"param0"}, stmts[0].Params)
	assert.Equal(t, []string{"param1"}, stmts[1].Params)
}

func TestTranslateStringLiterals(t *testing.T) {
	stmt := translateOne(t, `SELECT "it's", 'plain', """triple; quoted"""`, opts())
	assert.Equal(t, `SELECT 'it''s', 'plain', 'triple; quoted'`, stmt.SQL)
}

func TestTranslateTypeAliases(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			"cast",
			"SELECT CAST ( x AS STRING ) FROM t",
			`SELECT CAST(x AS VARCHAR) FROM "proj"."ds"."t"`,
		},
		{
			"create table columns",
			"CREATE TABLE p.d.t ( a INT64 , b STRING NOT NULL , c BOOL )",
			`CREATE TABLE "p"."d"."t"(a BIGINT, b VARCHAR NOT NULL, c BOOLEAN)`,
		},
		{
			"array type",
			"CREATE TABLE p.d.t ( tags ARRAY < STRING > )",
			`CREATE TABLE "p"."d"."t"(tags VARCHAR[])`,
		},
		{
			"struct type",
			"CREATE TABLE p.d.t ( person STRUCT < name STRING , age INT64 > )",
			`CREATE TABLE "p"."d"."t"(person STRUCT("name" VARCHAR, "age" BIGINT))`,
		},
		{
			"nested struct array",
			"CREATE TABLE p.d.t ( rs ARRAY < STRUCT < v FLOAT64 > > )",
			`CREATE TABLE "p"."d"."t"(rs STRUCT("v" DOUBLE)[])`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, translateOne(t, tt.in, opts()).SQL)
		})
	}
}

func TestTranslateTokenSpacing(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			"dotted column access",
			"SELECT data.x FROM t",
			`SELECT data.x FROM "proj"."ds"."t"`,
		},
		{
			"function call",
			"SELECT mul ( 3 , 15 )",
			`SELECT mul(3, 15)`,
		},
		{
			"count star",
			"SELECT COUNT ( * ) FROM t",
			`SELECT COUNT(*) FROM "proj"."ds"."t"`,
		},
		{
			"in list keeps its space",
			"SELECT * FROM t WHERE a IN ( 1 , 2 )",
			`SELECT * FROM "proj"."ds"."t" WHERE a IN (1, 2)`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, translateOne(t, tt.in, opts()).SQL)
		})
	}
}

func TestTranslateColumnNamedTypeSurvives(t *testing.T) {
	// Type keywords outside type position stay untouched.
	stmt := translateOne(t, "SELECT timestamp FROM t ORDER BY timestamp", opts())
	assert.Equal(t, `SELECT timestamp FROM "proj"."ds"."t" ORDER BY timestamp`, stmt.SQL)
}

func TestTranslateWildcard(t *testing.T) {
	o := opts()
	o.Tables = &fakeLister{tables: map[string][]string{
		"proj.ds": {"t3", "t1", "t2", "other"},
	}}
	stmt := translateOne(t, "SELECT * FROM t*", o)
	want := `SELECT * FROM (` +
		`SELECT *, '1' AS _TABLE_SUFFIX FROM "proj"."ds"."t1" UNION ALL ` +
		`SELECT *, '2' AS _TABLE_SUFFIX FROM "proj"."ds"."t2" UNION ALL ` +
		`SELECT *, '3' AS _TABLE_SUFFIX FROM "proj"."ds"."t3")`
	assert.Equal(t, want, stmt.SQL)
}

func TestTranslateWildcardSingleMatch(t *testing.T) {
	o := opts()
	o.Tables = &fakeLister{tables: map[string][]string{"p.d": {"events_2024"}}}
	stmt := translateOne(t, "SELECT * FROM `p.d.events_*`", o)
	assert.Equal(t,
		`SELECT * FROM (SELECT *, '2024' AS _TABLE_SUFFIX FROM "p"."d"."events_2024")`,
		stmt.SQL)
	assert.NotContains(t, stmt.SQL, "UNION")
}

func TestTranslateWildcardNoMatch(t *testing.T) {
	_, err := Translate("SELECT * FROM missing*", opts())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing*")
	assert.Contains(t, err.Error(), "proj.ds")
}

func TestTranslateExternalQuery(t *testing.T) {
	stmt := translateOne(t,
		`SELECT * FROM EXTERNAL_QUERY("us.default", "SELECT id FROM users") AS u`,
		opts())
	assert.True(t, stmt.External)
	assert.Equal(t,
		`SELECT * FROM (SELECT id FROM "pg"."public"."users") AS u`,
		stmt.SQL)
}

func TestTranslateExternalQuerySchemaQualified(t *testing.T) {
	stmt := translateOne(t,
		`SELECT * FROM EXTERNAL_QUERY('us.default', 'SELECT * FROM audit.log JOIN users ON users.id = log.uid')`,
		opts())
	assert.Contains(t, stmt.SQL, `"pg"."audit"."log"`)
	assert.Contains(t, stmt.SQL, `"pg"."public"."users"`)
}

func TestTranslateExternalQueryWrongConnection(t *testing.T) {
	_, err := Translate(`SELECT * FROM EXTERNAL_QUERY('eu.other', 'SELECT 1')`, opts())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "eu.other")
}

func TestTranslateExternalQueryParameterArgs(t *testing.T) {
	o := opts()
	o.ParamValues = map[string]string{"conn": "us.default", "q": "SELECT 1"}
	stmt := translateOne(t, "SELECT * FROM EXTERNAL_QUERY(@conn, @q)", o)
	assert.Equal(t, `SELECT * FROM (SELECT 1)`, stmt.SQL)
}

func TestTranslateExternalQueryUnboundParameter(t *testing.T) {
	_, err := Translate("SELECT * FROM EXTERNAL_QUERY(@conn, 'SELECT 1')", opts())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "@conn")
}

func TestTranslateScript(t *testing.T) {
	stmts, err := Translate("CREATE TABLE t ( a INT64 ); INSERT INTO t VALUES ( 1 ); SELECT a FROM t", opts())
	require.NoError(t, err)
	require.Len(t, stmts, 3)
	assert.Equal(t, `CREATE TABLE "proj"."ds"."t"(a BIGINT)`, stmts[0].SQL)
	assert.Equal(t, `INSERT INTO "proj"."ds"."t" VALUES (1)`, stmts[1].SQL)
	assert.Equal(t, `SELECT a FROM "proj"."ds"."t"`, stmts[2].SQL)
}

func TestTranslateExtractFromIsNotATable(t *testing.T) {
	stmt := translateOne(t, "SELECT EXTRACT ( DAY FROM ts ) FROM t", opts())
	assert.Equal(t, `SELECT EXTRACT(DAY FROM ts) FROM "proj"."ds"."t"`, stmt.SQL)
}

func TestParseUDFDecl(t *testing.T) {
	tokens, err := Lex(`CREATE TEMP FUNCTION double_it(x INT64) RETURNS INT64 LANGUAGE js AS "return x * 2;"`)
	require.NoError(t, err)
	decl, ok, err := ParseUDFDecl(tokens)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "double_it", decl.Name)
	require.Len(t, decl.Args, 1)
	assert.Equal(t, "x", decl.Args[0].Name)
	assert.Equal(t, "BIGINT", decl.Args[0].EngineType)
	assert.Equal(t, "BIGINT", decl.EngineReturnType)
	assert.Equal(t, "return x * 2;", decl.Body)
}

func TestParseUDFDeclTripleQuotedBody(t *testing.T) {
	script := "CREATE FUNCTION greet(name STRING) RETURNS STRING LANGUAGE js AS '''return \"hi \" + name;'''"
	stmts, err := Translate(script, opts())
	require.NoError(t, err)
	require.Len(t, stmts, 1)
	require.NotNil(t, stmts[0].UDF)
	assert.Equal(t, `return "hi " + name;`, stmts[0].UDF.Body)
	assert.Equal(t, "VARCHAR", stmts[0].UDF.Args[0].EngineType)
}

func TestParseUDFDeclIgnoresSQLFunctions(t *testing.T) {
	tokens, err := Lex("CREATE FUNCTION add_one(x INT64) AS (x + 1)")
	require.NoError(t, err)
	_, ok, err := ParseUDFDecl(tokens)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLexComments(t *testing.T) {
	tokens, err := Lex("SELECT 1 -- trailing\n/* block */ , 2 # hash\n")
	require.NoError(t, err)
	var texts []string
	for _, tok := range tokens {
		texts = append(texts, tok.Text)
	}
	assert.Equal(t, []string{"SELECT", "1", ",", "2"}, texts)
}
