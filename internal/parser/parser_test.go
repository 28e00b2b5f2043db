package parser

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/alecthomas/participle/v2/lexer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexjpwalker/typeql/internal/grammar"
	"github.com/alexjpwalker/typeql/internal/pattern"
	"github.com/alexjpwalker/typeql/internal/query"
)

func parseMatch(t *testing.T, src string) query.MatchQuery {
	t.Helper()
	q, err := ParseQuery(src)
	require.NoError(t, err)
	mq, ok := q.(query.MatchQuery)
	require.True(t, ok, "expected MatchQuery, got %T", q)
	return mq
}

func parseThing(t *testing.T, src string) pattern.ThingVariable {
	t.Helper()
	v, err := ParseVariable(src)
	require.NoError(t, err)
	thing, ok := v.(pattern.ThingVariable)
	require.True(t, ok, "expected ThingVariable, got %T", v)
	return thing
}

func parseType(t *testing.T, src string) pattern.TypeVariable {
	t.Helper()
	v, err := ParseVariable(src)
	require.NoError(t, err)
	tv, ok := v.(pattern.TypeVariable)
	require.True(t, ok, "expected TypeVariable, got %T", v)
	return tv
}

func TestParseQuery_MatchWithModifiers(t *testing.T) {
	mq := parseMatch(t, `match $x isa person, has name "Alice"; get $x, $x; sort $x asc; offset 5; limit 10;`)

	require.Len(t, mq.Patterns(), 1)
	assert.Equal(t, `$x isa person, has name "Alice"`, mq.Patterns()[0].String())

	x := pattern.MustNamed("x")
	assert.Equal(t, []pattern.UnboundVariable{x, x}, mq.Filter(), "filter keeps duplicates and order")

	sorting, ok := mq.Sorting()
	require.True(t, ok)
	assert.Equal(t, []query.OrderedVariable{{Var: x, Order: query.OrderAsc}}, sorting.Vars)

	limit, ok := mq.Limit()
	require.True(t, ok)
	assert.Equal(t, uint64(10), limit)

	offset, ok := mq.Offset()
	require.True(t, ok)
	assert.Equal(t, uint64(5), offset)

	assert.Equal(t, query.QueryTypeRead, mq.Type())
}

func TestParseQuery_MatchWithoutModifiers(t *testing.T) {
	mq := parseMatch(t, "match $x isa person; $y isa company;")

	require.Len(t, mq.Patterns(), 2)
	assert.Empty(t, mq.Filter())
	_, ok := mq.Sorting()
	assert.False(t, ok)
	_, ok = mq.Limit()
	assert.False(t, ok)
	_, ok = mq.Offset()
	assert.False(t, ok)
}

func TestParseQuery_SortDirectionIsOptional(t *testing.T) {
	mq := parseMatch(t, "match $x isa person, has age $a; sort $a, $x desc;")

	sorting, ok := mq.Sorting()
	require.True(t, ok)
	assert.Equal(t, []query.OrderedVariable{
		{Var: pattern.MustNamed("a")},
		{Var: pattern.MustNamed("x"), Order: query.OrderDesc},
	}, sorting.Vars)
}

func TestParseQuery_NegativeCountIsIllegal(t *testing.T) {
	_, err := ParseQuery("match $x isa person; limit -1;")
	requireIllegal(t, err, "-1")

	_, err = ParseQuery("match $x isa person; offset -3;")
	requireIllegal(t, err, "-3")
}

func TestParseVariable_RelationRolePlayers(t *testing.T) {
	thing := parseThing(t, "$r (friend: $x, $y) isa friendship")

	assert.Equal(t, "r", thing.Reference().Name())

	rel, ok := thing.Relation()
	require.True(t, ok)
	players := rel.RolePlayers()
	require.Len(t, players, 2)

	assert.Equal(t, pattern.NewLabel("friend"), players[0].Role)
	assert.Equal(t, pattern.MustNamed("x"), players[0].Player)
	assert.Nil(t, players[1].Role, "untyped role player")
	assert.Equal(t, pattern.MustNamed("y"), players[1].Player)

	isa, ok := thing.Isa()
	require.True(t, ok)
	assert.Equal(t, pattern.NewLabel("friendship"), isa.Type)
	assert.False(t, isa.IsExplicit)
}

func TestParseVariable_RoleTypedByVariable(t *testing.T) {
	thing := parseThing(t, "$r ($role: $x)")

	rel, ok := thing.Relation()
	require.True(t, ok)
	assert.Equal(t, pattern.MustNamed("role"), rel.RolePlayers()[0].Role)
}

func TestParsePattern_RelationWithoutVariableIsHidden(t *testing.T) {
	p, err := ParsePattern("(friend: $x) isa! friendship")
	require.NoError(t, err)

	thing, ok := p.(pattern.ThingVariable)
	require.True(t, ok)
	assert.True(t, thing.Reference().IsHidden())
	assert.Equal(t, 0, thing.Reference().ID())

	isa, _ := thing.Isa()
	assert.True(t, isa.IsExplicit)
	assert.Equal(t, "(friend: $x) isa! friendship", thing.String())
}

func TestParseVariable_HasClauses(t *testing.T) {
	thing := parseThing(t, `$x isa person, has name "Alice", has age $a, has email "a@b.c"`)

	has := thing.Has()
	require.Len(t, has, 3)

	assert.Equal(t, pattern.NewLabel("name"), has[0].Type)
	assert.True(t, has[0].Attribute.Reference().IsHidden())
	assert.Equal(t, 0, has[0].Attribute.Reference().ID())
	value, ok := has[0].Attribute.Value()
	require.True(t, ok)
	assert.Equal(t, pattern.Eq, value.Predicate)
	assert.Equal(t, pattern.StringValue("Alice"), value.Value)

	assert.Equal(t, pattern.MustNamed("a").IntoThing(), has[1].Attribute)

	assert.Equal(t, 1, has[2].Attribute.Reference().ID(), "hidden ids count up in source order")
}

func TestParseVariable_HasWithoutIsa(t *testing.T) {
	thing := parseThing(t, `$x has name $n`)

	_, ok := thing.Isa()
	assert.False(t, ok)
	require.Len(t, thing.Has(), 1)
}

func TestParseVariable_IID(t *testing.T) {
	thing := parseThing(t, "$x iid 0x966e8001")

	iid, ok := thing.IID()
	require.True(t, ok)
	assert.Equal(t, "0x966e8001", iid.IID)
}

func TestParseVariable_ComparisonWithVariable(t *testing.T) {
	thing := parseThing(t, "$a > $b")

	value, ok := thing.Value()
	require.True(t, ok)
	assert.Equal(t, pattern.Gt, value.Predicate)
	assert.Equal(t, pattern.VariableValue{Variable: pattern.MustNamed("b")}, value.Value)
	assert.Equal(t, "$a > $b", thing.String())
}

func TestParsePatterns_Literals(t *testing.T) {
	patterns, err := ParsePatterns(`$a 2023-01-01T10:00:05.123; $b 2023-01-01; $c 1.5; $d -7; $e true; $f "s" isa name;`)
	require.NoError(t, err)
	require.Len(t, patterns, 6)

	values := make([]pattern.Value, len(patterns))
	for i, p := range patterns {
		thing, ok := p.(pattern.ThingVariable)
		require.True(t, ok)
		v, ok := thing.Value()
		require.True(t, ok)
		assert.Equal(t, pattern.Eq, v.Predicate)
		values[i] = v.Value
	}

	dt, ok := values[0].(pattern.DateTimeValue)
	require.True(t, ok)
	assert.Equal(t, time.Date(2023, 1, 1, 10, 0, 5, 123_000_000, time.UTC), dt.Time())

	date, ok := values[1].(pattern.DateTimeValue)
	require.True(t, ok)
	assert.Equal(t, time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), date.Time(), "dates are midnight")

	assert.Equal(t, pattern.DoubleValue(1.5), values[2])
	assert.Equal(t, pattern.LongValue(-7), values[3])
	assert.Equal(t, pattern.BooleanValue(true), values[4])
	assert.Equal(t, pattern.StringValue("s"), values[5])
}

func TestParseVariable_DateTimePrecision(t *testing.T) {
	_, err := ParseVariable("$a 2023-01-01T10:00:05.1234")
	requireIllegal(t, err, "2023-01-01T10:00:05.1234")
	assert.ErrorIs(t, err, pattern.ErrDateTimePrecision)
}

func TestParseVariable_TypeVariable(t *testing.T) {
	tv := parseType(t, "person sub entity, owns email @key, plays employment:employee, owns name")

	assert.True(t, tv.Reference().IsHidden())
	label, ok := tv.Label()
	require.True(t, ok)
	assert.Equal(t, pattern.NewLabel("person"), label)

	sub, ok := tv.Sub()
	require.True(t, ok)
	assert.Equal(t, pattern.NewLabel("entity"), sub.Type)
	assert.False(t, sub.IsExplicit)

	assert.Equal(t, []pattern.OwnsConstraint{
		{Type: pattern.NewLabel("email"), IsKey: true},
		{Type: pattern.NewLabel("name")},
	}, tv.Owns())
	assert.Equal(t, []pattern.PlaysConstraint{
		{Role: pattern.NewScopedLabel("employment", "employee")},
	}, tv.Plays())

	assert.Equal(t, "person sub entity, owns email @key, owns name, plays employment:employee", tv.String())
}

func TestParseVariable_TypeVariableHead(t *testing.T) {
	tv := parseType(t, "$t sub! $u, relates employee, type employment")

	assert.Equal(t, "t", tv.Reference().Name())
	sub, _ := tv.Sub()
	assert.True(t, sub.IsExplicit)
	assert.Equal(t, pattern.MustNamed("u"), sub.Type)

	label, ok := tv.Label()
	require.True(t, ok)
	assert.Equal(t, pattern.NewLabel("employment"), label)
	assert.Equal(t, []pattern.RelatesConstraint{{Role: pattern.NewLabel("employee")}}, tv.Relates())
}

func TestParseVariable_ScopedSubAndType(t *testing.T) {
	tv := parseType(t, "$r sub marriage:spouse, type marriage:wife")

	sub, _ := tv.Sub()
	assert.Equal(t, pattern.NewScopedLabel("marriage", "spouse"), sub.Type)
	label, _ := tv.Label()
	assert.Equal(t, pattern.NewScopedLabel("marriage", "wife"), label)
}

func TestParseVariable_Regex(t *testing.T) {
	tv := parseType(t, `$n regex "^https?:\/\/.*$"`)

	regex, ok := tv.Regex()
	require.True(t, ok)
	assert.Equal(t, `^https?://.*$`, regex.Regex)
	assert.Equal(t, `$n regex "^https?:\/\/.*$"`, tv.String())
}

func TestParseVariable_DuplicateSingleValuedConstraint(t *testing.T) {
	testCases := []struct {
		name string
		src  string
		text string
	}{
		{name: "sub", src: "$x sub a, sub b", text: "sub b"},
		{name: "type", src: "$x type a, type b", text: "type b"},
		{name: "label head", src: "person type company", text: "type company"},
		{name: "regex", src: `$x regex "a", regex "b"`, text: `regex "b"`},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseVariable(tc.src)
			requireIllegal(t, err, tc.text)
			assert.ErrorIs(t, err, pattern.ErrDuplicateConstraint)
		})
	}
}

func TestParseVariable_InvalidName(t *testing.T) {
	_, err := ParseVariable("$_x isa person")
	requireIllegal(t, err, "$_x")
	assert.ErrorIs(t, err, pattern.ErrInvalidVariableName)
}

func TestParse_AnonymousVariable(t *testing.T) {
	thing := parseThing(t, "$_ isa person")
	assert.True(t, thing.Reference().IsAnonymous())
}

func TestParse_Unsupported(t *testing.T) {
	testCases := []struct {
		name      string
		parse     func() error
		construct string
	}{
		{name: "define", construct: "define query", parse: queryErr("define person sub entity;")},
		{name: "undefine", construct: "undefine query", parse: queryErr("undefine person sub entity;")},
		{name: "insert", construct: "insert query", parse: queryErr("insert $x isa person;")},
		{name: "match insert", construct: "match-insert query", parse: queryErr(`match $x isa person; insert $x has name "Bob";`)},
		{name: "delete", construct: "delete query", parse: queryErr("match $x isa person; delete $x isa person;")},
		{name: "update", construct: "update query", parse: queryErr("match $x isa person; delete $x isa person; insert $y isa person;")},
		{name: "aggregate", construct: "aggregate", parse: queryErr("match $x isa person; get $x; count;")},
		{name: "group", construct: "group", parse: queryErr("match $x isa person; group $x;")},
		{name: "group aggregate", construct: "group aggregate", parse: queryErr("match $x isa person, has age $a; group $x; max $a;")},
		{name: "disjunction", construct: "disjunction", parse: queryErr("match { $x isa person; } or { $x isa company; };")},
		{name: "conjunction", construct: "conjunction", parse: queryErr("match { $x isa person; };")},
		{name: "negation", construct: "negation", parse: queryErr(`match $x isa person; not { $x has name "Bob"; };`)},
		{name: "concept equality", construct: "concept equality", parse: variableErr("$x is $y")},
		{name: "literal comparison", construct: "comparison against a literal value", parse: variableErr("$x isa person, has age > 10")},
		{name: "substring", construct: "substring predicate", parse: variableErr(`$x has name contains "Al"`)},
		{name: "abstract", construct: "abstract constraint", parse: variableErr("person sub entity, abstract")},
		{name: "owns override", construct: "owns override", parse: variableErr("child sub person, owns nickname as name")},
		{name: "plays override", construct: "plays override", parse: variableErr("child sub person, plays family:child as role")},
		{name: "relates override", construct: "relates override", parse: variableErr("marriage sub partnership, relates wife as partner")},
		{name: "unlabeled has", construct: "attribute ownership without a label", parse: variableErr("$x has $a")},
		{name: "relation has", construct: "attribute ownership on a relation variable", parse: variableErr(`$r (friend: $x) isa friendship, has since $d`)},
		{name: "attribute has", construct: "attribute ownership on an attribute variable", parse: variableErr(`$a "x" isa name, has note $n`)},
		{name: "definables", construct: "type definition", parse: func() error { _, err := ParseDefinables("person sub entity;"); return err }},
		{name: "rule", construct: "rule definition", parse: func() error {
			_, err := ParseSchemaRule(`rule r: when { $x isa person; } then { (friend: $x) isa friendship; }`)
			return err
		}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.parse()
			require.Error(t, err)
			require.True(t, IsUnsupported(err), "expected UNSUPPORTED_CONSTRUCT, got %v", err)
			assert.False(t, IsIllegalGrammar(err))

			var pe *Error
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, tc.construct, pe.Construct)
			assert.NotEmpty(t, pe.Text)
			assert.Contains(t, pe.Message, "is not supported yet")
		})
	}
}

func queryErr(src string) func() error {
	return func() error {
		_, err := ParseQuery(src)
		return err
	}
}

func variableErr(src string) func() error {
	return func() error {
		_, err := ParseVariable(src)
		return err
	}
}

func TestParse_UnsupportedCarriesPosition(t *testing.T) {
	_, err := ParseQuery("match\n  $x isa person, has age > 10;")
	require.True(t, IsUnsupported(err))

	var pe *Error
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 2, pe.Pos.Line)
	assert.Equal(t, "> 10", pe.Text)
	assert.Contains(t, err.Error(), "2:")
}

func TestParse_SyntaxError(t *testing.T) {
	_, err := ParseQuery("match $x isa;")
	require.Error(t, err)
	assert.True(t, IsSyntaxError(err))

	var pe *Error
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 1, pe.Pos.Line)

	var serr *grammar.SyntaxError
	assert.ErrorAs(t, err, &serr)
}

func TestParseQueries_HiddenIDsSpanQueries(t *testing.T) {
	queries, err := ParseQueries("match (friend: $x) isa friendship; match (friend: $y) isa friendship;")
	require.NoError(t, err)
	require.Len(t, queries, 2)

	for i, q := range queries {
		mq := q.(query.MatchQuery)
		thing := mq.Patterns()[0].(pattern.ThingVariable)
		assert.Equal(t, i, thing.Reference().ID())
	}
}

func TestParseLabel(t *testing.T) {
	label, err := ParseLabel("person")
	require.NoError(t, err)
	assert.Equal(t, "person", label)

	_, err = ParseLabel("person sub")
	assert.True(t, IsSyntaxError(err))
}

func TestParse_Deterministic(t *testing.T) {
	src := `match (friend: $x, $y) isa friendship; $x has name "A", has age 3; get $x;`

	a, err := ParseQuery(src)
	require.NoError(t, err)
	b, err := ParseQuery(src)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestParse_RoundTrip(t *testing.T) {
	sources := []string{
		`match $x isa person, has name "Alice"; get $x; sort $x desc; offset 5; limit 10;`,
		`match $r (friend: $x, $y) isa friendship; $x has age $a; $a >= $b;`,
		`match (employee: $x, employer: $y) isa! employment; $y iid 0x1f;`,
		`match person sub! entity, owns email @key, plays employment:employee; $n regex "^a\/b$";`,
		`match $d 2023-01-01T10:00:05.123; $e 1.5; $f true; $g -7; $h 2023-01-01;`,
		`match $_ isa person, has name $n; get $n, $n;`,
		`match $x isa person, has name 'say "hi"'; $y has nickname "it's"; $n regex 'a"b';`,
		`match $x has name "say \"hi\"";`,
	}
	for _, src := range sources {
		t.Run(src, func(t *testing.T) {
			first, err := ParseQuery(src)
			require.NoError(t, err)
			second, err := ParseQuery(first.String())
			require.NoError(t, err, "rendered: %s", first.String())
			assert.Equal(t, first, second)
		})
	}
}

func TestNestingDepth(t *testing.T) {
	src := "match $r (friend: $x) isa friendship;"

	_, err := ParseQuery(src)
	require.NoError(t, err)

	// query, patterns, pattern, variable, thing, relation
	_, err = ParseQuery(src, WithMaxNestingDepth(6))
	require.NoError(t, err)

	_, err = ParseQuery(src, WithMaxNestingDepth(5))
	require.Error(t, err)
	assert.True(t, IsNestingTooDeep(err))

	_, err = ParseQuery(src, WithMaxNestingDepth(2))
	assert.True(t, IsNestingTooDeep(err))
	assert.Contains(t, err.Error(), "maximum nesting depth of 2")

	_, err = ParseQuery(src, WithMaxNestingDepth(0))
	assert.NoError(t, err, "non-positive limits are ignored")
}

func TestNestingDepth_Brackets(t *testing.T) {
	nested := func(n int) string {
		return "match " + strings.Repeat("{ ", n) + "$x isa person;" + strings.Repeat(" };", n)
	}

	testCases := []struct {
		name  string
		src   string
		opts  []Option
		limit int
	}{
		{name: "default limit", src: nested(DefaultMaxNestingDepth + 1), limit: DefaultMaxNestingDepth},
		{name: "configured limit", src: nested(4), opts: []Option{WithMaxNestingDepth(3)}, limit: 3},
		{name: "very deep input", src: nested(200_000), limit: DefaultMaxNestingDepth},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseQuery(tc.src, tc.opts...)
			require.Error(t, err)
			assert.True(t, IsNestingTooDeep(err), "got %v", err)

			var pe *Error
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, "{", pe.Text)
			assert.Equal(t, 1, pe.Pos.Line)
			assert.Contains(t, pe.Message, fmt.Sprintf("maximum nesting depth of %d", tc.limit))
		})
	}

	// Within the bracket limit the block reaches the converter, which
	// rejects it as a conjunction.
	_, err := ParseQuery(nested(3))
	assert.True(t, IsUnsupported(err), "got %v", err)
}

func TestVisit_EmptyNodesAreIllegal(t *testing.T) {
	testCases := []struct {
		name  string
		visit func() error
	}{
		{name: "nil query", visit: func() error { _, err := VisitQuery(nil); return err }},
		{name: "empty query", visit: func() error { _, err := VisitQuery(&grammar.Query{}); return err }},
		{name: "empty pattern", visit: func() error { _, err := VisitPattern(&grammar.Pattern{}); return err }},
		{name: "empty variable", visit: func() error { _, err := VisitVariable(&grammar.PatternVariable{}); return err }},
		{name: "empty thing", visit: func() error {
			_, err := VisitVariable(&grammar.PatternVariable{Thing: &grammar.VariableThingAny{}})
			return err
		}},
		{name: "empty type constraint", visit: func() error {
			label := "person"
			_, err := VisitVariable(&grammar.PatternVariable{Type: &grammar.VariableType{
				Type:        &grammar.TypeAny{Label: &label},
				Constraints: []*grammar.TypeConstraint{{}},
			}})
			return err
		}},
		{name: "empty predicate", visit: func() error {
			_, err := VisitVariable(&grammar.PatternVariable{Thing: &grammar.VariableThingAny{
				Attribute: &grammar.VariableAttribute{Predicate: &grammar.Predicate{}},
			}})
			return err
		}},
		{name: "empty definables", visit: func() error { _, err := VisitDefinables(&grammar.Definables{}); return err }},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.visit()
			require.Error(t, err)
			assert.True(t, IsIllegalGrammar(err), "got %v", err)
		})
	}
}

func TestVisit_MalformedScopedLabel(t *testing.T) {
	head := "$x"
	role := "family:child:extra"
	tree := &grammar.PatternVariable{Type: &grammar.VariableType{
		Type: &grammar.TypeAny{Var: &head},
		Constraints: []*grammar.TypeConstraint{{
			Plays: &grammar.PlaysClause{
				Role: &grammar.TypeScoped{Label: &role, Pos: lexer.Position{Line: 1, Column: 10}},
			},
		}},
	}}

	_, err := VisitVariable(tree)
	requireIllegal(t, err, role)
	assert.ErrorIs(t, err, errScopedLabel)

	var pe *Error
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 10, pe.Pos.Column)
}

func TestWithLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	_, err := ParseQuery("match (friend: $x) isa friendship;", WithLogger(logger))
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "conversion complete")
	assert.Contains(t, buf.String(), "hidden=1")

	buf.Reset()
	_, err = ParseQuery("match $x is $y;", WithLogger(logger))
	require.Error(t, err)
	assert.Contains(t, buf.String(), "conversion rejected")
}

func TestParse_QuotedStringRendering(t *testing.T) {
	testCases := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "double quote inside single quotes",
			src:  `match $x isa person, has name 'say "hi"';`,
			want: "match\n$x isa person, has name 'say \"hi\"';",
		},
		{
			name: "single quote inside double quotes",
			src:  `match $x has name "it's";`,
			want: "match\n$x has name \"it's\";",
		},
		{
			name: "single-quoted plain string",
			src:  `match $x has name 'Alice';`,
			want: "match\n$x has name \"Alice\";",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			q, err := ParseQuery(tc.src)
			require.NoError(t, err)
			assert.Equal(t, tc.want, q.String())

			again, err := ParseQuery(q.String())
			require.NoError(t, err)
			assert.Equal(t, q, again)
		})
	}
}
