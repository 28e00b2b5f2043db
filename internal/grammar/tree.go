package grammar

import "github.com/alecthomas/participle/v2/lexer"

// Each alternation in the grammar is a struct with one pointer per
// alternative; exactly one is set after a successful parse. Literal
// tokens that the converter decodes itself (strings, numbers, dates,
// variables) are captured as raw text.

// Queries is the eof_queries root.
type Queries struct {
	Pos    lexer.Position
	Tokens []lexer.Token

	Queries []*Query `parser:"@@+"`
}

type Query struct {
	Pos    lexer.Position
	Tokens []lexer.Token

	Define   *QueryDefine   `parser:"  @@"`
	Undefine *QueryUndefine `parser:"| @@"`
	Insert   *QueryInsert   `parser:"| @@"`
	Match    *QueryMatch    `parser:"| @@"`
}

type QueryDefine struct {
	Pos    lexer.Position
	Tokens []lexer.Token

	Definables *Definables `parser:"'define' @@"`
}

type QueryUndefine struct {
	Pos    lexer.Position
	Tokens []lexer.Token

	Definables *Definables `parser:"'undefine' @@"`
}

type QueryInsert struct {
	Pos    lexer.Position
	Tokens []lexer.Token

	Things *VariableThings `parser:"'insert' @@"`
}

// QueryMatch covers every query that starts with match: plain match with
// modifiers, match-insert, match-delete, match-delete-insert (update),
// group and aggregate.
type QueryMatch struct {
	Pos    lexer.Position
	Tokens []lexer.Token

	Patterns  *Patterns       `parser:"'match' @@"`
	Insert    *VariableThings `parser:"( 'insert' @@"`
	Delete    *VariableThings `parser:"| 'delete' @@"`
	Update    *VariableThings `parser:"  ( 'insert' @@ )?"`
	Modifiers *Modifiers      `parser:"| @@ )?"`
	Group     *Group          `parser:"@@?"`
	Aggregate *Aggregate      `parser:"@@?"`
}

// Modifiers appear in grammar order get, sort, offset, limit; at least
// one is present when the node is set.
type Modifiers struct {
	Pos    lexer.Position
	Tokens []lexer.Token

	Filter *Filter `parser:"( @@ ';' )?"`
	Sort   *Sort   `parser:"( @@ ';' )?"`
	Offset *Offset `parser:"( @@ ';' )?"`
	Limit  *Limit  `parser:"( @@ ';' )?"`
}

type Filter struct {
	Pos    lexer.Position
	Tokens []lexer.Token

	Vars []string `parser:"'get' @Var ( ',' @Var )*"`
}

type Sort struct {
	Pos    lexer.Position
	Tokens []lexer.Token

	Vars []*SortVar `parser:"'sort' @@ ( ',' @@ )*"`
}

type SortVar struct {
	Pos    lexer.Position
	Tokens []lexer.Token

	Var   string  `parser:"@Var"`
	Order *string `parser:"@( 'asc' | 'desc' )?"`
}

type Offset struct {
	Pos    lexer.Position
	Tokens []lexer.Token

	Value string `parser:"'offset' @Long"`
}

type Limit struct {
	Pos    lexer.Position
	Tokens []lexer.Token

	Value string `parser:"'limit' @Long"`
}

type Group struct {
	Pos    lexer.Position
	Tokens []lexer.Token

	Var string `parser:"'group' @Var ';'"`
}

type Aggregate struct {
	Pos    lexer.Position
	Tokens []lexer.Token

	Method string  `parser:"@( 'count' | 'max' | 'mean' | 'median' | 'min' | 'std' | 'sum' )"`
	Var    *string `parser:"@Var? ';'"`
}

// Definables is the eof_definables root and the body of define/undefine.
type Definables struct {
	Pos    lexer.Position
	Tokens []lexer.Token

	Definables []*Definable `parser:"( @@ ';' )+"`
}

type Definable struct {
	Pos    lexer.Position
	Tokens []lexer.Token

	Rule *SchemaRule   `parser:"  @@"`
	Type *VariableType `parser:"| @@"`
}

// SchemaRule is the eof_schema_rule root. A rule without a body is a
// label-only reference used by undefine.
type SchemaRule struct {
	Pos    lexer.Position
	Tokens []lexer.Token

	Label string            `parser:"'rule' @Label"`
	When  *Patterns         `parser:"( ':' 'when' '{' @@ '}'"`
	Then  *VariableThingAny `parser:"  'then' '{' @@ ';' '}' )?"`
}

// Patterns is the eof_patterns root.
type Patterns struct {
	Pos    lexer.Position
	Tokens []lexer.Token

	Patterns []*Pattern `parser:"( @@ ';' )+"`
}

// Pattern is the eof_pattern root.
type Pattern struct {
	Pos    lexer.Position
	Tokens []lexer.Token

	Negation *PatternNegation `parser:"  @@"`
	Block    *PatternBlock    `parser:"| @@"`
	Variable *PatternVariable `parser:"| @@"`
}

type PatternNegation struct {
	Pos    lexer.Position
	Tokens []lexer.Token

	Patterns *Patterns `parser:"'not' '{' @@ '}'"`
}

// PatternBlock is a braced conjunction, or a disjunction when one or more
// or-blocks follow.
type PatternBlock struct {
	Pos    lexer.Position
	Tokens []lexer.Token

	Patterns *Patterns   `parser:"'{' @@ '}'"`
	Or       []*Patterns `parser:"( 'or' '{' @@ '}' )*"`
}

// PatternVariable is the eof_variable root.
type PatternVariable struct {
	Pos    lexer.Position
	Tokens []lexer.Token

	Concept *VariableConcept  `parser:"  @@"`
	Type    *VariableType     `parser:"| @@"`
	Thing   *VariableThingAny `parser:"| @@"`
}

// VariableConcept is concept equality: $x is $y.
type VariableConcept struct {
	Pos    lexer.Position
	Tokens []lexer.Token

	Var   string `parser:"@Var 'is'"`
	Other string `parser:"@Var"`
}

type VariableType struct {
	Pos    lexer.Position
	Tokens []lexer.Token

	Type        *TypeAny          `parser:"@@"`
	Constraints []*TypeConstraint `parser:"@@ ( ',' @@ )*"`
}

type TypeConstraint struct {
	Pos    lexer.Position
	Tokens []lexer.Token

	Abstract bool           `parser:"  @'abstract'"`
	Owns     *OwnsClause    `parser:"| @@"`
	Plays    *PlaysClause   `parser:"| @@"`
	Regex    *string        `parser:"| 'regex' @String"`
	Relates  *RelatesClause `parser:"| @@"`
	Sub      *SubClause     `parser:"| @@"`
	Type     *LabelAny      `parser:"| 'type' @@"`
}

type OwnsClause struct {
	Pos    lexer.Position
	Tokens []lexer.Token

	Type       *Type `parser:"'owns' @@"`
	Overridden *Type `parser:"( 'as' @@ )?"`
	IsKey      bool  `parser:"@'@key'?"`
}

type PlaysClause struct {
	Pos    lexer.Position
	Tokens []lexer.Token

	Role       *TypeScoped `parser:"'plays' @@"`
	Overridden *Type       `parser:"( 'as' @@ )?"`
}

type RelatesClause struct {
	Pos    lexer.Position
	Tokens []lexer.Token

	Role       *Type `parser:"'relates' @@"`
	Overridden *Type `parser:"( 'as' @@ )?"`
}

type SubClause struct {
	Pos    lexer.Position
	Tokens []lexer.Token

	Keyword string   `parser:"@( 'sub' | 'sub!' )"`
	Type    *TypeAny `parser:"@@"`
}

type VariableThings struct {
	Pos    lexer.Position
	Tokens []lexer.Token

	Things []*VariableThingAny `parser:"( @@ ';' )+"`
}

type VariableThingAny struct {
	Pos    lexer.Position
	Tokens []lexer.Token

	Thing     *VariableThing     `parser:"  @@"`
	Relation  *VariableRelation  `parser:"| @@"`
	Attribute *VariableAttribute `parser:"| @@"`
}

// VariableThing is $x followed by iid or isa (and optionally attributes),
// or by attributes alone.
type VariableThing struct {
	Pos    lexer.Position
	Tokens []lexer.Token

	Var        string      `parser:"@Var"`
	IID        *string     `parser:"( ( 'iid' @IID"`
	Isa        *Isa        `parser:"  | @@ )"`
	Attributes *Attributes `parser:"  ( ',' @@ )? | @@ )"`
}

type VariableRelation struct {
	Pos    lexer.Position
	Tokens []lexer.Token

	Var        *string     `parser:"@Var?"`
	Relation   *Relation   `parser:"@@"`
	Isa        *Isa        `parser:"( @@"`
	Attributes *Attributes `parser:"  ( ',' @@ )? | @@ )?"`
}

// VariableAttribute is an attribute identified by its value, e.g.
// $a "Alice" isa name or $a > $b.
type VariableAttribute struct {
	Pos    lexer.Position
	Tokens []lexer.Token

	Var        *string     `parser:"@Var?"`
	Predicate  *Predicate  `parser:"@@"`
	Isa        *Isa        `parser:"( @@"`
	Attributes *Attributes `parser:"  ( ',' @@ )? | @@ )?"`
}

type Isa struct {
	Pos    lexer.Position
	Tokens []lexer.Token

	Keyword string `parser:"@( 'isa' | 'isa!' )"`
	Type    *Type  `parser:"@@"`
}

type Attributes struct {
	Pos    lexer.Position
	Tokens []lexer.Token

	Attributes []*Attribute `parser:"@@ ( ',' @@ )*"`
}

// Attribute is has <label> <var|predicate>, or has <var> with no label.
type Attribute struct {
	Pos    lexer.Position
	Tokens []lexer.Token

	Label     *string    `parser:"'has' ( @Label"`
	Var       *string    `parser:"  ( @Var"`
	Predicate *Predicate `parser:"  | @@ )"`
	Unlabeled *string    `parser:"| @Var )"`
}

type Relation struct {
	Pos    lexer.Position
	Tokens []lexer.Token

	RolePlayers []*RolePlayer `parser:"'(' @@ ( ',' @@ )* ')'"`
}

type RolePlayer struct {
	Pos    lexer.Position
	Tokens []lexer.Token

	Role   *Type  `parser:"( @@ ':' )?"`
	Player string `parser:"@Var"`
}

// Predicate is a bare value (implicit equality), a comparison, or a
// substring match.
type Predicate struct {
	Pos    lexer.Position
	Tokens []lexer.Token

	Value     *Value          `parser:"  @@"`
	Operator  *string         `parser:"| ( @Operator"`
	Comparand *PredicateValue `parser:"    @@ )"`
	Substring *string         `parser:"| ( @( 'contains' | 'like' )"`
	Pattern   *string         `parser:"    @String )"`
}

type PredicateValue struct {
	Pos    lexer.Position
	Tokens []lexer.Token

	Value *Value  `parser:"  @@"`
	Var   *string `parser:"| @Var"`
}

type Value struct {
	Pos    lexer.Position
	Tokens []lexer.Token

	String   *string `parser:"  @String"`
	DateTime *string `parser:"| @DateTime"`
	Date     *string `parser:"| @Date"`
	Double   *string `parser:"| @Double"`
	Long     *string `parser:"| @Long"`
	Boolean  *string `parser:"| @( 'true' | 'false' )"`
}

// Type is an unscoped label or a variable.
type Type struct {
	Pos    lexer.Position
	Tokens []lexer.Token

	Label *string `parser:"  @Label"`
	Var   *string `parser:"| @Var"`
}

// TypeScoped is a scoped label or a variable.
type TypeScoped struct {
	Pos    lexer.Position
	Tokens []lexer.Token

	Label *string `parser:"  @ScopedLabel"`
	Var   *string `parser:"| @Var"`
}

// TypeAny is a scoped label, an unscoped label, or a variable.
type TypeAny struct {
	Pos    lexer.Position
	Tokens []lexer.Token

	Var    *string `parser:"  @Var"`
	Scoped *string `parser:"| @ScopedLabel"`
	Label  *string `parser:"| @Label"`
}

// LabelAny is a scoped or unscoped label.
type LabelAny struct {
	Pos    lexer.Position
	Tokens []lexer.Token

	Scoped *string `parser:"  @ScopedLabel"`
	Label  *string `parser:"| @Label"`
}

// EOFLabel is the eof_label root.
type EOFLabel struct {
	Pos    lexer.Position
	Tokens []lexer.Token

	Label string `parser:"@Label"`
}
