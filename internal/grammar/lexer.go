package grammar

import (
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
)

// Rules are tried in order at each position, so longer token shapes that
// share a prefix with shorter ones come first (DateTime before Date before
// Double before Long, IID before Long, Explicit and ScopedLabel before
// Label).
var typeqlLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `#[^\n]*`},
	{Name: "Whitespace", Pattern: `[ \t\r\n]+`},
	{Name: "String", Pattern: `"(?:\\.|[^"\\])*"|'(?:\\.|[^'\\])*'`},
	{Name: "DateTime", Pattern: `\d{4}-\d{2}-\d{2}T\d{2}:\d{2}(?::\d{2}(?:\.\d+)?)?`},
	{Name: "Date", Pattern: `\d{4}-\d{2}-\d{2}`},
	{Name: "IID", Pattern: `0x[0-9a-f]+`},
	{Name: "Double", Pattern: `[-+]?\d+\.\d+`},
	{Name: "Long", Pattern: `[-+]?\d+`},
	{Name: "Var", Pattern: `\$[a-zA-Z0-9_-]+`},
	{Name: "Annotation", Pattern: `@[a-z]+`},
	{Name: "Explicit", Pattern: `(?:isa|sub)!`},
	{Name: "ScopedLabel", Pattern: `[a-zA-Z_][a-zA-Z0-9_-]*:[a-zA-Z_][a-zA-Z0-9_-]*`},
	{Name: "Label", Pattern: `[a-zA-Z_][a-zA-Z0-9_-]*`},
	{Name: "Operator", Pattern: `!=|>=|<=|=|>|<`},
	{Name: "Punct", Pattern: `[{}();,:]`},
})

var (
	whitespaceType = typeqlLexer.Symbols()["Whitespace"]
	commentType    = typeqlLexer.Symbols()["Comment"]
	punctType      = typeqlLexer.Symbols()["Punct"]
)

// Text reconstructs the source text of a node from its tokens, one space
// between tokens. Whitespace and comments are dropped.
func Text(tokens []lexer.Token) string {
	parts := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if tok.Type == whitespaceType || tok.Type == commentType || tok.EOF() {
			continue
		}
		parts = append(parts, tok.Value)
	}
	return strings.Join(parts, " ")
}
