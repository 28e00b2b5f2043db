package encode

import (
	"github.com/alexjpwalker/typeql/internal/ir"
	"github.com/alexjpwalker/typeql/internal/pattern"
	"github.com/alexjpwalker/typeql/internal/query"
)

// Document is an encoded AST together with its content id.
type Document struct {
	ID     string
	Object ir.Object
}

func document(domain string, obj ir.Object) (Document, error) {
	id, err := ir.ContentID(domain, obj)
	if err != nil {
		return Document{}, err
	}
	return Document{ID: id, Object: obj}, nil
}

// QueryDocument encodes q under the query domain. Two queries that render
// the same and have the same hidden variable numbering share an id.
func QueryDocument(q query.Query) (Document, error) {
	obj, err := Query(q)
	if err != nil {
		return Document{}, err
	}
	return document(ir.DomainQuery, obj)
}

// PatternsDocument encodes a pattern list with its encoding version.
func PatternsDocument(ps []pattern.Pattern) (Document, error) {
	arr, err := Patterns(ps)
	if err != nil {
		return Document{}, err
	}
	return document(ir.DomainPattern, ir.Obj(
		ir.P("version", ir.String(ir.EncodingVersion)),
		ir.P("patterns", arr),
	))
}

// VariableDocument encodes a single variable with its encoding version.
func VariableDocument(v pattern.Variable) (Document, error) {
	obj, err := Variable(v)
	if err != nil {
		return Document{}, err
	}
	return document(ir.DomainVariable, ir.Obj(
		ir.P("version", ir.String(ir.EncodingVersion)),
		ir.P("variable", obj),
	))
}

// QueryID is the content id of a query.
func QueryID(q query.Query) (string, error) {
	d, err := QueryDocument(q)
	return d.ID, err
}

// PatternsID is the content id of a pattern list.
func PatternsID(ps []pattern.Pattern) (string, error) {
	d, err := PatternsDocument(ps)
	return d.ID, err
}

// VariableID is the content id of a single variable.
func VariableID(v pattern.Variable) (string, error) {
	d, err := VariableDocument(v)
	return d.ID, err
}
