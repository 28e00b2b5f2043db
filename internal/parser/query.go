package parser

import (
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/alexjpwalker/typeql/internal/grammar"
	"github.com/alexjpwalker/typeql/internal/pattern"
	"github.com/alexjpwalker/typeql/internal/query"
)

func (c *converter) visitQuery(n *grammar.Query) (query.Query, error) {
	if n == nil {
		return nil, missing("query", lexer.Position{})
	}
	if err := c.enter(n.Tokens, n.Pos); err != nil {
		return nil, err
	}
	defer c.leave()

	text := grammar.Text(n.Tokens)

	switch {
	case n.Match != nil:
		q, err := c.visitQueryMatch(n.Match)
		if err != nil {
			return nil, err
		}
		return q, nil
	case n.Define != nil:
		return nil, unsupported("define query", text, n.Pos)
	case n.Undefine != nil:
		return nil, unsupported("undefine query", text, n.Pos)
	case n.Insert != nil:
		return nil, unsupported("insert query", text, n.Pos)
	default:
		return nil, illegalGrammar(text, n.Pos, nil)
	}
}

// visitQueryMatch builds a read query. Write forms and answer
// post-processing (group, aggregate) are rejected before any pattern is
// converted.
func (c *converter) visitQueryMatch(n *grammar.QueryMatch) (query.MatchQuery, error) {
	text := grammar.Text(n.Tokens)

	switch {
	case n.Delete != nil && n.Update != nil:
		return query.MatchQuery{}, unsupported("update query", text, n.Pos)
	case n.Delete != nil:
		return query.MatchQuery{}, unsupported("delete query", text, n.Pos)
	case n.Insert != nil:
		return query.MatchQuery{}, unsupported("match-insert query", text, n.Pos)
	case n.Group != nil && n.Aggregate != nil:
		return query.MatchQuery{}, unsupported("group aggregate", text, n.Pos)
	case n.Group != nil:
		return query.MatchQuery{}, unsupported("group", text, n.Pos)
	case n.Aggregate != nil:
		return query.MatchQuery{}, unsupported("aggregate", text, n.Pos)
	}

	patterns, err := c.visitPatterns(n.Patterns)
	if err != nil {
		return query.MatchQuery{}, err
	}
	q, err := query.NewMatch(patterns...)
	if err != nil {
		return query.MatchQuery{}, illegalGrammar(text, n.Pos, err)
	}
	if n.Modifiers == nil {
		return q, nil
	}
	return c.applyModifiers(q, n.Modifiers)
}

// applyModifiers applies filter, sort, limit and offset in that order,
// whatever order the grammar reads them in.
func (c *converter) applyModifiers(q query.MatchQuery, n *grammar.Modifiers) (query.MatchQuery, error) {
	if n.Filter != nil {
		vars := make([]pattern.UnboundVariable, 0, len(n.Filter.Vars))
		for _, text := range n.Filter.Vars {
			v, err := decodeVariable(text)
			if err != nil {
				return query.MatchQuery{}, withPos(err, n.Filter.Pos)
			}
			vars = append(vars, v)
		}
		q = q.WithFilter(vars)
	}

	if n.Sort != nil {
		keys := make([]query.OrderedVariable, 0, len(n.Sort.Vars))
		for _, sv := range n.Sort.Vars {
			v, err := decodeVariable(sv.Var)
			if err != nil {
				return query.MatchQuery{}, withPos(err, sv.Pos)
			}
			key := query.OrderedVariable{Var: v}
			if sv.Order != nil {
				key.Order = *sv.Order
			}
			keys = append(keys, key)
		}
		q = q.WithSorting(query.Sorting{Vars: keys})
	}

	if n.Limit != nil {
		limit, err := decodeCount(n.Limit.Value)
		if err != nil {
			return query.MatchQuery{}, withPos(err, n.Limit.Pos)
		}
		q = q.WithLimit(limit)
	}

	if n.Offset != nil {
		offset, err := decodeCount(n.Offset.Value)
		if err != nil {
			return query.MatchQuery{}, withPos(err, n.Offset.Pos)
		}
		q = q.WithOffset(offset)
	}
	return q, nil
}
