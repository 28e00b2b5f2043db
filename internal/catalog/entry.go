package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alexjpwalker/typeql/internal/encode"
	"github.com/alexjpwalker/typeql/internal/ir"
	"github.com/alexjpwalker/typeql/internal/parser"
	"github.com/alexjpwalker/typeql/internal/pattern"
	"github.com/alexjpwalker/typeql/internal/query"
)

// ErrNotFound is returned by Get for an unknown entry id.
var ErrNotFound = errors.New("catalog entry not found")

// Grammar roots an entry may be recorded from.
const (
	RootQuery    = "query"
	RootPatterns = "patterns"
	RootVariable = "variable"
)

// Entry is one converted input. ID is the content id of Encoded, and Seq
// is assigned by Record.
type Entry struct {
	ID              string
	RunID           string
	Seq             int64
	Root            string
	Source          string
	Rendered        string
	Encoded         string
	QueryType       string
	EncodingVersion string
}

// QueryEntry builds an entry for a converted query.
func QueryEntry(source string, q query.Query) (Entry, error) {
	doc, err := encode.QueryDocument(q)
	if err != nil {
		return Entry{}, fmt.Errorf("encode query: %w", err)
	}
	e, err := newEntry(RootQuery, source, q.String(), doc)
	if err != nil {
		return Entry{}, err
	}
	e.QueryType = q.Type().String()
	return e, nil
}

// PatternsEntry builds an entry for a converted pattern list.
func PatternsEntry(source string, ps []pattern.Pattern) (Entry, error) {
	doc, err := encode.PatternsDocument(ps)
	if err != nil {
		return Entry{}, fmt.Errorf("encode patterns: %w", err)
	}
	rendered := ""
	for _, p := range ps {
		rendered += p.String() + ";\n"
	}
	return newEntry(RootPatterns, source, rendered, doc)
}

// VariableEntry builds an entry for a converted variable.
func VariableEntry(source string, v pattern.Variable) (Entry, error) {
	doc, err := encode.VariableDocument(v)
	if err != nil {
		return Entry{}, fmt.Errorf("encode variable: %w", err)
	}
	return newEntry(RootVariable, source, v.String(), doc)
}

// Entries builds the entries for a parse result: one per query, one for
// a pattern list and one for a variable. Labels produce no entries.
func Entries(source string, res parser.Result) ([]Entry, error) {
	entries := []Entry{}
	switch {
	case len(res.Queries) > 0:
		for _, q := range res.Queries {
			e, err := QueryEntry(source, q)
			if err != nil {
				return nil, err
			}
			entries = append(entries, e)
		}
	case len(res.Patterns) > 0:
		e, err := PatternsEntry(source, res.Patterns)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	case res.Variable != nil:
		e, err := VariableEntry(source, res.Variable)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func newEntry(root, source, rendered string, doc encode.Document) (Entry, error) {
	canonical, err := ir.MarshalCanonical(doc.Object)
	if err != nil {
		return Entry{}, fmt.Errorf("marshal %s: %w", root, err)
	}
	return Entry{
		ID:              doc.ID,
		Root:            root,
		Source:          source,
		Rendered:        rendered,
		Encoded:         string(canonical),
		EncodingVersion: ir.EncodingVersion,
	}, nil
}

// Record stores e under runID. Entries are content addressed: recording
// an id that already exists leaves the stored entry untouched and returns
// false.
func (c *Catalog) Record(ctx context.Context, runID string, e Entry) (bool, error) {
	res, err := c.db.ExecContext(ctx, `
		INSERT INTO entries
		(id, run_id, seq, root, source, rendered, encoded, query_type, encoding_version)
		VALUES (?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM entries), ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		e.ID,
		runID,
		e.Root,
		e.Source,
		e.Rendered,
		e.Encoded,
		e.QueryType,
		e.EncodingVersion,
	)
	if err != nil {
		return false, fmt.Errorf("record entry: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("record entry: %w", err)
	}
	inserted := n == 1
	c.log.Debug("entry recorded", "id", e.ID, "run", runID, "root", e.Root, "inserted", inserted)
	return inserted, nil
}

const entryColumns = `id, run_id, seq, root, source, rendered, encoded, query_type, encoding_version`

// Get returns the entry with the given id, or ErrNotFound.
func (c *Catalog) Get(ctx context.Context, id string) (Entry, error) {
	row := c.db.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM entries WHERE id = ?`, id)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return Entry{}, fmt.Errorf("get entry: %w", err)
	}
	return e, nil
}

// List returns all entries ordered by seq ASC, id ASC. It never returns a
// nil slice.
func (c *Catalog) List(ctx context.Context) ([]Entry, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT `+entryColumns+`
		FROM entries
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}
	return entries, nil
}

// Decode returns the stored encoding of e as an ir value.
func (e Entry) Decode() (ir.Value, error) {
	return ir.UnmarshalValue([]byte(e.Encoded))
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner) (Entry, error) {
	var e Entry
	err := s.Scan(
		&e.ID,
		&e.RunID,
		&e.Seq,
		&e.Root,
		&e.Source,
		&e.Rendered,
		&e.Encoded,
		&e.QueryType,
		&e.EncodingVersion,
	)
	return e, err
}
