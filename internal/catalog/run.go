package catalog

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// IDGenerator mints run ids.
type IDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 run ids. It is stateless
// and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate returns a new hyphenated UUIDv7. Panics if generation fails.
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// FixedGenerator returns predetermined ids in order, for tests.
type FixedGenerator struct {
	mu  sync.Mutex
	ids []string
	idx int
}

// NewFixedGenerator returns a generator that yields ids in order and
// panics once they are exhausted.
func NewFixedGenerator(ids ...string) *FixedGenerator {
	return &FixedGenerator{ids: ids}
}

// Generate returns the next id.
func (g *FixedGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.idx >= len(g.ids) {
		panic("FixedGenerator: all ids exhausted")
	}
	id := g.ids[g.idx]
	g.idx++
	return id
}

// Run is one recording session.
type Run struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Seq    int64  `json:"seq"`
}

// BeginRun starts a run for source and returns its id.
func (c *Catalog) BeginRun(ctx context.Context, source string) (string, error) {
	id := c.ids.Generate()
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO runs (id, source, seq)
		VALUES (?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM runs))
	`, id, source)
	if err != nil {
		return "", fmt.Errorf("begin run: %w", err)
	}
	c.log.Debug("run started", "run", id, "source", source)
	return id, nil
}

// Runs returns every run ordered by seq.
func (c *Catalog) Runs(ctx context.Context) ([]Run, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT id, source, seq
		FROM runs
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.Source, &r.Seq); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}
