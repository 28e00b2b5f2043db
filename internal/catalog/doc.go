// Package catalog is a SQLite-backed record of converted TypeQL input.
//
// A run groups the entries recorded from one source (a file, stdin or a
// REPL session). Entries are keyed by the content id of their encoded AST,
// so recording the same query twice is a no-op.
//
// # Ordering
//
// Runs and entries carry a seq INTEGER assigned on insert. Every list
// query orders by seq ASC, id ASC COLLATE BINARY.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL
//   - busy_timeout=5000
//   - foreign_keys=ON
package catalog
