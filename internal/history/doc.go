// Package history records harness runs in a SQLite database so failures can
// be compared across runs.
//
// # Database Configuration
//
//   - WAL mode: readers (furtest history) never block a running suite
//   - synchronous=NORMAL
//   - busy_timeout=5000
//   - foreign_keys=ON: outcomes are deleted with their run
//
// Queries that return several rows always order them explicitly, so the
// same database yields the same listing every time.
package history
