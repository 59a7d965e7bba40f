// Package build materializes a schema into an external SQL engine.
//
// A run has two phases. Planning needs no engine: it builds the
// dependency graph, computes the build order and renders every statement,
// so malformed IR (cycles, unrenderable nodes) aborts the run before any
// SQL is sent. Execution then issues the statements one at a time, in
// order, and records an Outcome per table.
//
// # Modes
//
//   - FullRebuild: drop and recreate the namespace, then drop and create
//     every table. With targets the namespace is only ensured, so tables
//     outside the targets survive.
//   - Incremental: ask the engine which tables exist and build only the
//     missing ones
//
// # Failure policies
//
//   - FailFast: the first failed statement ends the run
//   - SkipErrors: failures are recorded and the run continues; dependents
//     of a failed table are still attempted
//
// Statements are never retried.
package build
