// Package harness runs build scenarios: a CUE schema, a simulated engine
// and a list of assertions about what a build does with them.
//
// A scenario is a YAML file:
//
//	name: diamond_skip_errors
//	description: a failing table takes its dependents down, siblings build
//	schema: schemas/diamond
//	policy: skip_errors
//	failures:
//	  - match: 'CREATE TABLE "test"."b"'
//	    error: boom
//	assertions:
//	  - type: built
//	    tables: [a, d]
//	  - type: failed
//	    tables: [b, c]
//
// The engine never touches a database. It records every statement, rejects
// the ones matching a failure rule and reports the scenario's existing
// tables to incremental runs. Run ids and timings are deterministic, so
// the statement trace can be compared against a golden file.
package harness
